// Package logging wraps uber/zap for the launcher daemon.
//
// Production logs are JSON on stdout so a supervising shell or log
// collector can parse them; development mode switches to colored console
// lines at debug level.
//
// Usage:
//
//	log := logging.NewDefault()
//	log.Info("Profile launched", zap.String("name", name))
package logging
