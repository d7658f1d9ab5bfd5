// Package middleware holds the HTTP middleware shared by the API routes.
package middleware

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// CORS admits any origin. The daemon binds to loopback, so the only
// reachable callers are the launcher shell (file:// or a dev server
// origin, neither predictable) and local tooling.
func CORS() gin.HandlerFunc {
	return cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders: []string{
			"Content-Type",
			"Accept",
			"Origin",
			"Cache-Control",
			"X-Request-ID",
			"X-Requested-With",
		},
		MaxAge: 12 * time.Hour,
	})
}
