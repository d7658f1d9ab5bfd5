package types

// Settings is the small flat object persisted to settings.json. A missing
// or malformed file degrades to the zero value plus DefaultSettings
// overrides; it is never a startup error.
type Settings struct {
	CheckUpdates bool `json:"checkUpdates"`
	NewsEnabled  bool `json:"newsEnabled"`
	ConfirmQuit  bool `json:"confirmQuit"`
}

// DefaultSettings returns the settings used when settings.json is absent.
func DefaultSettings() Settings {
	return Settings{
		CheckUpdates: true,
		NewsEnabled:  true,
		ConfirmQuit:  true,
	}
}
