package dto

import "github.com/spec-kit/haf/internal/settings"

// SettingsResponse renders the operator settings without the passwords.
type SettingsResponse struct {
	Email          string   `json:"email"`
	PasswordSet    bool     `json:"password_set"`
	APIPasswordSet bool     `json:"api_password_set"`
	Counter        int      `json:"counter"`
	Language       string   `json:"language"`
	Languages      []string `json:"languages"`
	AutoOpen       bool     `json:"auto_open"`
}

// NewSettingsResponse maps settings.
func NewSettingsResponse(s settings.Settings) SettingsResponse {
	return SettingsResponse{
		Email:          s.Email,
		PasswordSet:    s.Password != "",
		APIPasswordSet: s.APIPasswordHash != "",
		Counter:        s.Counter,
		Language:       s.Language,
		Languages:      settings.Languages,
		AutoOpen:       s.AutoOpen,
	}
}

// LanguageRequest payload for PUT /settings/language.
type LanguageRequest struct {
	Language string `json:"language"`
}

// AutoOpenRequest payload for PUT /settings/auto-open.
type AutoOpenRequest struct {
	Enabled bool `json:"enabled"`
}

// CredentialsRequest payload for PUT /settings/credentials. An empty email
// keeps the current one.
type CredentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
