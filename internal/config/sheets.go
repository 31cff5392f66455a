package config

import (
	"fmt"
	"os"

	"github.com/spf13/viper"

	"github.com/Veraticus/clash-cost/internal/common"
	"github.com/Veraticus/clash-cost/internal/sheets"
)

// DefaultTokenFile stores the Sheets OAuth token between runs.
const DefaultTokenFile = "$HOME/.config/clash/sheets-token.json"

// LoadSheetsConfig loads Google Sheets configuration. Precedence is viper
// (config file or CLASH_SHEETS_* variables), then GOOGLE_SHEETS_* variables,
// then the saved token file, then defaults.
func LoadSheetsConfig(v *viper.Viper) (sheets.Config, error) {
	cfg := sheetsFromViper(v)
	if err := cfg.LoadFromEnv(); err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func sheetsFromViper(v *viper.Viper) sheets.Config {
	cfg := sheets.DefaultConfig()

	if p := v.GetString("sheets.service_account_path"); p != "" {
		cfg.ServiceAccountPath = ExpandPath(p)
	}
	cfg.ClientID = v.GetString("sheets.client_id")
	cfg.ClientSecret = v.GetString("sheets.client_secret")
	cfg.RefreshToken = v.GetString("sheets.refresh_token")
	cfg.SpreadsheetID = v.GetString("sheets.spreadsheet_id")
	if name := v.GetString("sheets.spreadsheet_name"); name != "" {
		cfg.SpreadsheetName = name
	}
	if tz := v.GetString("sheets.timezone"); tz != "" {
		cfg.TimeZone = tz
	}

	cfg.TokenFile = DefaultTokenFile
	if f := v.GetString("sheets.token_file"); f != "" {
		cfg.TokenFile = f
	}
	cfg.TokenFile = ExpandPath(cfg.TokenFile)
	return cfg
}

// LoadOAuthConfig returns the settings for the interactive Sheets login.
// Only the client credentials are required.
func LoadOAuthConfig(v *viper.Viper) (sheets.OAuth2Config, error) {
	cfg := sheetsFromViper(v)
	if cfg.ClientID == "" {
		cfg.ClientID = os.Getenv("GOOGLE_SHEETS_CLIENT_ID")
	}
	if cfg.ClientSecret == "" {
		cfg.ClientSecret = os.Getenv("GOOGLE_SHEETS_CLIENT_SECRET")
	}
	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		return sheets.OAuth2Config{}, &common.ConfigurationError{
			Setting: "sheets.client_id",
			Err:     fmt.Errorf("%w: OAuth client id and secret are required", common.ErrMissingCredential),
		}
	}
	return sheets.OAuth2Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		TokenFile:    cfg.TokenFile,
		CallbackAddr: sheets.DefaultCallbackAddr,
	}, nil
}
