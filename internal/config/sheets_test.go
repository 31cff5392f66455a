package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/clash-cost/internal/common"
	"github.com/Veraticus/clash-cost/internal/sheets"
)

func clearSheetsEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"GOOGLE_SHEETS_CLIENT_ID",
		"GOOGLE_SHEETS_CLIENT_SECRET",
		"GOOGLE_SHEETS_REFRESH_TOKEN",
		"GOOGLE_SHEETS_SERVICE_ACCOUNT_PATH",
		"GOOGLE_SHEETS_SPREADSHEET_ID",
		"GOOGLE_SHEETS_SPREADSHEET_NAME",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadSheetsConfig(t *testing.T) {
	clearSheetsEnv(t)
	t.Setenv("HOME", "/home/tester")

	cfg, err := LoadSheetsConfig(newViper(map[string]any{
		"sheets.client_id":      "id",
		"sheets.client_secret":  "secret",
		"sheets.refresh_token":  "refresh",
		"sheets.spreadsheet_id": "sheet-1",
	}))
	require.NoError(t, err)
	assert.Equal(t, "sheet-1", cfg.SpreadsheetID)
	assert.Equal(t, sheets.DefaultSpreadsheetName, cfg.SpreadsheetName)
	assert.Equal(t, "/home/tester/.config/clash/sheets-token.json", cfg.TokenFile)
}

func TestLoadSheetsConfig_EnvFallback(t *testing.T) {
	clearSheetsEnv(t)
	t.Setenv("GOOGLE_SHEETS_SERVICE_ACCOUNT_PATH", "/keys/sa.json")

	cfg, err := LoadSheetsConfig(newViper(map[string]any{"sheets.token_file": "/tmp/missing-token.json"}))
	require.NoError(t, err)
	assert.Equal(t, "/keys/sa.json", cfg.ServiceAccountPath)
}

func TestLoadSheetsConfig_MissingAuth(t *testing.T) {
	clearSheetsEnv(t)
	_, err := LoadSheetsConfig(newViper(map[string]any{"sheets.token_file": "/tmp/missing-token.json"}))
	assert.Error(t, err)
}

func TestLoadOAuthConfig(t *testing.T) {
	clearSheetsEnv(t)

	_, err := LoadOAuthConfig(newViper(nil))
	require.ErrorIs(t, err, common.ErrMissingCredential)

	t.Setenv("GOOGLE_SHEETS_CLIENT_SECRET", "secret")
	oauth, err := LoadOAuthConfig(newViper(map[string]any{
		"sheets.client_id":  "id",
		"sheets.token_file": "/tmp/token.json",
	}))
	require.NoError(t, err)
	assert.Equal(t, sheets.OAuth2Config{
		ClientID:     "id",
		ClientSecret: "secret",
		TokenFile:    "/tmp/token.json",
		CallbackAddr: sheets.DefaultCallbackAddr,
	}, oauth)
}
