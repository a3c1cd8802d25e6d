package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"KINDLE_DB_PATH", "CSV_PATH", "EXCLUDE_CONTENT_TAGS", "PURCHASE_DATE_SINCE",
		"RETRY_MAX_ATTEMPTS", "LOG_LEVEL", "LOG_FILE",
		"NOTION_API_TOKEN", "NOTION_DB_ID", "NOTION_RPS", "NOTION_PROP_TITLE",
		"CLASSIFIER_PROVIDER", "GEMINI_API_KEY", "ANTHROPIC_API_KEY",
		"DB_DSN", "APP_ADDR", "SYNC_SECRET",
	} {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "data/BookData.sqlite", cfg.KindleDBPath)
	assert.Equal(t, "cleaned_result.csv", cfg.CSVPath)
	assert.Equal(t, 5, cfg.RetryMaxAttempts)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 3.0, cfg.Notion.RPS)
	assert.Equal(t, "タイトル", cfg.Notion.Properties.Title)
	assert.Equal(t, ProviderGemini, cfg.Enrichment.Provider)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Nil(t, cfg.ExcludeContentTags)
}

func TestLoad_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("EXCLUDE_CONTENT_TAGS", " Sample, ,Comic ")
	t.Setenv("RETRY_MAX_ATTEMPTS", "3")
	t.Setenv("NOTION_RPS", "1.5")
	t.Setenv("NOTION_PROP_TITLE", "Name")
	t.Setenv("LOG_LEVEL", "DEBUG")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"Sample", "Comic"}, cfg.ExcludeContentTags)
	assert.Equal(t, 3, cfg.RetryMaxAttempts)
	assert.Equal(t, 1.5, cfg.Notion.RPS)
	assert.Equal(t, "Name", cfg.Notion.Properties.Title)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoad_Invalid(t *testing.T) {
	clearEnv(t)
	t.Setenv("LOG_LEVEL", "loud")

	_, err := Load()
	assert.ErrorIs(t, err, ErrInvalid)
	assert.Contains(t, err.Error(), "LOG_LEVEL")
}

func TestRequireNotion(t *testing.T) {
	clearEnv(t)
	cfg, err := Load()
	require.NoError(t, err)

	err = cfg.RequireNotion()
	assert.ErrorIs(t, err, ErrMissing)
	assert.Contains(t, err.Error(), "NOTION_API_TOKEN")
	assert.Contains(t, err.Error(), "NOTION_DB_ID")

	cfg.Notion.Token, cfg.Notion.DatabaseID = "secret", "db"
	assert.NoError(t, cfg.RequireNotion())
}

func TestRequireEnrichment(t *testing.T) {
	tests := []struct {
		name    string
		enrich  Enrichment
		wantErr error
	}{
		{"gemini with key", Enrichment{Provider: ProviderGemini, GeminiAPIKey: "k"}, nil},
		{"gemini without key", Enrichment{Provider: ProviderGemini}, ErrMissing},
		{"anthropic without key", Enrichment{Provider: ProviderAnthropic, GeminiAPIKey: "k"}, ErrMissing},
		{"anthropic with key", Enrichment{Provider: ProviderAnthropic, AnthropicAPIKey: "k"}, nil},
		{"none", Enrichment{Provider: ProviderNone}, nil},
		{"unknown provider", Enrichment{Provider: "openai"}, ErrInvalid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Config{Enrichment: tt.enrich}.RequireEnrichment()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestRequireLedger(t *testing.T) {
	assert.NoError(t, Config{}.RequireLedger())
	assert.NoError(t, Config{Ledger: Ledger{DSN: "postgres://u:p@localhost:5432/db"}}.RequireLedger())
	assert.ErrorIs(t, Config{Ledger: Ledger{DSN: "not a url"}}.RequireLedger(), ErrInvalid)
}

func TestRequireServer(t *testing.T) {
	clearEnv(t)
	cfg, err := Load()
	require.NoError(t, err)

	err = cfg.RequireServer()
	require.ErrorIs(t, err, ErrMissing)
	assert.Contains(t, err.Error(), "SYNC_SECRET")

	cfg.Server.Secret = "s3cret"
	assert.NoError(t, cfg.RequireServer())

	cfg.Server.RateLimitRPS = 0
	assert.ErrorIs(t, cfg.RequireServer(), ErrInvalid)
}

func TestStruct_FlagNames(t *testing.T) {
	input := struct {
		Title string `flag:"title" validate:"required"`
		ASIN  string `flag:"asin" validate:"required,asin"`
	}{Title: "Dune", ASIN: "b0-bad"}

	err := Struct(input)
	assert.ErrorIs(t, err, ErrInvalid)
	assert.Contains(t, err.Error(), "asin must be 10")

	input.ASIN = "B000FC0SIM"
	assert.NoError(t, Struct(input))
}

func TestValidASIN(t *testing.T) {
	assert.True(t, ValidASIN("4101092052"))
	assert.True(t, ValidASIN("B07XYZ1234"))
	assert.False(t, ValidASIN("B07XYZ123"))
	assert.False(t, ValidASIN("b07xyz1234"))
}

func TestLoadEnvFiles_DoesNotOverrideExistingEnv(t *testing.T) {
	tmp := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(tmp, ".env"), []byte("NOTION_DB_ID=from_file\nSYNC_SECRET=file_secret\n"), 0o644))

	t.Setenv("NOTION_DB_ID", "from_env")
	t.Setenv("SYNC_SECRET", "")
	require.NoError(t, os.Unsetenv("SYNC_SECRET"))

	cwd, _ := os.Getwd()
	require.NoError(t, os.Chdir(tmp))
	t.Cleanup(func() { _ = os.Chdir(cwd) })

	LoadEnvFiles()

	assert.Equal(t, "from_env", os.Getenv("NOTION_DB_ID"))
	assert.Equal(t, "file_secret", os.Getenv("SYNC_SECRET"))
}
