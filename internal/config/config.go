// Package config reads the process environment into one Config value built
// once at startup. Commands validate only the parts they use.
package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	ProviderGemini    = "gemini"
	ProviderAnthropic = "anthropic"
	ProviderNone      = "none"
)

type Config struct {
	KindleDBPath       string   `env:"KINDLE_DB_PATH" validate:"required"`
	CSVPath            string   `env:"CSV_PATH" validate:"required"`
	ExcludeContentTags []string `env:"EXCLUDE_CONTENT_TAGS"`
	PurchaseDateSince  string   `env:"PURCHASE_DATE_SINCE"`
	RetryMaxAttempts   int      `env:"RETRY_MAX_ATTEMPTS" validate:"min=1,max=20"`
	LogLevel           string   `env:"LOG_LEVEL" validate:"oneof=debug info warn error"`
	LogFile            string   `env:"LOG_FILE"`

	Notion     Notion
	Enrichment Enrichment
	Ledger     Ledger
	Server     Server
}

type Notion struct {
	Token      string  `env:"NOTION_API_TOKEN" validate:"required"`
	DatabaseID string  `env:"NOTION_DB_ID" validate:"required"`
	RPS        float64 `env:"NOTION_RPS" validate:"gte=0"`
	Properties Properties
}

// Properties names the database columns records are written to.
type Properties struct {
	Title           string `env:"NOTION_PROP_TITLE" validate:"required"`
	Author          string `env:"NOTION_PROP_AUTHOR" validate:"required"`
	Publisher       string `env:"NOTION_PROP_PUBLISHER" validate:"required"`
	ASIN            string `env:"NOTION_PROP_ASIN" validate:"required"`
	PurchaseDate    string `env:"NOTION_PROP_PURCHASE_DATE" validate:"required"`
	PublicationDate string `env:"NOTION_PROP_PUBLICATION_DATE" validate:"required"`
	Tags            string `env:"NOTION_PROP_TAGS" validate:"required"`
	Type            string `env:"NOTION_PROP_TYPE" validate:"required"`
}

type Enrichment struct {
	GoogleBooksAPIKey string `env:"GOOGLE_BOOKS_API_KEY"`
	Provider          string `env:"CLASSIFIER_PROVIDER" validate:"oneof=gemini anthropic none"`
	GeminiAPIKey      string `env:"GEMINI_API_KEY" validate:"required_if=Provider gemini"`
	GeminiModel       string `env:"GEMINI_MODEL"`
	AnthropicAPIKey   string `env:"ANTHROPIC_API_KEY" validate:"required_if=Provider anthropic"`
	AnthropicModel    string `env:"ANTHROPIC_MODEL"`
	CacheSize         int    `env:"LOOKUP_CACHE_SIZE" validate:"gte=0"`
}

// Ledger is the optional run history database. An empty DSN disables it.
type Ledger struct {
	DSN string `env:"DB_DSN" validate:"omitempty,url"`
}

type Server struct {
	Addr         string  `env:"APP_ADDR" validate:"required"`
	Secret       string  `env:"SYNC_SECRET" validate:"required"`
	RateLimitRPS float64 `env:"JOBS_RATE_LIMIT_RPS" validate:"gt=0"`
}

// LoadEnvFiles reads .env and .env.local without overriding variables the
// process already has.
func LoadEnvFiles() {
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")
}

// Load builds Config from the environment and validates the settings every
// command needs.
func Load() (Config, error) {
	cfg := Config{
		KindleDBPath:       getenv("KINDLE_DB_PATH", "data/BookData.sqlite"),
		CSVPath:            getenv("CSV_PATH", "cleaned_result.csv"),
		ExcludeContentTags: getenvList("EXCLUDE_CONTENT_TAGS"),
		PurchaseDateSince:  getenv("PURCHASE_DATE_SINCE", ""),
		RetryMaxAttempts:   getenvInt("RETRY_MAX_ATTEMPTS", 5),
		LogLevel:           strings.ToLower(getenv("LOG_LEVEL", "info")),
		LogFile:            getenv("LOG_FILE", ""),
		Notion: Notion{
			Token:      getenv("NOTION_API_TOKEN", ""),
			DatabaseID: getenv("NOTION_DB_ID", ""),
			RPS:        getenvFloat("NOTION_RPS", 3),
			Properties: Properties{
				Title:           getenv("NOTION_PROP_TITLE", "タイトル"),
				Author:          getenv("NOTION_PROP_AUTHOR", "著者"),
				Publisher:       getenv("NOTION_PROP_PUBLISHER", "出版社"),
				ASIN:            getenv("NOTION_PROP_ASIN", "ASIN"),
				PurchaseDate:    getenv("NOTION_PROP_PURCHASE_DATE", "購入日"),
				PublicationDate: getenv("NOTION_PROP_PUBLICATION_DATE", "出版日"),
				Tags:            getenv("NOTION_PROP_TAGS", "タグ"),
				Type:            getenv("NOTION_PROP_TYPE", "種別"),
			},
		},
		Enrichment: Enrichment{
			GoogleBooksAPIKey: getenv("GOOGLE_BOOKS_API_KEY", ""),
			Provider:          strings.ToLower(getenv("CLASSIFIER_PROVIDER", ProviderGemini)),
			GeminiAPIKey:      getenv("GEMINI_API_KEY", ""),
			GeminiModel:       getenv("GEMINI_MODEL", ""),
			AnthropicAPIKey:   getenv("ANTHROPIC_API_KEY", ""),
			AnthropicModel:    getenv("ANTHROPIC_MODEL", ""),
			CacheSize:         getenvInt("LOOKUP_CACHE_SIZE", 512),
		},
		Ledger: Ledger{
			DSN: getenv("DB_DSN", ""),
		},
		Server: Server{
			Addr:         getenv("APP_ADDR", ":8080"),
			Secret:       getenv("SYNC_SECRET", ""),
			RateLimitRPS: getenvFloat("JOBS_RATE_LIMIT_RPS", 0.2),
		},
	}
	if err := check(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func getenv(key, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}

func getenvInt(key string, fallback int) int {
	value := getenv(key, "")
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getenvFloat(key string, fallback float64) float64 {
	value := getenv(key, "")
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fallback
	}
	return parsed
}

// getenvList splits a comma list, dropping blank items.
func getenvList(key string) []string {
	var out []string
	for _, item := range strings.Split(os.Getenv(key), ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
