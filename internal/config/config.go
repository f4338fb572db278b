package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"
)

type Config struct {
	// HTTP Server
	Port           string
	TrustedProxies []string

	// Row store backend selection: memory, sheets or sqlite
	DataBackend string

	// Database
	SQLiteDBPath string

	// AMQP (optional, sqlite backend only)
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Google Sheets
	GoogleSpreadsheetID      string
	GoogleSheetName          string
	GoogleServiceAccountJSON string
	GoogleServiceAccountFile string
	GoogleSheetsEndpoint     string

	// Zaim ledger (OAuth 1.0a)
	ZaimBaseURL           string
	ZaimConsumerKey       string
	ZaimConsumerSecret    string
	ZaimAccessToken       string
	ZaimAccessTokenSecret string
	CardNameKeywords      []string

	// LINE Messaging API
	LineAPIBaseURL         string
	LineChannelAccessToken string
	LineChannelSecret      string

	// Companion mini-app URL returned by the bot
	WebAppURL string

	// Timezone used for "today" and billing cycles
	Timezone string

	HTTPClientTimeout time.Duration

	// Logging
	LogLevel  string
	LogFormat string
}

func Load() *Config {
	cfg := &Config{
		Port:           getEnv("PORT", "8081"),
		TrustedProxies: getEnvList("TRUSTED_PROXIES", nil),
		DataBackend:    getEnv("DATA_BACKEND", "memory"),
		SQLiteDBPath:   getEnv("SQLITE_DB_PATH", "./data/warikan.db"),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "warikan"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "mirror_advance_payments"),

		GoogleSpreadsheetID:      getEnv("GOOGLE_SPREADSHEET_ID", ""),
		GoogleSheetName:          getEnv("GOOGLE_SHEET_NAME", "AdvancePayments"),
		GoogleServiceAccountJSON: getEnv("GOOGLE_SERVICE_ACCOUNT_JSON", ""),
		GoogleServiceAccountFile: getEnv("GOOGLE_SERVICE_ACCOUNT_FILE", getEnv("GOOGLE_APPLICATION_CREDENTIALS", "")),
		GoogleSheetsEndpoint:     getEnv("GOOGLE_SHEETS_ENDPOINT", ""),

		ZaimBaseURL:           getEnv("ZAIM_BASE_URL", "https://api.zaim.net"),
		ZaimConsumerKey:       getEnv("ZAIM_CONSUMER_KEY", ""),
		ZaimConsumerSecret:    getEnv("ZAIM_CONSUMER_SECRET", ""),
		ZaimAccessToken:       getEnv("ZAIM_ACCESS_TOKEN", ""),
		ZaimAccessTokenSecret: getEnv("ZAIM_ACCESS_TOKEN_SECRET", ""),
		CardNameKeywords:      getEnvList("CARD_NAME_KEYWORDS", []string{"楽天", "カード"}),

		LineAPIBaseURL:         getEnv("LINE_API_BASE_URL", "https://api.line.me"),
		LineChannelAccessToken: getEnv("LINE_CHANNEL_ACCESS_TOKEN", ""),
		LineChannelSecret:      getEnv("LINE_CHANNEL_SECRET", ""),

		WebAppURL: getEnv("WEB_APP_URL", ""),
		Timezone:  getEnv("TIMEZONE", "Asia/Tokyo"),

		HTTPClientTimeout: getEnvDuration("HTTP_CLIENT_TIMEOUT", 30*time.Second),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "text"),
	}

	return cfg
}

// Location resolves the configured timezone, falling back to UTC.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	// Validate port
	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	// Validate data backend
	validBackends := []string{"memory", "sheets", "sqlite"}
	isValidBackend := false
	for _, backend := range validBackends {
		if c.DataBackend == backend {
			isValidBackend = true
			break
		}
	}
	if !isValidBackend {
		errors = append(errors, fmt.Sprintf("invalid data backend '%s': must be one of %v", c.DataBackend, validBackends))
	}

	if c.DataBackend == "sqlite" {
		if c.SQLiteDBPath == "" {
			errors = append(errors, "SQLite database path cannot be empty when using sqlite backend")
		} else {
			dir := filepath.Dir(c.SQLiteDBPath)
			if dir != "." && dir != "" {
				if _, err := os.Stat(dir); os.IsNotExist(err) {
					if err := os.MkdirAll(dir, 0755); err != nil {
						errors = append(errors, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
					}
				}
			}
		}
	}

	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errors = append(errors, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	if c.DataBackend == "sheets" {
		errors = append(errors, c.validateSheets()...)
	}

	if !isHTTPURL(c.ZaimBaseURL) {
		errors = append(errors, fmt.Sprintf("invalid Zaim base URL '%s'", c.ZaimBaseURL))
	}
	if !isHTTPURL(c.LineAPIBaseURL) {
		errors = append(errors, fmt.Sprintf("invalid LINE API base URL '%s'", c.LineAPIBaseURL))
	}
	if c.WebAppURL != "" && !isHTTPURL(c.WebAppURL) {
		errors = append(errors, fmt.Sprintf("invalid web app URL '%s'", c.WebAppURL))
	}
	if len(c.CardNameKeywords) == 0 {
		errors = append(errors, "at least one card name keyword is required")
	}

	if _, err := time.LoadLocation(c.Timezone); err != nil {
		errors = append(errors, fmt.Sprintf("invalid timezone '%s': %v", c.Timezone, err))
	}

	if c.HTTPClientTimeout < time.Second {
		errors = append(errors, fmt.Sprintf("invalid HTTP client timeout %v: must be at least 1 second", c.HTTPClientTimeout))
	} else if c.HTTPClientTimeout > 5*time.Minute {
		errors = append(errors, fmt.Sprintf("invalid HTTP client timeout %v: must be at most 5 minutes", c.HTTPClientTimeout))
	}

	switch strings.ToLower(c.LogFormat) {
	case "text", "json", "tint":
	default:
		errors = append(errors, fmt.Sprintf("invalid log format '%s': must be one of [text json tint]", c.LogFormat))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

func (c *Config) validateSheets() []string {
	var errors []string
	if c.GoogleSpreadsheetID == "" {
		errors = append(errors, "Google Spreadsheet ID is required when using sheets backend")
	}
	if c.GoogleSheetName == "" {
		errors = append(errors, "Google Sheet name is required when using sheets backend")
	}
	if c.GoogleServiceAccountJSON == "" && c.GoogleServiceAccountFile == "" {
		errors = append(errors, "either GOOGLE_SERVICE_ACCOUNT_JSON or GOOGLE_SERVICE_ACCOUNT_FILE must be provided for sheets backend")
	}
	if c.GoogleServiceAccountFile != "" {
		if _, err := os.Stat(c.GoogleServiceAccountFile); os.IsNotExist(err) {
			errors = append(errors, fmt.Sprintf("Google service account file does not exist: %s", c.GoogleServiceAccountFile))
		}
	}
	return errors
}

// ZaimConfigured reports whether all four OAuth credentials are present.
func (c *Config) ZaimConfigured() bool {
	return c.ZaimConsumerKey != "" && c.ZaimConsumerSecret != "" &&
		c.ZaimAccessToken != "" && c.ZaimAccessTokenSecret != ""
}

func isHTTPURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
