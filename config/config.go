package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/yourusername/realtor-intake-bot/internal/domain/constants"
)

// Config application configuration
type Config struct {
	TelegramToken     string
	AllowEmptySecrets bool

	// Rule tables source. Exactly one is used, checked in order:
	// Google Sheets, local XLSX workbook, local YAML file.
	SpreadsheetID         string
	SheetsCredentialsJSON string
	RulesXLSXPath         string
	RulesYAMLPath         string
	RulesCacheTTL         time.Duration

	// Listings search API
	ListingsAPIURL    string
	ListingsAPIKey    string
	ListingsLimit     int
	ListingsMediaBase string

	// Dialog persistence (memory store when empty)
	PostgresDSN string

	// Group chat that receives viewing-request notifications (optional)
	NotifyChatID   int64
	NotifyThreadID int

	SilenceThreshold time.Duration
	SessionIdleTTL   time.Duration
}

// Load reads configuration from the environment (.env supported)
func Load() (*Config, error) {
	// Load .env when present
	_ = godotenv.Load()

	config := &Config{
		TelegramToken:         os.Getenv("TELEGRAM_BOT_TOKEN"),
		AllowEmptySecrets:     getEnvBool("ALLOW_EMPTY_SECRETS", false),
		SpreadsheetID:         strings.TrimSpace(os.Getenv("GOOGLE_SPREADSHEET_ID")),
		SheetsCredentialsJSON: os.Getenv("GOOGLE_SHEETS_CREDENTIALS_JSON"),
		RulesXLSXPath:         strings.TrimSpace(os.Getenv("RULES_XLSX_PATH")),
		RulesYAMLPath:         strings.TrimSpace(os.Getenv("RULES_YAML_PATH")),
		RulesCacheTTL:         getEnvDuration("RULES_CACHE_TTL_SECONDS", constants.DefaultRulesCacheTTL),
		ListingsAPIURL:        strings.TrimSpace(os.Getenv("LISTINGS_API_URL")),
		ListingsAPIKey:        strings.TrimSpace(os.Getenv("LISTINGS_API_KEY")),
		ListingsLimit:         getEnvInt("LISTINGS_LIMIT", constants.DefaultListingsLimit),
		ListingsMediaBase:     strings.TrimSpace(os.Getenv("LISTINGS_MEDIA_BASE")),
		PostgresDSN:           strings.TrimSpace(os.Getenv("POSTGRES_DSN")),
		SilenceThreshold:      getEnvDuration("SILENCE_THRESHOLD_SECONDS", constants.DefaultSilenceThreshold),
		SessionIdleTTL:        getEnvDuration("SESSION_IDLE_TTL_SECONDS", constants.DefaultSessionIdleTTL),
	}

	if config.PostgresDSN == "" {
		config.PostgresDSN = postgresDSNFromParts()
	}

	if raw := os.Getenv("NOTIFY_CHAT_ID"); raw != "" {
		chatID, threadID, err := parseChatTarget(raw)
		if err != nil {
			return nil, fmt.Errorf("NOTIFY_CHAT_ID has invalid format: %v", err)
		}
		config.NotifyChatID = chatID
		config.NotifyThreadID = threadID
	}

	if !config.AllowEmptySecrets {
		if config.TelegramToken == "" {
			return nil, fmt.Errorf("TELEGRAM_BOT_TOKEN environment variable is empty")
		}
		if config.SpreadsheetID == "" && config.RulesXLSXPath == "" && config.RulesYAMLPath == "" {
			return nil, fmt.Errorf("no rule source configured: set GOOGLE_SPREADSHEET_ID, RULES_XLSX_PATH or RULES_YAML_PATH")
		}
		if config.SpreadsheetID != "" && strings.TrimSpace(config.SheetsCredentialsJSON) == "" {
			return nil, fmt.Errorf("GOOGLE_SHEETS_CREDENTIALS_JSON is required when GOOGLE_SPREADSHEET_ID is set")
		}
	}

	return config, nil
}

// postgresDSNFromParts assembles a DSN from discrete DB_* variables,
// for deployments that configure the database piecewise instead of via
// POSTGRES_DSN. Returns "" when DB_HOST or DB_NAME is not set.
func postgresDSNFromParts() string {
	host := strings.TrimSpace(os.Getenv("DB_HOST"))
	name := strings.TrimSpace(os.Getenv("DB_NAME"))
	if host == "" || name == "" {
		return ""
	}
	port := strings.TrimSpace(os.Getenv("DB_PORT"))
	if port == "" {
		port = "5432"
	}
	sslMode := strings.TrimSpace(os.Getenv("DB_SSLMODE"))
	if sslMode == "" {
		sslMode = "disable"
	}

	parts := []string{
		"host=" + host,
		"port=" + port,
		"dbname=" + name,
		"sslmode=" + sslMode,
	}
	if user := strings.TrimSpace(os.Getenv("DB_USER")); user != "" {
		parts = append(parts, "user="+user)
	}
	if pass := os.Getenv("DB_PASSWORD"); pass != "" {
		parts = append(parts, "password="+pass)
	}
	return strings.Join(parts, " ")
}

// parseChatTarget parses "-1001234567890" or "-1001234567890/4" (chat/topic).
func parseChatTarget(raw string) (int64, int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, 0, nil
	}
	// Inline comments supported: "-100.../4  # note"
	if idx := strings.Index(raw, "#"); idx >= 0 {
		raw = strings.TrimSpace(raw[:idx])
	}
	parts := strings.Split(raw, "/")
	if len(parts) > 2 {
		return 0, 0, fmt.Errorf("bad format, example: -1001234567890 or -1001234567890/2")
	}

	chatID, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return 0, 0, err
	}
	if chatID > 0 {
		// Supergroups/channels must be negative, fix up automatically
		chatID = -chatID
	}

	threadID := 0
	if len(parts) == 2 && strings.TrimSpace(parts[1]) != "" {
		tid, err := strconv.Atoi(parts[1])
		if err != nil {
			return 0, 0, fmt.Errorf("bad topic ID: %v", err)
		}
		if tid < 0 {
			tid = -tid
		}
		threadID = tid
	}

	return chatID, threadID, nil
}

func getEnvBool(key string, defaultValue bool) bool {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	switch strings.ToLower(value) {
	case "1", "true", "yes", "y", "on":
		return true
	case "0", "false", "no", "n", "off":
		return false
	default:
		return defaultValue
	}
}

func getEnvInt(key string, defaultValue int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue
	}
	val, err := strconv.Atoi(raw)
	if err != nil {
		return defaultValue
	}
	return val
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	seconds := getEnvInt(key, 0)
	if seconds <= 0 {
		return defaultValue
	}
	return time.Duration(seconds) * time.Second
}
