package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the bot.
type Config struct {
	App      AppConfig
	Discord  DiscordConfig
	Support  SupportConfig
	Postgres PostgresConfig
	Redis    RedisConfig
	Logger   LoggerConfig
	Notify   NotifyConfig
}

// AppConfig controls the operational HTTP surface.
type AppConfig struct {
	Name    string
	Env     string
	Host    string
	Port    string
	Version string
}

// DiscordConfig holds gateway connection values and the fixed channel topology.
type DiscordConfig struct {
	Token               string
	GuildID             string
	SubmissionChannelID string
	LogsChannelID       string
	ChannelCategoryID   string
	CommandPrefix       string
}

// Category is one selectable support category.
type Category struct {
	Key   string
	Label string
}

// SupportConfig defines the ticket workflow parameters.
type SupportConfig struct {
	SupportRoleIDs []string
	Categories     []Category
	CloseReasons   []string
	SelectTimeout  time.Duration
	UserCacheTTL   time.Duration
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// NotifyConfig holds the optional notification webhook endpoint.
type NotifyConfig struct {
	WebhookURL string
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	token := os.Getenv("DISCORD_TOKEN")
	if token == "" {
		return nil, fmt.Errorf("DISCORD_TOKEN is required")
	}

	categories, err := ParseCategories(getEnv("SUPPORT_CATEGORIES", "billing:Billing Support,technical:Technical Support,other:Other"))
	if err != nil {
		return nil, fmt.Errorf("invalid SUPPORT_CATEGORIES: %w", err)
	}

	cfg := &Config{
		App: AppConfig{
			Name:    getEnv("APP_NAME", "support-bot"),
			Env:     getEnv("APP_ENV", "development"),
			Host:    getEnv("APP_HOST", "0.0.0.0"),
			Port:    getEnv("APP_PORT", "8080"),
			Version: getEnv("APP_VERSION", "dev"),
		},
		Discord: DiscordConfig{
			Token:               token,
			GuildID:             os.Getenv("DISCORD_GUILD_ID"),
			SubmissionChannelID: os.Getenv("TICKET_SUBMISSION_CHANNEL_ID"),
			LogsChannelID:       os.Getenv("TICKET_LOGS_CHANNEL_ID"),
			ChannelCategoryID:   os.Getenv("TICKET_CHANNEL_CATEGORY_ID"),
			CommandPrefix:       getEnv("COMMAND_PREFIX", "!"),
		},
		Support: SupportConfig{
			SupportRoleIDs: splitList(os.Getenv("SUPPORT_ROLE_IDS")),
			Categories:     categories,
			CloseReasons:   splitList(getEnv("SUPPORT_CLOSE_REASONS", "Resolved,Duplicate,No response")),
			SelectTimeout:  time.Duration(getEnvAsInt("SUPPORT_SELECT_TIMEOUT_SECONDS", 60)) * time.Second,
			UserCacheTTL:   time.Duration(getEnvAsInt("USER_CACHE_TTL_SECONDS", 600)) * time.Second,
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10)),
			MinConns:       int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2)),
			RunMigrations:  getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true),
			ConnMaxIdleSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30)),
			ConnMaxLifeSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300)),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Notify: NotifyConfig{
			WebhookURL: getEnv("NOTIFY_WEBHOOK_URL", ""),
		},
	}

	return cfg, nil
}

// Addr returns the ops HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// ParseCategories parses "key:Label,key:Label" pairs.
func ParseCategories(raw string) ([]Category, error) {
	var result []Category
	for _, pair := range splitList(raw) {
		key, label, found := strings.Cut(pair, ":")
		if !found || key == "" || label == "" {
			return nil, fmt.Errorf("malformed category %q", pair)
		}
		result = append(result, Category{Key: key, Label: label})
	}
	if len(result) == 0 {
		return nil, fmt.Errorf("no categories configured")
	}
	return result, nil
}

func splitList(raw string) []string {
	var result []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}
