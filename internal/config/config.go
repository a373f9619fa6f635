package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for HAF.
type Config struct {
	App      AppConfig
	Paths    PathsConfig
	Browser  BrowserConfig
	Workflow WorkflowConfig
	Postgres PostgresConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
	Logger   LoggerConfig
	Auth     AuthConfig
}

// AppConfig controls the local operator API.
type AppConfig struct {
	Name                  string
	Version               string
	Host                  string
	Port                  string
	RequestTimeoutSeconds int
}

// PathsConfig locates the file-backed stores.
type PathsConfig struct {
	DataDir       string
	Templates     string
	Call          string
	LogText       string
	Snapshot      string
	Settings      string
	ChromeProfile string
	PortalProfile string
}

// BrowserConfig tunes the Chrome session.
type BrowserConfig struct {
	Headless             bool
	ExecPath             string
	ActionTimeoutSeconds int
	LoginTimeoutSeconds  int
}

// WorkflowConfig tunes ticket processing.
type WorkflowConfig struct {
	OpenMaxAttempts int
	DefaultTeam     string
}

// PostgresConfig holds the optional archive database values.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds the optional recent-entry cache values.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Recent   int
}

// KafkaConfig holds the optional event stream values.
type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level  string
	Output string
}

// AuthConfig defines local API authentication parameters.
type AuthConfig struct {
	JWTSecret             string
	AccessTokenTTLMinutes int
	BcryptCost            int
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	dataDir := getEnv("HAF_DATA_DIR", "data")

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "haf"),
			Version:               getEnv("APP_VERSION", "dev"),
			Host:                  getEnv("APP_HOST", "127.0.0.1"),
			Port:                  getEnv("APP_PORT", "8765"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		Paths: PathsConfig{
			DataDir:       dataDir,
			Templates:     getEnv("HAF_TEMPLATES_PATH", filepath.Join(dataDir, "dictionary.json")),
			Call:          getEnv("HAF_CALL_PATH", filepath.Join(dataDir, "call.json")),
			LogText:       getEnv("HAF_LOG_PATH", filepath.Join(dataDir, "log.txt")),
			Snapshot:      getEnv("HAF_SNAPSHOT_PATH", filepath.Join(dataDir, "persistent.json")),
			Settings:      getEnv("HAF_SETTINGS_PATH", filepath.Join(dataDir, "config.ini")),
			ChromeProfile: getEnv("HAF_CHROME_PROFILE", filepath.Join(dataDir, "chrome-profile")),
			PortalProfile: os.Getenv("PORTAL_PROFILE"),
		},
		Browser: BrowserConfig{
			Headless:             getEnvAsBool("BROWSER_HEADLESS", false),
			ExecPath:             os.Getenv("BROWSER_EXEC_PATH"),
			ActionTimeoutSeconds: getEnvAsInt("BROWSER_ACTION_TIMEOUT_SECONDS", 10),
			LoginTimeoutSeconds:  getEnvAsInt("BROWSER_LOGIN_TIMEOUT_SECONDS", 300),
		},
		Workflow: WorkflowConfig{
			OpenMaxAttempts: getEnvAsInt("OPEN_MAX_ATTEMPTS", 3),
			DefaultTeam:     getEnv("DEFAULT_TEAM", "VE.INFRA.BR.SERVICE DESK"),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       int32(getEnvAsInt("POSTGRES_MAX_CONNS", 4)),
			MinConns:       int32(getEnvAsInt("POSTGRES_MIN_CONNS", 1)),
			ConnMaxIdleSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30)),
			ConnMaxLifeSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300)),
		},
		Redis: RedisConfig{
			Addr:     os.Getenv("REDIS_ADDR"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
			Recent:   getEnvAsInt("REDIS_RECENT_ENTRIES", 50),
		},
		Kafka: KafkaConfig{
			Brokers: getEnvAsList("KAFKA_BROKERS"),
			Topic:   getEnv("KAFKA_TOPIC", "haf-tickets"),
		},
		Logger: LoggerConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Output: getEnv("LOG_OUTPUT", "stderr"),
		},
		Auth: AuthConfig{
			JWTSecret:             getEnv("AUTH_JWT_SECRET", "dev-secret"),
			AccessTokenTTLMinutes: getEnvAsInt("AUTH_ACCESS_TOKEN_TTL_MINUTES", 480),
			BcryptCost:            getEnvAsInt("AUTH_BCRYPT_COST", 10),
		},
	}

	return cfg, nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// ActionTimeout bounds a single browser interaction.
func (b BrowserConfig) ActionTimeout() time.Duration {
	if b.ActionTimeoutSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(b.ActionTimeoutSeconds) * time.Second
}

// LoginTimeout bounds the Microsoft login, MFA approval included.
func (b BrowserConfig) LoginTimeout() time.Duration {
	if b.LoginTimeoutSeconds <= 0 {
		return 5 * time.Minute
	}
	return time.Duration(b.LoginTimeoutSeconds) * time.Second
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

func getEnvAsList(key string) []string {
	val := os.Getenv(key)
	if val == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(val, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
