package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App          AppConfig
	Postgres     PostgresConfig
	SQLite       SQLiteConfig
	Redis        RedisConfig
	Logger       LoggerConfig
	Auth         AuthConfig
	Notification NotificationConfig
	Simulator    SimulatorConfig
	Directory    DirectoryConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
}

// PostgresConfig holds DB connection values. An empty DSN keeps tasks in memory.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
	// ConnectAttempts bounds start-up retries while the database comes up.
	ConnectAttempts int
}

// SQLiteConfig points at the embedded store used when Postgres is not
// configured. An empty Path keeps tasks and accounts in memory.
type SQLiteConfig struct {
	Path string
}

// RedisConfig holds Redis connection values. An empty Addr keeps
// remembered sessions in memory.
type RedisConfig struct {
	Addr      string
	Password  string
	DB        int
	KeyPrefix string
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// AuthConfig defines authentication parameters.
type AuthConfig struct {
	JWTSecret             string
	AccessTokenTTLMinutes int
	BcryptCost            int
}

// NotificationConfig holds notification timing and outbound stub endpoints.
type NotificationConfig struct {
	DefaultTTLMs  int
	DetailedTTLMs int
	ReceiptTTLMs  int
	EmailFrom     string
	SMSSender     string
}

// SimulatorConfig sets the simulated latency and failure rate per operation.
type SimulatorConfig struct {
	LoginDelayMs             int
	SignupDelayMs            int
	SignupFailureProbability float64
	ComplaintDelayMs         int
	AssignDelayMs            int
	TransitionDelayMs        int
	PasswordResetDelayMs     int
}

// DirectoryConfig points at the worker/catalog/account source.
type DirectoryConfig struct {
	Path         string
	SeedAccounts bool
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}
	signupFailure, err := strconv.ParseFloat(getEnv("SIM_SIGNUP_FAILURE_PROBABILITY", "0.1"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid SIM_SIGNUP_FAILURE_PROBABILITY: %w", err)
	}
	if signupFailure < 0 || signupFailure > 1 {
		return nil, fmt.Errorf("SIM_SIGNUP_FAILURE_PROBABILITY out of range: %v", signupFailure)
	}

	maxConns := int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10))
	minConns := int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2))
	runMigrations := getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true)
	connMaxIdle := int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30))
	connMaxLife := int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300))

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "complaint-desk"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		Postgres: PostgresConfig{
			DSN:             os.Getenv("POSTGRES_DSN"),
			MaxConns:        maxConns,
			MinConns:        minConns,
			RunMigrations:   runMigrations,
			ConnMaxIdleSec:  connMaxIdle,
			ConnMaxLifeSec:  connMaxLife,
			ConnectAttempts: getEnvAsInt("POSTGRES_CONNECT_ATTEMPTS", 5),
		},
		SQLite: SQLiteConfig{
			Path: os.Getenv("SQLITE_PATH"),
		},
		Redis: RedisConfig{
			Addr:      os.Getenv("REDIS_ADDR"),
			Password:  os.Getenv("REDIS_PASSWORD"),
			DB:        redisDB,
			KeyPrefix: getEnv("REDIS_KEY_PREFIX", "complaint-desk:"),
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Auth: AuthConfig{
			JWTSecret:             getEnv("AUTH_JWT_SECRET", "dev-secret"),
			AccessTokenTTLMinutes: getEnvAsInt("AUTH_ACCESS_TOKEN_TTL_MINUTES", 60),
			BcryptCost:            getEnvAsInt("AUTH_BCRYPT_COST", 12),
		},
		Notification: NotificationConfig{
			DefaultTTLMs:  getEnvAsInt("NOTIFY_DEFAULT_TTL_MS", 6000),
			DetailedTTLMs: getEnvAsInt("NOTIFY_DETAILED_TTL_MS", 8000),
			ReceiptTTLMs:  getEnvAsInt("NOTIFY_RECEIPT_TTL_MS", 12000),
			EmailFrom:     getEnv("NOTIFY_EMAIL_FROM", "noreply@example.com"),
			SMSSender:     getEnv("NOTIFY_SMS_SENDER", ""),
		},
		Simulator: SimulatorConfig{
			LoginDelayMs:             getEnvAsInt("SIM_LOGIN_DELAY_MS", 1500),
			SignupDelayMs:            getEnvAsInt("SIM_SIGNUP_DELAY_MS", 2000),
			SignupFailureProbability: signupFailure,
			ComplaintDelayMs:         getEnvAsInt("SIM_COMPLAINT_DELAY_MS", 2500),
			AssignDelayMs:            getEnvAsInt("SIM_ASSIGN_DELAY_MS", 2000),
			TransitionDelayMs:        getEnvAsInt("SIM_TRANSITION_DELAY_MS", 2000),
			PasswordResetDelayMs:     getEnvAsInt("SIM_PASSWORD_RESET_DELAY_MS", 1000),
		},
		Directory: DirectoryConfig{
			Path:         getEnv("DIRECTORY_PATH", "configs/directory.yaml"),
			SeedAccounts: getEnvAsBool("DIRECTORY_SEED_ACCOUNTS", true),
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

// DefaultTTL is the lifetime of a plain notification.
func (n NotificationConfig) DefaultTTL() time.Duration {
	return millis(n.DefaultTTLMs, 6000)
}

// DetailedTTL is the lifetime of a notification carrying structured details.
func (n NotificationConfig) DetailedTTL() time.Duration {
	return millis(n.DetailedTTLMs, 8000)
}

// ReceiptTTL is the lifetime of a complaint receipt.
func (n NotificationConfig) ReceiptTTL() time.Duration {
	return millis(n.ReceiptTTLMs, 12000)
}

func millis(v, fallback int) time.Duration {
	if v <= 0 {
		v = fallback
	}
	return time.Duration(v) * time.Millisecond
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
