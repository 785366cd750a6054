package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
	AI        AIConfig
	Payment   PaymentConfig
	Email     EmailConfig
	Interview InterviewConfig
	Scheduler SchedulerConfig

	LogLevel        string
	MigrationsDir   string
	MigrateOnStart  bool
	PlansFile       string
	JobPageHeadless bool
}

type AppConfig struct {
	AppName     string
	Environment string
	HTTPPort    string
}

func (c AppConfig) IsProduction() bool {
	return strings.EqualFold(c.Environment, "production") || strings.EqualFold(c.Environment, "prod")
}

type DatabaseConfig struct {
	DBHost     string
	DBPort     string
	DBName     string
	DBUser     string
	DBPassword string
	DBSSLMode  string

	ConnectTimeout        time.Duration
	PoolMaxConns          int32
	PoolMinConns          int32
	PoolMaxConnLifetime   time.Duration
	PoolMaxConnIdleTime   time.Duration
	PoolHealthCheckPeriod time.Duration
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	TTL      time.Duration
}

func (c RedisConfig) Addr() string {
	return c.Host + ":" + c.Port
}

type JWTConfig struct {
	AccessSecret     string
	RefreshSecret    string
	AccessExpiresIn  time.Duration
	RefreshExpiresIn time.Duration
}

type AIConfig struct {
	BaseURL       string
	Timeout       time.Duration
	RatePerMinute int
}

type PaymentConfig struct {
	BaseURL    string
	KeyID      string
	Currency   string
	PendingTTL time.Duration
}

type EmailConfig struct {
	ResendAPIKey string
	From         string
}

type InterviewConfig struct {
	FreePlanLimit   int
	AnalysisWorkers int
}

type SchedulerConfig struct {
	PaymentExpirySpec     string
	LeaderboardWarmupSpec string
}

var errMissingRequiredEnv = errors.New("missing required environment variables")

// Load reads configuration from the environment. A .env file in the working
// directory is loaded first when present; real environment variables win.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{}

	var missing []string
	var invalid []string
	req := func(key string) string {
		v := strings.TrimSpace(os.Getenv(key))
		if v == "" {
			missing = append(missing, key)
		}
		return v
	}
	opt := func(key string) string {
		return strings.TrimSpace(os.Getenv(key))
	}
	optDefault := func(key, def string) string {
		v := opt(key)
		if v == "" {
			return def
		}
		return v
	}
	optDuration := func(key string, def time.Duration) time.Duration {
		v := opt(key)
		if v == "" {
			return def
		}
		d, err := time.ParseDuration(v)
		if err != nil || d < 0 {
			invalid = append(invalid, key)
			return def
		}
		return d
	}
	optInt := func(key string, def int) int {
		v := opt(key)
		if v == "" {
			return def
		}
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			invalid = append(invalid, key)
			return def
		}
		return n
	}
	optBool := func(key string, def bool) bool {
		v := opt(key)
		if v == "" {
			return def
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			invalid = append(invalid, key)
			return def
		}
		return b
	}

	cfg.App = AppConfig{
		AppName:     req("APP_NAME"),
		Environment: req("APP_ENV"),
		HTTPPort:    req("HTTP_PORT"),
	}

	cfg.Database = DatabaseConfig{
		DBHost:                opt("DB_HOST"),
		DBPort:                opt("DB_PORT"),
		DBName:                opt("DB_NAME"),
		DBUser:                opt("DB_USER"),
		DBPassword:            opt("DB_PASSWORD"),
		DBSSLMode:             optDefault("DB_SSL_MODE", "disable"),
		ConnectTimeout:        optDuration("DB_CONNECT_TIMEOUT", 5*time.Second),
		PoolMaxConns:          int32(optInt("DB_POOL_MAX_CONNS", 10)),
		PoolMinConns:          int32(optInt("DB_POOL_MIN_CONNS", 0)),
		PoolMaxConnLifetime:   optDuration("DB_POOL_MAX_CONN_LIFETIME", time.Hour),
		PoolMaxConnIdleTime:   optDuration("DB_POOL_MAX_CONN_IDLE_TIME", 30*time.Minute),
		PoolHealthCheckPeriod: optDuration("DB_POOL_HEALTH_CHECK_PERIOD", time.Minute),
	}

	redisTTL := 600 * time.Second
	if s := optInt("REDIS_TTL", 0); s > 0 {
		redisTTL = time.Duration(s) * time.Second
	}
	cfg.Redis = RedisConfig{
		Host:     optDefault("REDIS_HOST", "localhost"),
		Port:     optDefault("REDIS_PORT", "6379"),
		Password: opt("REDIS_PASSWORD"),
		TTL:      redisTTL,
	}

	cfg.JWT = JWTConfig{
		AccessSecret:     req("JWT_ACCESS_SECRET"),
		RefreshSecret:    req("JWT_REFRESH_SECRET"),
		AccessExpiresIn:  optDuration("JWT_ACCESS_EXPIRES_IN", 15*time.Minute),
		RefreshExpiresIn: optDuration("JWT_REFRESH_EXPIRES_IN", 7*24*time.Hour),
	}

	cfg.AI = AIConfig{
		BaseURL:       opt("AI_BASE_URL"),
		Timeout:       optDuration("AI_TIMEOUT", 60*time.Second),
		RatePerMinute: optInt("AI_RATE_PER_MINUTE", 20),
	}

	cfg.Payment = PaymentConfig{
		BaseURL:    opt("PAYMENT_BASE_URL"),
		KeyID:      opt("PAYMENT_KEY_ID"),
		Currency:   strings.ToUpper(optDefault("PAYMENT_CURRENCY", "INR")),
		PendingTTL: optDuration("PAYMENT_PENDING_TTL", 30*time.Minute),
	}

	cfg.Email = EmailConfig{
		ResendAPIKey: opt("RESEND_API_KEY"),
		From:         opt("EMAIL_FROM"),
	}

	cfg.Interview = InterviewConfig{
		FreePlanLimit:   optInt("FREE_PLAN_INTERVIEW_LIMIT", 3),
		AnalysisWorkers: optInt("ANALYSIS_WORKERS", 4),
	}

	cfg.Scheduler = SchedulerConfig{
		PaymentExpirySpec:     optDefault("SCHEDULER_PAYMENT_EXPIRY", "@every 5m"),
		LeaderboardWarmupSpec: optDefault("SCHEDULER_LEADERBOARD_WARMUP", "@every 10m"),
	}

	cfg.LogLevel = optDefault("LOG_LEVEL", "info")
	cfg.MigrationsDir = optDefault("MIGRATIONS_DIR", "migrations")
	cfg.MigrateOnStart = optBool("MIGRATE_ON_START", false)
	cfg.PlansFile = opt("PLANS_FILE")
	cfg.JobPageHeadless = optBool("JOBPAGE_HEADLESS", false)

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("%w: %s", errMissingRequiredEnv, strings.Join(missing, ", "))
	}
	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("invalid environment variables: %s", strings.Join(invalid, ", "))
	}

	return cfg, nil
}
