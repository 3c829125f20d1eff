package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds application configuration.
type Config struct {
	AppName     string
	AppVersion  string
	Environment string
	HTTPAddr    string

	OTLPEndpoint string

	DBType            string
	DBHost            string
	DBPort            string
	DBName            string
	DBUser            string
	DBPassword        string
	DBSSLMode         string
	DBMaxIdleConn     int
	DBMaxOpenConn     int
	DBConnMaxLifetime int
	DBConnMaxIdleTime int

	Generator GeneratorConfig
	Scheduler SchedulerConfig
	RateLimit RateLimitConfig

	PlanCatalogPath string
}

type GeneratorConfig struct {
	// Days of synthetic history produced for equipment without telemetry.
	Days int
}

type SchedulerConfig struct {
	Enabled         bool
	DailyRollupSpec string
	LockTTLSeconds  int
}

type RateLimitConfig struct {
	Enabled       bool
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	ReadingIngestOrgRate        float64
	ReadingIngestOrgBurst       int
	ReadingIngestEquipmentRate  float64
	ReadingIngestEquipmentBurst int
}

// Load loads configuration from environment variables and .env file.
func Load() Config {
	_ = godotenv.Load()

	cfg := Config{
		AppName:           getenv("APP_SERVICE", "polarops"),
		AppVersion:        getenv("APP_VERSION", "0.1.0"),
		Environment:       getenv("ENVIRONMENT", "development"),
		HTTPAddr:          getenv("HTTP_ADDR", ":8080"),
		OTLPEndpoint:      getenv("OTLP_ENDPOINT", "localhost:4317"),
		DBType:            getenv("DATABASE_TYPE", "postgres"),
		DBHost:            getenv("DATABASE_HOST", "localhost"),
		DBPort:            getenv("DATABASE_PORT", "5432"),
		DBName:            getenv("DATABASE_NAME", "polarops"),
		DBUser:            getenv("DATABASE_USER", "postgres"),
		DBPassword:        getenv("DATABASE_PASSWORD", "postgres"),
		DBSSLMode:         getenv("DATABASE_SSLMODE", "disable"),
		DBMaxIdleConn:     getenvInt("DATABASE_MAX_IDLE_CONN", 5),
		DBMaxOpenConn:     getenvInt("DATABASE_MAX_OPEN_CONN", 20),
		DBConnMaxLifetime: getenvInt("DATABASE_CONN_MAX_LIFETIME", 1800),
		DBConnMaxIdleTime: getenvInt("DATABASE_CONN_MAX_IDLE_TIME", 300),
		Generator: GeneratorConfig{
			Days: getenvInt("GENERATOR_DAYS", 7),
		},
		Scheduler: SchedulerConfig{
			Enabled:         getenvBool("SCHEDULER_ENABLED", true),
			DailyRollupSpec: strings.TrimSpace(getenv("SCHEDULER_DAILY_ROLLUP_SPEC", "0 15 0 * * *")),
			LockTTLSeconds:  getenvInt("SCHEDULER_LOCK_TTL_SECONDS", 600),
		},
		RateLimit: RateLimitConfig{
			Enabled:                     getenvBool("RATE_LIMIT_ENABLED", false),
			RedisAddr:                   strings.TrimSpace(getenv("RATE_LIMIT_REDIS_ADDR", "localhost:6379")),
			RedisPassword:               getenv("RATE_LIMIT_REDIS_PASSWORD", ""),
			RedisDB:                     getenvInt("RATE_LIMIT_REDIS_DB", 0),
			ReadingIngestOrgRate:        getenvFloat("RATE_LIMIT_READING_ORG_RATE", 50),
			ReadingIngestOrgBurst:       getenvInt("RATE_LIMIT_READING_ORG_BURST", 100),
			ReadingIngestEquipmentRate:  getenvFloat("RATE_LIMIT_READING_EQUIPMENT_RATE", 2),
			ReadingIngestEquipmentBurst: getenvInt("RATE_LIMIT_READING_EQUIPMENT_BURST", 10),
		},
		PlanCatalogPath: strings.TrimSpace(getenv("PLAN_CATALOG_PATH", "")),
	}

	if cfg.Generator.Days <= 0 {
		cfg.Generator.Days = 7
	}

	return cfg
}

func (c Config) IsProduction() bool {
	return strings.EqualFold(strings.TrimSpace(c.Environment), "production")
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvBool(key string, def bool) bool {
	value := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	if value == "" {
		return def
	}
	switch value {
	case "1", "true", "yes", "y", "on":
		return true
	case "0", "false", "no", "n", "off":
		return false
	default:
		return def
	}
}

func getenvInt(key string, def int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return def
	}
	return parsed
}

func getenvFloat(key string, def float64) float64 {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return def
	}
	return parsed
}
