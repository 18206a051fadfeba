package config

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"sync-notes-be/internal/engine"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Auth     AuthConfig
	Sync     SyncConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
}

type DatabaseConfig struct {
	Connection string
}

type AuthConfig struct {
	JwtSecret      string
	JwtTTL         time.Duration
	ThrottleLimit  int
	ThrottleWindow time.Duration
}

// SyncConfig carries the per-parent quota table and tombstone retention.
// Both are resolved once at startup; services receive them as values and
// never consult the environment afterwards.
type SyncConfig struct {
	Quotas        engine.QuotaTable
	Retention     *time.Duration
	SweepInterval time.Duration
	SweepTopic    string
	ChangeTopic   string
}

// defaultLimits mirrors the caps clients were built against. Each pair is
// [active, deleted]; the deleted slot bounds retained tombstones per parent.
const defaultLimits = `{"user":{"notebook":[8,8],"task":[250,250]},"notebook":{"note":[125,125]}}`

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	quotas, err := ParseQuotaTable(getEnv("API_LIMITS", defaultLimits))
	if err != nil {
		log.Fatalf("invalid API_LIMITS: %v", err)
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "app.log.csv"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Auth: AuthConfig{
			JwtSecret:      getEnv("JWT_SECRET", "change-me"),
			JwtTTL:         time.Duration(getEnvAsInt("JWT_TTL_HOURS", 24)) * time.Hour,
			ThrottleLimit:  getEnvAsInt("THROTTLE_LIMIT", 120),
			ThrottleWindow: time.Duration(getEnvAsInt("THROTTLE_WINDOW_SECONDS", 60)) * time.Second,
		},
		Sync: SyncConfig{
			Quotas:        quotas,
			Retention:     retentionFromDays(getEnvAsInt("API_DELETED_EXPIRY_DAYS", 30)),
			SweepInterval: time.Duration(getEnvAsInt("SWEEP_INTERVAL_MINUTES", 60)) * time.Minute,
			SweepTopic:    getEnv("SWEEP_TOPIC_NAME", "SWEEP_DELETED"),
			ChangeTopic:   getEnv("RESOURCE_CHANGED_TOPIC_NAME", "RESOURCE_CHANGED"),
		},
	}
}

// ParseQuotaTable decodes a limits document of the shape
// {"parent":{"child":[active,deleted]}} into the engine's table. A pair
// entry may also be a single number, which then bounds both counts.
func ParseQuotaTable(raw string) (engine.QuotaTable, error) {
	var doc map[string]map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return nil, fmt.Errorf("limits document: %w", err)
	}

	table := engine.QuotaTable{}
	for parent, children := range doc {
		for child, entry := range children {
			limits, err := parseLimitsEntry(entry)
			if err != nil {
				return nil, fmt.Errorf("%s.%s: %w", parent, child, err)
			}
			table[engine.ParentChild{Parent: parent, Child: child}] = limits
		}
	}
	return table, nil
}

func parseLimitsEntry(entry json.RawMessage) (engine.Limits, error) {
	var pair []int
	if err := json.Unmarshal(entry, &pair); err == nil {
		switch len(pair) {
		case 1:
			return engine.Limits{Active: &pair[0], Deleted: &pair[0]}, nil
		case 2:
			return engine.Limits{Active: &pair[0], Deleted: &pair[1]}, nil
		default:
			return engine.Limits{}, fmt.Errorf("expected [active] or [active, deleted], got %d values", len(pair))
		}
	}

	var single int
	if err := json.Unmarshal(entry, &single); err != nil {
		return engine.Limits{}, fmt.Errorf("expected a number or a pair: %w", err)
	}
	return engine.Limits{Active: &single, Deleted: &single}, nil
}

func retentionFromDays(days int) *time.Duration {
	if days <= 0 {
		return nil
	}
	d := time.Duration(days) * 24 * time.Hour
	return &d
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}
