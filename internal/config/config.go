package config

import (
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	ServerPort  string
	Environment string

	DatabaseDriver string
	DatabaseURL    string
	RedisURL       string

	JWTSecret string
	JWTExpiry time.Duration

	// Trail assets live under UploadBaseDir/<trail id>/track.gpx
	UploadBaseDir    string
	AssetJournalPath string

	GoogleClientID string
	CorsOrigins    []string

	// Rate limiting
	RateLimitMaxRequests int
	RateLimitWindow      time.Duration

	CacheTTL time.Duration
}

func Load() *Config {
	// Try to load .env file, but don't fail if it doesn't exist
	// (Docker containers use environment variables directly)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment")
	}

	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)

	return &Config{
		ServerPort:  v.GetString("SERVER_PORT"),
		Environment: v.GetString("ENVIRONMENT"),

		DatabaseDriver: strings.ToLower(v.GetString("DB_DRIVER")),
		DatabaseURL:    v.GetString("DATABASE_URL"),
		RedisURL:       v.GetString("REDIS_URL"),

		JWTSecret: v.GetString("JWT_SECRET"),
		JWTExpiry: getDuration(v, "JWT_EXPIRY"),

		UploadBaseDir:    v.GetString("UPLOAD_BASE_DIR"),
		AssetJournalPath: v.GetString("ASSET_JOURNAL_PATH"),

		GoogleClientID: v.GetString("GOOGLE_CLIENT_ID"),
		CorsOrigins:    parseCSV(v.GetString("CORS_ORIGINS")),

		RateLimitMaxRequests: getInt(v, "RATE_LIMIT_MAX_REQUESTS"),
		RateLimitWindow:      getDuration(v, "RATE_LIMIT_WINDOW"),

		CacheTTL: getDuration(v, "CACHE_TTL"),
	}
}

// IsProduction reports whether the service runs with production settings.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("SERVER_PORT", ":3000")
	v.SetDefault("ENVIRONMENT", "development")
	v.SetDefault("DB_DRIVER", "postgres")
	v.SetDefault("JWT_EXPIRY", "24h")
	v.SetDefault("UPLOAD_BASE_DIR", "uploads")
	v.SetDefault("ASSET_JOURNAL_PATH", "data/orphan_assets.log")
	v.SetDefault("RATE_LIMIT_MAX_REQUESTS", 100)
	v.SetDefault("RATE_LIMIT_WINDOW", "1m")
	v.SetDefault("CACHE_TTL", "5m")
}

// getInt reads an int setting, falling back to the registered default when the
// environment holds garbage.
func getInt(v *viper.Viper, key string) int {
	raw := strings.TrimSpace(v.GetString(key))
	val, err := strconv.Atoi(raw)
	if err != nil {
		log.Printf("Invalid %s value %q, using default", key, raw)
		return defaultOf(key).(int)
	}
	return val
}

// getDuration reads a duration setting, falling back to the registered default
// when the environment holds garbage.
func getDuration(v *viper.Viper, key string) time.Duration {
	raw := v.GetString(key)
	d, err := time.ParseDuration(raw)
	if err != nil {
		log.Printf("Invalid %s value %q, using default", key, raw)
		d, _ = time.ParseDuration(defaultOf(key).(string))
	}
	return d
}

func defaultOf(key string) interface{} {
	fresh := viper.New()
	setDefaults(fresh)
	return fresh.Get(key)
}

func parseCSV(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	items := make([]string, 0, len(parts))
	for _, part := range parts {
		if value := strings.TrimSpace(part); value != "" {
			items = append(items, value)
		}
	}
	return items
}
