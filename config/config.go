package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	JWT       JWTConfig
	Firebase  FirebaseConfig
	Geofence  GeofenceConfig
	Retention RetentionConfig
	Batch     BatchConfig
	Sweeper   SweeperConfig
}

type ServerConfig struct {
	Port            string
	Env             string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	RateLimit       int
	RateLimitWindow time.Duration
}

type DatabaseConfig struct {
	DSN             string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
}

type JWTConfig struct {
	AccessSecret string
	Issuer       string
}

type FirebaseConfig struct {
	ServiceAccountPath string
}

type GeofenceConfig struct {
	DefaultRadiusM int
	MapBaseURL     string
}

type RetentionConfig struct {
	TTL time.Duration
}

// BatchConfig guards the batch endpoints called by an external scheduler.
// An empty token disables the endpoints outside development.
type BatchConfig struct {
	Token string
}

type SweeperConfig struct {
	Enabled         bool
	StayInterval    time.Duration
	ExpireInterval  time.Duration
	CleanupInterval time.Duration
	RunTimeout      time.Duration
}

func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            getenv("PORT", "8080"),
			Env:             getenv("APP_ENV", "development"),
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    10 * time.Second,
			RateLimit:       getenvInt("RATE_LIMIT_REQUESTS", 100),
			RateLimitWindow: getenvDuration("RATE_LIMIT_WINDOW", time.Minute),
		},
		Database: DatabaseConfig{
			DSN:             getenv("DATABASE_DSN", "bubble:bubble@tcp(localhost:3306)/bubble?charset=utf8mb4&parseTime=True&loc=UTC"),
			MaxIdleConns:    10,
			MaxOpenConns:    100,
			ConnMaxLifetime: time.Hour,
		},
		JWT: JWTConfig{
			AccessSecret: getenv("JWT_ACCESS_SECRET", "change-me-in-production"),
			Issuer:       getenv("JWT_ISSUER", "bubble"),
		},
		Firebase: FirebaseConfig{
			ServiceAccountPath: getenv("FIREBASE_SERVICE_ACCOUNT_PATH", ""),
		},
		Geofence: GeofenceConfig{
			DefaultRadiusM: getenvInt("GEOFENCE_RADIUS_METERS", 50),
			MapBaseURL:     getenv("MAP_BASE_URL", "https://www.google.com/maps"),
		},
		Retention: RetentionConfig{
			TTL: getenvDuration("DATA_RETENTION", 24*time.Hour),
		},
		Batch: BatchConfig{
			Token: getenv("BATCH_TOKEN", ""),
		},
		Sweeper: SweeperConfig{
			Enabled:         getenv("SWEEPER_ENABLED", "true") == "true",
			StayInterval:    getenvDuration("SWEEP_STAY_INTERVAL", 5*time.Minute),
			ExpireInterval:  getenvDuration("SWEEP_EXPIRE_INTERVAL", 10*time.Minute),
			CleanupInterval: getenvDuration("SWEEP_CLEANUP_INTERVAL", time.Hour),
			RunTimeout:      getenvDuration("SWEEP_RUN_TIMEOUT", 2*time.Minute),
		},
	}
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getenvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
