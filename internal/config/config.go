package config

import (
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	HTTPPort    string
	DatabaseDSN string
	JWTSecret   string
	TokenTTL    time.Duration
	CORSOrigins string

	// AI pipeline (server side)
	PredictorURL     string
	PredictorTimeout time.Duration
	ReportsDir       string
	SampleDataDir    string
	AISchedule       string // cron spec for the weekly run, empty disables it

	// Optimizer service
	OptimizerPort string
	PredictorCmd  string
	PredictorArgs []string
	UploadDir     string
}

// Load reads configuration for the retail API server. Missing or weak
// JWT secrets are fatal, the server must not start without one.
func Load() *Config {
	cfg := load()

	if cfg.JWTSecret == "" {
		log.Fatal("[FATAL] JWT_SECRET is not set, refusing to start")
	}
	if len(cfg.JWTSecret) < 32 {
		log.Fatal("[FATAL] JWT_SECRET must be at least 32 characters")
	}

	return cfg
}

// LoadOptimizer reads configuration for the optimizer service, which does
// not authenticate callers and therefore needs no JWT secret.
func LoadOptimizer() *Config {
	return load()
}

func load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := &Config{
		HTTPPort:         getEnv("HTTP_PORT", "8080"),
		DatabaseDSN:      getEnv("DATABASE_DSN", "host=localhost user=postgres password=postgres dbname=retail port=5432 sslmode=disable"),
		JWTSecret:        getEnv("JWT_SECRET", ""),
		TokenTTL:         getDuration("TOKEN_TTL", 24*time.Hour),
		CORSOrigins:      getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
		PredictorURL:     getEnv("PREDICTOR_URL", "http://localhost:8000/api/predict"),
		PredictorTimeout: getDuration("PREDICTOR_TIMEOUT", 2*time.Minute),
		ReportsDir:       getEnv("REPORTS_DIR", "./reports"),
		SampleDataDir:    getEnv("SAMPLE_DATA_DIR", "./sample_data"),
		AISchedule:       getEnv("AI_SCHEDULE", "0 0 * * 0"), // Sunday midnight
		OptimizerPort:    getEnv("OPTIMIZER_PORT", "8000"),
		PredictorCmd:     getEnv("PREDICTOR_CMD", "python"),
		PredictorArgs:    []string{"-u", getEnv("PREDICTOR_SCRIPT", "predict.py")},
		UploadDir:        getEnv("UPLOAD_DIR", "./uploads"),
	}

	if cfg.DatabaseDSN == "host=localhost user=postgres password=postgres dbname=retail port=5432 sslmode=disable" {
		log.Println("[WARN] DATABASE_DSN is using the default value, set your own Postgres DSN for production")
	}

	return cfg
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Printf("[WARN] %s=%q is not a valid duration, using %s", key, v, def)
		return def
	}
	return d
}
