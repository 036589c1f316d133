package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	GitHub   GitHubConfig
	Vercel   VercelConfig
	Pipeline PipelineConfig
	Janitor  JanitorConfig
	App      AppConfig
}

type ServerConfig struct {
	Port        string
	AdminAPIKey string
}

type DatabaseConfig struct {
	// DSN takes precedence over the discrete fields when set.
	DSN      string
	Host     string
	Port     int
	User     string
	Password string
	Name     string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type GitHubConfig struct {
	Token       string
	RepoOwner   string // GITHUB_USERNAME_FOR_REPOS; also the push credential username
	APIURL      string
	AuthorName  string
	AuthorEmail string
}

type VercelConfig struct {
	Token  string
	TeamID string
	APIURL string
	Domain string
}

type PipelineConfig struct {
	UploadsDir string
	StagingDir string
	Workers    int
	QueueSize  int
	RepoPrefix string
	BrandName  string
	// APIRateLimit is the sustained requests/second allowed towards each remote API.
	APIRateLimit float64
}

type JanitorConfig struct {
	Schedule string
	MaxAge   time.Duration
}

type AppConfig struct {
	Environment string
	LogLevel    string
	Version     string
}

func Load() (*Config, error) {
	// Load .env file if it exists (ignore error in production)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:        getEnv("PORT", "3000"),
			AdminAPIKey: getEnv("ADMIN_API_KEY", ""),
		},
		Database: DatabaseConfig{
			DSN:      getEnv("DB_DSN", ""),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvAsInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Name:     getEnv("DB_NAME", "deploy"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		GitHub: GitHubConfig{
			Token:       getEnv("GITHUB_TOKEN", ""),
			RepoOwner:   getEnv("GITHUB_USERNAME_FOR_REPOS", ""),
			APIURL:      getEnv("GITHUB_API_URL", ""),
			AuthorName:  getEnv("GIT_AUTHOR_NAME", "Deploy Bot"),
			AuthorEmail: getEnv("GIT_AUTHOR_EMAIL", "deploy-bot@users.noreply.github.com"),
		},
		Vercel: VercelConfig{
			Token:  getEnv("VERCEL_TOKEN", ""),
			TeamID: getEnv("VERCEL_TEAM_ID", ""),
			APIURL: getEnv("VERCEL_API_URL", "https://api.vercel.com"),
			Domain: getEnv("VERCEL_DOMAIN", "vercel.app"),
		},
		Pipeline: PipelineConfig{
			UploadsDir:   getEnv("UPLOADS_DIR", "uploads"),
			StagingDir:   getEnv("STAGING_DIR", "deploy_staging"),
			Workers:      getEnvAsInt("PIPELINE_WORKERS", 2),
			QueueSize:    getEnvAsInt("PIPELINE_QUEUE_SIZE", 64),
			RepoPrefix:   getEnv("REPO_PREFIX", "wz-"),
			BrandName:    getEnv("BRAND_NAME", "WanzOFC Deploy"),
			APIRateLimit: getEnvAsFloat("API_RATE_LIMIT", 5),
		},
		Janitor: JanitorConfig{
			Schedule: getEnv("JANITOR_SCHEDULE", "0 */30 * * * *"),
			MaxAge:   getEnvAsDuration("JANITOR_MAX_AGE", 6*time.Hour),
		},
		App: AppConfig{
			Environment: getEnv("APP_ENV", "development"),
			LogLevel:    getEnv("LOG_LEVEL", "info"),
			Version:     getEnv("APP_VERSION", "1.0.0"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("PORT is required")
	}

	if c.Database.DSN == "" && c.Database.Host == "" {
		return fmt.Errorf("DB_DSN or DB_HOST is required")
	}

	if c.Pipeline.Workers < 1 {
		return fmt.Errorf("PIPELINE_WORKERS must be at least 1")
	}

	if c.Pipeline.QueueSize < 1 {
		return fmt.Errorf("PIPELINE_QUEUE_SIZE must be at least 1")
	}

	if c.Pipeline.UploadsDir == "" || c.Pipeline.StagingDir == "" {
		return fmt.Errorf("UPLOADS_DIR and STAGING_DIR are required")
	}

	return nil
}

// Warnings lists settings that are allowed to be empty but leave parts of
// the pipeline unable to reach their remote API.
func (c *Config) Warnings() []string {
	var out []string
	if c.Server.AdminAPIKey == "" {
		out = append(out, "ADMIN_API_KEY is not set; admin routes will reject every request")
	}
	if c.GitHub.Token == "" {
		out = append(out, "GITHUB_TOKEN is not set; repository provisioning will fail")
	}
	if c.Vercel.Token == "" {
		out = append(out, "VERCEL_TOKEN is not set; deployments will fail")
	}
	if c.Redis.Addr == "" {
		out = append(out, "REDIS_ADDR is not set; project event streaming is disabled")
	}
	return out
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid integer for %s, using default: %d", key, defaultValue)
		return defaultValue
	}

	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		log.Printf("Warning: Invalid number for %s, using default: %v", key, defaultValue)
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := time.ParseDuration(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid duration for %s, using default: %s", key, defaultValue)
		return defaultValue
	}

	return value
}
