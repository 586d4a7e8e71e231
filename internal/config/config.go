package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultPath is read when neither --config nor CONFIG_PATH is given. It may be absent.
const DefaultPath = "config.yaml"

// TokenEnv holds the bearer credential for the models endpoint.
const TokenEnv = "MODELS_TOKEN"

type Config struct {
	Models struct {
		Endpoint    string        `yaml:"endpoint"`
		Model       string        `yaml:"model"`
		Temperature float32       `yaml:"temperature"`
		MaxTokens   int           `yaml:"maxTokens"`
		Timeout     time.Duration `yaml:"timeout"`

		// Token is captured from the environment once, never from the file.
		Token string `yaml:"-"`
	} `yaml:"models"`

	Inputs []string `yaml:"inputs"`

	Output struct {
		Dir      string `yaml:"dir"`
		JSON     string `yaml:"json"`
		Markdown string `yaml:"markdown"`
		HTML     string `yaml:"html"`
	} `yaml:"output"`

	Axe struct {
		IssuesResults string `yaml:"issuesResults"`
		FixedResults  string `yaml:"fixedResults"`
	} `yaml:"axe"`

	Server struct {
		Port         int               `yaml:"port"`
		APIKeys      map[string]string `yaml:"apiKeys"`
		CORSOrigins  []string          `yaml:"corsOrigins"`
		MaxBodyBytes int64             `yaml:"maxBodyBytes"`
		RateLimit    struct {
			Capacity   int `yaml:"capacity"`
			RefillRate int `yaml:"refillRate"`
		} `yaml:"rateLimit"`
	} `yaml:"server"`

	Database struct {
		Driver   string `yaml:"driver"` // "", mysql, postgres
		Host     string `yaml:"host"`
		Port     int    `yaml:"port"`
		User     string `yaml:"user"`
		Password string `yaml:"password"`
		Name     string `yaml:"name"`
		SSLMode  string `yaml:"sslMode"`
	} `yaml:"database"`

	Minio struct {
		Enabled    bool   `yaml:"enabled"`
		Endpoint   string `yaml:"endpoint"`
		AccessKey  string `yaml:"accessKey"`
		SecretKey  string `yaml:"secretKey"`
		BucketName string `yaml:"bucketName"`
		Region     string `yaml:"region"`
		UseSSL     bool   `yaml:"useSSL"`
	} `yaml:"minio"`
}

// Default returns the built-in configuration.
func Default() *Config {
	var c Config
	c.Models.Endpoint = "https://models.inference.ai.azure.com"
	c.Models.Model = "gpt-4.1"
	c.Models.Temperature = 0.1
	c.Models.MaxTokens = 8000
	c.Models.Timeout = 60 * time.Second

	c.Inputs = []string{"accessibility-issues-demo.html", "accessibility-fixed-demo.html"}

	c.Output.Dir = "."
	c.Output.JSON = "ai_accessibility_results.json"
	c.Output.Markdown = "ai_accessibility_report.md"
	c.Output.HTML = "accessibility-report.html"

	c.Axe.IssuesResults = "accessibility-issues-results.json"
	c.Axe.FixedResults = "accessibility-fixed-results.json"

	c.Server.Port = 8080
	c.Server.MaxBodyBytes = 5 << 20
	c.Server.RateLimit.Capacity = 10
	c.Server.RateLimit.RefillRate = 1

	c.Database.SSLMode = "disable"
	c.Minio.Region = "us-east-1"
	c.Minio.BucketName = "a11y-reports"
	return &c
}

// Load reads .env, the YAML file at path over the defaults, then the environment.
// A missing DefaultPath is not an error; any other missing path is.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist) && path == DefaultPath:
		case err != nil:
			return nil, fmt.Errorf("read config %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}

	cfg.Models.Token = os.Getenv(TokenEnv)
	cfg.Models.Endpoint = firstNonEmpty(strings.TrimSpace(os.Getenv("MODELS_ENDPOINT")), cfg.Models.Endpoint)
	cfg.Models.Model = firstNonEmpty(strings.TrimSpace(os.Getenv("MODELS_MODEL")), cfg.Models.Model)
	cfg.Output.Dir = firstNonEmpty(strings.TrimSpace(os.Getenv("OUTPUT_DIR")), cfg.Output.Dir)
	cfg.Database.Driver = firstNonEmpty(strings.TrimSpace(os.Getenv("DATABASE_DRIVER")), cfg.Database.Driver)
	cfg.Database.Password = firstNonEmpty(os.Getenv("DATABASE_PASSWORD"), cfg.Database.Password)
	cfg.Minio.AccessKey = firstNonEmpty(strings.TrimSpace(os.Getenv("MINIO_ACCESS_KEY")), cfg.Minio.AccessKey)
	cfg.Minio.SecretKey = firstNonEmpty(strings.TrimSpace(os.Getenv("MINIO_SECRET_KEY")), cfg.Minio.SecretKey)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ResolvePath picks the config file: explicit flag, then CONFIG_PATH, then DefaultPath.
func ResolvePath(flag string) string {
	return firstNonEmpty(strings.TrimSpace(flag), strings.TrimSpace(os.Getenv("CONFIG_PATH")), DefaultPath)
}

func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "", "mysql", "postgres":
	default:
		return fmt.Errorf("unsupported database driver %q (allowed: mysql, postgres)", c.Database.Driver)
	}
	if c.Models.MaxTokens <= 0 {
		return fmt.Errorf("models.maxTokens must be positive, got %d", c.Models.MaxTokens)
	}
	if c.Models.Timeout <= 0 {
		return fmt.Errorf("models.timeout must be positive, got %s", c.Models.Timeout)
	}
	return nil
}

// HasCredential is the single mock-mode switch for a run.
func (c *Config) HasCredential() bool {
	return c.Models.Token != ""
}

// Helper untuk build DSN MySQL
func (c *Config) MySQLDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&charset=utf8mb4&loc=UTC",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
	)
}

// PostgresDSN builds a lib/pq connection string.
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.Name,
		firstNonEmpty(c.Database.SSLMode, "disable"),
	)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
