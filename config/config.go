// backend/config/config.go
package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type ServerConfig struct {
	Port string `yaml:"port"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
}

// Enabled reports whether a MySQL database is configured. Without one the
// service runs on the cache alone.
func (d DatabaseConfig) Enabled() bool {
	return d.Host != "" && d.DBName != ""
}

type BCNConfig struct {
	BaseURL                string        `yaml:"base_url"`
	UserAgent              string        `yaml:"user_agent"`
	FirstYear              int           `yaml:"first_year"`
	RequestTimeoutStr      string        `yaml:"request_timeout"`
	AvailabilityTimeoutStr string        `yaml:"availability_timeout"`
	CacheTTLStr            string        `yaml:"cache_ttl"`
	RequestTimeout         time.Duration `yaml:"-"` // Parsed durations
	AvailabilityTimeout    time.Duration `yaml:"-"`
	CacheTTL               time.Duration `yaml:"-"`
}

type CacheConfig struct {
	RedisURL   string `yaml:"redis_url"`
	UseRedis   bool   `yaml:"use_redis"`
	MaxEntries int64  `yaml:"max_entries"`
}

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	BCN      BCNConfig      `yaml:"bcn"`
	Cache    CacheConfig    `yaml:"cache"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		Server: ServerConfig{Port: "3001"},
		Database: DatabaseConfig{
			Port: "3306",
		},
		BCN: BCNConfig{
			BaseURL:                "https://www.bcn.cl/presupuesto",
			FirstYear:              2010,
			RequestTimeoutStr:      "30s",
			AvailabilityTimeoutStr: "5s",
			CacheTTLStr:            "24h",
		},
		Cache: CacheConfig{
			MaxEntries: 10000,
		},
	}
}

// Candidate config locations, tried in order when no path is given.
var potentialPaths = []string{
	"config.yaml",
	"config/config.yaml",
	"backend/config/config.yaml",
}

// LoadConfig reads the YAML file at configPath (or the first of the standard
// locations when configPath is empty), loads a .env file if present and then
// applies environment overrides.
func LoadConfig(configPath string) (*Config, error) {
	cfg := Default()

	// A missing .env is fine; the environment may already be set.
	_ = godotenv.Load()

	if configPath == "" {
		for _, p := range potentialPaths {
			if _, err := os.Stat(p); err == nil {
				configPath = p
				break
			}
		}
	}

	if configPath != "" {
		file, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(file, &cfg); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config: %w", err)
		}
		log.Printf("Loading configuration from: %s\n", configPath)
	} else {
		log.Println("No config.yaml found, using defaults and environment")
	}

	if err := applyEnv(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.parseDurations(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyEnv(cfg *Config) error {
	cfg.Server.Port = getEnv("PORT", cfg.Server.Port)
	cfg.BCN.BaseURL = getEnv("BCN_BASE_URL", cfg.BCN.BaseURL)
	cfg.Cache.RedisURL = getEnv("REDIS_URL", cfg.Cache.RedisURL)
	cfg.Database.Host = getEnv("DB_HOST", cfg.Database.Host)
	cfg.Database.Port = getEnv("DB_PORT", cfg.Database.Port)
	cfg.Database.User = getEnv("DB_USER", cfg.Database.User)
	cfg.Database.Password = getEnv("DB_PASSWORD", cfg.Database.Password)
	cfg.Database.DBName = getEnv("DB_NAME", cfg.Database.DBName)

	if v, ok := os.LookupEnv("USE_REDIS"); ok {
		useRedis, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid USE_REDIS value %q: %w", v, err)
		}
		cfg.Cache.UseRedis = useRedis
	} else if _, ok := os.LookupEnv("REDIS_URL"); ok {
		cfg.Cache.UseRedis = true
	}
	return nil
}

func (c *Config) parseDurations() error {
	var err error
	if c.BCN.RequestTimeout, err = parseDuration(c.BCN.RequestTimeoutStr, 30*time.Second); err != nil {
		return fmt.Errorf("failed to parse bcn.request_timeout: %w", err)
	}
	if c.BCN.AvailabilityTimeout, err = parseDuration(c.BCN.AvailabilityTimeoutStr, 5*time.Second); err != nil {
		return fmt.Errorf("failed to parse bcn.availability_timeout: %w", err)
	}
	if c.BCN.CacheTTL, err = parseDuration(c.BCN.CacheTTLStr, 24*time.Hour); err != nil {
		return fmt.Errorf("failed to parse bcn.cache_ttl: %w", err)
	}
	return nil
}

func parseDuration(s string, fallback time.Duration) (time.Duration, error) {
	if s == "" {
		return fallback, nil
	}
	return time.ParseDuration(s)
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}
