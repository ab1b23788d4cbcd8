package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata" // zone database for TIME_ZONE on minimal images

	"gopkg.in/yaml.v3"
)

type Config struct {
	Host         string   `yaml:"host"`
	Port         int      `yaml:"port"`
	AllowOrigins []string `yaml:"allowOrigins"`
	LogLevel     string   `yaml:"logLevel"`
	LogFile      string   `yaml:"logFile"`
	MaxUploadMB  int      `yaml:"maxUploadMB"`

	// backends; empty means in-memory / disabled
	DatabaseURL  string        `yaml:"databaseURL"`
	RedisURL     string        `yaml:"redisURL"`
	CacheTTL     time.Duration `yaml:"cacheTTL"`
	ElasticURL   string        `yaml:"elasticURL"`
	ElasticIndex string        `yaml:"elasticIndex"`
	// address books and locations for the in-memory store
	SeedFile string `yaml:"seedFile"`

	LookupRPS   float64 `yaml:"lookupRPS"`
	LookupBurst int     `yaml:"lookupBurst"`

	ImportWorkers    int     `yaml:"importWorkers"`
	ImportThreshold  float64 `yaml:"importThreshold"`
	ResolveThreshold float64 `yaml:"resolveThreshold"`
	TimeZone         string  `yaml:"timeZone"`
}

func defaults() Config {
	return Config{
		Host:             "127.0.0.1",
		Port:             8082,
		AllowOrigins:     []string{"*"},
		LogLevel:         "info",
		LogFile:          "logs/run-planner.log",
		MaxUploadMB:      32,
		CacheTTL:         10 * time.Minute,
		ElasticIndex:     "locations",
		LookupRPS:        20,
		LookupBurst:      10,
		ImportWorkers:    4,
		ImportThreshold:  0.8,
		ResolveThreshold: 1.0,
		TimeZone:         "Australia/Sydney",
	}
}

// Load reads defaults, then the YAML file named by CONFIG_FILE (if any), then
// environment variables, each layer overriding the previous one.
func Load() (Config, error) {
	cfg := defaults()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	var errs []string
	str := func(k string, dst *string) {
		if v := os.Getenv(k); v != "" {
			*dst = v
		}
	}
	num := func(k string, dst *int) {
		if v := os.Getenv(k); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, fmt.Sprintf("%s: %q is not an integer", k, v))
				return
			}
			*dst = n
		}
	}
	float := func(k string, dst *float64) {
		if v := os.Getenv(k); v != "" {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				errs = append(errs, fmt.Sprintf("%s: %q is not a number", k, v))
				return
			}
			*dst = f
		}
	}

	str("HOST", &cfg.Host)
	num("PORT", &cfg.Port)
	if v := os.Getenv("ALLOW_ORIGINS"); v != "" {
		cfg.AllowOrigins = strings.Split(v, ",")
	}
	str("LOG_LEVEL", &cfg.LogLevel)
	str("LOG_FILE", &cfg.LogFile)
	num("MAX_UPLOAD_MB", &cfg.MaxUploadMB)
	str("DATABASE_URL", &cfg.DatabaseURL)
	str("REDIS_URL", &cfg.RedisURL)
	if v := os.Getenv("CACHE_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			errs = append(errs, fmt.Sprintf("CACHE_TTL: %q is not a duration", v))
		} else {
			cfg.CacheTTL = d
		}
	}
	str("ELASTIC_URL", &cfg.ElasticURL)
	str("ELASTIC_INDEX", &cfg.ElasticIndex)
	str("SEED_FILE", &cfg.SeedFile)
	float("LOOKUP_RPS", &cfg.LookupRPS)
	num("LOOKUP_BURST", &cfg.LookupBurst)
	num("IMPORT_WORKERS", &cfg.ImportWorkers)
	float("IMPORT_THRESHOLD", &cfg.ImportThreshold)
	float("RESOLVE_THRESHOLD", &cfg.ResolveThreshold)
	str("TIME_ZONE", &cfg.TimeZone)

	if len(errs) > 0 {
		return cfg, fmt.Errorf("config: %s", strings.Join(errs, "; "))
	}
	return cfg, cfg.validate()
}

func (c Config) validate() error {
	switch {
	case c.Port <= 0 || c.Port > 65535:
		return fmt.Errorf("config: port %d out of range", c.Port)
	case c.MaxUploadMB <= 0:
		return fmt.Errorf("config: max upload must be positive")
	case c.ImportWorkers <= 0:
		return fmt.Errorf("config: import workers must be positive")
	case c.ImportThreshold < 0 || c.ImportThreshold > 1:
		return fmt.Errorf("config: import threshold %v not in [0,1]", c.ImportThreshold)
	case c.ResolveThreshold < 0 || c.ResolveThreshold > 1:
		return fmt.Errorf("config: resolve threshold %v not in [0,1]", c.ResolveThreshold)
	}
	if _, err := time.LoadLocation(c.TimeZone); err != nil {
		return fmt.Errorf("config: time zone %q: %w", c.TimeZone, err)
	}
	return nil
}

func (c Config) Addr() string { return fmt.Sprintf("%s:%d", c.Host, c.Port) }

// Location returns the configured time zone; Load has already validated it.
func (c Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.TimeZone)
	if err != nil {
		return time.UTC
	}
	return loc
}
