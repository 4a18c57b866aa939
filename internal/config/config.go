package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"

	StoreDriverPostgres = "postgres"
	StoreDriverMemory   = "memory"
)

type Config struct {
	DBHost     string `yaml:"db_host"`
	DBPort     string `yaml:"db_port"`
	DBUser     string `yaml:"db_user"`
	DBPassword string `yaml:"db_password"`
	DBName     string `yaml:"db_name"`
	DBSSLMode  string `yaml:"db_sslmode"`

	DBMaxOpenConns    int           `yaml:"db_max_open_conns"`
	DBMaxIdleConns    int           `yaml:"db_max_idle_conns"`
	DBConnMaxLifetime time.Duration `yaml:"db_conn_max_lifetime"`

	ServerPort         string   `yaml:"server_port"`
	Environment        string   `yaml:"environment"`
	LogLevel           string   `yaml:"log_level"`
	StoreDriver        string   `yaml:"store_driver"`
	MigrateOnStart     bool     `yaml:"migrate_on_start"`
	CORSAllowedOrigins []string `yaml:"cors_allowed_origins"`
}

func Default() *Config {
	return &Config{
		DBHost:             "localhost",
		DBPort:             "5432",
		DBUser:             "postgres",
		DBPassword:         "postgres",
		DBName:             "paysync",
		DBSSLMode:          "disable",
		DBMaxOpenConns:     25,
		DBMaxIdleConns:     25,
		DBConnMaxLifetime:  5 * time.Minute,
		ServerPort:         "3000",
		Environment:        EnvProduction,
		LogLevel:           "info",
		StoreDriver:        StoreDriverPostgres,
		MigrateOnStart:     true,
		CORSAllowedOrigins: []string{"*"},
	}
}

// Load builds the configuration from defaults, the YAML file named by
// CONFIG_FILE (if any), then environment variables. It panics on invalid
// configuration since the process cannot start without one.
func Load() *Config {
	cfg, err := LoadFrom(os.Getenv("CONFIG_FILE"), os.LookupEnv)
	if err != nil {
		panic(err)
	}
	return cfg
}

// LoadFrom is Load with an explicit file path and environment lookup.
func LoadFrom(path string, lookup func(string) (string, bool)) (*Config, error) {
	cfg := Default()

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(raw, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(lookup); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	strs := map[string]*string{
		"DB_HOST":      &c.DBHost,
		"DB_PORT":      &c.DBPort,
		"DB_USER":      &c.DBUser,
		"DB_PASSWORD":  &c.DBPassword,
		"DB_NAME":      &c.DBName,
		"DB_SSLMODE":   &c.DBSSLMode,
		"SERVER_PORT":  &c.ServerPort,
		"APP_ENV":      &c.Environment,
		"LOG_LEVEL":    &c.LogLevel,
		"STORE_DRIVER": &c.StoreDriver,
	}
	for key, dst := range strs {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}

	ints := map[string]*int{
		"DB_MAX_OPEN_CONNS": &c.DBMaxOpenConns,
		"DB_MAX_IDLE_CONNS": &c.DBMaxIdleConns,
	}
	for key, dst := range ints {
		if v, ok := lookup(key); ok && v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("invalid %s: %w", key, err)
			}
			*dst = n
		}
	}

	if v, ok := lookup("DB_CONN_MAX_LIFETIME"); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid DB_CONN_MAX_LIFETIME: %w", err)
		}
		c.DBConnMaxLifetime = d
	}

	if v, ok := lookup("MIGRATE_ON_START"); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid MIGRATE_ON_START: %w", err)
		}
		c.MigrateOnStart = b
	}

	if v, ok := lookup("CORS_ALLOWED_ORIGINS"); ok && v != "" {
		var origins []string
		for _, origin := range strings.Split(v, ",") {
			if origin = strings.TrimSpace(origin); origin != "" {
				origins = append(origins, origin)
			}
		}
		c.CORSAllowedOrigins = origins
	}

	return nil
}

func (c *Config) Validate() error {
	switch c.StoreDriver {
	case StoreDriverPostgres, StoreDriverMemory:
	default:
		return fmt.Errorf("unsupported store driver %q", c.StoreDriver)
	}

	switch c.Environment {
	case EnvDevelopment, EnvProduction:
	default:
		return fmt.Errorf("unsupported environment %q", c.Environment)
	}

	if c.ServerPort == "" {
		return fmt.Errorf("server port is required")
	}

	return nil
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == EnvDevelopment
}

// GetDBConnectionString renders a lib/pq keyword/value DSN.
func (c *Config) GetDBConnectionString() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode)
}
