package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/go-sql-driver/mysql"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	DriverMySQL  = "mysql"
	DriverSQLite = "sqlite3"

	defaultTiDBPort = "4000"
)

type Config struct {
	HTTPPort       string `yaml:"http_port"`
	DatabaseURL    string `yaml:"database_url"`
	DBDriver       string `yaml:"db_driver"`
	DBMaxOpenConns int    `yaml:"db_max_open_conns"`
	CacheTTL       string `yaml:"cache_ttl"`
	SiteURL        string `yaml:"site_url"`
	LogLevel       string `yaml:"log_level"`
	LogFormat      string `yaml:"log_format"`
}

func Default() *Config {
	return &Config{
		HTTPPort:       "8080",
		DatabaseURL:    "ai_startups.db",
		DBMaxOpenConns: 5,
		CacheTTL:       "1h",
		SiteURL:        "https://ai-startup-tracker-olive.vercel.app",
		LogLevel:       "info",
		LogFormat:      "console",
	}
}

func DefaultConfigPath() string {
	return filepath.Join(xdg.ConfigHome, "ai-startup-tracker", "config.yaml")
}

// Load layers defaults, the YAML file and the environment, in that order.
// An explicit path must exist; the default path is optional.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultConfigPath()
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist) && !explicit:
	default:
		return nil, fmt.Errorf("reading config: %w", err)
	}

	_ = godotenv.Load() // .env is optional; real environment variables win
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	strs := map[string]*string{
		"HTTP_PORT":    &c.HTTPPort,
		"DATABASE_URL": &c.DatabaseURL,
		"DB_DRIVER":    &c.DBDriver,
		"CACHE_TTL":    &c.CacheTTL,
		"SITE_URL":     &c.SiteURL,
		"LOG_LEVEL":    &c.LogLevel,
		"LOG_FORMAT":   &c.LogFormat,
	}
	for key, dst := range strs {
		if v, ok := os.LookupEnv(key); ok {
			*dst = v
		}
	}
	if v, ok := os.LookupEnv("DB_MAX_OPEN_CONNS"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("DB_MAX_OPEN_CONNS: %w", err)
		}
		c.DBMaxOpenConns = n
	}
	return nil
}

func (c *Config) validate() error {
	if c.DatabaseURL == "" {
		return errors.New("database_url is required")
	}
	if c.DBMaxOpenConns < 1 {
		return fmt.Errorf("db_max_open_conns must be positive, got %d", c.DBMaxOpenConns)
	}
	if _, err := time.ParseDuration(c.CacheTTL); err != nil {
		return fmt.Errorf("cache_ttl: %w", err)
	}
	switch c.Driver() {
	case DriverMySQL, DriverSQLite:
	default:
		return fmt.Errorf("unknown db_driver %q (valid: mysql, sqlite3)", c.DBDriver)
	}
	c.SiteURL = strings.TrimRight(c.SiteURL, "/")
	return nil
}

// CacheTTLDuration is the parsed cache_ttl.
func (c *Config) CacheTTLDuration() time.Duration {
	d, err := time.ParseDuration(c.CacheTTL)
	if err != nil {
		return time.Hour
	}
	return d
}

// Driver returns the database/sql driver name, inferred from the URL when unset.
func (c *Config) Driver() string {
	switch strings.ToLower(c.DBDriver) {
	case "":
		if strings.HasPrefix(c.DatabaseURL, "mysql://") {
			return DriverMySQL
		}
		return DriverSQLite
	case "sqlite", DriverSQLite:
		return DriverSQLite
	default:
		return strings.ToLower(c.DBDriver)
	}
}

// DSN converts mysql:// URLs to a go-sql-driver DSN. Anything else is
// passed through unchanged.
func (c *Config) DSN() (string, error) {
	if !strings.HasPrefix(c.DatabaseURL, "mysql://") {
		return c.DatabaseURL, nil
	}
	u, err := url.Parse(c.DatabaseURL)
	if err != nil {
		return "", fmt.Errorf("parsing database_url: %w", err)
	}

	m := mysql.NewConfig()
	m.Net = "tcp"
	port := u.Port()
	if port == "" {
		port = defaultTiDBPort
	}
	m.Addr = net.JoinHostPort(u.Hostname(), port)
	if u.User != nil {
		m.User = u.User.Username()
		m.Passwd, _ = u.User.Password()
	}
	m.DBName = strings.TrimPrefix(u.Path, "/")
	m.ParseTime = true
	m.TLSConfig = "skip-verify"
	if tls := u.Query().Get("tls"); tls != "" {
		m.TLSConfig = tls
	}
	return m.FormatDSN(), nil
}
