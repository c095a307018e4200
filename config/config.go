package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Duration reads "15m" style strings from YAML.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(strings.TrimSpace(s))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) Std() time.Duration { return time.Duration(d) }

type ServerConfig struct {
	Port            string   `yaml:"port"`
	CORSOrigins     []string `yaml:"cors_origins"`
	ShutdownTimeout Duration `yaml:"shutdown_timeout"`
	LogLevel        string   `yaml:"log_level"`
	// LoginPerMinute bounds login/register attempts per client ip.
	LoginPerMinute int `yaml:"login_per_minute"`
}

type DatabaseConfig struct {
	URI          string   `yaml:"uri"`
	MaxOpenConns int      `yaml:"max_open_conns"`
	MaxIdleConns int      `yaml:"max_idle_conns"`
	ConnLifetime Duration `yaml:"conn_lifetime"`
}

type RedisConfig struct {
	Addr string `yaml:"addr"`
}

type MongoConfig struct {
	URI string `yaml:"uri"`
	DB  string `yaml:"db"`
}

type AuthConfig struct {
	JWTSecret  string `yaml:"jwt_secret"`
	CronSecret string `yaml:"cron_secret"`
}

type SweepConfig struct {
	// Timeout bounds one sweep run.
	Timeout Duration `yaml:"timeout"`
}

type MatchConfig struct {
	VertexProject   string `yaml:"vertex_project"`
	VertexLocation  string `yaml:"vertex_location"`
	VertexModel     string `yaml:"vertex_model"`
	CredentialsFile string `yaml:"credentials_file"`
}

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Mongo    MongoConfig    `yaml:"mongo"`
	Auth     AuthConfig     `yaml:"auth"`
	Sweep    SweepConfig    `yaml:"sweep"`
	Match    MatchConfig    `yaml:"match"`
}

func defaults() Config {
	return Config{
		Server: ServerConfig{
			Port:            "8080",
			ShutdownTimeout: Duration(15 * time.Second),
			LogLevel:        "info",
			LoginPerMinute:  10,
		},
		Database: DatabaseConfig{
			MaxOpenConns: 100,
			MaxIdleConns: 10,
			ConnLifetime: Duration(30 * time.Minute),
		},
		Mongo: MongoConfig{DB: "jobportal"},
		Sweep: SweepConfig{Timeout: Duration(2 * time.Minute)},
		Match: MatchConfig{
			VertexLocation: "asia-southeast2",
			VertexModel:    "gemini-1.5-flash",
		},
	}
}

// Load reads .env, then the YAML file at CONFIG_PATH, then environment overrides.
func Load() (*Config, error) {
	cfg, err := load()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadDatabase is Load for tools that only talk to postgres.
func LoadDatabase() (*DatabaseConfig, error) {
	cfg, err := load()
	if err != nil {
		return nil, err
	}
	if cfg.Database.URI == "" {
		return nil, errors.New("POSTGRES_URI is not set")
	}
	return &cfg.Database, nil
}

func load() (*Config, error) {
	_ = godotenv.Load()

	cfg := defaults()
	if path := os.Getenv("CONFIG_PATH"); path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyEnv() error {
	setString(&c.Server.Port, "PORT")
	setString(&c.Server.LogLevel, "LOG_LEVEL")
	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		c.Server.CORSOrigins = splitList(v)
	}
	if v := os.Getenv("LOGIN_PER_MINUTE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("LOGIN_PER_MINUTE: %w", err)
		}
		c.Server.LoginPerMinute = n
	}
	if v := os.Getenv("SHUTDOWN_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("SHUTDOWN_TIMEOUT: %w", err)
		}
		c.Server.ShutdownTimeout = Duration(d)
	}

	setString(&c.Database.URI, "POSTGRES_URI")
	setString(&c.Redis.Addr, "REDIS_URL")
	setString(&c.Redis.Addr, "REDIS_URI")
	setString(&c.Redis.Addr, "REDIS_ADDR")
	setString(&c.Mongo.URI, "MONGO_URI")
	setString(&c.Mongo.DB, "MONGO_DB")
	setString(&c.Auth.JWTSecret, "JWT_SECRET")
	setString(&c.Auth.CronSecret, "CRON_SECRET")
	setString(&c.Match.VertexProject, "VERTEX_PROJECT")
	setString(&c.Match.VertexLocation, "VERTEX_LOCATION")
	setString(&c.Match.VertexModel, "VERTEX_MODEL")
	setString(&c.Match.CredentialsFile, "GOOGLE_CREDENTIALS_FILE")
	return nil
}

func (c *Config) Validate() error {
	var errs []error
	if c.Database.URI == "" {
		errs = append(errs, errors.New("POSTGRES_URI is not set"))
	}
	if c.Auth.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is not set"))
	}
	if c.Server.Port == "" {
		errs = append(errs, errors.New("server port is empty"))
	}
	if c.Server.LoginPerMinute <= 0 {
		errs = append(errs, errors.New("login_per_minute must be positive"))
	}
	return errors.Join(errs...)
}

func setString(dst *string, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*dst = v
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
