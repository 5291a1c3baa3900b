package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net"
	"net/url"
	"os"
	"strconv"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverMongoDB  = "mongodb"

	ProviderOpenAI   = "openai"
	ProviderGoogleAI = "googleai"
)

type Config struct {
	Server   ServerConfig   `envPrefix:"SERVER_"`
	Database DatabaseConfig `envPrefix:"DATABASE_"`
	LLM      LLMConfig      `envPrefix:"LLM_"`
	Log      LogConfig      `envPrefix:"LOG_"`
}

type ServerConfig struct {
	Port        string `env:"PORT" envDefault:"8000"`
	Host        string `env:"HOST" envDefault:"0.0.0.0"`
	UploadDir   string `env:"UPLOAD_DIR" envDefault:"uploads"`
	CORSPattern string `env:"CORS_PATTERN" envDefault:".*"`
	MaxUploadMB int64  `env:"MAX_UPLOAD_MB" envDefault:"20"`
}

func (c ServerConfig) Addr() string {
	return net.JoinHostPort(c.Host, c.Port)
}

type DatabaseConfig struct {
	Driver string `env:"DRIVER" envDefault:"postgres"`

	// postgres
	URL      string `env:"URL"`
	Host     string `env:"HOST" envDefault:"localhost"`
	Port     int    `env:"PORT" envDefault:"5432"`
	Name     string `env:"NAME" envDefault:"product_price_db"`
	User     string `env:"USER" envDefault:"postgres"`
	Password string `env:"PASSWORD"`
	SSLMode  string `env:"SSLMODE" envDefault:"disable"`

	// sqlite
	SQLitePath string `env:"SQLITE_PATH" envDefault:"product_price.db"`

	// mongodb
	Hosts    []string `env:"MONGO_HOSTS" envSeparator:"," envDefault:"localhost:27017"`
	Database string   `env:"MONGO_DATABASE" envDefault:"product_price_db"`
	Username string   `env:"MONGO_USERNAME"`
	AuthDB   string   `env:"MONGO_AUTH_DB" envDefault:"admin"`
	Direct   bool     `env:"MONGO_DIRECT" envDefault:"false"`
}

// PostgresDSN returns URL when set, otherwise builds one from the discrete fields.
func (c DatabaseConfig) PostgresDSN() string {
	if c.URL != "" {
		return c.URL
	}
	u := url.URL{
		Scheme: "postgres",
		Host:   net.JoinHostPort(c.Host, strconv.Itoa(c.Port)),
		Path:   "/" + c.Name,
	}
	if c.Password != "" {
		u.User = url.UserPassword(c.User, c.Password)
	} else {
		u.User = url.User(c.User)
	}
	q := url.Values{}
	q.Set("sslmode", c.SSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}

type LLMConfig struct {
	Provider       string  `env:"PROVIDER" envDefault:"openai"`
	Model          string  `env:"MODEL"`
	Temperature    float64 `env:"TEMPERATURE" envDefault:"0.1"`
	OpenAIAPIKey   string  `env:"OPENAI_API_KEY"`
	OpenAIBaseURL  string  `env:"OPENAI_BASE_URL" envDefault:"https://api.openai.com/v1"`
	GoogleAIAPIKey string  `env:"GOOGLE_AI_API_KEY"`
	SecretFile     string  `env:"SECRET_FILE" envDefault:"secret.json"`
}

// APIKey returns the credential of the configured provider.
func (c LLMConfig) APIKey() string {
	if c.Provider == ProviderGoogleAI {
		return c.GoogleAIAPIKey
	}
	return c.OpenAIAPIKey
}

// ModelName returns Model or the provider default.
func (c LLMConfig) ModelName() string {
	if c.Model != "" {
		return c.Model
	}
	if c.Provider == ProviderGoogleAI {
		return "googleai/gemini-2.5-flash"
	}
	return "gpt-4o-mini"
}

type LogConfig struct {
	Level string `env:"LEVEL" envDefault:"info"`
}

// secrets mirrors secret.json.
type secrets struct {
	OpenAIAPIKey   string `json:"openai_api_key"`
	GoogleAIAPIKey string `json:"google_ai_api_key"`
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	if err := applySecretFile(&cfg.LLM); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(fmt.Errorf("load config: %w", err))
	}
	return cfg
}

// applySecretFile overrides API keys with the values found in the secret file.
// A missing file is not an error.
func applySecretFile(c *LLMConfig) error {
	if c.SecretFile == "" {
		return nil
	}
	data, err := os.ReadFile(c.SecretFile)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read secret file: %w", err)
	}

	var s secrets
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("parse secret file %s: %w", c.SecretFile, err)
	}
	if s.OpenAIAPIKey != "" {
		c.OpenAIAPIKey = s.OpenAIAPIKey
	}
	if s.GoogleAIAPIKey != "" {
		c.GoogleAIAPIKey = s.GoogleAIAPIKey
	}
	return nil
}

func (c *Config) validate() error {
	switch c.Database.Driver {
	case DriverPostgres, DriverSQLite, DriverMongoDB:
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}
	switch c.LLM.Provider {
	case ProviderOpenAI, ProviderGoogleAI:
	default:
		return fmt.Errorf("unsupported llm provider %q", c.LLM.Provider)
	}
	return nil
}
