package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

type Config struct {
	Port        string `env:"PORT" envDefault:"8000"`
	FrontendURL string `env:"FRONTEND_URL"`

	LLMProvider      string `env:"LLM_PROVIDER" envDefault:"openai"`
	OpenAIAPIKey     string `env:"OPENAI_API_KEY"`
	AnthropicAPIKey  string `env:"ANTHROPIC_API_KEY"`
	SystemPromptFile string `env:"SYSTEM_PROMPT_FILE" envDefault:"system_prompt.txt"`

	NewsAPIKey         string        `env:"NEWS_API_KEY"`
	AlphaVantageAPIKey string        `env:"ALPHA_VANTAGE_API_KEY"`
	FinnhubAPIKey      string        `env:"FINNHUB_API_KEY"`
	NewsCacheTTL       time.Duration `env:"NEWS_CACHE_TTL" envDefault:"15m"`

	MCPAPIKey string `env:"MCP_API_KEY"`

	DatabaseURL string `env:"DATABASE_URL"`
	RedisURL    string `env:"REDIS_URL"`

	SMTPHost     string `env:"SMTP_HOST" envDefault:"smtp.gmail.com"`
	SMTPPort     int    `env:"SMTP_PORT" envDefault:"587"`
	SMTPUsername string `env:"SMTP_USERNAME"`
	SMTPPassword string `env:"SMTP_PASSWORD"`
	SMTPFrom     string `env:"SMTP_FROM"`

	OutputDir string `env:"OUTPUT_DIR" envDefault:"output"`
}

func Load() (*Config, error) {
	godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if cfg.SMTPFrom == "" {
		cfg.SMTPFrom = cfg.SMTPUsername
	}

	return &cfg, cfg.Validate()
}

func (c *Config) Validate() error {
	var errs []error

	switch c.LLMProvider {
	case ProviderOpenAI:
		if c.OpenAIAPIKey == "" {
			errs = append(errs, errors.New("OPENAI_API_KEY is not set"))
		}
	case ProviderAnthropic:
		if c.AnthropicAPIKey == "" {
			errs = append(errs, errors.New("ANTHROPIC_API_KEY is not set"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown LLM_PROVIDER %q", c.LLMProvider))
	}

	if c.NewsAPIKey == "" {
		errs = append(errs, errors.New("NEWS_API_KEY is not set"))
	}

	return errors.Join(errs...)
}

func (c *Config) MailEnabled() bool {
	return c.SMTPHost != "" && c.SMTPUsername != "" && c.SMTPPassword != ""
}
