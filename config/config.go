package config

import (
	"flag"
	"net/url"
	"time"

	"github.com/caarlos0/env/v6"
)

type Config struct {
	AccessToken string        `env:"BITLY_ACCESS_TOKEN"`
	APIBaseURL  *url.URL      `env:"BITLY_API_BASE_URL"`
	Timeout     time.Duration `env:"BITLY_TIMEOUT" envDefault:"10s"`
	LogLevel    string        `env:"BITLY_LOG_LEVEL" envDefault:"info"`
	Debug       bool          `env:"BITLY_DEBUG"`
}

// FromEnv parses the configuration from environment variables only.
func FromEnv() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Configure parses the configuration from environment variables and then
// applies CLI flags on top: flag values take precedence over the
// same-named environment variables.
func Configure() (*Config, error) {
	cfg, err := FromEnv()
	if err != nil {
		return nil, err
	}

	flagConfig := struct {
		AccessToken string
		APIBaseURL  string
		Debug       bool
	}{}
	flag.StringVar(&flagConfig.AccessToken, "t", "", "API access token")
	flag.StringVar(&flagConfig.APIBaseURL, "u", "", "Base URL of the API")
	flag.BoolVar(&flagConfig.Debug, "v", false, "Verbose debug logging")
	flag.Parse()

	if flagConfig.AccessToken != "" {
		cfg.AccessToken = flagConfig.AccessToken
	}
	if flagConfig.APIBaseURL != "" {
		u, err := url.Parse(flagConfig.APIBaseURL)
		if err != nil {
			return nil, err
		}
		cfg.APIBaseURL = u
	}
	if flagConfig.Debug {
		cfg.Debug = true
	}

	return cfg, nil
}
