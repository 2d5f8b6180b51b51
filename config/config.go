package config

import "github.com/caarlos0/env/v6"

// Config is resolved once at process start and treated as immutable for the
// process lifetime. Components receive it by reference; nothing mutates it
// after Load.
type Config struct {
	Port string `env:"PORT" envDefault:"5250"`

	// Geocoding providers
	GoongKey       string `env:"GOONG_KEY"`
	GoongCookie    string `env:"GOONG_COOKIE"`
	GoongBaseURL   string `env:"GOONG_BASE_URL" envDefault:"https://rsapi.goong.io"`
	GeoapifyAPIKey string `env:"GEOAPIFY_API_KEY"`
	GeoapifyURL    string `env:"GEOAPIFY_BASE_URL" envDefault:"https://api.geoapify.com"`
	MapboxToken    string `env:"US1_KEY"`
	MapboxBaseURL  string `env:"MAPBOX_BASE_URL" envDefault:"https://api.mapbox.com"`

	// Cafeland pricing data
	CafelandToken   string `env:"CAFELAND_TOKEN"`
	CafelandBaseURL string `env:"CAFELAND_BASE_URL" envDefault:"https://cafeland.vn"`

	// Guland planning backend
	GulandServerURL string `env:"NEXT_PUBLIC_GULAND_SERVER_URL" envDefault:"https://guland.vn"`

	// Valuation backend
	ValuationBaseURL string `env:"VALUATION_BASE_URL" envDefault:"https://apis.resta.vn"`

	// LLM proxy
	AIProxyURL    string `env:"AI_SERVER_PROXY_URL"`
	AIProxyAPIKey string `env:"AI_SERVER_PROXY_API_KEY"`
	AIProxyModel  string `env:"AI_SERVER_PROXY_MODEL" envDefault:"gpt-4o-mini"`

	// Upstream behavior
	UpstreamTimeoutSeconds int `env:"UPSTREAM_TIMEOUT_SECONDS" envDefault:"10"`
	LLMTimeoutSeconds      int `env:"LLM_TIMEOUT_SECONDS" envDefault:"30"`

	// CORS
	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000"`
}

func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
