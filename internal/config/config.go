package config

import (
	"fmt"
	"strings"
	"time"

	env "github.com/Netflix/go-env"
)

type Config struct {
	AppName string `env:"APP_NAME,default=conrelay"`
	Host    string `env:"HTTP_HOST,default=0.0.0.0"`
	Port    int    `env:"PORT,default=5000"`

	DatabasePath string        `env:"DATABASE_PATH,default=conrelay.db"`
	JWTSecret    string        `env:"JWT_SECRET,required=true"`
	TokenTTL     time.Duration `env:"TOKEN_TTL,default=24h"`

	// Comma-separated list of allowed origins; "*" allows any.
	CORSOrigins string `env:"CORS_ORIGINS,default=*"`
	StaticDir   string `env:"STATIC_DIR,default=static"`
	LogLevel    string `env:"LOG_LEVEL,default=info"`
}

func Load() (*Config, error) {
	var cfg Config
	if _, err := env.UnmarshalFromEnviron(&cfg); err != nil {
		return nil, fmt.Errorf("read environment: %w", err)
	}
	return &cfg, nil
}

func (c *Config) HTTPAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Origins returns the configured CORS origins as a slice.
func (c *Config) Origins() []string {
	parts := strings.Split(c.CORSOrigins, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			origins = append(origins, p)
		}
	}
	return origins
}
