package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

type Env struct {
	AppAddr string `env:"APP_ADDR" envDefault:":8080"`
	GinMode string `env:"GIN_MODE"`

	// DBDriver is "sqlite" (embedded file, default) or "mysql".
	DBDriver string `env:"DB_DRIVER" envDefault:"sqlite"`
	DBDSN    string `env:"DB_DSN" envDefault:"busmanager.db"`

	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
	// LogFile redirects logs away from the terminal (used by the TUI).
	LogFile string `env:"LOG_FILE"`

	ThemeFile string `env:"THEME_FILE"`
	// ReportFont is a TTF with Cyrillic glyphs for the fleet PDF.
	ReportFont string `env:"REPORT_FONT"`

	// GatewayURL makes the TUI talk to a running server instead of
	// opening the database in-process.
	GatewayURL     string        `env:"GATEWAY_URL"`
	GatewayTimeout time.Duration `env:"GATEWAY_TIMEOUT" envDefault:"10s"`

	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:","`
}

func LoadEnv() (Env, error) {
	var e Env
	if err := env.Parse(&e); err != nil {
		return Env{}, fmt.Errorf("parse env: %w", err)
	}
	e.DBDriver = strings.ToLower(strings.TrimSpace(e.DBDriver))
	switch e.DBDriver {
	case DriverSQLite, DriverMySQL:
	default:
		return Env{}, fmt.Errorf("unsupported DB_DRIVER %q", e.DBDriver)
	}
	if len(e.CORSAllowedOrigins) == 0 {
		e.CORSAllowedOrigins = []string{
			"http://localhost:3000",
			"http://127.0.0.1:3000",
			"http://localhost:5173",
			"http://127.0.0.1:5173",
			"wails://wails",
		}
	}
	return e, nil
}
