package config

import (
	"context"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/sandevgo/docchat/pkg/log"
)

// RecorderDisabled as the recorder command turns voice input off.
const RecorderDisabled = "none"

type AppConfig struct {
	RuntimePath string `env:"DOCCHAT_RUNTIME_PATH" envDefault:".docchat"`
	SessionID   string `env:"DOCCHAT_SESSION" envDefault:"cli-local"`

	// Backend
	ServerURL      string        `env:"DOCCHAT_SERVER_URL" envDefault:"http://localhost:8000"`
	SessionCookie  string        `env:"DOCCHAT_SESSION_COOKIE"`
	RequestTimeout time.Duration `env:"DOCCHAT_REQUEST_TIMEOUT" envDefault:"120s"`

	// Ingestion polling; 0 attempts means poll until a terminal status
	PollInterval    time.Duration `env:"DOCCHAT_POLL_INTERVAL" envDefault:"2s"`
	PollMaxAttempts int           `env:"DOCCHAT_POLL_MAX_ATTEMPTS" envDefault:"900"`

	// Voice capture
	RecorderCommand string `env:"DOCCHAT_RECORDER" envDefault:"ffmpeg -hide_banner -loglevel error -f pulse -i default -c:a libopus -f webm -"`

	// Transport Flags
	EnableTelegram bool `env:"DOCCHAT_ENABLE_TELEGRAM" envDefault:"false"`
}

func NewAppConfig(ctx context.Context) *AppConfig {
	c := &AppConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse App config")
	}
	if !filepath.IsAbs(c.RuntimePath) {
		c.RuntimePath = GetRuntimePath()
	}
	return c
}

func (c AppConfig) GetRuntimePath() string {
	return c.RuntimePath
}

func (c AppConfig) GetDatabasePath() string {
	return filepath.Join(c.RuntimePath, "session.db")
}

func (c AppConfig) GetLogPath() string {
	return filepath.Join(c.RuntimePath, "docchat.log")
}

func (c AppConfig) GetServerURL() string {
	return c.ServerURL
}

func (c AppConfig) GetSessionCookie() string {
	return c.SessionCookie
}

func (c AppConfig) GetRequestTimeout() time.Duration {
	return c.RequestTimeout
}

func (c AppConfig) GetPollInterval() time.Duration {
	return c.PollInterval
}

func (c AppConfig) GetPollMaxAttempts() int {
	return c.PollMaxAttempts
}

func (c AppConfig) GetRecorderCommand() string {
	return c.RecorderCommand
}

func (c AppConfig) IsRecorderEnabled() bool {
	return c.RecorderCommand != "" && c.RecorderCommand != RecorderDisabled
}

func (c AppConfig) IsTelegramSelected() bool {
	return c.EnableTelegram
}
