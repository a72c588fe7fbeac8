package installer

import "github.com/sandevgo/docchat/internal/config"

// InstallState is the configuration being assembled by the wizard. It starts
// from the current environment so re-running setup keeps earlier answers.
type InstallState struct {
	App      config.AppConfig
	Telegram config.TelegramConfig
}

func NewInstallState(app config.AppConfig) *InstallState {
	return &InstallState{App: app}
}
