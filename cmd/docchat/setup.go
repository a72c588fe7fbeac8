package main

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/sandevgo/docchat/internal/config"
	"github.com/sandevgo/docchat/internal/core"
	"github.com/sandevgo/docchat/internal/providers/audio"
	"github.com/sandevgo/docchat/internal/providers/backend"
	"github.com/sandevgo/docchat/internal/service/chat"
	"github.com/sandevgo/docchat/internal/service/command"
	"github.com/sandevgo/docchat/internal/service/ingest"
	"github.com/sandevgo/docchat/internal/session"
	"github.com/sandevgo/docchat/internal/storage/sqlite"
	"github.com/sandevgo/docchat/internal/transport/telegram"
	"github.com/sandevgo/docchat/internal/transport/tui"
	"github.com/sandevgo/docchat/pkg/log"
	"github.com/sandevgo/docchat/pkg/srv"
)

// app is the wired object graph shared by every command.
type app struct {
	cfg      *config.AppConfig
	db       *sql.DB
	store    core.SessionStore
	client   *backend.Client
	session  *session.Context
	chat     *chat.Controller
	ingest   *ingest.Controller
	mic      core.Microphone
	commands *command.Router
}

func newApp(ctx context.Context) (*app, error) {
	logger := log.FromCtx(ctx)

	if err := initEnv(ctx, config.GetRuntimePath()); err != nil {
		logger.Fatal().Err(err).Msg("failed to init env")
	}

	// 1. Configuration
	cfg := config.NewAppConfig(ctx)

	// 2. Storage
	db, err := sqlite.NewDB(ctx, cfg.GetDatabasePath())
	if err != nil {
		return nil, err
	}
	store := sqlite.NewSessionRepo(db)
	sess := session.NewContext(store, cfg.SessionID)

	// 3. Backend
	client := backend.NewClient(cfg)

	a := &app{
		cfg:     cfg,
		db:      db,
		store:   store,
		client:  client,
		session: sess,
		chat:    chat.NewController(client, sess),
		ingest:  ingest.NewController(client, sess, cfg),

		commands: command.New(command.NewCommands(store, client)),
	}

	// 4. Microphone
	if cfg.IsRecorderEnabled() {
		a.mic = audio.NewCommandMicrophone(cfg.GetRecorderCommand())
	}

	return a, nil
}

// services builds the long-running parts: the terminal UI when withUI is
// set and the Telegram bot when it is enabled.
func (a *app) services(ctx context.Context, cancel context.CancelFunc, withUI bool) ([]srv.Service, error) {
	services := []srv.Service{srv.NewCleanup(a.db.Close)}

	if withUI {
		services = append(services, tui.NewApp(tui.Deps{
			Chat:       a.chat,
			Ingest:     a.ingest,
			Microphone: a.mic,
			Transcribe: a.client,
			Profile:    a.client,
			Session:    a.session,
			Commands:   a.commands,
		}, cancel))
	}

	if a.cfg.IsTelegramSelected() {
		tgCfg := config.NewTelegramConfig(ctx)
		bot, err := telegram.NewBot(ctx, tgCfg, a.client, a.store, a.cfg, a.commands)
		if err != nil {
			return nil, err
		}
		services = append(services, bot)
	}

	return services, nil
}

func initEnv(ctx context.Context, runtimePath string) error {
	logger := log.FromCtx(ctx)
	envFile := filepath.Join(runtimePath, ".env")

	if _, err := os.Stat(envFile); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	if err := godotenv.Load(envFile); err != nil {
		logger.Warn().Err(err).Str("path", envFile).Msg("failed to load .env file")
		return err
	}

	logger.Debug().Str("path", envFile).Msg("loaded .env file")
	return nil
}
