package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/sandevgo/docchat/pkg/log"
	"github.com/sandevgo/docchat/pkg/srv"
	"github.com/spf13/cobra"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Open the interactive document chat",
	Long:  `Opens the full-screen interface: pick a PDF, wait for it to be processed, then ask questions by typing or with ctrl+r to record.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		var flushLog func()
		ctx, flushLog = setupLogger(ctx, false)
		defer flushLog()

		return runServices(ctx, true)
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the Telegram bot without the terminal interface",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		var flushLog func()
		ctx, flushLog = setupLogger(ctx, true)
		defer flushLog()

		return runServices(ctx, false)
	},
}

func runServices(ctx context.Context, withUI bool) error {
	logger := log.FromCtx(ctx)
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}

	services, err := a.services(ctx, cancel, withUI)
	if err != nil {
		_ = a.db.Close()
		return err
	}
	if !withUI && !a.cfg.IsTelegramSelected() {
		_ = a.db.Close()
		return errTelegramDisabled
	}

	logger.Info().Str("server", a.cfg.GetServerURL()).Msg("starting docchat")

	srv.StartServices(ctx, cancel, services)
	srv.ShutdownServices(ctx, services)

	logger.Info().Msg("docchat has been shut down gracefully")
	return nil
}

func init() {
	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(serveCmd)
}
