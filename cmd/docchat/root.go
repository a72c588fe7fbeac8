package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/sandevgo/docchat/internal/config"
	"github.com/sandevgo/docchat/internal/core"
	"github.com/sandevgo/docchat/internal/service/ui"
	"github.com/sandevgo/docchat/pkg/log"
	"github.com/spf13/cobra"
)

var (
	debug bool
)

var rootCmd = &cobra.Command{
	Use:           "docchat",
	Short:         "docchat: chat with your documents",
	Long:          `docchat uploads PDF documents to a document server and answers questions about them, typed or spoken.`,
	Version:       core.AppVersion,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errShown) {
			fmt.Fprintln(os.Stderr, ui.AlertStyle.Render("Error: "+err.Error()))
		}
		os.Exit(1)
	}
}

func init() {
	// Global flags available to all subcommands
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", config.IsDebug(), "enable debug logging")
}

// setupLogger writes to stdout for the long-running server and to the log
// file in the runtime directory for everything that owns the terminal.
func setupLogger(ctx context.Context, toStdout bool) (context.Context, func()) {
	isDebug := debug || config.IsDebug()
	if toStdout {
		return log.NewContextWithLogger(ctx, isDebug)
	}

	cfg := config.NewAppConfig(ctx)
	if err := os.MkdirAll(cfg.GetRuntimePath(), 0755); err == nil {
		f, err := os.OpenFile(cfg.GetLogPath(), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
		if err == nil {
			ctx, flush := log.NewContextWithWriter(ctx, isDebug, f)
			return ctx, func() {
				flush()
				_ = f.Close()
			}
		}
		fmt.Fprintf(os.Stderr, "cannot open log file, logging to stderr: %v\n", err)
	}
	return log.NewContextWithWriter(ctx, isDebug, os.Stderr)
}

func CustomizeHelp(rootCmd *cobra.Command) {
	cobra.AddTemplateFunc("StyleTitle", func(s string) string { return ui.TitleStyle.Render(s) })
	cobra.AddTemplateFunc("StyleUsage", func(s string) string { return ui.UsageStyle.Render(s) })
	cobra.AddTemplateFunc("StyleFlag", func(s string) string { return ui.FlagStyle.Render(s) })
	cobra.AddTemplateFunc("StyleDesc", func(s string) string { return ui.DescStyle.Render(s) })

	template := `
{{StyleTitle "USAGE"}}
  {{StyleUsage .UseLine}}
{{if gt (len .Commands) 0}}{{StyleTitle "AVAILABLE COMMANDS"}}
{{range .Commands}}{{if (or .IsAvailableCommand (eq .Name "help"))}}
  {{rpad .Name .NamePadding}} {{StyleDesc .Short}}{{end}}
{{end}}{{end}}
{{if .HasAvailableLocalFlags}}{{StyleTitle "FLAGS"}}
{{.LocalFlags.FlagUsages | trimTrailingWhitespaces | StyleFlag}}
{{end}}
`
	rootCmd.SetHelpTemplate(template)
}
