package main

import (
	"errors"
	"strings"

	"github.com/sandevgo/docchat/internal/transport/console"
	"github.com/spf13/cobra"
)

var (
	errTelegramDisabled = errors.New("telegram is not enabled, run 'docchat setup' or set DOCCHAT_ENABLE_TELEGRAM=true")
	// errShown fails a command whose error the user has already seen.
	errShown = errors.New("error already shown")
)

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Ask one question about the active document",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, flushLog := setupLogger(cmd.Context(), false)
		defer flushLog()

		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.db.Close()

		view := console.NewChatView(cmd.OutOrStdout(), false)
		_, err = a.chat.Send(ctx, view, strings.Join(args, " "))
		if err != nil {
			return errShown
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(askCmd)
}
