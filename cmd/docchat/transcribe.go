package main

import (
	"fmt"
	"os"

	"github.com/sandevgo/docchat/internal/service/voice"
	"github.com/sandevgo/docchat/internal/transport/console"
	"github.com/spf13/cobra"
)

var transcribeOnly bool

var transcribeCmd = &cobra.Command{
	Use:   "transcribe <audio.webm>",
	Short: "Transcribe a recorded question and ask it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, flushLog := setupLogger(cmd.Context(), false)
		defer flushLog()

		audio, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("read audio: %w", err)
		}

		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.db.Close()

		out := cmd.OutOrStdout()
		if transcribeOnly {
			text, err := a.client.Transcribe(ctx, audio)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, text)
			return nil
		}

		view := console.NewChatView(out, true)
		controller := voice.NewController(a.mic, a.client, a.chat, view)
		return controller.Deliver(ctx, audio)
	},
}

func init() {
	transcribeCmd.Flags().BoolVar(&transcribeOnly, "only", false, "print the transcript without asking it")
	rootCmd.AddCommand(transcribeCmd)
}
