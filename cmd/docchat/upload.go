package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/sandevgo/docchat/internal/service/ingest"
	"github.com/sandevgo/docchat/internal/transport/console"
	"github.com/spf13/cobra"
)

var uploadCmd = &cobra.Command{
	Use:   "upload <file.pdf>",
	Short: "Upload a PDF and wait until it is ready to chat about",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		ctx, flushLog := setupLogger(ctx, false)
		defer flushLog()

		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.db.Close()

		out := cmd.OutOrStdout()
		view := console.NewUploadView(out)
		nav := console.NewNavigator()

		task, err := a.ingest.Upload(ctx, view, nav, args[0])
		if err != nil {
			if errors.Is(err, ingest.ErrBusy) {
				return err
			}
			return errShown
		}

		select {
		case <-task.Done():
		case <-ctx.Done():
			a.ingest.Cancel(view)
			return ctx.Err()
		}

		switch task.Outcome() {
		case ingest.OutcomeCompleted:
			name, _ := a.session.ActiveFileName(ctx)
			fmt.Fprintf(out, "✅ %s is ready. Run 'docchat chat' or 'docchat ask'.\n", name)
			return nil
		default:
			// The upload view already printed the failure.
			return errShown
		}
	},
}

func init() {
	rootCmd.AddCommand(uploadCmd)
}
