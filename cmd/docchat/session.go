package main

import (
	"fmt"

	"github.com/sandevgo/docchat/internal/config"
	"github.com/sandevgo/docchat/internal/core"
	"github.com/sandevgo/docchat/internal/service/installer"
	"github.com/sandevgo/docchat/pkg/log"
	"github.com/spf13/cobra"
)

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the user the server knows you as",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, flushLog := setupLogger(cmd.Context(), false)
		defer flushLog()

		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.db.Close()

		info, err := a.client.UserInfo(ctx)
		if err != nil {
			log.FromCtx(ctx).Warn().Err(err).Msg("user info unavailable")
			info = core.UserInfo{}
		}
		if info.IsGuest() {
			fmt.Fprintln(cmd.OutOrStdout(), "Guest")
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), info.Name)
		return nil
	},
}

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Show the active document of this session",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, flushLog := setupLogger(cmd.Context(), false)
		defer flushLog()

		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.db.Close()

		collection, err := a.session.ActiveCollection(ctx)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if collection == nil {
			fmt.Fprintf(out, "session %s: no document, run 'docchat upload <file.pdf>'\n", a.session.ID())
			return nil
		}
		name, err := a.session.ActiveFileName(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "session %s: %s (collection %s)\n", a.session.ID(), name, *collection)
		return nil
	},
}

var sessionClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Forget the active document",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, flushLog := setupLogger(cmd.Context(), false)
		defer flushLog()

		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.db.Close()

		if err := a.session.Reset(ctx); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "session %s cleared\n", a.session.ID())
		return nil
	},
}

var setupForce bool

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Configure the server, microphone and channels",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, flushLog := setupLogger(cmd.Context(), false)
		defer flushLog()

		if err := initEnv(ctx, config.GetRuntimePath()); err != nil {
			return err
		}

		state, err := installer.RunWizard(*config.NewAppConfig(ctx), setupForce)
		if err != nil {
			return err
		}

		log.FromCtx(ctx).Info().Str("server", state.App.ServerURL).Msg("setup complete")
		fmt.Fprintln(cmd.OutOrStdout(), "Setup complete! You can now run 'docchat chat'.")
		return nil
	},
}

func init() {
	setupCmd.Flags().BoolVarP(&setupForce, "force", "f", false, "overwrite an existing .env file")
	sessionCmd.AddCommand(sessionClearCmd)
	rootCmd.AddCommand(whoamiCmd, sessionCmd, setupCmd)
}
