package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"pictionary/internal/config"
	"pictionary/internal/logging"
	"pictionary/internal/server"

	"github.com/spf13/cobra"
)

const releaseVersion = "0.1.0"

func newCmd(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "pictionary",
		Short:         "Multiplayer guess-the-generated-image party game server.",
		Args:          cobra.ExactArgs(0),
		SilenceErrors: true,
		SilenceUsage:  true,
		Version:       releaseVersion,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			if err := config.ApplyEnv(cmd.Flags()); err != nil {
				return err
			}
			return cfg.Validate()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			log := logging.New(os.Stderr, cfg.Verbose)
			return server.Run(cmd.Context(), cfg, log)
		},
	}

	config.Register(cmd.Flags(), cfg)

	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SetHelpCommand(&cobra.Command{Hidden: true})
	cmd.SetVersionTemplate("pictionary v{{.Version}}\n")

	return cmd
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := &config.Config{}
	if err := newCmd(cfg).ExecuteContext(ctx); err != nil {
		stop()
		cobra.CheckErr(err)
	}
}
