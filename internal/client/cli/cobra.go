package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dmitrijs2005/hospivibe/internal/buildinfo"
	"github.com/dmitrijs2005/hospivibe/internal/client/config"
	"github.com/dmitrijs2005/hospivibe/internal/logging"
)

// appFactory builds the App for a command invocation. Tests replace it.
var appFactory = func(ctx context.Context, cfg *config.Config) (*App, error) {
	log, err := logging.New(cfg.LogBackend, cfg.LogFormat, cfg.LogLevel, os.Stderr)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	return NewApp(ctx, cfg, log)
}

// NewRootCommand returns the hospivibe command tree. Without a subcommand
// it starts the interactive shell; every shell command is also available
// as a one-shot subcommand sharing the persisted session.
func NewRootCommand() *cobra.Command {
	var app *App

	root := &cobra.Command{
		Use:           "hospivibe",
		Short:         "HospiVibe hospital client",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "version" {
				return nil
			}
			cfg, err := config.Load(cmd.Flags())
			if err != nil {
				return err
			}
			app, err = appFactory(cmd.Context(), cfg)
			return err
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			defer app.Close()
			app.Root(cmd.Context())
			return nil
		},
	}
	config.RegisterFlags(root.PersistentFlags())

	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "show build information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			buildinfo.PrintBuildData(cmd.OutOrStdout())
		},
	})

	// The command table needs an App only to bind methods, so a bare value
	// is enough to enumerate names.
	for _, c := range (&App{}).commands() {
		if c.name == "version" {
			continue
		}
		name := c.name
		root.AddCommand(&cobra.Command{
			Use:   c.usage,
			Short: c.summary,
			Args:  cobra.MaximumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				defer app.Close()
				if _, err := app.dispatch(cmd.Context(), name, args); err != nil {
					return reportedError{err}
				}
				return nil
			},
		})
	}

	return root
}

// reportedError marks a command error that was already shown to the user.
type reportedError struct{ error }

func (e reportedError) Unwrap() error { return e.error }

// Execute runs the command tree and returns the process exit code.
func Execute(ctx context.Context) int {
	err := NewRootCommand().ExecuteContext(ctx)
	if err == nil {
		return 0
	}
	var reported reportedError
	if !errors.As(err, &reported) {
		fmt.Fprintln(os.Stderr, "Error:", err)
	}
	return 1
}
