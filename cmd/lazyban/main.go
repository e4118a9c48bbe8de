package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

type rootOptions struct {
	configPath string
	backend    string
	logLevel   string
	noColor    bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	rootCmd := &cobra.Command{
		Use:           "lazyban",
		Short:         "Edit a session's banned IP addresses",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEditor(cmd.Context(), opts)
		},
	}
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "path to config.toml (default: $LAZYBAN_CONFIG or the user config dir)")
	flags.StringVar(&opts.backend, "backend", "", "session backend override (json|sqlite|redis|firewalld)")
	flags.StringVar(&opts.logLevel, "log-level", "", "set log level (debug|info|warn|error)")
	flags.BoolVar(&opts.noColor, "no-color", false, "disable color output")

	rootCmd.AddCommand(
		newListCmd(opts),
		newAddCmd(opts),
		newRemoveCmd(opts),
		newBackupsCmd(opts),
		newRestoreCmd(opts),
		newVersionCmd(),
	)
	return rootCmd
}
