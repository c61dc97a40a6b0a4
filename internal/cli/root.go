package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"shellm/internal/app"
)

var opts app.Options

var rootCmd = &cobra.Command{
	Use:   "shellm",
	Short: "shellm – an LLM chat overlay for your shell",
	Long: "shellm runs your shell inside a pseudo-terminal and opens a chat overlay on a hotkey.\n" +
		"Accepting a suggested command types it at the shell prompt without running it.",
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return app.Start(cmd.Context(), opts)
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	f := rootCmd.PersistentFlags()
	f.StringVar(&opts.ConfigPath, "config", "", "config file (default: $SHELLM_CONFIG or the user config dir)")
	f.StringVar(&opts.Shell, "shell", "", "shell to run (default: $SHELL)")
	f.StringVar(&opts.LogFile, "log-file", "", "append diagnostics to this file")
	f.BoolVar(&opts.Debug, "debug", false, "log at debug level")
}

// Execute runs the CLI.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
