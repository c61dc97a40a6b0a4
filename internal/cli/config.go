package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	cfg "shellm/internal/config"
	"shellm/internal/settings"
)

var initForce bool

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configPathCmd, configSchemaCmd, configInitCmd)
	configInitCmd.Flags().BoolVarP(&initForce, "force", "f", false, "edit an existing config file")
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect and create the shellm config file",
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file in use (or where it would be created)",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := configPath()
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), path)
		return nil
	},
}

var configSchemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the JSON schema of the config file",
	RunE: func(cmd *cobra.Command, args []string) error {
		b, err := cfg.MarshalSchema(cfg.Schema())
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(b))
		return nil
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create or edit the config file interactively",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := configPath()
		if err != nil {
			return err
		}
		if fileExists(path) && !initForce {
			return fmt.Errorf("%s already exists (use --force to edit it)", path)
		}
		c, _, err := cfg.Load(existing(path))
		if err != nil {
			return err
		}
		return settings.Run(path, c)
	},
}

// configPath resolves --config, $SHELLM_CONFIG, discovery and then the
// default location.
func configPath() (string, error) {
	if opts.ConfigPath != "" {
		return opts.ConfigPath, nil
	}
	if p := strings.TrimSpace(os.Getenv(cfg.EnvConfigPath)); p != "" {
		return p, nil
	}
	if p := cfg.Discover(); p != "" {
		return p, nil
	}
	return cfg.DefaultPath()
}

func existing(path string) string {
	if fileExists(path) {
		return path
	}
	return ""
}

func fileExists(p string) bool {
	st, err := os.Stat(p)
	if err != nil {
		return !errors.Is(err, os.ErrNotExist)
	}
	return !st.IsDir()
}
