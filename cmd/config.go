package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/Tiliavir/trivial-calendar/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration",
	Long: `config prints the settings in effect after merging the config file,
TCAL_* environment variables and command-line flags.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return printConfig(cmd.OutOrStdout(), cal.cfg)
	},
}

func printConfig(w io.Writer, cfg config.Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	_, err = w.Write(data)
	return err
}
