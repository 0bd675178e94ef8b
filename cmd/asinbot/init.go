package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/nao1215/asinbot/internal/config"
	"github.com/spf13/cobra"
)

// configFileName is the default configuration file name.
const configFileName = config.DefaultConfigFile

// configHeader is written above the generated settings.
const configHeader = `# asinbot configuration.
#
# Durations use Go syntax (30s, 5m). Region rates convert the local
# currency into lira; set rate "0" to list a region without an estimate.
# The bot token is never read from this file: set BOT_TOKEN or use .env.

`

// NewInitCmd creates the init command.
func NewInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize a new asinbot configuration file",
		Long: `Initialize creates a new .asinbot configuration file in the current directory.

The generated file holds every default: aggregator and retail hosts, the retry
policy, timeouts, watchdog intervals and the region table with exchange rates.

Examples:
  # Create .asinbot in current directory
  asinbot init

  # Create config file at a specific path
  asinbot init -o ~/.config/asinbot/config.yaml

  # Force overwrite existing file
  asinbot init -f`,
		RunE: runInitCmd,
	}

	cmd.Flags().StringP("output", "o", configFileName,
		"Output file path for the configuration")
	cmd.Flags().BoolP("force", "f", false,
		"Overwrite existing configuration file")

	return cmd
}

func runInitCmd(cmd *cobra.Command, _ []string) error {
	outputPath, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}

	force, err := cmd.Flags().GetBool("force")
	if err != nil {
		return err
	}

	if !force {
		if _, err := os.Stat(outputPath); err == nil {
			return fmt.Errorf("configuration file already exists: %s (use -f to overwrite)", outputPath)
		}
	}

	body, err := config.DefaultFile().Marshal()
	if err != nil {
		return fmt.Errorf("failed to render config template: %w", err)
	}

	dir := filepath.Dir(outputPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	content := append([]byte(configHeader), body...)
	if err := os.WriteFile(outputPath, content, 0600); err != nil {
		return fmt.Errorf("failed to write configuration file: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Created configuration file: %s\n", outputPath)
	fmt.Fprintln(out, "\nEdit this file to change settings such as:")
	fmt.Fprintln(out, "  - Exchange rates per region")
	fmt.Fprintln(out, "  - Retry attempts and backoff")
	fmt.Fprintln(out, "  - Watchdog restart mode")

	return nil
}
