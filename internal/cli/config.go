package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ppiankov/ontomerge/internal/errors"
	"github.com/ppiankov/ontomerge/internal/model"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const hierarchy = `Configuration hierarchy (highest to lowest priority):
  1. CLI flags
  2. Environment variables (ONTOMERGE_*, e.g. ONTOMERGE_SPECIES_TAXON)
  3. Config file (~/.ontomerge/config.yaml)
  4. Defaults`

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage ontomerge configuration",
	Long:  "Manage ontomerge configuration files and settings.\n\n" + hierarchy,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long:  `Display the effective configuration after merging defaults, config file, environment and flags.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		if configFile := viper.ConfigFileUsed(); configFile != "" {
			fmt.Fprintf(cmd.ErrOrStderr(), "Configuration file: %s\n\n", configFile)
		} else {
			fmt.Fprintf(cmd.ErrOrStderr(), "No configuration file found (using defaults)\n\n")
		}

		yamlData, err := yaml.Marshal(cfg)
		if err != nil {
			return errors.Wrap(err, "marshal config")
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "═══════════════════════════════════════════════════════════")
		fmt.Fprintln(out, "  Current Configuration")
		fmt.Fprintln(out, "═══════════════════════════════════════════════════════════")
		fmt.Fprintln(out)
		fmt.Fprintln(out, string(yamlData))
		fmt.Fprintln(out, "═══════════════════════════════════════════════════════════")
		fmt.Fprintln(out)
		fmt.Fprintln(out, hierarchy)
		fmt.Fprintln(out)
		return nil
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize default configuration file",
	Long:  `Create a default configuration file at ~/.ontomerge/config.yaml with all available options.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		home, err := os.UserHomeDir()
		if err != nil {
			return errors.Wrap(err, "find home directory")
		}
		path, err := writeDefaultConfig(filepath.Join(home, ".ontomerge"))
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "✓ Created default configuration: %s\n", path)
		fmt.Fprintf(out, "\nTo view the configuration:\n")
		fmt.Fprintf(out, "  ontomerge config show\n")
		fmt.Fprintf(out, "\nTo customize, edit the file with your preferred editor:\n")
		fmt.Fprintf(out, "  $EDITOR %s\n\n", path)
		return nil
	},
}

// writeDefaultConfig writes config.yaml with the built-in defaults into dir
// and refuses to overwrite an existing file
func writeDefaultConfig(dir string) (path string, err error) {
	path = filepath.Join(dir, "config.yaml")
	if _, statErr := os.Stat(path); statErr == nil {
		return "", errors.WithHint(
			errors.Newf("config file already exists: %s", path),
			"use 'ontomerge config show' to view it, or delete it first to recreate",
		)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", errors.Wrap(err, "create config directory")
	}

	yamlData, err := yaml.Marshal(model.DefaultConfig())
	if err != nil {
		return "", errors.Wrap(err, "marshal config")
	}

	f, err := os.Create(path)
	if err != nil {
		return "", errors.Wrap(err, "create config file")
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = errors.Wrap(closeErr, "close config file")
		}
	}()

	header := "# ontomerge configuration file\n#\n"
	for _, line := range []string{
		"Configuration hierarchy (highest to lowest priority):",
		"  1. CLI flags",
		"  2. Environment variables (ONTOMERGE_*)",
		"  3. This config file",
		"  4. Built-in defaults",
	} {
		header += "# " + line + "\n"
	}
	header += "#\n# Priority lists take PREFIX=SCORE entries, e.g. iri_priority: [\"UBERON=2\", \"FMA=1\"]\n\n"

	if _, err := f.WriteString(header); err != nil {
		return "", errors.Wrap(err, "write config")
	}
	if _, err := f.Write(yamlData); err != nil {
		return "", errors.Wrap(err, "write config")
	}
	return path, nil
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
}
