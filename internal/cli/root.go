// Package cli wires the ontomerge commands: flag parsing, configuration
// loading and report output around the pipeline.
package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ppiankov/ontomerge/internal/errors"
	"github.com/ppiankov/ontomerge/internal/logger"
	"github.com/ppiankov/ontomerge/internal/model"
	"github.com/ppiankov/ontomerge/internal/reasoner"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Version is set at build time with -ldflags "-X .../internal/cli.Version=..."
var Version = "dev"

var (
	cfgFile string
	verbose bool
	logJSON bool
)

// Exit codes
const (
	ExitOK             = 0
	ExitError          = 1
	ExitConfiguration  = 2
	ExitReasoningCheck = 3
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "ontomerge",
	Short: "ontomerge - reasoning-gated merging of ontology classes",
	Long: `ontomerge rewrites ontology graphs in two ways:

  merge-equivalent-sets  collapse every group of equivalent classes into one
                         representative, chosen by prefix priority
  merge-species          build taxon-specific copies of the classes that are
                         parameterised by an unfolding property such as part of

Both commands run a reasoner first and refuse to touch an ontology that is
inconsistent or has unsatisfiable classes.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command and prints any error with its hints
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if hint := errors.FlattenHints(err); hint != "" {
			fmt.Fprintf(os.Stderr, "Hint: %s\n", hint)
		}
	}
	logger.Sync()
	return err
}

// ExitCode maps an error returned by Execute to a process exit code
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.IsConfigurationError(err):
		return ExitConfiguration
	}
	if _, ok := reasoner.AsFailure(err); ok {
		return ExitReasoningCheck
	}
	return ExitError
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "ontomerge %s\n", Version)
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.ontomerge/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVar(&logJSON, "log-json", false, "emit logs as JSON")

	rootCmd.AddCommand(versionCmd)
}

// initConfig reads in config file and ENV variables
func initConfig() {
	setDefaults(model.DefaultConfig())
	_ = viper.BindPFlag("output.verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	_ = viper.BindPFlag("logging.json", rootCmd.PersistentFlags().Lookup("log-json"))

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else if home, err := os.UserHomeDir(); err == nil {
		viper.AddConfigPath(filepath.Join(home, ".ontomerge"))
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	// ONTOMERGE_SPECIES_SUFFIX maps to species.suffix
	viper.SetEnvPrefix("ONTOMERGE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	readErr := viper.ReadInConfig()

	if err := logger.Initialize(viper.GetBool("logging.json"), viper.GetBool("output.verbose")); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing logger: %v\n", err)
	}

	switch {
	case readErr == nil:
		logger.Logger.Debugw("Using config file", logger.FieldFile, viper.ConfigFileUsed())
	case cfgFile != "":
		logger.Logger.Warnw("Failed to read config file", logger.FieldFile, cfgFile, logger.FieldError, readErr.Error())
	}
}

// setDefaults registers every config key so that environment variables and
// Unmarshal see them
func setDefaults(cfg *model.Config) {
	viper.SetDefault("reasoner.name", cfg.Reasoner.Name)
	viper.SetDefault("reasoner.cache_ttl", cfg.Reasoner.CacheTTL)
	viper.SetDefault("equivalence.iri_priority", cfg.Equivalence.IRIPriority)
	viper.SetDefault("equivalence.label_priority", cfg.Equivalence.LabelPriority)
	viper.SetDefault("equivalence.comment_priority", cfg.Equivalence.CommentPriority)
	viper.SetDefault("equivalence.definition_priority", cfg.Equivalence.DefinitionPriority)
	viper.SetDefault("equivalence.preserve", cfg.Equivalence.Preserve)
	viper.SetDefault("species.taxon", cfg.Species.Taxon)
	viper.SetDefault("species.property", cfg.Species.Property)
	viper.SetDefault("species.suffix", cfg.Species.Suffix)
	viper.SetDefault("species.include_properties", cfg.Species.IncludeProperties)
	viper.SetDefault("species.translate_intersections", cfg.Species.TranslateIntersections)
	viper.SetDefault("concurrency.workers", cfg.Concurrency.Workers)
	viper.SetDefault("output.format", cfg.Output.Format)
	viper.SetDefault("output.report_json", cfg.Output.ReportJSON)
	viper.SetDefault("output.report_md", cfg.Output.ReportMD)
}

// loadConfig returns the effective configuration: flags, environment,
// config file, defaults
func loadConfig() (*model.Config, error) {
	cfg := model.DefaultConfig()
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, errors.Wrap(err, "parse configuration")
	}
	return cfg, nil
}

// bindFlags binds the named flags of cmd to config keys. Binding happens
// when the command runs because several commands share keys.
func bindFlags(cmd *cobra.Command, keys map[string]string) error {
	for key, name := range keys {
		f := cmd.Flags().Lookup(name)
		if f == nil {
			return errors.Newf("unknown flag %q", name)
		}
		if err := viper.BindPFlag(key, f); err != nil {
			return errors.Wrapf(err, "bind --%s", name)
		}
	}
	return nil
}

// addOutputFlags registers the flags shared by the merge commands
func addOutputFlags(flags *pflag.FlagSet, in, out *string) {
	flags.StringVarP(in, "input", "i", "", "input ontology (.yaml, .json or .toml)")
	flags.StringVarP(out, "output", "o", "", "output ontology path")
	flags.StringP("reasoner", "r", reasoner.DefaultName, "reasoner: "+strings.Join(reasoner.Names(), ", "))
	flags.String("format", "", "output format: yaml, json or toml (default: from output extension)")
	flags.String("report-json", "", "write a JSON report to this path")
	flags.String("report-md", "", "write a Markdown report to this path")
}

var outputKeys = map[string]string{
	"reasoner.name":      "reasoner",
	"output.format":      "format",
	"output.report_json": "report-json",
	"output.report_md":   "report-md",
}

func mergeKeys(sets ...map[string]string) map[string]string {
	out := make(map[string]string)
	for _, s := range sets {
		for k, v := range s {
			out[k] = v
		}
	}
	return out
}

func requireFlag(option, value string) error {
	if value == "" {
		return errors.NewConfigurationError(option, "", "required")
	}
	return nil
}
