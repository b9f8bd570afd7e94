package cmd

import (
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/fwb-online/qexpand/expand"
)

const defaultTimeout = 5 * time.Minute

var (
	cfgFile         string
	timeout         time.Duration
	queryFields     string
	highlightFields string
	verbose         bool

	logger = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:              "qexpand [query]",
	Short:            "qexpand - expands search queries into backend queries",
	TraverseChildren: true, // Prioritize subcommands
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		l, err := newLogger(verbose)
		if err != nil {
			return err
		}
		logger = l
		return nil
	},
	Run: func(cmd *cobra.Command, args []string) {
		// no subcommand
		if len(args) == 0 {
			_ = cmd.Help()
			return
		}
		// Format: qexpand <query> => behaves like the expand subcommand
		expandCmd.Run(expandCmd, args)
	},
}

func Execute() error {
	defer func() { _ = logger.Sync() }()
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "Configuration file (default "+expand.DefaultConfigFile+" when present)")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", defaultTimeout, "Timeout for batch processing")
	rootCmd.PersistentFlags().StringVar(&queryFields, "qf", "", "Query fields as \"field^weight ...\", overrides the configuration")
	rootCmd.PersistentFlags().StringVar(&highlightFields, "hl", "", "Comma-separated highlight fields, overrides the configuration")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(expandCmd)
	rootCmd.AddCommand(batchCmd)
	rootCmd.AddCommand(serveCmd)
}

func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	config := zap.NewProductionConfig()
	config.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	config.Encoding = "console"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	return config.Build()
}

// configPath returns the configuration file to use, or "" for built-in defaults.
func configPath() string {
	if cfgFile != "" {
		return cfgFile
	}
	if _, err := os.Stat(expand.DefaultConfigFile); err == nil {
		return expand.DefaultConfigFile
	}
	return ""
}

// loadConfig loads the configuration at path and applies the command line overrides.
func loadConfig(path string) (expand.Config, error) {
	config, err := expand.LoadConfig(path)
	if err != nil {
		return expand.Config{}, err
	}
	if queryFields != "" {
		config.QueryFields = queryFields
	}
	if highlightFields != "" {
		config.HighlightFields = highlightFields
	}
	return config, nil
}
