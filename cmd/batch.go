package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fwb-online/qexpand/expand"
	"github.com/fwb-online/qexpand/formatter"
)

var (
	batchJSONOutput bool
	batchOutPath    string
)

var batchCmd = &cobra.Command{
	Use:   "batch <file>",
	Short: "Expand every query of a file, one per line (\"-\" reads stdin)",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		config, err := loadConfig(configPath())
		if err != nil {
			logger.Fatal("Failed to load configuration", zap.Error(err))
		}
		engine, err := expand.NewFromConfig(config, logger)
		if err != nil {
			logger.Fatal("Failed to initialize engine", zap.Error(err))
		}

		queries, err := expand.ReadQueryFile(args[0])
		if err != nil {
			logger.Fatal("Failed to read queries", zap.Error(err))
		}

		out := io.Writer(os.Stdout)
		if batchOutPath != "" {
			f, err := os.Create(batchOutPath)
			if err != nil {
				logger.Fatal("Error creating output file", zap.Error(err))
			}
			defer f.Close()
			out = f
		}

		rejected, err := runBatch(ctx, out, os.Stderr, engine, config.ExactMarker, queries, batchJSONOutput)
		if err != nil {
			logger.Error("Error processing queries", zap.Error(err))
			os.Exit(1)
		}
		if rejected > 0 {
			os.Exit(1)
		}
	},
}

func init() {
	batchCmd.Flags().BoolVar(&batchJSONOutput, "json", false, "Output results in JSON format")
	batchCmd.Flags().StringVarP(&batchOutPath, "output", "o", "", "Output path")
}

// runBatch expands queries and prints every result. It returns the number of
// rejected queries.
func runBatch(
	ctx context.Context,
	out, progress io.Writer,
	engine expand.Expander,
	exactMarker string,
	queries []string,
	isJSON bool,
) (int, error) {
	results, err := expand.ProcessQueries(ctx, logger, engine, queries, expand.ProcessQuery, progress)
	if err != nil {
		return 0, err
	}

	rejected := 0
	for _, r := range results {
		if r.Err != nil {
			rejected++
		}
	}

	if isJSON {
		return rejected, formatter.WriteJSON(out, results)
	}
	for _, r := range results {
		fmt.Fprintf(out, "# %s\n", r.Query)
		if r.Err != nil {
			fmt.Fprintln(out, formatter.FormatError(displayQuery(r.Query, exactMarker), r.Err))
			continue
		}
		fmt.Fprintln(out, formatter.FormatBundle(*r.Bundle))
	}
	return rejected, nil
}
