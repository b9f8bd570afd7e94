package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fwb-online/qexpand/expand"
	"github.com/fwb-online/qexpand/formatter"
)

var expandJSONOutput bool

var expandCmd = &cobra.Command{
	Use:   "expand <query>",
	Short: "Expand a single query",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		config, err := loadConfig(configPath())
		if err != nil {
			logger.Fatal("Failed to load configuration", zap.Error(err))
		}
		engine, err := expand.NewFromConfig(config, logger)
		if err != nil {
			logger.Fatal("Failed to initialize engine", zap.Error(err))
		}

		query := strings.Join(args, " ")
		if err := runExpand(os.Stdout, os.Stderr, engine, config.ExactMarker, query, expandJSONOutput); err != nil {
			os.Exit(1)
		}
	},
}

func init() {
	expandCmd.Flags().BoolVar(&expandJSONOutput, "json", false, "Output the result in JSON format")
}

// runExpand expands query and prints the result to out, or the rejection to errOut.
func runExpand(out, errOut io.Writer, engine expand.Expander, exactMarker, query string, isJSON bool) error {
	bundle, err := expand.ProcessQuery(engine, query)
	if err != nil {
		if isJSON {
			_ = formatter.WriteJSON(out, expand.Result{Query: query, Error: err.Error()})
			return err
		}
		fmt.Fprint(errOut, formatter.FormatError(displayQuery(query, exactMarker), err))
		return err
	}

	if isJSON {
		return formatter.WriteJSON(out, bundle)
	}
	fmt.Fprint(out, formatter.FormatBundle(bundle))
	return nil
}

// displayQuery returns the query as the engine tokenized it, so that error
// positions line up.
func displayQuery(query, exactMarker string) string {
	if exactMarker == "" {
		return query
	}
	return strings.ReplaceAll(query, exactMarker, "")
}
