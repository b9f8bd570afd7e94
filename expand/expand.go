// Package expand is the public entry point of qexpand. It loads the
// configuration, creates engines and expands batches of queries.
package expand

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"
	"sync"

	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"

	"github.com/fwb-online/qexpand/internal"
	tt "github.com/fwb-online/qexpand/internal/types"
)

type Expander interface {
	Expand(query string) (tt.Bundle, error)
	ExpandWith(query, queryFields, highlightFields string) (tt.Bundle, error)
}

// New creates an engine from the configuration file at configurationPath.
func New(configurationPath string, logger *zap.Logger) (*internal.Engine, error) {
	config, err := LoadConfig(configurationPath)
	if err != nil {
		return nil, err
	}
	return NewFromConfig(config, logger)
}

func NewFromConfig(config Config, logger *zap.Logger) (*internal.Engine, error) {
	engine, err := internal.NewEngine(config.EngineOptions(), logger)
	if err != nil {
		return nil, fmt.Errorf("error creating engine %q: %w", config.Name, err)
	}
	return engine, nil
}

// Result is the outcome of one query of a batch.
type Result struct {
	Index  int        `json:"index"`
	Query  string     `json:"query"`
	Bundle *tt.Bundle `json:"bundle,omitempty"`
	Err    error      `json:"-"`
	Error  string     `json:"error,omitempty"`
}

func ProcessQuery(engine Expander, query string) (tt.Bundle, error) {
	return engine.Expand(query)
}

// ProcessQueries expands queries on a bounded pool of workers. Results keep the
// order of queries; a rejected query is reported in its Result and does not
// stop the batch. Progress is drawn to progress unless it is nil.
func ProcessQueries(
	ctx context.Context,
	logger *zap.Logger,
	engine Expander,
	queries []string,
	processor func(Expander, string) (tt.Bundle, error),
	progress io.Writer,
) ([]Result, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if progress == nil {
		progress = io.Discard
	}

	results := make([]Result, len(queries))

	bar := progressbar.NewOptions(len(queries),
		progressbar.OptionSetWriter(progress),
		progressbar.OptionSetDescription("expanding"),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}))

	// limit the number of workers
	sem := make(chan struct{}, runtime.NumCPU())
	var wg sync.WaitGroup

	for i, query := range queries {
		select {
		case <-ctx.Done():
			wg.Wait()
			return results[:i], ctx.Err()
		case sem <- struct{}{}:
		}

		wg.Add(1)
		go func(i int, query string) {
			defer func() {
				<-sem
				wg.Done()
			}()

			r := Result{Index: i, Query: query}
			bundle, err := processor(engine, query)
			if err != nil {
				logger.Debug("query rejected", zap.Int("index", i), zap.Error(err))
				r.Err = err
				r.Error = err.Error()
			} else {
				r.Bundle = &bundle
			}
			results[i] = r
			_ = bar.Add(1)
		}(i, query)
	}
	wg.Wait()
	_ = bar.Finish()

	return results, nil
}

// ReadQueries reads one query per line from r. Blank lines and lines starting
// with '#' are skipped.
func ReadQueries(r io.Reader) ([]string, error) {
	var queries []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		queries = append(queries, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading queries: %w", err)
	}
	return queries, nil
}

// ReadQueryFile reads the queries of the file at path, or of stdin when path is "-".
func ReadQueryFile(path string) ([]string, error) {
	if path == "-" {
		return ReadQueries(os.Stdin)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("error opening %s: %w", path, err)
	}
	defer f.Close()
	return ReadQueries(f)
}
