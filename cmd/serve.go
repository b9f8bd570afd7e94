package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fwb-online/qexpand/expand"
	"github.com/fwb-online/qexpand/internal"
	"github.com/fwb-online/qexpand/internal/server"
)

var (
	serveAddr  string
	serveWatch bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve query expansion over HTTP",
	Run: func(cmd *cobra.Command, args []string) {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		path := configPath()
		config, err := loadConfig(path)
		if err != nil {
			logger.Fatal("Failed to load configuration", zap.Error(err))
		}

		source, cleanup, err := engineSource(path, config)
		if err != nil {
			logger.Fatal("Failed to initialize engine", zap.Error(err))
		}
		defer cleanup()

		addr := config.Server.Addr
		if serveAddr != "" {
			addr = serveAddr
		}
		srv := server.New(source, server.Options{
			DefType: config.ComplexPhraseDefType,
			Timeout: config.Server.RequestTimeout,
		}, logger)
		if err := srv.Run(ctx, addr); err != nil {
			logger.Fatal("Server failed", zap.Error(err))
		}
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default from configuration)")
	serveCmd.Flags().BoolVar(&serveWatch, "watch", true, "Reload the engine when the configuration file changes")
}

// engineSource returns a reloading source when a configuration file is
// watched, and a static one otherwise.
func engineSource(path string, config expand.Config) (server.Source, func(), error) {
	if path == "" || !serveWatch {
		engine, err := expand.NewFromConfig(config, logger)
		if err != nil {
			return nil, nil, err
		}
		return server.NewStatic(engine), func() {}, nil
	}

	load := func(p string) (*internal.Engine, error) {
		c, err := loadConfig(p)
		if err != nil {
			return nil, err
		}
		return expand.NewFromConfig(c, logger)
	}
	w, err := internal.NewWatcher(path, load, logger)
	if err != nil {
		return nil, nil, err
	}
	if err := w.StartWatching(); err != nil {
		return nil, nil, err
	}
	return w, func() { _ = w.StopWatching() }, nil
}
