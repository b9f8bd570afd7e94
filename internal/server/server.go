// Package server exposes query expansion over HTTP for search frontends.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/fwb-online/qexpand/internal"
	tt "github.com/fwb-online/qexpand/internal/types"
)

// Source provides the engine serving the next request.
type Source interface {
	Engine() *internal.Engine
}

// Static serves every request with the same engine.
type Static struct {
	engine *internal.Engine
}

func NewStatic(engine *internal.Engine) Static { return Static{engine: engine} }

func (s Static) Engine() *internal.Engine { return s.engine }

type Options struct {
	// DefType is reported with every expansion that needs the complex phrase parser.
	DefType string
	Timeout time.Duration
}

type Server struct {
	source Source
	opts   Options
	logger *zap.Logger
	router *gin.Engine
}

// Response is the body of a successful /expand request.
type Response struct {
	tt.Bundle
	DefType string `json:"defType,omitempty"`
}

// ErrorResponse is the body of a rejected /expand request.
type ErrorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
	Token string `json:"token,omitempty"`
	Pos   *int   `json:"pos,omitempty"`
}

func New(source Source, opts Options, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	s := &Server{source: source, opts: opts, logger: logger, router: router}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/expand", s.handleExpand)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	return s
}

func (s *Server) Handler() http.Handler { return s.router }

// handleExpand serves GET /expand?q=...[&qf=...&hl.fl=...]. Without qf the
// configured fields are used.
func (s *Server) handleExpand(c *gin.Context) {
	query, ok := c.GetQuery("q")
	if !ok {
		ExpansionsTotal.WithLabelValues(outcomeInvalid).Inc()
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "missing query parameter q"})
		return
	}

	engine := s.source.Engine()
	start := time.Now()

	var (
		bundle tt.Bundle
		err    error
	)
	if qf, ok := c.GetQuery("qf"); ok {
		bundle, err = engine.ExpandWith(query, qf, c.Query("hl.fl"))
	} else {
		bundle, err = engine.Expand(query)
	}
	ExpansionDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		var qe *tt.QueryError
		if !errors.As(err, &qe) {
			ExpansionsTotal.WithLabelValues(outcomeInvalid).Inc()
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
			return
		}
		ExpansionsTotal.WithLabelValues(outcomeRejected).Inc()
		resp := ErrorResponse{Error: qe.Error(), Kind: qe.Kind.String(), Token: qe.Token}
		if qe.Pos >= 0 {
			pos := qe.Pos
			resp.Pos = &pos
		}
		c.JSON(http.StatusBadRequest, resp)
		return
	}

	ExpansionsTotal.WithLabelValues(outcomeOK).Inc()
	resp := Response{Bundle: bundle}
	if bundle.ParserMode == tt.ParserComplexPhrase {
		resp.DefType = s.opts.DefType
	}
	c.JSON(http.StatusOK, resp)
}

// Run serves on addr until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: s.opts.Timeout,
		WriteTimeout:      s.opts.Timeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s.logger.Info("shutting down")
	return srv.Shutdown(shutdownCtx)
}
