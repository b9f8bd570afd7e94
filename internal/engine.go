package internal

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/fwb-online/qexpand/internal/facet"
	"github.com/fwb-online/qexpand/internal/grammar"
	"github.com/fwb-online/qexpand/internal/lexer"
	"github.com/fwb-online/qexpand/internal/render"
	tt "github.com/fwb-online/qexpand/internal/types"
)

// Options configures an Engine.
type Options struct {
	QueryFields     string // "field^weight ..."
	HighlightFields string // comma separated, may be empty

	Render         render.Options
	MaxTokenLength int

	// ExactMarker switches to exact mode when it occurs in a query. It is removed
	// before tokenizing.
	ExactMarker string
	// HiddenFacetPrefixes name internal fields that never become facet queries.
	HiddenFacetPrefixes []string
	// NegationExclusion is appended to the main query of every query using NOT.
	NegationExclusion string

	// CacheSize bounds the number of remembered results. Zero disables caching.
	CacheSize   int
	CacheMaxAge time.Duration
}

// DefaultOptions returns the settings of the dictionary deployment.
func DefaultOptions() Options {
	return Options{
		Render:              render.DefaultOptions(),
		MaxTokenLength:      lexer.DefaultMaxTokenLength,
		ExactMarker:         "EXAKT",
		HiddenFacetPrefixes: []string{"sufo"},
		NegationExclusion:   "-type:quelle",
	}
}

// Engine expands user queries. It can be shared between goroutines.
type Engine struct {
	opts   Options
	config render.Config
	cache  *Cache // nil when disabled
	logger *zap.Logger
}

// NewEngine creates an engine for the query and highlight fields in opts.
func NewEngine(opts Options, logger *zap.Logger) (*Engine, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	config, err := newConfig(opts.QueryFields, opts.HighlightFields, opts.Render)
	if err != nil {
		return nil, err
	}
	e := &Engine{opts: opts, config: config, logger: logger}
	if opts.CacheSize > 0 {
		e.cache = NewCache(opts.CacheSize, opts.CacheMaxAge)
	}
	return e, nil
}

func newConfig(queryFields, highlightFields string, opts render.Options) (render.Config, error) {
	fields, err := tt.ParseFieldSpec(queryFields)
	if err != nil {
		return render.Config{}, fmt.Errorf("error parsing query fields: %w", err)
	}
	return render.NewConfig(fields, highlightFields, opts), nil
}

// Expand expands query with the configured fields.
func (e *Engine) Expand(query string) (tt.Bundle, error) {
	return e.cached(cacheKey{query: query}, func() (tt.Bundle, error) {
		return e.expand(query, e.config)
	})
}

// ExpandWith expands query with fields given per request instead of the configured ones.
func (e *Engine) ExpandWith(query, queryFields, highlightFields string) (tt.Bundle, error) {
	config, err := newConfig(queryFields, highlightFields, e.opts.Render)
	if err != nil {
		return tt.Bundle{}, err
	}
	key := cacheKey{custom: true, query: query, queryFields: config.QueryFields(), highlightFields: config.HighlightFields()}
	return e.cached(key, func() (tt.Bundle, error) {
		return e.expand(query, config)
	})
}

// Cache returns the result cache, or nil when caching is disabled.
func (e *Engine) Cache() *Cache {
	return e.cache
}

func (e *Engine) cached(key cacheKey, expand func() (tt.Bundle, error)) (tt.Bundle, error) {
	if e.cache == nil {
		return expand()
	}
	if r, ok := e.cache.Get(key); ok {
		return r.bundle, r.err
	}
	bundle, err := expand()
	e.cache.Set(key, bundle, err)
	return bundle, err
}

func (e *Engine) expand(query string, config render.Config) (tt.Bundle, error) {
	if marker := e.opts.ExactMarker; marker != "" && strings.Contains(query, marker) {
		query = strings.ReplaceAll(query, marker, "")
		config = config.WithExact()
	}

	tokens, err := lexer.Tokenize(query, config.Fields(), lexer.Options{MaxTokenLength: e.opts.MaxTokenLength})
	if err != nil {
		return tt.Bundle{}, e.reject(query, err)
	}
	tokens, err = grammar.Normalize(tokens)
	if err != nil {
		return tt.Bundle{}, e.reject(query, err)
	}

	grouped := len(tokens) > 1
	mainParts := make([]string, 0, len(tokens))
	hlParts := make([]string, 0, len(tokens))
	facets := facet.NewMap()
	negated, complexPhrase := false, false

	for _, tok := range tokens {
		f := config.Render(tok, grouped)
		mainParts = append(mainParts, f.Main)
		hlParts = append(hlParts, f.Highlight)
		facets.Add(f.Facets...)

		switch tok.Kind {
		case tt.KindNot:
			negated = true
		case tt.KindComplexPhrase:
			complexPhrase = true
		}
	}

	mainQuery := joinClauses(mainParts)
	if mainQuery == "" {
		return tt.Bundle{}, e.reject(query, tt.NewQueryError(tt.EmptyExpansion, "", -1))
	}
	if negated && e.opts.NegationExclusion != "" {
		mainQuery += " " + e.opts.NegationExclusion
	}

	bundle := tt.Bundle{
		MainQuery:       mainQuery,
		HighlightQuery:  joinClauses(hlParts),
		QueryFields:     config.QueryFields(),
		HighlightFields: config.HighlightFields(),
		FacetQueries:    facets.Queries(len(tokens), e.opts.HiddenFacetPrefixes),
	}
	if complexPhrase {
		bundle.ParserMode = tt.ParserComplexPhrase
	}

	e.logger.Debug("query expanded",
		zap.String("query", query),
		zap.Int("tokens", len(tokens)),
		zap.Bool("exact", config.Exact()),
		zap.String("main", bundle.MainQuery),
	)
	return bundle, nil
}

func (e *Engine) reject(query string, err error) error {
	var qe *tt.QueryError
	if errors.As(err, &qe) {
		e.logger.Debug("query rejected", zap.String("query", query), zap.String("reason", qe.Detail()))
	}
	return err
}

// joinClauses joins non-empty fragments with single spaces, without spaces
// inside parentheses.
func joinClauses(parts []string) string {
	var b strings.Builder
	prev := ""
	for _, p := range parts {
		if p == "" {
			continue
		}
		if b.Len() > 0 && prev != "(" && p != ")" {
			b.WriteByte(' ')
		}
		b.WriteString(p)
		prev = p
	}
	return strings.TrimSpace(b.String())
}
