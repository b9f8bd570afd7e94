package render

import (
	"strings"

	tt "github.com/fwb-online/qexpand/internal/types"
)

// Defaults name the fields searched by tokens without a field prefix.
type Defaults struct {
	Article  string
	Citation string
	Spelling string // alternate spellings, only searched by plain terms
}

// Options holds the naming conventions of the index.
type Options struct {
	Defaults        Defaults
	HighlightSuffix string
	ExactSuffix     string
}

// DefaultOptions returns the naming conventions of the dictionary index.
func DefaultOptions() Options {
	return Options{
		Defaults: Defaults{
			Article:  "artikel",
			Citation: "zitat",
			Spelling: "sufo",
		},
		HighlightSuffix: "_text",
		ExactSuffix:     "_exakt",
	}
}

// Config is the immutable rendering configuration of one expansion.
// Exact mode is a derived value, see WithExact.
type Config struct {
	fields    tt.FieldSpec
	highlight []string
	opts      Options
	exact     bool
}

// NewConfig creates a configuration for the given query fields and the
// comma separated highlight field list (which may be empty).
func NewConfig(fields tt.FieldSpec, highlight string, opts Options) Config {
	var hl []string
	for _, f := range strings.Split(highlight, ",") {
		if f = strings.TrimSpace(f); f != "" {
			hl = append(hl, f)
		}
	}
	return Config{
		fields:    append(tt.FieldSpec(nil), fields...),
		highlight: hl,
		opts:      opts,
	}
}

// WithExact returns a copy of c in exact mode. c itself is not changed.
func (c Config) WithExact() Config {
	c.exact = true
	return c
}

func (c Config) Exact() bool { return c.exact }

// Fields returns the base (unsuffixed) query fields.
func (c Config) Fields() tt.FieldSpec { return c.fields }

// QueryFields returns the field spec the backend has to search with.
func (c Config) QueryFields() string {
	return c.fields.WithSuffix(c.exactSuffix())
}

// HighlightFields returns the comma separated highlight fields the backend has to use.
func (c Config) HighlightFields() string {
	names := make([]string, len(c.highlight))
	for i, f := range c.highlight {
		names[i] = f + c.exactSuffix()
	}
	return strings.Join(names, ",")
}

func (c Config) exactSuffix() string {
	if c.exact {
		return c.opts.ExactSuffix
	}
	return ""
}

// field returns the indexed name of a logical field.
func (c Config) field(name string) string {
	return name + c.exactSuffix()
}

// highlightField returns the name of the stored text field of a logical field.
func (c Config) highlightField(name string) string {
	return name + c.opts.HighlightSuffix + c.exactSuffix()
}
