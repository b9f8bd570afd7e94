package expand

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/fwb-online/qexpand/internal"
	"github.com/fwb-online/qexpand/internal/render"
)

// DefaultConfigFile is the file `qexpand init` writes and `qexpand` reads
// when no --config flag is given.
const DefaultConfigFile = ".qexpand.yaml"

// EnvPrefix prefixes the environment variables overriding configuration keys,
// e.g. QEXPAND_QUERY_FIELDS or QEXPAND_FIELDS_ARTICLE.
const EnvPrefix = "QEXPAND"

// Config is the content of a qexpand configuration file.
type Config struct {
	Name string `yaml:"name" mapstructure:"name"`

	QueryFields     string `yaml:"query_fields" mapstructure:"query_fields"`
	HighlightFields string `yaml:"highlight_fields" mapstructure:"highlight_fields"`

	Fields          FieldsConfig `yaml:"fields" mapstructure:"fields"`
	HighlightSuffix string       `yaml:"highlight_suffix" mapstructure:"highlight_suffix"`
	ExactSuffix     string       `yaml:"exact_suffix" mapstructure:"exact_suffix"`
	ExactMarker     string       `yaml:"exact_marker" mapstructure:"exact_marker"`

	MaxTokenLength       int      `yaml:"max_token_length" mapstructure:"max_token_length"`
	HiddenFacetPrefixes  []string `yaml:"hidden_facet_prefixes" mapstructure:"hidden_facet_prefixes"`
	NegationExclusion    string   `yaml:"negation_exclusion" mapstructure:"negation_exclusion"`
	ComplexPhraseDefType string   `yaml:"complex_phrase_def_type" mapstructure:"complex_phrase_def_type"`

	Cache  CacheConfig  `yaml:"cache" mapstructure:"cache"`
	Server ServerConfig `yaml:"server" mapstructure:"server"`
}

// FieldsConfig names the fields searched by queries without a field prefix.
type FieldsConfig struct {
	Article  string `yaml:"article" mapstructure:"article"`
	Citation string `yaml:"citation" mapstructure:"citation"`
	Spelling string `yaml:"spelling" mapstructure:"spelling"`
}

// CacheConfig bounds the expansion result cache. A size of 0 disables it.
type CacheConfig struct {
	Size   int           `yaml:"size" mapstructure:"size"`
	MaxAge time.Duration `yaml:"max_age" mapstructure:"max_age"`
}

type ServerConfig struct {
	Addr           string        `yaml:"addr" mapstructure:"addr"`
	RequestTimeout time.Duration `yaml:"request_timeout" mapstructure:"request_timeout"`
}

// DefaultConfig returns the configuration of the dictionary deployment.
func DefaultConfig() Config {
	opts := internal.DefaultOptions()
	return Config{
		Name:            "qexpand",
		QueryFields:     "lemma^1000 def^70 zitat^50",
		HighlightFields: "lemma,def,zitat",
		Fields: FieldsConfig{
			Article:  opts.Render.Defaults.Article,
			Citation: opts.Render.Defaults.Citation,
			Spelling: opts.Render.Defaults.Spelling,
		},
		HighlightSuffix:      opts.Render.HighlightSuffix,
		ExactSuffix:          opts.Render.ExactSuffix,
		ExactMarker:          opts.ExactMarker,
		MaxTokenLength:       opts.MaxTokenLength,
		HiddenFacetPrefixes:  opts.HiddenFacetPrefixes,
		NegationExclusion:    opts.NegationExclusion,
		ComplexPhraseDefType: "lucene",
		Cache: CacheConfig{
			Size:   1024,
			MaxAge: 10 * time.Minute,
		},
		Server: ServerConfig{
			Addr:           ":8080",
			RequestTimeout: 5 * time.Second,
		},
	}
}

// EngineOptions converts the configuration into engine options.
func (c Config) EngineOptions() internal.Options {
	return internal.Options{
		QueryFields:     c.QueryFields,
		HighlightFields: c.HighlightFields,
		Render: render.Options{
			Defaults: render.Defaults{
				Article:  c.Fields.Article,
				Citation: c.Fields.Citation,
				Spelling: c.Fields.Spelling,
			},
			HighlightSuffix: c.HighlightSuffix,
			ExactSuffix:     c.ExactSuffix,
		},
		MaxTokenLength:      c.MaxTokenLength,
		ExactMarker:         c.ExactMarker,
		HiddenFacetPrefixes: c.HiddenFacetPrefixes,
		NegationExclusion:   c.NegationExclusion,
		CacheSize:           c.Cache.Size,
		CacheMaxAge:         c.Cache.MaxAge,
	}
}

// LoadConfig reads the configuration at path on top of the defaults and applies
// QEXPAND_* environment overrides. An empty path uses defaults and environment only.
func LoadConfig(path string) (Config, error) {
	v := viper.New()
	setDefaults(v, DefaultConfig())

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("error reading configuration file %s: %w", path, err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return Config{}, fmt.Errorf("error decoding configuration: %w", err)
	}
	return config, nil
}

func setDefaults(v *viper.Viper, c Config) {
	v.SetDefault("name", c.Name)
	v.SetDefault("query_fields", c.QueryFields)
	v.SetDefault("highlight_fields", c.HighlightFields)
	v.SetDefault("fields.article", c.Fields.Article)
	v.SetDefault("fields.citation", c.Fields.Citation)
	v.SetDefault("fields.spelling", c.Fields.Spelling)
	v.SetDefault("highlight_suffix", c.HighlightSuffix)
	v.SetDefault("exact_suffix", c.ExactSuffix)
	v.SetDefault("exact_marker", c.ExactMarker)
	v.SetDefault("max_token_length", c.MaxTokenLength)
	v.SetDefault("hidden_facet_prefixes", c.HiddenFacetPrefixes)
	v.SetDefault("negation_exclusion", c.NegationExclusion)
	v.SetDefault("complex_phrase_def_type", c.ComplexPhraseDefType)
	v.SetDefault("cache.size", c.Cache.Size)
	v.SetDefault("cache.max_age", c.Cache.MaxAge)
	v.SetDefault("server.addr", c.Server.Addr)
	v.SetDefault("server.request_timeout", c.Server.RequestTimeout)
}

// WriteConfig writes c as YAML to path. An existing file is not overwritten.
func WriteConfig(path string, c Config) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("configuration file %s already exists", path)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("error marshaling configuration: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("error writing configuration file: %w", err)
	}
	return nil
}
