package formatter

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/template"

	tt "github.com/fwb-online/qexpand/internal/types"
)

const bundleTemplate = `{{entry "q" .MainQuery -}}
{{entry "hl.q" .HighlightQuery -}}
{{entry "qf" .QueryFields -}}
{{entry "hl.fl" .HighlightFields -}}
{{entry "parser" .ParserMode.String -}}
{{facets .FacetQueries}}`

var bundleTmpl = template.Must(template.New("bundle").Funcs(template.FuncMap{
	"entry":  entry,
	"facets": facets,
}).Parse(bundleTemplate))

// FormatBundle renders an expansion result for terminals.
func FormatBundle(bundle tt.Bundle) string {
	var buf bytes.Buffer
	if err := bundleTmpl.Execute(&buf, bundle); err != nil {
		return fmt.Sprintf("Error formatting bundle: %v", err)
	}
	return buf.String()
}

func entry(label, value string) string {
	if value == "" {
		return ""
	}
	return labelStyle.Sprintf("%-7s", label+":") + " " + noStyle.Sprintf("%s\n", value)
}

func facets(queries []string) string {
	if len(queries) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(labelStyle.Sprint("facets:") + "\n")
	for _, q := range queries {
		b.WriteString(lineStyle.Sprint(padding+"- ") + noStyle.Sprintf("%s\n", q))
	}
	return b.String()
}

// WriteJSON writes v as indented JSON followed by a newline.
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("error encoding JSON: %w", err)
	}
	return nil
}
