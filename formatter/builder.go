package formatter

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"text/template"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	tt "github.com/fwb-online/qexpand/internal/types"
)

var (
	errorStyle   = color.New(color.FgRed, color.Bold)
	kindStyle    = color.New(color.FgYellow, color.Bold)
	queryStyle   = color.New(color.FgCyan, color.Bold)
	lineStyle    = color.New(color.FgHiBlue, color.Bold)
	messageStyle = color.New(color.FgRed, color.Bold)
	labelStyle   = color.New(color.FgGreen, color.Bold)
	noStyle      = color.New(color.FgWhite)
)

const padding = "  "

/***** Error Formatter Builder *****/

type ErrorData struct {
	Message string
	Kind    string
	Query   string
	Token   string
	Pos     int
}

const errorTemplate = `{{header .Message -}}
{{location .Query .Pos -}}
{{snippet .Query -}}
{{underline .Query .Token .Pos -}}
{{note .Kind}}
`

// FormatError renders a rejected query with the offending token underlined.
// Errors other than *types.QueryError are rendered as a single line.
func FormatError(query string, err error) string {
	var qe *tt.QueryError
	if !errors.As(err, &qe) {
		return errorStyle.Sprint("error: ") + messageStyle.Sprintf("%s\n", err)
	}

	data := ErrorData{
		Message: qe.Error(),
		Kind:    qe.Kind.String(),
		Query:   query,
		Token:   qe.Token,
		Pos:     qe.Pos,
	}

	funcMap := template.FuncMap{
		"header":    header,
		"location":  location,
		"snippet":   snippet,
		"underline": underline,
		"note":      note,
	}
	tmpl := template.Must(template.New("error").Funcs(funcMap).Parse(errorTemplate))

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return fmt.Sprintf("Error formatting error: %v", err)
	}
	return buf.String()
}

// utils functions used in the text templates

func header(message string) string {
	return errorStyle.Sprint("error: ") + kindStyle.Sprintf("%s\n", message)
}

func location(query string, pos int) string {
	if pos < 0 {
		return ""
	}
	return lineStyle.Sprint(" --> ") + queryStyle.Sprintf("query:%d\n", visualColumn(query, pos)+1)
}

func snippet(query string) string {
	return lineStyle.Sprintf("%s|\n", padding) +
		lineStyle.Sprintf("%s| ", padding) + fmt.Sprintf("%s\n", query)
}

func underline(query, token string, pos int) string {
	if pos < 0 {
		return ""
	}
	width := runewidth.StringWidth(token)
	if width == 0 {
		width = 1
	}
	return lineStyle.Sprintf("%s| ", padding) +
		strings.Repeat(" ", visualColumn(query, pos)) +
		messageStyle.Sprintf("%s\n", strings.Repeat("~", width))
}

func note(kind string) string {
	return lineStyle.Sprintf("%s= ", padding) + noStyle.Sprint(kind)
}

// visualColumn returns the display width of the first pos runes of query.
func visualColumn(query string, pos int) int {
	runes := []rune(query)
	if pos > len(runes) {
		pos = len(runes)
	}
	return runewidth.StringWidth(string(runes[:pos]))
}
