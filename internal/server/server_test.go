package server

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fwb-online/qexpand/internal"
	tt "github.com/fwb-online/qexpand/internal/types"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	opts := internal.DefaultOptions()
	opts.QueryFields = "lemma^1000 def^70 zitat^50"
	opts.HighlightFields = "lemma,zitat"
	engine, err := internal.NewEngine(opts, nil)
	require.NoError(t, err)
	return New(NewStatic(engine), Options{DefType: "lucene", Timeout: time.Second}, nil)
}

func get(t *testing.T, s *Server, path string, params url.Values) *httptest.ResponseRecorder {
	t.Helper()
	target := path
	if params != nil {
		target += "?" + params.Encode()
	}
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	t.Parallel()
	rec := get(t, newTestServer(t), "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestExpand(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)

	rec := get(t, s, "/expand", url.Values{"q": {"zitat:imbis"}})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "zitat:(imbis imbis* *imbis*)^50", resp.MainQuery)
	assert.Equal(t, "zitat_text:*imbis*", resp.HighlightQuery)
	assert.Equal(t, []string{"zitat:*imbis*"}, resp.FacetQueries)
	assert.Empty(t, resp.DefType)
	assert.Contains(t, rec.Body.String(), `"parser_mode":"default"`)
}

func TestExpandComplexPhrase(t *testing.T) {
	t.Parallel()

	rec := get(t, newTestServer(t), "/expand", url.Values{"q": {`"gut* tag"`}})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"parser_mode":"complexPhrase"`)
	assert.Contains(t, rec.Body.String(), `"defType":"lucene"`)
}

func TestExpandWithRequestFields(t *testing.T) {
	t.Parallel()

	rec := get(t, newTestServer(t), "/expand", url.Values{
		"q":     {"titel:^abc$"},
		"qf":    {"titel^5"},
		"hl.fl": {"titel"},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "titel:abc^5", resp.MainQuery)
	assert.Equal(t, "titel", resp.HighlightFields)
}

func TestExpandRejected(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)
	before := testutil.ToFloat64(ExpansionsTotal.WithLabelValues(outcomeRejected))

	rec := get(t, s, "/expand", url.Values{"q": {"a lemma2:imbis"}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"query invalid","kind":"unknown field","token":"lemma2:imbis","pos":2}`, rec.Body.String())

	rec = get(t, s, "/expand", url.Values{"q": {"!!!"}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"query invalid","kind":"empty expansion"}`, rec.Body.String())

	assert.GreaterOrEqual(t, testutil.ToFloat64(ExpansionsTotal.WithLabelValues(outcomeRejected))-before, 2.0)
}

func TestExpandBadRequest(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)

	rec := get(t, s, "/expand", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "missing query parameter q")

	rec = get(t, s, "/expand", url.Values{"q": {"a"}, "qf": {"^5"}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "error parsing query fields")
}

func TestMetrics(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)

	get(t, s, "/expand", url.Values{"q": {"imbis"}})
	rec := get(t, s, "/metrics", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "qexpand_expansions_total")
	assert.Contains(t, rec.Body.String(), "qexpand_expansion_duration_seconds")
}

func TestRunShutsDown(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)

	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	require.NoError(t, l.Close())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx, addr) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + addr + "/health")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestStatic(t *testing.T) {
	t.Parallel()
	engine, err := internal.NewEngine(internal.DefaultOptions(), nil)
	require.NoError(t, err)
	assert.Same(t, engine, NewStatic(engine).Engine())

	_, err = engine.Expand("lemma:a")
	assert.ErrorIs(t, err, tt.ErrUnknownField)
	assert.True(t, strings.HasPrefix(err.Error(), "query"))
}
