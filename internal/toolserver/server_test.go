package toolserver

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askdb-labs/askdb/internal/testutil"
	"github.com/askdb-labs/askdb/internal/tools"
	"github.com/askdb-labs/askdb/pkg/adapters/sqlite"
	"github.com/askdb-labs/askdb/pkg/core"
)

type stubTranslator struct {
	sql string
	err error
}

func (s *stubTranslator) Translate(_ context.Context, question, _ string) (core.CandidateQuery, error) {
	if s.err != nil {
		return core.CandidateQuery{}, s.err
	}
	return core.CandidateQuery{SQL: s.sql, Question: question}, nil
}

func newTestServer(t *testing.T, translator *stubTranslator) *httptest.Server {
	t.Helper()
	ctx := context.Background()

	ad := sqlite.New(nil)
	require.NoError(t, ad.Connect(ctx, core.ConnectionConfig{Type: "sqlite", Path: ":memory:"}))
	t.Cleanup(func() { _ = ad.Close() })

	require.NoError(t, ad.Exec(ctx, `CREATE TABLE customers (id INTEGER PRIMARY KEY, name TEXT, country TEXT)`))
	require.NoError(t, ad.Exec(ctx, `INSERT INTO customers VALUES (1, 'Alice Johnson', 'USA'), (2, 'Bob Smith', 'USA'), (3, 'Hiroshi Tanaka', 'Japan')`))

	s := NewServer(Config{
		Addr:    "unused",
		Toolkit: newToolkit(t, ad, translator),
		Logger:  testutil.NewTestLogger(t),
	})

	ts := httptest.NewServer(s.routes())
	t.Cleanup(ts.Close)
	return ts
}

func newToolkit(t *testing.T, ad *sqlite.Adapter, tr *stubTranslator) *tools.Toolkit {
	t.Helper()
	if tr == nil {
		return tools.New(ad, nil, testutil.NewTestLogger(t))
	}
	return tools.New(ad, tr, testutil.NewTestLogger(t))
}

func postJSON(t *testing.T, url, body string) (*http.Response, []byte) {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	return resp, data
}

func TestServer_Health(t *testing.T) {
	ts := newTestServer(t, nil)

	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "ok", body["status"])
}

func TestServer_RequestID(t *testing.T) {
	ts := newTestServer(t, nil)

	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())

	id := resp.Header.Get("X-Request-ID")
	require.NotEmpty(t, id)
	_, err = uuid.Parse(id)
	assert.NoError(t, err)
}

func TestServer_ToolRoutesArePostOnly(t *testing.T) {
	ts := newTestServer(t, nil)

	resp, err := http.Get(ts.URL + "/v1/tools/get_schema")
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestServer_GetSchema(t *testing.T) {
	ts := newTestServer(t, nil)

	resp, data := postJSON(t, ts.URL+"/v1/tools/get_schema", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body schemaResponse
	require.NoError(t, json.Unmarshal(data, &body))
	require.Len(t, body.Tables, 1)
	assert.Equal(t, "customers", body.Tables[0].Name)
	assert.Len(t, body.Tables[0].Columns, 3)
}

func TestServer_PreviewQuery(t *testing.T) {
	tr := &stubTranslator{sql: "SELECT name FROM customers WHERE country = 'USA'"}
	ts := newTestServer(t, tr)

	resp, data := postJSON(t, ts.URL+"/v1/tools/preview_query", `{"question": "who are the US customers?"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body previewResponse
	require.NoError(t, json.Unmarshal(data, &body))
	assert.True(t, body.Allowed)
	assert.Equal(t, "SELECT name FROM customers WHERE country = 'USA'", body.SQL)
	assert.Equal(t, "who are the US customers?", body.Question)
	assert.Empty(t, body.Reason)
}

func TestServer_PreviewQuery_Blocked(t *testing.T) {
	tr := &stubTranslator{sql: "DROP TABLE customers"}
	ts := newTestServer(t, tr)

	resp, data := postJSON(t, ts.URL+"/v1/tools/preview_query", `{"question": "remove the customers table"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body previewResponse
	require.NoError(t, json.Unmarshal(data, &body))
	assert.False(t, body.Allowed)
	assert.Contains(t, body.Reason, "DROP")
	assert.Equal(t, "DROP TABLE customers", body.SQL)
}

func TestServer_PreviewQuery_MissingQuestion(t *testing.T) {
	ts := newTestServer(t, &stubTranslator{sql: "SELECT 1"})

	resp, data := postJSON(t, ts.URL+"/v1/tools/preview_query", `{}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var body errorResponse
	require.NoError(t, json.Unmarshal(data, &body))
	assert.Contains(t, body.Error, "question is required")
}

func TestServer_ExecuteQuery(t *testing.T) {
	ts := newTestServer(t, nil)

	resp, data := postJSON(t, ts.URL+"/v1/tools/execute_query", `{"sql": "SELECT name FROM customers ORDER BY id"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	assert.Contains(t, string(data), `"row_count":3`)
	assert.Contains(t, string(data), `"duration_ms"`)

	var body executeResponse
	require.NoError(t, json.Unmarshal(data, &body))
	assert.False(t, body.Blocked)
	assert.Empty(t, body.Error)
	assert.Equal(t, []string{"name"}, body.Columns)
	require.Equal(t, 3, body.RowCount)
	assert.Equal(t, "Alice Johnson", body.Rows[0][0])
}

func TestServer_ExecuteQuery_Blocked(t *testing.T) {
	ts := newTestServer(t, nil)

	resp, data := postJSON(t, ts.URL+"/v1/tools/execute_query", `{"sql": "DELETE FROM customers"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body executeResponse
	require.NoError(t, json.Unmarshal(data, &body))
	assert.True(t, body.Blocked)
	assert.Contains(t, body.Reason, "DELETE")
	assert.Zero(t, body.RowCount)

	resp, data = postJSON(t, ts.URL+"/v1/tools/execute_query", `{"sql": "SELECT COUNT(*) FROM customers"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal(data, &body))
	assert.EqualValues(t, 3, body.Rows[0][0])
}

func TestServer_ExecuteQuery_BackendError(t *testing.T) {
	ts := newTestServer(t, nil)

	resp, data := postJSON(t, ts.URL+"/v1/tools/execute_query", `{"sql": "SELECT * FROM invoices"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body executeResponse
	require.NoError(t, json.Unmarshal(data, &body))
	assert.False(t, body.Blocked)
	assert.Contains(t, body.Error, "invoices")
	assert.Empty(t, body.Rows)
}

func TestServer_ExecuteQuery_MalformedBody(t *testing.T) {
	ts := newTestServer(t, nil)

	tests := []struct {
		name string
		body string
		want string
	}{
		{"invalid json", `{not json`, "parse request body"},
		{"missing sql", `{"question": "anything"}`, "sql is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, data := postJSON(t, ts.URL+"/v1/tools/execute_query", tt.body)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

			var body errorResponse
			require.NoError(t, json.Unmarshal(data, &body))
			assert.Contains(t, body.Error, tt.want)
		})
	}
}

func TestServer_ServeShutsDownOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ad := sqlite.New(nil)
	require.NoError(t, ad.Connect(ctx, core.ConnectionConfig{Type: "sqlite", Path: ":memory:"}))
	t.Cleanup(func() { _ = ad.Close() })

	s := NewServer(Config{
		Addr:    "127.0.0.1:0",
		Toolkit: tools.New(ad, nil, testutil.NewTestLogger(t)),
		Logger:  testutil.NewTestLogger(t),
	})

	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("server did not shut down after cancel")
	}
}
