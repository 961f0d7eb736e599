package web

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/huangsam/reviewdash/internal/client"
	"github.com/huangsam/reviewdash/internal/contract"
	"github.com/huangsam/reviewdash/internal/history"
	"github.com/huangsam/reviewdash/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const (
	logsBody = `{"data":[
		{"project_name":"api","author":"alice","source_branch":"feat","target_branch":"main","score":91.24,"url":"https://git.example.com/1"},
		{"project_name":"web","author":"<script>alert(1)</script>","source_branch":"fix","score":50,"url":"javascript:alert(1)"}
	],"total":2,"average_score":70.62}`
	optionsBody = `{"authors":["carol","alice"],"project_names":["web","api"]}`
	statsBody   = `{"project_counts":[{"name":"api","count":3}],"project_scores":[{"name":"api","average_score":88}],
		"author_counts":[{"name":"<b>eve</b>","count":1}],"author_scores":[],"author_code_lines":[]}`
)

var fixedNow = time.Date(2024, 5, 8, 12, 0, 0, 0, time.UTC)

// fakeBackend serves canned bodies per path and records the last query.
type fakeBackend struct {
	mu      sync.Mutex
	bodies  map[string]string
	queries map[string]url.Values
}

func newFakeBackend(t *testing.T) (*fakeBackend, string) {
	t.Helper()
	b := &fakeBackend{
		bodies: map[string]string{
			client.LogsPath:          logsBody,
			client.FilterOptionsPath: optionsBody,
			client.StatsPath:         statsBody,
		},
		queries: make(map[string]url.Values),
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		b.queries[r.URL.Path] = r.URL.Query()
		body, ok := b.bodies[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return b, srv.URL
}

func (b *fakeBackend) set(path, body string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.bodies[path] = body
}

func (b *fakeBackend) query(path string) url.Values {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.queries[path]
}

func newTestServer(t *testing.T, opts ...Option) (*Server, *fakeBackend) {
	t.Helper()
	backend, backendURL := newFakeBackend(t)
	cfg := &contract.Config{
		Kind:     schema.MergeRequestKind,
		Range:    schema.LastDays(schema.DateOf(fixedNow), contract.DefaultLookbackDays),
		Location: time.UTC,
	}
	opts = append([]Option{WithClock(func() time.Time { return fixedNow })}, opts...)
	s, err := NewServer(cfg, client.New(backendURL, time.Second), contract.NewDiscardLogger(), opts...)
	require.NoError(t, err)
	return s, backend
}

func get(t *testing.T, s *Server, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestHealth(t *testing.T) {
	s, _ := newTestServer(t)
	rec := get(t, s, "/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestTablePage(t *testing.T) {
	s, backend := newTestServer(t)
	rec := get(t, s, "/?authors=alice&authors=carol")
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, "&lt;script&gt;alert(1)&lt;/script&gt;")
	assert.NotContains(t, body, "<script>alert(1)</script>")
	assert.Contains(t, body, `<a href="https://git.example.com/1"`)
	assert.NotContains(t, body, `href="javascript:`)
	assert.Contains(t, body, "Total: 2 records, average score: 70.62")
	assert.Contains(t, body, "Last update: 2024-05-08 12:00:00")
	assert.Contains(t, body, `<option value="carol" selected>carol</option>`)
	assert.Contains(t, body, `<option value="alice" selected>alice</option>`)

	assert.Equal(t, url.Values{"type": {"mr"}}, backend.query(client.FilterOptionsPath))
	logsQuery := backend.query(client.LogsPath)
	assert.Equal(t, []string{"alice", "carol"}, logsQuery["authors"])
	assert.Equal(t, "1714521600", logsQuery.Get("updated_at_gte"))
	assert.Equal(t, "1715212799", logsQuery.Get("updated_at_lte"))
}

func TestTablePageFailure(t *testing.T) {
	s, backend := newTestServer(t)
	backend.set(client.LogsPath, `{"error":"db <down>"}`)

	rec := get(t, s, "/?type=push")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `<td colspan="7">load failed: db &lt;down&gt;</td>`)
	assert.NotContains(t, rec.Body.String(), "Total:")
}

func TestTablePageClearsBound(t *testing.T) {
	s, backend := newTestServer(t)
	rec := get(t, s, "/?start=&end=2024-05-08")
	require.Equal(t, http.StatusOK, rec.Code)

	q := backend.query(client.LogsPath)
	assert.False(t, q.Has("updated_at_gte"))
	assert.Equal(t, "1715212799", q.Get("updated_at_lte"))
}

func TestTablePageBadFilter(t *testing.T) {
	s, _ := newTestServer(t)
	rec := get(t, s, "/?start=yesterday")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLogsAPI(t *testing.T) {
	s, backend := newTestServer(t)
	rec := get(t, s, "/api/view/logs?type=push&projects=api")
	require.Equal(t, http.StatusOK, rec.Code)

	var view schema.TableView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	assert.Equal(t, schema.PushKind, view.Kind)
	assert.Len(t, view.Columns, 7)
	require.Len(t, view.Rows, 2)
	assert.Nil(t, view.Rows[0].ActionLink)
	assert.Equal(t, "&lt;script&gt;alert(1)&lt;/script&gt;", view.Rows[1].Author)
	assert.Equal(t, []string{"api"}, backend.query(client.LogsPath)["project_names"])
}

func TestLogsAPIErrors(t *testing.T) {
	t.Run("bad type", func(t *testing.T) {
		s, _ := newTestServer(t)
		rec := get(t, s, "/api/view/logs?type=issue")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), `"code":"BAD_REQUEST"`)
	})

	t.Run("backend failure", func(t *testing.T) {
		s, backend := newTestServer(t)
		backend.set(client.LogsPath, `{"error":"db down"}`)
		rec := get(t, s, "/api/view/logs")
		assert.Equal(t, http.StatusBadGateway, rec.Code)
		assert.JSONEq(t, `{"error":{"code":"LOAD_FAILED","message":"db down"}}`, rec.Body.String())
	})
}

func TestStatsAPI(t *testing.T) {
	s, backend := newTestServer(t)
	rec := get(t, s, "/api/view/stats?authors=alice&authors=bob&projects=api")
	require.Equal(t, http.StatusOK, rec.Code)

	var series []schema.ChartSeries
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &series))
	require.Len(t, series, len(schema.AllStatKinds))
	assert.Equal(t, []string{"&lt;b&gt;eve&lt;/b&gt;"}, series[2].Labels)

	q := backend.query(client.StatsPath)
	assert.Equal(t, []string{"alice"}, q["authors"])
	assert.Equal(t, []string{"api"}, q["project_names"])
}

func TestFilterOptionsAPI(t *testing.T) {
	s, backend := newTestServer(t)

	// Values observed in the logs stay in the vocabulary.
	require.Equal(t, http.StatusOK, get(t, s, "/api/view/logs").Code)
	backend.set(client.FilterOptionsPath, `{"authors":["dave"],"project_names":[]}`)

	rec := get(t, s, "/api/view/filter-options")
	require.Equal(t, http.StatusOK, rec.Code)
	var opts schema.FilterOptions
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &opts))
	assert.Equal(t, []string{"&lt;script&gt;alert(1)&lt;/script&gt;", "alice", "carol", "dave"}, opts.Authors)
	assert.Equal(t, []string{"api", "web"}, opts.ProjectNames)

	// Switching the kind starts a new vocabulary.
	rec = get(t, s, "/api/view/filter-options?type=push")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &opts))
	assert.Equal(t, []string{"dave"}, opts.Authors)
	assert.Empty(t, opts.ProjectNames)
}

func TestChartsPage(t *testing.T) {
	s, _ := newTestServer(t)
	rec := get(t, s, "/charts")
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, "Reviews per Project")
	assert.Contains(t, body, "Average Score per Author")
	assert.NotContains(t, body, "Code Lines per Author")
	assert.Contains(t, body, "&lt;b&gt;eve&lt;/b&gt;")
	assert.Contains(t, body, "band-high")
	assert.Contains(t, body, "width: 100.0%")
}

func TestChartsPageFailureKeepsCharts(t *testing.T) {
	s, backend := newTestServer(t)
	require.Equal(t, http.StatusOK, get(t, s, "/charts").Code)

	backend.set(client.StatsPath, `{"error":"stats down"}`)
	rec := get(t, s, "/charts")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "load failed: stats down")
	assert.Contains(t, rec.Body.String(), "Reviews per Project")
}

func TestServerRecordsHistory(t *testing.T) {
	store := &history.MockStore{}
	store.On("BeginLoad", mock.Anything).Return(nil)
	store.On("EndLoad", mock.Anything, mock.Anything).Return(nil)

	s, _ := newTestServer(t, WithHistory(store))
	require.Equal(t, http.StatusOK, get(t, s, "/api/view/logs").Code)

	store.AssertNumberOfCalls(t, "BeginLoad", 2)
	store.AssertNumberOfCalls(t, "EndLoad", 2)
}

func TestWebSocketLastUpdate(t *testing.T) {
	s, _ := newTestServer(t)
	s.cfg.RefreshInterval = 20 * time.Millisecond
	require.Equal(t, http.StatusOK, get(t, s, "/api/view/logs").Code)

	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	defer func() { _ = conn.Close() }()

	for range 2 {
		var ev lastUpdateEvent
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
		require.NoError(t, conn.ReadJSON(&ev))
		assert.Equal(t, "last_update", ev.Type)
		assert.True(t, ev.Timestamp.Equal(fixedNow))
		assert.Equal(t, "2024-05-08 12:00:00", ev.LastLoad)
	}
}

func dialFeed(t *testing.T, s *Server, header http.Header) (*websocket.Conn, *http.Response, error) {
	t.Helper()
	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	return websocket.DefaultDialer.Dial(wsURL, header)
}

func TestWebSocketRejectsForeignOrigin(t *testing.T) {
	s, _ := newTestServer(t)

	conn, resp, err := dialFeed(t, s, http.Header{"Origin": {"http://evil.example.com"}})
	require.ErrorIs(t, err, websocket.ErrBadHandshake)
	assert.Nil(t, conn)
	require.NotNil(t, resp)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestWebSocketClosedOnShutdown(t *testing.T) {
	s, _ := newTestServer(t)
	s.cfg.RefreshInterval = time.Hour

	conn, resp, err := dialFeed(t, s, nil)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	defer func() { _ = conn.Close() }()

	var ev lastUpdateEvent
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	require.NoError(t, conn.ReadJSON(&ev))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, s.Shutdown(ctx))

	_, _, err = conn.ReadMessage()
	require.Error(t, err)
	assert.True(t, websocket.IsCloseError(err, websocket.CloseGoingAway), "got %v", err)
}
