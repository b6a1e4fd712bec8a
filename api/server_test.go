package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udyogmitra/mitra/internal/assistant"
	"github.com/udyogmitra/mitra/internal/catalog"
	"github.com/udyogmitra/mitra/internal/generate"
	"github.com/udyogmitra/mitra/internal/log"
	"github.com/udyogmitra/mitra/internal/team"
)

type mockRunner struct {
	chunks   []string
	turn     *assistant.Turn
	err      error
	feedback []assistant.Feedback

	gotQuery string
	gotUser  team.Member
}

func (m *mockRunner) Respond(ctx context.Context, user team.Member, query string, onChunk generate.ChunkFunc) (*assistant.Turn, error) {
	m.gotQuery = query
	m.gotUser = user
	if m.err != nil {
		return nil, m.err
	}
	for _, c := range m.chunks {
		if onChunk != nil {
			if err := onChunk(ctx, c); err != nil {
				return nil, err
			}
		}
	}
	return m.turn, nil
}

func (m *mockRunner) RecordFeedback(fb assistant.Feedback) {
	m.feedback = append(m.feedback, fb)
}

type mockQueries struct {
	queries []string
	err     error
}

func (m *mockQueries) RecentQueries(ctx context.Context, limit int) ([]string, error) {
	return m.queries, m.err
}

type mockPinger struct{ err error }

func (m *mockPinger) Ping(ctx context.Context) error { return m.err }

func testTurn() *assistant.Turn {
	return &assistant.Turn{
		ID:          uuid.New(),
		UserID:      "user-guest",
		Query:       "how to register gst",
		Response:    "Visit the GST portal and complete registration.",
		IsFAQResult: true,
	}
}

func newTestServer(t *testing.T, cfg *Config) *Server {
	t.Helper()
	if cfg.Catalog == nil {
		cfg.Catalog = catalog.NewCatalog(
			[]catalog.FAQ{{Question: "What is GST?", Solution: "A unified tax.", Domain: "Taxation"}},
			[]catalog.Video{{ID: "video-1", Title: "GST basics", Domain: "Taxation"}},
		)
	}
	if cfg.Logger == nil {
		cfg.Logger = log.NewNop()
	}
	srv, err := NewServer(cfg)
	require.NoError(t, err)
	return srv
}

func TestNewServer_Validation(t *testing.T) {
	_, err := NewServer(nil)
	assert.ErrorIs(t, err, ErrConfigNil)

	_, err = NewServer(&Config{Catalog: catalog.NewCatalog(nil, nil), Logger: log.NewNop()})
	assert.ErrorIs(t, err, ErrNoRunner)

	_, err = NewServer(&Config{Runner: &mockRunner{}, Logger: log.NewNop()})
	assert.ErrorIs(t, err, ErrNoCatalog)

	_, err = NewServer(&Config{Runner: &mockRunner{}, Catalog: catalog.NewCatalog(nil, nil)})
	assert.ErrorIs(t, err, ErrNilLogger)
}

func TestHandleChat(t *testing.T) {
	runner := &mockRunner{turn: testTurn()}
	srv := newTestServer(t, &Config{Runner: runner})

	req := httptest.NewRequest(http.MethodPost, "/api/chat",
		strings.NewReader(`{"query":"how to register gst"}`))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var turn assistant.Turn
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &turn))
	assert.Equal(t, "how to register gst", runner.gotQuery)
	assert.True(t, turn.IsFAQResult)
	assert.Equal(t, runner.turn.Response, turn.Response)

	// No user_id in the request means a guest turn.
	assert.Equal(t, team.RoleGuest, runner.gotUser.Role)
}

func TestHandleChat_NamedUser(t *testing.T) {
	runner := &mockRunner{turn: testTurn()}
	srv := newTestServer(t, &Config{Runner: runner})

	req := httptest.NewRequest(http.MethodPost, "/api/chat",
		strings.NewReader(`{"query":"hello","user_id":"user-7","user_name":"Asha"}`))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "user-7", runner.gotUser.ID)
	assert.Equal(t, "Asha", runner.gotUser.Name)
}

func TestHandleChat_EmptyQuery(t *testing.T) {
	runner := &mockRunner{err: assistant.ErrEmptyQuery}
	srv := newTestServer(t, &Config{Runner: runner})

	req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(`{"query":"  "}`))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleChat_BadBody(t *testing.T) {
	srv := newTestServer(t, &Config{Runner: &mockRunner{}})

	req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(`{not json`))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleChatStream(t *testing.T) {
	runner := &mockRunner{chunks: []string{"Visit the ", "GST portal."}, turn: testTurn()}
	srv := newTestServer(t, &Config{Runner: runner})

	req := httptest.NewRequest(http.MethodPost, "/api/chat/stream",
		strings.NewReader(`{"query":"how to register gst"}`))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))

	body := rec.Body.String()
	assert.Equal(t, 2, strings.Count(body, "event: chunk\n"))
	assert.Contains(t, body, `{"text":"Visit the "}`)
	assert.Contains(t, body, `{"text":"GST portal."}`)
	assert.Equal(t, 1, strings.Count(body, "event: done\n"))
	assert.NotContains(t, body, "event: error")
}

func TestHandleChatStream_Error(t *testing.T) {
	runner := &mockRunner{err: errors.New("model unavailable")}
	srv := newTestServer(t, &Config{Runner: runner})

	req := httptest.NewRequest(http.MethodPost, "/api/chat/stream",
		strings.NewReader(`{"query":"anything"}`))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	body := rec.Body.String()
	assert.Contains(t, body, "event: error\n")
	assert.NotContains(t, body, "event: done")
}

func TestHandleGenerate_PlainText(t *testing.T) {
	runner := &mockRunner{chunks: []string{"hello ", "world"}, turn: testTurn()}
	srv := newTestServer(t, &Config{Runner: runner})

	req := httptest.NewRequest(http.MethodPost, "/api/generate",
		strings.NewReader(`{"query":"say hello"}`))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/plain; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, "hello world", rec.Body.String())
}

func TestHandleFeedback(t *testing.T) {
	runner := &mockRunner{}
	srv := newTestServer(t, &Config{Runner: runner})

	req := httptest.NewRequest(http.MethodPost, "/api/feedback",
		strings.NewReader(`{"user_id":"u1","query":"q","response":"r","vote":"up"}`))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusAccepted, rec.Code)
	require.Len(t, runner.feedback, 1)
	assert.Equal(t, assistant.VoteUp, runner.feedback[0].Vote)
}

func TestHandleFeedback_BadVote(t *testing.T) {
	runner := &mockRunner{}
	srv := newTestServer(t, &Config{Runner: runner})

	req := httptest.NewRequest(http.MethodPost, "/api/feedback",
		strings.NewReader(`{"vote":"maybe"}`))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, runner.feedback)
}

func TestHandleRecords(t *testing.T) {
	srv := newTestServer(t, &Config{Runner: &mockRunner{}})

	req := httptest.NewRequest(http.MethodGet, "/api/records", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		FAQs   []catalog.FAQ   `json:"faqs"`
		Videos []catalog.Video `json:"videos"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Len(t, body.FAQs, 1)
	assert.Len(t, body.Videos, 1)
}

func TestHandleTrends(t *testing.T) {
	queries := &mockQueries{queries: []string{
		"how to register gst",
		"gst filing deadline",
		"open a current account",
	}}
	srv := newTestServer(t, &Config{Runner: &mockRunner{}, Queries: queries})

	req := httptest.NewRequest(http.MethodGet, "/api/trends", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Keywords []struct {
			Keyword string `json:"keyword"`
			Count   int    `json:"count"`
		} `json:"keywords"`
		Queries int `json:"queries"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 3, body.Queries)
	require.NotEmpty(t, body.Keywords)
	assert.Equal(t, "gst", body.Keywords[0].Keyword)
	assert.Equal(t, 2, body.Keywords[0].Count)
}

func TestHandleTrends_NoStorage(t *testing.T) {
	srv := newTestServer(t, &Config{Runner: &mockRunner{}})

	req := httptest.NewRequest(http.MethodGet, "/api/trends", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotImplemented, rec.Code)
}

func TestHealthEndpoints(t *testing.T) {
	srv := newTestServer(t, &Config{Runner: &mockRunner{}})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	// Readiness with no pinger reports ready.
	req = httptest.NewRequest(http.MethodGet, "/ready", nil)
	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestReady_StorageDown(t *testing.T) {
	srv := newTestServer(t, &Config{
		Runner: &mockRunner{},
		Pinger: &mockPinger{err: errors.New("connection refused")},
	})

	req := httptest.NewRequest(http.MethodGet, "/ready", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
