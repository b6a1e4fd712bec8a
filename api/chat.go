package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/udyogmitra/mitra/internal/assistant"
	"github.com/udyogmitra/mitra/internal/generate"
	"github.com/udyogmitra/mitra/internal/team"
	"github.com/udyogmitra/mitra/internal/trends"
)

// TurnRunner executes one assistant turn. Satisfied by
// *assistant.Assistant.
type TurnRunner interface {
	Respond(ctx context.Context, user team.Member, query string, onChunk generate.ChunkFunc) (*assistant.Turn, error)
	RecordFeedback(fb assistant.Feedback)
}

// QuerySource returns recent user queries for trend analysis. Satisfied
// by *history.Store.
type QuerySource interface {
	RecentQueries(ctx context.Context, limit int) ([]string, error)
}

// ChatRequest is the body for /api/chat, /api/chat/stream and
// /api/generate. UserID and UserName are optional; blank values mean a
// guest turn.
type ChatRequest struct {
	Query    string `json:"query"`
	UserID   string `json:"user_id,omitempty"`
	UserName string `json:"user_name,omitempty"`
}

func (r ChatRequest) member(roster team.Roster) team.Member {
	if r.UserID == "" {
		m := roster.Guest()
		if r.UserName != "" {
			m.Name = r.UserName
		}
		return m
	}
	return team.Member{ID: r.UserID, Name: r.UserName, Role: team.RoleMember}
}

func (s *Server) decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, s.logger, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

// handleChat runs a full turn and returns the completed Turn as JSON.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if !s.decodeBody(w, r, &req) {
		return
	}

	turn, err := s.runner.Respond(r.Context(), req.member(s.roster), req.Query, nil)
	if err != nil {
		if errors.Is(err, assistant.ErrEmptyQuery) {
			writeError(w, s.logger, http.StatusBadRequest, "query must not be empty")
			return
		}
		s.logger.Error("chat turn failed", "error", err)
		writeError(w, s.logger, http.StatusInternalServerError, "failed to process query")
		return
	}

	writeJSON(w, s.logger, http.StatusOK, turn)
}

// handleChatStream runs a turn and streams answer text as Server-Sent
// Events: "chunk" events carry partial text, a single "done" event
// carries the completed turn, "error" reports a failure mid-stream.
func (s *Server) handleChatStream(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if !s.decodeBody(w, r, &req) {
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, s.logger, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	onChunk := func(_ context.Context, text string) error {
		return writeSSEChunk(w, flusher, text)
	}

	turn, err := s.runner.Respond(r.Context(), req.member(s.roster), req.Query, onChunk)
	if err != nil {
		if errors.Is(err, assistant.ErrStreamAborted) {
			// Client went away; nothing sensible left to write.
			return
		}
		writeSSEError(w, flusher, "failed to process query")
		return
	}

	writeSSEDone(w, flusher, turn)
}

// handleGenerate streams plain answer text with no event framing. The
// response body is the raw concatenation of generated chunks.
func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if !s.decodeBody(w, r, &req) {
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, s.logger, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")

	onChunk := func(_ context.Context, text string) error {
		if _, err := fmt.Fprint(w, text); err != nil {
			return err
		}
		flusher.Flush()
		return nil
	}

	if _, err := s.runner.Respond(r.Context(), req.member(s.roster), req.Query, onChunk); err != nil {
		if errors.Is(err, assistant.ErrEmptyQuery) {
			// Headers not yet flushed only if no chunk was written; the
			// empty-query path never writes chunks.
			writeError(w, s.logger, http.StatusBadRequest, "query must not be empty")
		}
		return
	}
}

// FeedbackRequest is the body for /api/feedback.
type FeedbackRequest struct {
	UserID   string `json:"user_id"`
	UserName string `json:"user_name"`
	Query    string `json:"query"`
	Response string `json:"response"`
	Vote     string `json:"vote"`
}

func (s *Server) handleFeedback(w http.ResponseWriter, r *http.Request) {
	var req FeedbackRequest
	if !s.decodeBody(w, r, &req) {
		return
	}
	if req.Vote != assistant.VoteUp && req.Vote != assistant.VoteDown {
		writeError(w, s.logger, http.StatusBadRequest, "vote must be \"up\" or \"down\"")
		return
	}

	s.runner.RecordFeedback(assistant.Feedback{
		UserID:   req.UserID,
		UserName: req.UserName,
		Query:    req.Query,
		Response: req.Response,
		Vote:     req.Vote,
	})

	writeJSON(w, s.logger, http.StatusAccepted, map[string]string{"status": "recorded"})
}

// handleRecords exposes the loaded catalog for inspection.
func (s *Server) handleRecords(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.logger, http.StatusOK, map[string]any{
		"faqs":   s.catalog.FAQs(),
		"videos": s.catalog.Videos(),
		"stats":  s.catalog.Stats(),
	})
}

const trendsQueryWindow = 500

func (s *Server) handleTrends(w http.ResponseWriter, r *http.Request) {
	if s.queries == nil {
		writeError(w, s.logger, http.StatusNotImplemented, "trend analysis requires storage")
		return
	}

	queries, err := s.queries.RecentQueries(r.Context(), trendsQueryWindow)
	if err != nil {
		s.logger.Error("loading recent queries failed", "error", err)
		writeError(w, s.logger, http.StatusInternalServerError, "failed to load query history")
		return
	}

	writeJSON(w, s.logger, http.StatusOK, map[string]any{
		"keywords": trends.Analyze(queries, 10),
		"queries":  len(queries),
	})
}

func writeSSEChunk(w http.ResponseWriter, flusher http.Flusher, text string) error {
	data, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "event: chunk\ndata: %s\n\n", data); err != nil {
		return err
	}
	flusher.Flush()
	return nil
}

func writeSSEDone(w http.ResponseWriter, flusher http.Flusher, turn *assistant.Turn) {
	data, err := json.Marshal(turn)
	if err != nil {
		return
	}
	fmt.Fprintf(w, "event: done\ndata: %s\n\n", data)
	flusher.Flush()
}

func writeSSEError(w http.ResponseWriter, flusher http.Flusher, msg string) {
	data, _ := json.Marshal(map[string]string{"error": msg})
	fmt.Fprintf(w, "event: error\ndata: %s\n\n", data)
	flusher.Flush()
}
