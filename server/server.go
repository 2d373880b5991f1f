// Package server exposes the prompt version lifecycle over HTTP/JSON. The
// store.Remote client speaks this API, so remote mode runs through the same
// lifecycle manager as local mode.
package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/weftlabs/weft/audit"
	"github.com/weftlabs/weft/core"
	"github.com/weftlabs/weft/lifecycle"
	"github.com/weftlabs/weft/store"
	"github.com/weftlabs/weft/template"
)

// Server handles lifecycle requests using a Manager. When Audit is set the
// event trail is exposed under /events.
type Server struct {
	Manager  *lifecycle.Manager
	Audit    audit.Store
	Renderer *template.Engine
	Addr     string
}

// NewServer creates a server for the given manager.
func NewServer(m *lifecycle.Manager, addr string) *Server {
	if addr == "" {
		addr = ":8080"
	}
	return &Server{Manager: m, Renderer: template.NewEngine(), Addr: addr}
}

// Handler returns the route table.
func (s *Server) Handler() http.Handler {
	if s.Renderer == nil {
		s.Renderer = template.NewEngine()
	}
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	if s.Audit != nil {
		mux.HandleFunc("GET /events", s.handleEvents)
		mux.HandleFunc("GET /events/summary", s.handleEventSummary)
	}
	mux.HandleFunc("GET /prompts", s.handleList)
	mux.HandleFunc("GET /prompts/{id}", s.handleGet)
	mux.HandleFunc("PUT /prompts/{id}", s.handlePut)
	mux.HandleFunc("DELETE /prompts/{id}", s.handleDeletePrompt)
	mux.HandleFunc("GET /prompts/{id}/diff", s.handleDiff)
	mux.HandleFunc("POST /prompts/{id}/render", s.handleRender)
	mux.HandleFunc("POST /prompts/{id}/versions/{vid}/render", s.handleRender)
	mux.HandleFunc("POST /prompts/{id}/versions", s.handleCreateVersion)
	mux.HandleFunc("POST /prompts/{id}/versions/{vid}/restore", s.handleRestore)
	mux.HandleFunc("DELETE /prompts/{id}/versions/{vid}", s.handleSoftDelete)
	mux.HandleFunc("POST /prompts/{id}/versions/{vid}/restore-deleted", s.handleRestoreDeleted)
	mux.HandleFunc("DELETE /prompts/{id}/versions/{vid}/purge", s.handlePurge)
	return mux
}

// ListenAndServe starts the HTTP server.
func (s *Server) ListenAndServe() error {
	return http.ListenAndServe(s.Addr, s.Handler())
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps lifecycle errors onto HTTP statuses and the wire error
// shape the Remote client reconstructs typed errors from.
func writeError(w http.ResponseWriter, err error) {
	kind := store.KindOf(err)
	status := http.StatusBadGateway // untyped store failures
	switch kind {
	case store.KindNotFound:
		status = http.StatusNotFound
	case store.KindCurrentVersionProtected, store.KindLastVersionProtected,
		store.KindNotDeleted, store.KindDeleted:
		status = http.StatusConflict
	case store.KindBadRequest:
		status = http.StatusBadRequest
	case store.KindInvariant:
		status = http.StatusInternalServerError
	}
	writeJSON(w, status, store.WireError{Kind: kind, Message: err.Error()})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := store.Filter{
		IDs:  q["id"],
		Tags: q["tag"],
	}
	if v := q.Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			filter.Limit = n
		}
	}
	if v := q.Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			filter.Offset = n
		}
	}
	prompts, err := s.Manager.List(r.Context(), filter)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"prompts": prompts, "count": len(prompts)})
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	// Always read through to the store; the server's session cache must
	// not mask writes from other clients.
	p, err := s.Manager.Refresh(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handlePut(w http.ResponseWriter, r *http.Request) {
	var p core.Prompt
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeJSON(w, http.StatusBadRequest, store.WireError{Kind: store.KindBadRequest, Message: "invalid JSON: " + err.Error()})
		return
	}
	if p.ID == "" {
		p.ID = r.PathValue("id")
	}
	if p.ID != r.PathValue("id") {
		writeJSON(w, http.StatusBadRequest, store.WireError{Kind: store.KindBadRequest, Message: "prompt id does not match URL"})
		return
	}
	if err := s.Manager.SavePrompt(r.Context(), &p); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, &p)
}

func (s *Server) handleDeletePrompt(w http.ResponseWriter, r *http.Request) {
	if err := s.Manager.DeletePrompt(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleCreateVersion(w http.ResponseWriter, r *http.Request) {
	var req store.CreateVersionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, store.WireError{Kind: store.KindBadRequest, Message: "invalid JSON: " + err.Error()})
		return
	}
	p, err := s.Manager.CreateVersion(r.Context(), r.PathValue("id"), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (s *Server) handleRestore(w http.ResponseWriter, r *http.Request) {
	p, err := s.Manager.RestoreVersion(r.Context(), r.PathValue("id"), r.PathValue("vid"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleSoftDelete(w http.ResponseWriter, r *http.Request) {
	p, err := s.Manager.DeleteVersion(r.Context(), r.PathValue("id"), r.PathValue("vid"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleRestoreDeleted(w http.ResponseWriter, r *http.Request) {
	p, err := s.Manager.RestoreDeletedVersion(r.Context(), r.PathValue("id"), r.PathValue("vid"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handlePurge(w http.ResponseWriter, r *http.Request) {
	p, err := s.Manager.PermanentDeleteVersion(r.Context(), r.PathValue("id"), r.PathValue("vid"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func auditQuery(r *http.Request) audit.Query {
	q := r.URL.Query()
	aq := audit.Query{
		PromptID: q.Get("prompt_id"),
		Op:       q.Get("op"),
		GroupBy:  q.Get("group_by"),
	}
	if v := q.Get("from"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			aq.From = t
		}
	}
	if v := q.Get("to"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			aq.To = t
		}
	}
	if v := q.Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			aq.Limit = n
		}
	}
	return aq
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	events, err := s.Audit.Recent(r.Context(), auditQuery(r))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, store.WireError{Message: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"events": events, "count": len(events)})
}

func (s *Server) handleEventSummary(w http.ResponseWriter, r *http.Request) {
	agg, err := s.Audit.Summary(r.Context(), auditQuery(r))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, store.WireError{Message: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"aggregates": agg})
}

// handleRender previews a version's content with template input substituted.
// Without a version in the path the current version is rendered. The request
// body is the input map; an empty body renders with no input.
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	var input template.Input
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil && !errors.Is(err, io.EOF) {
		writeJSON(w, http.StatusBadRequest, store.WireError{Kind: store.KindBadRequest, Message: "invalid JSON: " + err.Error()})
		return
	}
	p, err := s.Manager.Refresh(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	vid := r.PathValue("vid")
	if vid == "" {
		vid = p.CurrentVersionID
	}
	out, err := s.Renderer.RenderVersion(r.Context(), p, vid, input)
	if err != nil {
		if errors.Is(err, template.ErrRenderFailed) {
			writeJSON(w, http.StatusBadRequest, store.WireError{Kind: store.KindBadRequest, Message: err.Error()})
			return
		}
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleDiff(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	to := q.Get("to")
	if to == "" {
		writeJSON(w, http.StatusBadRequest, store.WireError{Kind: store.KindBadRequest, Message: "to parameter required"})
		return
	}
	d, err := s.Manager.Compare(r.Context(), r.PathValue("id"), q.Get("from"), to)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}
