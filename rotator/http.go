package rotator

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"driveorient/idgen"
	"driveorient/kit"
)

// RegisterHTTP mounts the local control and status endpoints.
func (s *Session) RegisterHTTP(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(s.requestContext)
		r.Get("/api/status", s.handleStatus)
		r.Get("/api/state", s.handleState)
		r.Post("/api/rotate", s.handleRotate)
		r.Post("/api/flip", s.handleAction(ActionFlip))
		r.Post("/api/reset", s.handleAction(ActionReset))
		r.Get("/api/orientations", s.handleList)
		r.Get("/api/orientations/{file_id}", s.handleGet)
	})
}

// requestContext tags each request with transport, request and session
// identifiers, and echoes the request ID for log correlation.
func (s *Session) requestContext(next http.Handler) http.Handler {
	newID := idgen.Prefixed("req_", idgen.Default)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := newID()
		ctx := kit.WithTransport(r.Context(), "http")
		ctx = kit.WithRequestID(ctx, id)
		ctx = kit.WithSessionID(ctx, s.id)
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Session) handleStatus(w http.ResponseWriter, r *http.Request) {
	snap, err := s.Snapshot(r.Context())
	if err != nil {
		writeError(w, 500, err)
		return
	}
	writeJSON(w, 200, snap)
}

func (s *Session) handleState(w http.ResponseWriter, r *http.Request) {
	snap, err := s.Snapshot(r.Context())
	if err != nil {
		writeError(w, 500, err)
		return
	}
	writeJSON(w, 200, snap.State)
}

func (s *Session) handleRotate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Direction string `json:"direction"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, 400, err)
		return
	}

	var a Action
	switch req.Direction {
	case "left":
		a = ActionRotateLeft
	case "right":
		a = ActionRotateRight
	default:
		writeError(w, 400, errors.New(`direction must be "left" or "right"`))
		return
	}

	st, err := s.Do(r.Context(), a)
	if err != nil {
		writeError(w, 500, err)
		return
	}
	writeJSON(w, 200, st)
}

func (s *Session) handleAction(a Action) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		st, err := s.Do(r.Context(), a)
		if err != nil {
			writeError(w, 500, err)
			return
		}
		writeJSON(w, 200, st)
	}
}

func (s *Session) handleList(w http.ResponseWriter, r *http.Request) {
	recs, err := s.List(r.Context())
	if err != nil {
		writeError(w, 500, err)
		return
	}
	if recs == nil {
		recs = []Record{}
	}
	writeJSON(w, 200, recs)
}

func (s *Session) handleGet(w http.ResponseWriter, r *http.Request) {
	fileID := chi.URLParam(r, "file_id")
	st, err := s.Saved(r.Context(), fileID)
	if err != nil {
		writeError(w, 500, err)
		return
	}
	if st == nil {
		writeError(w, 404, errors.New("no saved orientation"))
		return
	}
	writeJSON(w, 200, st)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, err error) {
	writeJSON(w, code, map[string]string{"error": err.Error()})
}
