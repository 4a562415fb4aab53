package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"barrabusiness/internal/app"
	"barrabusiness/internal/util"
	"barrabusiness/pkg/domain"
)

// Config wires required dependencies for the HTTP server.
type Config struct {
	App *app.App
}

// Server exposes the record and matching engine as a JSON API for the
// intake forms and the backoffice.
type Server struct {
	app *app.App
	mux *http.ServeMux
}

// New constructs the server with routes configured.
func New(cfg Config) (*Server, error) {
	if cfg.App == nil {
		return nil, errors.New("app is required")
	}
	s := &Server{
		app: cfg.App,
		mux: http.NewServeMux(),
	}
	s.routes()
	return s, nil
}

// Router returns the configured handler.
func (s *Server) Router() http.Handler {
	return util.WithRequestID(util.WithRequestLog("barrabusiness", util.WithSecurityHeaders(util.WithCORS(s.mux))))
}

func (s *Server) routes() {
	s.mux.HandleFunc("/healthz", s.handleHealth)

	s.mux.HandleFunc("/properties", s.handleProperties)
	s.mux.HandleFunc("/properties/", s.handlePropertyByID)

	s.mux.HandleFunc("/interests", s.handleInterests)

	s.mux.HandleFunc("/matches", s.handleMatches)
	s.mux.HandleFunc("/matches/", s.handleMatchByID)

	s.mux.HandleFunc("/users", s.handleUsers)
	s.mux.HandleFunc("/users/", s.handleUserByID)

	s.mux.HandleFunc("/notifications", s.handleNotifications)
	s.mux.HandleFunc("/notifications/ack", s.handleNotificationsAck)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// --- properties ---

func (s *Server) handleProperties(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		var property domain.Property
		if !decodeBody(w, r, &property) {
			return
		}
		created, err := s.app.AddProperty(r.Context(), property)
		if err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, created)
	case http.MethodGet:
		properties, err := s.app.ListProperties(r.Context())
		if err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, properties)
	default:
		methodNotAllowed(w)
	}
}

// /properties/{id}, /properties/{id}/status, /properties/{id}/feature
func (s *Server) handlePropertyByID(w http.ResponseWriter, r *http.Request) {
	id, action, ok := splitIDAction(w, r.URL.Path, "/properties/")
	if !ok {
		return
	}
	switch action {
	case "":
		if r.Method != http.MethodDelete {
			methodNotAllowed(w)
			return
		}
		removed, err := s.app.RemoveProperty(r.Context(), id)
		if err != nil {
			writeAppError(w, err)
			return
		}
		if !removed {
			slog.Warn("property already absent", "id", id, "request_id", util.RequestIDFromRequest(r))
		}
		writeJSON(w, http.StatusOK, changedResponse{Changed: removed})
	case "status":
		if r.Method != http.MethodPatch {
			methodNotAllowed(w)
			return
		}
		var body struct {
			Status domain.PropertyStatus `json:"status"`
		}
		if !decodeBody(w, r, &body) {
			return
		}
		updated, err := s.app.SetPropertyStatus(r.Context(), id, body.Status)
		if err != nil {
			writeAppError(w, err)
			return
		}
		if !updated {
			slog.Warn("property not found for status update", "id", id, "request_id", util.RequestIDFromRequest(r))
		}
		writeJSON(w, http.StatusOK, changedResponse{Changed: updated})
	case "feature":
		if r.Method != http.MethodPost {
			methodNotAllowed(w)
			return
		}
		toggled, err := s.app.ToggleFeatured(r.Context(), id)
		if err != nil {
			writeAppError(w, err)
			return
		}
		if !toggled {
			slog.Warn("property not found for feature toggle", "id", id, "request_id", util.RequestIDFromRequest(r))
		}
		writeJSON(w, http.StatusOK, changedResponse{Changed: toggled})
	default:
		notFound(w)
	}
}

// --- interests ---

func (s *Server) handleInterests(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		var interest domain.BuyerInterest
		if !decodeBody(w, r, &interest) {
			return
		}
		created, leads, err := s.app.AddInterest(r.Context(), interest)
		if err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, interestResponse{Interest: created, Matches: leads})
	case http.MethodGet:
		interests, err := s.app.ListInterests(r.Context())
		if err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, interests)
	default:
		methodNotAllowed(w)
	}
}

// --- matches ---

func (s *Server) handleMatches(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		var match domain.LeadMatch
		if !decodeBody(w, r, &match) {
			return
		}
		created, err := s.app.AddMatch(r.Context(), match)
		if err != nil {
			writeAppError(w, err)
			return
		}
		status := http.StatusCreated
		if !created {
			// Same (property, buyer) pair already recorded.
			status = http.StatusOK
		}
		writeJSON(w, status, changedResponse{Changed: created})
	case http.MethodGet:
		matchesList, err := s.app.ListMatches(r.Context())
		if err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, matchesList)
	default:
		methodNotAllowed(w)
	}
}

// /matches/{id}/status
func (s *Server) handleMatchByID(w http.ResponseWriter, r *http.Request) {
	id, action, ok := splitIDAction(w, r.URL.Path, "/matches/")
	if !ok {
		return
	}
	if action != "status" {
		notFound(w)
		return
	}
	if r.Method != http.MethodPatch {
		methodNotAllowed(w)
		return
	}
	var body struct {
		Status domain.MatchStatus `json:"status"`
	}
	if !decodeBody(w, r, &body) {
		return
	}
	updated, err := s.app.UpdateMatchStatus(r.Context(), id, body.Status)
	if err != nil {
		writeAppError(w, err)
		return
	}
	if !updated {
		slog.Warn("match not found for status update", "id", id, "request_id", util.RequestIDFromRequest(r))
	}
	writeJSON(w, http.StatusOK, changedResponse{Changed: updated})
}

// --- users ---

func (s *Server) handleUsers(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		var user domain.User
		if !decodeBody(w, r, &user) {
			return
		}
		created, err := s.app.AddUser(r.Context(), user)
		if err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, created)
	case http.MethodGet:
		users, err := s.app.ListUsers(r.Context())
		if err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, users)
	default:
		methodNotAllowed(w)
	}
}

// /users/{id}
func (s *Server) handleUserByID(w http.ResponseWriter, r *http.Request) {
	id, action, ok := splitIDAction(w, r.URL.Path, "/users/")
	if !ok {
		return
	}
	if action != "" {
		notFound(w)
		return
	}
	if r.Method != http.MethodDelete {
		methodNotAllowed(w)
		return
	}
	removed, err := s.app.RemoveUser(r.Context(), id)
	if err != nil {
		writeAppError(w, err)
		return
	}
	if !removed {
		slog.Warn("user already absent", "id", id, "request_id", util.RequestIDFromRequest(r))
	}
	writeJSON(w, http.StatusOK, changedResponse{Changed: removed})
}

// --- notifications ---

func (s *Server) handleNotifications(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	pending, err := s.app.PendingNotifications(r.Context())
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, pending)
}

func (s *Server) handleNotificationsAck(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	if err := s.app.AckNotifications(r.Context()); err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// --- helpers ---

type changedResponse struct {
	Changed bool `json:"changed"`
}

type interestResponse struct {
	Interest domain.BuyerInterest `json:"interest"`
	Matches  []domain.LeadMatch   `json:"matches"`
}

// splitIDAction extracts "{id}" and an optional trailing "{action}"
// from paths like /properties/{id}/status.
func splitIDAction(w http.ResponseWriter, path, prefix string) (id, action string, ok bool) {
	rest := strings.TrimPrefix(path, prefix)
	parts := strings.SplitN(rest, "/", 2)
	id = parts[0]
	if id == "" {
		notFound(w)
		return "", "", false
	}
	if len(parts) == 2 {
		action = parts[1]
	}
	return id, action, true
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}

func writeAppError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, app.ErrInvalid):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, app.ErrDuplicateEmail):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, app.ErrProtectedRecord):
		writeError(w, http.StatusForbidden, err.Error())
	default:
		slog.Error("internal error", "err", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

type errorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"requestId,omitempty"`
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{
		Error:     msg,
		RequestID: strings.TrimSpace(w.Header().Get("X-Request-Id")),
	})
}

func methodNotAllowed(w http.ResponseWriter) {
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
}

func notFound(w http.ResponseWriter) {
	writeError(w, http.StatusNotFound, "not found")
}
