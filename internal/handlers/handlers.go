package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"finora/internal/learning"
	"finora/internal/logger"
	"finora/internal/models"
	"finora/internal/session"
	"finora/internal/storage"

	"go.uber.org/zap"
)

// Context key type to avoid collisions.
type contextKey string

const (
	// StateContextKey is the context key for the restored session state.
	StateContextKey contextKey = "session"
	// SessionCookieName is the name of the session cookie.
	SessionCookieName = "session"

	maxBodyBytes = 1 << 20
)

// Handlers holds dependencies for HTTP handlers.
type Handlers struct {
	db           *storage.DB
	sessions     *session.Manager
	lessons      *learning.Catalog
	secureCookie bool
	now          func() time.Time
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(db *storage.DB, sessions *session.Manager, lessons *learning.Catalog, secureCookie bool) *Handlers {
	return &Handlers{
		db:           db,
		sessions:     sessions,
		lessons:      lessons,
		secureCookie: secureCookie,
		now:          time.Now,
	}
}

// GetStateFromContext retrieves the session state from request context.
func GetStateFromContext(r *http.Request) *session.State {
	if s, ok := r.Context().Value(StateContextKey).(*session.State); ok {
		return s
	}
	return nil
}

// GetUserFromContext retrieves the authenticated user from request context.
func GetUserFromContext(r *http.Request) *models.User {
	if s := GetStateFromContext(r); s != nil && s.Authenticated {
		return s.User
	}
	return nil
}

// restore rebuilds the session state of the request from its cookie,
// refreshing the cookie when the session was renewed.
func (h *Handlers) restore(w http.ResponseWriter, r *http.Request) *session.State {
	state := session.NewState()
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil {
		state.Logout()
		return state
	}

	renewed, err := h.sessions.Restore(r.Context(), state, cookie.Value)
	switch {
	case errors.Is(err, session.ErrNoSession):
		h.clearSessionCookie(w)
	case err != nil:
		logger.Get().Error("failed to restore session", zap.Error(err))
		h.clearSessionCookie(w)
	case !renewed.IsZero():
		h.setSessionCookie(w, cookie.Value, renewed)
	}
	return state
}

// AuthMiddleware wraps handlers to require authentication. Sessions are
// rolling: one past half of its lifetime is renewed on use.
func (h *Handlers) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		state := h.restore(w, r)
		if !state.Authenticated {
			writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "authentication required"})
			return
		}
		ctx := context.WithValue(r.Context(), StateContextKey, state)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// LoggingMiddleware logs every request with its status and latency.
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logger.Get().Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("latency", time.Since(start)),
		)
	})
}

func (h *Handlers) setSessionCookie(w http.ResponseWriter, token string, expiresAt time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		MaxAge:   int(h.sessions.Duration().Seconds()),
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *Handlers) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
}

type errorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Get().Warn("failed to write response", zap.Error(err))
	}
}

// writeError maps err onto a status code. Errors that are not part of the
// domain taxonomy are logged and reported as 500 without details.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *models.ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: verr.Error(), Field: verr.Field})
	case errors.Is(err, storage.ErrInvalidCredentials):
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "invalid email or password"})
	case errors.Is(err, storage.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "not found"})
	case errors.Is(err, storage.ErrDuplicateUser):
		writeJSON(w, http.StatusConflict, errorResponse{Error: "an account with this email already exists"})
	case errors.Is(err, storage.ErrConflict):
		writeJSON(w, http.StatusConflict, errorResponse{Error: "data changed, please retry"})
	default:
		logger.Get().Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal server error"})
	}
}

// decodeJSON reads the request body into v. Malformed bodies are reported
// as a ValidationError on the "body" field.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		return &models.ValidationError{Field: "body", Message: err.Error()}
	}
	return nil
}

// formValue is a field typed into a form. Clients may send it as a JSON
// string or a JSON number; parsing happens in the handler.
type formValue string

func (f *formValue) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*f = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = formValue(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("expected a string or a number, got %s", b)
	}
	*f = formValue(n.String())
	return nil
}

func (f formValue) empty() bool {
	return strings.TrimSpace(string(f)) == ""
}

// timestamp returns the current time as stored by the repositories.
func (h *Handlers) timestamp() time.Time {
	return h.now().UTC().Round(0)
}
