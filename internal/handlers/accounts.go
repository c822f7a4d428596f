package handlers

import (
	"net/http"
	"strings"

	"finora/internal/logger"
	"finora/internal/models"
	"finora/internal/session"

	"go.uber.org/zap"
)

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type passwordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
	ConfirmPassword string `json:"confirmPassword"`
}

type sessionResponse struct {
	*session.State
	Allowed *bool `json:"allowed,omitempty"`
}

// Register creates an account and signs it in.
func (h *Handlers) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	if err := models.ValidateRegistration(req.Name, req.Email, req.Password); err != nil {
		writeError(w, r, err)
		return
	}

	user, err := h.db.Register(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}
	logger.Get().Info("user registered", zap.String("user_id", user.ID))
	h.startSession(w, r, user, http.StatusCreated)
}

// Login handles the login form submission.
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	email := strings.TrimSpace(req.Email)
	if email == "" || req.Password == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "email and password are required"})
		return
	}

	user, err := h.db.Login(r.Context(), email, req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.startSession(w, r, user, http.StatusOK)
}

func (h *Handlers) startSession(w http.ResponseWriter, r *http.Request, user *models.User, status int) {
	state := session.NewState()
	token, expiresAt, err := h.sessions.Start(r.Context(), state, user)
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.setSessionCookie(w, token, expiresAt)
	writeJSON(w, status, state)
}

// Logout ends the current session, if any.
func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	state := session.NewState()
	var token string
	if cookie, err := r.Cookie(SessionCookieName); err == nil {
		token = cookie.Value
	}
	if err := h.sessions.End(r.Context(), state, token); err != nil {
		logger.Get().Error("failed to delete session", zap.Error(err))
	}
	h.clearSessionCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

// Session reports who the client is signed in as. With ?view= it also
// reports whether that view may be opened.
func (h *Handlers) Session(w http.ResponseWriter, r *http.Request) {
	state := h.restore(w, r)
	resp := sessionResponse{State: state}
	if view := r.URL.Query().Get("view"); view != "" {
		allowed := state.Allows(view)
		resp.Allowed = &allowed
	}
	writeJSON(w, http.StatusOK, resp)
}

// GetProfile returns the signed in user.
func (h *Handlers) GetProfile(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r)
	fresh, err := h.db.GetUser(r.Context(), user.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, fresh)
}

// UpdateProfile saves the settings panel.
func (h *Handlers) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r)
	var p models.Profile
	if err := decodeJSON(w, r, &p); err != nil {
		writeError(w, r, err)
		return
	}
	p.Name = strings.TrimSpace(p.Name)
	p.Phone = strings.TrimSpace(p.Phone)
	if err := p.Validate(); err != nil {
		writeError(w, r, err)
		return
	}

	updated, err := h.db.UpdateProfile(r.Context(), user.ID, p)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// ChangePassword replaces the password after checking the current one.
func (h *Handlers) ChangePassword(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r)
	var req passwordRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := models.ValidatePasswordChange(req.NewPassword, req.ConfirmPassword); err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.db.ChangePassword(r.Context(), user.ID, req.CurrentPassword, req.NewPassword); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteAccount removes the user, everything they own, and their sessions.
func (h *Handlers) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	state := GetStateFromContext(r)
	userID := state.User.ID
	if err := h.db.DeleteAccount(r.Context(), userID); err != nil {
		writeError(w, r, err)
		return
	}
	state.Logout()
	h.clearSessionCookie(w)
	logger.Get().Info("account deleted", zap.String("user_id", userID))
	w.WriteHeader(http.StatusNoContent)
}
