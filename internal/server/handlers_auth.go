package server

import (
	"encoding/json"
	"io"
	"net/http"

	"tokobuku/internal/util"
)

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type registerRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	if !s.allowAuthAttempt(r) {
		writeError(w, http.StatusTooManyRequests, "too many attempts, try again later")
		return
	}
	if !s.loginGate.tryAcquire() {
		writeError(w, http.StatusConflict, "login already in progress")
		return
	}
	defer s.loginGate.release()

	var req loginRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	// pre-submission validation blocks the request before any network call
	if err := s.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, validationMessage(err))
		return
	}
	if !s.session.Login(r.Context(), req.Email, req.Password) {
		writeError(w, http.StatusUnauthorized, "invalid email or password")
		return
	}
	st := s.session.Snapshot()
	writeJSON(w, http.StatusOK, map[string]any{"user": st.User})
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	if !s.allowAuthAttempt(r) {
		writeError(w, http.StatusTooManyRequests, "too many attempts, try again later")
		return
	}
	if !s.registerGate.tryAcquire() {
		writeError(w, http.StatusConflict, "registration already in progress")
		return
	}
	defer s.registerGate.release()

	var req registerRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := s.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, validationMessage(err))
		return
	}
	// registration never authenticates; the user logs in afterwards
	if !s.session.Register(r.Context(), req.Name, req.Email, req.Password) {
		writeError(w, http.StatusBadRequest, "registration failed")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"status": "registered"})
}

// allowAuthAttempt throttles credential submissions per client IP.
func (s *Server) allowAuthAttempt(r *http.Request) bool {
	if s.limiter == nil {
		return true
	}
	return s.limiter.Allow(util.ClientIP(r, nil))
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	s.session.Logout()
	w.WriteHeader(http.StatusNoContent)
}

// handleSession reports the guard state so the UI can decide what to render.
func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	st := s.session.Snapshot()
	switch {
	case st.Loading:
		writeJSON(w, http.StatusOK, map[string]any{"status": "checking"})
	case st.IsAuthenticated:
		writeJSON(w, http.StatusOK, map[string]any{"status": "authenticated", "user": st.User})
	default:
		writeJSON(w, http.StatusOK, map[string]any{"status": "unauthenticated"})
	}
}
