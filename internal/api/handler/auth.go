package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/mcoot/snakegame-go/internal/api/apierr"
	"github.com/mcoot/snakegame-go/internal/api/middleware"
	"github.com/mcoot/snakegame-go/internal/api/request"
	"github.com/mcoot/snakegame-go/internal/api/response"
	"github.com/mcoot/snakegame-go/internal/model"
	"github.com/mcoot/snakegame-go/internal/services/auth"
)

// AuthHandler handles signup, login and session endpoints
type AuthHandler struct {
	errorWriter
	authService *auth.Service
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *auth.Service, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		errorWriter: errorWriter{logger: logger},
		authService: authService,
	}
}

// Signup handles POST /api/auth/signup
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req request.SignupRequest
	if err := request.Decode(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	if req.Username == "" {
		h.writeError(w, r, apierr.NewInvalidRequestError("username is required"))
		return
	}
	if req.Email == "" {
		h.writeError(w, r, apierr.NewInvalidRequestError("email is required"))
		return
	}
	if req.Password == "" {
		h.writeError(w, r, apierr.NewInvalidRequestError("password is required"))
		return
	}

	result, err := h.authService.Signup(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	setSessionCookie(w, result.Session)
	response.JSON(w, http.StatusCreated, response.AuthResponseFromResult(result))
}

// Login handles POST /api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req request.LoginRequest
	if err := request.Decode(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	if req.Email == "" {
		h.writeError(w, r, apierr.NewInvalidRequestError("email is required"))
		return
	}
	if req.Password == "" {
		h.writeError(w, r, apierr.NewInvalidRequestError("password is required"))
		return
	}

	result, err := h.authService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	setSessionCookie(w, result.Session)
	response.JSON(w, http.StatusOK, response.AuthResponseFromResult(result))
}

// Logout handles POST /api/auth/logout. It succeeds with or without a
// valid session.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if token := middleware.Token(r); token != "" {
		h.authService.Logout(token)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	response.JSON(w, http.StatusOK, nil)
}

// Session handles GET /api/auth/session. Data is null when the request
// carries no valid session.
func (h *AuthHandler) Session(w http.ResponseWriter, r *http.Request) {
	profile, ok, err := h.authService.CurrentSession(r.Context(), middleware.Token(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if !ok {
		response.JSON(w, http.StatusOK, nil)
		return
	}
	response.JSON(w, http.StatusOK, response.UserFromProfile(*profile))
}

func setSessionCookie(w http.ResponseWriter, s *model.Session) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    s.Token,
		Path:     "/",
		Expires:  s.ExpiresAt.UTC().Truncate(time.Second),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
