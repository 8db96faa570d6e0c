package http

import (
	"context"
	"net/http"
	"time"

	"github.com/nexstore/storefront/internal/domain"
	"github.com/nexstore/storefront/internal/service"
	"github.com/nexstore/storefront/internal/session"
	"github.com/nexstore/storefront/internal/validation"
)

type AuthService interface {
	Login(ctx context.Context, sess *session.Context, email, password string) service.Result[*domain.User]
	Register(ctx context.Context, sess *session.Context, form validation.RegisterForm) service.Result[*domain.User]
	Me(ctx context.Context, sess *session.Context) service.Result[*domain.User]
	Logout(sess *session.Context) service.Result[struct{}]
}

type AuthHandler struct {
	auth         AuthService
	timeout      time.Duration
	cookieSecure bool
}

func NewAuthHandler(auth AuthService, timeout time.Duration, cookieSecure bool) *AuthHandler {
	return &AuthHandler{
		auth:         auth,
		timeout:      timeout,
		cookieSecure: cookieSecure,
	}
}

type LoginRequestDTO struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthResponseDTO struct {
	Success bool     `json:"success"`
	Message string   `json:"message,omitempty"`
	User    *UserDTO `json:"user,omitempty"`
}

func renderAuth(res service.Result[*domain.User]) any {
	return AuthResponseDTO{Success: true, Message: res.Message, User: convertUser(res.Data)}
}

// POST /api/v1/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req LoginRequestDTO
	if !decodeJSON(w, r, &req) {
		return
	}

	sess := session.FromRequest(r, h.cookieSecure)
	res := h.auth.Login(ctx, sess, req.Email, req.Password)
	respondResult(w, sess, res, http.StatusOK, renderAuth)
}

// POST /api/v1/auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req validation.RegisterForm
	if !decodeJSON(w, r, &req) {
		return
	}

	sess := session.FromRequest(r, h.cookieSecure)
	res := h.auth.Register(ctx, sess, req)
	respondResult(w, sess, res, http.StatusCreated, renderAuth)
}

// GET /api/v1/auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	sess := session.FromRequest(r, h.cookieSecure)
	res := h.auth.Me(ctx, sess)
	respondResult(w, sess, res, http.StatusOK, func(res service.Result[*domain.User]) any {
		return convertUser(res.Data)
	})
}

// POST /api/v1/auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	sess := session.FromRequest(r, h.cookieSecure)
	res := h.auth.Logout(sess)
	respondResult(w, sess, res, http.StatusOK, func(service.Result[struct{}]) any {
		return AuthResponseDTO{Success: true}
	})
}
