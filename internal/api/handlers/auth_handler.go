package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/St1cky1/taskboard/internal/entity"
	"github.com/St1cky1/taskboard/internal/infrastructure/auth"
	log "github.com/sirupsen/logrus"
)

type AuthService interface {
	Register(ctx context.Context, req *entity.RegisterRequest) (*entity.LoginResponse, error)
	Login(ctx context.Context, req *entity.LoginRequest) (*entity.LoginResponse, error)
	RefreshToken(ctx context.Context, refreshToken string) (*entity.RefreshTokenResponse, error)
	Logout(ctx context.Context, userID string) error
}

type UserService interface {
	GetUser(ctx context.Context, userID string) (*entity.User, error)
	UpdateUser(ctx context.Context, userID string, req *entity.UpdateUserRequest) (*entity.User, error)
}

// CookieConfig - параметры cookie с access-токеном
type CookieConfig struct {
	Name   string
	Secure bool
	MaxAge time.Duration
}

type AuthHandler struct {
	authService AuthService
	userService UserService
	cookie      CookieConfig
	logger      log.FieldLogger
}

func NewAuthHandler(authService AuthService, userService UserService, cookie CookieConfig, logger log.FieldLogger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		userService: userService,
		cookie:      cookie,
		logger:      logger,
	}
}

func (h *AuthHandler) setSession(w http.ResponseWriter, accessToken string) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.cookie.Name,
		Value:    accessToken,
		Path:     "/",
		MaxAge:   int(h.cookie.MaxAge / time.Second),
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *AuthHandler) clearSession(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.cookie.Name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req entity.RegisterRequest
	if err := readJSON(w, r, &req); err != nil {
		writeError(w, r, h.logger, "register", err)
		return
	}

	resp, err := h.authService.Register(r.Context(), &req)
	if err != nil {
		writeError(w, r, h.logger, "register", err)
		return
	}
	h.setSession(w, resp.AccessToken)
	writeJSON(w, http.StatusCreated, resp)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req entity.LoginRequest
	if err := readJSON(w, r, &req); err != nil {
		writeError(w, r, h.logger, "login", err)
		return
	}

	resp, err := h.authService.Login(r.Context(), &req)
	if err != nil {
		writeError(w, r, h.logger, "login", err)
		return
	}
	h.setSession(w, resp.AccessToken)
	writeJSON(w, http.StatusOK, resp)
}

func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req entity.RefreshTokenRequest
	if err := readJSON(w, r, &req); err != nil {
		writeError(w, r, h.logger, "refresh token", err)
		return
	}

	resp, err := h.authService.RefreshToken(r.Context(), req.RefreshToken)
	if err != nil {
		writeError(w, r, h.logger, "refresh token", err)
		return
	}
	h.setSession(w, resp.AccessToken)
	writeJSON(w, http.StatusOK, resp)
}

// Logout отзывает все refresh-токены пользователя и стирает cookie
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.authService.Logout(r.Context(), auth.UserIDFromContext(r.Context())); err != nil {
		writeError(w, r, h.logger, "logout", err)
		return
	}
	h.clearSession(w)
	w.WriteHeader(http.StatusNoContent)
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, err := h.userService.GetUser(r.Context(), auth.UserIDFromContext(r.Context()))
	if err != nil {
		writeError(w, r, h.logger, "fetch user", err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *AuthHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	var req entity.UpdateUserRequest
	if err := readJSON(w, r, &req); err != nil {
		writeError(w, r, h.logger, "update user", err)
		return
	}

	user, err := h.userService.UpdateUser(r.Context(), auth.UserIDFromContext(r.Context()), &req)
	if err != nil {
		writeError(w, r, h.logger, "update user", err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}
