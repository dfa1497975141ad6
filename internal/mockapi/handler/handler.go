// Package handler exposes the mock API over HTTP under /api/v1.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/mssola/useragent"

	authmodels "neoquiz/internal/auth/models"
	"neoquiz/internal/mockapi/models"
	"neoquiz/internal/platform/metrics"
	"neoquiz/internal/platform/middleware"
	dErrors "neoquiz/pkg/domain-errors"
	"neoquiz/pkg/platform/httputil"
	"neoquiz/pkg/requestcontext"
)

const maxBodyBytes = 1 << 20

// Service defines the account operations the handler serves.
type Service interface {
	Register(ctx context.Context, req authmodels.RegisterRequest) (*models.User, error)
	Login(ctx context.Context, req authmodels.LoginRequest, platform string) (*authmodels.LoginResponse, error)
	Logout(ctx context.Context) error
	Teachers(ctx context.Context) ([]authmodels.Teacher, error)
}

type Handler struct {
	logger    *slog.Logger
	svc       Service
	metrics   *metrics.Metrics
	validator middleware.TokenValidator
}

func New(svc Service, validator middleware.TokenValidator, logger *slog.Logger, m *metrics.Metrics) *Handler {
	return &Handler{
		logger:    logger,
		svc:       svc,
		metrics:   m,
		validator: validator,
	}
}

// Router builds the full mock API: health check plus the /api/v1 routes.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recovery(h.logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.ClientMetadata)
	r.Use(middleware.Logger(h.logger))
	r.Use(middleware.Latency(h.metrics))

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		httputil.WriteError(w, dErrors.New(dErrors.CodeNotFound, "Not found"))
	})
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Route("/api/v1", h.Register)
	return r
}

// Register registers the account routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Use(middleware.ContentTypeJSON)
	r.Post("/register", h.handleRegister)
	r.Post("/auth/login", h.handleLogin)
	r.With(middleware.RequireAuth(h.validator, h.logger)).Post("/auth/logout", h.handleLogout)
	r.Get("/users/teachers", h.handleTeachers)
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req authmodels.RegisterRequest
	if !h.decode(w, r, &req) {
		return
	}

	u, err := h.svc.Register(ctx, req)
	if err != nil {
		h.fail(ctx, w, "register failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, authmodels.RegisterResponse{
		ID:        u.ID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Role:      string(u.Role),
	})
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req authmodels.LoginRequest
	if !h.decode(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "Email and password are required"))
		return
	}

	resp, err := h.svc.Login(ctx, req, platformOf(requestcontext.UserAgent(ctx)))
	if err != nil {
		h.fail(ctx, w, "login failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := h.svc.Logout(ctx); err != nil {
		h.fail(ctx, w, "logout failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"message": "Logged out"})
}

func (h *Handler) handleTeachers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	teachers, err := h.svc.Teachers(ctx)
	if err != nil {
		h.fail(ctx, w, "list teachers failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, authmodels.TeachersResponse{Teachers: teachers})
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	ctx := r.Context()
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v); err != nil {
		h.logger.WarnContext(ctx, "invalid request body",
			"request_id", requestcontext.RequestID(ctx),
			"error", err.Error(),
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "Invalid request body"))
		return false
	}
	return true
}

// fail logs server-side failures at error level and client mistakes at warn.
func (h *Handler) fail(ctx context.Context, w http.ResponseWriter, msg string, err error) {
	level := slog.LevelWarn
	if dErrors.CodeOf(err) == dErrors.CodeInternal {
		level = slog.LevelError
	}
	h.logger.Log(ctx, level, msg,
		"request_id", requestcontext.RequestID(ctx),
		"error", err.Error(),
	)
	httputil.WriteError(w, err)
}

// platformOf summarises a User-Agent as "os/browser".
func platformOf(ua string) string {
	if strings.TrimSpace(ua) == "" {
		return "unknown"
	}
	parsed := useragent.New(ua)
	if parsed.Bot() {
		return "bot"
	}
	browser, _ := parsed.Browser()
	os := parsed.OS()
	switch {
	case os == "" && browser == "":
		return "unknown"
	case os == "":
		return browser
	case browser == "":
		return os
	}
	return os + "/" + browser
}

