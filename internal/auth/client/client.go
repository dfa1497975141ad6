// Package client talks to the NEO QUIZ backend: registration, login, logout
// and the teacher list. Failures come back as coded errors whose message is
// ready to show on screen.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"neoquiz/internal/auth/models"
	"neoquiz/internal/credentials"
	"neoquiz/internal/platform/logger"
	"neoquiz/internal/platform/metrics"
	dErrors "neoquiz/pkg/domain-errors"
)

const (
	DefaultBaseURL = "http://localhost:8000/api/v1"
	DefaultTimeout = 10 * time.Second

	maxBodyBytes = 1 << 20
)

// MessageSessionNotSaved is shown when login succeeded but the token could
// not be persisted.
const MessageSessionNotSaved = "Could not save your session. Please try again."

type operation struct {
	name     string
	fallback string
	network  string
}

var (
	opRegister = operation{"register", "Registration failed", "Registration failed. Please check your connection."}
	opLogin    = operation{"login", "Invalid email or password", "Login failed. Please check your connection."}
	opLogout   = operation{"logout", "Logout failed", "Logout failed. Please try again."}
	opTeachers = operation{"getTeachers", "Failed to fetch teachers", "Failed to fetch teachers. Please check your connection."}
)

// Client is the Auth Client.
type Client struct {
	baseURL    string
	http       *http.Client
	timeout    time.Duration
	store      credentials.Store
	logger     *slog.Logger
	metrics    *metrics.Metrics
	tracer     trace.Tracer
	propagator propagation.TextMapPropagator
}

// Option configures a Client.
type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithTimeout sets the request timeout. New applies it to a copy of the
// HTTP client so a shared client is never changed.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

func WithTracer(t trace.Tracer) Option {
	return func(c *Client) {
		if t != nil {
			c.tracer = t
		}
	}
}

// WithPropagator sets how trace context is written into request headers.
func WithPropagator(p propagation.TextMapPropagator) Option {
	return func(c *Client) {
		if p != nil {
			c.propagator = p
		}
	}
}

// New builds a client for baseURL. An empty baseURL uses DefaultBaseURL.
func New(baseURL string, store credentials.Store, opts ...Option) (*Client, error) {
	if store == nil {
		return nil, errors.New("credential store is required")
	}
	base := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if base == "" {
		base = DefaultBaseURL
	}
	c := &Client{
		baseURL:    base,
		http:       &http.Client{Timeout: DefaultTimeout},
		store:      store,
		logger:     logger.Discard(),
		tracer:     otel.Tracer("neoquiz/internal/auth/client"),
		propagator: otel.GetTextMapPropagator(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.timeout > 0 {
		hc := *c.http
		hc.Timeout = c.timeout
		c.http = &hc
	}
	return c, nil
}

// Register creates an account. It does not sign the user in.
func (c *Client) Register(ctx context.Context, req models.RegisterRequest) (*models.RegisterResponse, error) {
	c.logger.InfoContext(ctx, "registering user",
		"email", req.Email,
		"role", req.Role,
		"name", strings.TrimSpace(req.FirstName+" "+req.LastName),
	)
	var resp models.RegisterResponse
	if err := c.do(ctx, opRegister, http.MethodPost, "/register", req, &resp); err != nil {
		return nil, err
	}
	c.logger.InfoContext(ctx, "registration successful", "user_id", resp.ID)
	return &resp, nil
}

// Login authenticates and persists the token, then the user. A persistence
// failure fails the login.
func (c *Client) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	c.logger.InfoContext(ctx, "logging in user", "email", req.Email)
	var resp models.LoginResponse
	if err := c.do(ctx, opLogin, http.MethodPost, "/auth/login", req, &resp); err != nil {
		return nil, err
	}
	if resp.AccessToken == "" {
		return nil, dErrors.New(dErrors.CodeInternal, opLogin.fallback)
	}

	if err := c.store.SaveToken(ctx, resp.AccessToken); err != nil {
		c.logger.ErrorContext(ctx, "failed to save token", "error", err)
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, MessageSessionNotSaved)
	}
	user := resp.User
	if err := c.store.SaveUser(ctx, &user); err != nil {
		c.logger.ErrorContext(ctx, "failed to save user", "error", err)
		if clearErr := c.store.ClearAll(ctx); clearErr != nil {
			c.logger.ErrorContext(ctx, "failed to clear credentials", "error", clearErr)
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, MessageSessionNotSaved)
	}

	c.logger.InfoContext(ctx, "login successful",
		"user_id", resp.User.ID,
		"role", resp.User.Role,
		"token_type", resp.TokenType,
	)
	return &resp, nil
}

// Logout tells the server when a token is held, then clears the store no
// matter what. A failed clear is logged, never returned. The returned error
// only reports the server call.
func (c *Client) Logout(ctx context.Context) error {
	c.logger.InfoContext(ctx, "logging out user")

	token, err := c.store.GetToken(ctx)
	if err != nil {
		c.logger.WarnContext(ctx, "failed to read token before logout", "error", err)
	}

	var callErr error
	if token != "" {
		callErr = c.do(ctx, opLogout, http.MethodPost, "/auth/logout", nil, nil)
		if callErr != nil {
			c.logger.WarnContext(ctx, "logout request failed", "error", callErr)
		}
	}

	if err := c.store.ClearAll(ctx); err != nil {
		c.logger.ErrorContext(ctx, "failed to clear credentials", "error", err)
	}
	return callErr
}

// GetTeachers lists the teachers a student can pick.
func (c *Client) GetTeachers(ctx context.Context) ([]models.Teacher, error) {
	var resp models.TeachersResponse
	if err := c.do(ctx, opTeachers, http.MethodGet, "/users/teachers", nil, &resp); err != nil {
		return nil, err
	}
	c.logger.DebugContext(ctx, "fetched teachers", "count", len(resp.Teachers))
	return resp.Teachers, nil
}

func (c *Client) do(ctx context.Context, op operation, method, path string, in, out any) (err error) {
	start := time.Now()
	outcome := "ok"
	ctx, span := c.tracer.Start(ctx, "auth."+op.name,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", method),
			attribute.String("url.path", path),
		),
	)
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, dErrors.UserMessage(err, op.fallback))
		}
		span.End()
		c.metrics.ObserveAPICall(op.name, outcome, start)
	}()

	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			outcome = "error"
			return dErrors.Wrap(err, dErrors.CodeInternal, op.fallback)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		outcome = "error"
		return dErrors.Wrap(err, dErrors.CodeInternal, op.fallback)
	}
	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if token, err := c.store.GetToken(ctx); err != nil {
		c.logger.WarnContext(ctx, "failed to read token", "error", err)
	} else if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	c.propagator.Inject(ctx, propagation.HeaderCarrier(req.Header))
	span.SetAttributes(attribute.String("request.id", requestID))

	c.logger.DebugContext(ctx, "api request", "method", method, "path", path, "request_id", requestID)

	resp, err := c.http.Do(req)
	if err != nil {
		outcome = "network"
		c.logger.ErrorContext(ctx, "api no response",
			"method", method,
			"path", path,
			"request_id", requestID,
			"error", err,
		)
		return dErrors.Wrap(err, dErrors.CodeUnavailable, op.network)
	}
	defer func() { _ = resp.Body.Close() }()
	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		outcome = "network"
		return dErrors.Wrap(err, dErrors.CodeUnavailable, op.network)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		outcome = "rejected"
		var envelope models.ErrorResponse
		_ = json.Unmarshal(raw, &envelope)
		msg := envelope.Text()
		if msg == "" {
			msg = op.fallback
		}
		c.logger.WarnContext(ctx, "api error response",
			"method", method,
			"path", path,
			"status", resp.StatusCode,
			"request_id", requestID,
		)
		return dErrors.Wrap(fmt.Errorf("%s %s: %s", method, path, resp.Status), codeForStatus(resp.StatusCode), msg)
	}

	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		outcome = "error"
		return dErrors.Wrap(err, dErrors.CodeInternal, op.fallback)
	}
	return nil
}

func codeForStatus(status int) dErrors.Code {
	switch {
	case status == http.StatusUnauthorized:
		return dErrors.CodeUnauthorized
	case status == http.StatusForbidden:
		return dErrors.CodeForbidden
	case status == http.StatusNotFound:
		return dErrors.CodeNotFound
	case status == http.StatusConflict:
		return dErrors.CodeConflict
	case status >= 500:
		return dErrors.CodeUnavailable
	}
	return dErrors.CodeBadRequest
}
