// Package service implements the mock API's account operations.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	authmodels "neoquiz/internal/auth/models"
	"neoquiz/internal/mockapi/models"
	"neoquiz/internal/mockapi/token"
	"neoquiz/internal/platform/logger"
	"neoquiz/internal/platform/metrics"
	"neoquiz/internal/platform/middleware"
	dErrors "neoquiz/pkg/domain-errors"
	"neoquiz/pkg/platform/sentinel"
	"neoquiz/pkg/requestcontext"
)

const (
	MinPasswordLength = 6

	MessageInvalidCredentials = "Invalid email or password"
	MessageEmailTaken         = "Email already registered"
	MessageTeacherNotFound    = "Selected teacher was not found"
)

type UserStore interface {
	Create(ctx context.Context, u *models.User) error
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	ListByRole(ctx context.Context, role models.Role) ([]*models.User, error)
	Count(ctx context.Context) (int, error)
}

// RevocationList remembers logged-out token ids until they would have
// expired anyway.
type RevocationList interface {
	RevokeToken(ctx context.Context, jti string, ttl time.Duration) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

type EventPublisher interface {
	Publish(ctx context.Context, event models.Event) error
}

type Service struct {
	users      UserStore
	revoked    RevocationList
	tokens     *token.Service
	events     EventPublisher
	logger     *slog.Logger
	metrics    *metrics.Metrics
	bcryptCost int
	now        func() time.Time
}

type Option func(*Service)

func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithEventPublisher(p EventPublisher) Option {
	return func(s *Service) {
		if p != nil {
			s.events = p
		}
	}
}

// WithBcryptCost lowers the hashing cost; tests use bcrypt.MinCost.
func WithBcryptCost(cost int) Option {
	return func(s *Service) {
		if cost >= bcrypt.MinCost && cost <= bcrypt.MaxCost {
			s.bcryptCost = cost
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

func New(users UserStore, revoked RevocationList, tokens *token.Service, opts ...Option) (*Service, error) {
	if users == nil {
		return nil, errors.New("users store is required")
	}
	if revoked == nil {
		return nil, errors.New("revocation list is required")
	}
	if tokens == nil {
		return nil, errors.New("token service is required")
	}
	s := &Service{
		users:      users,
		revoked:    revoked,
		tokens:     tokens,
		logger:     logger.Discard(),
		bcryptCost: bcrypt.DefaultCost,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.events == nil {
		s.events = noopPublisher{}
	}
	return s, nil
}

// Register creates a student or teacher account.
func (s *Service) Register(ctx context.Context, req authmodels.RegisterRequest) (*models.User, error) {
	u, err := s.newUser(ctx, req)
	if err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return nil, dErrors.New(dErrors.CodeValidation, "Password is too long")
		}
		return nil, fmt.Errorf("hash password: %w", err)
	}
	u.PasswordHash = string(hash)

	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeConflict, MessageEmailTaken)
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to save user")
	}

	s.metrics.IncUsersRegistered(string(u.Role))
	s.logger.InfoContext(ctx, "user registered",
		"request_id", requestcontext.RequestID(ctx),
		"user_id", u.ID,
		"role", u.Role,
	)
	s.publish(ctx, models.Event{Type: models.EventUserRegistered, UserID: u.ID, Email: u.Email, Role: u.Role})
	return u, nil
}

func (s *Service) newUser(ctx context.Context, req authmodels.RegisterRequest) (*models.User, error) {
	email := strings.TrimSpace(req.Email)
	if addr, err := mail.ParseAddress(email); err != nil || addr.Address != email {
		return nil, dErrors.New(dErrors.CodeValidation, "Please enter a valid email address")
	}
	role := models.Role(strings.ToLower(strings.TrimSpace(req.Role)))
	switch {
	case strings.TrimSpace(req.FirstName) == "" || strings.TrimSpace(req.LastName) == "":
		return nil, dErrors.New(dErrors.CodeValidation, "First and last name are required")
	case len(req.Password) < MinPasswordLength:
		return nil, dErrors.New(dErrors.CodeValidation, fmt.Sprintf("Password must be at least %d characters", MinPasswordLength))
	case !role.IsValid():
		return nil, dErrors.New(dErrors.CodeValidation, "Role must be student or teacher")
	case req.Age <= 0:
		return nil, dErrors.New(dErrors.CodeValidation, "Please enter a valid age")
	}

	u := &models.User{
		ID:           uuid.NewString(),
		Email:        email,
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		Role:         role,
		Age:          req.Age,
		Gender:       req.Gender,
		Organization: strings.TrimSpace(req.Organization),
		ProfileImage: req.ProfileImage,
		CreatedAt:    s.now().UTC(),
	}

	if role == models.RoleStudent {
		teacherID := strings.TrimSpace(req.TeacherID)
		if teacherID == "" {
			return nil, dErrors.New(dErrors.CodeValidation, "Students must select a teacher")
		}
		teacher, err := s.users.FindByID(ctx, teacherID)
		if err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return nil, dErrors.New(dErrors.CodeValidation, MessageTeacherNotFound)
			}
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up teacher")
		}
		if teacher.Role != models.RoleTeacher {
			return nil, dErrors.New(dErrors.CodeValidation, MessageTeacherNotFound)
		}
		u.TeacherID = teacher.ID
	}
	return u, nil
}

// Login checks the password and issues an access token. platform describes
// the calling device and is only logged.
func (s *Service) Login(ctx context.Context, req authmodels.LoginRequest, platform string) (*authmodels.LoginResponse, error) {
	u, err := s.users.FindByEmail(ctx, strings.TrimSpace(req.Email))
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeUnauthorized, MessageInvalidCredentials)
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up user")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)); err != nil {
		s.logger.WarnContext(ctx, "login rejected",
			"request_id", requestcontext.RequestID(ctx),
			"user_id", u.ID,
		)
		return nil, dErrors.New(dErrors.CodeUnauthorized, MessageInvalidCredentials)
	}

	signed, _, err := s.tokens.Issue(u.ID, string(u.Role))
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to issue token")
	}

	s.logger.InfoContext(ctx, "user logged in",
		"request_id", requestcontext.RequestID(ctx),
		"user_id", u.ID,
		"platform", platform,
		"client_ip", requestcontext.ClientIP(ctx),
	)
	s.publish(ctx, models.Event{Type: models.EventUserLoggedIn, UserID: u.ID, Email: u.Email, Role: u.Role, Platform: platform})

	return &authmodels.LoginResponse{
		AccessToken: signed,
		TokenType:   "bearer",
		User:        toWireUser(u),
	}, nil
}

// Logout revokes the calling token for the rest of its lifetime.
func (s *Service) Logout(ctx context.Context) error {
	p, ok := requestcontext.CurrentPrincipal(ctx)
	if !ok {
		return dErrors.New(dErrors.CodeUnauthorized, "Not authenticated")
	}
	if ttl := p.ExpiresAt.Sub(s.now()); ttl > 0 {
		if err := s.revoked.RevokeToken(ctx, p.TokenID, ttl); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to revoke token")
		}
	}
	s.logger.InfoContext(ctx, "user logged out",
		"request_id", requestcontext.RequestID(ctx),
		"user_id", p.UserID,
	)
	s.publish(ctx, models.Event{Type: models.EventUserLoggedOut, UserID: p.UserID})
	return nil
}

// Teachers lists every teacher account, oldest first.
func (s *Service) Teachers(ctx context.Context) ([]authmodels.Teacher, error) {
	teachers, err := s.users.ListByRole(ctx, models.RoleTeacher)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list teachers")
	}
	out := make([]authmodels.Teacher, 0, len(teachers))
	for _, t := range teachers {
		out = append(out, authmodels.Teacher{
			ID:           t.ID,
			Email:        t.Email,
			FirstName:    t.FirstName,
			LastName:     t.LastName,
			Organization: t.Organization,
		})
	}
	return out, nil
}

// ValidateToken lets the auth middleware accept only unexpired tokens that
// were not logged out.
func (s *Service) ValidateToken(ctx context.Context, tokenString string) (*middleware.TokenClaims, error) {
	claims, err := s.tokens.Parse(tokenString)
	if err != nil {
		return nil, err
	}
	revoked, err := s.revoked.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to check token revocation")
	}
	if revoked {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "token has been revoked")
	}
	return &middleware.TokenClaims{
		UserID:    claims.UserID,
		TokenID:   claims.ID,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

func (s *Service) publish(ctx context.Context, e models.Event) {
	e.ID = uuid.NewString()
	e.RequestID = requestcontext.RequestID(ctx)
	e.OccurredAt = s.now().UTC()
	if err := s.events.Publish(ctx, e); err != nil {
		s.logger.WarnContext(ctx, "failed to publish account event",
			"request_id", e.RequestID,
			"type", e.Type,
			"error", err,
		)
	}
}

func toWireUser(u *models.User) authmodels.User {
	return authmodels.User{
		ID:        u.ID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Role:      string(u.Role),
	}
}

type noopPublisher struct{}

func (noopPublisher) Publish(context.Context, models.Event) error { return nil }
