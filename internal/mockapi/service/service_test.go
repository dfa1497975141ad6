package service

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks UserStore,EventPublisher

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
	"golang.org/x/crypto/bcrypt"

	authmodels "neoquiz/internal/auth/models"
	"neoquiz/internal/mockapi/models"
	"neoquiz/internal/mockapi/service/mocks"
	"neoquiz/internal/mockapi/store/revocation"
	"neoquiz/internal/mockapi/store/user"
	"neoquiz/internal/mockapi/token"
	"neoquiz/internal/platform/metrics"
	dErrors "neoquiz/pkg/domain-errors"
	"neoquiz/pkg/requestcontext"
)

type ServiceSuite struct {
	suite.Suite
	ctx     context.Context
	now     time.Time
	users   *user.InMemoryStore
	trl     *revocation.InMemoryTRL
	tokens  *token.Service
	events  *mocks.MockEventPublisher
	metrics *metrics.Metrics
	svc     *Service
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.ctx = requestcontext.WithRequestID(context.Background(), "req-1")
	s.now = time.Date(2026, 4, 1, 8, 0, 0, 0, time.UTC)
	clock := func() time.Time { return s.now }

	s.users = user.NewInMemory()
	s.trl = revocation.NewInMemoryTRL(revocation.WithClock(clock))
	tokens, err := token.New("test-key", time.Hour, token.WithClock(clock))
	s.Require().NoError(err)
	s.tokens = tokens
	s.events = mocks.NewMockEventPublisher(gomock.NewController(s.T()))
	s.metrics = metrics.New(prometheus.NewRegistry())

	svc, err := New(s.users, s.trl, s.tokens,
		WithEventPublisher(s.events),
		WithMetrics(s.metrics),
		WithBcryptCost(bcrypt.MinCost),
		WithClock(clock),
	)
	s.Require().NoError(err)
	s.svc = svc
}

func (s *ServiceSuite) quietEvents() {
	s.events.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
}

func teacherRequest(email string) authmodels.RegisterRequest {
	return authmodels.RegisterRequest{
		Email:        email,
		FirstName:    "Grace",
		LastName:     "Hopper",
		Password:     "secret1",
		Role:         "teacher",
		Age:          40,
		Gender:       "female",
		Organization: "Navy",
	}
}

func studentRequest(email, teacherID string) authmodels.RegisterRequest {
	return authmodels.RegisterRequest{
		Email:        email,
		FirstName:    "Ada",
		LastName:     "Lovelace",
		Password:     "secret1",
		Role:         "student",
		TeacherID:    teacherID,
		Age:          16,
		Organization: "Analytical Society",
		ProfileImage: "avatar-3",
	}
}

func (s *ServiceSuite) TestNew_RequiresCollaborators() {
	_, err := New(nil, s.trl, s.tokens)
	s.Error(err)
	_, err = New(s.users, nil, s.tokens)
	s.Error(err)
	_, err = New(s.users, s.trl, nil)
	s.Error(err)
}

func (s *ServiceSuite) TestRegisterTeacher() {
	s.events.EXPECT().Publish(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, e models.Event) error {
			s.Equal(models.EventUserRegistered, e.Type)
			s.Equal(models.RoleTeacher, e.Role)
			s.Equal("req-1", e.RequestID)
			s.Equal(s.now, e.OccurredAt)
			s.NotEmpty(e.ID)
			return nil
		})

	u, err := s.svc.Register(s.ctx, teacherRequest("grace@example.com"))
	s.Require().NoError(err)
	s.NotEmpty(u.ID)
	s.Equal(models.RoleTeacher, u.Role)
	s.Empty(u.TeacherID)
	s.NotEqual("secret1", u.PasswordHash)
	s.NoError(bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("secret1")))
	s.Equal(1.0, promtest.ToFloat64(s.metrics.UsersRegistered.WithLabelValues("teacher")))
}

func (s *ServiceSuite) TestRegisterStudent() {
	s.quietEvents()
	teacher, err := s.svc.Register(s.ctx, teacherRequest("grace@example.com"))
	s.Require().NoError(err)

	s.Run("links the chosen teacher", func() {
		u, err := s.svc.Register(s.ctx, studentRequest("ada@example.com", teacher.ID))
		s.Require().NoError(err)
		s.Equal(teacher.ID, u.TeacherID)
		s.Equal("avatar-3", u.ProfileImage)
	})

	s.Run("teacher is required", func() {
		_, err := s.svc.Register(s.ctx, studentRequest("bob@example.com", ""))
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("unknown teacher", func() {
		_, err := s.svc.Register(s.ctx, studentRequest("bob@example.com", "nope"))
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
		s.Equal(MessageTeacherNotFound, dErrors.UserMessage(err, ""))
	})

	s.Run("a student is not a teacher", func() {
		student, err := s.users.FindByEmail(s.ctx, "ada@example.com")
		s.Require().NoError(err)
		_, err = s.svc.Register(s.ctx, studentRequest("bob@example.com", student.ID))
		s.Equal(MessageTeacherNotFound, dErrors.UserMessage(err, ""))
	})
}

func (s *ServiceSuite) TestRegisterDuplicateEmail() {
	s.quietEvents()
	_, err := s.svc.Register(s.ctx, teacherRequest("grace@example.com"))
	s.Require().NoError(err)

	_, err = s.svc.Register(s.ctx, teacherRequest("Grace@Example.com"))
	s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	s.Equal(MessageEmailTaken, dErrors.UserMessage(err, ""))
}

func (s *ServiceSuite) TestRegisterValidation() {
	tests := []struct {
		name   string
		mutate func(*authmodels.RegisterRequest)
	}{
		{"bad email", func(r *authmodels.RegisterRequest) { r.Email = "grace" }},
		{"missing first name", func(r *authmodels.RegisterRequest) { r.FirstName = " " }},
		{"short password", func(r *authmodels.RegisterRequest) { r.Password = "abc" }},
		{"unknown role", func(r *authmodels.RegisterRequest) { r.Role = "admin" }},
		{"no age", func(r *authmodels.RegisterRequest) { r.Age = 0 }},
	}
	for _, tt := range tests {
		s.Run(tt.name, func() {
			req := teacherRequest("grace@example.com")
			tt.mutate(&req)
			_, err := s.svc.Register(s.ctx, req)
			s.True(dErrors.HasCode(err, dErrors.CodeValidation), "got %v", err)
		})
	}
}

func (s *ServiceSuite) TestRegisterStoreFailure() {
	ctrl := gomock.NewController(s.T())
	users := mocks.NewMockUserStore(ctrl)
	users.EXPECT().Create(gomock.Any(), gomock.Any()).Return(errors.New("disk full"))

	svc, err := New(users, s.trl, s.tokens, WithBcryptCost(bcrypt.MinCost))
	s.Require().NoError(err)

	_, err = svc.Register(s.ctx, teacherRequest("grace@example.com"))
	s.True(dErrors.HasCode(err, dErrors.CodeInternal))
}

func (s *ServiceSuite) TestPublishFailureDoesNotFailRegistration() {
	s.events.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(errors.New("broker down"))

	_, err := s.svc.Register(s.ctx, teacherRequest("grace@example.com"))
	s.NoError(err)
}

func (s *ServiceSuite) TestLogin() {
	s.quietEvents()
	registered, err := s.svc.Register(s.ctx, teacherRequest("grace@example.com"))
	s.Require().NoError(err)

	s.Run("issues a bearer token for the account", func() {
		resp, err := s.svc.Login(s.ctx, authmodels.LoginRequest{Email: " GRACE@example.com", Password: "secret1"}, "Linux/Firefox")
		s.Require().NoError(err)
		s.Equal("bearer", resp.TokenType)
		s.Equal(registered.ID, resp.User.ID)
		s.Equal("teacher", resp.User.Role)

		claims, err := s.svc.ValidateToken(s.ctx, resp.AccessToken)
		s.Require().NoError(err)
		s.Equal(registered.ID, claims.UserID)
		s.WithinDuration(s.now.Add(time.Hour), claims.ExpiresAt, 0)
	})

	s.Run("wrong password and unknown email look the same", func() {
		_, err := s.svc.Login(s.ctx, authmodels.LoginRequest{Email: "grace@example.com", Password: "nope"}, "")
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
		s.Equal(MessageInvalidCredentials, dErrors.UserMessage(err, ""))

		_, err = s.svc.Login(s.ctx, authmodels.LoginRequest{Email: "who@example.com", Password: "secret1"}, "")
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
		s.Equal(MessageInvalidCredentials, dErrors.UserMessage(err, ""))
	})
}

func (s *ServiceSuite) TestLoginPublishesPlatform() {
	s.events.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(nil)
	_, err := s.svc.Register(s.ctx, teacherRequest("grace@example.com"))
	s.Require().NoError(err)

	s.events.EXPECT().Publish(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, e models.Event) error {
			s.Equal(models.EventUserLoggedIn, e.Type)
			s.Equal("Android/Chrome", e.Platform)
			return nil
		})
	_, err = s.svc.Login(s.ctx, authmodels.LoginRequest{Email: "grace@example.com", Password: "secret1"}, "Android/Chrome")
	s.NoError(err)
}

func (s *ServiceSuite) TestLogoutRevokesToken() {
	s.quietEvents()
	_, err := s.svc.Register(s.ctx, teacherRequest("grace@example.com"))
	s.Require().NoError(err)
	resp, err := s.svc.Login(s.ctx, authmodels.LoginRequest{Email: "grace@example.com", Password: "secret1"}, "")
	s.Require().NoError(err)

	claims, err := s.svc.ValidateToken(s.ctx, resp.AccessToken)
	s.Require().NoError(err)

	authed := requestcontext.WithPrincipal(s.ctx, claims.UserID, claims.TokenID, claims.ExpiresAt)
	s.Require().NoError(s.svc.Logout(authed))

	_, err = s.svc.ValidateToken(s.ctx, resp.AccessToken)
	s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))

	s.Run("a second token for the same user still works", func() {
		again, err := s.svc.Login(s.ctx, authmodels.LoginRequest{Email: "grace@example.com", Password: "secret1"}, "")
		s.Require().NoError(err)
		_, err = s.svc.ValidateToken(s.ctx, again.AccessToken)
		s.NoError(err)
	})

	s.Run("requires a principal", func() {
		err := s.svc.Logout(s.ctx)
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})
}

func (s *ServiceSuite) TestTeachersAndSeeding() {
	s.quietEvents()

	n, err := s.svc.SeedTeachers(s.ctx, DefaultTeachers)
	s.Require().NoError(err)
	s.Equal(len(DefaultTeachers), n)

	n, err = s.svc.SeedTeachers(s.ctx, DefaultTeachers)
	s.Require().NoError(err)
	s.Zero(n)

	teachers, err := s.svc.Teachers(s.ctx)
	s.Require().NoError(err)
	var got, want []string
	for _, t := range teachers {
		got = append(got, t.Email)
	}
	for _, t := range DefaultTeachers {
		want = append(want, t.Email)
	}
	s.ElementsMatch(want, got)

	_, err = s.svc.Login(s.ctx, authmodels.LoginRequest{Email: DefaultTeachers[0].Email, Password: DefaultSeedPassword}, "")
	s.NoError(err)
}
