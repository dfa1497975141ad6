package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/suite"
	"golang.org/x/crypto/bcrypt"

	"neoquiz/internal/auth/client"
	authmodels "neoquiz/internal/auth/models"
	"neoquiz/internal/credentials"
	"neoquiz/internal/mockapi/handler"
	"neoquiz/internal/mockapi/service"
	"neoquiz/internal/mockapi/store/revocation"
	"neoquiz/internal/mockapi/store/user"
	"neoquiz/internal/mockapi/token"
	"neoquiz/internal/platform/logger"
	"neoquiz/internal/platform/metrics"
	dErrors "neoquiz/pkg/domain-errors"
	"neoquiz/pkg/platform/httputil"
)

type HandlerSuite struct {
	suite.Suite
	ctx    context.Context
	svc    *service.Service
	server *httptest.Server
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) SetupTest() {
	s.ctx = context.Background()
	tokens, err := token.New("test-key", time.Hour)
	s.Require().NoError(err)
	m := metrics.New(prometheus.NewRegistry())

	svc, err := service.New(user.NewInMemory(), revocation.NewInMemoryTRL(), tokens,
		service.WithBcryptCost(bcrypt.MinCost),
		service.WithMetrics(m),
	)
	s.Require().NoError(err)
	s.svc = svc

	h := handler.New(svc, svc, logger.Discard(), m)
	s.server = httptest.NewServer(h.Router())
}

func (s *HandlerSuite) TearDownTest() {
	s.server.Close()
}

func (s *HandlerSuite) do(method, path, bearer string, body any) (*http.Response, httputil.ErrorBody) {
	var buf bytes.Buffer
	if body != nil {
		s.Require().NoError(json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequestWithContext(s.ctx, method, s.server.URL+path, &buf)
	s.Require().NoError(err)
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	resp, err := http.DefaultClient.Do(req)
	s.Require().NoError(err)
	defer resp.Body.Close()

	var envelope httputil.ErrorBody
	if resp.StatusCode >= 400 {
		s.Require().NoError(json.NewDecoder(resp.Body).Decode(&envelope))
	}
	return resp, envelope
}

func (s *HandlerSuite) seed() string {
	_, err := s.svc.SeedTeachers(s.ctx, service.DefaultTeachers[:1])
	s.Require().NoError(err)
	teachers, err := s.svc.Teachers(s.ctx)
	s.Require().NoError(err)
	return teachers[0].ID
}

func (s *HandlerSuite) TestHealth() {
	resp, _ := s.do(http.MethodGet, "/healthz", "", nil)
	s.Equal(http.StatusOK, resp.StatusCode)
	s.NotEmpty(resp.Header.Get("X-Request-ID"))
}

func (s *HandlerSuite) TestUnknownRoute() {
	resp, body := s.do(http.MethodGet, "/api/v1/nope", "", nil)
	s.Equal(http.StatusNotFound, resp.StatusCode)
	s.Equal(string(dErrors.CodeNotFound), body.Error)
}

func (s *HandlerSuite) TestRegisterErrors() {
	teacherID := s.seed()
	student := authmodels.RegisterRequest{
		Email: "ada@example.com", FirstName: "Ada", LastName: "Lovelace",
		Password: "secret1", Role: "student", TeacherID: teacherID, Age: 16,
	}

	resp, _ := s.do(http.MethodPost, "/api/v1/register", "", student)
	s.Require().Equal(http.StatusCreated, resp.StatusCode)

	s.Run("duplicate email", func() {
		resp, body := s.do(http.MethodPost, "/api/v1/register", "", student)
		s.Equal(http.StatusConflict, resp.StatusCode)
		s.Equal(service.MessageEmailTaken, body.Message)
	})

	s.Run("malformed body", func() {
		req, err := http.NewRequest(http.MethodPost, s.server.URL+"/api/v1/register", bytes.NewBufferString("{"))
		s.Require().NoError(err)
		req.Header.Set("Content-Type", "application/json")
		resp, err := http.DefaultClient.Do(req)
		s.Require().NoError(err)
		defer resp.Body.Close()
		s.Equal(http.StatusBadRequest, resp.StatusCode)
	})

	s.Run("not json", func() {
		resp, err := http.Post(s.server.URL+"/api/v1/register", "text/plain", bytes.NewBufferString("hello"))
		s.Require().NoError(err)
		defer resp.Body.Close()
		s.Equal(http.StatusUnsupportedMediaType, resp.StatusCode)
	})
}

func (s *HandlerSuite) TestLoginErrors() {
	s.seed()

	resp, body := s.do(http.MethodPost, "/api/v1/auth/login", "", authmodels.LoginRequest{Email: service.DefaultTeachers[0].Email, Password: "wrong"})
	s.Equal(http.StatusUnauthorized, resp.StatusCode)
	s.Equal(service.MessageInvalidCredentials, body.Message)

	resp, _ = s.do(http.MethodPost, "/api/v1/auth/login", "", authmodels.LoginRequest{})
	s.Equal(http.StatusBadRequest, resp.StatusCode)
}

func (s *HandlerSuite) TestLogoutRequiresValidToken() {
	resp, body := s.do(http.MethodPost, "/api/v1/auth/logout", "", nil)
	s.Equal(http.StatusUnauthorized, resp.StatusCode)
	s.NotEmpty(body.Message)

	resp, _ = s.do(http.MethodPost, "/api/v1/auth/logout", "garbage", nil)
	s.Equal(http.StatusUnauthorized, resp.StatusCode)
}

// TestClientRoundTrip drives the real Auth Client against the mock API.
func (s *HandlerSuite) TestClientRoundTrip() {
	teacherID := s.seed()
	store := credentials.NewInMemory()
	c, err := client.New(s.server.URL+"/api/v1", store)
	s.Require().NoError(err)

	teachers, err := c.GetTeachers(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(teachers, 1)
	s.Equal(teacherID, teachers[0].ID)

	reg, err := c.Register(s.ctx, authmodels.RegisterRequest{
		Email: "ada@example.com", FirstName: "Ada", LastName: "Lovelace",
		Password: "secret1", Role: "student", TeacherID: teacherID, Age: 16,
		ProfileImage: "avatar-3",
	})
	s.Require().NoError(err)
	s.Equal("student", reg.Role)

	_, err = c.Login(s.ctx, authmodels.LoginRequest{Email: "ada@example.com", Password: "nope"})
	s.Require().Error(err)
	s.Equal(service.MessageInvalidCredentials, dErrors.UserMessage(err, ""))

	login, err := c.Login(s.ctx, authmodels.LoginRequest{Email: "ada@example.com", Password: "secret1"})
	s.Require().NoError(err)
	s.Equal(reg.ID, login.User.ID)

	tok, err := store.GetToken(s.ctx)
	s.Require().NoError(err)
	s.Equal(login.AccessToken, tok)

	s.Require().NoError(c.Logout(s.ctx))
	tok, err = store.GetToken(s.ctx)
	s.Require().NoError(err)
	s.Empty(tok)

	// the revoked token is refused afterwards
	resp, _ := s.do(http.MethodPost, "/api/v1/auth/logout", login.AccessToken, nil)
	s.Equal(http.StatusUnauthorized, resp.StatusCode)
}
