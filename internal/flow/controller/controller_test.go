package controller

//go:generate mockgen -source=ports.go -destination=mocks/mocks.go -package=mocks AuthClient

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	authmodels "neoquiz/internal/auth/models"
	"neoquiz/internal/flow/controller/mocks"
	"neoquiz/internal/flow/models"
	"neoquiz/internal/flow/service"
	"neoquiz/internal/flow/timer"
	"neoquiz/internal/platform/metrics"
	dErrors "neoquiz/pkg/domain-errors"
)

type fakeTimer struct {
	delay time.Duration
	fn    func()
}

func (*fakeTimer) Stop() bool { return true }

// fakeClock never fires on its own. Stopped timers stay in the list so tests
// can model a callback that raced past Stop.
type fakeClock struct {
	mu     sync.Mutex
	timers []*fakeTimer
}

func (c *fakeClock) afterFunc(d time.Duration, f func()) timer.Stopper {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{delay: d, fn: f}
	c.timers = append(c.timers, t)
	return t
}

func (c *fakeClock) last() *fakeTimer {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.timers) == 0 {
		return nil
	}
	return c.timers[len(c.timers)-1]
}

func (c *fakeClock) fireAll() {
	c.mu.Lock()
	timers := append([]*fakeTimer(nil), c.timers...)
	c.mu.Unlock()
	for _, t := range timers {
		t.fn()
	}
}

type ControllerSuite struct {
	suite.Suite
	ctx     context.Context
	ctrl    *gomock.Controller
	auth    *mocks.MockAuthClient
	clock   *fakeClock
	metrics *metrics.Metrics
	c       *Controller
}

func TestControllerSuite(t *testing.T) {
	suite.Run(t, new(ControllerSuite))
}

func (s *ControllerSuite) SetupTest() {
	s.ctx = context.Background()
	s.ctrl = gomock.NewController(s.T())
	s.auth = mocks.NewMockAuthClient(s.ctrl)
	s.clock = &fakeClock{}
	s.metrics = metrics.New(prometheus.NewRegistry())

	c, err := New(s.auth,
		WithScheduler(timer.New(timer.WithAfterFunc(s.clock.afterFunc))),
		WithMetrics(s.metrics),
	)
	s.Require().NoError(err)
	s.c = c
}

func (s *ControllerSuite) TearDownTest() {
	s.c.Close()
}

func (s *ControllerSuite) start(p models.Params) {
	_, err := s.c.Start(models.MustRoute(p))
	s.Require().NoError(err)
}

func (s *ControllerSuite) dispatch(action models.Action) State {
	st, err := s.c.Dispatch(s.ctx, action)
	s.Require().NoError(err)
	return st
}

func details(role models.Role) models.SubmitDetails {
	return models.SubmitDetails{
		FirstName:       "Ada",
		LastName:        "Lovelace",
		Age:             "36",
		Organization:    "Analytical Society",
		Gender:          models.GenderFemale,
		Role:            role,
		Password:        "secret1",
		ConfirmPassword: "secret1",
	}
}

func registerRequest(role models.Role) authmodels.RegisterRequest {
	return authmodels.RegisterRequest{
		Email:        "ada@example.com",
		FirstName:    "Ada",
		LastName:     "Lovelace",
		Password:     "secret1",
		Role:         role.String(),
		Age:          36,
		Gender:       "female",
		Organization: "Analytical Society",
	}
}

var teacherList = []authmodels.Teacher{
	{ID: "t-1", Email: "grace@example.com", FirstName: "Grace", LastName: "Hopper", Organization: "Navy"},
	{ID: "t-2", Email: "alan@example.com", FirstName: "Alan", LastName: "Turing"},
}

func (s *ControllerSuite) TestNew_RequiresAuthClient() {
	_, err := New(nil)
	s.Error(err)
}

func (s *ControllerSuite) TestDispatch_BeforeStart() {
	_, err := s.c.Dispatch(s.ctx, models.GetStarted{})
	s.True(dErrors.HasCode(err, dErrors.CodeInvalidState))
}

func (s *ControllerSuite) TestSplashAdvancesOnce() {
	s.start(models.SplashParams{})

	t := s.clock.last()
	s.Require().NotNil(t)
	s.Equal(DefaultSplashDelay, t.delay)

	s.clock.fireAll()
	s.clock.fireAll()

	st := s.c.State()
	s.Equal(models.ScreenOnboarding, st.Screen())
	s.Equal(1, st.Depth)
	s.Equal(1.0, promtest.ToFloat64(s.metrics.Transitions.WithLabelValues("Splash", "Onboarding", "replace")))
}

func (s *ControllerSuite) TestTimerDoesNotFireAfterScreenIsLeft() {
	s.start(models.SplashParams{})
	s.start(models.LoginParams{})

	// the Splash callback runs anyway, as if it raced past Stop
	s.clock.timers[0].fn()

	s.Equal(models.ScreenLogin, s.c.State().Screen())
}

func (s *ControllerSuite) TestTimerForReplacedInstanceIsIgnored() {
	s.start(models.SplashParams{})
	stale := s.clock.last().fn
	s.start(models.SplashParams{})

	stale()
	s.Equal(models.ScreenSplash, s.c.State().Screen())

	s.clock.last().fn()
	s.Equal(models.ScreenOnboarding, s.c.State().Screen())
}

func (s *ControllerSuite) TestTeacherSignup() {
	s.Run("given a teacher on ProfilePicture", func() {
		s.start(models.RegisterParams{})
		s.dispatch(models.SubmitEmail{Email: "ada@example.com"})
		st := s.dispatch(details(models.RoleTeacher))
		s.Require().Equal(models.ScreenProfilePicture, st.Screen())
	})

	s.Run("when registration succeeds, then Welcome is shown", func() {
		s.auth.EXPECT().Register(gomock.Any(), registerRequest(models.RoleTeacher)).
			Return(&authmodels.RegisterResponse{ID: "u-1", Role: "teacher"}, nil)

		st := s.dispatch(models.ContinueToWelcome{})
		s.Equal(models.ScreenWelcome, st.Screen())
		s.False(st.Loading)
		s.Equal(DefaultWelcomeDelay, s.clock.last().delay)
	})

	s.Run("then the timer lands on the teacher Home as the only screen", func() {
		s.clock.last().fn()

		st := s.c.State()
		s.Equal(models.ScreenHome, st.Screen())
		s.Equal(1, st.Depth)
		p, ok := models.ParamsAs[models.HomeParams](st.Route)
		s.Require().True(ok)
		s.Equal(models.RoleTeacher, p.Role)
	})
}

func (s *ControllerSuite) TestStudentSignup() {
	s.auth.EXPECT().GetTeachers(gomock.Any()).Return(teacherList, nil)

	s.start(models.RegisterParams{})
	s.dispatch(models.SubmitEmail{Email: "ada@example.com"})
	st := s.dispatch(details(models.RoleStudent))
	s.Require().Equal(models.ScreenTeacherSelection, st.Screen())
	s.True(st.TeachersLoaded)
	s.Len(st.Teachers, 2)
	s.Equal("Grace Hopper", st.Teachers[0].DisplayName())

	s.Run("no teacher picked", func() {
		st := s.dispatch(models.ContinueWithTeacher{})
		s.Equal(models.ScreenTeacherSelection, st.Screen())
		s.Equal(service.NoticeTeacherRequired, st.Notice)
	})

	s.Run("teacher not in the list", func() {
		st := s.dispatch(models.ContinueWithTeacher{TeacherID: "t-9"})
		s.Equal(models.ScreenTeacherSelection, st.Screen())
		s.Equal(service.NoticeTeacherRequired, st.Notice)
	})

	st = s.dispatch(models.ContinueWithTeacher{TeacherID: "t-1"})
	s.Require().Equal(models.ScreenProfilePicture, st.Screen())
	st = s.dispatch(models.ChooseFromAvatar{})
	s.Require().Equal(models.ScreenAvatarSelection, st.Screen())

	want := registerRequest(models.RoleStudent)
	want.TeacherID = "t-1"
	want.ProfileImage = "avatar-3"
	s.auth.EXPECT().Register(gomock.Any(), want).Return(&authmodels.RegisterResponse{ID: "u-2"}, nil)

	st = s.dispatch(models.LetsGo{Avatar: "avatar-3"})
	s.Equal(models.ScreenWelcome, st.Screen())
}

func (s *ControllerSuite) TestTeachersFailThenRetry() {
	gomock.InOrder(
		s.auth.EXPECT().GetTeachers(gomock.Any()).
			Return(nil, dErrors.New(dErrors.CodeUnavailable, "Failed to fetch teachers. Please check your connection.")),
		s.auth.EXPECT().GetTeachers(gomock.Any()).Return(teacherList, nil),
	)

	s.start(models.RegisterParams{})
	s.dispatch(models.SubmitEmail{Email: "ada@example.com"})
	st := s.dispatch(details(models.RoleStudent))
	s.Equal(models.ScreenTeacherSelection, st.Screen())
	s.False(st.TeachersLoaded)
	s.Equal("Failed to fetch teachers. Please check your connection.", st.Notice)

	st = s.dispatch(models.ContinueWithTeacher{TeacherID: "t-1"})
	s.Equal(models.ScreenTeacherSelection, st.Screen())
	s.Equal(service.NoticeTeachersFailed, st.Notice)

	st = s.dispatch(models.RetryTeachers{})
	s.True(st.TeachersLoaded)
	s.Empty(st.Notice)

	st = s.dispatch(models.ContinueWithTeacher{TeacherID: "t-1"})
	s.Equal(models.ScreenProfilePicture, st.Screen())
}

func (s *ControllerSuite) TestRegistrationFailureStays() {
	s.auth.EXPECT().Register(gomock.Any(), gomock.Any()).
		Return(nil, dErrors.New(dErrors.CodeConflict, "Email already registered"))

	s.start(models.RegisterParams{})
	s.dispatch(models.SubmitEmail{Email: "ada@example.com"})
	s.dispatch(details(models.RoleTeacher))

	st := s.dispatch(models.ContinueToWelcome{})
	s.Equal(models.ScreenProfilePicture, st.Screen())
	s.Equal("Email already registered", st.Notice)
	s.False(st.Loading)
}

func (s *ControllerSuite) TestLoginUsesServerRole() {
	s.auth.EXPECT().Login(gomock.Any(), authmodels.LoginRequest{Email: "ada@example.com", Password: "secret1"}).
		Return(&authmodels.LoginResponse{
			AccessToken: "tok",
			TokenType:   "bearer",
			User:        authmodels.User{ID: "u-1", Role: "teacher"},
		}, nil)

	s.start(models.LoginParams{})
	st := s.dispatch(models.SubmitLogin{Email: " ada@example.com ", Password: "secret1", Role: models.RoleStudent})

	s.Equal(models.ScreenHome, st.Screen())
	s.Equal(1, st.Depth)
	role, ok := service.RoleOf(st.Route)
	s.True(ok)
	s.Equal(models.RoleTeacher, role)
}

func (s *ControllerSuite) TestLoginFallsBackToSelectedRole() {
	s.auth.EXPECT().Login(gomock.Any(), gomock.Any()).
		Return(&authmodels.LoginResponse{AccessToken: "tok", User: authmodels.User{Role: "admin"}}, nil)

	s.start(models.LoginParams{})
	st := s.dispatch(models.SubmitLogin{Email: "ada@example.com", Password: "secret1", Role: models.RoleStudent})

	role, _ := service.RoleOf(st.Route)
	s.Equal(models.RoleStudent, role)
}

func (s *ControllerSuite) TestLoginFailure() {
	tests := []struct {
		name   string
		err    error
		notice string
	}{
		{"server message", dErrors.New(dErrors.CodeUnauthorized, "Invalid credentials"), "Invalid credentials"},
		{"network", dErrors.New(dErrors.CodeUnavailable, "Login failed. Please check your connection."), "Login failed. Please check your connection."},
		{"uncoded", errors.New("boom"), service.NoticeLoginFailed},
	}
	for _, tt := range tests {
		s.Run(tt.name, func() {
			s.auth.EXPECT().Login(gomock.Any(), gomock.Any()).Return(nil, tt.err)

			s.start(models.LoginParams{})
			st := s.dispatch(models.SubmitLogin{Email: "ada@example.com", Password: "nope", Role: models.RoleStudent})

			s.Equal(models.ScreenLogin, st.Screen())
			s.Equal(tt.notice, st.Notice)
			s.False(st.Loading)
		})
	}
}

func (s *ControllerSuite) TestLoginValidationNeverCallsServer() {
	s.start(models.LoginParams{})

	st := s.dispatch(models.SubmitLogin{Email: "", Password: "secret1", Role: models.RoleStudent})
	s.Equal(service.NoticeCredentialsRequired, st.Notice)

	st = s.dispatch(models.SubmitLogin{Email: "ada@example.com", Password: "secret1"})
	s.Equal(service.NoticeRoleRequired, st.Notice)
	s.Equal(2.0, promtest.ToFloat64(s.metrics.RejectedTransitions.WithLabelValues("Login")))
}

func (s *ControllerSuite) TestDuplicateSubmitIsIgnoredWhileInFlight() {
	started := make(chan struct{})
	release := make(chan struct{})
	s.auth.EXPECT().Login(gomock.Any(), gomock.Any()).
		DoAndReturn(func(context.Context, authmodels.LoginRequest) (*authmodels.LoginResponse, error) {
			close(started)
			<-release
			return &authmodels.LoginResponse{AccessToken: "tok", User: authmodels.User{Role: "student"}}, nil
		}).
		Times(1)

	s.start(models.LoginParams{})
	submit := models.SubmitLogin{Email: "ada@example.com", Password: "secret1", Role: models.RoleStudent}

	done := make(chan State, 1)
	go func() {
		st, _ := s.c.Dispatch(s.ctx, submit)
		done <- st
	}()
	<-started

	st := s.dispatch(submit)
	s.Equal(models.ScreenLogin, st.Screen())
	s.True(st.Loading)

	close(release)
	final := <-done
	s.Equal(models.ScreenHome, final.Screen())
}

func (s *ControllerSuite) TestResultForLeftScreenIsDropped() {
	started := make(chan struct{})
	release := make(chan struct{})
	s.auth.EXPECT().Login(gomock.Any(), gomock.Any()).
		DoAndReturn(func(context.Context, authmodels.LoginRequest) (*authmodels.LoginResponse, error) {
			close(started)
			<-release
			return &authmodels.LoginResponse{AccessToken: "tok", User: authmodels.User{Role: "student"}}, nil
		})

	s.start(models.LoginParams{})

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = s.c.Dispatch(s.ctx, models.SubmitLogin{Email: "ada@example.com", Password: "secret1", Role: models.RoleStudent})
	}()
	<-started

	st := s.dispatch(models.SignUp{})
	s.Require().Equal(models.ScreenRegister, st.Screen())

	close(release)
	<-done

	st = s.c.State()
	s.Equal(models.ScreenRegister, st.Screen())
	s.Equal(2, st.Depth)

	// the Login screen below is no longer waiting
	st = s.dispatch(models.Back{})
	s.Equal(models.ScreenLogin, st.Screen())
	s.False(st.Loading)
}

func (s *ControllerSuite) TestLogout() {
	s.Run("server failure still signs out", func() {
		s.auth.EXPECT().Logout(gomock.Any()).Return(dErrors.New(dErrors.CodeUnavailable, "Logout failed. Please try again."))

		s.start(models.HomeParams{Role: models.RoleStudent})
		s.dispatch(models.OpenTab{Tab: models.ScreenProfile})
		st := s.dispatch(models.Logout{})

		s.Equal(models.ScreenLogin, st.Screen())
		s.Equal(1, st.Depth)
	})

	s.Run("teacher profile", func() {
		s.auth.EXPECT().Logout(gomock.Any()).Return(nil)

		s.start(models.HomeParams{Role: models.RoleTeacher})
		s.dispatch(models.OpenTab{Tab: models.ScreenTeacherProfile})
		st := s.dispatch(models.Logout{})

		s.Equal(models.ScreenLogin, st.Screen())
	})

	s.Run("not offered outside the profile", func() {
		_, err := s.c.Dispatch(s.ctx, models.Logout{})
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidState))
	})
}

func (s *ControllerSuite) TestBack() {
	s.start(models.LoginParams{})

	st := s.dispatch(models.Back{})
	s.Equal(models.ScreenLogin, st.Screen())
	s.Equal(1, st.Depth)

	s.dispatch(models.SignUp{})
	st = s.dispatch(models.SubmitEmail{Email: "not-an-email"})
	s.NotEmpty(st.Notice)

	st = s.dispatch(models.Back{})
	s.Equal(models.ScreenLogin, st.Screen())
	s.Empty(st.Notice)
}

func (s *ControllerSuite) TestSubscribe() {
	var (
		mu      sync.Mutex
		screens []models.ScreenID
	)
	unsubscribe := s.c.Subscribe(func(st State) {
		mu.Lock()
		defer mu.Unlock()
		screens = append(screens, st.Screen())
	})

	s.start(models.SplashParams{})
	s.clock.last().fn()
	s.dispatch(models.GetStarted{})

	unsubscribe()
	s.dispatch(models.SignUp{})

	mu.Lock()
	defer mu.Unlock()
	s.Equal([]models.ScreenID{models.ScreenSplash, models.ScreenOnboarding, models.ScreenLogin}, screens)
}

func (s *ControllerSuite) TestInvalidActionLeavesStateAlone() {
	s.start(models.OnboardingParams{})

	st, err := s.c.Dispatch(s.ctx, models.SubmitLogin{})
	s.True(dErrors.HasCode(err, dErrors.CodeInvalidState))
	s.Equal(models.ScreenOnboarding, st.Screen())
}

func (s *ControllerSuite) TestWithDelays() {
	c, err := New(s.auth,
		WithScheduler(timer.New(timer.WithAfterFunc(s.clock.afterFunc))),
		WithDelays(time.Second, 0),
	)
	s.Require().NoError(err)
	defer c.Close()

	_, err = c.Start(models.MustRoute(models.SplashParams{}))
	s.Require().NoError(err)
	s.Equal(time.Second, s.clock.last().delay)
	s.Equal(DefaultWelcomeDelay, c.welcomeDelay)
}
