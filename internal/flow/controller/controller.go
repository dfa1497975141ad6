// Package controller drives the screen flow: it owns the navigation stack,
// applies transition outcomes, runs their effects against the backend and
// arms the auto-advance timers.
package controller

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	authmodels "neoquiz/internal/auth/models"
	"neoquiz/internal/flow/models"
	"neoquiz/internal/flow/service"
	"neoquiz/internal/flow/timer"
	"neoquiz/internal/platform/logger"
	"neoquiz/internal/platform/metrics"
	dErrors "neoquiz/pkg/domain-errors"
)

const (
	DefaultSplashDelay  = 2500 * time.Millisecond
	DefaultWelcomeDelay = 3000 * time.Millisecond
)

// State is a snapshot for the renderer.
type State struct {
	Route          models.Route
	Depth          int
	Notice         string
	Loading        bool
	Teachers       []models.Teacher
	TeachersLoaded bool
}

// Screen is the current screen.
func (s State) Screen() models.ScreenID {
	return s.Route.Screen()
}

// entry is one screen instance on the stack together with its local state.
type entry struct {
	route          models.Route
	instance       uint64
	notice         string
	loading        bool
	teachers       []models.Teacher
	teachersLoaded bool
}

// Controller is safe for concurrent use.
type Controller struct {
	auth    AuthClient
	timers  *timer.Scheduler
	logger  *slog.Logger
	metrics *metrics.Metrics

	splashDelay  time.Duration
	welcomeDelay time.Duration

	mu           sync.Mutex
	stack        []*entry
	lastInstance uint64
	pending      *timer.Task
	subscribers  map[int]func(State)
	nextSubID    int
}

// Option configures a Controller.
type Option func(*Controller)

func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.logger = l
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Controller) {
		c.metrics = m
	}
}

func WithScheduler(s *timer.Scheduler) Option {
	return func(c *Controller) {
		if s != nil {
			c.timers = s
		}
	}
}

// WithDelays sets the Splash and Welcome auto-advance delays.
func WithDelays(splash, welcome time.Duration) Option {
	return func(c *Controller) {
		if splash > 0 {
			c.splashDelay = splash
		}
		if welcome > 0 {
			c.welcomeDelay = welcome
		}
	}
}

func New(auth AuthClient, opts ...Option) (*Controller, error) {
	if auth == nil {
		return nil, errors.New("auth client is required")
	}
	c := &Controller{
		auth:         auth,
		timers:       timer.New(),
		logger:       logger.Discard(),
		splashDelay:  DefaultSplashDelay,
		welcomeDelay: DefaultWelcomeDelay,
		subscribers:  make(map[int]func(State)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Start clears the stack and enters initial, arming its timer if any.
func (c *Controller) Start(initial models.Route) (State, error) {
	if initial.IsZero() {
		return State{}, dErrors.New(dErrors.CodeContractViolation, "initial route is required")
	}
	c.mu.Lock()
	c.cancelPendingLocked()
	c.stack = []*entry{c.newEntryLocked(initial)}
	c.enterLocked()
	st, subs := c.snapshotLocked(), c.subscribersLocked()
	c.mu.Unlock()

	c.logger.Info("flow started", "screen", initial.Screen())
	notify(subs, st)
	return st, nil
}

// Close cancels any pending auto-advance.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cancelPendingLocked()
}

// State returns the current snapshot.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// Subscribe registers fn for every state change, including timer-driven
// ones. The returned func unsubscribes.
func (c *Controller) Subscribe(fn func(State)) func() {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.nextSubID
	c.nextSubID++
	c.subscribers[id] = fn
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.subscribers, id)
	}
}

// Dispatch applies action to the current screen and runs any resulting
// effect to completion. While a screen has a request in flight, further
// requests from it are ignored. Backend failures become notices; the returned error
// is reserved for actions the current screen does not accept and broken
// route contracts.
func (c *Controller) Dispatch(ctx context.Context, action models.Action) (State, error) {
	return c.dispatch(ctx, action, 0)
}

// dispatch applies action only while the screen instance is still current;
// instance 0 means whatever is current.
func (c *Controller) dispatch(ctx context.Context, action models.Action, instance uint64) (State, error) {
	c.mu.Lock()
	top := c.topLocked()
	if top == nil {
		c.mu.Unlock()
		return State{}, dErrors.New(dErrors.CodeInvalidState, "flow has not been started")
	}
	if instance != 0 && top.instance != instance {
		st := c.snapshotLocked()
		c.mu.Unlock()
		c.logger.DebugContext(ctx, "dropping result for a screen that is gone",
			"action", action.Name(),
			"screen", st.Screen(),
		)
		return st, nil
	}

	from := top.route
	out, err := c.transitionLocked(top, action)
	if err != nil {
		st := c.snapshotLocked()
		c.mu.Unlock()
		c.logger.WarnContext(ctx, "transition refused",
			"screen", from.Screen(),
			"action", action.Name(),
			"error", err,
		)
		return st, err
	}

	if out.Effect != nil && out.Kind == service.KindStay && top.loading {
		st := c.snapshotLocked()
		c.mu.Unlock()
		c.logger.DebugContext(ctx, "request already in flight, ignoring",
			"screen", from.Screen(),
			"effect", out.Effect.EffectName(),
		)
		return st, nil
	}

	c.applyLocked(ctx, from, action, out)

	var effectInstance uint64
	if out.Effect != nil {
		cur := c.topLocked()
		cur.loading = true
		effectInstance = cur.instance
	}
	st, subs := c.snapshotLocked(), c.subscribersLocked()
	c.mu.Unlock()
	notify(subs, st)

	if out.Effect == nil {
		return st, nil
	}

	follow := c.execute(ctx, out.Effect)

	c.mu.Lock()
	if e := c.entryLocked(effectInstance); e != nil {
		e.loading = false
	}
	c.mu.Unlock()

	return c.dispatch(ctx, follow, effectInstance)
}

func (c *Controller) transitionLocked(top *entry, action models.Action) (service.Outcome, error) {
	if a, ok := action.(models.ContinueWithTeacher); ok && a.TeacherID != "" {
		if !top.teachersLoaded {
			return service.Outcome{Kind: service.KindStay, Notice: service.NoticeTeachersFailed}, nil
		}
		known := slices.ContainsFunc(top.teachers, func(t models.Teacher) bool { return t.ID == a.TeacherID })
		if !known {
			return service.Outcome{Kind: service.KindStay, Notice: service.NoticeTeacherRequired}, nil
		}
	}
	return service.Transition(top.route, action)
}

func (c *Controller) applyLocked(ctx context.Context, from models.Route, action models.Action, out service.Outcome) {
	top := c.topLocked()

	switch a := action.(type) {
	case models.TeachersLoaded:
		top.teachers = append([]models.Teacher(nil), a.Teachers...)
		top.teachersLoaded = true
	case models.TeachersFailed:
		top.teachers = nil
		top.teachersLoaded = false
	}

	kind := out.Kind
	if kind == service.KindBack && len(c.stack) <= 1 {
		kind = service.KindStay
	}

	switch kind {
	case service.KindStay:
		top.notice = out.Notice
		if out.Rejected() {
			c.metrics.IncRejected(from.Screen().String())
			c.logger.InfoContext(ctx, "action rejected",
				"screen", from.Screen(),
				"action", action.Name(),
				"notice", out.Notice,
			)
		}
		return
	case service.KindPush:
		c.stack = append(c.stack, c.newEntryLocked(out.Route))
	case service.KindReplace:
		c.stack[len(c.stack)-1] = c.newEntryLocked(out.Route)
	case service.KindReset:
		c.stack = []*entry{c.newEntryLocked(out.Route)}
	case service.KindBack:
		c.stack = c.stack[:len(c.stack)-1]
		c.topLocked().notice = ""
	}

	to := c.topLocked().route
	c.metrics.IncTransition(from.Screen().String(), to.Screen().String(), kind.String())
	c.logger.InfoContext(ctx, "screen changed",
		"from", from.Screen(),
		"to", to.Screen(),
		"kind", kind,
		"action", action.Name(),
	)

	c.cancelPendingLocked()
	c.enterLocked()
}

// enterLocked arms the auto-advance timer for the top screen.
func (c *Controller) enterLocked() {
	top := c.topLocked()
	screen := top.route.Screen()
	if !service.AutoAdvance(screen) {
		return
	}
	delay := c.splashDelay
	if screen == models.ScreenWelcome {
		delay = c.welcomeDelay
	}
	instance := top.instance
	c.pending = c.timers.Schedule(delay, func() {
		if _, err := c.dispatch(context.Background(), models.TimerElapsed{}, instance); err != nil {
			c.logger.Error("auto-advance failed", "screen", screen, "error", err)
		}
	})
}

func (c *Controller) cancelPendingLocked() {
	if c.pending != nil {
		c.pending.Cancel()
		c.pending = nil
	}
}

// execute performs effect and returns the action that reports its result.
func (c *Controller) execute(ctx context.Context, effect service.Effect) models.Action {
	switch e := effect.(type) {
	case service.LoginEffect:
		resp, err := c.auth.Login(ctx, authmodels.LoginRequest{Email: e.Email, Password: e.Password})
		if err != nil {
			return models.LoginFailed{Message: dErrors.UserMessage(err, service.NoticeLoginFailed)}
		}
		role, err := models.ParseRole(resp.User.Role)
		if err != nil {
			c.logger.WarnContext(ctx, "server returned unknown role, keeping the selected one",
				"role", resp.User.Role,
				"selected", e.Role,
			)
			role = e.Role
		}
		return models.LoginSucceeded{Role: role}

	case service.RegisterEffect:
		resp, err := c.auth.Register(ctx, authmodels.RegisterRequestFromDraft(e.Draft))
		if err != nil {
			return models.RegistrationFailed{Message: dErrors.UserMessage(err, service.NoticeRegistrationFailed)}
		}
		return models.RegistrationCompleted{UserID: resp.ID}

	case service.LoadTeachersEffect:
		teachers, err := c.auth.GetTeachers(ctx)
		if err != nil {
			return models.TeachersFailed{Message: dErrors.UserMessage(err, service.NoticeTeachersFailed)}
		}
		return models.TeachersLoaded{Teachers: authmodels.ToFlowTeachers(teachers)}

	case service.LogoutEffect:
		if err := c.auth.Logout(ctx); err != nil {
			c.logger.WarnContext(ctx, "logout call failed; local session cleared anyway", "error", err)
		}
		return models.LogoutCompleted{}
	}
	panic(fmt.Sprintf("controller: unhandled effect %T", effect))
}

func (c *Controller) newEntryLocked(r models.Route) *entry {
	c.lastInstance++
	return &entry{route: r, instance: c.lastInstance}
}

func (c *Controller) topLocked() *entry {
	if len(c.stack) == 0 {
		return nil
	}
	return c.stack[len(c.stack)-1]
}

func (c *Controller) entryLocked(instance uint64) *entry {
	for _, e := range c.stack {
		if e.instance == instance {
			return e
		}
	}
	return nil
}

func (c *Controller) snapshotLocked() State {
	top := c.topLocked()
	if top == nil {
		return State{}
	}
	return State{
		Route:          top.route,
		Depth:          len(c.stack),
		Notice:         top.notice,
		Loading:        top.loading,
		Teachers:       append([]models.Teacher(nil), top.teachers...),
		TeachersLoaded: top.teachersLoaded,
	}
}

func (c *Controller) subscribersLocked() []func(State) {
	subs := make([]func(State), 0, len(c.subscribers))
	for _, fn := range c.subscribers {
		subs = append(subs, fn)
	}
	return subs
}

func notify(subs []func(State), st State) {
	for _, fn := range subs {
		fn(st)
	}
}
