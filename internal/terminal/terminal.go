// Package terminal is the line-oriented front end of the client: it prints
// each screen the flow controller lands on and turns typed commands into
// flow actions.
package terminal

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"neoquiz/internal/flow/controller"
	"neoquiz/internal/flow/models"
	"neoquiz/internal/platform/logger"
	dErrors "neoquiz/pkg/domain-errors"
)

const prompt = "neoquiz> "

// Flow is the part of the controller the terminal drives.
type Flow interface {
	State() controller.State
	Dispatch(ctx context.Context, action models.Action) (controller.State, error)
}

type Terminal struct {
	flow   Flow
	in     *bufio.Scanner
	out    io.Writer
	logger *slog.Logger

	mu sync.Mutex
}

type Option func(*Terminal)

func WithLogger(l *slog.Logger) Option {
	return func(t *Terminal) {
		if l != nil {
			t.logger = l
		}
	}
}

func New(flow Flow, in io.Reader, out io.Writer, opts ...Option) *Terminal {
	t := &Terminal{
		flow:   flow,
		in:     bufio.NewScanner(in),
		out:    out,
		logger: logger.Discard(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Render prints st. It has the controller.Subscribe signature so timer-driven
// screen changes show up without input.
func (t *Terminal) Render(st controller.State) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := Render(t.out, st); err != nil {
		t.logger.Warn("render failed", "screen", st.Screen(), "error", err)
	}
}

// Run reads commands until input ends, the user quits or ctx is done.
func (t *Terminal) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	lines := make(chan string)
	errc := make(chan error, 1)
	go func() {
		defer close(lines)
		for t.in.Scan() {
			select {
			case lines <- t.in.Text():
			case <-ctx.Done():
				return
			}
		}
		errc <- t.in.Err()
	}()

	next := func() (string, error) {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case line, ok := <-lines:
			if !ok {
				select {
				case err := <-errc:
					if err != nil {
						return "", err
					}
				default:
				}
				return "", io.EOF
			}
			return line, nil
		}
	}
	ask := func(label string) (string, error) {
		t.printf("  %s: ", label)
		return next()
	}

	for {
		t.printf("%s", prompt)
		line, err := next()
		if err != nil {
			return quietly(err)
		}
		if err := t.handle(ctx, line, ask); err != nil {
			return quietly(err)
		}
	}
}

func (t *Terminal) handle(ctx context.Context, line string, ask Prompter) error {
	st := t.flow.State()
	action, err := Parse(st, line, ask)
	switch {
	case errors.Is(err, errHelp):
		t.Render(st)
		return nil
	case errors.Is(err, ErrQuit), errors.Is(err, io.EOF), errors.Is(err, context.Canceled):
		return err
	case err != nil:
		t.printf("  ! %s\n", dErrors.UserMessage(err, "invalid input"))
		return nil
	case action == nil:
		return nil
	}

	if _, err := t.flow.Dispatch(ctx, action); err != nil {
		t.logger.DebugContext(ctx, "action refused",
			"action", action.Name(),
			"screen", st.Screen(),
			"error", err,
		)
		t.printf("  ! %s\n", dErrors.UserMessage(err, "That is not available here."))
	}
	return nil
}

func (t *Terminal) printf(format string, args ...any) {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, _ = fmt.Fprintf(t.out, format, args...)
}

// quietly maps the normal ways a session ends to a nil error.
func quietly(err error) error {
	if errors.Is(err, ErrQuit) || errors.Is(err, io.EOF) ||
		errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return nil
	}
	return err
}
