package service

import (
	"neoquiz/internal/flow/models"
)

// Kind says how an outcome changes the navigation stack.
type Kind int

const (
	// KindStay keeps the current screen; Notice may carry inline text.
	KindStay Kind = iota
	// KindPush enters Route on top of the current screen.
	KindPush
	// KindReplace swaps the current screen for Route.
	KindReplace
	// KindReset clears the stack and leaves Route as its only entry.
	KindReset
	// KindBack pops the current screen.
	KindBack
)

func (k Kind) String() string {
	switch k {
	case KindStay:
		return "stay"
	case KindPush:
		return "push"
	case KindReplace:
		return "replace"
	case KindReset:
		return "reset"
	case KindBack:
		return "back"
	}
	return "unknown"
}

// Effect is a side effect the controller runs after applying an outcome.
// Each effect answers with a follow-up action (for example LoginEffect with
// LoginSucceeded or LoginFailed).
type Effect interface {
	EffectName() string
	isEffect()
}

type LoginEffect struct {
	Email    string
	Password string
	Role     models.Role
}

type RegisterEffect struct {
	Draft models.RegistrationDraft
}

type LogoutEffect struct{}

type LoadTeachersEffect struct{}

func (LoginEffect) EffectName() string        { return "login" }
func (RegisterEffect) EffectName() string     { return "register" }
func (LogoutEffect) EffectName() string       { return "logout" }
func (LoadTeachersEffect) EffectName() string { return "getTeachers" }

func (LoginEffect) isEffect()        {}
func (RegisterEffect) isEffect()     {}
func (LogoutEffect) isEffect()       {}
func (LoadTeachersEffect) isEffect() {}

// Outcome is the result of one transition.
type Outcome struct {
	Kind   Kind
	Route  models.Route
	Notice string
	Effect Effect
}

// Rejected reports whether the action was refused with an inline message.
func (o Outcome) Rejected() bool {
	return o.Kind == KindStay && o.Notice != "" && o.Effect == nil
}
