package models

import (
	dErrors "neoquiz/pkg/domain-errors"
)

// Route is a screen together with the params it was entered with. The zero
// Route is not a valid destination; build one with NewRoute.
type Route struct {
	params Params
}

// NewRoute validates params against their screen's contract. A route that
// fails here never reaches the renderer.
func NewRoute(p Params) (Route, error) {
	if p == nil {
		return Route{}, dErrors.New(dErrors.CodeContractViolation, "route params are required")
	}
	if err := p.Validate(); err != nil {
		if dErrors.HasCode(err, dErrors.CodeContractViolation) {
			return Route{}, err
		}
		return Route{}, dErrors.Wrap(err, dErrors.CodeContractViolation, "invalid params for "+p.Screen().String())
	}
	return Route{params: p}, nil
}

// MustRoute is NewRoute for params known to be valid at compile time, such as
// the parameterless screens.
func MustRoute(p Params) Route {
	r, err := NewRoute(p)
	if err != nil {
		panic(err)
	}
	return r
}

// Screen returns the screen the route leads to.
func (r Route) Screen() ScreenID {
	if r.params == nil {
		return ""
	}
	return r.params.Screen()
}

func (r Route) Params() Params {
	return r.params
}

func (r Route) IsZero() bool {
	return r.params == nil
}

// ParamsAs returns the route's params as the concrete variant T.
func ParamsAs[T Params](r Route) (T, bool) {
	p, ok := r.params.(T)
	return p, ok
}
