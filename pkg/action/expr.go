package action

import (
	"fmt"

	"github.com/aretw0/harrow/pkg/domain"
)

// Expr produces a key or value for a cache operation from the session.
// Expressions are evaluated at execution time, so an expression may read
// values that earlier actions saved.
type Expr func(s *domain.Session) (any, error)

// Lit returns an expression yielding a fixed value.
func Lit(v any) Expr {
	return func(*domain.Session) (any, error) {
		return v, nil
	}
}

// FromVar returns an expression reading a named session slot.
// It fails when no value was saved under that name.
func FromVar(name string) Expr {
	return func(s *domain.Session) (any, error) {
		v, ok := s.Var(name)
		if !ok {
			return nil, fmt.Errorf("session has no value named %q", name)
		}
		return v, nil
	}
}

// Compute returns an expression computed from arbitrary session data.
func Compute(fn func(s *domain.Session) (any, error)) Expr {
	return Expr(fn)
}
