package check

import (
	"fmt"
	"reflect"

	"github.com/aretw0/harrow/pkg/domain"
	"github.com/aretw0/harrow/pkg/ports"
)

// CountAssertion asserts on the number of entries in a result.
type CountAssertion struct{}

// Count starts a value-count assertion.
func Count() CountAssertion {
	return CountAssertion{}
}

// Is asserts the result holds exactly n entries.
func (CountAssertion) Is(n int) Check {
	return New(fmt.Sprintf("count is %d", n), func(res *ports.Result, s *domain.Session) (*domain.Session, error) {
		if got := res.Len(); got != n {
			return nil, fmt.Errorf("expected %d entries, got %d", n, got)
		}
		return s, nil
	})
}

// Gt asserts the result holds more than n entries.
func (CountAssertion) Gt(n int) Check {
	return New(fmt.Sprintf("count > %d", n), func(res *ports.Result, s *domain.Session) (*domain.Session, error) {
		if got := res.Len(); got <= n {
			return nil, fmt.Errorf("expected more than %d entries, got %d", n, got)
		}
		return s, nil
	})
}

// Exists asserts an entry for key is present.
func Exists(key any) Check {
	return New(fmt.Sprintf("entry %v exists", key), func(res *ports.Result, s *domain.Session) (*domain.Session, error) {
		if _, ok := res.Get(key); !ok {
			return nil, fmt.Errorf("no entry for key %v", key)
		}
		return s, nil
	})
}

// NotExists asserts no entry for key is present.
func NotExists(key any) Check {
	return New(fmt.Sprintf("entry %v does not exist", key), func(res *ports.Result, s *domain.Session) (*domain.Session, error) {
		if val, ok := res.Get(key); ok {
			return nil, fmt.Errorf("unexpected entry for key %v: %v", key, val)
		}
		return s, nil
	})
}

// Projection extracts one entry from a result, optionally transforms it, and
// either compares it or saves it into the session.
type Projection struct {
	key       any
	keyed     bool
	transform func(any) (any, error)
}

// Entry projects the entry stored under key.
func Entry(key any) *Projection {
	return &Projection{key: key, keyed: true}
}

// Single projects the only entry of the result. It fails when the result is
// empty or holds more than one entry.
func Single() *Projection {
	return &Projection{}
}

// Transform applies fn to the projected value before comparison or save.
func (p *Projection) Transform(fn func(any) (any, error)) *Projection {
	p.transform = fn
	return p
}

func (p *Projection) extract(res *ports.Result) (any, error) {
	var value any
	if p.keyed {
		v, ok := res.Get(p.key)
		if !ok {
			return nil, fmt.Errorf("no entry for key %v", p.key)
		}
		value = v
	} else {
		entry, err := res.Single()
		if err != nil {
			return nil, err
		}
		value = entry.Value
	}
	if p.transform != nil {
		return p.transform(value)
	}
	return value, nil
}

func (p *Projection) describe(verb string) string {
	if p.keyed {
		return fmt.Sprintf("entry %v %s", p.key, verb)
	}
	return fmt.Sprintf("single entry %s", verb)
}

// Is asserts the projected value equals expected.
func (p *Projection) Is(expected any) Check {
	return New(p.describe(fmt.Sprintf("is %v", expected)), func(res *ports.Result, s *domain.Session) (*domain.Session, error) {
		value, err := p.extract(res)
		if err != nil {
			return nil, err
		}
		if !reflect.DeepEqual(value, expected) {
			return nil, fmt.Errorf("expected %v, got %v", expected, value)
		}
		return s, nil
	})
}

// SaveAs persists the projected value under a named session slot for later
// actions. It only fails when the extraction itself fails.
func (p *Projection) SaveAs(name string) Check {
	return New(p.describe("saved as "+name), func(res *ports.Result, s *domain.Session) (*domain.Session, error) {
		value, err := p.extract(res)
		if err != nil {
			return nil, err
		}
		return s.WithVar(name, value), nil
	})
}

// Entries validates the raw result against arbitrary session data.
func Entries(desc string, fn func(entries []ports.Entry, s *domain.Session) error) Check {
	return New(desc, func(res *ports.Result, s *domain.Session) (*domain.Session, error) {
		if err := fn(res.Entries(), s); err != nil {
			return nil, err
		}
		return s, nil
	})
}
