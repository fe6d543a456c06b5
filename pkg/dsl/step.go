package dsl

import (
	"github.com/aretw0/harrow/pkg/action"
	"github.com/aretw0/harrow/pkg/check"
	"github.com/aretw0/harrow/pkg/domain"
)

// StepBuilder provides a fluent API for configuring a cache step after
// it has been appended to the pipeline.
type StepBuilder struct {
	pipeline *Pipeline
	build    func([]action.Option) domain.Action
	opts     []action.Option
	slot     int
}

func (s *StepBuilder) placeholder() domain.Action {
	return s.build(nil)
}

func (s *StepBuilder) apply(opt action.Option) *StepBuilder {
	s.opts = append(s.opts, opt)
	s.pipeline.actions[s.slot] = s.build(s.opts)
	return s
}

// Check attaches a check to the step's pipeline.
func (s *StepBuilder) Check(c check.Check) *StepBuilder {
	return s.apply(action.WithChecks(c))
}

// Async runs the operation through the async API. The step still
// awaits the result before its checks run.
func (s *StepBuilder) Async() *StepBuilder {
	return s.apply(action.Async())
}

// KeepBinary skips value decoding and yields raw bytes.
func (s *StepBuilder) KeepBinary() *StepBuilder {
	return s.apply(action.KeepBinary())
}

// Named overrides the step's request name in measurements.
func (s *StepBuilder) Named(name string) *StepBuilder {
	return s.apply(action.WithName(name))
}
