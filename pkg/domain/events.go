package domain

import (
	"context"
	"time"
)

// ActionEvent describes a single action execution for observability hooks.
type ActionEvent struct {
	SessionID string        `json:"session_id"`
	Action    string        `json:"action"`
	Start     time.Time     `json:"start"`
	Duration  time.Duration `json:"duration,omitempty"`
	Err       error         `json:"-"`
}

// Hooks defines callbacks for engine observability. Nil callbacks are
// skipped. Hooks run synchronously on the chain goroutine and must be cheap.
type Hooks struct {
	OnActionStart func(context.Context, *ActionEvent)
	OnActionEnd   func(context.Context, *ActionEvent)
}
