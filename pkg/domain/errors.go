package domain

import "errors"

// ErrNoClient is returned when an action resolves against a session that has
// no active client handle.
var ErrNoClient = errors.New("no active client")

// ErrAsyncUnsafe is returned when an async operation is requested while a
// transaction is active or explicit locks were taken. Async completion
// reorders relative to issuance, which is unsafe to interleave with state
// that assumes strict ordering.
var ErrAsyncUnsafe = errors.New("async API cannot be used in a transaction or with explicit locks")

// ErrNoTransaction is returned by commit and rollback actions when the
// session has no ambient transaction. Close is exempt: closing without a
// transaction is an idempotent no-op.
var ErrNoTransaction = errors.New("no active transaction")
