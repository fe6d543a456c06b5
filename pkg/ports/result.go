package ports

import "errors"

// ErrNoEntry is returned by Result.Single when the result is empty.
var ErrNoEntry = errors.New("result contains no entry")

// ErrMultipleEntries is returned by Result.Single when the result holds more
// than one entry and no key was given to disambiguate.
var ErrMultipleEntries = errors.New("result contains more than one entry")

// Entry is a single key-value pair produced by a cache operation.
type Entry struct {
	Key   any
	Value any
}

// Result is the outcome of a cache operation: zero or more entries in the
// order the operation produced them. A lookup miss yields an empty Result,
// never an entry paired with a nil value.
type Result struct {
	entries []Entry
}

// NewResult builds a result from the given entries.
func NewResult(entries ...Entry) *Result {
	return &Result{entries: entries}
}

// Len returns the number of entries. A nil Result is empty.
func (r *Result) Len() int {
	if r == nil {
		return 0
	}
	return len(r.entries)
}

// Get returns the value stored under key and whether such an entry exists.
func (r *Result) Get(key any) (any, bool) {
	if r == nil {
		return nil, false
	}
	for _, e := range r.entries {
		if e.Key == key {
			return e.Value, true
		}
	}
	return nil, false
}

// Entries returns the entries in operation order. Callers must not mutate
// the returned slice.
func (r *Result) Entries() []Entry {
	if r == nil {
		return nil
	}
	return r.entries
}

// Single returns the only entry of the result. It fails with ErrNoEntry on an
// empty result and ErrMultipleEntries when more than one entry is present.
func (r *Result) Single() (Entry, error) {
	switch r.Len() {
	case 0:
		return Entry{}, ErrNoEntry
	case 1:
		return r.entries[0], nil
	default:
		return Entry{}, ErrMultipleEntries
	}
}
