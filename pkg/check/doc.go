/*
Package check provides the composable assertion pipeline applied to cache
operation results.

A Check is a pure function over (result, session): it either passes, possibly
saving a derived value into the session, or fails with a descriptive reason.
Checks attached to one action all run in declaration order; failures are
aggregated rather than short-circuited, so a single report names every
assertion that did not hold.
*/
package check
