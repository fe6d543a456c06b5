// Package runner executes a chain for a population of concurrent
// virtual users, each iterating over its own session and client.
package runner
