/*
Package harrow is a session-scoped action-chaining engine for driving
key-value and transaction workloads against a distributed cache cluster.

A chain is an ordered list of actions. Each action resolves its cache
handle against the current session, performs one operation (get, put,
remove, getAndPut, getAndRemove, lock, unlock or a transaction step),
runs its check pipeline and hands an updated session to the next action.
Sessions are immutable: every mutation yields a fresh copy, so a failed
action never corrupts the state the next action sees.

# Concept

Harrow separates the workload description (chains built from actions and
checks) from the execution substrate (clients, transactions and locks
behind small port interfaces). The same chain runs unchanged against the
in-process memory adapter or a Redis-backed cluster, and the runner
scales it across concurrent virtual users, each with an isolated session.

# Key Features

  - Immutable sessions: actions transform copies, failures leave the
    prior state intact.
  - Ambient transactions: a begun transaction rides along in the session
    and cache resolution is redirected through it until it closes.
  - Scoped transactions: Transactional blocks guarantee the transaction
    slot is cleared, commit or not.
  - Check pipelines: declarative assertions over operation results, with
    value capture into named session slots.
  - Pluggable stores: memory and Redis adapters behind one contract.

# Usage

Build a chain with the action and check packages, then run it:

	package main

	import (
		"context"
		"log"

		"github.com/aretw0/harrow/pkg/action"
		"github.com/aretw0/harrow/pkg/adapters/memory"
		"github.com/aretw0/harrow/pkg/chain"
		"github.com/aretw0/harrow/pkg/check"
		"github.com/aretw0/harrow/pkg/domain"
	)

	func main() {
		c := chain.New("smoke",
			action.Put("users", action.Lit(1), action.Lit("alice")),
			action.Get("users", action.Lit(1),
				action.WithChecks(check.Count().Is(1))),
		)

		client := memory.New()
		defer client.Close()

		if _, err := c.Run(context.Background(), domain.NewSession("s1", client)); err != nil {
			log.Fatal(err)
		}
	}

Scenario files describe the same chains declaratively; see LoadScenario
and the harrow CLI.
*/
package harrow
