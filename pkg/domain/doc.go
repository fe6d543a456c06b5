/*
Package domain contains the core domain models for the Harrow engine.

It defines the per-session state threaded through an action chain (Session),
the contract every unit of work implements (Action), and the sentinel errors
of the resolution rules. This package is kept pure and free of external
dependencies like I/O or persistence, following Hexagonal Architecture
principles.

# Key Entities

  - Session: Per-virtual-user state (client handle, ambient transaction,
    explicit-lock flag, named saved values). Updates are copy-on-write.
  - Action: A single resolvable, executable, checkable unit of work.
  - Hooks: Observability callbacks fired around every action.
*/
package domain
