/*
Package ports defines the driven ports (interfaces) for the Harrow engine.

These interfaces decouple the action chain from the cluster-facing client
implementation, allowing the engine to drive any key-value store that can
supply Client, Cache and Transaction handles.

# Key Interfaces

  - Client: Top-level capability handle; opens caches and begins transactions.
  - Cache: Key-value operations (get, put, remove and their combined forms).
  - Transaction: Explicit transaction lifecycle (commit, rollback, close).
  - Reporter: Receives per-action outcome and latency measurements.

RunClientContract verifies that a Client implementation honors the semantics
the engine depends on.
*/
package ports
