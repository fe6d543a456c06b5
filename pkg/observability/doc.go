/*
Package observability provides measurement sinks for chain execution.

The Prometheus reporter exposes per-action latency and outcome series; the
log reporter mirrors every measurement to a structured logger. Both implement
ports.Reporter and can be combined with Multi.
*/
package observability
