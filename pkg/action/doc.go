/*
Package action provides the executable units of a chain: cache operations,
transaction lifecycle steps and explicit lock handling.

Every action follows the same discipline: resolve capabilities from the
session via Resolve, perform exactly one operation against the resolved
handle, run the attached check pipeline, and hand the next session to the
chain. Resolution failures never touch the cluster and never mutate the
session.
*/
package action
