/*
Package chain sequences actions into one executable pipeline per scenario.

A chain is an explicit ordered list of actions executed by a single driver
loop that threads the session through each step; there are no next-action
references between actions. Grouped sub-chains and transaction-scoped
sub-chains (begin, body, guaranteed close) compose into the same loop, so
every action is measured and reported individually no matter how deeply it
is nested.
*/
package chain
