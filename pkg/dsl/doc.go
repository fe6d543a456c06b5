/*
Package dsl provides a Go DSL (Domain Specific Language) for programmatically
constructing harrow chains.

It allows workloads to be defined with a type-safe, fluent builder pattern
instead of external YAML scenario files. This is particularly useful for
dynamic workload generation, unit testing, and leveraging IDE
autocompletion/type-checking.

Example usage:

	package main

	import (
		"github.com/aretw0/harrow/pkg/check"
		"github.com/aretw0/harrow/pkg/dsl"
		"github.com/aretw0/harrow/pkg/ports"
	)

	func main() {
		p := dsl.NewPipeline("checkout")

		p.Put("users", 1, "alice")

		p.Get("users", 1).
			Check(check.Count().Is(1)).
			Check(check.Single().SaveAs("who"))

		p.Tx(ports.TxOptions{}, func(tx *dsl.Pipeline) {
			tx.Put("orders", 100, "${who}")
		})

		// The resulting chain can be run directly or through the runner.
		chain := p.Build()
		_ = chain
	}
*/
package dsl
