package harrow

import (
	"context"

	"github.com/aretw0/harrow/internal/cli"
	"github.com/aretw0/harrow/pkg/chain"
	"github.com/aretw0/harrow/pkg/registry"
	"github.com/aretw0/harrow/pkg/runner"
)

// Version is the library version, overridden at release time via ldflags.
var Version = "0.1.0"

// LoadScenario reads a scenario file and assembles it into a runnable
// chain named after the scenario.
func LoadScenario(path string) (*chain.Chain, error) {
	scenario, err := cli.Load(path)
	if err != nil {
		return nil, err
	}
	return cli.Build(scenario)
}

// ParseScenario assembles a chain from scenario YAML held in memory.
func ParseScenario(data []byte) (*chain.Chain, error) {
	scenario, err := cli.Parse(data)
	if err != nil {
		return nil, err
	}
	return cli.Build(scenario)
}

// ParseScenarioWith assembles a chain from scenario YAML, resolving
// check types unknown to the engine against the host's registry.
func ParseScenarioWith(data []byte, reg *registry.Registry) (*chain.Chain, error) {
	scenario, err := cli.Parse(data)
	if err != nil {
		return nil, err
	}
	return cli.Build(scenario, cli.WithRegistry(reg))
}

// Run executes a chain for a population of virtual users. It is a
// convenience wrapper over the runner package for hosts that do not
// need custom wiring.
func Run(ctx context.Context, c *chain.Chain, factory runner.ClientFactory, opts ...runner.Option) (*runner.Stats, error) {
	return runner.New(c, factory, opts...).Run(ctx)
}
