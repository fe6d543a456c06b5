package cli

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/harrow/pkg/adapters/memory"
	"github.com/aretw0/harrow/pkg/check"
	"github.com/aretw0/harrow/pkg/domain"
	"github.com/aretw0/harrow/pkg/ports"
	"github.com/aretw0/harrow/pkg/registry"
)

const sampleScenario = `
name: checkout
defaults:
  cache: users
steps:
  - op: put
    key: "1"
    value:
      name: alice
  - op: get
    key: "1"
    checks:
      - type: count
        count: 1
      - type: exists
        key: "1"
  - op: remove
    key: "1"
  - op: get
    key: "1"
    checks:
      - type: count
        count: 0
      - type: not_exists
        key: "1"
`

func TestParse_AppliesDefaults(t *testing.T) {
	scenario, err := Parse([]byte(sampleScenario))
	require.NoError(t, err)

	assert.Equal(t, "checkout", scenario.Name)
	require.Len(t, scenario.Steps, 4)
	for _, step := range scenario.Steps {
		assert.Equal(t, "users", step.Cache)
	}
	assert.Equal(t, "put", scenario.Steps[0].Op)
	require.Len(t, scenario.Steps[1].Checks, 2)
	assert.Equal(t, "count", scenario.Steps[1].Checks[0].Type)
}

func TestParse_Rejections(t *testing.T) {
	cases := map[string]string{
		"missing name": `
steps:
  - op: get
    cache: users
    key: "1"
`,
		"no steps": `
name: empty
`,
		"step without op tx or group": `
name: bad
steps:
  - cache: users
`,
		"conflicting step keys": `
name: bad
steps:
  - op: get
    cache: users
    key: "1"
    tx:
      steps: []
`,
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(doc))
			assert.Error(t, err)
		})
	}
}

func TestBuild_RejectsUnknownOpAndCheck(t *testing.T) {
	scenario, err := Parse([]byte(`
name: bad-op
steps:
  - op: explode
    cache: users
    key: "1"
`))
	require.NoError(t, err)
	_, err = Build(scenario)
	assert.ErrorContains(t, err, `unknown op "explode"`)

	scenario, err = Parse([]byte(`
name: bad-check
steps:
  - op: get
    cache: users
    key: "1"
    checks:
      - type: nope
`))
	require.NoError(t, err)
	_, err = Build(scenario)
	assert.ErrorContains(t, err, `unknown check type "nope"`)
}

func TestBuild_RunsAgainstMemory(t *testing.T) {
	scenario, err := Parse([]byte(sampleScenario))
	require.NoError(t, err)

	c, err := Build(scenario)
	require.NoError(t, err)

	client := memory.New()
	defer client.Close()

	_, err = c.Run(context.Background(), domain.NewSession("s1", client))
	assert.NoError(t, err)
}

func TestBuild_VarTemplateFlowsBetweenSteps(t *testing.T) {
	scenario, err := Parse([]byte(`
name: handoff
defaults:
  cache: accounts
steps:
  - op: put
    key: "acct-1"
    value: "100"
  - op: get
    key: "acct-1"
    checks:
      - type: save_as
        save_as: balance
  - op: put
    key: "acct-2"
    value: "${balance}"
  - op: get
    key: "acct-2"
    checks:
      - type: equals
        value: "100"
`))
	require.NoError(t, err)

	c, err := Build(scenario)
	require.NoError(t, err)

	client := memory.New()
	defer client.Close()

	_, err = c.Run(context.Background(), domain.NewSession("s1", client))
	assert.NoError(t, err)
}

func TestBuild_TransactionalBlock(t *testing.T) {
	scenario, err := Parse([]byte(`
name: tx-discard
defaults:
  cache: users
steps:
  - tx:
      concurrency: optimistic
      isolation: serializable
      steps:
        - op: put
          key: "1"
          value: "ghost"
  - op: get
    key: "1"
    checks:
      - type: count
        count: 0
`))
	require.NoError(t, err)

	c, err := Build(scenario)
	require.NoError(t, err)

	client := memory.New()
	defer client.Close()

	// The tx block never commits, so its write is discarded on close.
	_, err = c.Run(context.Background(), domain.NewSession("s1", client))
	assert.NoError(t, err)
}

func TestBuild_GroupBlock(t *testing.T) {
	scenario, err := Parse([]byte(`
name: grouped
steps:
  - group:
      name: seed
      steps:
        - op: put
          cache: users
          key: "1"
          value: "v"
  - op: get
    cache: users
    key: "1"
    checks:
      - type: count
        count: 1
`))
	require.NoError(t, err)

	c, err := Build(scenario)
	require.NoError(t, err)

	client := memory.New()
	defer client.Close()

	_, err = c.Run(context.Background(), domain.NewSession("s1", client))
	assert.NoError(t, err)
}

func TestBuild_RegistryResolvesCustomChecks(t *testing.T) {
	reg := registry.NewRegistry()
	reg.Register("value_longer_than", func(args map[string]any) (check.Check, error) {
		min, _ := args["min"].(int)
		return check.New("value longer than", func(res *ports.Result, s *domain.Session) (*domain.Session, error) {
			entry, err := res.Single()
			if err != nil {
				return nil, err
			}
			str, _ := entry.Value.(string)
			if len(str) <= min {
				return nil, fmt.Errorf("value %q too short", str)
			}
			return s, nil
		}), nil
	})

	scenario, err := Parse([]byte(`
name: custom-check
steps:
  - op: put
    cache: users
    key: "1"
    value: "alice"
  - op: get
    cache: users
    key: "1"
    checks:
      - type: value_longer_than
        min: 3
`))
	require.NoError(t, err)

	c, err := Build(scenario, WithRegistry(reg))
	require.NoError(t, err)

	client := memory.New()
	defer client.Close()

	_, err = c.Run(context.Background(), domain.NewSession("s1", client))
	assert.NoError(t, err)
}

func TestBuild_RejectsBadTxOptions(t *testing.T) {
	scenario, err := Parse([]byte(`
name: bad-tx
steps:
  - tx:
      concurrency: hopeful
      steps:
        - op: put
          cache: users
          key: "1"
          value: "v"
`))
	require.NoError(t, err)
	_, err = Build(scenario)
	assert.ErrorContains(t, err, `unknown tx concurrency "hopeful"`)
}
