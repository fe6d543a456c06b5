package harrow_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/harrow"
	"github.com/aretw0/harrow/pkg/adapters/memory"
	"github.com/aretw0/harrow/pkg/domain"
	"github.com/aretw0/harrow/pkg/ports"
	"github.com/aretw0/harrow/pkg/runner"
)

func TestLoadScenario(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
name: file-roundtrip
steps:
  - op: put
    cache: users
    key: "1"
    value: "v"
  - op: get
    cache: users
    key: "1"
    checks:
      - type: exists
        key: "1"
`), 0o644))

	c, err := harrow.LoadScenario(path)
	require.NoError(t, err)
	assert.Equal(t, "file-roundtrip", c.Name())

	client := memory.New()
	defer client.Close()

	_, err = c.Run(context.Background(), domain.NewSession("s1", client))
	assert.NoError(t, err)
}

func TestLoadScenario_MissingFile(t *testing.T) {
	_, err := harrow.LoadScenario(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestRun_CollectsStats(t *testing.T) {
	c, err := harrow.ParseScenario([]byte(`
name: quick
steps:
  - op: put
    cache: users
    key: "1"
    value: "v"
`))
	require.NoError(t, err)

	stats, err := harrow.Run(context.Background(), c,
		func(ctx context.Context) (ports.Client, error) { return memory.New(), nil },
		runner.WithUsers(2), runner.WithIterations(2))
	require.NoError(t, err)
	assert.Equal(t, int64(4), stats.Runs)
	assert.Equal(t, int64(0), stats.Failures)
}
