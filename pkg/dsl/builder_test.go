package dsl

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/harrow/pkg/adapters/memory"
	"github.com/aretw0/harrow/pkg/check"
	"github.com/aretw0/harrow/pkg/domain"
	"github.com/aretw0/harrow/pkg/ports"
)

func runPipeline(t *testing.T, p *Pipeline) (*domain.Session, error) {
	t.Helper()
	client := memory.New()
	t.Cleanup(func() { client.Close() })
	return p.Build().Run(context.Background(), domain.NewSession("s1", client))
}

func TestPipeline_BasicFlow(t *testing.T) {
	p := NewPipeline("basic")
	p.Put("users", 1, "alice")
	p.Get("users", 1).
		Check(check.Count().Is(1)).
		Check(check.Single().Is("alice"))
	p.Remove("users", 1)
	p.Get("users", 1).Check(check.Count().Is(0))

	_, err := runPipeline(t, p)
	assert.NoError(t, err)
}

func TestPipeline_VarTemplate(t *testing.T) {
	p := NewPipeline("handoff")
	p.Put("users", 1, "alice")
	p.Get("users", 1).Check(check.Single().SaveAs("who"))
	p.Put("audit", 1, "${who}")
	p.Get("audit", 1).Check(check.Single().Is("alice"))

	_, err := runPipeline(t, p)
	assert.NoError(t, err)
}

func TestPipeline_ChecksApplyToTheirStep(t *testing.T) {
	// The failing check sits on the first get only; the run must stop
	// there and never reach the put.
	p := NewPipeline("placement")
	p.Get("users", 1).Check(check.Count().Is(99))
	p.Put("users", 1, "v")

	client := memory.New()
	t.Cleanup(func() { client.Close() })

	_, err := p.Build().Run(context.Background(), domain.NewSession("s1", client))
	require.Error(t, err)
	assert.ErrorContains(t, err, "get users")

	cache, err := client.Cache(context.Background(), "users", false)
	require.NoError(t, err)
	res, err := cache.Get(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Len())
}

func TestPipeline_TxBlockDiscardsWithoutCommit(t *testing.T) {
	p := NewPipeline("tx-discard")
	p.Tx(ports.TxOptions{}, func(tx *Pipeline) {
		tx.Put("users", 1, "ghost")
	})
	p.Get("users", 1).Check(check.Count().Is(0))

	_, err := runPipeline(t, p)
	assert.NoError(t, err)
}

func TestPipeline_TxBlockWithCommitPersists(t *testing.T) {
	p := NewPipeline("tx-commit")
	p.Tx(ports.TxOptions{}, func(tx *Pipeline) {
		tx.Put("users", 1, "durable")
		tx.Commit()
	})
	p.Get("users", 1).Check(check.Single().Is("durable"))

	_, err := runPipeline(t, p)
	assert.NoError(t, err)
}

func TestPipeline_GroupAndLock(t *testing.T) {
	p := NewPipeline("grouped")
	p.Lock("users", 1)
	p.Group("seed", func(g *Pipeline) {
		g.Put("users", 1, "v")
	})
	p.Unlock("users", 1)
	p.Get("users", 1).Check(check.Count().Is(1))

	_, err := runPipeline(t, p)
	assert.NoError(t, err)
}
