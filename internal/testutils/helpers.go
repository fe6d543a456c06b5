package testutils

import (
	"testing"

	"github.com/alicebob/miniredis/v2"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/harrow/pkg/adapters/redis"
)

// SetupRedis starts an in-process Redis server and returns it together
// with a harrow client wired to it. Both are torn down with the test.
// It fails the test immediately on error.
func SetupRedis(t *testing.T, opts ...redis.Option) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err, "Failed to start miniredis")
	t.Cleanup(mr.Close)

	rdb := backend.NewClient(&backend.Options{
		Addr: mr.Addr(),
	})
	client := redis.NewFromClient(rdb, opts...)
	t.Cleanup(func() { client.Close() })

	return mr, client
}
