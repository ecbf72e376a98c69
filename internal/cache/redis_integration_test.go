//go:build integration

package cache

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func setupRedis(t *testing.T) *redis.Client {
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(30 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "6379")
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{Addr: host + ":" + port.Port()})
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestRedisStoreInvalidateAndRefetch(t *testing.T) {
	ctx := context.Background()
	ns := NewNamespace(NewRedisStore(setupRedis(t)), "blogs", time.Minute, nil)

	version := 1
	load := func(context.Context) (int, error) { return version, nil }

	got, err := Fetch(ctx, ns, "page:1", load)
	require.NoError(t, err)
	assert.Equal(t, 1, got)

	version = 2
	got, err = Fetch(ctx, ns, "page:1", load)
	require.NoError(t, err)
	assert.Equal(t, 1, got)

	require.NoError(t, ns.Invalidate(ctx))
	got, err = Fetch(ctx, ns, "page:1", load)
	require.NoError(t, err)
	assert.Equal(t, 2, got)
}
