package cache

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startRedis(t *testing.T) *redis.Client {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping redis integration test in short mode")
	}
	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Skipf("docker not available: %v", err)
	}
	if err := pool.Client.Ping(); err != nil {
		t.Skipf("docker not available: %v", err)
	}
	pool.MaxWait = 30 * time.Second

	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "redis",
		Tag:        "7-alpine",
	}, func(hc *docker.HostConfig) {
		hc.AutoRemove = true
		hc.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = pool.Purge(resource) })
	_ = resource.Expire(120)

	client := redis.NewClient(&redis.Options{Addr: fmt.Sprintf("localhost:%s", resource.GetPort("6379/tcp"))})
	require.NoError(t, pool.Retry(func() error {
		return client.Ping(context.Background()).Err()
	}))
	t.Cleanup(func() { client.Close() })
	return client
}

func TestRedisCache(t *testing.T) {
	client := startRedis(t)
	ctx := context.Background()
	c := NewRedisCache(client, time.Minute)

	_, found, err := c.Get(ctx, "task:1")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, c.Set(ctx, "task:1", []byte(`{"id":1}`)))
	v, found, err := c.Get(ctx, "task:1")
	require.NoError(t, err)
	assert.True(t, found)
	assert.JSONEq(t, `{"id":1}`, string(v))

	ttl, err := client.TTL(ctx, "task:1").Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))

	require.NoError(t, c.Del(ctx, "task:1"))
	_, found, err = c.Get(ctx, "task:1")
	require.NoError(t, err)
	assert.False(t, found)
}
