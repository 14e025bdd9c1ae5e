package scoring

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/rentalneeds/leadflow-backend/pkg/testutil"
)

func startRedis(t *testing.T) (client *redis.Client) {
	t.Helper()
	testutil.SkipIfShort(t)
	ctx := context.Background()

	var (
		container testcontainers.Container
		err       error
	)
	func() {
		// testcontainers panics when no docker host can be found.
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("docker unavailable: %v", r)
			}
		}()
		container, err = testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
			ContainerRequest: testcontainers.ContainerRequest{
				Image:        "redis:7-alpine",
				ExposedPorts: []string{"6379/tcp"},
				WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(30 * time.Second),
			},
			Started: true,
		})
	}()
	if err != nil {
		t.Skipf("redis container unavailable: %v", err)
	}
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	endpoint, err := container.Endpoint(ctx, "")
	require.NoError(t, err)

	client = redis.NewClient(&redis.Options{Addr: endpoint})
	t.Cleanup(func() { _ = client.Close() })
	require.NoError(t, client.Ping(ctx).Err())
	return client
}

func TestRedisCache_Integration(t *testing.T) {
	client := startRedis(t)
	cache := NewRedisCache(client, time.Minute)
	ctx := testutil.DefaultTestContext(t)

	_, ok, err := cache.Get(ctx, "https://utfs.io/f/a.png")
	require.NoError(t, err)
	assert.False(t, ok)

	want := &Analysis{TrustScore: 55, Recommendation: "Request a deposit"}
	require.NoError(t, cache.Set(ctx, "https://utfs.io/f/a.png", want))

	got, ok, err := cache.Get(ctx, "https://utfs.io/f/a.png")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, want, got)

	ttl, err := client.TTL(ctx, CacheKey("https://utfs.io/f/a.png")).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, 50*time.Second)
}
