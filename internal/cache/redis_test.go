package cache

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/trogers1052/carteira-dashboard/internal/models"
)

func TestEncodeDecode(t *testing.T) {
	cur := decimal.RequireFromString("33.10")
	fetched := time.Date(2026, 10, 14, 14, 30, 0, 0, models.MarketLocation)

	fields := encode(&models.QuoteSnapshot{Code: "PETR4.SA", CurrentPrice: &cur, FetchedAt: fetched})
	assert.Equal(t, "33.1", fields[fieldCurrent])
	assert.Equal(t, "", fields[fieldPrevious])
	assert.Equal(t, "2026-10-14 14:30:00", fields[fieldTime])

	strs := make(map[string]string, len(fields))
	for k, v := range fields {
		strs[k] = v.(string)
	}
	q, err := decode("PETR4.SA", strs)
	require.NoError(t, err)
	require.NotNil(t, q.CurrentPrice)
	assert.True(t, q.CurrentPrice.Equal(cur))
	assert.Nil(t, q.PreviousPrice)
	assert.True(t, q.FetchedAt.Equal(fetched))
}

func TestDecode_RejectsGarbage(t *testing.T) {
	_, err := decode("PETR4.SA", map[string]string{fieldCurrent: "abc"})
	assert.Error(t, err)

	_, err = decode("PETR4.SA", map[string]string{fieldTime: "ontem"})
	assert.Error(t, err)
}

func setupRedis(t *testing.T) *redis.Client {
	t.Helper()
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
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Errorf("failed to terminate container: %v", err)
		}
	})

	endpoint, err := container.Endpoint(ctx, "")
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{Addr: endpoint})
	t.Cleanup(func() { client.Close() })
	return client
}

func TestRedisCache(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()
	cache := NewRedisWithClient(setupRedis(t), "cotacao:", nil)

	cur := decimal.RequireFromString("33.10")
	prev := decimal.RequireFromString("32.00")
	fetched := time.Date(2026, 10, 14, 14, 30, 0, 0, models.MarketLocation)

	t.Run("SaveQuote upserts by code", func(t *testing.T) {
		require.NoError(t, cache.SaveQuote(ctx, &models.QuoteSnapshot{Code: "PETR4.SA", CurrentPrice: &prev, PreviousPrice: &prev, FetchedAt: fetched}))
		require.NoError(t, cache.SaveQuote(ctx, &models.QuoteSnapshot{Code: "PETR4.SA", CurrentPrice: &cur, FetchedAt: fetched}))
		require.NoError(t, cache.SaveQuote(ctx, &models.QuoteSnapshot{Code: "VALE3.SA", CurrentPrice: &cur, PreviousPrice: &prev, FetchedAt: fetched}))

		quotes, err := cache.LoadQuotes(ctx)
		require.NoError(t, err)
		require.Len(t, quotes, 2)
		assert.True(t, quotes["PETR4.SA"].CurrentPrice.Equal(cur))
		assert.Nil(t, quotes["PETR4.SA"].PreviousPrice)
		assert.True(t, quotes["VALE3.SA"].PreviousPrice.Equal(prev))
		assert.True(t, quotes["VALE3.SA"].FetchedAt.Equal(fetched))
	})

	t.Run("LoadQuotes skips unreadable entries", func(t *testing.T) {
		require.NoError(t, cache.client.HSet(ctx, "cotacao:BAD3.SA", fieldCurrent, "x").Err())

		quotes, err := cache.LoadQuotes(ctx)
		require.NoError(t, err)
		assert.NotContains(t, quotes, "BAD3.SA")
	})
}
