package redisstore

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"casinobot/events"
	"casinobot/models"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func setupRedis(t *testing.T) *redis.Client {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}

	ctx := context.Background()
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections"),
			Labels: map[string]string{
				"test":      "casinobot-redisstore",
				"test-name": t.Name(),
				"cleanup":   "auto",
			},
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := container.Terminate(ctx); err != nil {
			t.Logf("Warning: failed to terminate test container: %v", err)
		}
	})

	endpoint, err := container.Endpoint(ctx, "")
	require.NoError(t, err)

	client, err := Connect(ctx, endpoint)
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })
	return client
}

func TestStore_CreateUpdateAndReload(t *testing.T) {
	client := setupRedis(t)
	store := NewStore(client, 1000, nil)
	ctx := context.Background()

	require.NoError(t, store.Ping(ctx))

	uow := store.Create()
	require.NoError(t, uow.Begin(ctx))
	account, created, err := uow.AccountRepository().GetOrCreate(ctx, "42")
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, int64(1000), account.Balance)

	require.NoError(t, uow.AccountRepository().UpdateBalance(ctx, "42", 1300))
	require.NoError(t, uow.AccountRepository().UpdateLastDailyClaim(ctx, "42", 1_700_000_000))
	require.NoError(t, uow.BalanceHistoryRepository().Record(ctx, &models.BalanceHistory{
		AccountID:       "42",
		BalanceBefore:   1000,
		BalanceAfter:    1300,
		ChangeAmount:    300,
		TransactionType: models.TransactionTypeDailyReward,
		TransactionMetadata: map[string]any{
			"claimed_at": 1_700_000_000,
		},
	}))

	exists, err := client.Exists(ctx, accountKey("42")).Result()
	require.NoError(t, err)
	assert.Equal(t, int64(0), exists, "writes must stay staged until commit")

	require.NoError(t, uow.Commit())

	uow = store.Create()
	require.NoError(t, uow.Begin(ctx))
	defer uow.Rollback()

	account, created, err = uow.AccountRepository().GetOrCreate(ctx, "42")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, int64(1300), account.Balance)
	assert.Equal(t, int64(1_700_000_000), account.LastDailyClaim)

	history, err := uow.BalanceHistoryRepository().GetByAccount(ctx, "42", 10)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, models.TransactionTypeDailyReward, history[0].TransactionType)
	assert.Equal(t, int64(300), history[0].ChangeAmount)
	assert.NotEmpty(t, history[0].ID)
}

func TestStore_RollbackDiscardsAndReleasesLock(t *testing.T) {
	client := setupRedis(t)
	store := NewStore(client, 1000, nil)
	ctx := context.Background()

	uow := store.Create()
	require.NoError(t, uow.Begin(ctx))
	require.NoError(t, uow.AccountRepository().UpdateBalance(ctx, "7", 5))
	require.NoError(t, uow.Rollback())

	exists, err := client.Exists(ctx, accountKey("7"), lockKey("7")).Result()
	require.NoError(t, err)
	assert.Equal(t, int64(0), exists)
}

func TestStore_CommitFailsWhenLockLost(t *testing.T) {
	client := setupRedis(t)
	store := NewStore(client, 1000, nil)
	ctx := context.Background()

	tests := []struct {
		name  string
		steal func(id string) error
	}{
		{"expired", func(id string) error { return client.Del(ctx, lockKey(id)).Err() }},
		{"taken over", func(id string) error { return client.Set(ctx, lockKey(id), "other-holder", 0).Err() }},
	}

	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id := fmt.Sprintf("lost-%d", i)
			uow := store.Create()
			require.NoError(t, uow.Begin(ctx))
			_, _, err := uow.AccountRepository().GetOrCreate(ctx, id)
			require.NoError(t, err)
			require.NoError(t, uow.AccountRepository().UpdateBalance(ctx, id, 1500))

			require.NoError(t, tt.steal(id))

			err = uow.Commit()
			assert.ErrorIs(t, err, ErrLockLost)

			exists, err := client.Exists(ctx, accountKey(id), historyKey(id)).Result()
			require.NoError(t, err)
			assert.Equal(t, int64(0), exists)
		})
	}
}

func TestStore_LockTimesOutWhileHeld(t *testing.T) {
	client := setupRedis(t)
	store := NewStore(client, 1000, nil)
	ctx := context.Background()

	holder := store.Create()
	require.NoError(t, holder.Begin(ctx))
	_, _, err := holder.AccountRepository().GetOrCreate(ctx, "9")
	require.NoError(t, err)

	waitCtx, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
	defer cancel()
	waiter := store.Create()
	require.NoError(t, waiter.Begin(waitCtx))
	_, _, err = waiter.AccountRepository().GetOrCreate(waitCtx, "9")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	require.NoError(t, waiter.Rollback())

	require.NoError(t, holder.Commit())
}

func TestStore_NegativeBalanceRejected(t *testing.T) {
	client := setupRedis(t)
	store := NewStore(client, 1000, nil)
	ctx := context.Background()

	uow := store.Create()
	require.NoError(t, uow.Begin(ctx))
	defer uow.Rollback()
	assert.Error(t, uow.AccountRepository().UpdateBalance(ctx, "3", -1))
}

func TestStore_ConcurrentIncrementsSerialize(t *testing.T) {
	client := setupRedis(t)
	bus := events.NewBus()
	store := NewStore(client, 0, bus)
	ctx := context.Background()

	const workers = 20
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			uow := store.Create()
			if !assert.NoError(t, uow.Begin(ctx)) {
				return
			}
			defer uow.Rollback()

			account, _, err := uow.AccountRepository().GetOrCreate(ctx, "shared")
			if !assert.NoError(t, err) {
				return
			}
			if !assert.NoError(t, uow.AccountRepository().UpdateBalance(ctx, "shared", account.Balance+1)) {
				return
			}
			assert.NoError(t, uow.Commit())
		}()
	}
	wg.Wait()

	balance, err := client.HGet(ctx, accountKey("shared"), "balance").Int64()
	require.NoError(t, err)
	assert.Equal(t, int64(workers), balance)
}

func TestStore_HistoryIsCapped(t *testing.T) {
	client := setupRedis(t)
	store := NewStore(client, 1000, nil)
	ctx := context.Background()

	uow := store.Create()
	require.NoError(t, uow.Begin(ctx))
	for i := 0; i < historyCap+5; i++ {
		require.NoError(t, uow.BalanceHistoryRepository().Record(ctx, &models.BalanceHistory{
			AccountID:       "5",
			ChangeAmount:    int64(i),
			TransactionType: models.TransactionTypeSlotsLoss,
		}))
	}
	require.NoError(t, uow.Commit())

	length, err := client.LLen(ctx, historyKey("5")).Result()
	require.NoError(t, err)
	assert.Equal(t, int64(historyCap), length)

	uow = store.Create()
	require.NoError(t, uow.Begin(ctx))
	defer uow.Rollback()
	history, err := uow.BalanceHistoryRepository().GetByAccount(ctx, "5", 3)
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, int64(historyCap+4), history[0].ChangeAmount)
	assert.Equal(t, int64(historyCap+2), history[2].ChangeAmount)
}
