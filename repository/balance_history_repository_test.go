package repository

import (
	"context"
	"testing"

	"casinobot/models"
	"casinobot/repository/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBalanceHistoryRepository_RecordAndList(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	accounts := NewAccountRepository(testDB.DB, 1000)
	repo := NewBalanceHistoryRepository(testDB.DB)
	ctx := context.Background()

	_, _, err := accounts.GetOrCreate(ctx, "444")
	require.NoError(t, err)

	first := testutil.CreateTestBalanceHistoryWithAmounts("444", 1000, 1100, models.TransactionTypeCoinflipWin)
	first.TransactionMetadata = map[string]any{"bet": 100, "choice": "heads"}
	require.NoError(t, repo.Record(ctx, first))
	assert.Len(t, first.ID, 26)
	assert.False(t, first.CreatedAt.IsZero())

	second := testutil.CreateTestBalanceHistoryWithAmounts("444", 1100, 1300, models.TransactionTypeSlotsWin)
	second.TransactionMetadata = nil
	require.NoError(t, repo.Record(ctx, second))

	entries, err := repo.GetByAccount(ctx, "444", 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, second.ID, entries[0].ID)
	assert.Equal(t, models.TransactionTypeSlotsWin, entries[0].TransactionType)
	assert.Equal(t, int64(200), entries[0].ChangeAmount)

	assert.Equal(t, first.ID, entries[1].ID)
	assert.Equal(t, "heads", entries[1].TransactionMetadata["choice"])
	assert.Equal(t, float64(100), entries[1].TransactionMetadata["bet"])

	limited, err := repo.GetByAccount(ctx, "444", 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestBalanceHistoryRepository_UnknownAccount(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	repo := NewBalanceHistoryRepository(testDB.DB)
	ctx := context.Background()

	err := repo.Record(ctx, testutil.CreateTestBalanceHistory("missing", models.TransactionTypeSlotsLoss))
	assert.Error(t, err)

	entries, err := repo.GetByAccount(ctx, "missing", 5)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
