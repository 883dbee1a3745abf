package ledger_test

import (
	"context"
	"testing"
	"time"

	"dealersync/core/database"
	"dealersync/feature/inventory/ledger"
	"dealersync/feature/inventory/models"

	"github.com/stretchr/testify/assert"
)

func newStore(t *testing.T) *ledger.Store {
	t.Helper()

	db, err := database.Connect(database.Config{Driver: "sqlite", Name: ":memory:"})
	assert.NoError(t, err)

	store := ledger.NewStore(db)
	assert.NoError(t, store.AutoMigrate())
	return store
}

func TestLatest_Empty(t *testing.T) {
	store := newStore(t)

	entry, err := store.Latest(context.Background())
	assert.Nil(t, entry)
	assert.ErrorIs(t, err, ledger.ErrEmpty)
}

func TestAppendAndLatest(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	first := time.Date(2026, 8, 1, 6, 0, 0, 0, time.UTC)
	second := first.Add(24 * time.Hour)

	assert.NoError(t, store.Append(ctx, &models.SyncLog{
		Timestamp:        first,
		AddedCount:       12,
		TotalActiveAfter: 12,
	}))
	assert.NoError(t, store.Append(ctx, &models.SyncLog{
		Timestamp:        second,
		UpdatedCount:     3,
		RetiredCount:     1,
		TotalActiveAfter: 11,
	}))

	latest, err := store.Latest(ctx)
	assert.NoError(t, err)
	assert.True(t, latest.Timestamp.Equal(second))
	assert.Equal(t, 3, latest.UpdatedCount)
	assert.Equal(t, int64(11), latest.TotalActiveAfter)

	count, err := store.Count(ctx)
	assert.NoError(t, err)
	assert.Equal(t, int64(2), count)
}
