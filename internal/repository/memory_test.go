package repository

import (
	"context"
	"testing"
	"time"

	"neighborly/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStateRepository(t *testing.T) {
	repo := NewMemoryStateRepository(time.Hour)
	ctx := context.Background()

	t.Run("SetAndGetSession", func(t *testing.T) {
		state := &models.SessionState{
			UserID:      "user-1",
			CurrentStep: "browsing",
			TempData:    map[string]interface{}{"query": "drill"},
		}

		err := repo.SetSession(ctx, state)
		require.NoError(t, err)

		got, err := repo.GetSession(ctx, "user-1")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, "browsing", got.CurrentStep)
		assert.Equal(t, "drill", got.TempData["query"])
	})

	t.Run("GetNonExistentSession", func(t *testing.T) {
		got, err := repo.GetSession(ctx, "missing")
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("ClearSession", func(t *testing.T) {
		repo.SetSession(ctx, &models.SessionState{UserID: "user-2"})

		err := repo.ClearSession(ctx, "user-2")
		require.NoError(t, err)

		got, _ := repo.GetSession(ctx, "user-2")
		assert.Nil(t, got)
	})

	t.Run("RateLimit", func(t *testing.T) {
		limit := 2
		window := 50 * time.Millisecond

		allowed, err := repo.CheckRateLimit(ctx, "user-3", limit, window)
		require.NoError(t, err)
		assert.True(t, allowed)

		allowed, _ = repo.CheckRateLimit(ctx, "user-3", limit, window)
		assert.True(t, allowed)

		allowed, _ = repo.CheckRateLimit(ctx, "user-3", limit, window)
		assert.False(t, allowed)

		// Window expiry resets the counter.
		time.Sleep(60 * time.Millisecond)
		allowed, _ = repo.CheckRateLimit(ctx, "user-3", limit, window)
		assert.True(t, allowed)
	})
}
