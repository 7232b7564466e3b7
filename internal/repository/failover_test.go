package repository

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"neighborly/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type mockRepo struct {
	mock.Mock
}

func (m *mockRepo) GetSession(ctx context.Context, userID string) (*models.SessionState, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SessionState), args.Error(1)
}

func (m *mockRepo) SetSession(ctx context.Context, state *models.SessionState) error {
	args := m.Called(ctx, state)
	return args.Error(0)
}

func (m *mockRepo) ClearSession(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *mockRepo) CheckRateLimit(ctx context.Context, userID string, limit int, window time.Duration) (bool, error) {
	args := m.Called(ctx, userID, limit, window)
	return args.Bool(0), args.Error(1)
}

func TestFailoverStateRepository(t *testing.T) {
	primary := new(mockRepo)
	fallback := new(mockRepo)
	logger := zerolog.New(io.Discard)
	repo := NewFailoverStateRepository(primary, fallback, &logger)
	ctx := context.Background()

	t.Run("PrimarySuccess", func(t *testing.T) {
		state := &models.SessionState{UserID: "u1"}
		primary.On("GetSession", ctx, "u1").Return(state, nil).Once()

		got, err := repo.GetSession(ctx, "u1")
		assert.NoError(t, err)
		assert.Equal(t, state, got)
		primary.AssertExpectations(t)
	})

	t.Run("PrimaryFailFallbackSuccess", func(t *testing.T) {
		state := &models.SessionState{UserID: "u2"}
		primary.On("GetSession", ctx, "u2").Return(nil, errors.New("fail")).Once()
		fallback.On("GetSession", ctx, "u2").Return(state, nil).Once()

		got, err := repo.GetSession(ctx, "u2")
		assert.NoError(t, err)
		assert.Equal(t, state, got)
		assert.True(t, repo.isDown.Load())
		primary.AssertExpectations(t)
		fallback.AssertExpectations(t)
	})

	t.Run("RecoveryAttempt", func(t *testing.T) {
		repo.isDown.Store(true)
		repo.lastCheck = time.Now().Add(-2 * time.Minute)

		state := &models.SessionState{UserID: "u3"}
		primary.On("GetSession", ctx, "u3").Return(state, nil).Once()

		got, err := repo.GetSession(ctx, "u3")
		assert.NoError(t, err)
		assert.Equal(t, state, got)
		assert.False(t, repo.isDown.Load())
		primary.AssertExpectations(t)
	})

	t.Run("RecoveryAttemptFail", func(t *testing.T) {
		repo.isDown.Store(true)
		repo.lastCheck = time.Now().Add(-2 * time.Minute)

		primary.On("GetSession", ctx, "u33").Return(nil, errors.New("still fail")).Once()
		fallback.On("GetSession", ctx, "u33").Return(nil, nil).Once()

		_, err := repo.GetSession(ctx, "u33")
		assert.NoError(t, err)
		assert.True(t, repo.isDown.Load())
		primary.AssertExpectations(t)
		fallback.AssertExpectations(t)
	})

	t.Run("SetSessionSuccess", func(t *testing.T) {
		repo.isDown.Store(false)
		state := &models.SessionState{UserID: "u77"}
		primary.On("SetSession", ctx, state).Return(nil).Once()

		err := repo.SetSession(ctx, state)
		assert.NoError(t, err)
		primary.AssertExpectations(t)
	})

	t.Run("SetSessionFailover", func(t *testing.T) {
		repo.isDown.Store(false)
		state := &models.SessionState{UserID: "u4"}
		primary.On("SetSession", ctx, state).Return(errors.New("fail")).Once()
		fallback.On("SetSession", ctx, state).Return(nil).Once()

		err := repo.SetSession(ctx, state)
		assert.NoError(t, err)
		assert.True(t, repo.isDown.Load())
		primary.AssertExpectations(t)
		fallback.AssertExpectations(t)
	})

	t.Run("ClearSessionFailover", func(t *testing.T) {
		repo.isDown.Store(false)
		primary.On("ClearSession", ctx, "u5").Return(errors.New("fail")).Once()
		fallback.On("ClearSession", ctx, "u5").Return(nil).Once()

		err := repo.ClearSession(ctx, "u5")
		assert.NoError(t, err)
		assert.True(t, repo.isDown.Load())
		primary.AssertExpectations(t)
		fallback.AssertExpectations(t)
	})

	t.Run("CheckRateLimitFailover", func(t *testing.T) {
		repo.isDown.Store(false)
		primary.On("CheckRateLimit", ctx, "u6", 10, time.Minute).Return(false, errors.New("fail")).Once()
		fallback.On("CheckRateLimit", ctx, "u6", 10, time.Minute).Return(true, nil).Once()

		allowed, err := repo.CheckRateLimit(ctx, "u6", 10, time.Minute)
		assert.NoError(t, err)
		assert.True(t, allowed)
		assert.True(t, repo.isDown.Load())
		primary.AssertExpectations(t)
		fallback.AssertExpectations(t)
	})

	t.Run("AlreadyDownSkipsPrimary", func(t *testing.T) {
		repo.isDown.Store(true)
		repo.lastCheck = time.Now()
		state := &models.SessionState{UserID: "u44"}
		fallback.On("SetSession", ctx, state).Return(nil).Once()
		fallback.On("ClearSession", ctx, "u55").Return(nil).Once()
		fallback.On("CheckRateLimit", ctx, "u66", 10, time.Minute).Return(true, nil).Once()

		assert.NoError(t, repo.SetSession(ctx, state))
		assert.NoError(t, repo.ClearSession(ctx, "u55"))
		allowed, err := repo.CheckRateLimit(ctx, "u66", 10, time.Minute)
		assert.NoError(t, err)
		assert.True(t, allowed)
		fallback.AssertExpectations(t)
	})
}
