package worker

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"neighborly/internal/domain"
	"neighborly/internal/models"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// deleteTask is the queued unit of work: one orphaned blob key.
type deleteTask struct {
	Key        string    `json:"key"`
	EnqueuedAt time.Time `json:"enqueued_at"`
}

// Reaper deletes storage blobs whose listing document never made it to the
// store. Tasks go through Redis when available so they survive restarts,
// with an in-memory channel as fallback.
type Reaper struct {
	storage       domain.ObjectStorage
	redis         *redis.Client
	retryPolicy   RetryPolicy
	queue         chan deleteTask
	redisQueueKey string
	deadLetterKey string
	pollInterval  time.Duration
	logger        *zerolog.Logger
}

// NewReaper builds a reaper with sane defaults.
func NewReaper(storage domain.ObjectStorage, redisClient *redis.Client, retry RetryPolicy, logger *zerolog.Logger) *Reaper {
	return &Reaper{
		storage:       storage,
		redis:         redisClient,
		retryPolicy:   retry.withDefaults(),
		queue:         make(chan deleteTask, models.ReaperQueueSize),
		redisQueueKey: "reaper:queue",
		deadLetterKey: "reaper:deadletter",
		pollInterval:  2 * time.Second,
		logger:        logger,
	}
}

// EnqueueDelete schedules a blob for deletion via redis or the in-memory
// queue. Enqueueing never blocks the caller.
func (w *Reaper) EnqueueDelete(ctx context.Context, key string) error {
	if key == "" {
		return errors.New("blob key is required")
	}

	task := deleteTask{Key: key, EnqueuedAt: time.Now()}

	// Try redis first for durability.
	if w.redis != nil {
		if err := w.pushRedis(ctx, task); err != nil {
			w.logger.Warn().Err(err).Str("key", key).Msg("redis push failed, fallback to memory queue")
		} else {
			return nil
		}
	}

	select {
	case w.queue <- task:
		return nil
	default:
		return errors.New("reaper queue full")
	}
}

// Start launches the main loop; stops when ctx is done.
func (w *Reaper) Start(ctx context.Context) {
	w.logger.Info().Msg("reaper started")
	defer w.logger.Info().Msg("reaper stopped")

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		if t, ok := w.tryLocalQueue(); ok {
			w.processTask(ctx, t)
			continue
		}

		if t, ok := w.tryRedis(ctx); ok {
			w.processTask(ctx, t)
			continue
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(w.pollInterval):
		}
	}
}

func (w *Reaper) tryLocalQueue() (deleteTask, bool) {
	select {
	case t := <-w.queue:
		return t, true
	default:
		return deleteTask{}, false
	}
}

func (w *Reaper) tryRedis(ctx context.Context) (deleteTask, bool) {
	if w.redis == nil {
		return deleteTask{}, false
	}
	res, err := w.redis.BRPop(ctx, w.pollInterval, w.redisQueueKey).Result()
	if err != nil {
		if err != redis.Nil && ctx.Err() == nil {
			w.logger.Warn().Err(err).Msg("redis BRPOP error")
		}
		return deleteTask{}, false
	}
	if len(res) != 2 {
		return deleteTask{}, false
	}
	var task deleteTask
	if err := json.Unmarshal([]byte(res[1]), &task); err != nil {
		w.logger.Error().Err(err).Msg("decode redis task")
		return deleteTask{}, false
	}
	return task, true
}

// processTask retries the delete with backoff until it succeeds or the
// policy is exhausted, then dead-letters the key.
func (w *Reaper) processTask(ctx context.Context, task deleteTask) {
	var lastErr error
	for attempt := 1; attempt <= w.retryPolicy.MaxRetries; attempt++ {
		lastErr = w.storage.Remove(ctx, task.Key)
		if lastErr == nil {
			w.logger.Info().Str("key", task.Key).Msg("orphaned blob deleted")
			return
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(w.retryPolicy.NextDelay(attempt)):
		}
	}

	w.logger.Error().Err(lastErr).Str("key", task.Key).Msg("blob delete exhausted retries")
	w.pushDeadLetter(ctx, task)
}

func (w *Reaper) pushRedis(ctx context.Context, task deleteTask) error {
	if w.redis == nil {
		return errors.New("redis client is nil")
	}
	data, err := json.Marshal(task)
	if err != nil {
		return err
	}
	return w.redis.LPush(ctx, w.redisQueueKey, data).Err()
}

func (w *Reaper) pushDeadLetter(ctx context.Context, task deleteTask) {
	if w.redis == nil {
		return
	}
	data, err := json.Marshal(task)
	if err != nil {
		w.logger.Error().Err(err).Str("key", task.Key).Msg("encode deadletter")
		return
	}
	if err := w.redis.LPush(ctx, w.deadLetterKey, data).Err(); err != nil {
		w.logger.Error().Err(err).Str("key", task.Key).Msg("deadletter push")
	}
}
