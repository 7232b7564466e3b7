package booking

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"neighborly/internal/events"
	"neighborly/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scriptedConfirmer struct {
	answer bool
	err    error
	block  bool
	called chan struct{}
}

func (c *scriptedConfirmer) Confirm(ctx context.Context, title, message string) (bool, error) {
	if c.called != nil {
		close(c.called)
	}
	if c.block {
		<-ctx.Done()
		return false, ctx.Err()
	}
	return c.answer, c.err
}

func testListing() *models.Listing {
	return &models.Listing{
		ID:        "listing-1",
		Title:     "Power Drill",
		Category:  "Power Tools",
		OwnerID:   "owner-1",
		OwnerName: "Sarah M.",
	}
}

func newFlow(c *scriptedConfirmer, bus *events.EventBus, timeout time.Duration) *Flow {
	logger := zerolog.Nop()
	return NewFlow(c, bus, timeout, &logger)
}

func TestRequest_Confirmed(t *testing.T) {
	flow := newFlow(&scriptedConfirmer{answer: true}, nil, time.Second)

	require.Equal(t, models.StatusIdle, flow.Status())
	status, err := flow.Request(context.Background(), testListing(), "user-1")

	require.NoError(t, err)
	assert.Equal(t, models.StatusFulfilled, status)
	assert.Equal(t, models.StatusFulfilled, flow.Status())

	req := flow.CurrentRequest()
	require.NotNil(t, req)
	assert.Equal(t, "listing-1", req.ListingID)
	assert.Equal(t, models.StatusFulfilled, req.Status)
}

func TestRequest_Cancelled(t *testing.T) {
	flow := newFlow(&scriptedConfirmer{answer: false}, nil, time.Second)

	status, err := flow.Request(context.Background(), testListing(), "user-1")

	require.NoError(t, err)
	assert.Equal(t, models.StatusDeclined, status)
	assert.Equal(t, models.StatusDeclined, flow.Status())
}

func TestRequest_ConfirmerError_Declines(t *testing.T) {
	flow := newFlow(&scriptedConfirmer{err: errors.New("overlay dismissed")}, nil, time.Second)

	status, err := flow.Request(context.Background(), testListing(), "user-1")

	require.NoError(t, err)
	assert.Equal(t, models.StatusDeclined, status)
}

func TestRequest_TimeoutDeclines(t *testing.T) {
	flow := newFlow(&scriptedConfirmer{block: true}, nil, 20*time.Millisecond)

	start := time.Now()
	status, err := flow.Request(context.Background(), testListing(), "user-1")

	require.NoError(t, err)
	assert.Equal(t, models.StatusDeclined, status)
	assert.Less(t, time.Since(start), time.Second)
}

func TestRequest_SecondRequestWhilePending(t *testing.T) {
	called := make(chan struct{})
	flow := newFlow(&scriptedConfirmer{block: true, called: called}, nil, 200*time.Millisecond)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, _ = flow.Request(context.Background(), testListing(), "user-1")
	}()

	<-called
	assert.Equal(t, models.StatusRequested, flow.Status())
	_, err := flow.Request(context.Background(), testListing(), "user-2")
	assert.ErrorIs(t, err, ErrRequestInFlight)
	wg.Wait()
}

func TestReset(t *testing.T) {
	flow := newFlow(&scriptedConfirmer{answer: true}, nil, time.Second)

	_, err := flow.Request(context.Background(), testListing(), "user-1")
	require.NoError(t, err)

	flow.Reset()
	assert.Equal(t, models.StatusIdle, flow.Status())
	assert.Nil(t, flow.CurrentRequest())

	// The flow can be requested again after a reset.
	status, err := flow.Request(context.Background(), testListing(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusFulfilled, status)
}

func TestRequest_PublishesTransitionEvents(t *testing.T) {
	bus := events.NewEventBus()

	var mu sync.Mutex
	var seen []string
	var lastPayload events.BookingEventPayload
	handler := func(e *events.Event) error {
		mu.Lock()
		defer mu.Unlock()
		seen = append(seen, e.Type)
		return json.Unmarshal(e.Payload, &lastPayload)
	}
	bus.Subscribe(events.EventBookingRequested, handler)
	bus.Subscribe(events.EventBookingFulfilled, handler)
	bus.Subscribe(events.EventBookingDeclined, handler)

	flow := newFlow(&scriptedConfirmer{answer: true}, bus, time.Second)
	_, err := flow.Request(context.Background(), testListing(), "user-1")
	require.NoError(t, err)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{events.EventBookingRequested, events.EventBookingFulfilled}, seen)
	assert.Equal(t, "listing-1", lastPayload.ListingID)
	assert.Equal(t, "user-1", lastPayload.RequesterID)
	assert.Equal(t, models.StatusFulfilled, lastPayload.Status)
}
