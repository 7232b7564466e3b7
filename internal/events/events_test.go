package events

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventBus_PublishJSON(t *testing.T) {
	bus := NewEventBus()

	var received []*Event
	bus.Subscribe(EventListingCreated, func(e *Event) error {
		received = append(received, e)
		return nil
	})

	payload := ListingEventPayload{ListingID: "l1", Title: "Power Drill", Category: "Power Tools"}
	require.NoError(t, bus.PublishJSON(EventListingCreated, payload))

	require.Len(t, received, 1)
	var got ListingEventPayload
	require.NoError(t, json.Unmarshal(received[0].Payload, &got))
	assert.Equal(t, payload, got)
	assert.False(t, received[0].CreatedAt.IsZero())
}

func TestEventBus_UnsubscribedTypeIgnored(t *testing.T) {
	bus := NewEventBus()

	called := false
	bus.Subscribe(EventBookingRequested, func(e *Event) error {
		called = true
		return nil
	})

	require.NoError(t, bus.PublishJSON(EventListingCreated, ListingEventPayload{ListingID: "l1"}))
	assert.False(t, called)
}

func TestEventBus_NilBusIsNoop(t *testing.T) {
	var bus *EventBus
	assert.NoError(t, bus.PublishJSON(EventListingCreated, nil))
}
