package booking

import (
	"context"
	"errors"
	"sync"
	"time"

	"neighborly/internal/domain"
	"neighborly/internal/events"
	"neighborly/internal/models"

	"github.com/rs/zerolog"
)

// ErrRequestInFlight is returned when Request is called while a previous
// request on the same flow has not resolved yet.
var ErrRequestInFlight = errors.New("booking request already in flight")

// Flow drives a single listing's booking request through its states:
// Idle -> Requested -> Fulfilled or Declined. A resolved flow can be
// re-armed with Reset.
type Flow struct {
	mu        sync.Mutex
	status    string
	request   *models.BookingRequest
	confirmer domain.Confirmer
	bus       domain.EventPublisher
	timeout   time.Duration
	logger    *zerolog.Logger
}

func NewFlow(confirmer domain.Confirmer, bus domain.EventPublisher, timeout time.Duration, logger *zerolog.Logger) *Flow {
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	return &Flow{
		status:    models.StatusIdle,
		confirmer: confirmer,
		bus:       bus,
		timeout:   timeout,
		logger:    logger,
	}
}

// Status returns the current state of the flow.
func (f *Flow) Status() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.status
}

// Request asks the requester to confirm a booking for the listing and
// blocks until the request resolves. The flow transitions to Requested
// immediately; a positive confirmation resolves to Fulfilled, a negative
// one or an expired context resolves to Declined. Owners are expected to
// answer within models.OwnerResponseWindow, but the flow does not enforce
// it beyond the configured timeout.
func (f *Flow) Request(ctx context.Context, listing *models.Listing, requesterID string) (string, error) {
	f.mu.Lock()
	if f.status == models.StatusRequested {
		f.mu.Unlock()
		return f.status, ErrRequestInFlight
	}
	f.status = models.StatusRequested
	f.request = &models.BookingRequest{
		ListingID:   listing.ID,
		RequesterID: requesterID,
		Status:      models.StatusRequested,
		CreatedAt:   time.Now(),
	}
	f.mu.Unlock()

	f.publish(events.EventBookingRequested, listing, requesterID)
	f.logger.Info().Str("listing_id", listing.ID).Str("requester_id", requesterID).Msg("booking requested")

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	ok, err := f.confirmer.Confirm(ctx, "Request Booking", confirmMessage(listing))
	if err != nil || !ok {
		return f.resolve(models.StatusDeclined, listing, requesterID), nil
	}
	return f.resolve(models.StatusFulfilled, listing, requesterID), nil
}

// Reset returns a resolved flow to Idle so the listing can be requested
// again. Resetting a flow that is still Requested is a no-op.
func (f *Flow) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.status == models.StatusRequested {
		return
	}
	f.status = models.StatusIdle
	f.request = nil
}

// CurrentRequest returns a copy of the active booking request, if any.
func (f *Flow) CurrentRequest() *models.BookingRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.request == nil {
		return nil
	}
	cp := *f.request
	return &cp
}

func (f *Flow) resolve(status string, listing *models.Listing, requesterID string) string {
	f.mu.Lock()
	f.status = status
	if f.request != nil {
		f.request.Status = status
	}
	f.mu.Unlock()

	event := events.EventBookingDeclined
	if status == models.StatusFulfilled {
		event = events.EventBookingFulfilled
	}
	f.publish(event, listing, requesterID)
	f.logger.Info().Str("listing_id", listing.ID).Str("status", status).Msg("booking resolved")
	return status
}

func (f *Flow) publish(event string, listing *models.Listing, requesterID string) {
	if f.bus == nil {
		return
	}
	f.mu.Lock()
	status := f.status
	created := time.Now()
	if f.request != nil {
		created = f.request.CreatedAt
	}
	f.mu.Unlock()
	if err := f.bus.PublishJSON(event, events.BookingEventPayload{
		ListingID:   listing.ID,
		RequesterID: requesterID,
		Status:      status,
		CreatedAt:   created,
	}); err != nil {
		f.logger.Error().Err(err).Str("event", event).Msg("publish event error")
	}
}

func confirmMessage(listing *models.Listing) string {
	return "Send a booking request for " + listing.Title + " to " + listing.OwnerName + "?"
}
