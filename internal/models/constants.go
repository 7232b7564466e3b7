package models

import "time"

const (
	StatusIdle      = "idle"
	StatusRequested = "requested"
	StatusFulfilled = "fulfilled"
	StatusDeclined  = "declined"
)

const (
	// CategoryAll is the wildcard category matching every listing.
	CategoryAll = "All"
)

const (
	// ViewportAnimationDuration is how long camera transitions take.
	ViewportAnimationDuration = 500 * time.Millisecond

	// InitialZoomDelta is the zoom extent of the default region.
	InitialZoomDelta = 0.05

	// FocusZoomDelta is the tightened zoom used when centering on a listing.
	FocusZoomDelta = 0.01

	// OwnerResponseWindow is the advisory window within which a listing
	// owner is expected to answer a rental request. Not enforced by a timer.
	OwnerResponseWindow = 24 * time.Hour
)

// InitialRegion is the default map viewport (downtown DC).
var InitialRegion = Region{
	Lat:      38.9072,
	Lon:      -77.0369,
	LatDelta: InitialZoomDelta,
	LonDelta: InitialZoomDelta,
}

const (
	// DefaultSessionTTL is how long cached session state lives in Redis.
	DefaultSessionTTL = 24 * 60 * 60 // seconds

	// RateLimitRequests is the per-user request budget within the window.
	RateLimitRequests = 20

	// RateLimitWindow is the rate-limit window in seconds.
	RateLimitWindow = 60

	// ReaperQueueSize is the in-memory blob-reaper queue capacity.
	ReaperQueueSize = 1000
)
