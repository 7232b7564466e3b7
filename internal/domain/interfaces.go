package domain

import (
	"context"
	"time"

	"neighborly/internal/models"
)

// ListingStore is the document store behind the catalog. Listings are
// append-only from the core's perspective.
type ListingStore interface {
	CreateListing(ctx context.Context, listing *models.Listing) error
	GetListing(ctx context.Context, id string) (*models.Listing, error)
	ListListings(ctx context.Context) ([]*models.Listing, error)
	ListCategories(ctx context.Context) ([]models.Category, error)
	CreateCategory(ctx context.Context, category models.Category) error
}

// ObjectStorage uploads opaque blobs and returns a public URL for each.
type ObjectStorage interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) (string, error)
	Remove(ctx context.Context, key string) error
}

// StateRepository keeps transient per-user session state.
type StateRepository interface {
	GetSession(ctx context.Context, userID string) (*models.SessionState, error)
	SetSession(ctx context.Context, state *models.SessionState) error
	ClearSession(ctx context.Context, userID string) error
	CheckRateLimit(ctx context.Context, userID string, limit int, window time.Duration) (bool, error)
}

// EventPublisher fans domain events out to in-process subscribers.
type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}

// IdentityProvider is the external auth service. Sign-in/sign-up screens are
// thin wrappers over it; the core only consumes the session it yields.
type IdentityProvider interface {
	SignIn(ctx context.Context, email, password string) (*models.UserInfo, error)
	SignUp(ctx context.Context, email, password, displayName string) (string, error)
}

// MediaLibrary grants access to and reads user-picked images.
type MediaLibrary interface {
	// RequestAccess obtains the media-access grant for the session.
	RequestAccess(ctx context.Context) error
	// Read loads the picked image behind a handle into memory.
	Read(ctx context.Context, handle string) ([]byte, error)
}

// BlobReaper accepts keys of storage blobs that should be deleted
// asynchronously (compensation for failed persists).
type BlobReaper interface {
	EnqueueDelete(ctx context.Context, key string) error
}

// MapSurface is the rendering side of the map: camera animation plus the
// transient overlay/keyboard chrome around it.
type MapSurface interface {
	// AnimateToRegion moves the camera. Implementations must not block.
	AnimateToRegion(region models.Region, duration time.Duration)
	DismissOverlay()
	DismissKeyboard()
}

// Confirmer presents a yes/no prompt to the requesting user and reports the
// choice. Implementations should honor ctx cancellation.
type Confirmer interface {
	Confirm(ctx context.Context, title, message string) (bool, error)
}
