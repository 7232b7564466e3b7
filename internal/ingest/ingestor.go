package ingest

import (
	"context"
	"fmt"
	"strconv"
	"sync/atomic"
	"time"

	"neighborly/internal/domain"
	"neighborly/internal/events"
	"neighborly/internal/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Form carries the user-authored listing fields. Name, Price and Category
// are required; everything else is optional.
type Form struct {
	Name           string
	Description    string
	Category       string
	Price          string
	OwnerName      string
	OwnerID        string
	Location       models.Coordinate
	AvailableUntil time.Time
}

// Ingestor turns a form plus a picked image into a persisted listing.
// The pipeline is strictly ordered: permission gate, validation, image
// upload, document persist. Upload happens before persist, so a reader can
// never observe a listing without its image.
type Ingestor struct {
	media   domain.MediaLibrary
	storage domain.ObjectStorage
	store   domain.ListingStore
	reaper  domain.BlobReaper
	bus     domain.EventPublisher

	uploadFolder string
	busy         atomic.Bool
	logger       *zerolog.Logger
}

func NewIngestor(
	media domain.MediaLibrary,
	storage domain.ObjectStorage,
	store domain.ListingStore,
	reaper domain.BlobReaper,
	bus domain.EventPublisher,
	uploadFolder string,
	logger *zerolog.Logger,
) *Ingestor {
	if uploadFolder == "" {
		uploadFolder = "communityPost"
	}
	return &Ingestor{
		media:        media,
		storage:      storage,
		store:        store,
		reaper:       reaper,
		bus:          bus,
		uploadFolder: uploadFolder,
		logger:       logger,
	}
}

// Busy reports whether a submission is in flight. The UI disables the
// submit button while true.
func (i *Ingestor) Busy() bool {
	return i.busy.Load()
}

// Submit runs the ingestion pipeline. Only one submission may be in flight
// per form instance; concurrent calls fail with ErrBusy. The busy flag is
// cleared on every exit path.
func (i *Ingestor) Submit(ctx context.Context, form Form, imageHandle string) (*models.Listing, error) {
	if !i.busy.CompareAndSwap(false, true) {
		return nil, ErrBusy
	}
	defer i.busy.Store(false)

	// Stage 1: permission gate. Nothing leaves the device without a grant.
	if err := i.media.RequestAccess(ctx); err != nil {
		i.logger.Warn().Err(err).Msg("media access denied")
		return nil, ErrPermissionDenied
	}

	// Stage 2: validation, before any network call.
	if err := validate(form); err != nil {
		return nil, err
	}

	price, err := strconv.ParseFloat(form.Price, 64)
	if err != nil || price < 0 {
		return nil, &ValidationError{Fields: []string{"price"}}
	}

	// Stage 3: read the picked image and upload it under a unique key.
	data, err := i.media.Read(ctx, imageHandle)
	if err != nil {
		i.logger.Error().Err(err).Str("handle", imageHandle).Msg("read picked image")
		return nil, fmt.Errorf("%w: %v", ErrUploadFailure, err)
	}

	key := fmt.Sprintf("%s/%d.jpg", i.uploadFolder, time.Now().UnixMilli())
	url, err := i.storage.Upload(ctx, key, data, "image/jpeg")
	if err != nil {
		i.logger.Error().Err(err).Str("key", key).Msg("upload image")
		return nil, fmt.Errorf("%w: %v", ErrUploadFailure, err)
	}

	// Stage 4: persist the document, strictly after the upload.
	listing := &models.Listing{
		ID:             uuid.New().String(),
		Title:          form.Name,
		Category:       form.Category,
		PricePerDay:    price,
		OwnerName:      form.OwnerName,
		OwnerID:        form.OwnerID,
		Location:       form.Location,
		Description:    form.Description,
		ImageRefs:      []string{url},
		Available:      true,
		AvailableUntil: form.AvailableUntil,
		CreatedAt:      time.Now(),
	}

	if err := i.store.CreateListing(ctx, listing); err != nil {
		i.logger.Error().Err(err).Str("key", key).Msg("persist listing; scheduling blob cleanup")
		i.compensate(ctx, key)
		return nil, fmt.Errorf("%w: %v", ErrPersistFailure, err)
	}

	// Stage 5: completion.
	if i.bus != nil {
		if err := i.bus.PublishJSON(events.EventListingCreated, events.ListingEventPayload{
			ListingID: listing.ID,
			Title:     listing.Title,
			Category:  listing.Category,
			OwnerID:   listing.OwnerID,
		}); err != nil {
			i.logger.Error().Err(err).Str("listing_id", listing.ID).Msg("publish event error")
		}
	}

	i.logger.Info().Str("listing_id", listing.ID).Str("image_url", url).Msg("listing created")
	return listing, nil
}

// compensate enqueues deletion of an uploaded blob whose document never
// materialized. Best-effort: a failed enqueue leaves the orphan in place.
func (i *Ingestor) compensate(ctx context.Context, key string) {
	if i.reaper == nil {
		return
	}
	if err := i.reaper.EnqueueDelete(ctx, key); err != nil {
		i.logger.Error().Err(err).Str("key", key).Msg("enqueue blob cleanup")
	}
}

func validate(form Form) error {
	var missing []string
	if form.Name == "" {
		missing = append(missing, "name")
	}
	if form.Price == "" {
		missing = append(missing, "price")
	}
	if form.Category == "" {
		missing = append(missing, "category")
	}
	if len(missing) > 0 {
		return &ValidationError{Fields: missing}
	}
	return nil
}
