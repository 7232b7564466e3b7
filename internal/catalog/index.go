package catalog

import (
	"context"
	"strings"
	"sync"

	"neighborly/internal/domain"
	"neighborly/internal/models"

	"github.com/rs/zerolog"
)

// Index holds the full listing set in memory and computes filtered views.
// Filtering never re-sorts: results keep the backing set's insertion order.
type Index struct {
	mu       sync.RWMutex
	listings []*models.Listing
	byID     map[string]*models.Listing

	store  domain.ListingStore
	logger *zerolog.Logger
}

func NewIndex(store domain.ListingStore, logger *zerolog.Logger) *Index {
	return &Index{
		byID:   make(map[string]*models.Listing),
		store:  store,
		logger: logger,
	}
}

// Reload replaces the in-memory catalog with the store's current contents.
func (i *Index) Reload(ctx context.Context) error {
	listings, err := i.store.ListListings(ctx)
	if err != nil {
		return err
	}

	i.mu.Lock()
	defer i.mu.Unlock()

	i.listings = listings
	i.byID = make(map[string]*models.Listing, len(listings))
	for _, listing := range listings {
		i.byID[listing.ID] = listing
	}

	i.logger.Info().Int("count", len(listings)).Msg("catalog reloaded")
	return nil
}

// Add appends a newly ingested listing to the end of the catalog.
func (i *Index) Add(listing *models.Listing) {
	i.mu.Lock()
	defer i.mu.Unlock()

	if _, exists := i.byID[listing.ID]; exists {
		return
	}
	i.listings = append(i.listings, listing)
	i.byID[listing.ID] = listing
}

// Get returns the listing with the given id, nil when unknown.
func (i *Index) Get(id string) *models.Listing {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.byID[id]
}

// All returns the full catalog in insertion order.
func (i *Index) All() []*models.Listing {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return append([]*models.Listing(nil), i.listings...)
}

// Len returns the catalog size.
func (i *Index) Len() int {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return len(i.listings)
}

// Filter returns listings whose title contains query (case-insensitive) AND
// whose category matches exactly. An empty query matches every title; the
// wildcard category models.CategoryAll matches every category. No match
// yields an empty slice, never an error.
func (i *Index) Filter(query, category string) []*models.Listing {
	i.mu.RLock()
	defer i.mu.RUnlock()

	needle := strings.ToLower(strings.TrimSpace(query))

	results := make([]*models.Listing, 0, len(i.listings))
	for _, listing := range i.listings {
		if needle != "" && !strings.Contains(strings.ToLower(listing.Title), needle) {
			continue
		}
		if category != models.CategoryAll && category != "" && listing.Category != category {
			continue
		}
		results = append(results, listing)
	}

	return results
}
