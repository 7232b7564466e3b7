package mapsync

import (
	"sync"

	"neighborly/internal/catalog"
	"neighborly/internal/domain"
	"neighborly/internal/models"

	"github.com/rs/zerolog"
)

// Controller binds the selection state between the map's markers and the
// filtered listing list, and owns camera animation. All methods are
// synchronous; the camera animation itself is fire-and-forget and the last
// selection wins the final viewport.
type Controller struct {
	mu          sync.Mutex
	state       models.SearchState
	results     []*models.Listing
	showResults bool
	viewport    models.Region

	index   *catalog.Index
	surface domain.MapSurface
	logger  *zerolog.Logger
}

func NewController(index *catalog.Index, surface domain.MapSurface, logger *zerolog.Logger) *Controller {
	return &Controller{
		state:    models.NewSearchState(),
		results:  index.All(),
		viewport: models.InitialRegion,
		index:    index,
		surface:  surface,
		logger:   logger,
	}
}

// Search updates the query text and recomputes the visible result set.
// A non-empty query opens the result overlay; clearing the text restores
// the full catalog and closes it.
func (c *Controller) Search(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.state.QueryText = text
	c.results = c.index.Filter(text, c.state.ActiveCategory)
	c.showResults = text != ""
}

// SetCategory switches the active category filter and recomputes results.
func (c *Controller) SetCategory(category string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.state.ActiveCategory = category
	c.results = c.index.Filter(c.state.QueryText, category)
}

// SelectFromList selects a listing picked from the result list: the search
// field reflects the title, overlay and keyboard are dismissed, and the
// camera tightens onto the listing's location.
func (c *Controller) SelectFromList(listing *models.Listing) {
	c.mu.Lock()
	c.state.SelectedListingID = listing.ID
	c.state.QueryText = listing.Title
	c.showResults = false

	region := models.Region{
		Lat:      listing.Location.Lat,
		Lon:      listing.Location.Lon,
		LatDelta: models.FocusZoomDelta,
		LonDelta: models.FocusZoomDelta,
	}
	c.viewport = region
	c.mu.Unlock()

	c.surface.DismissOverlay()
	c.surface.DismissKeyboard()
	c.surface.AnimateToRegion(region, models.ViewportAnimationDuration)
}

// SelectFromMarker selects a listing tapped directly on the map. The user
// already sees the marker in context, so nothing else moves.
func (c *Controller) SelectFromMarker(listing *models.Listing) {
	c.mu.Lock()
	c.state.SelectedListingID = listing.ID
	c.mu.Unlock()
}

// ClearSelection reacts to a tap outside any marker or card: selection and
// chrome go away, the viewport stays put.
func (c *Controller) ClearSelection() {
	c.mu.Lock()
	c.state.SelectedListingID = ""
	c.showResults = false
	c.mu.Unlock()

	c.surface.DismissOverlay()
	c.surface.DismissKeyboard()
}

// ClearSearch resets the query and category, restores the unfiltered
// catalog, drops the selection, and flies the camera back to the initial
// region.
func (c *Controller) ClearSearch() {
	c.mu.Lock()
	c.state.QueryText = ""
	c.state.ActiveCategory = models.CategoryAll
	c.state.SelectedListingID = ""
	c.showResults = false
	c.results = c.index.Filter("", models.CategoryAll)
	c.viewport = models.InitialRegion
	c.mu.Unlock()

	c.surface.AnimateToRegion(models.InitialRegion, models.ViewportAnimationDuration)
}

// State returns a copy of the current search state.
func (c *Controller) State() models.SearchState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Results returns the currently visible listings.
func (c *Controller) Results() []*models.Listing {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]*models.Listing(nil), c.results...)
}

// ShowingResults reports whether the result overlay is open.
func (c *Controller) ShowingResults() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.showResults
}

// Viewport returns the camera's current target region.
func (c *Controller) Viewport() models.Region {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewport
}

// Selected returns the selected listing, nil when nothing is selected.
func (c *Controller) Selected() *models.Listing {
	c.mu.Lock()
	id := c.state.SelectedListingID
	c.mu.Unlock()

	if id == "" {
		return nil
	}
	return c.index.Get(id)
}
