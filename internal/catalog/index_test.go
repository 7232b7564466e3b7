package catalog

import (
	"context"
	"errors"
	"testing"

	"neighborly/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockStore struct {
	mock.Mock
}

func (m *mockStore) CreateListing(ctx context.Context, l *models.Listing) error {
	return m.Called(ctx, l).Error(0)
}
func (m *mockStore) GetListing(ctx context.Context, id string) (*models.Listing, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Listing), args.Error(1)
}
func (m *mockStore) ListListings(ctx context.Context) ([]*models.Listing, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Listing), args.Error(1)
}
func (m *mockStore) ListCategories(ctx context.Context) ([]models.Category, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Category), args.Error(1)
}
func (m *mockStore) CreateCategory(ctx context.Context, c models.Category) error {
	return m.Called(ctx, c).Error(0)
}

func testCatalog() []*models.Listing {
	return []*models.Listing{
		{ID: "1", Title: "Power Drill", Category: "Power Tools"},
		{ID: "2", Title: "Lawn Mower", Category: "Lawn & Garden"},
		{ID: "3", Title: "Cordless Drill Set", Category: "Power Tools"},
		{ID: "4", Title: "Extension Ladder", Category: "Ladders"},
	}
}

func newTestIndex(t *testing.T) *Index {
	t.Helper()
	store := new(mockStore)
	store.On("ListListings", mock.Anything).Return(testCatalog(), nil)

	logger := zerolog.Nop()
	idx := NewIndex(store, &logger)
	require.NoError(t, idx.Reload(context.Background()))
	return idx
}

func TestFilter_QueryMatchesTitleSubstring(t *testing.T) {
	idx := newTestIndex(t)

	results := idx.Filter("drill", models.CategoryAll)
	require.Len(t, results, 2)
	assert.Equal(t, "Power Drill", results[0].Title)
	assert.Equal(t, "Cordless Drill Set", results[1].Title)
}

func TestFilter_CaseInsensitive(t *testing.T) {
	idx := newTestIndex(t)

	results := idx.Filter("DRILL", models.CategoryAll)
	assert.Len(t, results, 2)
}

func TestFilter_CategoryExactMatch(t *testing.T) {
	idx := newTestIndex(t)

	results := idx.Filter("", "Lawn & Garden")
	require.Len(t, results, 1)
	assert.Equal(t, "Lawn Mower", results[0].Title)
}

func TestFilter_CombinedPredicateIsAnd(t *testing.T) {
	idx := newTestIndex(t)

	results := idx.Filter("drill", "Lawn & Garden")
	assert.Empty(t, results)
}

func TestFilter_EmptyQueryAllCategoryReturnsEverything(t *testing.T) {
	idx := newTestIndex(t)

	results := idx.Filter("", models.CategoryAll)
	assert.Len(t, results, idx.Len())
}

func TestFilter_NoMatchIsEmptyNotError(t *testing.T) {
	idx := newTestIndex(t)

	results := idx.Filter("excavator", models.CategoryAll)
	assert.NotNil(t, results)
	assert.Empty(t, results)
}

func TestFilter_PreservesInsertionOrder(t *testing.T) {
	idx := newTestIndex(t)

	results := idx.Filter("", models.CategoryAll)
	require.Len(t, results, 4)
	for i, want := range []string{"1", "2", "3", "4"} {
		assert.Equal(t, want, results[i].ID)
	}
}

func TestFilter_AllCategoryIsSupersetOfAnyCategory(t *testing.T) {
	idx := newTestIndex(t)

	all := idx.Filter("drill", models.CategoryAll)
	narrowed := idx.Filter("drill", "Power Tools")

	ids := make(map[string]bool, len(all))
	for _, listing := range all {
		ids[listing.ID] = true
	}
	for _, listing := range narrowed {
		assert.True(t, ids[listing.ID])
	}
}

func TestAdd_AppendsAtEnd(t *testing.T) {
	idx := newTestIndex(t)

	idx.Add(&models.Listing{ID: "5", Title: "Leaf Blower", Category: "Lawn & Garden"})
	idx.Add(&models.Listing{ID: "5", Title: "Leaf Blower", Category: "Lawn & Garden"}) // duplicate ignored

	assert.Equal(t, 5, idx.Len())
	results := idx.Filter("", models.CategoryAll)
	assert.Equal(t, "5", results[len(results)-1].ID)
}

func TestGet(t *testing.T) {
	idx := newTestIndex(t)

	assert.NotNil(t, idx.Get("1"))
	assert.Nil(t, idx.Get("missing"))
}

func TestReload_PropagatesStoreError(t *testing.T) {
	store := new(mockStore)
	store.On("ListListings", mock.Anything).Return(nil, errors.New("db down"))

	logger := zerolog.Nop()
	idx := NewIndex(store, &logger)

	err := idx.Reload(context.Background())
	assert.Error(t, err)
}
