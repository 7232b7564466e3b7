package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"neighborly/internal/models"
)

// CreateListing inserts a new listing document. The backing table keeps
// insertion order, which is the order ListListings returns.
func (db *DB) CreateListing(ctx context.Context, listing *models.Listing) error {
	refs, err := json.Marshal(listing.ImageRefs)
	if err != nil {
		return fmt.Errorf("failed to encode image refs: %w", err)
	}

	query := `INSERT INTO listings (
				id, title, category, price_per_day, owner_name, owner_id,
				lat, lon, distance, rating, review_count, description,
				image_refs, available, available_until, created_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	now := time.Now()
	if listing.CreatedAt.IsZero() {
		listing.CreatedAt = now
	}
	_, err = db.ExecContext(ctx, query,
		listing.ID,
		listing.Title,
		listing.Category,
		listing.PricePerDay,
		listing.OwnerName,
		listing.OwnerID,
		listing.Location.Lat,
		listing.Location.Lon,
		listing.Distance,
		listing.Rating,
		listing.ReviewCount,
		listing.Description,
		string(refs),
		listing.Available,
		listing.AvailableUntil,
		listing.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create listing: %w", err)
	}

	return nil
}

// GetListing returns a listing by its document ID, ErrNotFound when absent.
func (db *DB) GetListing(ctx context.Context, id string) (*models.Listing, error) {
	query := `SELECT id, title, category, price_per_day, owner_name, owner_id,
				lat, lon, distance, rating, review_count, description,
				image_refs, available, available_until, created_at
			FROM listings WHERE id = ?`

	listing, err := scanListing(db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get listing: %w", err)
	}

	return listing, nil
}

// ListListings returns the full catalog in insertion order.
func (db *DB) ListListings(ctx context.Context) ([]*models.Listing, error) {
	query := `SELECT id, title, category, price_per_day, owner_name, owner_id,
				lat, lon, distance, rating, review_count, description,
				image_refs, available, available_until, created_at
			FROM listings ORDER BY seq`

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list listings: %w", err)
	}
	defer rows.Close()

	var listings []*models.Listing
	for rows.Next() {
		listing, err := scanListing(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan listing: %w", err)
		}
		listings = append(listings, listing)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return listings, nil
}

// SeedListings inserts seed records that are not present yet. Existing rows
// are left untouched so restarts do not reorder the catalog.
func (db *DB) SeedListings(ctx context.Context, listings []models.Listing) error {
	for i := range listings {
		_, err := db.GetListing(ctx, listings[i].ID)
		if err == nil {
			continue
		}
		if !errors.Is(err, ErrNotFound) {
			return err
		}
		if err := db.CreateListing(ctx, &listings[i]); err != nil {
			return err
		}
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanListing(row rowScanner) (*models.Listing, error) {
	var listing models.Listing
	var refs string
	var availableUntil sql.NullTime

	err := row.Scan(
		&listing.ID,
		&listing.Title,
		&listing.Category,
		&listing.PricePerDay,
		&listing.OwnerName,
		&listing.OwnerID,
		&listing.Location.Lat,
		&listing.Location.Lon,
		&listing.Distance,
		&listing.Rating,
		&listing.ReviewCount,
		&listing.Description,
		&refs,
		&listing.Available,
		&availableUntil,
		&listing.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if availableUntil.Valid {
		listing.AvailableUntil = availableUntil.Time
	}
	if err := json.Unmarshal([]byte(refs), &listing.ImageRefs); err != nil {
		return nil, fmt.Errorf("failed to decode image refs: %w", err)
	}

	return &listing, nil
}
