package models

import "time"

// Coordinate is a WGS84 point.
type Coordinate struct {
	Lat float64 `json:"lat" yaml:"lat"`
	Lon float64 `json:"lon" yaml:"lon"`
}

// Listing is the canonical tool-listing record. It is created once by the
// ingestion pipeline (or seeded from config) and read-only afterwards.
type Listing struct {
	ID             string     `json:"id" yaml:"id"`
	Title          string     `json:"title" yaml:"title"`
	Category       string     `json:"category" yaml:"category"`
	PricePerDay    float64    `json:"price_per_day" yaml:"price_per_day"`
	OwnerName      string     `json:"owner_name" yaml:"owner_name"`
	OwnerID        string     `json:"owner_id" yaml:"owner_id"`
	Location       Coordinate `json:"location" yaml:"location"`
	Distance       float64    `json:"distance" yaml:"distance"` // miles from viewer, derived
	Rating         float64    `json:"rating" yaml:"rating"`
	ReviewCount    int        `json:"review_count" yaml:"review_count"`
	Description    string     `json:"description" yaml:"description"`
	ImageRefs      []string   `json:"image_refs" yaml:"image_refs"`
	Available      bool       `json:"available" yaml:"available"`
	AvailableUntil time.Time  `json:"available_until" yaml:"available_until"`
	CreatedAt      time.Time  `json:"created_at" yaml:"created_at"`
}

// Category is a selectable listing category.
type Category struct {
	Type string `json:"type" yaml:"type"`
}
