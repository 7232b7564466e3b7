package models

import "time"

// BookingRequest is an ephemeral rental-intent against a listing. It lives
// only for the duration of the requesting session and is never persisted.
type BookingRequest struct {
	ListingID   string    `json:"listing_id"`
	RequesterID string    `json:"requester_id"`
	Status      string    `json:"status"` // idle, requested, fulfilled, declined
	CreatedAt   time.Time `json:"created_at"`
}
