package models

// Region is the map camera: a center coordinate plus zoom extents in degrees.
type Region struct {
	Lat      float64 `json:"lat" yaml:"lat"`
	Lon      float64 `json:"lon" yaml:"lon"`
	LatDelta float64 `json:"lat_delta" yaml:"lat_delta"`
	LonDelta float64 `json:"lon_delta" yaml:"lon_delta"`
}

// SearchState is the transient browse state shared by the map and the list.
// At most one listing is selected at a time. It is never persisted.
type SearchState struct {
	QueryText         string `json:"query_text"`
	ActiveCategory    string `json:"active_category"`
	SelectedListingID string `json:"selected_listing_id"`
}

// NewSearchState returns the cleared state: empty query, wildcard category,
// no selection.
func NewSearchState() SearchState {
	return SearchState{ActiveCategory: CategoryAll}
}

// HasSelection reports whether a listing is currently selected.
func (s SearchState) HasSelection() bool {
	return s.SelectedListingID != ""
}
