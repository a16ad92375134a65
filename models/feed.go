package models

import "time"

// FeedSnapshot is an exported copy of one successful home-feed activation.
type FeedSnapshot struct {
	ID         string
	Activation uint64
	ExportedAt time.Time
	Rows       []FeedRow
}

// FeedRow is one listing of a snapshot together with the category it was
// shown under and its position within that category.
type FeedRow struct {
	Category Category
	Position int
	Listing  ListingSummary
}

// NewFeedSnapshot flattens a successful view state into rows, offers
// first, then rent, then sale, each in backend order.
func NewFeedSnapshot(id string, s AggregateViewState, at time.Time) *FeedSnapshot {
	snap := &FeedSnapshot{ID: id, Activation: s.Activation, ExportedAt: at}
	for _, c := range []Category{CategoryOffer, CategoryRent, CategorySale} {
		for i, l := range s.Results(c) {
			snap.Rows = append(snap.Rows, FeedRow{Category: c, Position: i, Listing: l})
		}
	}
	return snap
}
