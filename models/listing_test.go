package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func price(f float64) *float64 { return &f }

func TestListingValidate(t *testing.T) {
	valid := ListingSummary{ID: "a1", Type: TypeRent, RegularPrice: 1200, Bedrooms: 2, Bathrooms: 1}

	tests := []struct {
		name    string
		mutate  func(l *ListingSummary)
		wantErr bool
	}{
		{"valid", func(l *ListingSummary) {}, false},
		{"no images is fine", func(l *ListingSummary) { l.ImageURLs = nil }, false},
		{"missing id", func(l *ListingSummary) { l.ID = "" }, true},
		{"unknown type", func(l *ListingSummary) { l.Type = "lease" }, true},
		{"negative bedrooms", func(l *ListingSummary) { l.Bedrooms = -1 }, true},
		{"negative bathrooms", func(l *ListingSummary) { l.Bathrooms = -1 }, true},
		{"negative price", func(l *ListingSummary) { l.RegularPrice = -5 }, true},
		{"discount above regular on offer", func(l *ListingSummary) {
			l.Offer = true
			l.DiscountPrice = price(1500)
		}, true},
		{"discount above regular ignored without offer", func(l *ListingSummary) {
			l.DiscountPrice = price(1500)
		}, false},
		{"discount at or below regular", func(l *ListingSummary) {
			l.Offer = true
			l.DiscountPrice = price(1200)
		}, false},
	}

	for _, tt := range tests {
		l := valid
		tt.mutate(&l)
		err := l.Validate()
		if tt.wantErr {
			assert.Error(t, err, tt.name)
		} else {
			assert.NoError(t, err, tt.name)
		}
	}
}

func TestEffectivePrice(t *testing.T) {
	tests := []struct {
		offer    bool
		discount *float64
		want     float64
	}{
		{false, nil, 1000},
		{true, nil, 1000},
		{true, price(850), 850},
		{false, price(850), 1000},
	}

	for _, tt := range tests {
		l := ListingSummary{RegularPrice: 1000, Offer: tt.offer, DiscountPrice: tt.discount}
		assert.Equal(t, tt.want, l.EffectivePrice())
	}
}

func TestHomeQueries(t *testing.T) {
	qs := HomeQueries(4)
	require.Len(t, qs, 3)

	assert.Equal(t, CategoryOffer, qs[0].Category)
	assert.Equal(t, "offer=true&limit=4", qs[0].String())
	assert.Equal(t, "type=rent&limit=4", qs[1].String())
	assert.Equal(t, "type=sale&limit=4", qs[2].String())

	assert.Equal(t, "limit=4&offer=true", qs[0].Values().Encode())
	assert.Equal(t, "/search?type=rent", qs[1].SearchPath())
}

func TestHomeQueriesDefaultLimit(t *testing.T) {
	for _, q := range HomeQueries(0) {
		assert.Equal(t, DefaultCategoryLimit, q.Limit)
	}
}

func TestPendingStateAndSettled(t *testing.T) {
	s := PendingState(7)
	assert.Equal(t, StatusPending, s.Status)
	assert.Equal(t, uint64(7), s.Activation)
	assert.NotNil(t, s.Offer)
	assert.Empty(t, s.Offer)
	assert.False(t, s.Settled())

	s.Status = StatusFailed
	assert.True(t, s.Settled())
}

func TestCloneDoesNotAlias(t *testing.T) {
	s := PendingState(1)
	s.Status = StatusSuccess
	s.Rent = []ListingSummary{{ID: "r1"}}

	c := s.Clone()
	c.Rent[0].ID = "changed"

	assert.Equal(t, "r1", s.Rent[0].ID)
}

func TestNewFeedSnapshotOrdersRows(t *testing.T) {
	s := PendingState(3)
	s.Status = StatusSuccess
	s.Offer = []ListingSummary{{ID: "o1"}}
	s.Rent = []ListingSummary{{ID: "r1"}, {ID: "r2"}}
	s.Sale = []ListingSummary{{ID: "s1"}}
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	snap := NewFeedSnapshot("snap-1", s, at)

	assert.Equal(t, "snap-1", snap.ID)
	assert.Equal(t, uint64(3), snap.Activation)
	assert.Equal(t, at, snap.ExportedAt)
	require.Len(t, snap.Rows, 4)

	var got []string
	for _, r := range snap.Rows {
		got = append(got, string(r.Category)+":"+r.Listing.ID)
	}
	assert.Equal(t, []string{"offer:o1", "rent:r1", "rent:r2", "sale:s1"}, got)
	assert.Equal(t, 1, snap.Rows[2].Position)
}
