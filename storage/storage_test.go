package storage

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"estate-browser/models"
)

func sampleSnapshot() *models.FeedSnapshot {
	discount := 450000.0
	s := models.PendingState(7)
	s.Status = models.StatusSuccess
	s.Offer = []models.ListingSummary{{
		ID: "o1", Title: "Villa", Type: models.TypeSale, Offer: true,
		RegularPrice: 500000, DiscountPrice: &discount, Bedrooms: 4, Bathrooms: 3,
		ImageURLs: []string{"https://img/1.jpg", "https://img/2.jpg"},
	}}
	s.Rent = []models.ListingSummary{
		{ID: "r1", Title: "Loft, top floor", Type: models.TypeRent, RegularPrice: 1200, Bedrooms: 1, Bathrooms: 1},
		{ID: "r2", Title: "Studio", Type: models.TypeRent, RegularPrice: 800},
	}
	return models.NewFeedSnapshot("5b0c4c1e-0000-4000-8000-000000000001", s,
		time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC))
}

func TestCSVWriterWritesHeaderOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "feed.csv")

	w, err := NewCSVWriter(path)
	require.NoError(t, err)
	require.NoError(t, w.WriteSnapshot(sampleSnapshot()))
	require.NoError(t, w.Close())

	// Reopening appends without repeating the header.
	w, err = NewCSVWriter(path)
	require.NoError(t, err)
	require.NoError(t, w.WriteSnapshot(sampleSnapshot()))
	require.NoError(t, w.Close())

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 1+3+3)

	assert.Equal(t, csvHeader, records[0])
	assert.Equal(t, "offer", records[1][2])
	assert.Equal(t, "o1", records[1][4])
	assert.Equal(t, "450000", records[1][10])
	assert.Equal(t, "https://img/1.jpg https://img/2.jpg", records[1][13])
	assert.Equal(t, "Loft, top floor", records[2][5])
	assert.Equal(t, "", records[3][10])
	assert.Equal(t, "2026-10-01T12:00:00Z", records[1][1])
}

func TestCSVWriterName(t *testing.T) {
	path := filepath.Join(t.TempDir(), "feed.csv")
	w, err := NewCSVWriter(path)
	require.NoError(t, err)
	defer w.Close()
	assert.True(t, strings.HasPrefix(w.Name(), "csv:"))
}

func TestBuildRowInsert(t *testing.T) {
	snap := sampleSnapshot()
	query, args := buildRowInsert(snap.ID, snap.Rows)

	assert.Len(t, args, len(snap.Rows)*feedColumns)
	assert.Contains(t, query, "($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)")
	assert.Contains(t, query, "($29,")
	assert.Contains(t, query, "$42)")

	// discount_price is NULL for listings without one.
	assert.Equal(t, 450000.0, args[10])
	assert.Nil(t, args[feedColumns+10])

	// image_urls is always bound as a Postgres array.
	assert.IsType(t, pq.Array([]string{}), args[2*feedColumns+13])
}
