package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"estate-browser/models"
	"estate-browser/utils"
)

func ptr(f float64) *float64 { return &f }

func TestFormatPrice(t *testing.T) {
	tests := []struct {
		name string
		l    models.ListingSummary
		want string
	}{
		{"sale regular", models.ListingSummary{Type: models.TypeSale, RegularPrice: 450000}, "$450,000"},
		{"rent regular", models.ListingSummary{Type: models.TypeRent, RegularPrice: 1200}, "$1,200 / month"},
		{"offer uses discount", models.ListingSummary{Type: models.TypeSale, Offer: true, RegularPrice: 500000, DiscountPrice: ptr(475000)}, "$475,000"},
		{"offer without discount", models.ListingSummary{Type: models.TypeRent, Offer: true, RegularPrice: 950}, "$950 / month"},
		{"discount ignored off offer", models.ListingSummary{Type: models.TypeSale, RegularPrice: 100, DiscountPrice: ptr(50)}, "$100"},
		{"fractional", models.ListingSummary{Type: models.TypeSale, RegularPrice: 1234.5}, "$1,234.5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatPrice(tt.l))
		})
	}
}

func TestCardBuild(t *testing.T) {
	b := NewCardBuilder(utils.NewNopLogger())
	c := b.Build(models.ListingSummary{
		ID:            "65f0c1",
		Title:         "  Sunny   loft ",
		Address:       "12 Harbour St",
		Description:   "Two rooms\n with a view",
		Type:          models.TypeRent,
		Offer:         true,
		RegularPrice:  2000,
		DiscountPrice: ptr(1800),
		Bedrooms:      1,
		Bathrooms:     2,
		ImageURLs:     []string{"https://img.example.com/a.jpg", "https://img.example.com/b.jpg"},
	})

	assert.Equal(t, "/listing/65f0c1", c.Link)
	assert.Equal(t, "https://img.example.com/a.jpg", c.CoverImage)
	assert.Equal(t, "Sunny loft", c.Title)
	assert.Equal(t, "Two rooms with a view", c.Description)
	assert.Equal(t, "$1,800 / month", c.Price)
	assert.True(t, c.OfferBadge)
	assert.Equal(t, []string{"1 Bed", "2 Baths"}, c.Features)
}

func TestCardFallsBackWithoutImages(t *testing.T) {
	b := NewCardBuilder(utils.NewNopLogger())

	for _, urls := range [][]string{nil, {}, {"  "}} {
		c := b.Build(models.ListingSummary{ID: "x", Type: models.TypeSale, ImageURLs: urls})
		assert.Equal(t, FallbackImageURL, c.CoverImage)
	}
}

func TestSectionsSkipEmptyCategories(t *testing.T) {
	b := NewCardBuilder(utils.NewNopLogger())
	state := models.PendingState(1)
	state.Status = models.StatusSuccess
	state.Offer = makeListings("offer", 4, models.TypeSale)
	state.Sale = makeListings("sale", 4, models.TypeSale)

	sections := b.Sections(state, models.HomeQueries(4))
	require.Len(t, sections, 2)

	assert.Equal(t, "Recent Offers", sections[0].Heading)
	assert.Equal(t, "/search?offer=true", sections[0].MoreLink)
	assert.Len(t, sections[0].Cards, 4)

	assert.Equal(t, "Recent Places for Sale", sections[1].Heading)
	assert.Equal(t, "/search?type=sale", sections[1].MoreLink)
}

func TestSectionsEmptyUnlessSuccess(t *testing.T) {
	b := NewCardBuilder(utils.NewNopLogger())
	failed := models.PendingState(2)
	failed.Status = models.StatusFailed
	failed.Error = "sale listings: HTTP 500"

	assert.Empty(t, b.Sections(failed, models.HomeQueries(4)))
	assert.Empty(t, b.Sections(models.PendingState(3), models.HomeQueries(4)))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "Penthou...", truncate("Penthouse with terrace", 10))
}
