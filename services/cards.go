package services

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/dustin/go-humanize"

	"estate-browser/models"
	"estate-browser/utils"
)

// FallbackImageURL is shown for listings without any image.
const FallbackImageURL = "https://53.fs1.hubspotusercontent-na1.net/hub/53/hubfs/Sales_Blog/real-estate-business-compressor.jpg?width=595&height=400&name=real-estate-business-compressor.jpg"

// sectionMeta holds the static copy for each home-page section.
var sectionMeta = map[models.Category]struct {
	heading, more string
}{
	models.CategoryOffer: {"Recent Offers", "Show more offers"},
	models.CategoryRent:  {"Recent Places for Rent", "Show more places for rent"},
	models.CategorySale:  {"Recent Places for Sale", "Show more places for sale"},
}

// CardBuilder turns listings into render-ready cards.
type CardBuilder struct {
	logger *utils.Logger
}

// NewCardBuilder creates a CardBuilder with the given logger.
func NewCardBuilder(logger *utils.Logger) *CardBuilder {
	return &CardBuilder{logger: logger}
}

// Build projects one listing onto a card.
func (b *CardBuilder) Build(l models.ListingSummary) models.Card {
	return models.Card{
		ID:          l.ID,
		Link:        "/listing/" + l.ID,
		CoverImage:  b.coverImage(l),
		Title:       normaliseText(l.Title),
		Address:     normaliseText(l.Address),
		Description: normaliseText(l.Description),
		Price:       FormatPrice(l),
		OfferBadge:  l.Offer,
		Features:    []string{countLabel(l.Bedrooms, "Bed"), countLabel(l.Bathrooms, "Bath")},
	}
}

// Sections builds the home-page sections from a successful view state,
// in the order of queries. Categories without listings are omitted, and
// a state that is not successful yields no sections.
func (b *CardBuilder) Sections(s models.AggregateViewState, queries []models.CategoryQuery) []models.Section {
	if s.Status != models.StatusSuccess {
		return nil
	}

	var sections []models.Section
	for _, q := range queries {
		listings := s.Results(q.Category)
		if len(listings) == 0 {
			continue
		}
		meta := sectionMeta[q.Category]
		sec := models.Section{
			Category:     q.Category,
			Heading:      meta.heading,
			MoreLink:     q.SearchPath(),
			MoreLinkText: meta.more,
			Cards:        make([]models.Card, 0, len(listings)),
		}
		for _, l := range listings {
			sec.Cards = append(sec.Cards, b.Build(l))
		}
		sections = append(sections, sec)
	}
	return sections
}

// coverImage returns the first non-blank image URL, or the fallback.
func (b *CardBuilder) coverImage(l models.ListingSummary) string {
	if len(l.ImageURLs) > 0 {
		if u := strings.TrimSpace(l.ImageURLs[0]); u != "" {
			return u
		}
	}
	b.logger.Debug("[cards] Listing %s has no image, using fallback", l.ID)
	return FallbackImageURL
}

// FormatPrice renders the displayed price the way the card shows it:
// "$" + en-US grouped amount, with " / month" for rentals.
func FormatPrice(l models.ListingSummary) string {
	price := "$" + humanize.Commaf(l.EffectivePrice())
	if l.Type == models.TypeRent {
		price += " / month"
	}
	return price
}

func countLabel(n int, noun string) string {
	if n > 1 {
		return fmt.Sprintf("%d %ss", n, noun)
	}
	return fmt.Sprintf("%d %s", n, noun)
}

// normaliseText strips leading/trailing whitespace and collapses internal whitespace.
func normaliseText(s string) string {
	return strings.Join(strings.FieldsFunc(s, unicode.IsSpace), " ")
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}
