package models

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
)

// ListingType is the transaction kind of a listing.
type ListingType string

const (
	TypeRent ListingType = "rent"
	TypeSale ListingType = "sale"
)

// ListingSummary is one listing as returned by the listing API.
// It is treated as immutable once decoded.
type ListingSummary struct {
	ID            string      `json:"_id"`
	Title         string      `json:"name"`
	Address       string      `json:"address"`
	Description   string      `json:"description"`
	Type          ListingType `json:"type"`
	Offer         bool        `json:"offer"`
	RegularPrice  float64     `json:"regularPrice"`
	DiscountPrice *float64    `json:"discountPrice,omitempty"`
	Bedrooms      int         `json:"bedrooms"`
	Bathrooms     int         `json:"bathrooms"`
	ImageURLs     []string    `json:"imageUrls"`
}

// Validate checks the fields the rest of the application relies on.
// An empty ImageURLs slice is allowed; cards fall back to a stock image.
func (l ListingSummary) Validate() error {
	if l.ID == "" {
		return errors.New("listing: missing _id")
	}
	if l.Type != TypeRent && l.Type != TypeSale {
		return fmt.Errorf("listing %s: unknown type %q", l.ID, l.Type)
	}
	if l.Bedrooms < 0 {
		return fmt.Errorf("listing %s: negative bedrooms %d", l.ID, l.Bedrooms)
	}
	if l.Bathrooms < 0 {
		return fmt.Errorf("listing %s: negative bathrooms %d", l.ID, l.Bathrooms)
	}
	if l.RegularPrice < 0 {
		return fmt.Errorf("listing %s: negative regular price", l.ID)
	}
	// The API may send discountPrice for listings that are not on offer;
	// it is ignored there.
	if l.Offer && l.DiscountPrice != nil && *l.DiscountPrice > l.RegularPrice {
		return fmt.Errorf("listing %s: discount price %.2f exceeds regular price %.2f",
			l.ID, *l.DiscountPrice, l.RegularPrice)
	}
	return nil
}

// EffectivePrice is the price a visitor pays: the discount price when the
// listing is on offer, otherwise the regular price.
func (l ListingSummary) EffectivePrice() float64 {
	if l.Offer && l.DiscountPrice != nil {
		return *l.DiscountPrice
	}
	return l.RegularPrice
}

// Category is one of the three home-page listing groupings.
type Category string

const (
	CategoryOffer Category = "offer"
	CategoryRent  Category = "rent"
	CategorySale  Category = "sale"
)

// DefaultCategoryLimit is the number of listings fetched per category.
const DefaultCategoryLimit = 4

// CategoryQuery is a fixed filter descriptor for one category.
type CategoryQuery struct {
	Category Category
	Key      string
	Value    string
	Limit    int
}

// Values renders the query parameters sent to the listing API.
func (q CategoryQuery) Values() url.Values {
	v := url.Values{}
	v.Set(q.Key, q.Value)
	v.Set("limit", strconv.Itoa(q.Limit))
	return v
}

// SearchPath is the search page showing the rest of the category.
func (q CategoryQuery) SearchPath() string {
	return "/search?" + q.Key + "=" + q.Value
}

func (q CategoryQuery) String() string {
	return fmt.Sprintf("%s=%s&limit=%d", q.Key, q.Value, q.Limit)
}

// HomeQueries returns the three category queries in display order:
// offers, rent, sale. A non-positive limit uses DefaultCategoryLimit.
func HomeQueries(limit int) []CategoryQuery {
	if limit <= 0 {
		limit = DefaultCategoryLimit
	}
	return []CategoryQuery{
		{Category: CategoryOffer, Key: "offer", Value: "true", Limit: limit},
		{Category: CategoryRent, Key: "type", Value: string(TypeRent), Limit: limit},
		{Category: CategorySale, Key: "type", Value: string(TypeSale), Limit: limit},
	}
}

// Status is the lifecycle state of an aggregate fetch.
type Status string

const (
	StatusPending Status = "pending"
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
)

// AggregateViewState is the single view state derived from the three
// category queries. Result slices stay empty unless Status is success;
// Error is set only when Status is failed.
type AggregateViewState struct {
	Status     Status           `json:"status"`
	Offer      []ListingSummary `json:"offerListings"`
	Rent       []ListingSummary `json:"rentListings"`
	Sale       []ListingSummary `json:"saleListings"`
	Error      string           `json:"error,omitempty"`
	Activation uint64           `json:"activation"`
}

// PendingState is the state at the start of an activation.
func PendingState(activation uint64) AggregateViewState {
	return AggregateViewState{
		Status:     StatusPending,
		Offer:      []ListingSummary{},
		Rent:       []ListingSummary{},
		Sale:       []ListingSummary{},
		Activation: activation,
	}
}

// Results returns the listings for the given category.
func (s AggregateViewState) Results(c Category) []ListingSummary {
	switch c {
	case CategoryOffer:
		return s.Offer
	case CategoryRent:
		return s.Rent
	case CategorySale:
		return s.Sale
	}
	return nil
}

// Settled reports whether the activation reached a terminal status.
func (s AggregateViewState) Settled() bool {
	return s.Status == StatusSuccess || s.Status == StatusFailed
}

// Clone returns a copy whose slices do not alias the receiver's.
func (s AggregateViewState) Clone() AggregateViewState {
	c := s
	c.Offer = append([]ListingSummary{}, s.Offer...)
	c.Rent = append([]ListingSummary{}, s.Rent...)
	c.Sale = append([]ListingSummary{}, s.Sale...)
	return c
}
