// Package fetcher talks to the listing API.
package fetcher

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"estate-browser/models"
	"estate-browser/utils"
)

const (
	listingPath = "/api/v1/listing/get"

	// maxBodyBytes bounds how much of an error body is kept for messages.
	maxBodyBytes = 512
)

// ListingClient fetches category listings from the listing API over HTTP.
// It makes exactly one attempt per call.
type ListingClient struct {
	baseURL *url.URL
	client  *http.Client
	logger  *utils.Logger
}

// NewListingClient constructs a client for the API rooted at baseURL.
func NewListingClient(baseURL string, timeout time.Duration, logger *utils.Logger) (*ListingClient, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("fetcher: parse base url %q: %w", baseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("fetcher: base url %q must be http or https", baseURL)
	}
	return &ListingClient{
		baseURL: u,
		client:  &http.Client{Timeout: timeout},
		logger:  logger,
	}, nil
}

// URL returns the request URL for the given query.
func (c *ListingClient) URL(q models.CategoryQuery) string {
	u := *c.baseURL
	u.Path = u.Path + listingPath
	u.RawQuery = q.Values().Encode()
	return u.String()
}

// Fetch retrieves the listings for one category query. Failures are
// returned as *TransportError or *ParseError.
func (c *ListingClient) Fetch(ctx context.Context, q models.CategoryQuery) ([]models.ListingSummary, error) {
	reqURL := c.URL(q)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, &TransportError{Category: q.Category, Err: err}
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &TransportError{Category: q.Category, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Category: q.Category, StatusCode: resp.StatusCode, Err: fmt.Errorf("read body: %w", err)}
	}

	c.logger.Debug("[fetcher] GET %s → %d in %v", reqURL, resp.StatusCode, time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &TransportError{
			Category:   q.Category,
			StatusCode: resp.StatusCode,
			Err:        errors.New(bodySnippet(body)),
		}
	}

	listings, err := DecodeListings(body)
	if err != nil {
		return nil, &ParseError{Category: q.Category, Err: err}
	}
	return listings, nil
}

// DecodeListings parses a JSON array of listings and validates each one.
// A JSON null is rejected; an empty array is a valid, empty result.
func DecodeListings(body []byte) ([]models.ListingSummary, error) {
	var listings []models.ListingSummary
	if err := json.Unmarshal(body, &listings); err != nil {
		return nil, fmt.Errorf("json unmarshal: %w", err)
	}
	if listings == nil {
		return nil, errors.New("expected a JSON array")
	}
	for i, l := range listings {
		if err := l.Validate(); err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
	}
	return listings, nil
}

func bodySnippet(body []byte) string {
	s := strings.TrimSpace(string(body))
	if s == "" {
		return "empty response body"
	}
	if len(s) > maxBodyBytes {
		s = s[:maxBodyBytes] + "..."
	}
	return s
}
