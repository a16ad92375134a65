package fetcher

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"estate-browser/models"
	"estate-browser/utils"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *ListingClient {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	c, err := NewListingClient(srv.URL, 2*time.Second, utils.NewNopLogger())
	require.NoError(t, err)
	return c
}

func TestFetchSendsCategoryQuery(t *testing.T) {
	var gotPath, gotType, gotOffer, gotLimit string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotType = r.URL.Query().Get("type")
		gotOffer = r.URL.Query().Get("offer")
		gotLimit = r.URL.Query().Get("limit")
		w.Write([]byte(`[]`))
	})

	queries := models.HomeQueries(4)
	_, err := c.Fetch(context.Background(), queries[2])
	require.NoError(t, err)

	assert.Equal(t, "/api/v1/listing/get", gotPath)
	assert.Equal(t, "sale", gotType)
	assert.Equal(t, "", gotOffer)
	assert.Equal(t, "4", gotLimit)
}

func TestFetchDecodesListingsInOrder(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `[
			{"_id":"b","name":"Loft","type":"rent","regularPrice":1200,"bedrooms":1,"bathrooms":1,"imageUrls":["https://img/1.jpg"]},
			{"_id":"a","name":"Villa","type":"sale","offer":true,"regularPrice":500000,"discountPrice":450000,"bedrooms":4,"bathrooms":3,"imageUrls":[]}
		]`)
	})

	got, err := c.Fetch(context.Background(), models.HomeQueries(4)[0])
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "b", got[0].ID)
	assert.Equal(t, "Loft", got[0].Title)
	assert.Equal(t, "a", got[1].ID)
	require.NotNil(t, got[1].DiscountPrice)
	assert.Equal(t, 450000.0, *got[1].DiscountPrice)
	assert.Empty(t, got[1].ImageURLs)
}

func TestFetchNonSuccessStatusIsTransportError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "database unavailable", http.StatusInternalServerError)
	})

	_, err := c.Fetch(context.Background(), models.HomeQueries(4)[2])
	require.Error(t, err)

	var te *TransportError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, http.StatusInternalServerError, te.StatusCode)
	assert.Equal(t, models.CategorySale, te.Category)
	assert.Contains(t, err.Error(), "database unavailable")
}

func TestFetchMalformedBodyIsParseError(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not json", `<html>oops</html>`},
		{"object instead of array", `{"success":false}`},
		{"null", `null`},
		{"invalid type", `[{"_id":"x","type":"lease"}]`},
		{"discount above regular", `[{"_id":"x","type":"sale","offer":true,"regularPrice":10,"discountPrice":20}]`},
		{"negative bedrooms", `[{"_id":"x","type":"rent","bedrooms":-1}]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, tt.body)
			})

			_, err := c.Fetch(context.Background(), models.HomeQueries(4)[1])
			var pe *ParseError
			require.True(t, errors.As(err, &pe), "got %v", err)
			assert.Equal(t, models.CategoryRent, pe.Category)
		})
	}
}

func TestFetchNetworkFailureIsTransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()

	c, err := NewListingClient(base, time.Second, utils.NewNopLogger())
	require.NoError(t, err)

	_, err = c.Fetch(context.Background(), models.HomeQueries(4)[0])
	var te *TransportError
	require.True(t, errors.As(err, &te), "got %v", err)
	assert.Zero(t, te.StatusCode)
}

func TestFetchHonoursContextCancellation(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Fetch(ctx, models.HomeQueries(4)[0])
	require.ErrorIs(t, err, context.Canceled)
}

func TestNewListingClientRejectsBadURL(t *testing.T) {
	for _, raw := range []string{"localhost:3000", "ftp://example.com", "://bad"} {
		_, err := NewListingClient(raw, time.Second, utils.NewNopLogger())
		assert.Error(t, err, raw)
	}
}

func TestURLKeepsBasePath(t *testing.T) {
	c, err := NewListingClient("https://estate.example.com/proxy/", time.Second, utils.NewNopLogger())
	require.NoError(t, err)

	got := c.URL(models.HomeQueries(4)[0])
	assert.Equal(t, "https://estate.example.com/proxy/api/v1/listing/get?limit=4&offer=true", got)
}
