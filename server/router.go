// Package server exposes the home feed and the search box over HTTP.
package server

import (
	"net/http"

	"estate-browser/models"
	"estate-browser/services"
	"estate-browser/utils"
)

// NewRouter builds the HTTP routes.
func NewRouter(fetcher services.ListingFetcher, queries []models.CategoryQuery, logger *utils.Logger) http.Handler {
	mux := http.NewServeMux()

	homeHandler := NewHomeHandler(fetcher, queries, logger)
	searchHandler := NewSearchHandler(logger)

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	mux.HandleFunc("GET /api/home", WithLogging(logger, homeHandler.GetHome))
	mux.HandleFunc("GET /search", WithLogging(logger, searchHandler.GetSearch))
	mux.HandleFunc("POST /search", WithLogging(logger, searchHandler.SubmitSearch))

	return CORS(mux)
}
