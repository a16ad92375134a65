package server

import (
	"net/http"

	"estate-browser/models"
	"estate-browser/services"
	"estate-browser/utils"
)

// HomeResponse is the body of GET /api/home.
type HomeResponse struct {
	models.AggregateViewState
	Sections []models.Section `json:"sections"`
}

// HomeHandler serves the aggregated home feed. Each request is one
// activation of a fresh aggregator.
type HomeHandler struct {
	fetcher services.ListingFetcher
	queries []models.CategoryQuery
	cards   *services.CardBuilder
	logger  *utils.Logger
}

func NewHomeHandler(fetcher services.ListingFetcher, queries []models.CategoryQuery, logger *utils.Logger) *HomeHandler {
	return &HomeHandler{
		fetcher: fetcher,
		queries: queries,
		cards:   services.NewCardBuilder(logger),
		logger:  logger,
	}
}

// GetHome handles GET /api/home
func (h *HomeHandler) GetHome(w http.ResponseWriter, r *http.Request) {
	agg, err := services.NewAggregator(h.fetcher, h.queries, h.logger)
	if err != nil {
		h.logger.Error("[http] Build aggregator: %v", err)
		ErrorResponse(w, http.StatusInternalServerError, "Home feed misconfigured")
		return
	}

	state, _ := agg.Activate(r.Context())
	resp := HomeResponse{
		AggregateViewState: state,
		Sections:           h.cards.Sections(state, h.queries),
	}
	if resp.Sections == nil {
		resp.Sections = []models.Section{}
	}

	status := http.StatusOK
	if state.Status == models.StatusFailed {
		status = http.StatusBadGateway
	}
	JSONResponse(w, status, resp)
}

// SearchState is the body of GET /search.
type SearchState struct {
	SearchTerm string `json:"searchTerm"`
	Query      string `json:"query"`
}

// SearchHandler exposes the search-term synchronizer over HTTP.
type SearchHandler struct {
	logger *utils.Logger
}

func NewSearchHandler(logger *utils.Logger) *SearchHandler {
	return &SearchHandler{logger: logger}
}

// GetSearch handles GET /search. The term is read from the request's own
// query string, which is what a bookmarked or shared link carries.
func (h *SearchHandler) GetSearch(w http.ResponseWriter, r *http.Request) {
	box := services.NewSearchSync("")
	box.OnActivateOrNavigate(r.URL.RawQuery)
	JSONResponse(w, http.StatusOK, SearchState{SearchTerm: box.Term(), Query: r.URL.RawQuery})
}

// SubmitSearch handles POST /search with form fields "searchTerm" and
// "from" (the query string of the page the form was on). It answers with
// a 303 so the browser lands on the search page without resubmitting.
func (h *SearchHandler) SubmitSearch(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		ErrorResponse(w, http.StatusBadRequest, "Invalid form")
		return
	}

	box := services.NewSearchSync("")
	box.OnInputChanged(r.PostForm.Get(services.SearchTermParam))
	path := box.OnSubmit(r.PostForm.Get("from"))

	h.logger.Debug("[http] Search submitted → %s", path)
	http.Redirect(w, r, path, http.StatusSeeOther)
}
