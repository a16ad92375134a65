package services

import (
	"fmt"
	"sync"

	"estate-browser/utils"
)

const (
	// SearchTermParam is the query-string key holding the free-text term.
	SearchTermParam = "searchTerm"
	// SearchRoute is where submitted searches navigate to.
	SearchRoute = "/search"
)

// SearchSync keeps a free-text search term in step with the searchTerm
// query-string parameter. It never reads ambient location state: callers
// pass the current query string in and get the next path back.
type SearchSync struct {
	mu   sync.Mutex
	term string
}

// NewSearchSync returns a synchronizer holding initial as its term.
func NewSearchSync(initial string) *SearchSync {
	return &SearchSync{term: initial}
}

// Term returns the current term.
func (s *SearchSync) Term() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.term
}

// OnActivateOrNavigate adopts the searchTerm parameter of rawQuery when it
// is present. When it is absent the term is left untouched so in-progress
// typing survives unrelated navigations.
func (s *SearchSync) OnActivateOrNavigate(rawQuery string) {
	v, ok := ParseQuery(rawQuery).Get(SearchTermParam)
	if !ok {
		return
	}
	s.mu.Lock()
	s.term = v
	s.mu.Unlock()
}

// OnInputChanged records a keystroke-level edit of the term.
func (s *SearchSync) OnInputChanged(value string) {
	s.mu.Lock()
	s.term = value
	s.mu.Unlock()
}

// OnSubmit returns the search path for the current term: rawQuery with its
// searchTerm parameter set to the term and every other parameter kept as
// is. An empty term still produces a path ("searchTerm=").
func (s *SearchSync) OnSubmit(rawQuery string) string {
	q := ParseQuery(rawQuery)
	q.Set(SearchTermParam, s.Term())
	return SearchRoute + "?" + q.Encode()
}

// Navigator is the routing primitive the search box drives.
type Navigator interface {
	// Location returns the current query string, without the leading '?'.
	Location() string
	// Push navigates to path without reloading the page.
	Push(path string) error
	// Listen calls fn with the new query string after every navigation,
	// including back and forward. The returned func unregisters fn.
	Listen(fn func(rawQuery string)) func()
}

// SearchController binds a SearchSync to a Navigator the way a header search
// form is bound to the router: it adopts the term from the location on
// activation and on every navigation, and submits by pushing a new location.
type SearchController struct {
	sync   *SearchSync
	nav    Navigator
	logger *utils.Logger
	stop   func()
}

// NewSearchController creates a controller. Call Activate to attach it.
func NewSearchController(s *SearchSync, nav Navigator, logger *utils.Logger) *SearchController {
	return &SearchController{sync: s, nav: nav, logger: logger}
}

// Activate reads the current location and starts following navigations.
func (c *SearchController) Activate() {
	if c.stop != nil {
		c.stop()
	}
	c.sync.OnActivateOrNavigate(c.nav.Location())
	c.stop = c.nav.Listen(c.sync.OnActivateOrNavigate)
}

// Deactivate stops following navigations.
func (c *SearchController) Deactivate() {
	if c.stop != nil {
		c.stop()
		c.stop = nil
	}
}

// Input forwards a keystroke.
func (c *SearchController) Input(value string) {
	c.sync.OnInputChanged(value)
}

// Term returns the term currently shown in the search box.
func (c *SearchController) Term() string {
	return c.sync.Term()
}

// Submit builds the search path from the navigator's current query string
// and pushes it.
func (c *SearchController) Submit() (string, error) {
	path := c.sync.OnSubmit(c.nav.Location())
	c.logger.Debug("[search] Submitting %q → %s", c.sync.Term(), path)
	if err := c.nav.Push(path); err != nil {
		return "", fmt.Errorf("search: navigate to %s: %w", path, err)
	}
	return path, nil
}
