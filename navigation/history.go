// Package navigation provides the routing primitives the search box drives:
// an in-memory session history and a headless-browser tab.
package navigation

import (
	"errors"
	"strings"
	"sync"
)

// ErrNoEntry is returned by Back and Forward at either end of the history.
var ErrNoEntry = errors.New("navigation: no history entry")

type listener struct {
	id int
	fn func(rawQuery string)
}

// History is an in-memory session history with back/forward semantics,
// equivalent to a browser tab's history stack.
type History struct {
	mu        sync.Mutex
	entries   []string
	index     int
	nextID    int
	listeners []listener
}

// NewHistory creates a history whose first entry is start (e.g. "/").
func NewHistory(start string) *History {
	if start == "" {
		start = "/"
	}
	return &History{entries: []string{start}}
}

// Current returns the full path of the current entry.
func (h *History) Current() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.entries[h.index]
}

// Location returns the query string of the current entry, without '?'.
func (h *History) Location() string {
	return QueryOf(h.Current())
}

// Push adds path after the current entry, dropping any forward entries.
func (h *History) Push(path string) error {
	if path == "" {
		return errors.New("navigation: empty path")
	}
	h.mu.Lock()
	h.entries = append(h.entries[:h.index+1], path)
	h.index++
	fns := h.listenersLocked()
	h.mu.Unlock()

	emit(fns, QueryOf(path))
	return nil
}

// Back moves to the previous entry.
func (h *History) Back() error { return h.move(-1) }

// Forward moves to the next entry.
func (h *History) Forward() error { return h.move(1) }

func (h *History) move(delta int) error {
	h.mu.Lock()
	next := h.index + delta
	if next < 0 || next >= len(h.entries) {
		h.mu.Unlock()
		return ErrNoEntry
	}
	h.index = next
	path := h.entries[next]
	fns := h.listenersLocked()
	h.mu.Unlock()

	emit(fns, QueryOf(path))
	return nil
}

// Listen registers fn for every navigation. The returned func removes it.
func (h *History) Listen(fn func(rawQuery string)) func() {
	h.mu.Lock()
	h.nextID++
	id := h.nextID
	h.listeners = append(h.listeners, listener{id: id, fn: fn})
	h.mu.Unlock()

	return func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		for i, l := range h.listeners {
			if l.id == id {
				h.listeners = append(h.listeners[:i], h.listeners[i+1:]...)
				return
			}
		}
	}
}

// Len returns the number of entries.
func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.entries)
}

func (h *History) listenersLocked() []func(string) {
	fns := make([]func(string), len(h.listeners))
	for i, l := range h.listeners {
		fns[i] = l.fn
	}
	return fns
}

func emit(fns []func(string), rawQuery string) {
	for _, fn := range fns {
		fn(rawQuery)
	}
}

// QueryOf returns the query part of a path or URL, without '?' and without
// any fragment.
func QueryOf(path string) string {
	_, q, ok := strings.Cut(path, "?")
	if !ok {
		return ""
	}
	q, _, _ = strings.Cut(q, "#")
	return q
}
