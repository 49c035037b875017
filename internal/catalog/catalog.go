// Package catalog maps logical source ids to media locators.
package catalog

import (
	"errors"
	"fmt"
	"strings"

	"github.com/samber/lo"
)

// SourceID names a selectable media source.
type SourceID string

// Well-known source ids.
const (
	LocalAudio SourceID = "local_audio"
	LocalVideo SourceID = "local_video"
	HTTPAudio  SourceID = "http_audio"
	HTTPVideo  SourceID = "http_video"

	// Playlist is the aggregate of every concrete entry in catalog order.
	// It is reserved and never registered as a concrete entry.
	Playlist SourceID = "playlist"
)

// String returns the id text.
func (id SourceID) String() string { return string(id) }

// Entry is one concrete catalog source.
type Entry struct {
	ID          SourceID
	Locator     Locator
	Title       string
	Subtitle    string
	Description string
}

// Label returns a display name, falling back to the id.
func (e Entry) Label() string {
	if e.Title != "" {
		return e.Title
	}
	return string(e.ID)
}

// Catalog is an immutable, ordered source registry.
type Catalog struct {
	entries  []Entry
	index    map[SourceID]int
	playlist bool
}

// Option configures a Catalog.
type Option func(*Catalog)

// WithPlaylist controls whether the Playlist aggregate is offered.
func WithPlaylist(enabled bool) Option {
	return func(c *Catalog) { c.playlist = enabled }
}

// New builds a catalog from entries, keeping their order.
func New(entries []Entry, opts ...Option) (*Catalog, error) {
	if len(entries) == 0 {
		return nil, errors.New("catalog has no entries")
	}

	c := &Catalog{
		entries:  make([]Entry, 0, len(entries)),
		index:    make(map[SourceID]int, len(entries)),
		playlist: true,
	}
	for _, opt := range opts {
		opt(c)
	}

	for i, e := range entries {
		e.ID = SourceID(strings.TrimSpace(string(e.ID)))
		if e.ID == "" {
			return nil, fmt.Errorf("entry %d: empty source id", i)
		}
		if e.ID == Playlist {
			return nil, fmt.Errorf("entry %d: %q is reserved for the aggregate source", i, Playlist)
		}
		if _, dup := c.index[e.ID]; dup {
			return nil, fmt.Errorf("entry %d: duplicate source id %q", i, e.ID)
		}
		if err := e.Locator.Validate(); err != nil {
			return nil, fmt.Errorf("entry %q: %w", e.ID, err)
		}
		c.index[e.ID] = len(c.entries)
		c.entries = append(c.entries, e)
	}

	return c, nil
}

// MustNew is like New but panics on error. Intended for static catalogs.
func MustNew(entries []Entry, opts ...Option) *Catalog {
	c, err := New(entries, opts...)
	if err != nil {
		panic(err)
	}
	return c
}

// Resolve returns the locators for id. Concrete ids yield exactly one
// locator; Playlist yields every concrete locator in catalog order.
// The returned slice is owned by the caller.
func (c *Catalog) Resolve(id SourceID) ([]Locator, error) {
	if id == Playlist && c.playlist {
		return lo.Map(c.entries, func(e Entry, _ int) Locator {
			return e.Locator
		}), nil
	}
	i, ok := c.index[id]
	if !ok {
		return nil, &UnknownSourceError{ID: id}
	}
	return []Locator{c.entries[i].Locator}, nil
}

// ParseSourceID validates raw input (for example a UI selection) against
// the catalog.
func (c *Catalog) ParseSourceID(raw string) (SourceID, error) {
	id := SourceID(strings.TrimSpace(raw))
	if !c.Has(id) {
		return "", &UnknownSourceError{ID: id}
	}
	return id, nil
}

// Has reports whether id can be resolved.
func (c *Catalog) Has(id SourceID) bool {
	if id == Playlist {
		return c.playlist
	}
	_, ok := c.index[id]
	return ok
}

// HasPlaylist reports whether the Playlist aggregate is offered.
func (c *Catalog) HasPlaylist() bool { return c.playlist }

// Len returns the number of concrete entries.
func (c *Catalog) Len() int { return len(c.entries) }

// IDs returns the selectable ids: concrete entries in order, then Playlist
// when offered.
func (c *Catalog) IDs() []SourceID {
	ids := lo.Map(c.entries, func(e Entry, _ int) SourceID { return e.ID })
	if c.playlist {
		ids = append(ids, Playlist)
	}
	return ids
}

// Entries returns a copy of the concrete entries.
func (c *Catalog) Entries() []Entry {
	out := make([]Entry, len(c.entries))
	copy(out, c.entries)
	return out
}

// Entry returns the concrete entry for id.
func (c *Catalog) Entry(id SourceID) (Entry, bool) {
	i, ok := c.index[id]
	if !ok {
		return Entry{}, false
	}
	return c.entries[i], true
}

// First returns the first selectable id.
func (c *Catalog) First() SourceID {
	return c.entries[0].ID
}

// Label returns the display name for any selectable id.
func (c *Catalog) Label(id SourceID) string {
	if id == Playlist {
		return "All sources"
	}
	if e, ok := c.Entry(id); ok {
		return e.Label()
	}
	return string(id)
}
