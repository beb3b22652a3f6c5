package client

import (
	"context"
	"fmt"

	"github.com/dsarkar/galleria/internal/media"
)

// SearchState is the gallery's search session state. Camera acquisition
// lives in the frontend; this models everything after a probe exists.
type SearchState string

const (
	StateIdle      SearchState = "idle"
	StateSearching SearchState = "searching"
	StateFiltered  SearchState = "filtered"
	StateError     SearchState = "error"
)

// Gallery holds a catalog view that can be narrowed by a face search and
// restored without a re-fetch: the unfiltered set is retained alongside the
// filtered one for the lifetime of the view.
type Gallery struct {
	api *Client

	all      []media.Object
	filtered []media.Object
	state    SearchState
	message  string
}

func NewGallery(api *Client) *Gallery {
	return &Gallery{api: api, state: StateIdle}
}

// Refresh re-fetches the full catalog and clears any active filter.
func (g *Gallery) Refresh(ctx context.Context) error {
	all, err := g.api.ListMedia(ctx)
	if err != nil {
		return fmt.Errorf("refreshing catalog: %w", err)
	}
	g.all = all
	g.filtered = nil
	g.state = StateIdle
	g.message = ""
	return nil
}

// SearchByFace narrows the view to entries matching faces in the probe.
// A search that finds nothing is a successful empty filter, distinguishable
// from a failed call (StateError).
func (g *Gallery) SearchByFace(ctx context.Context, probe []byte) error {
	g.state = StateSearching

	result, err := g.api.SearchFace(ctx, probe)
	if err != nil {
		g.state = StateError
		g.message = err.Error()
		return err
	}

	externalIDs := make([]string, 0, len(result.Matches))
	for _, m := range result.Matches {
		externalIDs = append(externalIDs, m.ExternalImageID)
	}

	g.filtered = media.FilterByExternalIDs(g.all, externalIDs)
	g.state = StateFiltered
	g.message = result.Message
	return nil
}

// Reset restores the unfiltered catalog. No re-fetch happens; the full set
// was retained when the filter was applied.
func (g *Gallery) Reset() {
	g.filtered = nil
	g.state = StateIdle
	g.message = ""
}

// Items returns the current view: the filtered subset while a filter is
// active, the full catalog otherwise.
func (g *Gallery) Items() []media.Object {
	if g.state == StateFiltered {
		return g.filtered
	}
	return g.all
}

// All returns the retained unfiltered catalog.
func (g *Gallery) All() []media.Object {
	return g.all
}

// State returns the current search session state.
func (g *Gallery) State() SearchState {
	return g.state
}

// Message returns the last status or error message.
func (g *Gallery) Message() string {
	return g.message
}
