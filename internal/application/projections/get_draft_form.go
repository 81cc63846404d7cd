package projections

import (
	"context"

	"golang.org/x/sync/errgroup"

	"tagdesk/internal/application/lookup"
	"tagdesk/internal/domain/tag"
)

// GetDraftFormQuery carries the draft as posted by the form.
type GetDraftFormQuery struct {
	Draft tag.Draft
}

// ExtraNameRow is one editable alternate name with its live search.
type ExtraNameRow struct {
	Index  int         `json:"index"`
	Value  string      `json:"value"`
	Search SearchPanel `json:"search"`
}

// TypeOption is one radio button of the type selector.
type TypeOption struct {
	Type    tag.Type `json:"type"`
	Checked bool     `json:"checked"`
}

// DraftForm is the rendered state of the new-tag form.
type DraftForm struct {
	Draft    tag.Draft      `json:"-"`
	Primary  SearchPanel    `json:"primary"`
	Extras   []ExtraNameRow `json:"extras"`
	Types    []TypeOption   `json:"types"`
	Advisory string         `json:"advisory,omitempty"` // markdown
	Ready    bool           `json:"ready"`
}

// GetDraftFormDeps holds dependencies for QueryGetDraftForm.
type GetDraftFormDeps struct {
	Searcher TagSearcher
	Cache    *lookup.Cache
	FanOut   int
}

// QueryGetDraftForm shapes a draft for rendering and resolves live searches for every non-empty name.
// PRE: deps.Searcher and deps.Cache are non-nil
// POST: empty names get an idle panel and cause no request; the draft is returned unchanged
func QueryGetDraftForm(ctx context.Context, query GetDraftFormQuery, deps GetDraftFormDeps) DraftForm {
	d := query.Draft
	form := DraftForm{
		Draft:    d,
		Extras:   make([]ExtraNameRow, len(d.ExtraNames)),
		Types:    make([]TypeOption, len(tag.Types)),
		Advisory: d.Type.Advisory(),
		Ready:    d.Ready(),
	}
	for i, t := range tag.Types {
		form.Types[i] = TypeOption{Type: t, Checked: t == d.Type}
	}

	searchDeps := GetTagSearchDeps{Searcher: deps.Searcher, Cache: deps.Cache}
	fanOut := deps.FanOut
	if fanOut <= 0 {
		fanOut = DefaultFanOut
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(fanOut)

	g.Go(func() error {
		form.Primary = QueryGetTagSearch(gctx, GetTagSearchQuery{Name: d.PrimaryName}, searchDeps)
		return nil
	})
	for i, name := range d.ExtraNames {
		form.Extras[i] = ExtraNameRow{Index: i, Value: name}
		g.Go(func() error {
			form.Extras[i].Search = QueryGetTagSearch(gctx, GetTagSearchQuery{Name: name}, searchDeps)
			return nil
		})
	}
	_ = g.Wait()

	return form
}
