package web

import (
	"net/http"

	"tagdesk/internal/application/projections"
)

// checkerView is the checker half of the root page.
type checkerView struct {
	Input string
	Panel projections.MediaPanel
}

// draftView is the draft half of the root page.
type draftView struct {
	Form   projections.DraftForm
	Banner *banner
}

// banner is a one-line notice above the draft form.
type banner struct {
	Kind    string // "ok" or "error"
	Message string
}

// indexPage is the root view: the checker and the draft form side by side.
type indexPage struct {
	Checker checkerView
	Draft   draftView
}

// searchPage wraps a search panel for clients without the inline script.
type searchPage struct {
	Panel projections.SearchPanel
}

func mediaDeps(r *http.Request) projections.GetMediaPanelDeps {
	return projections.GetMediaPanelDeps{
		Checker:  services.API,
		Searcher: services.API,
		Cache:    sessionCache(r),
		FanOut:   services.FanOut,
	}
}

func searchDeps(r *http.Request) projections.GetTagSearchDeps {
	return projections.GetTagSearchDeps{Searcher: services.API, Cache: sessionCache(r)}
}

func draftDeps(r *http.Request) projections.GetDraftFormDeps {
	return projections.GetDraftFormDeps{
		Searcher: services.API,
		Cache:    sessionCache(r),
		FanOut:   services.FanOut,
	}
}

// handleIndex renders the root view.
// GET /      shows the checker pre-filled with DefaultIdentifier and nothing confirmed.
// GET /?id=x shows the page with x already confirmed.
func handleIndex(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()

	page := indexPage{
		Checker: checkerView{Input: DefaultIdentifier},
		Draft:   draftView{Form: projections.QueryGetDraftForm(ctx, projections.GetDraftFormQuery{}, draftDeps(r))},
	}
	if q.Has("id") {
		page.Checker.Input = q.Get("id")
		page.Checker.Panel = projections.QueryGetMediaPanel(ctx, projections.GetMediaPanelQuery{Input: q.Get("id")}, mediaDeps(r))
	}
	renderPage(w, r, "index.html", page)
}

// handleCheck confirms the checker input.
// An input without an accepted prefix keeps the previously active identifier.
func handleCheck(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	input := q.Get("id")
	panel := projections.QueryGetMediaPanel(r.Context(), projections.GetMediaPanelQuery{
		Input:  input,
		Active: q.Get("active"),
	}, mediaDeps(r))

	switch {
	case wantsJSON(r):
		writeJSON(w, http.StatusOK, panel)
	case isFragmentRequest(r):
		renderFragment(w, r, "media_panel", panel)
	default:
		page := indexPage{
			Checker: checkerView{Input: input, Panel: panel},
			Draft:   draftView{Form: projections.QueryGetDraftForm(r.Context(), projections.GetDraftFormQuery{}, draftDeps(r))},
		}
		renderPage(w, r, "index.html", page)
	}
}

// handleTagSearch answers a live existence search for one name.
// An empty name renders an idle panel without contacting the tag service.
func handleTagSearch(w http.ResponseWriter, r *http.Request) {
	panel := projections.QueryGetTagSearch(r.Context(), projections.GetTagSearchQuery{
		Name: r.URL.Query().Get("name"),
	}, searchDeps(r))

	switch {
	case wantsJSON(r):
		writeJSON(w, http.StatusOK, panel)
	case isFragmentRequest(r):
		renderFragment(w, r, "search_panel", panel)
	default:
		renderPage(w, r, "search.html", searchPage{Panel: panel})
	}
}
