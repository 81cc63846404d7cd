package web

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"tagdesk/internal/application/orchestrators"
	"tagdesk/internal/application/projections"
	"tagdesk/internal/domain/tag"
)

// Draft form actions posted to /draft.
const (
	actionAppend  = "append"
	actionDelete  = "delete:" // followed by the row index
	actionSelect  = "select"
	actionRefresh = "refresh"
)

// errBadAction is returned for an unknown /draft action.
var errBadAction = errors.New("unknown draft action")

// parseDraftForm reads a draft from a form post. Each posted extra name is
// applied as an edit of its row, so rows keep their posted order.
func parseDraftForm(r *http.Request) (tag.Draft, error) {
	if err := r.ParseForm(); err != nil {
		return tag.Draft{}, err
	}
	t, err := tag.ParseType(r.PostForm.Get("type"))
	if err != nil {
		return tag.Draft{}, err
	}
	d := tag.Draft{
		PrimaryName: r.PostForm.Get("primary_name"),
		Type:        t,
	}
	for i, name := range r.PostForm["extra_name"] {
		d.AppendExtraName()
		d.SetExtraName(i, name)
	}
	return d, nil
}

// applyDraftAction applies one structural edit to d.
// Out-of-range deletes are ignored.
func applyDraftAction(d *tag.Draft, action string) error {
	switch {
	case action == actionAppend:
		d.AppendExtraName()
	case strings.HasPrefix(action, actionDelete):
		i, err := strconv.Atoi(strings.TrimPrefix(action, actionDelete))
		if err != nil {
			return fmt.Errorf("%w: %q", errBadAction, action)
		}
		d.RemoveExtraName(i)
	case action == actionSelect, action == actionRefresh, action == "":
	default:
		return fmt.Errorf("%w: %q", errBadAction, action)
	}
	return nil
}

// renderDraft answers with the draft form in the representation the client asked for.
func renderDraft(w http.ResponseWriter, r *http.Request, view draftView) {
	switch {
	case wantsJSON(r):
		writeJSON(w, http.StatusOK, view.Form)
	case isFragmentRequest(r):
		renderFragment(w, r, "draft_form", view)
	default:
		renderPage(w, r, "index.html", indexPage{
			Checker: checkerView{Input: DefaultIdentifier},
			Draft:   view,
		})
	}
}

// handleDraft applies a structural action to the posted draft and re-renders it.
func handleDraft(w http.ResponseWriter, r *http.Request) {
	d, err := parseDraftForm(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := applyDraftAction(&d, r.PostForm.Get("action")); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	form := projections.QueryGetDraftForm(r.Context(), projections.GetDraftFormQuery{Draft: d}, draftDeps(r))
	renderDraft(w, r, draftView{Form: form})
}

// addTagRequest is the JSON body accepted by POST /tags/add.
type addTagRequest struct {
	Type        string   `json:"type"`
	PrimaryName string   `json:"primary_name"`
	ExtraNames  []string `json:"extra_names"`
}

// addTagResponse reports a JSON submission.
type addTagResponse struct {
	Outcome string `json:"outcome"`
	Status  int    `json:"status,omitempty"` // tag service status
}

// handleAddTag submits the draft to the tag service.
// An unready draft is a silent no-op. The draft is never cleared.
func handleAddTag(w http.ResponseWriter, r *http.Request) {
	if isJSONBody(r) {
		handleAddTagJSON(w, r)
		return
	}

	d, err := parseDraftForm(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	result := orchestrators.ExecuteSubmitTag(r.Context(), orchestrators.SubmitTagInput{Draft: d},
		orchestrators.SubmitTagDeps{Writer: services.API})

	view := draftView{
		Form:   projections.QueryGetDraftForm(r.Context(), projections.GetDraftFormQuery{Draft: d}, draftDeps(r)),
		Banner: submitBanner(result),
	}
	renderDraft(w, r, view)
}

func handleAddTagJSON(w http.ResponseWriter, r *http.Request) {
	var req addTagRequest
	if err := strictDecode(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
		return
	}
	t, err := tag.ParseType(req.Type)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	d := tag.Draft{PrimaryName: req.PrimaryName, ExtraNames: req.ExtraNames, Type: t}
	result := orchestrators.ExecuteSubmitTag(r.Context(), orchestrators.SubmitTagInput{Draft: d},
		orchestrators.SubmitTagDeps{Writer: services.API})

	status := http.StatusOK
	switch result.Outcome {
	case orchestrators.SubmitSkipped:
		status = http.StatusUnprocessableEntity
	case orchestrators.SubmitRejected, orchestrators.SubmitFailed:
		status = http.StatusBadGateway
	}
	writeJSON(w, status, addTagResponse{Outcome: string(result.Outcome), Status: result.StatusCode})
}

// submitBanner turns a submission result into the notice shown above the form.
func submitBanner(result orchestrators.SubmitTagResult) *banner {
	switch result.Outcome {
	case orchestrators.SubmitAccepted:
		return &banner{Kind: "ok", Message: "Tag submitted."}
	case orchestrators.SubmitRejected:
		return &banner{Kind: "error", Message: fmt.Sprintf("The tag service rejected the tag (status %d).", result.StatusCode)}
	case orchestrators.SubmitFailed:
		return &banner{Kind: "error", Message: "The tag service could not be reached. Try again."}
	default:
		return nil
	}
}
