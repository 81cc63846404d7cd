package orchestrators

import (
	"context"
	"log/slog"

	"tagdesk/internal/adapters/upstream"
	"tagdesk/internal/domain/tag"
	"tagdesk/internal/metrics"
)

// TagWriter creates tags on the tag service.
type TagWriter interface {
	AddTag(ctx context.Context, sub tag.Submission) (int, error)
}

// SubmitTagOutcome classifies what happened to a submission.
type SubmitTagOutcome string

// Submission outcomes.
const (
	SubmitSkipped  SubmitTagOutcome = "skipped"  // draft not ready, nothing sent
	SubmitAccepted SubmitTagOutcome = "accepted" // status < 400
	SubmitRejected SubmitTagOutcome = "rejected" // status >= 400
	SubmitFailed   SubmitTagOutcome = "failed"   // no response
)

// SubmitTagInput carries input for the submit orchestrator.
type SubmitTagInput struct {
	Draft tag.Draft
}

// SubmitTagResult reports the outcome of one submission.
type SubmitTagResult struct {
	Outcome    SubmitTagOutcome
	StatusCode int
}

// SubmitTagDeps holds dependencies for SubmitTag.
type SubmitTagDeps struct {
	Writer TagWriter
}

// ExecuteSubmitTag sends a ready draft to the tag service.
// PRE: none
// POST: a draft that is not ready sends nothing and yields SubmitSkipped;
// an error-class status is logged and yields SubmitRejected; the draft is never modified
func ExecuteSubmitTag(ctx context.Context, input SubmitTagInput, deps SubmitTagDeps) SubmitTagResult {
	sub, ok := input.Draft.Submission()
	if !ok {
		return SubmitTagResult{Outcome: SubmitSkipped}
	}

	status, err := deps.Writer.AddTag(ctx, sub)
	result := SubmitTagResult{StatusCode: status}
	switch {
	case err != nil:
		result.Outcome = SubmitFailed
		slog.Error("tag_submit_failed", "type", string(sub.Type), "primary_name", sub.PrimaryName, "error", err.Error())
	case upstream.IsErrorStatus(status):
		result.Outcome = SubmitRejected
		slog.Warn("tag_submit_rejected", "type", string(sub.Type), "primary_name", sub.PrimaryName, "status", status)
	default:
		result.Outcome = SubmitAccepted
		slog.Info("tag_event", "event", "tag_submitted", "type", string(sub.Type), "primary_name", sub.PrimaryName,
			"extra_names", len(sub.ExtraNames), "status", status)
	}
	metrics.TagSubmissionsTotal.WithLabelValues(string(result.Outcome)).Inc()
	return result
}
