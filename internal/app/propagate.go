package app

import (
	"context"
	"fmt"
	"net/http"

	"lingua/api/internal/store"
	"lingua/api/internal/workflow"
)

type PropagationResult struct {
	PropagatedCount int      `json:"propagatedCount"`
	SegmentIDs      []string `json:"segmentIds"`
}

// Propagate copies a confirmed translation onto every other segment of the
// document with byte-identical source text that is still untranslated or in
// draft. Segments already translated or reviewed are never overwritten.
// Updates are independent single-row writes: a failure partway through leaves
// the earlier rows applied and is reported alongside the partial result. The
// candidate set is re-scanned from current state, so retrying after a partial
// failure is safe.
func (s *Service) Propagate(ctx context.Context, documentID, sourceText, targetText, excludeSegmentID string, status workflow.SegmentStatus, lastModifiedBy string) (PropagationResult, error) {
	result := PropagationResult{SegmentIDs: []string{}}
	if status == "" {
		status = workflow.SegmentTranslated
	}
	if !workflow.ValidSegmentStatus(status) {
		return result, domainError(http.StatusBadRequest, "invalid_status", "unknown segment status "+string(status), nil)
	}

	segments, err := s.store.ListSegments(ctx, documentID)
	if err != nil {
		return result, err
	}

	for _, seg := range segments {
		if seg.ID == excludeSegmentID || seg.SourceText != sourceText {
			continue
		}
		if workflow.Level(workflow.SegmentStatus(seg.Status)) > workflow.Level(workflow.SegmentDraft) {
			continue
		}
		write := store.SegmentWrite{
			TargetText:     targetText,
			Status:         string(status),
			ModifiedBy:     lastModifiedBy,
			MarkTranslated: workflow.Level(status) >= workflow.Level(workflow.SegmentTranslated),
			MarkReviewed:   workflow.Level(status) >= workflow.Level(workflow.SegmentReviewed1),
		}
		if err := s.store.UpdateSegmentContent(ctx, seg.ID, write); err != nil {
			return result, fmt.Errorf("propagate to segment %s: %w", seg.ID, err)
		}
		result.PropagatedCount++
		result.SegmentIDs = append(result.SegmentIDs, seg.ID)
	}
	return result, nil
}
