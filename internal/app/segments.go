package app

import (
	"context"
	"fmt"
	"net/http"

	"lingua/api/internal/store"
	"lingua/api/internal/workflow"
)

type SegmentUpdateInput struct {
	TargetText string                 `json:"targetText"`
	Status     workflow.SegmentStatus `json:"status"`
	Propagate  bool                   `json:"propagate"`
}

type SegmentUpdateResult struct {
	Decision    Decision           `json:"decision"`
	Status      workflow.Status    `json:"workflowStatus,omitempty"`
	Propagation *PropagationResult `json:"propagation,omitempty"`
}

// UpdateSegment writes one segment on behalf of a user: edit authorization,
// target-status validation, the row update, optional propagation of a
// confirmed translation, then a workflow refresh.
func (s *Service) UpdateSegment(ctx context.Context, segmentID string, input SegmentUpdateInput, userID string, isManager bool) (SegmentUpdateResult, error) {
	seg, err := s.store.GetSegment(ctx, segmentID)
	if store.IsNotFound(err) {
		return SegmentUpdateResult{}, domainError(http.StatusNotFound, "segment_not_found", "segment "+segmentID+" not found", nil)
	}
	if err != nil {
		return SegmentUpdateResult{}, err
	}
	doc, _, err := s.documentContext(ctx, seg.DocumentID)
	if err != nil {
		return SegmentUpdateResult{}, err
	}

	decision, err := s.CanEdit(ctx, doc.ID, userID, workflow.Status(doc.WorkflowStatus), isManager)
	if err != nil {
		return SegmentUpdateResult{}, err
	}
	if !decision.Allowed {
		return SegmentUpdateResult{Decision: decision}, nil
	}

	status := input.Status
	if status == "" {
		status = workflow.SegmentDraft
	}
	if !workflow.ValidSegmentStatus(status) {
		return SegmentUpdateResult{}, domainError(http.StatusBadRequest, "invalid_status", "unknown segment status "+string(status), nil)
	}
	if !workflow.StatusAllowed(workflow.Status(doc.WorkflowStatus), status, isManager) {
		return SegmentUpdateResult{Decision: denied("status %q cannot be set during %s", status, doc.WorkflowStatus)}, nil
	}

	write := store.SegmentWrite{
		TargetText:     input.TargetText,
		Status:         string(status),
		ModifiedBy:     userID,
		MarkTranslated: status == workflow.SegmentTranslated,
		MarkReviewed:   workflow.Level(status) >= workflow.Level(workflow.SegmentReviewed1),
	}
	if err := s.store.UpdateSegmentContent(ctx, segmentID, write); err != nil {
		return SegmentUpdateResult{}, err
	}

	var propagation *PropagationResult
	if input.Propagate && status == workflow.SegmentTranslated {
		p, err := s.Propagate(ctx, doc.ID, seg.SourceText, input.TargetText, seg.ID, workflow.SegmentTranslated, userID)
		if err != nil {
			return SegmentUpdateResult{Decision: decision, Propagation: &p}, err
		}
		propagation = &p
	}

	refreshed, err := s.Refresh(ctx, doc.ID)
	if err != nil {
		return SegmentUpdateResult{Decision: decision, Propagation: propagation}, err
	}
	return SegmentUpdateResult{Decision: decision, Status: refreshed, Propagation: propagation}, nil
}

type BulkSegmentUpdate struct {
	SegmentID  string                 `json:"segmentId"`
	TargetText string                 `json:"targetText"`
	Status     workflow.SegmentStatus `json:"status"`
}

type BulkUpdateResult struct {
	Updated    int             `json:"updated"`
	Skipped    int             `json:"skipped"`
	SegmentIDs []string        `json:"segmentIds"`
	Status     workflow.Status `json:"workflowStatus,omitempty"`
}

// BulkUpdateSegments applies independent single-row updates after one edit
// check for the document. Rows with statuses outside the stage's allowed set,
// or segments that do not belong to the document, are skipped and counted. A
// storage fault aborts the remainder; applied rows stay applied.
func (s *Service) BulkUpdateSegments(ctx context.Context, documentID string, updates []BulkSegmentUpdate, userID string, isManager bool) (Decision, BulkUpdateResult, error) {
	doc, _, err := s.documentContext(ctx, documentID)
	if err != nil {
		return Decision{}, BulkUpdateResult{}, err
	}

	decision, err := s.CanEdit(ctx, doc.ID, userID, workflow.Status(doc.WorkflowStatus), isManager)
	if err != nil {
		return Decision{}, BulkUpdateResult{}, err
	}
	result := BulkUpdateResult{SegmentIDs: []string{}}
	if !decision.Allowed {
		return decision, result, nil
	}

	for _, update := range updates {
		seg, err := s.store.GetSegment(ctx, update.SegmentID)
		if store.IsNotFound(err) || (err == nil && seg.DocumentID != documentID) {
			result.Skipped++
			continue
		}
		if err != nil {
			return decision, result, err
		}
		if !workflow.ValidSegmentStatus(update.Status) || !workflow.StatusAllowed(workflow.Status(doc.WorkflowStatus), update.Status, isManager) {
			result.Skipped++
			continue
		}
		write := store.SegmentWrite{
			TargetText:     update.TargetText,
			Status:         string(update.Status),
			ModifiedBy:     userID,
			MarkTranslated: update.Status == workflow.SegmentTranslated,
			MarkReviewed:   workflow.Level(update.Status) >= workflow.Level(workflow.SegmentReviewed1),
		}
		if err := s.store.UpdateSegmentContent(ctx, update.SegmentID, write); err != nil {
			return decision, result, fmt.Errorf("bulk update segment %s: %w", update.SegmentID, err)
		}
		result.Updated++
		result.SegmentIDs = append(result.SegmentIDs, update.SegmentID)
	}

	refreshed, err := s.Refresh(ctx, documentID)
	if err != nil {
		return decision, result, err
	}
	result.Status = refreshed
	return decision, result, nil
}
