package app

import (
	"context"
	"log"
	"net/http"

	"lingua/api/internal/workflow"
)

// Calculate derives the document stage from the current segment snapshot. A
// document with no segments is always in translation; it cannot be ahead of
// work that does not exist.
func (s *Service) Calculate(ctx context.Context, documentID string, workflowType workflow.Type) (workflow.Status, error) {
	segments, err := s.store.ListSegments(ctx, documentID)
	if err != nil {
		return "", err
	}
	if len(segments) == 0 {
		return workflow.StatusTranslation, nil
	}
	return workflow.CalculateStatus(minSegmentLevel(segments), workflowType), nil
}

// Refresh recomputes the materialized workflow status and persists it only
// when it changed. Callers invoke it after every batch of segment writes that
// could move the minimum level.
func (s *Service) Refresh(ctx context.Context, documentID string) (workflow.Status, error) {
	doc, project, err := s.documentContext(ctx, documentID)
	if err != nil {
		return "", err
	}
	next, err := s.Calculate(ctx, documentID, workflow.Type(project.WorkflowType))
	if err != nil {
		return "", err
	}
	if next != workflow.Status(doc.WorkflowStatus) {
		if err := s.store.UpdateDocumentWorkflowStatus(ctx, documentID, string(next)); err != nil {
			return "", err
		}
	}
	s.cacheStatus(ctx, documentID, next)
	return next, nil
}

// CanAdvanceTo gates an explicit stage-advance action, independent of the
// automatic recompute.
func (s *Service) CanAdvanceTo(ctx context.Context, documentID string, target workflow.Status, workflowType workflow.Type) (Decision, error) {
	if target == workflow.StatusTranslation {
		return allowed(), nil
	}
	if workflowType == workflow.TypeSimple && (target == workflow.StatusReview1 || target == workflow.StatusReview2) {
		return denied("simple projects have no review stages"), nil
	}
	if target == workflow.StatusReview2 && workflowType != workflow.TypeFullReview {
		return denied("review_2 requires a full_review workflow"), nil
	}

	var required workflow.SegmentStatus
	switch target {
	case workflow.StatusReview1:
		required = workflow.SegmentTranslated
	case workflow.StatusReview2:
		required = workflow.SegmentReviewed1
	case workflow.StatusComplete:
		required = workflow.SegmentReviewed2
	default:
		return Decision{}, domainError(http.StatusBadRequest, "invalid_workflow_status", "unknown workflow status "+string(target), nil)
	}

	segments, err := s.store.ListSegments(ctx, documentID)
	if err != nil {
		return Decision{}, err
	}
	if below := countBelowLevel(segments, workflow.Level(required)); below > 0 {
		return denied("%d segments have not reached %s", below, required), nil
	}
	return allowed(), nil
}

// CompleteDocument is the explicit, manager-only completion path. Simple
// projects never reach complete through the calculator, so this is the only
// way they finish.
func (s *Service) CompleteDocument(ctx context.Context, documentID, byUserID string, isManager bool) (Decision, error) {
	if !isManager {
		return denied("only managers may complete a document"), nil
	}
	_, project, err := s.documentContext(ctx, documentID)
	if err != nil {
		return Decision{}, err
	}

	var required workflow.SegmentStatus
	switch workflow.Type(project.WorkflowType) {
	case workflow.TypeFullReview:
		required = workflow.SegmentReviewed2
	case workflow.TypeSingleReview:
		required = workflow.SegmentReviewed1
	default:
		required = workflow.SegmentTranslated
	}

	segments, err := s.store.ListSegments(ctx, documentID)
	if err != nil {
		return Decision{}, err
	}
	if below := countBelowLevel(segments, workflow.Level(required)); below > 0 {
		return denied("%d segments have not reached %s", below, required), nil
	}

	if err := s.store.UpdateDocumentWorkflowStatus(ctx, documentID, string(workflow.StatusComplete)); err != nil {
		return Decision{}, err
	}
	s.cacheStatus(ctx, documentID, workflow.StatusComplete)
	log.Printf("app: document %s completed by %s", documentID, byUserID)
	return allowed(), nil
}

// ReopenDocument drops a complete document back to the stage matching its
// segments, capped below complete so work can actually resume.
func (s *Service) ReopenDocument(ctx context.Context, documentID string, isManager bool) (workflow.Status, Decision, error) {
	if !isManager {
		return "", denied("only managers may reopen a document"), nil
	}
	doc, project, err := s.documentContext(ctx, documentID)
	if err != nil {
		return "", Decision{}, err
	}

	segments, err := s.store.ListSegments(ctx, documentID)
	if err != nil {
		return "", Decision{}, err
	}
	next := workflow.StatusTranslation
	if len(segments) > 0 {
		next = workflow.CalculateStatus(minSegmentLevel(segments), workflow.Type(project.WorkflowType))
	}
	if next == workflow.StatusComplete {
		switch workflow.Type(project.WorkflowType) {
		case workflow.TypeFullReview:
			next = workflow.StatusReview2
		case workflow.TypeSingleReview:
			next = workflow.StatusReview1
		default:
			next = workflow.StatusTranslation
		}
	}

	if next != workflow.Status(doc.WorkflowStatus) {
		if err := s.store.UpdateDocumentWorkflowStatus(ctx, documentID, string(next)); err != nil {
			return "", Decision{}, err
		}
	}
	s.cacheStatus(ctx, documentID, next)
	return next, allowed(), nil
}
