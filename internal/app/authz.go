package app

import (
	"context"
	"net/http"

	"lingua/api/internal/store"
	"lingua/api/internal/workflow"
)

// Assign upserts the (document, role) row, replacing any existing assignee.
// Callers have already verified the actor is a manager; this engine only
// validates data integrity.
func (s *Service) Assign(ctx context.Context, documentID string, role workflow.Role, userID, assignedBy string) error {
	if !workflow.ValidRole(role) {
		return domainError(http.StatusBadRequest, "invalid_role", "unknown role "+string(role), nil)
	}
	if _, _, err := s.documentContext(ctx, documentID); err != nil {
		return err
	}
	if _, err := s.store.GetUser(ctx, userID); err != nil {
		if store.IsNotFound(err) {
			return domainError(http.StatusNotFound, "user_not_found", "user "+userID+" not found", nil)
		}
		return err
	}
	return s.store.UpsertAssignment(ctx, store.Assignment{
		DocumentID: documentID,
		Role:       string(role),
		UserID:     userID,
		AssignedBy: assignedBy,
	})
}

// Claim self-assigns a role through a conditional insert, so of two
// simultaneous claims exactly one wins and the loser gets a denial instead of
// a silent overwrite. Claiming a role already held by the caller succeeds.
func (s *Service) Claim(ctx context.Context, documentID string, role workflow.Role, userID string) (Decision, error) {
	if !workflow.ValidRole(role) {
		return Decision{}, domainError(http.StatusBadRequest, "invalid_role", "unknown role "+string(role), nil)
	}
	if _, _, err := s.documentContext(ctx, documentID); err != nil {
		return Decision{}, err
	}

	claimed, err := s.store.InsertAssignmentIfVacant(ctx, store.Assignment{
		DocumentID: documentID,
		Role:       string(role),
		UserID:     userID,
		AssignedBy: userID,
	})
	if err != nil {
		return Decision{}, err
	}
	if claimed {
		return allowed(), nil
	}

	current, err := s.store.GetAssignment(ctx, documentID, string(role))
	if err != nil && !store.IsNotFound(err) {
		return Decision{}, err
	}
	if err == nil && current.UserID == userID {
		return allowed(), nil
	}
	return denied("%s is already assigned on this document", role), nil
}

// Remove deletes the assignment row if present; removing an absent row is a
// no-op.
func (s *Service) Remove(ctx context.Context, documentID string, role workflow.Role) error {
	if !workflow.ValidRole(role) {
		return domainError(http.StatusBadRequest, "invalid_role", "unknown role "+string(role), nil)
	}
	return s.store.DeleteAssignment(ctx, documentID, string(role))
}

// CanEdit decides whether the user may edit segments of the document right
// now. Strict mode: when the active role has no assignee, nobody but managers
// may edit.
func (s *Service) CanEdit(ctx context.Context, documentID, userID string, status workflow.Status, isManager bool) (Decision, error) {
	if isManager {
		return allowed(), nil
	}
	if status == workflow.StatusComplete {
		return denied("document is complete; a manager must reopen it before editing"), nil
	}

	role, ok := workflow.ActiveRole(status)
	if !ok {
		return denied("invalid workflow status %q", status), nil
	}

	assignment, err := s.store.GetAssignment(ctx, documentID, string(role))
	if store.IsNotFound(err) {
		return denied("no %s is assigned to this document", role), nil
	}
	if err != nil {
		return Decision{}, err
	}
	if assignment.UserID == userID {
		return allowed(), nil
	}
	return denied("only the assigned %s may edit this document", role), nil
}

// AllowedStatuses lists the segment statuses the user may set at the given
// stage. Advisory metadata for field validation; CanEdit remains the gate.
func (s *Service) AllowedStatuses(status workflow.Status, isManager bool) []workflow.SegmentStatus {
	return workflow.AllowedStatuses(status, isManager)
}
