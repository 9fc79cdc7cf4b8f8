package app

import (
	"context"
	"net/http"

	"lingua/api/internal/store"
	"lingua/api/internal/workflow"
)

type AssignmentFilter string

const (
	FilterAll                  AssignmentFilter = "all"
	FilterAwaitingAction       AssignmentFilter = "awaiting_action"
	FilterAssignedToMe         AssignmentFilter = "assigned_to_me"
	FilterAssignedAsTranslator AssignmentFilter = "assigned_as_translator"
	FilterAssignedAsReviewer1  AssignmentFilter = "assigned_as_reviewer_1"
	FilterAssignedAsReviewer2  AssignmentFilter = "assigned_as_reviewer_2"
	FilterUnassigned           AssignmentFilter = "unassigned"
)

func validAssignmentFilter(filter AssignmentFilter) bool {
	switch filter {
	case FilterAll, FilterAwaitingAction, FilterAssignedToMe,
		FilterAssignedAsTranslator, FilterAssignedAsReviewer1, FilterAssignedAsReviewer2,
		FilterUnassigned:
		return true
	default:
		return false
	}
}

// FilterDocumentsByAssignment classifies documents against the viewer's
// relationship to their roles and returns the matching IDs in input order.
func (s *Service) FilterDocumentsByAssignment(ctx context.Context, documentIDs []string, viewerID string, filter AssignmentFilter) ([]string, error) {
	if !validAssignmentFilter(filter) {
		return nil, domainError(http.StatusBadRequest, "invalid_filter", "unknown assignment filter "+string(filter), nil)
	}

	assignmentsByDocument, err := s.store.ListAssignmentsForDocuments(ctx, documentIDs)
	if err != nil {
		return nil, err
	}

	projects := map[string]store.Project{}
	matched := make([]string, 0, len(documentIDs))
	for _, documentID := range documentIDs {
		doc, project, err := s.lookupDocumentAndProject(ctx, documentID, projects)
		if err != nil {
			return nil, err
		}
		if matchesAssignmentFilter(filter, viewerID, workflow.Status(doc.WorkflowStatus), workflow.Type(project.WorkflowType), assignmentsByDocument[documentID]) {
			matched = append(matched, documentID)
		}
	}
	return matched, nil
}

func (s *Service) lookupDocumentAndProject(ctx context.Context, documentID string, projects map[string]store.Project) (store.Document, store.Project, error) {
	doc, err := s.store.GetDocument(ctx, documentID)
	if store.IsNotFound(err) {
		return store.Document{}, store.Project{}, domainError(http.StatusNotFound, "document_not_found", "document "+documentID+" not found", nil)
	}
	if err != nil {
		return store.Document{}, store.Project{}, err
	}
	if project, ok := projects[doc.ProjectID]; ok {
		return doc, project, nil
	}
	project, err := s.store.GetProject(ctx, doc.ProjectID)
	if store.IsNotFound(err) {
		return store.Document{}, store.Project{}, domainError(http.StatusInternalServerError, "project_missing", "project "+doc.ProjectID+" missing for document "+documentID, nil)
	}
	if err != nil {
		return store.Document{}, store.Project{}, err
	}
	projects[doc.ProjectID] = project
	return doc, project, nil
}

// matchesAssignmentFilter is the pure classification rule. Role-specific
// filters respect the workflow type: an assignment row for a role the type
// does not staff is invisible.
func matchesAssignmentFilter(filter AssignmentFilter, viewerID string, status workflow.Status, typ workflow.Type, assignments []store.Assignment) bool {
	byRole := make(map[workflow.Role]string, len(assignments))
	for _, a := range assignments {
		byRole[workflow.Role(a.Role)] = a.UserID
	}

	switch filter {
	case FilterAll:
		return true
	case FilterAwaitingAction:
		role, ok := workflow.ActiveRole(status)
		return ok && byRole[role] == viewerID
	case FilterAssignedToMe:
		for _, role := range workflow.RequiredRoles(typ) {
			if byRole[role] == viewerID {
				return true
			}
		}
		return false
	case FilterAssignedAsTranslator:
		return roleHeldBy(typ, workflow.RoleTranslator, byRole, viewerID)
	case FilterAssignedAsReviewer1:
		return roleHeldBy(typ, workflow.RoleReviewer1, byRole, viewerID)
	case FilterAssignedAsReviewer2:
		return roleHeldBy(typ, workflow.RoleReviewer2, byRole, viewerID)
	case FilterUnassigned:
		for _, role := range workflow.RequiredRoles(typ) {
			if _, assigned := byRole[role]; !assigned {
				return true
			}
		}
		return false
	default:
		return false
	}
}

func roleHeldBy(typ workflow.Type, role workflow.Role, byRole map[workflow.Role]string, viewerID string) bool {
	return workflow.RoleRequired(typ, role) && byRole[role] == viewerID
}
