package app

import (
	"context"
	"log"
	"net/http"

	"lingua/api/internal/config"
	"lingua/api/internal/export"
	"lingua/api/internal/memory"
	"lingua/api/internal/statuscache"
	"lingua/api/internal/store"
	"lingua/api/internal/workflow"
)

type dataStore interface {
	GetUser(context.Context, string) (store.User, error)
	GetProject(context.Context, string) (store.Project, error)
	GetDocument(context.Context, string) (store.Document, error)
	ListDocuments(context.Context, string) ([]store.Document, error)
	UpdateDocumentWorkflowStatus(context.Context, string, string) error
	GetSegment(context.Context, string) (store.Segment, error)
	ListSegments(context.Context, string) ([]store.Segment, error)
	UpdateSegmentContent(context.Context, string, store.SegmentWrite) error
	UpsertAssignment(context.Context, store.Assignment) error
	InsertAssignmentIfVacant(context.Context, store.Assignment) (bool, error)
	DeleteAssignment(context.Context, string, string) error
	GetAssignment(context.Context, string, string) (store.Assignment, error)
	ListAssignments(context.Context, string) ([]store.Assignment, error)
	ListAssignmentsForDocuments(context.Context, []string) (map[string][]store.Assignment, error)
	Ping(ctx context.Context) error
}

type statusCache interface {
	Get(ctx context.Context, documentID string) (workflow.Status, bool)
	Set(ctx context.Context, documentID string, status workflow.Status) error
}

type Service struct {
	cfg      config.Config
	store    dataStore
	matcher  memory.Matcher
	statuses statusCache
}

func New(cfg config.Config, dataStore *store.PostgresStore, matcher memory.Matcher) *Service {
	return &Service{
		cfg:     cfg,
		store:   dataStore,
		matcher: matcher,
	}
}

func NewWithStatusCache(cfg config.Config, dataStore *store.PostgresStore, matcher memory.Matcher, statuses *statuscache.Cache) *Service {
	return &Service{
		cfg:      cfg,
		store:    dataStore,
		matcher:  matcher,
		statuses: statuses,
	}
}

// documentContext loads a document and its owning project. A missing record
// is corrupted state, not a policy outcome.
func (s *Service) documentContext(ctx context.Context, documentID string) (store.Document, store.Project, error) {
	doc, err := s.store.GetDocument(ctx, documentID)
	if store.IsNotFound(err) {
		return store.Document{}, store.Project{}, domainError(http.StatusNotFound, "document_not_found", "document "+documentID+" not found", nil)
	}
	if err != nil {
		return store.Document{}, store.Project{}, err
	}
	project, err := s.store.GetProject(ctx, doc.ProjectID)
	if store.IsNotFound(err) {
		return store.Document{}, store.Project{}, domainError(http.StatusInternalServerError, "project_missing", "project "+doc.ProjectID+" missing for document "+documentID, nil)
	}
	if err != nil {
		return store.Document{}, store.Project{}, err
	}
	return doc, project, nil
}

// DocumentStatus returns the materialized stage for list views, consulting
// the cache first. Authorization paths read the stored value instead.
func (s *Service) DocumentStatus(ctx context.Context, documentID string) (workflow.Status, error) {
	if s.statuses != nil {
		if status, ok := s.statuses.Get(ctx, documentID); ok {
			return status, nil
		}
	}
	doc, err := s.store.GetDocument(ctx, documentID)
	if store.IsNotFound(err) {
		return "", domainError(http.StatusNotFound, "document_not_found", "document "+documentID+" not found", nil)
	}
	if err != nil {
		return "", err
	}
	status := workflow.Status(doc.WorkflowStatus)
	s.cacheStatus(ctx, documentID, status)
	return status, nil
}

func (s *Service) cacheStatus(ctx context.Context, documentID string, status workflow.Status) {
	if s.statuses == nil {
		return
	}
	if err := s.statuses.Set(ctx, documentID, status); err != nil {
		log.Printf("app: cache workflow status for %s: %v", documentID, err)
	}
}

// ExportDocument renders the document's segments as bilingual CSV.
func (s *Service) ExportDocument(ctx context.Context, documentID string) ([]byte, error) {
	if _, _, err := s.documentContext(ctx, documentID); err != nil {
		return nil, err
	}
	segments, err := s.store.ListSegments(ctx, documentID)
	if err != nil {
		return nil, err
	}
	rows := make([]export.Row, 0, len(segments))
	for _, seg := range segments {
		target := ""
		if seg.TargetText != nil {
			target = *seg.TargetText
		}
		rows = append(rows, export.Row{
			Index:  seg.SegmentIndex,
			Source: seg.SourceText,
			Target: target,
			Status: seg.Status,
		})
	}
	return export.CSV(rows)
}

func (s *Service) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

func minSegmentLevel(segments []store.Segment) int {
	min := workflow.Level(workflow.SegmentLocked)
	for _, seg := range segments {
		if level := workflow.Level(workflow.SegmentStatus(seg.Status)); level < min {
			min = level
		}
	}
	return min
}

func countBelowLevel(segments []store.Segment, level int) int {
	count := 0
	for _, seg := range segments {
		if workflow.Level(workflow.SegmentStatus(seg.Status)) < level {
			count++
		}
	}
	return count
}
