package app

import (
	"context"
	"database/sql"

	"lingua/api/internal/config"
	"lingua/api/internal/memory"
	"lingua/api/internal/store"
)

type fakeStore struct {
	getUserFn                     func(context.Context, string) (store.User, error)
	getProjectFn                  func(context.Context, string) (store.Project, error)
	getDocumentFn                 func(context.Context, string) (store.Document, error)
	listDocumentsFn               func(context.Context, string) ([]store.Document, error)
	updateDocumentWorkflowFn      func(context.Context, string, string) error
	getSegmentFn                  func(context.Context, string) (store.Segment, error)
	listSegmentsFn                func(context.Context, string) ([]store.Segment, error)
	updateSegmentContentFn        func(context.Context, string, store.SegmentWrite) error
	upsertAssignmentFn            func(context.Context, store.Assignment) error
	insertAssignmentIfVacantFn    func(context.Context, store.Assignment) (bool, error)
	deleteAssignmentFn            func(context.Context, string, string) error
	getAssignmentFn               func(context.Context, string, string) (store.Assignment, error)
	listAssignmentsFn             func(context.Context, string) ([]store.Assignment, error)
	listAssignmentsForDocumentsFn func(context.Context, []string) (map[string][]store.Assignment, error)
}

func (f *fakeStore) GetUser(ctx context.Context, userID string) (store.User, error) {
	if f.getUserFn != nil {
		return f.getUserFn(ctx, userID)
	}
	return store.User{ID: userID, DisplayName: "User"}, nil
}

func (f *fakeStore) GetProject(ctx context.Context, projectID string) (store.Project, error) {
	if f.getProjectFn != nil {
		return f.getProjectFn(ctx, projectID)
	}
	return store.Project{ID: projectID, WorkflowType: "single_review", Status: "active"}, nil
}

func (f *fakeStore) GetDocument(ctx context.Context, documentID string) (store.Document, error) {
	if f.getDocumentFn != nil {
		return f.getDocumentFn(ctx, documentID)
	}
	return store.Document{ID: documentID, ProjectID: "proj-1", Name: "Doc", WorkflowStatus: "translation"}, nil
}

func (f *fakeStore) ListDocuments(ctx context.Context, projectID string) ([]store.Document, error) {
	if f.listDocumentsFn != nil {
		return f.listDocumentsFn(ctx, projectID)
	}
	return nil, nil
}

func (f *fakeStore) UpdateDocumentWorkflowStatus(ctx context.Context, documentID, status string) error {
	if f.updateDocumentWorkflowFn != nil {
		return f.updateDocumentWorkflowFn(ctx, documentID, status)
	}
	return nil
}

func (f *fakeStore) GetSegment(ctx context.Context, segmentID string) (store.Segment, error) {
	if f.getSegmentFn != nil {
		return f.getSegmentFn(ctx, segmentID)
	}
	return store.Segment{}, sql.ErrNoRows
}

func (f *fakeStore) ListSegments(ctx context.Context, documentID string) ([]store.Segment, error) {
	if f.listSegmentsFn != nil {
		return f.listSegmentsFn(ctx, documentID)
	}
	return nil, nil
}

func (f *fakeStore) UpdateSegmentContent(ctx context.Context, segmentID string, write store.SegmentWrite) error {
	if f.updateSegmentContentFn != nil {
		return f.updateSegmentContentFn(ctx, segmentID, write)
	}
	return nil
}

func (f *fakeStore) UpsertAssignment(ctx context.Context, item store.Assignment) error {
	if f.upsertAssignmentFn != nil {
		return f.upsertAssignmentFn(ctx, item)
	}
	return nil
}

func (f *fakeStore) InsertAssignmentIfVacant(ctx context.Context, item store.Assignment) (bool, error) {
	if f.insertAssignmentIfVacantFn != nil {
		return f.insertAssignmentIfVacantFn(ctx, item)
	}
	return true, nil
}

func (f *fakeStore) DeleteAssignment(ctx context.Context, documentID, role string) error {
	if f.deleteAssignmentFn != nil {
		return f.deleteAssignmentFn(ctx, documentID, role)
	}
	return nil
}

func (f *fakeStore) GetAssignment(ctx context.Context, documentID, role string) (store.Assignment, error) {
	if f.getAssignmentFn != nil {
		return f.getAssignmentFn(ctx, documentID, role)
	}
	return store.Assignment{}, sql.ErrNoRows
}

func (f *fakeStore) ListAssignments(ctx context.Context, documentID string) ([]store.Assignment, error) {
	if f.listAssignmentsFn != nil {
		return f.listAssignmentsFn(ctx, documentID)
	}
	return nil, nil
}

func (f *fakeStore) ListAssignmentsForDocuments(ctx context.Context, documentIDs []string) (map[string][]store.Assignment, error) {
	if f.listAssignmentsForDocumentsFn != nil {
		return f.listAssignmentsForDocumentsFn(ctx, documentIDs)
	}
	return map[string][]store.Assignment{}, nil
}

func (f *fakeStore) Ping(context.Context) error { return nil }

type fakeMatcher struct {
	findMatchesFn func(context.Context, memory.Query) ([]memory.Match, error)
}

func (f *fakeMatcher) FindMatches(ctx context.Context, q memory.Query) ([]memory.Match, error) {
	if f.findMatchesFn != nil {
		return f.findMatchesFn(ctx, q)
	}
	return nil, nil
}

func newTestService(fs *fakeStore) *Service {
	return &Service{cfg: config.Config{}, store: fs}
}

func newTestServiceWithMatcher(fs *fakeStore, fm *fakeMatcher) *Service {
	return &Service{cfg: config.Config{}, store: fs, matcher: fm}
}

func seg(id string, index int, sourceText, targetText, status string) store.Segment {
	item := store.Segment{
		ID:           id,
		DocumentID:   "doc-1",
		SegmentIndex: index,
		SourceText:   sourceText,
		Status:       status,
	}
	if targetText != "" {
		item.TargetText = &targetText
	}
	return item
}
