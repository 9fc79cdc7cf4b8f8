package app

import (
	"context"
	"strings"
	"testing"

	"lingua/api/internal/store"
	"lingua/api/internal/workflow"
)

func TestCalculateEmptyDocumentIsTranslation(t *testing.T) {
	fs := &fakeStore{
		listSegmentsFn: func(context.Context, string) ([]store.Segment, error) {
			return []store.Segment{}, nil
		},
	}
	svc := newTestService(fs)

	for _, typ := range []workflow.Type{workflow.TypeSimple, workflow.TypeSingleReview, workflow.TypeFullReview} {
		status, err := svc.Calculate(context.Background(), "doc-1", typ)
		if err != nil {
			t.Fatalf("Calculate() error = %v", err)
		}
		if status != workflow.StatusTranslation {
			t.Fatalf("empty document under %q = %q, want translation", typ, status)
		}
	}
}

func TestCalculateNeverReview2OutsideFullReview(t *testing.T) {
	fs := &fakeStore{
		listSegmentsFn: func(context.Context, string) ([]store.Segment, error) {
			return []store.Segment{
				seg("s1", 0, "a", "x", "locked"),
				seg("s2", 1, "b", "y", "locked"),
			}, nil
		},
	}
	svc := newTestService(fs)

	status, err := svc.Calculate(context.Background(), "doc-1", workflow.TypeSingleReview)
	if err != nil {
		t.Fatalf("Calculate() error = %v", err)
	}
	if status == workflow.StatusReview2 {
		t.Fatal("single_review document reached review_2")
	}
	if status != workflow.StatusComplete {
		t.Fatalf("all-locked single_review document = %q, want complete", status)
	}

	status, err = svc.Calculate(context.Background(), "doc-1", workflow.TypeSimple)
	if err != nil {
		t.Fatalf("Calculate() error = %v", err)
	}
	if status != workflow.StatusTranslation {
		t.Fatalf("all-locked simple document = %q, want translation", status)
	}
}

func TestRefreshPersistsOnlyOnChange(t *testing.T) {
	updates := 0
	fs := &fakeStore{
		getDocumentFn: func(_ context.Context, documentID string) (store.Document, error) {
			return store.Document{ID: documentID, ProjectID: "proj-1", WorkflowStatus: "translation"}, nil
		},
		listSegmentsFn: func(context.Context, string) ([]store.Segment, error) {
			return []store.Segment{
				seg("s1", 0, "a", "x", "translated"),
				seg("s2", 1, "b", "y", "reviewed_1"),
			}, nil
		},
		updateDocumentWorkflowFn: func(_ context.Context, documentID, status string) error {
			updates++
			if status != "review_1" {
				t.Fatalf("expected persist of review_1, got %q", status)
			}
			return nil
		},
	}
	svc := newTestService(fs)

	status, err := svc.Refresh(context.Background(), "doc-1")
	if err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}
	if status != workflow.StatusReview1 {
		t.Fatalf("Refresh() = %q, want review_1", status)
	}
	if updates != 1 {
		t.Fatalf("expected 1 persist, got %d", updates)
	}
}

func TestRefreshSkipsPersistWhenUnchanged(t *testing.T) {
	fs := &fakeStore{
		getDocumentFn: func(_ context.Context, documentID string) (store.Document, error) {
			return store.Document{ID: documentID, ProjectID: "proj-1", WorkflowStatus: "review_1"}, nil
		},
		listSegmentsFn: func(context.Context, string) ([]store.Segment, error) {
			return []store.Segment{
				seg("s1", 0, "a", "x", "reviewed_1"),
				seg("s2", 1, "b", "y", "reviewed_1"),
			}, nil
		},
		updateDocumentWorkflowFn: func(context.Context, string, string) error {
			t.Fatal("persist should not happen when the status is unchanged")
			return nil
		},
	}
	svc := newTestService(fs)

	// single_review has no review_2, so min level 3 stays review_1.
	status, err := svc.Refresh(context.Background(), "doc-1")
	if err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}
	if status != workflow.StatusReview1 {
		t.Fatalf("Refresh() = %q, want review_1", status)
	}
}

func TestCanAdvanceTo(t *testing.T) {
	segments := []store.Segment{
		seg("s1", 0, "a", "x", "translated"),
		seg("s2", 1, "b", "", "untranslated"),
		seg("s3", 2, "c", "", "draft"),
	}
	fs := &fakeStore{
		listSegmentsFn: func(context.Context, string) ([]store.Segment, error) {
			return segments, nil
		},
	}
	svc := newTestService(fs)
	ctx := context.Background()

	cases := []struct {
		name         string
		target       workflow.Status
		typ          workflow.Type
		allow        bool
		reasonSubstr string
	}{
		{name: "review_1 blocked by unfinished segments", target: workflow.StatusReview1, typ: workflow.TypeSingleReview, allow: false, reasonSubstr: "2 segments"},
		{name: "review_1 denied on simple", target: workflow.StatusReview1, typ: workflow.TypeSimple, allow: false, reasonSubstr: "no review stages"},
		{name: "review_2 denied outside full_review", target: workflow.StatusReview2, typ: workflow.TypeSingleReview, allow: false, reasonSubstr: "full_review"},
		{name: "translation always allowed", target: workflow.StatusTranslation, typ: workflow.TypeFullReview, allow: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			decision, err := svc.CanAdvanceTo(ctx, "doc-1", tc.target, tc.typ)
			if err != nil {
				t.Fatalf("CanAdvanceTo() error = %v", err)
			}
			if decision.Allowed != tc.allow {
				t.Fatalf("CanAdvanceTo(%q) allowed = %v, want %v (reason %q)", tc.target, decision.Allowed, tc.allow, decision.Reason)
			}
			if tc.reasonSubstr != "" && !strings.Contains(decision.Reason, tc.reasonSubstr) {
				t.Fatalf("reason %q does not mention %q", decision.Reason, tc.reasonSubstr)
			}
		})
	}

	segments = []store.Segment{
		seg("s1", 0, "a", "x", "translated"),
		seg("s2", 1, "b", "y", "reviewed_2"),
	}
	decision, err := svc.CanAdvanceTo(ctx, "doc-1", workflow.StatusReview1, workflow.TypeSingleReview)
	if err != nil {
		t.Fatalf("CanAdvanceTo() error = %v", err)
	}
	if !decision.Allowed {
		t.Fatalf("expected advance allowed once every segment reached translated, got %q", decision.Reason)
	}
}

func TestCompleteDocument(t *testing.T) {
	persisted := ""
	fs := &fakeStore{
		getProjectFn: func(_ context.Context, projectID string) (store.Project, error) {
			return store.Project{ID: projectID, WorkflowType: "simple", Status: "active"}, nil
		},
		listSegmentsFn: func(context.Context, string) ([]store.Segment, error) {
			return []store.Segment{
				seg("s1", 0, "a", "x", "translated"),
				seg("s2", 1, "b", "y", "translated"),
			}, nil
		},
		updateDocumentWorkflowFn: func(_ context.Context, _, status string) error {
			persisted = status
			return nil
		},
	}
	svc := newTestService(fs)
	ctx := context.Background()

	decision, err := svc.CompleteDocument(ctx, "doc-1", "u1", false)
	if err != nil {
		t.Fatalf("CompleteDocument() error = %v", err)
	}
	if decision.Allowed {
		t.Fatal("non-manager should not complete a document")
	}

	decision, err = svc.CompleteDocument(ctx, "doc-1", "mgr", true)
	if err != nil {
		t.Fatalf("CompleteDocument() error = %v", err)
	}
	if !decision.Allowed {
		t.Fatalf("manager completion denied: %q", decision.Reason)
	}
	if persisted != "complete" {
		t.Fatalf("expected persist of complete, got %q", persisted)
	}
}

func TestCompleteDocumentBlockedByUnfinishedSegments(t *testing.T) {
	fs := &fakeStore{
		getProjectFn: func(_ context.Context, projectID string) (store.Project, error) {
			return store.Project{ID: projectID, WorkflowType: "simple", Status: "active"}, nil
		},
		listSegmentsFn: func(context.Context, string) ([]store.Segment, error) {
			return []store.Segment{
				seg("s1", 0, "a", "x", "translated"),
				seg("s2", 1, "b", "", "draft"),
			}, nil
		},
		updateDocumentWorkflowFn: func(context.Context, string, string) error {
			t.Fatal("status must not be persisted when segments are unfinished")
			return nil
		},
	}
	svc := newTestService(fs)

	decision, err := svc.CompleteDocument(context.Background(), "doc-1", "mgr", true)
	if err != nil {
		t.Fatalf("CompleteDocument() error = %v", err)
	}
	if decision.Allowed {
		t.Fatal("completion should be denied while segments are below translated")
	}
	if !strings.Contains(decision.Reason, "1 segments") {
		t.Fatalf("reason should carry the below-threshold count, got %q", decision.Reason)
	}
}

func TestReopenDocumentCapsBelowComplete(t *testing.T) {
	persisted := ""
	fs := &fakeStore{
		getDocumentFn: func(_ context.Context, documentID string) (store.Document, error) {
			return store.Document{ID: documentID, ProjectID: "proj-1", WorkflowStatus: "complete"}, nil
		},
		getProjectFn: func(_ context.Context, projectID string) (store.Project, error) {
			return store.Project{ID: projectID, WorkflowType: "full_review", Status: "active"}, nil
		},
		listSegmentsFn: func(context.Context, string) ([]store.Segment, error) {
			return []store.Segment{
				seg("s1", 0, "a", "x", "reviewed_2"),
				seg("s2", 1, "b", "y", "reviewed_2"),
			}, nil
		},
		updateDocumentWorkflowFn: func(_ context.Context, _, status string) error {
			persisted = status
			return nil
		},
	}
	svc := newTestService(fs)

	if _, decision, err := svc.ReopenDocument(context.Background(), "doc-1", false); err != nil || decision.Allowed {
		t.Fatalf("non-manager reopen: decision=%v err=%v", decision, err)
	}

	status, decision, err := svc.ReopenDocument(context.Background(), "doc-1", true)
	if err != nil {
		t.Fatalf("ReopenDocument() error = %v", err)
	}
	if !decision.Allowed {
		t.Fatalf("manager reopen denied: %q", decision.Reason)
	}
	if status != workflow.StatusReview2 || persisted != "review_2" {
		t.Fatalf("expected reopen to review_2, got status=%q persisted=%q", status, persisted)
	}
}
