package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) DB() *sql.DB {
	return s.db
}

func (s *PostgresStore) GetUser(ctx context.Context, userID string) (User, error) {
	var user User
	err := s.db.QueryRowContext(ctx, `
		SELECT id, display_name, email, is_manager, created_at
		FROM users
		WHERE id=$1
	`, userID).Scan(&user.ID, &user.DisplayName, &user.Email, &user.IsManager, &user.CreatedAt)
	if err != nil {
		return User{}, err
	}
	return user, nil
}

func (s *PostgresStore) GetProject(ctx context.Context, projectID string) (Project, error) {
	var item Project
	err := s.db.QueryRowContext(ctx, `
		SELECT id, organization_id, name, source_language, target_language, workflow_type, status, created_at, updated_at
		FROM projects
		WHERE id=$1
	`, projectID).Scan(&item.ID, &item.OrganizationID, &item.Name, &item.SourceLanguage, &item.TargetLanguage, &item.WorkflowType, &item.Status, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return Project{}, err
	}
	return item, nil
}

func (s *PostgresStore) GetDocument(ctx context.Context, documentID string) (Document, error) {
	var item Document
	err := s.db.QueryRowContext(ctx, `
		SELECT id, project_id, name, workflow_status, created_at, updated_at
		FROM documents
		WHERE id=$1
	`, documentID).Scan(&item.ID, &item.ProjectID, &item.Name, &item.WorkflowStatus, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return Document{}, err
	}
	return item, nil
}

func (s *PostgresStore) ListDocuments(ctx context.Context, projectID string) ([]Document, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, project_id, name, workflow_status, created_at, updated_at
		FROM documents
		WHERE project_id=$1
		ORDER BY created_at
	`, projectID)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	items := make([]Document, 0)
	for rows.Next() {
		var item Document
		if err := rows.Scan(&item.ID, &item.ProjectID, &item.Name, &item.WorkflowStatus, &item.CreatedAt, &item.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate documents: %w", err)
	}
	return items, nil
}

func (s *PostgresStore) UpdateDocumentWorkflowStatus(ctx context.Context, documentID, status string) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE documents SET workflow_status=$2, updated_at=NOW() WHERE id=$1
	`, documentID, status)
	if err != nil {
		return fmt.Errorf("update document workflow status: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetSegment(ctx context.Context, segmentID string) (Segment, error) {
	var item Segment
	err := s.db.QueryRowContext(ctx, `
		SELECT id, document_id, segment_index, source_text, target_text, status,
		       translated_by, translated_at, reviewed_by, reviewed_at, last_modified_by, updated_at
		FROM segments
		WHERE id=$1
	`, segmentID).Scan(&item.ID, &item.DocumentID, &item.SegmentIndex, &item.SourceText, &item.TargetText, &item.Status,
		&item.TranslatedBy, &item.TranslatedAt, &item.ReviewedBy, &item.ReviewedAt, &item.LastModifiedBy, &item.UpdatedAt)
	if err != nil {
		return Segment{}, err
	}
	return item, nil
}

func (s *PostgresStore) ListSegments(ctx context.Context, documentID string) ([]Segment, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, document_id, segment_index, source_text, target_text, status,
		       translated_by, translated_at, reviewed_by, reviewed_at, last_modified_by, updated_at
		FROM segments
		WHERE document_id=$1
		ORDER BY segment_index
	`, documentID)
	if err != nil {
		return nil, fmt.Errorf("list segments: %w", err)
	}
	defer rows.Close()

	items := make([]Segment, 0)
	for rows.Next() {
		var item Segment
		if err := rows.Scan(&item.ID, &item.DocumentID, &item.SegmentIndex, &item.SourceText, &item.TargetText, &item.Status,
			&item.TranslatedBy, &item.TranslatedAt, &item.ReviewedBy, &item.ReviewedAt, &item.LastModifiedBy, &item.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan segment: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate segments: %w", err)
	}
	return items, nil
}

func (s *PostgresStore) UpdateSegmentContent(ctx context.Context, segmentID string, write SegmentWrite) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE segments SET
			target_text=$2,
			status=$3,
			last_modified_by=$4,
			translated_by=CASE WHEN $5 THEN $4 ELSE translated_by END,
			translated_at=CASE WHEN $5 THEN NOW() ELSE translated_at END,
			reviewed_by=CASE WHEN $6 THEN $4 ELSE reviewed_by END,
			reviewed_at=CASE WHEN $6 THEN NOW() ELSE reviewed_at END,
			updated_at=NOW()
		WHERE id=$1
	`, segmentID, write.TargetText, write.Status, write.ModifiedBy, write.MarkTranslated, write.MarkReviewed)
	if err != nil {
		return fmt.Errorf("update segment %s: %w", segmentID, err)
	}
	return nil
}

func (s *PostgresStore) UpsertAssignment(ctx context.Context, item Assignment) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO assignments (document_id, role, user_id, assigned_by)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (document_id, role) DO UPDATE
			SET user_id=EXCLUDED.user_id, assigned_by=EXCLUDED.assigned_by, assigned_at=NOW()
	`, item.DocumentID, item.Role, item.UserID, item.AssignedBy)
	if err != nil {
		return fmt.Errorf("upsert assignment: %w", err)
	}
	return nil
}

// InsertAssignmentIfVacant claims a (document, role) pair only when no row
// exists, so concurrent claims race at the database rather than silently
// overwriting each other. Returns false when the role is already held.
func (s *PostgresStore) InsertAssignmentIfVacant(ctx context.Context, item Assignment) (bool, error) {
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO assignments (document_id, role, user_id, assigned_by)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (document_id, role) DO NOTHING
	`, item.DocumentID, item.Role, item.UserID, item.AssignedBy)
	if err != nil {
		return false, fmt.Errorf("claim assignment: %w", err)
	}
	inserted, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("claim assignment result: %w", err)
	}
	return inserted > 0, nil
}

func (s *PostgresStore) DeleteAssignment(ctx context.Context, documentID, role string) error {
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM assignments WHERE document_id=$1 AND role=$2
	`, documentID, role)
	if err != nil {
		return fmt.Errorf("delete assignment: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetAssignment(ctx context.Context, documentID, role string) (Assignment, error) {
	var item Assignment
	err := s.db.QueryRowContext(ctx, `
		SELECT document_id, role, user_id, assigned_by, assigned_at
		FROM assignments
		WHERE document_id=$1 AND role=$2
	`, documentID, role).Scan(&item.DocumentID, &item.Role, &item.UserID, &item.AssignedBy, &item.AssignedAt)
	if err != nil {
		return Assignment{}, err
	}
	return item, nil
}

func (s *PostgresStore) ListAssignments(ctx context.Context, documentID string) ([]Assignment, error) {
	return s.listAssignments(ctx, `
		SELECT document_id, role, user_id, assigned_by, assigned_at
		FROM assignments
		WHERE document_id=$1
	`, documentID)
}

// ListAssignmentsForDocuments bulk-loads assignments for the filter so list
// views issue one query instead of one per document.
func (s *PostgresStore) ListAssignmentsForDocuments(ctx context.Context, documentIDs []string) (map[string][]Assignment, error) {
	if len(documentIDs) == 0 {
		return map[string][]Assignment{}, nil
	}
	items, err := s.listAssignments(ctx, `
		SELECT document_id, role, user_id, assigned_by, assigned_at
		FROM assignments
		WHERE document_id = ANY($1)
	`, documentIDs)
	if err != nil {
		return nil, err
	}
	byDocument := make(map[string][]Assignment, len(documentIDs))
	for _, item := range items {
		byDocument[item.DocumentID] = append(byDocument[item.DocumentID], item)
	}
	return byDocument, nil
}

func (s *PostgresStore) listAssignments(ctx context.Context, query string, arg any) ([]Assignment, error) {
	rows, err := s.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("list assignments: %w", err)
	}
	defer rows.Close()

	items := make([]Assignment, 0)
	for rows.Next() {
		var item Assignment
		if err := rows.Scan(&item.DocumentID, &item.Role, &item.UserID, &item.AssignedBy, &item.AssignedAt); err != nil {
			return nil, fmt.Errorf("scan assignment: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate assignments: %w", err)
	}
	return items, nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// IsNotFound reports whether err is the store's row-missing sentinel.
func IsNotFound(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
