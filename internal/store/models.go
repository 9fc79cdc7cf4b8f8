package store

import "time"

type User struct {
	ID          string
	DisplayName string
	Email       string
	IsManager   bool
	CreatedAt   time.Time
}

type Project struct {
	ID             string
	OrganizationID string
	Name           string
	SourceLanguage string
	TargetLanguage string
	WorkflowType   string
	Status         string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

type Document struct {
	ID             string
	ProjectID      string
	Name           string
	WorkflowStatus string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

type Segment struct {
	ID             string
	DocumentID     string
	SegmentIndex   int
	SourceText     string
	TargetText     *string
	Status         string
	TranslatedBy   *string
	TranslatedAt   *time.Time
	ReviewedBy     *string
	ReviewedAt     *time.Time
	LastModifiedBy *string
	UpdatedAt      time.Time
}

// Assignment holds at most one user per (document, role); the table's primary
// key is that pair.
type Assignment struct {
	DocumentID string
	Role       string
	UserID     string
	AssignedBy string
	AssignedAt time.Time
}

// SegmentWrite is a single-row segment content update. The TranslatedBy and
// ReviewedBy audit columns are stamped only when the matching Mark flag is
// set, so review writes do not clobber translation provenance.
type SegmentWrite struct {
	TargetText     string
	Status         string
	ModifiedBy     string
	MarkTranslated bool
	MarkReviewed   bool
}
