// Package workflow holds the shared lookup tables for segment statuses,
// workflow stages, and roles. Every other package compares statuses through
// Level and derives roles through these functions, so the calculator and the
// authorization engine cannot drift apart.
package workflow

type SegmentStatus string
type Status string
type Type string
type Role string

const (
	SegmentUntranslated SegmentStatus = "untranslated"
	SegmentDraft        SegmentStatus = "draft"
	SegmentTranslated   SegmentStatus = "translated"
	SegmentReviewed1    SegmentStatus = "reviewed_1"
	SegmentReviewed2    SegmentStatus = "reviewed_2"
	SegmentLocked       SegmentStatus = "locked"
)

const (
	StatusTranslation Status = "translation"
	StatusReview1     Status = "review_1"
	StatusReview2     Status = "review_2"
	StatusComplete    Status = "complete"
)

const (
	TypeSimple       Type = "simple"
	TypeSingleReview Type = "single_review"
	TypeFullReview   Type = "full_review"
)

const (
	RoleTranslator Role = "translator"
	RoleReviewer1  Role = "reviewer_1"
	RoleReviewer2  Role = "reviewer_2"
)

// Level maps a segment status onto the completion order. An empty or unknown
// status counts as untranslated.
func Level(status SegmentStatus) int {
	switch status {
	case SegmentDraft:
		return 1
	case SegmentTranslated:
		return 2
	case SegmentReviewed1:
		return 3
	case SegmentReviewed2:
		return 4
	case SegmentLocked:
		return 5
	default:
		return 0
	}
}

// ValidSegmentStatus reports whether status names one of the six states.
func ValidSegmentStatus(status SegmentStatus) bool {
	switch status {
	case SegmentUntranslated, SegmentDraft, SegmentTranslated, SegmentReviewed1, SegmentReviewed2, SegmentLocked:
		return true
	default:
		return false
	}
}

// ValidRole reports whether role names a known document role.
func ValidRole(role Role) bool {
	switch role {
	case RoleTranslator, RoleReviewer1, RoleReviewer2:
		return true
	default:
		return false
	}
}

// ActiveRole returns the role allowed to edit a document in the given stage.
// Complete documents have no active role.
func ActiveRole(status Status) (Role, bool) {
	switch status {
	case StatusTranslation:
		return RoleTranslator, true
	case StatusReview1:
		return RoleReviewer1, true
	case StatusReview2:
		return RoleReviewer2, true
	default:
		return "", false
	}
}

// RequiredRoles lists the roles a workflow type staffs, in stage order.
func RequiredRoles(t Type) []Role {
	switch t {
	case TypeSingleReview:
		return []Role{RoleTranslator, RoleReviewer1}
	case TypeFullReview:
		return []Role{RoleTranslator, RoleReviewer1, RoleReviewer2}
	default:
		return []Role{RoleTranslator}
	}
}

// RoleRequired reports whether the workflow type staffs the given role.
func RoleRequired(t Type, role Role) bool {
	for _, required := range RequiredRoles(t) {
		if required == role {
			return true
		}
	}
	return false
}

// CalculateStatus derives a document stage from the minimum segment level.
// Stages are checked most-advanced first; simple documents never auto-advance
// past translation, and review_2 exists only under full_review.
func CalculateStatus(minLevel int, t Type) Status {
	if t != TypeSimple && minLevel >= Level(SegmentReviewed2) {
		return StatusComplete
	}
	if t == TypeFullReview && minLevel >= Level(SegmentReviewed1) {
		return StatusReview2
	}
	if t != TypeSimple && minLevel >= Level(SegmentTranslated) {
		return StatusReview1
	}
	return StatusTranslation
}

// AllowedStatuses lists the segment statuses a user may set at the given
// stage. Managers may set any status at any stage; for everyone else the set
// is scoped to the work of the current stage. Complete documents accept no
// regular-user writes. The result is validation metadata for segment writes,
// not an edit gate; CanEdit decides whether editing happens at all.
func AllowedStatuses(status Status, isManager bool) []SegmentStatus {
	if isManager {
		return []SegmentStatus{SegmentUntranslated, SegmentDraft, SegmentTranslated, SegmentReviewed1, SegmentReviewed2, SegmentLocked}
	}
	switch status {
	case StatusTranslation:
		return []SegmentStatus{SegmentUntranslated, SegmentDraft, SegmentTranslated}
	case StatusReview1:
		return []SegmentStatus{SegmentTranslated, SegmentReviewed1}
	case StatusReview2:
		return []SegmentStatus{SegmentReviewed1, SegmentReviewed2}
	default:
		return nil
	}
}

// StatusAllowed reports whether target is in AllowedStatuses for the stage.
func StatusAllowed(status Status, target SegmentStatus, isManager bool) bool {
	for _, allowed := range AllowedStatuses(status, isManager) {
		if allowed == target {
			return true
		}
	}
	return false
}
