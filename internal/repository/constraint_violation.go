package repository

import (
	"errors"
	"strings"

	"github.com/lib/pq"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/betosaco/soulpath-sub003/internal/models"
	appErrors "github.com/betosaco/soulpath-sub003/pkg/errors"
)

const (
	pqUniqueViolation    = pq.ErrorCode("23505")
	pqExclusionViolation = pq.ErrorCode("23P01")
)

// Slot constraints declared in migrations/0001_schedule_tables.up.sql. Primary
// key collisions are not slot conflicts and are left unmapped.
var (
	exactSlotConstraints = map[string]struct{}{
		"teacher_schedules_exact_unique": {},
		"venue_schedules_exact_unique":   {},
	}
	overlapSlotConstraints = map[string]struct{}{
		"teacher_schedules_no_overlap": {},
		"venue_schedules_no_overlap":   {},
	}
)

// ConstraintViolation is attached to a SCHEDULE_CONFLICT error raised by storage.
type ConstraintViolation struct {
	Kind       models.ConflictKind `json:"type"`
	Severity   models.Severity     `json:"severity"`
	Constraint string              `json:"constraint,omitempty"`
}

// MapConstraintViolation converts a uniqueness or exclusion failure from a
// schedule write into a 409 SCHEDULE_CONFLICT error. Other errors are returned unchanged.
func MapConstraintViolation(err error) error {
	if err == nil {
		return nil
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		if _, ok := exactSlotConstraints[pqErr.Constraint]; ok && pqErr.Code == pqUniqueViolation {
			return constraintConflict(err, models.ConflictExactMatch, pqErr.Constraint)
		}
		if _, ok := overlapSlotConstraints[pqErr.Constraint]; ok && pqErr.Code == pqExclusionViolation {
			return constraintConflict(err, models.ConflictTimeOverlap, pqErr.Constraint)
		}
		return err
	}

	var liteErr *sqlite.Error
	// The only non-key UNIQUE constraints in the sqlite schema are the slot ones,
	// and sqlite names their columns in the message.
	if errors.As(err, &liteErr) && liteErr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE &&
		strings.Contains(liteErr.Error(), ".start_minute") {
		return constraintConflict(err, models.ConflictExactMatch, "")
	}
	return err
}

func constraintConflict(err error, kind models.ConflictKind, constraint string) error {
	message := "Exact duplicate found: a schedule with the same owner and time already exists"
	if kind == models.ConflictTimeOverlap {
		message = "Time overlap: the schedule overlaps an existing schedule for the same owner"
	}
	conflict := appErrors.Wrap(err, appErrors.ErrScheduleConflict.Code, appErrors.ErrScheduleConflict.Status, message)
	conflict.Details = ConstraintViolation{Kind: kind, Severity: kind.Severity(), Constraint: constraint}
	return conflict
}

// IsScheduleConflict reports whether err is a mapped storage conflict.
func IsScheduleConflict(err error) bool {
	return errors.Is(err, appErrors.ErrScheduleConflict)
}

