package service

import (
	"fmt"

	"github.com/betosaco/soulpath-sub003/internal/models"
)

// ClassifyConflict compares a candidate entry against one existing entry and
// returns the conflict between them, or nil when they can coexist.
//
// The result depends only on attributes shared by the unordered pair, so
// ClassifyConflict(a, b) and ClassifyConflict(b, a) agree on kind and severity.
func ClassifyConflict(candidate, existing models.ScheduleEntry) *models.ConflictInfo {
	if candidate.Day != existing.Day {
		return nil
	}

	var kind models.ConflictKind
	if candidate.Range.Overlaps(existing.Range) {
		if !shareOwner(candidate, existing) {
			return nil
		}
		kind = models.ConflictTimeOverlap
		if isExactMatch(candidate, existing) {
			kind = models.ConflictExactMatch
		}
	} else {
		switch {
		case sameTeacher(candidate, existing):
			kind = models.ConflictSameTeacherSameDay
		case sameVenue(candidate, existing):
			kind = models.ConflictSameVenueSameDay
		default:
			return nil
		}
	}

	return &models.ConflictInfo{
		Kind:               kind,
		Message:            conflictMessage(kind, candidate, existing),
		ConflictingEntryID: existing.ID,
		ConflictingEntry:   existing,
		Severity:           kind.Severity(),
	}
}

// shareOwner reports whether two entries compete for the same resource: the
// same teacher, the same venue, or a teacher slot booked at a venue's own slot.
func shareOwner(a, b models.ScheduleEntry) bool {
	if a.Kind == b.Kind {
		return a.OwnerID != "" && a.OwnerID == b.OwnerID
	}
	teacher, venue := a, b
	if teacher.Kind != models.KindTeacher {
		teacher, venue = b, a
	}
	if teacher.Kind != models.KindTeacher || venue.Kind != models.KindVenue {
		return false
	}
	return teacher.SecondaryID != "" && teacher.SecondaryID == venue.OwnerID
}

func isExactMatch(a, b models.ScheduleEntry) bool {
	return a.Kind == b.Kind && a.OwnerID == b.OwnerID && a.Range == b.Range
}

func sameTeacher(a, b models.ScheduleEntry) bool {
	teacher := a.TeacherID()
	return teacher != "" && teacher == b.TeacherID()
}

func sameVenue(a, b models.ScheduleEntry) bool {
	venue := a.VenueID()
	return venue != "" && venue == b.VenueID()
}

func conflictMessage(kind models.ConflictKind, candidate, existing models.ScheduleEntry) string {
	switch kind {
	case models.ConflictExactMatch:
		return fmt.Sprintf("Exact duplicate found: %s on %s from %s to %s",
			describeEntry(existing), existing.Day, existing.Range.Start, existing.Range.End)
	case models.ConflictTimeOverlap:
		return fmt.Sprintf("Time overlap: %s on %s (%s) overlaps with your schedule (%s)",
			describeEntry(existing), existing.Day, existing.Range, candidate.Range)
	case models.ConflictSameTeacherSameDay:
		if venue := existing.VenueLabel(); venue != "" {
			return fmt.Sprintf("Teacher %s already has a schedule on %s at %s (%s)",
				existing.TeacherLabel(), existing.Day, venue, existing.Range)
		}
		return fmt.Sprintf("Teacher %s already has a schedule on %s (%s)",
			existing.TeacherLabel(), existing.Day, existing.Range)
	case models.ConflictSameVenueSameDay:
		return fmt.Sprintf("Venue %s already has a schedule on %s (%s)",
			existing.VenueLabel(), existing.Day, existing.Range)
	}
	return ""
}

func describeEntry(e models.ScheduleEntry) string {
	if e.Kind == models.KindTeacher {
		if venue := e.VenueLabel(); venue != "" {
			return e.TeacherLabel() + " at " + venue
		}
		return e.TeacherLabel()
	}
	return e.VenueLabel()
}
