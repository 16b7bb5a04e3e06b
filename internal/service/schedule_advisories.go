package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/betosaco/soulpath-sub003/internal/models"
)

// advisories collects non-blocking hints about the candidate. Lookups that fail
// are logged and skipped.
func (s *ScheduleConflictService) advisories(ctx context.Context, candidate models.ScheduleEntry, capacity *int, existing []models.ScheduleEntry, conflicts []models.ConflictInfo) []string {
	warnings := make([]string, 0)

	hours := s.cfg.OperatingHours
	if hours.Valid() && !candidate.Range.Within(hours) {
		warnings = append(warnings, fmt.Sprintf("Schedule %s falls outside operating hours (%s)", candidate.Range, hours))
	}

	if capacity != nil {
		if venueID := candidate.VenueID(); venueID != "" {
			if warning := s.capacityAdvisory(ctx, venueID, *capacity, existing); warning != "" {
				warnings = append(warnings, warning)
			}
		}
	}

	seen := make(map[string]struct{})
	for _, c := range conflicts {
		if c.ConflictingEntry.IsAvailable {
			continue
		}
		if _, ok := seen[c.ConflictingEntryID]; ok {
			continue
		}
		seen[c.ConflictingEntryID] = struct{}{}
		warnings = append(warnings, fmt.Sprintf("Conflicting schedule %s is marked unavailable and may be stale", c.ConflictingEntryID))
	}

	return warnings
}

func (s *ScheduleConflictService) capacityAdvisory(ctx context.Context, venueID string, requested int, existing []models.ScheduleEntry) string {
	venueCapacity, err := s.port.VenueCapacity(ctx, venueID)
	if err != nil {
		s.logger.Warn("venue capacity lookup failed", zap.String("venue_id", venueID), zap.Error(err))
		return ""
	}
	if venueCapacity <= 0 || requested <= venueCapacity {
		return ""
	}
	return fmt.Sprintf("Schedule capacity (%d) exceeds venue capacity (%d) for %s", requested, venueCapacity, venueName(venueID, existing))
}

func venueName(venueID string, entries []models.ScheduleEntry) string {
	for _, e := range entries {
		if e.VenueID() == venueID {
			if label := e.VenueLabel(); label != "" {
				return label
			}
		}
	}
	return venueID
}
