package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/betosaco/soulpath-sub003/internal/dto"
	"github.com/betosaco/soulpath-sub003/internal/models"
	appErrors "github.com/betosaco/soulpath-sub003/pkg/errors"
)

// scheduleQueryPort supplies the current schedule entries from storage.
type scheduleQueryPort interface {
	ListByDay(ctx context.Context, day models.DayOfWeek) ([]models.ScheduleEntry, error)
	ListByTeacher(ctx context.Context, teacherID string) ([]models.ScheduleEntry, error)
	ListByVenue(ctx context.Context, venueID string) ([]models.ScheduleEntry, error)
	VenueCapacity(ctx context.Context, venueID string) (int, error)
}

type conflictRecorder interface {
	ObserveConflictCheck(outcome string)
	ObserveConflict(kind models.ConflictKind, severity models.Severity)
	ObserveDaySummary()
	ObservePortFetch(operation string, duration time.Duration)
}

type noopConflictRecorder struct{}

func (noopConflictRecorder) ObserveConflictCheck(string) {}
func (noopConflictRecorder) ObserveConflict(models.ConflictKind, models.Severity) {}
func (noopConflictRecorder) ObserveDaySummary() {}
func (noopConflictRecorder) ObservePortFetch(string, time.Duration) {}

// Check outcomes reported to the metrics recorder.
const (
	checkOutcomeDuplicate = "duplicate"
	checkOutcomeWarning   = "warning"
	checkOutcomeClear     = "clear"
	checkOutcomeInvalid   = "invalid"
	checkOutcomeError     = "error"
)

// ScheduleConflictConfig tunes advisory warnings.
type ScheduleConflictConfig struct {
	OperatingHours models.TimeRange
}

// ScheduleConflictService detects collisions between schedule entries.
type ScheduleConflictService struct {
	port      scheduleQueryPort
	validator *validator.Validate
	logger    *zap.Logger
	metrics   conflictRecorder
	cfg       ScheduleConflictConfig
}

// NewScheduleConflictService constructs the service. A nil recorder disables metrics.
func NewScheduleConflictService(port scheduleQueryPort, validate *validator.Validate, logger *zap.Logger, metrics conflictRecorder, cfg ScheduleConflictConfig) *ScheduleConflictService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if metrics == nil {
		metrics = noopConflictRecorder{}
	}
	return &ScheduleConflictService{port: port, validator: validate, logger: logger, metrics: metrics, cfg: cfg}
}

// Check classifies a candidate entry against every entry already scheduled on its day.
func (s *ScheduleConflictService) Check(ctx context.Context, req dto.CheckScheduleRequest) (*models.DuplicateCheckResult, error) {
	if err := s.validator.Struct(req); err != nil {
		s.metrics.ObserveConflictCheck(checkOutcomeInvalid)
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid schedule candidate")
	}
	candidate, err := candidateFromRequest(req)
	if err != nil {
		s.metrics.ObserveConflictCheck(checkOutcomeInvalid)
		return nil, err
	}

	existing, err := s.listByDay(ctx, candidate.Day)
	if err != nil {
		s.metrics.ObserveConflictCheck(checkOutcomeError)
		return nil, s.portError(ctx, err, "failed to load schedules for day")
	}

	conflicts := make([]models.ConflictInfo, 0)
	for _, entry := range existing {
		// Ids are only unique within one schedule table.
		if req.ExcludeID != "" && entry.ID == req.ExcludeID && entry.Kind == candidate.Kind {
			continue
		}
		if info := ClassifyConflict(candidate, entry); info != nil {
			conflicts = append(conflicts, *info)
		}
	}
	sortConflicts(conflicts)

	result := &models.DuplicateCheckResult{
		Conflicts: conflicts,
		Warnings:  s.advisories(ctx, candidate, req.Capacity, existing, conflicts),
	}
	for _, c := range conflicts {
		if c.Severity == models.SeverityError {
			result.HasDuplicates = true
		}
		s.metrics.ObserveConflict(c.Kind, c.Severity)
	}

	switch {
	case result.HasDuplicates:
		s.metrics.ObserveConflictCheck(checkOutcomeDuplicate)
	case len(conflicts) > 0:
		s.metrics.ObserveConflictCheck(checkOutcomeWarning)
	default:
		s.metrics.ObserveConflictCheck(checkOutcomeClear)
	}

	return result, nil
}

// Summarize reports every conflicting pair among the entries scheduled on day.
func (s *ScheduleConflictService) Summarize(ctx context.Context, day models.DayOfWeek) (*models.DaySummary, error) {
	if !day.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown day of week %q", day))
	}
	entries, err := s.listByDay(ctx, day)
	if err != nil {
		return nil, s.portError(ctx, err, "failed to load schedules for day")
	}
	summary := summarizeEntries(day, entries)
	s.metrics.ObserveDaySummary()
	return summary, nil
}

// SummarizeResource builds per-day summaries for every entry of one teacher or venue.
func (s *ScheduleConflictService) SummarizeResource(ctx context.Context, kind models.ScheduleKind, ownerID string) (*models.ResourceSummary, error) {
	if ownerID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "owner id is required")
	}

	var (
		entries []models.ScheduleEntry
		err     error
	)
	started := time.Now()
	switch kind {
	case models.KindTeacher:
		entries, err = s.port.ListByTeacher(ctx, ownerID)
		s.metrics.ObservePortFetch("list_by_teacher", time.Since(started))
	case models.KindVenue:
		entries, err = s.port.ListByVenue(ctx, ownerID)
		s.metrics.ObservePortFetch("list_by_venue", time.Since(started))
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown schedule type %q", kind))
	}
	if err != nil {
		return nil, s.portError(ctx, err, fmt.Sprintf("failed to load %s schedules", kind))
	}

	byDay := make(map[models.DayOfWeek][]models.ScheduleEntry)
	for _, entry := range entries {
		byDay[entry.Day] = append(byDay[entry.Day], entry)
	}

	summary := &models.ResourceSummary{
		Kind:    kind,
		OwnerID: ownerID,
		Days:    make([]models.DaySummary, 0, len(byDay)),
		Total:   len(entries),
	}
	for _, day := range models.Weekdays {
		dayEntries, ok := byDay[day]
		if !ok {
			continue
		}
		daySummary := summarizeEntries(day, dayEntries)
		summary.Problems += daySummary.DuplicateCount + daySummary.WarningCount
		summary.Days = append(summary.Days, *daySummary)
	}
	return summary, nil
}

func (s *ScheduleConflictService) listByDay(ctx context.Context, day models.DayOfWeek) ([]models.ScheduleEntry, error) {
	started := time.Now()
	entries, err := s.port.ListByDay(ctx, day)
	s.metrics.ObservePortFetch("list_by_day", time.Since(started))
	return entries, err
}

// portError keeps cancellation errors intact so callers can tell an abandoned
// request apart from an unavailable store.
func (s *ScheduleConflictService) portError(ctx context.Context, err error, message string) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	var appErr *appErrors.Error
	if errors.As(err, &appErr) && appErr.Code == appErrors.ErrPortUnavailable.Code {
		return appErr
	}
	s.logger.Error("schedule query port failed", zap.Error(err))
	return appErrors.Wrap(err, appErrors.ErrPortUnavailable.Code, appErrors.ErrPortUnavailable.Status, message)
}

func candidateFromRequest(req dto.CheckScheduleRequest) (models.ScheduleEntry, error) {
	day, err := models.ParseDayOfWeek(req.DayOfWeek)
	if err != nil {
		return models.ScheduleEntry{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid dayOfWeek")
	}
	start, err := models.ParseTimeOfDay(req.StartTime)
	if err != nil {
		return models.ScheduleEntry{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid startTime")
	}
	end, err := models.ParseTimeOfDay(req.EndTime)
	if err != nil {
		return models.ScheduleEntry{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid endTime")
	}
	timeRange := models.TimeRange{Start: start, End: end}
	if !timeRange.Valid() {
		return models.ScheduleEntry{}, appErrors.Clone(appErrors.ErrValidation, "startTime must be before endTime")
	}
	kind, err := models.ParseScheduleKind(req.Type)
	if err != nil {
		return models.ScheduleEntry{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid type")
	}

	candidate := models.ScheduleEntry{
		Kind:        kind,
		OwnerID:     req.OwnerID,
		Day:         day,
		Range:       timeRange,
		IsAvailable: true,
	}
	if kind == models.KindTeacher {
		candidate.SecondaryID = req.SecondaryID
	}
	if req.Capacity != nil {
		if kind == models.KindVenue {
			candidate.Capacity = *req.Capacity
		} else {
			candidate.MaxBookings = *req.Capacity
		}
	}
	return candidate, nil
}

// sortConflicts orders by severity, then kind, then the conflicting entry's start and id.
func sortConflicts(conflicts []models.ConflictInfo) {
	sort.SliceStable(conflicts, func(i, j int) bool {
		a, b := conflicts[i], conflicts[j]
		if a.Severity != b.Severity {
			return a.Severity == models.SeverityError
		}
		if a.Kind != b.Kind {
			return a.Kind.Rank() < b.Kind.Rank()
		}
		if a.ConflictingEntry.Range.Start != b.ConflictingEntry.Range.Start {
			return a.ConflictingEntry.Range.Start < b.ConflictingEntry.Range.Start
		}
		return a.ConflictingEntryID < b.ConflictingEntryID
	})
}
