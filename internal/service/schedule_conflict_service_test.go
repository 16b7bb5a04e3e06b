package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/betosaco/soulpath-sub003/internal/dto"
	"github.com/betosaco/soulpath-sub003/internal/models"
	appErrors "github.com/betosaco/soulpath-sub003/pkg/errors"
)

type mockSchedulePort struct {
	mu          sync.Mutex
	byDay       map[models.DayOfWeek][]models.ScheduleEntry
	byTeacher   map[string][]models.ScheduleEntry
	byVenue     map[string][]models.ScheduleEntry
	capacities  map[string]int
	listErr     error
	capacityErr error
	calls       int
}

func (m *mockSchedulePort) ListByDay(ctx context.Context, day models.DayOfWeek) ([]models.ScheduleEntry, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.byDay[day], nil
}

func (m *mockSchedulePort) ListByTeacher(ctx context.Context, teacherID string) ([]models.ScheduleEntry, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.byTeacher[teacherID], nil
}

func (m *mockSchedulePort) ListByVenue(ctx context.Context, venueID string) ([]models.ScheduleEntry, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.byVenue[venueID], nil
}

func (m *mockSchedulePort) VenueCapacity(ctx context.Context, venueID string) (int, error) {
	if m.capacityErr != nil {
		return 0, m.capacityErr
	}
	return m.capacities[venueID], nil
}

type recordingMetrics struct {
	outcomes  []string
	conflicts []models.ConflictKind
	summaries int
	fetches   []string
}

func (r *recordingMetrics) ObserveConflictCheck(outcome string) { r.outcomes = append(r.outcomes, outcome) }
func (r *recordingMetrics) ObserveConflict(kind models.ConflictKind, severity models.Severity) {
	r.conflicts = append(r.conflicts, kind)
}
func (r *recordingMetrics) ObserveDaySummary() { r.summaries++ }
func (r *recordingMetrics) ObservePortFetch(operation string, duration time.Duration) {
	r.fetches = append(r.fetches, operation)
}

func newConflictService(port *mockSchedulePort) *ScheduleConflictService {
	return NewScheduleConflictService(port, nil, zap.NewNop(), nil, ScheduleConflictConfig{})
}

func checkRequest(day, start, end, kind, owner, secondary string) dto.CheckScheduleRequest {
	return dto.CheckScheduleRequest{DayOfWeek: day, StartTime: start, EndTime: end, Type: kind, OwnerID: owner, SecondaryID: secondary}
}

func TestCheckExactVenueDuplicate(t *testing.T) {
	port := &mockSchedulePort{byDay: map[models.DayOfWeek][]models.ScheduleEntry{
		models.Monday: {venueEntry("vs-1", "V1", models.Monday, hm(8, 0), hm(9, 0))},
	}}
	svc := newConflictService(port)

	result, err := svc.Check(context.Background(), checkRequest("Monday", "08:00", "09:00", "venue", "V1", ""))
	require.NoError(t, err)
	assert.True(t, result.HasDuplicates)
	require.Len(t, result.Conflicts, 1)
	assert.Equal(t, models.ConflictExactMatch, result.Conflicts[0].Kind)
	assert.Equal(t, "vs-1", result.Conflicts[0].ConflictingEntryID)
}

func TestCheckTeacherOverlapAtAnotherVenue(t *testing.T) {
	port := &mockSchedulePort{byDay: map[models.DayOfWeek][]models.ScheduleEntry{
		models.Monday: {teacherEntry("ts-1", "T1", "V1", models.Monday, hm(8, 0), hm(9, 0))},
	}}
	svc := newConflictService(port)

	result, err := svc.Check(context.Background(), checkRequest("Monday", "08:30", "09:30", "teacher", "T1", "V2"))
	require.NoError(t, err)
	assert.True(t, result.HasDuplicates)
	require.Len(t, result.Conflicts, 1)
	assert.Equal(t, models.ConflictTimeOverlap, result.Conflicts[0].Kind)
}

func TestCheckSameTeacherLaterIsWarning(t *testing.T) {
	port := &mockSchedulePort{byDay: map[models.DayOfWeek][]models.ScheduleEntry{
		models.Monday: {teacherEntry("ts-1", "T1", "V1", models.Monday, hm(8, 0), hm(9, 0))},
	}}
	svc := newConflictService(port)

	result, err := svc.Check(context.Background(), checkRequest("monday", "10:00", "11:00", "Teacher", "T1", "V1"))
	require.NoError(t, err)
	assert.False(t, result.HasDuplicates)
	require.Len(t, result.Conflicts, 1)
	assert.Equal(t, models.ConflictSameTeacherSameDay, result.Conflicts[0].Kind)
	assert.Equal(t, models.SeverityWarning, result.Conflicts[0].Severity)
	assert.NotNil(t, result.Warnings)
}

func TestCheckExcludeIDSuppressesSelf(t *testing.T) {
	port := &mockSchedulePort{byDay: map[models.DayOfWeek][]models.ScheduleEntry{
		models.Monday: {venueEntry("vs-1", "V1", models.Monday, hm(8, 0), hm(9, 0))},
	}}
	svc := newConflictService(port)

	req := checkRequest("Monday", "08:00", "09:00", "venue", "V1", "")
	req.ExcludeID = "vs-1"
	result, err := svc.Check(context.Background(), req)
	require.NoError(t, err)
	assert.False(t, result.HasDuplicates)
	assert.Empty(t, result.Conflicts)
}

func TestCheckExcludeIDOnlyMatchesCandidateKind(t *testing.T) {
	port := &mockSchedulePort{byDay: map[models.DayOfWeek][]models.ScheduleEntry{
		models.Monday: {
			teacherEntry("x", "T1", "V1", models.Monday, hm(8, 0), hm(9, 0)),
			venueEntry("x", "V1", models.Monday, hm(8, 0), hm(9, 0)),
		},
	}}
	svc := newConflictService(port)

	req := checkRequest("Monday", "08:00", "09:00", "teacher", "T1", "V1")
	req.ExcludeID = "x"
	result, err := svc.Check(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, result.Conflicts, 1)
	assert.Equal(t, models.KindVenue, result.Conflicts[0].ConflictingEntry.Kind)
	assert.Equal(t, models.ConflictTimeOverlap, result.Conflicts[0].Kind)
	assert.True(t, result.HasDuplicates)
}

func TestCheckValidationFailsBeforePortCall(t *testing.T) {
	cases := map[string]dto.CheckScheduleRequest{
		"missing owner":    checkRequest("Monday", "08:00", "09:00", "venue", "", ""),
		"unknown day":      checkRequest("Someday", "08:00", "09:00", "venue", "V1", ""),
		"bad start":        checkRequest("Monday", "8am", "09:00", "venue", "V1", ""),
		"bad end":          checkRequest("Monday", "08:00", "24:00", "venue", "V1", ""),
		"end before start": checkRequest("Monday", "09:00", "08:00", "venue", "V1", ""),
		"empty range":      checkRequest("Monday", "09:00", "09:00", "venue", "V1", ""),
		"unknown type":     checkRequest("Monday", "08:00", "09:00", "room", "V1", ""),
	}
	for name, req := range cases {
		t.Run(name, func(t *testing.T) {
			port := &mockSchedulePort{}
			metrics := &recordingMetrics{}
			svc := NewScheduleConflictService(port, nil, nil, metrics, ScheduleConflictConfig{})

			_, err := svc.Check(context.Background(), req)
			require.Error(t, err)
			var appErr *appErrors.Error
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
			assert.Equal(t, 400, appErr.Status)
			assert.Zero(t, port.calls)
			assert.Equal(t, []string{checkOutcomeInvalid}, metrics.outcomes)
		})
	}
}

func TestCheckPortFailureIsUnavailable(t *testing.T) {
	port := &mockSchedulePort{listErr: errors.New("connection refused")}
	svc := newConflictService(port)

	_, err := svc.Check(context.Background(), checkRequest("Monday", "08:00", "09:00", "venue", "V1", ""))
	require.Error(t, err)
	assert.ErrorIs(t, err, appErrors.ErrPortUnavailable)
	assert.Equal(t, 503, appErrors.FromError(err).Status)
}

func TestCheckPassesThroughUnavailableFromBreaker(t *testing.T) {
	open := appErrors.Clone(appErrors.ErrPortUnavailable, "schedule storage temporarily unavailable")
	port := &mockSchedulePort{listErr: open}
	svc := newConflictService(port)

	_, err := svc.Check(context.Background(), checkRequest("Monday", "08:00", "09:00", "venue", "V1", ""))
	assert.Same(t, open, err)
}

func TestCheckCancelledContextReturnsContextError(t *testing.T) {
	port := &mockSchedulePort{}
	svc := newConflictService(port)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := svc.Check(ctx, checkRequest("Monday", "08:00", "09:00", "venue", "V1", ""))
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, appErrors.ErrPortUnavailable)
}

func TestCheckIsIdempotentAndOrdered(t *testing.T) {
	port := &mockSchedulePort{byDay: map[models.DayOfWeek][]models.ScheduleEntry{
		models.Monday: {
			teacherEntry("ts-late", "T1", "V1", models.Monday, hm(15, 0), hm(16, 0)),
			teacherEntry("ts-other", "T2", "V1", models.Monday, hm(12, 0), hm(13, 0)),
			venueEntry("vs-1", "V1", models.Monday, hm(9, 30), hm(11, 0)),
			teacherEntry("ts-early", "T1", "V1", models.Monday, hm(7, 0), hm(8, 0)),
			teacherEntry("ts-exact", "T1", "V3", models.Monday, hm(9, 0), hm(10, 0)),
		},
	}}
	svc := newConflictService(port)
	req := checkRequest("Monday", "09:00", "10:00", "teacher", "T1", "V1")

	first, err := svc.Check(context.Background(), req)
	require.NoError(t, err)
	second, err := svc.Check(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	var order []string
	for _, c := range first.Conflicts {
		order = append(order, c.ConflictingEntryID)
	}
	assert.Equal(t, []string{"ts-exact", "vs-1", "ts-early", "ts-late", "ts-other"}, order)
	assert.Equal(t, models.ConflictExactMatch, first.Conflicts[0].Kind)
	assert.Equal(t, models.ConflictTimeOverlap, first.Conflicts[1].Kind)
	assert.Equal(t, models.ConflictSameVenueSameDay, first.Conflicts[4].Kind)
	assert.True(t, first.HasDuplicates)
}

func TestCheckAdvisories(t *testing.T) {
	unavailable := venueEntry("vs-1", "V1", models.Monday, hm(21, 0), hm(22, 30))
	unavailable.IsAvailable = false
	unavailable.OwnerName = "Studio A"
	port := &mockSchedulePort{
		byDay:      map[models.DayOfWeek][]models.ScheduleEntry{models.Monday: {unavailable}},
		capacities: map[string]int{"V1": 10},
	}
	metrics := &recordingMetrics{}
	svc := NewScheduleConflictService(port, nil, zap.NewNop(), metrics, ScheduleConflictConfig{
		OperatingHours: models.TimeRange{Start: hm(6, 0), End: hm(22, 0)},
	})

	req := checkRequest("Monday", "21:30", "22:30", "venue", "V1", "")
	capacity := 15
	req.Capacity = &capacity

	result, err := svc.Check(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, result.Warnings, 3)
	assert.Contains(t, result.Warnings[0], "outside operating hours")
	assert.Equal(t, "Schedule capacity (15) exceeds venue capacity (10) for Studio A", result.Warnings[1])
	assert.Contains(t, result.Warnings[2], "vs-1")
	assert.Equal(t, []string{checkOutcomeDuplicate}, metrics.outcomes)
	assert.Equal(t, []models.ConflictKind{models.ConflictTimeOverlap}, metrics.conflicts)
}

func TestCheckAdvisoryFailureIsSkipped(t *testing.T) {
	port := &mockSchedulePort{capacityErr: errors.New("timeout")}
	svc := newConflictService(port)

	req := checkRequest("Monday", "10:00", "11:00", "venue", "V1", "")
	capacity := 30
	req.Capacity = &capacity

	result, err := svc.Check(context.Background(), req)
	require.NoError(t, err)
	assert.Empty(t, result.Warnings)
	assert.Empty(t, result.Conflicts)
	assert.False(t, result.HasDuplicates)
}

func TestCheckConcurrentCallsAgree(t *testing.T) {
	port := &mockSchedulePort{byDay: map[models.DayOfWeek][]models.ScheduleEntry{
		models.Monday: {
			venueEntry("vs-1", "V1", models.Monday, hm(8, 0), hm(9, 0)),
			teacherEntry("ts-1", "T1", "V1", models.Monday, hm(10, 0), hm(11, 0)),
		},
	}}
	svc := newConflictService(port)
	req := checkRequest("Monday", "08:30", "09:30", "teacher", "T1", "V1")

	expected, err := svc.Check(context.Background(), req)
	require.NoError(t, err)

	var wg sync.WaitGroup
	results := make([]*models.DuplicateCheckResult, 16)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], _ = svc.Check(context.Background(), req)
		}(i)
	}
	wg.Wait()
	for _, r := range results {
		assert.Equal(t, expected, r)
	}
}

func TestSummarizeUnrelatedEntries(t *testing.T) {
	entries := make([]models.ScheduleEntry, 0, 5)
	for i := 0; i < 5; i++ {
		entries = append(entries, teacherEntry(
			fmt.Sprintf("ts-%d", i), fmt.Sprintf("T%d", i), fmt.Sprintf("V%d", i),
			models.Wednesday, hm(8+i*2, 0), hm(9+i*2, 0),
		))
	}
	port := &mockSchedulePort{byDay: map[models.DayOfWeek][]models.ScheduleEntry{models.Wednesday: entries}}
	metrics := &recordingMetrics{}
	svc := NewScheduleConflictService(port, nil, nil, metrics, ScheduleConflictConfig{})

	summary, err := svc.Summarize(context.Background(), models.Wednesday)
	require.NoError(t, err)
	assert.Equal(t, models.Wednesday, summary.Day)
	assert.Equal(t, 5, summary.TotalSchedules)
	assert.Zero(t, summary.DuplicateCount)
	assert.Zero(t, summary.WarningCount)
	assert.Empty(t, summary.Conflicts)
	assert.Equal(t, 1, metrics.summaries)
}

func TestSummarizeCountsDistinctEntries(t *testing.T) {
	port := &mockSchedulePort{byDay: map[models.DayOfWeek][]models.ScheduleEntry{
		models.Friday: {
			venueEntry("a", "V1", models.Friday, hm(8, 0), hm(9, 0)),
			venueEntry("b", "V1", models.Friday, hm(8, 0), hm(9, 0)),
			venueEntry("c", "V1", models.Friday, hm(8, 30), hm(9, 30)),
			venueEntry("d", "V1", models.Friday, hm(14, 0), hm(15, 0)),
			venueEntry("e", "V1", models.Friday, hm(8, 45), hm(9, 15)),
		},
	}}
	svc := newConflictService(port)

	summary, err := svc.Summarize(context.Background(), models.Friday)
	require.NoError(t, err)
	assert.Equal(t, 5, summary.TotalSchedules)

	errorPairsWithA := 0
	for _, c := range summary.Conflicts {
		if c.Severity == models.SeverityError && (c.EntryID == "a" || c.ConflictingEntryID == "a") {
			errorPairsWithA++
		}
	}
	assert.Equal(t, 3, errorPairsWithA, "a collides with b, c and e")
	assert.Equal(t, 4, summary.DuplicateCount, "a, b, c and e each counted once")
	assert.Equal(t, 1, summary.WarningCount, "d only shares the venue")
	require.Len(t, summary.Conflicts, 10)
	assert.Equal(t, models.ConflictExactMatch, summary.Conflicts[0].Kind)
	assert.Equal(t, "a", summary.Conflicts[0].EntryID)
	assert.Equal(t, "b", summary.Conflicts[0].ConflictingEntryID)
}

func TestSummarizeKeepsSharedIDsApartAcrossKinds(t *testing.T) {
	port := &mockSchedulePort{byDay: map[models.DayOfWeek][]models.ScheduleEntry{
		models.Thursday: {
			teacherEntry("x", "T1", "V2", models.Thursday, hm(8, 0), hm(9, 0)),
			teacherEntry("t", "T1", "V3", models.Thursday, hm(8, 30), hm(9, 30)),
			venueEntry("x", "V1", models.Thursday, hm(8, 0), hm(9, 0)),
			venueEntry("y", "V1", models.Thursday, hm(14, 0), hm(15, 0)),
		},
	}}
	svc := newConflictService(port)

	summary, err := svc.Summarize(context.Background(), models.Thursday)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.DuplicateCount, "teacher x and t overlap")
	assert.Equal(t, 2, summary.WarningCount, "venue x and y share the venue")
	assert.Equal(t, "duplicate", summary.EntryStatus(summary.Entries[0]))
	assert.Equal(t, "warning", summary.EntryStatus(summary.Entries[2]))

	require.Len(t, summary.Conflicts, 2)
	assert.Equal(t, models.KindTeacher, summary.Conflicts[0].EntryKind)
	assert.Equal(t, models.KindVenue, summary.Conflicts[1].EntryKind)
	assert.Equal(t, models.KindVenue, summary.Conflicts[1].ConflictingEntryKind)
}

func TestSummarizeRejectsUnknownDay(t *testing.T) {
	port := &mockSchedulePort{}
	svc := newConflictService(port)

	_, err := svc.Summarize(context.Background(), models.DayOfWeek("Caturday"))
	assert.ErrorIs(t, err, appErrors.ErrValidation)
	assert.Zero(t, port.calls)
}

func TestSummarizePortFailure(t *testing.T) {
	svc := newConflictService(&mockSchedulePort{listErr: errors.New("boom")})
	_, err := svc.Summarize(context.Background(), models.Monday)
	assert.ErrorIs(t, err, appErrors.ErrPortUnavailable)
}

func TestCandidatePairsMatchBruteForce(t *testing.T) {
	teachers := []string{"T1", "T2", "T3"}
	venues := []string{"V1", "V2", ""}
	var entries []models.ScheduleEntry
	for i := 0; i < 24; i++ {
		start := hm(6+(i*7)%14, (i*13)%4*15)
		end := start + models.TimeOfDay(30+(i%3)*30)
		if i%4 == 3 {
			venue := venues[i%2]
			entries = append(entries, venueEntry(fmt.Sprintf("v-%02d", i), venue, models.Monday, start, end))
			continue
		}
		entries = append(entries, teacherEntry(fmt.Sprintf("t-%02d", i), teachers[i%3], venues[(i/3)%3], models.Monday, start, end))
	}

	type pairResult struct {
		a, b string
		kind models.ConflictKind
	}
	var brute []pairResult
	for i := 0; i < len(entries); i++ {
		for j := i + 1; j < len(entries); j++ {
			if info := ClassifyConflict(entries[i], entries[j]); info != nil {
				brute = append(brute, pairResult{entries[i].ID, entries[j].ID, info.Kind})
			}
		}
	}

	var bucketed []pairResult
	for _, pair := range candidatePairs(entries) {
		if info := ClassifyConflict(entries[pair[0]], entries[pair[1]]); info != nil {
			bucketed = append(bucketed, pairResult{entries[pair[0]].ID, entries[pair[1]].ID, info.Kind})
		}
	}

	require.NotEmpty(t, brute)
	assert.Equal(t, brute, bucketed)
}

func TestSummarizeResourceGroupsByDay(t *testing.T) {
	port := &mockSchedulePort{byTeacher: map[string][]models.ScheduleEntry{
		"T1": {
			teacherEntry("fri", "T1", "V1", models.Friday, hm(8, 0), hm(9, 0)),
			teacherEntry("mon-a", "T1", "V1", models.Monday, hm(8, 0), hm(9, 0)),
			teacherEntry("mon-b", "T1", "V2", models.Monday, hm(8, 30), hm(9, 30)),
		},
	}}
	svc := newConflictService(port)

	summary, err := svc.SummarizeResource(context.Background(), models.KindTeacher, "T1")
	require.NoError(t, err)
	assert.Equal(t, 3, summary.Total)
	require.Len(t, summary.Days, 2)
	assert.Equal(t, models.Monday, summary.Days[0].Day)
	assert.Equal(t, models.Friday, summary.Days[1].Day)
	assert.Equal(t, 2, summary.Days[0].DuplicateCount)
	assert.Equal(t, 2, summary.Problems)
}

func TestSummarizeResourceValidation(t *testing.T) {
	svc := newConflictService(&mockSchedulePort{})

	_, err := svc.SummarizeResource(context.Background(), models.KindVenue, "")
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	_, err = svc.SummarizeResource(context.Background(), models.ScheduleKind("room"), "R1")
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}

func TestSummarizeResourceVenue(t *testing.T) {
	port := &mockSchedulePort{byVenue: map[string][]models.ScheduleEntry{
		"V1": {
			venueEntry("vs-1", "V1", models.Tuesday, hm(10, 0), hm(12, 0)),
			teacherEntry("ts-1", "T1", "V1", models.Tuesday, hm(11, 0), hm(12, 0)),
		},
	}}
	svc := newConflictService(port)

	summary, err := svc.SummarizeResource(context.Background(), models.KindVenue, "V1")
	require.NoError(t, err)
	require.Len(t, summary.Days, 1)
	require.Len(t, summary.Days[0].Conflicts, 1)
	assert.Equal(t, models.ConflictTimeOverlap, summary.Days[0].Conflicts[0].Kind)
}
