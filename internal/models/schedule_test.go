package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDayOfWeek(t *testing.T) {
	day, err := ParseDayOfWeek("  monday ")
	require.NoError(t, err)
	assert.Equal(t, Monday, day)

	day, err = ParseDayOfWeek("SUNDAY")
	require.NoError(t, err)
	assert.Equal(t, Sunday, day)

	_, err = ParseDayOfWeek("Funday")
	assert.Error(t, err)
	_, err = ParseDayOfWeek("")
	assert.Error(t, err)
}

func TestParseTimeOfDay(t *testing.T) {
	cases := []struct {
		raw     string
		want    TimeOfDay
		wantErr bool
	}{
		{raw: "00:00", want: 0},
		{raw: "9:05", want: 545},
		{raw: "23:59", want: MaxTimeOfDay},
		{raw: "24:00", wantErr: true},
		{raw: "12:60", wantErr: true},
		{raw: "12", wantErr: true},
		{raw: "12:5", wantErr: true},
		{raw: "ab:cd", wantErr: true},
	}
	for _, tc := range cases {
		t.Run(tc.raw, func(t *testing.T) {
			got, err := ParseTimeOfDay(tc.raw)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestTimeOfDayJSON(t *testing.T) {
	payload, err := json.Marshal(TimeRange{Start: 600, End: 660})
	require.NoError(t, err)
	assert.JSONEq(t, `{"start":"10:00","end":"11:00"}`, string(payload))

	var fromString TimeRange
	require.NoError(t, json.Unmarshal([]byte(`{"start":"10:00","end":"11:30"}`), &fromString))
	assert.Equal(t, TimeRange{Start: 600, End: 690}, fromString)

	var fromMinutes TimeOfDay
	require.NoError(t, json.Unmarshal([]byte(`615`), &fromMinutes))
	assert.Equal(t, TimeOfDay(615), fromMinutes)

	assert.Error(t, json.Unmarshal([]byte(`1440`), &fromMinutes))
	assert.Error(t, json.Unmarshal([]byte(`"25:00"`), &fromMinutes))
}

func TestTimeRangeOverlapsIsHalfOpen(t *testing.T) {
	morning := TimeRange{Start: 600, End: 660}

	assert.True(t, morning.Overlaps(TimeRange{Start: 630, End: 700}))
	assert.True(t, morning.Overlaps(TimeRange{Start: 540, End: 601}))
	assert.True(t, morning.Overlaps(TimeRange{Start: 610, End: 620}))
	assert.False(t, morning.Overlaps(TimeRange{Start: 660, End: 720}), "back-to-back after")
	assert.False(t, morning.Overlaps(TimeRange{Start: 540, End: 600}), "back-to-back before")
	assert.False(t, morning.Overlaps(TimeRange{Start: 700, End: 760}))
}

func TestTimeRangeValidAndWithin(t *testing.T) {
	assert.True(t, TimeRange{Start: 0, End: 1}.Valid())
	assert.False(t, TimeRange{Start: 600, End: 600}.Valid())
	assert.False(t, TimeRange{Start: 700, End: 600}.Valid())
	assert.False(t, TimeRange{Start: 600, End: 1440}.Valid())

	hours := TimeRange{Start: 360, End: 1320}
	assert.True(t, TimeRange{Start: 360, End: 1320}.Within(hours))
	assert.False(t, TimeRange{Start: 300, End: 420}.Within(hours))
	assert.Equal(t, 60, TimeRange{Start: 600, End: 660}.Duration())
	assert.Equal(t, "10:00 - 11:00", TimeRange{Start: 600, End: 660}.String())
}

func TestScheduleEntryResourceIDs(t *testing.T) {
	teacher := ScheduleEntry{Kind: KindTeacher, OwnerID: "t1", SecondaryID: "v1", SecondaryName: "Studio A"}
	venue := ScheduleEntry{Kind: KindVenue, OwnerID: "v1"}

	assert.Equal(t, "t1", teacher.TeacherID())
	assert.Equal(t, "v1", teacher.VenueID())
	assert.Equal(t, "t1", teacher.TeacherLabel())
	assert.Equal(t, "Studio A", teacher.VenueLabel())

	assert.Equal(t, "", venue.TeacherID())
	assert.Equal(t, "v1", venue.VenueID())
	assert.Equal(t, "v1", venue.VenueLabel())
}

func TestDaySummaryEntryStatus(t *testing.T) {
	summary := DaySummary{Conflicts: []DayConflict{
		{EntryID: "a", EntryKind: KindVenue, ConflictingEntryID: "b", ConflictingEntryKind: KindVenue, Severity: SeverityWarning},
		{EntryID: "b", EntryKind: KindVenue, ConflictingEntryID: "c", ConflictingEntryKind: KindTeacher, Severity: SeverityError},
	}}
	venue := func(id string) ScheduleEntry { return ScheduleEntry{ID: id, Kind: KindVenue} }
	teacher := func(id string) ScheduleEntry { return ScheduleEntry{ID: id, Kind: KindTeacher} }

	assert.Equal(t, "warning", summary.EntryStatus(venue("a")))
	assert.Equal(t, "duplicate", summary.EntryStatus(venue("b")))
	assert.Equal(t, "duplicate", summary.EntryStatus(teacher("c")))
	assert.Equal(t, "ok", summary.EntryStatus(venue("d")))
	assert.Equal(t, "ok", summary.EntryStatus(teacher("a")), "same id in the other table")
	assert.Equal(t, "ok", summary.EntryStatus(venue("c")), "same id in the other table")
}

func TestScheduleEntryKey(t *testing.T) {
	assert.Equal(t, "teacher:x", ScheduleEntry{ID: "x", Kind: KindTeacher}.Key())
	assert.NotEqual(t, ScheduleEntry{ID: "x", Kind: KindTeacher}.Key(), ScheduleEntry{ID: "x", Kind: KindVenue}.Key())
}

func TestConflictKindSeverityAndRank(t *testing.T) {
	assert.Equal(t, SeverityError, ConflictExactMatch.Severity())
	assert.Equal(t, SeverityError, ConflictTimeOverlap.Severity())
	assert.Equal(t, SeverityWarning, ConflictSameTeacherSameDay.Severity())
	assert.Equal(t, SeverityWarning, ConflictSameVenueSameDay.Severity())
	assert.Less(t, ConflictExactMatch.Rank(), ConflictTimeOverlap.Rank())
	assert.Less(t, ConflictTimeOverlap.Rank(), ConflictSameTeacherSameDay.Rank())
	assert.Less(t, ConflictSameTeacherSameDay.Rank(), ConflictSameVenueSameDay.Rank())
}
