package models

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// DayOfWeek is one of the seven English weekday names.
type DayOfWeek string

const (
	Monday    DayOfWeek = "Monday"
	Tuesday   DayOfWeek = "Tuesday"
	Wednesday DayOfWeek = "Wednesday"
	Thursday  DayOfWeek = "Thursday"
	Friday    DayOfWeek = "Friday"
	Saturday  DayOfWeek = "Saturday"
	Sunday    DayOfWeek = "Sunday"
)

// Weekdays lists every DayOfWeek in calendar order starting on Monday.
var Weekdays = []DayOfWeek{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

// ParseDayOfWeek resolves a weekday name case-insensitively into its canonical form.
func ParseDayOfWeek(raw string) (DayOfWeek, error) {
	trimmed := strings.TrimSpace(raw)
	for _, day := range Weekdays {
		if strings.EqualFold(trimmed, string(day)) {
			return day, nil
		}
	}
	return "", fmt.Errorf("unknown day of week %q", raw)
}

// Valid reports whether d is one of the canonical weekday names.
func (d DayOfWeek) Valid() bool {
	for _, day := range Weekdays {
		if d == day {
			return true
		}
	}
	return false
}

// TimeOfDay counts minutes since midnight in the studio's operating timezone.
type TimeOfDay int

// MaxTimeOfDay is 23:59.
const MaxTimeOfDay TimeOfDay = 24*60 - 1

// ParseTimeOfDay parses a 24h "HH:MM" clock value.
func ParseTimeOfDay(raw string) (TimeOfDay, error) {
	parts := strings.Split(strings.TrimSpace(raw), ":")
	if len(parts) != 2 || len(parts[1]) != 2 || len(parts[0]) == 0 || len(parts[0]) > 2 {
		return 0, fmt.Errorf("invalid time %q: expected HH:MM", raw)
	}
	hours, err := strconv.Atoi(parts[0])
	if err != nil || hours < 0 || hours > 23 {
		return 0, fmt.Errorf("invalid time %q: hour out of range", raw)
	}
	minutes, err := strconv.Atoi(parts[1])
	if err != nil || minutes < 0 || minutes > 59 {
		return 0, fmt.Errorf("invalid time %q: minute out of range", raw)
	}
	return TimeOfDay(hours*60 + minutes), nil
}

// Valid reports whether t lies within a single day.
func (t TimeOfDay) Valid() bool {
	return t >= 0 && t <= MaxTimeOfDay
}

// String renders t as "HH:MM".
func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", int(t)/60, int(t)%60)
}

// MarshalJSON encodes t as an "HH:MM" string.
func (t TimeOfDay) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// UnmarshalJSON accepts either an "HH:MM" string or a minute count.
func (t *TimeOfDay) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		var minutes int
		if numErr := json.Unmarshal(data, &minutes); numErr != nil {
			return fmt.Errorf("time of day must be HH:MM or minutes: %w", err)
		}
		*t = TimeOfDay(minutes)
		if !t.Valid() {
			return fmt.Errorf("time of day %d out of range", minutes)
		}
		return nil
	}
	parsed, err := ParseTimeOfDay(raw)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// TimeRange is a half-open interval [Start, End) within one day.
type TimeRange struct {
	Start TimeOfDay `json:"start"`
	End   TimeOfDay `json:"end"`
}

// Valid reports whether both bounds are in range and Start precedes End.
func (r TimeRange) Valid() bool {
	return r.Start.Valid() && r.End.Valid() && r.Start < r.End
}

// Overlaps reports whether the two half-open ranges share at least one minute.
// Back-to-back ranges (r.End == o.Start) do not overlap.
func (r TimeRange) Overlaps(o TimeRange) bool {
	return r.Start < o.End && o.Start < r.End
}

// Within reports whether r lies entirely inside outer.
func (r TimeRange) Within(outer TimeRange) bool {
	return r.Start >= outer.Start && r.End <= outer.End
}

// Duration returns the length of the range in minutes.
func (r TimeRange) Duration() int {
	return int(r.End - r.Start)
}

func (r TimeRange) String() string {
	return r.Start.String() + " - " + r.End.String()
}

// ScheduleKind distinguishes teacher schedules from venue schedules.
type ScheduleKind string

const (
	KindTeacher ScheduleKind = "teacher"
	KindVenue   ScheduleKind = "venue"
)

// ParseScheduleKind resolves a kind name case-insensitively.
func ParseScheduleKind(raw string) (ScheduleKind, error) {
	switch ScheduleKind(strings.ToLower(strings.TrimSpace(raw))) {
	case KindTeacher:
		return KindTeacher, nil
	case KindVenue:
		return KindVenue, nil
	}
	return "", fmt.Errorf("unknown schedule type %q", raw)
}

// ScheduleEntry is one recurring weekly slot owned by a teacher or a venue.
// For teacher entries SecondaryID holds the venue the teacher works at.
type ScheduleEntry struct {
	ID            string       `json:"id"`
	Kind          ScheduleKind `json:"type"`
	OwnerID       string       `json:"ownerId"`
	SecondaryID   string       `json:"secondaryId,omitempty"`
	OwnerName     string       `json:"ownerName,omitempty"`
	SecondaryName string       `json:"secondaryName,omitempty"`
	Day           DayOfWeek    `json:"dayOfWeek"`
	Range         TimeRange    `json:"range"`
	IsAvailable   bool         `json:"isAvailable"`
	Capacity      int          `json:"capacity,omitempty"`
	MaxBookings   int          `json:"maxBookings,omitempty"`
}

// TeacherID returns the teacher owning the entry, or "" for venue entries.
func (e ScheduleEntry) TeacherID() string {
	if e.Kind == KindTeacher {
		return e.OwnerID
	}
	return ""
}

// VenueID returns the venue the entry occupies: the owner of a venue entry or
// the linked venue of a teacher entry.
func (e ScheduleEntry) VenueID() string {
	switch e.Kind {
	case KindVenue:
		return e.OwnerID
	case KindTeacher:
		return e.SecondaryID
	}
	return ""
}

// Key identifies the entry across both schedule tables.
func (e ScheduleEntry) Key() string {
	return string(e.Kind) + ":" + e.ID
}

// TeacherLabel is the display name of the teacher, falling back to its id.
func (e ScheduleEntry) TeacherLabel() string {
	if e.Kind != KindTeacher {
		return ""
	}
	if e.OwnerName != "" {
		return e.OwnerName
	}
	return e.OwnerID
}

// VenueLabel is the display name of the venue, falling back to its id.
func (e ScheduleEntry) VenueLabel() string {
	switch e.Kind {
	case KindVenue:
		if e.OwnerName != "" {
			return e.OwnerName
		}
		return e.OwnerID
	case KindTeacher:
		if e.SecondaryName != "" {
			return e.SecondaryName
		}
		return e.SecondaryID
	}
	return ""
}
