package models

// ConflictKind classifies how a candidate collides with an existing entry.
type ConflictKind string

const (
	ConflictExactMatch         ConflictKind = "exact_match"
	ConflictTimeOverlap        ConflictKind = "time_overlap"
	ConflictSameTeacherSameDay ConflictKind = "same_teacher_same_day"
	ConflictSameVenueSameDay   ConflictKind = "same_venue_same_day"
)

// Severity decides whether a conflict blocks the write or is advisory.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Severity returns the fixed severity of the kind.
func (k ConflictKind) Severity() Severity {
	switch k {
	case ConflictExactMatch, ConflictTimeOverlap:
		return SeverityError
	default:
		return SeverityWarning
	}
}

// Rank orders kinds from most to least severe; lower is more severe.
func (k ConflictKind) Rank() int {
	switch k {
	case ConflictExactMatch:
		return 0
	case ConflictTimeOverlap:
		return 1
	case ConflictSameTeacherSameDay:
		return 2
	case ConflictSameVenueSameDay:
		return 3
	}
	return 4
}

// ConflictInfo describes a single collision with an existing entry.
type ConflictInfo struct {
	Kind               ConflictKind  `json:"type"`
	Message            string        `json:"message"`
	ConflictingEntryID string        `json:"conflictingScheduleId"`
	ConflictingEntry   ScheduleEntry `json:"conflictingSchedule"`
	Severity           Severity      `json:"severity"`
}

// DuplicateCheckResult is the outcome of checking one candidate entry.
type DuplicateCheckResult struct {
	HasDuplicates bool           `json:"hasDuplicates"`
	Conflicts     []ConflictInfo `json:"conflicts"`
	Warnings      []string       `json:"warnings"`
}

// DayConflict records one conflicting pair found while summarising a day.
type DayConflict struct {
	EntryID              string       `json:"scheduleId"`
	EntryKind            ScheduleKind `json:"scheduleType"`
	ConflictingEntryID   string       `json:"conflictingScheduleId"`
	ConflictingEntryKind ScheduleKind `json:"conflictingScheduleType"`
	Kind                 ConflictKind `json:"type"`
	Severity           Severity     `json:"severity"`
	Message            string       `json:"message"`
}

// DaySummary aggregates conflicts across every entry of a day. DuplicateCount
// and WarningCount count distinct entries, not pairs.
type DaySummary struct {
	Day            DayOfWeek       `json:"day"`
	TotalSchedules int             `json:"totalSchedules"`
	DuplicateCount int             `json:"duplicateCount"`
	WarningCount   int             `json:"warningCount"`
	Entries        []ScheduleEntry `json:"entries"`
	Conflicts      []DayConflict   `json:"conflicts"`
}

// EntryStatus reports how an entry fared in the summary: "duplicate", "warning" or "ok".
// Entries are matched on kind and id since a teacher and a venue entry may share an id.
func (s DaySummary) EntryStatus(entry ScheduleEntry) string {
	status := "ok"
	for _, c := range s.Conflicts {
		involved := (c.EntryKind == entry.Kind && c.EntryID == entry.ID) ||
			(c.ConflictingEntryKind == entry.Kind && c.ConflictingEntryID == entry.ID)
		if !involved {
			continue
		}
		if c.Severity == SeverityError {
			return "duplicate"
		}
		status = "warning"
	}
	return status
}

// ResourceSummary groups day summaries for one teacher or venue across the week.
type ResourceSummary struct {
	Kind     ScheduleKind `json:"type"`
	OwnerID  string       `json:"ownerId"`
	Days     []DaySummary `json:"days"`
	Total    int          `json:"totalSchedules"`
	Problems int          `json:"problemCount"`
}
