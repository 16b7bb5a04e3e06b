package service

import (
	"sort"

	"github.com/betosaco/soulpath-sub003/internal/models"
)

// summarizeEntries classifies every pair of same-day entries that share a
// teacher or venue and counts the distinct entries involved.
func summarizeEntries(day models.DayOfWeek, entries []models.ScheduleEntry) *models.DaySummary {
	if entries == nil {
		entries = make([]models.ScheduleEntry, 0)
	}
	summary := &models.DaySummary{
		Day:            day,
		TotalSchedules: len(entries),
		Entries:        entries,
		Conflicts:      make([]models.DayConflict, 0),
	}

	duplicates := make(map[string]struct{})
	warned := make(map[string]struct{})
	for _, pair := range candidatePairs(entries) {
		a, b := entries[pair[0]], entries[pair[1]]
		info := ClassifyConflict(a, b)
		if info == nil {
			continue
		}
		summary.Conflicts = append(summary.Conflicts, models.DayConflict{
			EntryID:              a.ID,
			EntryKind:            a.Kind,
			ConflictingEntryID:   b.ID,
			ConflictingEntryKind: b.Kind,
			Kind:                 info.Kind,
			Severity:             info.Severity,
			Message:              info.Message,
		})
		target := warned
		if info.Severity == models.SeverityError {
			target = duplicates
		}
		target[a.Key()] = struct{}{}
		target[b.Key()] = struct{}{}
	}

	sort.SliceStable(summary.Conflicts, func(i, j int) bool {
		a, b := summary.Conflicts[i], summary.Conflicts[j]
		if a.Severity != b.Severity {
			return a.Severity == models.SeverityError
		}
		return a.Kind.Rank() < b.Kind.Rank()
	})

	summary.DuplicateCount = len(duplicates)
	for key := range warned {
		if _, dup := duplicates[key]; !dup {
			summary.WarningCount++
		}
	}
	return summary
}

// candidatePairs returns each unordered index pair (i < j) whose entries share
// a teacher or venue bucket, in ascending order. Pairs outside every bucket
// cannot conflict.
func candidatePairs(entries []models.ScheduleEntry) [][2]int {
	buckets := make(map[string][]int)
	for i, e := range entries {
		for _, key := range bucketKeys(e) {
			buckets[key] = append(buckets[key], i)
		}
	}

	seen := make(map[[2]int]struct{})
	pairs := make([][2]int, 0)
	for _, members := range buckets {
		for x := 0; x < len(members); x++ {
			for y := x + 1; y < len(members); y++ {
				pair := [2]int{members[x], members[y]}
				if _, ok := seen[pair]; ok {
					continue
				}
				seen[pair] = struct{}{}
				pairs = append(pairs, pair)
			}
		}
	}

	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i][0] != pairs[j][0] {
			return pairs[i][0] < pairs[j][0]
		}
		return pairs[i][1] < pairs[j][1]
	})
	return pairs
}

func bucketKeys(e models.ScheduleEntry) []string {
	keys := make([]string, 0, 2)
	if teacher := e.TeacherID(); teacher != "" {
		keys = append(keys, "teacher:"+teacher)
	}
	if venue := e.VenueID(); venue != "" {
		keys = append(keys, "venue:"+venue)
	}
	return keys
}
