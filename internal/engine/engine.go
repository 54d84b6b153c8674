// Package engine holds the pure streak and reward-point computations shared
// by the attendance and reward flows. Functions here never touch storage;
// callers read the current state, invoke the engine and persist the result.
package engine

import (
	"sort"

	"github.com/thebethel/portal-api/internal/models"
)

// RecordAttendance applies one present/absent decision for targetDate to the
// given date sets and returns the updated sets plus the new streak value.
//
// Re-marking is idempotent: targetDate is first removed from both sets, so a
// repeated mark is never additive and a date can live in at most one set.
// On a present mark the streak is the number of attendance dates not after
// targetDate. This deliberately counts every prior attendance, not a maximal
// run of consecutive days; existing balances depend on that reading, so it
// must not be "corrected" to a true consecutive streak. An absent mark always
// resets the streak to zero.
//
// Inputs are treated as immutable; the returned slices are fresh, sorted
// ascending and deduplicated.
func RecordAttendance(attendanceDates, absentDates []string, targetDate string, present bool) (newAttendance, newAbsent []string, streak int) {
	newAttendance = removeDate(attendanceDates, targetDate)
	newAbsent = removeDate(absentDates, targetDate)

	if !present {
		newAbsent = insertDate(newAbsent, targetDate)
		return newAttendance, newAbsent, 0
	}

	newAttendance = insertDate(newAttendance, targetDate)
	for _, d := range newAttendance {
		if d <= targetDate {
			streak++
		}
	}
	return newAttendance, newAbsent, streak
}

// TotalPoints sums the dollar amounts across the reward ledger. Entries with
// unparseable amounts carry a zero DollarAmount and contribute nothing.
func TotalPoints(rewards []models.RewardEntry) int {
	total := 0
	for _, entry := range rewards {
		total += entry.Dollars.Int()
	}
	return total
}

// AppendReward appends entry to the ledger and returns the new ledger and
// its recomputed total. Existing entries are never reordered or dropped.
func AppendReward(rewards []models.RewardEntry, entry models.RewardEntry) ([]models.RewardEntry, int) {
	updated := make([]models.RewardEntry, 0, len(rewards)+1)
	updated = append(updated, rewards...)
	updated = append(updated, entry)
	return updated, TotalPoints(updated)
}

// ResolvePoints decides which balance to persist after a recompute. A
// computed sum of zero or less is treated as "no information" and the cached
// balance is kept; the cache may only ever be replaced by a positive sum.
func ResolvePoints(computed, cached int) int {
	if computed <= 0 {
		return cached
	}
	return computed
}

// removeDate returns a copy of dates without target. ISO yyyy-MM-dd strings
// order lexicographically, so plain string comparison is date comparison.
func removeDate(dates []string, target string) []string {
	out := make([]string, 0, len(dates))
	for _, d := range dates {
		if d != target {
			out = append(out, d)
		}
	}
	return out
}

// insertDate returns a sorted, deduplicated copy of dates including target.
func insertDate(dates []string, target string) []string {
	out := make([]string, 0, len(dates)+1)
	seen := make(map[string]struct{}, len(dates)+1)
	for _, d := range dates {
		if _, dup := seen[d]; dup {
			continue
		}
		seen[d] = struct{}{}
		out = append(out, d)
	}
	if _, dup := seen[target]; !dup {
		out = append(out, target)
	}
	sort.Strings(out)
	return out
}
