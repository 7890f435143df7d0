// Package streak computes streak and completion statistics over one user's
// daily checklist history.
//
// Every function here is pure: callers pass an ascending-by-date snapshot and
// get plain values back. Missing calendar dates are not zero-activity days;
// only the records that exist are considered.
package streak

import "math"

// FlagCount is the number of checklist flags on a day.
const FlagCount = 8

// Day is one calendar day's checklist.
type Day struct {
	Steps       bool
	Water       bool
	Protein     bool
	Sleep       bool
	Reading     bool
	Supplements bool
	Exercise    bool
	// Adulting is a weekly task. It counts as activity but never towards a
	// perfect day.
	Adulting bool
}

// Stats is the aggregate persisted into a leaderboard entry.
type Stats struct {
	CurrentStreak    int `json:"currentStreak"`
	LongestStreak    int `json:"longestStreak"`
	TotalDaysTracked int `json:"totalDaysTracked"`
	PerfectDays      int `json:"perfectDays"`
}

// HasActivity reports whether any flag is set.
func (d Day) HasActivity() bool {
	return d.Steps || d.Water || d.Protein || d.Sleep ||
		d.Reading || d.Supplements || d.Exercise || d.Adulting
}

// IsPerfect reports whether every daily flag is set.
func (d Day) IsPerfect() bool {
	return d.Steps && d.Water && d.Protein && d.Sleep &&
		d.Reading && d.Supplements && d.Exercise
}

// Completed returns the number of set flags, adulting included.
func (d Day) Completed() int {
	n := 0
	for _, f := range [FlagCount]bool{d.Steps, d.Water, d.Protein, d.Sleep, d.Reading, d.Supplements, d.Exercise, d.Adulting} {
		if f {
			n++
		}
	}
	return n
}

// LongestAndPerfect makes a single forward pass and returns the longest run of
// consecutive records with activity and the number of perfect records.
func LongestAndPerfect(days []Day) (longest, perfect int) {
	temp := 0
	for _, d := range days {
		if d.HasActivity() {
			temp++
			if temp > longest {
				longest = temp
			}
		} else {
			temp = 0
		}
		if d.IsPerfect() {
			perfect++
		}
	}
	return longest, perfect
}

// CurrentStreak counts trailing records with activity, walking backward from
// the most recent one. Adjacency is by position in the slice, not by calendar
// day.
func CurrentStreak(days []Day) int {
	n := 0
	for i := len(days) - 1; i >= 0; i-- {
		if !days[i].HasActivity() {
			break
		}
		n++
	}
	return n
}

// CompletionRate returns the percentage of the eight flags set on d.
func CompletionRate(d Day) int {
	return percent(d.Completed(), FlagCount)
}

// Compute returns the full aggregate for an ascending history.
func Compute(days []Day) Stats {
	longest, perfect := LongestAndPerfect(days)
	return Stats{
		CurrentStreak:    CurrentStreak(days),
		LongestStreak:    longest,
		TotalDaysTracked: len(days),
		PerfectDays:      perfect,
	}
}

// OverallCompletionRate is the share of all flags set across the history.
func OverallCompletionRate(days []Day) int {
	total := 0
	for _, d := range days {
		total += d.Completed()
	}
	return percent(total, FlagCount*len(days))
}

// PerfectDayRate is the share of tracked days that were perfect.
func PerfectDayRate(s Stats) int {
	return percent(s.PerfectDays, s.TotalDaysTracked)
}

func percent(part, whole int) int {
	if whole <= 0 {
		return 0
	}
	return int(math.Round(100 * float64(part) / float64(whole)))
}
