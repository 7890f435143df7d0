package models

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/cppla/cracker/streak"
)

// DateLayout is the wire format of a calendar date.
const DateLayout = "2006-01-02"

// ErrInvalidDate is returned by ParseDate for unparseable input.
var ErrInvalidDate = errors.New("date must be YYYY-MM-DD or RFC 3339")

// ProgressEntry stores one user's checklist for one calendar day.
// (user_id, date) is unique; writes go through an upsert.
type ProgressEntry struct {
	ID     string    `gorm:"primaryKey;size:36" json:"id"`
	UserID string    `gorm:"size:36;not null;uniqueIndex:idx_progress_user_date,priority:1" json:"userId"`
	Date   time.Time `gorm:"type:date;not null;uniqueIndex:idx_progress_user_date,priority:2" json:"date"`

	StepsCompleted    bool `gorm:"not null" json:"stepsCompleted"`
	WaterGoalMet      bool `gorm:"not null" json:"waterGoalMet"`
	ProteinGoalMet    bool `gorm:"not null" json:"proteinGoalMet"`
	SleepGoalMet      bool `gorm:"not null" json:"sleepGoalMet"`
	ReadingCompleted  bool `gorm:"not null" json:"readingCompleted"`
	SupplementsTaken  bool `gorm:"not null" json:"supplementsTaken"`
	ExerciseCompleted bool `gorm:"not null" json:"exerciseCompleted"`
	AdultingTaskDone  bool `gorm:"not null" json:"adultingTaskDone"`

	StepsCount      *int     `json:"stepsCount,omitempty"`
	WaterIntake     *float64 `json:"waterIntake,omitempty"`
	ProteinIntake   *float64 `json:"proteinIntake,omitempty"`
	SleepHours      *float64 `json:"sleepHours,omitempty"`
	ReadingMinutes  *int     `json:"readingMinutes,omitempty"`
	ExerciseMinutes *int     `json:"exerciseMinutes,omitempty"`
	AdultingTask    *string  `gorm:"size:255" json:"adultingTask,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// BeforeCreate assigns a UUID and timestamps when not provided.
func (p *ProgressEntry) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now
	return nil
}

// Day projects the checklist flags onto the streak calculator's input.
func (p ProgressEntry) Day() streak.Day {
	return streak.Day{
		Steps:       p.StepsCompleted,
		Water:       p.WaterGoalMet,
		Protein:     p.ProteinGoalMet,
		Sleep:       p.SleepGoalMet,
		Reading:     p.ReadingCompleted,
		Supplements: p.SupplementsTaken,
		Exercise:    p.ExerciseCompleted,
		Adulting:    p.AdultingTaskDone,
	}
}

// Days projects entries in order.
func Days(entries []ProgressEntry) []streak.Day {
	days := make([]streak.Day, len(entries))
	for i, e := range entries {
		days[i] = e.Day()
	}
	return days
}

// ParseDate accepts YYYY-MM-DD or an RFC 3339 timestamp and returns the
// calendar date at midnight UTC. Time of day is discarded.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(DateLayout, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return TruncateDate(t), nil
}

// TruncateDate drops the time of day, keeping t's calendar date.
func TruncateDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
