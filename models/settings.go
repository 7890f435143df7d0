package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ChallengeSettings holds a user's personal goals for the challenge window.
type ChallengeSettings struct {
	ID                      string    `gorm:"primaryKey;size:36" json:"id"`
	UserID                  string    `gorm:"size:36;not null;uniqueIndex" json:"userId"`
	StartDate               time.Time `gorm:"type:date;not null" json:"startDate"`
	EndDate                 time.Time `gorm:"type:date;not null" json:"endDate"`
	StepsGoal               int       `gorm:"not null" json:"stepsGoal"`
	WaterGoal               float64   `gorm:"not null" json:"waterGoal"`   // litres
	ProteinGoal             float64   `gorm:"not null" json:"proteinGoal"` // grams
	SleepGoal               float64   `gorm:"not null" json:"sleepGoal"`   // hours
	ReadingGoal             int       `gorm:"not null" json:"readingGoal"` // minutes
	ExerciseSessionsPerWeek int       `gorm:"not null" json:"exerciseSessionsPerWeek"`
	AdultingTasksPerWeek    int       `gorm:"not null" json:"adultingTasksPerWeek"`
	CreatedAt               time.Time `json:"createdAt"`
	UpdatedAt               time.Time `json:"updatedAt"`
}

// BeforeCreate assigns a UUID when not provided.
func (s *ChallengeSettings) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}

// DefaultChallengeSettings returns the goals a new user starts with: the
// 1st to the 25th of December of now's year.
func DefaultChallengeSettings(userID string, now time.Time) ChallengeSettings {
	year := now.Year()
	return ChallengeSettings{
		UserID:                  userID,
		StartDate:               time.Date(year, time.December, 1, 0, 0, 0, 0, time.UTC),
		EndDate:                 time.Date(year, time.December, 25, 0, 0, 0, 0, time.UTC),
		StepsGoal:               8000,
		WaterGoal:               2.5,
		ProteinGoal:             120,
		SleepGoal:               7,
		ReadingGoal:             10,
		ExerciseSessionsPerWeek: 3,
		AdultingTasksPerWeek:    1,
	}
}

// All lists every persisted model for migrations.
func All() []interface{} {
	return []interface{}{&User{}, &ProgressEntry{}, &LeaderboardEntry{}, &ChallengeSettings{}}
}
