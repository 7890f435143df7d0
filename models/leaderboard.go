package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/cppla/cracker/streak"
)

// LeaderboardEntry caches a user's streak aggregate. It is rebuilt from the
// user's progress history on every save and never edited by hand.
type LeaderboardEntry struct {
	ID               string    `gorm:"primaryKey;size:36" json:"id"`
	UserID           string    `gorm:"size:36;not null;uniqueIndex" json:"userId"`
	CurrentStreak    int       `gorm:"not null" json:"currentStreak"`
	LongestStreak    int       `gorm:"not null" json:"longestStreak"`
	TotalDaysTracked int       `gorm:"not null" json:"totalDaysTracked"`
	PerfectDays      int       `gorm:"not null" json:"perfectDays"`
	LastUpdated      time.Time `gorm:"not null" json:"lastUpdated"`
	User             *UserRef  `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

// BeforeCreate assigns a UUID when not provided.
func (l *LeaderboardEntry) BeforeCreate(tx *gorm.DB) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	return nil
}

// Stats returns the aggregate held by the entry.
func (l LeaderboardEntry) Stats() streak.Stats {
	return streak.Stats{
		CurrentStreak:    l.CurrentStreak,
		LongestStreak:    l.LongestStreak,
		TotalDaysTracked: l.TotalDaysTracked,
		PerfectDays:      l.PerfectDays,
	}
}
