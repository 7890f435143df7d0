package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is a challenge participant. Users log in by email; there is no password.
type User struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	Name      string    `gorm:"size:128;not null" json:"name"`
	Email     string    `gorm:"size:255;not null;uniqueIndex" json:"email"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// BeforeCreate assigns a UUID and timestamps when not provided.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	u.UpdatedAt = now
	return nil
}

// UserRef is the display subset of User joined onto leaderboard rows.
// Column tags mirror User so migrations never disagree about the table.
type UserRef struct {
	ID    string `gorm:"primaryKey;size:36" json:"id"`
	Name  string `gorm:"size:128;not null" json:"name"`
	Email string `gorm:"size:255;not null;uniqueIndex" json:"email"`
}

func (UserRef) TableName() string {
	return "users"
}
