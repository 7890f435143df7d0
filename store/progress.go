package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/cppla/cracker/models"
	"github.com/cppla/cracker/utils"
)

// progressUpdateColumns are overwritten when a day is saved again.
var progressUpdateColumns = []string{
	"steps_completed", "water_goal_met", "protein_goal_met", "sleep_goal_met",
	"reading_completed", "supplements_taken", "exercise_completed", "adulting_task_done",
	"steps_count", "water_intake", "protein_intake", "sleep_hours",
	"reading_minutes", "exercise_minutes", "adulting_task",
	"updated_at",
}

// UpsertProgress saves one day's checklist, replacing any earlier save for
// the same user and date. The stored row is returned.
func (s *Store) UpsertProgress(ctx context.Context, entry models.ProgressEntry) (models.ProgressEntry, error) {
	if strings.TrimSpace(entry.UserID) == "" || entry.Date.IsZero() {
		return models.ProgressEntry{}, fmt.Errorf("%w: userId and date are required", ErrInvalidInput)
	}
	entry.Date = models.TruncateDate(entry.Date)
	entry.ID = ""
	entry.CreatedAt = time.Time{}

	if _, err := s.FindUserByID(ctx, entry.UserID); err != nil {
		return models.ProgressEntry{}, err
	}

	err := s.do(ctx, "upsert_progress", func(tx *gorm.DB) error {
		row := entry
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "date"}},
			DoUpdates: clause.AssignmentColumns(progressUpdateColumns),
		}).Create(&row).Error
	})
	if err != nil {
		return models.ProgressEntry{}, err
	}
	utils.ProgressUpserts.Inc()

	// the generated id is discarded on conflict, so read the row back
	return s.GetProgress(ctx, entry.UserID, entry.Date)
}

// GetProgress returns the entry for one user and calendar date.
func (s *Store) GetProgress(ctx context.Context, userID string, date time.Time) (models.ProgressEntry, error) {
	var entry models.ProgressEntry
	day := models.TruncateDate(date)
	err := s.do(ctx, "get_progress", func(tx *gorm.DB) error {
		return tx.Where("user_id = ? AND date = ?", userID, day).First(&entry).Error
	})
	return entry, err
}

// ListProgress returns a user's full history in ascending date order.
func (s *Store) ListProgress(ctx context.Context, userID string) ([]models.ProgressEntry, error) {
	entries := make([]models.ProgressEntry, 0)
	err := s.do(ctx, "list_progress", func(tx *gorm.DB) error {
		return tx.Where("user_id = ?", userID).Order("date asc").Find(&entries).Error
	})
	return entries, err
}

// RecentProgress returns at most n entries, newest first.
func (s *Store) RecentProgress(ctx context.Context, userID string, n int) ([]models.ProgressEntry, error) {
	if n <= 0 {
		return []models.ProgressEntry{}, nil
	}
	entries := make([]models.ProgressEntry, 0)
	err := s.do(ctx, "recent_progress", func(tx *gorm.DB) error {
		return tx.Where("user_id = ?", userID).Order("date desc").Limit(n).Find(&entries).Error
	})
	return entries, err
}
