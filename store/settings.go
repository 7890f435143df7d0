package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/cppla/cracker/models"
)

// SettingsPatch carries the settings fields a caller wants to change. Nil
// fields are left as they are.
type SettingsPatch struct {
	StartDate               *time.Time
	EndDate                 *time.Time
	StepsGoal               *int
	WaterGoal               *float64
	ProteinGoal             *float64
	SleepGoal               *float64
	ReadingGoal             *int
	ExerciseSessionsPerWeek *int
	AdultingTasksPerWeek    *int
}

// GetSettings returns a user's challenge settings. A user without a row
// gets the defaults stored on first read.
func (s *Store) GetSettings(ctx context.Context, userID string) (models.ChallengeSettings, error) {
	if _, err := s.FindUserByID(ctx, userID); err != nil {
		return models.ChallengeSettings{}, err
	}
	var settings models.ChallengeSettings
	err := s.do(ctx, "get_settings", func(tx *gorm.DB) error {
		err := tx.Where("user_id = ?", userID).First(&settings).Error
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		settings = models.DefaultChallengeSettings(userID, time.Now().UTC())
		return tx.Create(&settings).Error
	})
	return settings, err
}

// UpdateSettings applies patch to a user's settings and returns the result.
func (s *Store) UpdateSettings(ctx context.Context, userID string, patch SettingsPatch) (models.ChallengeSettings, error) {
	settings, err := s.GetSettings(ctx, userID)
	if err != nil {
		return models.ChallengeSettings{}, err
	}
	patch.apply(&settings)
	if err := validateSettings(settings); err != nil {
		return models.ChallengeSettings{}, err
	}
	err = s.do(ctx, "update_settings", func(tx *gorm.DB) error {
		return tx.Save(&settings).Error
	})
	if err != nil {
		return models.ChallengeSettings{}, err
	}
	return settings, nil
}

func (p SettingsPatch) apply(s *models.ChallengeSettings) {
	if p.StartDate != nil {
		s.StartDate = models.TruncateDate(*p.StartDate)
	}
	if p.EndDate != nil {
		s.EndDate = models.TruncateDate(*p.EndDate)
	}
	if p.StepsGoal != nil {
		s.StepsGoal = *p.StepsGoal
	}
	if p.WaterGoal != nil {
		s.WaterGoal = *p.WaterGoal
	}
	if p.ProteinGoal != nil {
		s.ProteinGoal = *p.ProteinGoal
	}
	if p.SleepGoal != nil {
		s.SleepGoal = *p.SleepGoal
	}
	if p.ReadingGoal != nil {
		s.ReadingGoal = *p.ReadingGoal
	}
	if p.ExerciseSessionsPerWeek != nil {
		s.ExerciseSessionsPerWeek = *p.ExerciseSessionsPerWeek
	}
	if p.AdultingTasksPerWeek != nil {
		s.AdultingTasksPerWeek = *p.AdultingTasksPerWeek
	}
}

func validateSettings(s models.ChallengeSettings) error {
	switch {
	case s.EndDate.Before(s.StartDate):
		return fmt.Errorf("%w: endDate is before startDate", ErrInvalidInput)
	case s.StepsGoal < 0, s.ReadingGoal < 0:
		return fmt.Errorf("%w: goals must not be negative", ErrInvalidInput)
	case s.WaterGoal < 0, s.ProteinGoal < 0, s.SleepGoal < 0 || s.SleepGoal > 24:
		return fmt.Errorf("%w: goals must not be negative and sleep must fit in a day", ErrInvalidInput)
	case s.ExerciseSessionsPerWeek < 0 || s.ExerciseSessionsPerWeek > 7,
		s.AdultingTasksPerWeek < 0 || s.AdultingTasksPerWeek > 7:
		return fmt.Errorf("%w: weekly targets must be between 0 and 7", ErrInvalidInput)
	}
	return nil
}
