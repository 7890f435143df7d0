package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/cppla/cracker/models"
	"github.com/cppla/cracker/streak"
	"github.com/cppla/cracker/utils"
)

// UpsertLeaderboard stores the aggregate for a user, creating the row on
// first use. Repeating the call with the same stats changes nothing but
// lastUpdated.
func (s *Store) UpsertLeaderboard(ctx context.Context, userID string, stats streak.Stats) (models.LeaderboardEntry, error) {
	if strings.TrimSpace(userID) == "" {
		return models.LeaderboardEntry{}, fmt.Errorf("%w: userId is required", ErrInvalidInput)
	}
	row := models.LeaderboardEntry{
		UserID:           userID,
		CurrentStreak:    stats.CurrentStreak,
		LongestStreak:    stats.LongestStreak,
		TotalDaysTracked: stats.TotalDaysTracked,
		PerfectDays:      stats.PerfectDays,
		LastUpdated:      time.Now().UTC(),
	}
	err := s.do(ctx, "upsert_leaderboard", func(tx *gorm.DB) error {
		r := row
		return tx.Omit(clause.Associations).Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"current_streak", "longest_streak", "total_days_tracked", "perfect_days", "last_updated",
			}),
		}).Create(&r).Error
	})
	if err != nil {
		return models.LeaderboardEntry{}, err
	}
	return s.FindLeaderboardEntry(ctx, userID)
}

// FindLeaderboardEntry returns the aggregate row of one user with the user joined.
func (s *Store) FindLeaderboardEntry(ctx context.Context, userID string) (models.LeaderboardEntry, error) {
	var entry models.LeaderboardEntry
	err := s.do(ctx, "find_leaderboard_entry", func(tx *gorm.DB) error {
		return tx.Preload("User").Where("user_id = ?", userID).First(&entry).Error
	})
	return entry, err
}

// Leaderboard returns every aggregate ranked by current streak, then longest
// streak, then perfect days.
func (s *Store) Leaderboard(ctx context.Context) ([]models.LeaderboardEntry, error) {
	entries := make([]models.LeaderboardEntry, 0)
	err := s.do(ctx, "leaderboard", func(tx *gorm.DB) error {
		return tx.Preload("User").
			Order("current_streak desc").
			Order("longest_streak desc").
			Order("perfect_days desc").
			Order("user_id asc").
			Find(&entries).Error
	})
	return entries, err
}

// RecomputeUser rebuilds a user's aggregate from the full progress history.
func (s *Store) RecomputeUser(ctx context.Context, userID string) (models.LeaderboardEntry, error) {
	entry, err := s.recompute(ctx, userID)
	if err != nil {
		utils.LeaderboardRecomputations.WithLabelValues("error").Inc()
		return models.LeaderboardEntry{}, err
	}
	utils.LeaderboardRecomputations.WithLabelValues("ok").Inc()
	return entry, nil
}

func (s *Store) recompute(ctx context.Context, userID string) (models.LeaderboardEntry, error) {
	if _, err := s.FindUserByID(ctx, userID); err != nil {
		return models.LeaderboardEntry{}, err
	}
	history, err := s.ListProgress(ctx, userID)
	if err != nil {
		return models.LeaderboardEntry{}, err
	}
	return s.UpsertLeaderboard(ctx, userID, streak.Compute(models.Days(history)))
}

// RecomputeAll rebuilds the aggregate of every user, running at most
// concurrency recomputations at once. It returns how many users were done.
func (s *Store) RecomputeAll(ctx context.Context, concurrency int) (int, error) {
	users, err := s.ListUsers(ctx)
	if err != nil {
		return 0, err
	}
	if concurrency < 1 {
		concurrency = 1
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for _, u := range users {
		id := u.ID
		g.Go(func() error {
			if _, err := s.RecomputeUser(gctx, id); err != nil {
				return fmt.Errorf("recompute %s: %w", id, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}
	return len(users), nil
}
