package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/cppla/cracker/models"
	"github.com/cppla/cracker/store"
	"github.com/cppla/cracker/streak"
	"github.com/cppla/cracker/utils"
)

// ProgressController records daily checklists and reports history.
type ProgressController struct {
	store *store.Store
	board *LeaderboardCache
}

// NewProgressController creates a new ProgressController instance.
func NewProgressController(s *store.Store, board *LeaderboardCache) *ProgressController {
	return &ProgressController{store: s, board: board}
}

type progressRequest struct {
	UserID string `json:"userId" binding:"required"`
	Date   string `json:"date" binding:"required"`

	StepsCompleted    bool `json:"stepsCompleted"`
	WaterGoalMet      bool `json:"waterGoalMet"`
	ProteinGoalMet    bool `json:"proteinGoalMet"`
	SleepGoalMet      bool `json:"sleepGoalMet"`
	ReadingCompleted  bool `json:"readingCompleted"`
	SupplementsTaken  bool `json:"supplementsTaken"`
	ExerciseCompleted bool `json:"exerciseCompleted"`
	AdultingTaskDone  bool `json:"adultingTaskDone"`

	StepsCount      *int     `json:"stepsCount" binding:"omitempty,min=0"`
	WaterIntake     *float64 `json:"waterIntake" binding:"omitempty,min=0"`
	ProteinIntake   *float64 `json:"proteinIntake" binding:"omitempty,min=0"`
	SleepHours      *float64 `json:"sleepHours" binding:"omitempty,min=0,max=24"`
	ReadingMinutes  *int     `json:"readingMinutes" binding:"omitempty,min=0"`
	ExerciseMinutes *int     `json:"exerciseMinutes" binding:"omitempty,min=0"`
	AdultingTask    *string  `json:"adultingTask" binding:"omitempty,max=255"`
}

func (r progressRequest) entry(date time.Time) models.ProgressEntry {
	return models.ProgressEntry{
		UserID:            r.UserID,
		Date:              date,
		StepsCompleted:    r.StepsCompleted,
		WaterGoalMet:      r.WaterGoalMet,
		ProteinGoalMet:    r.ProteinGoalMet,
		SleepGoalMet:      r.SleepGoalMet,
		ReadingCompleted:  r.ReadingCompleted,
		SupplementsTaken:  r.SupplementsTaken,
		ExerciseCompleted: r.ExerciseCompleted,
		AdultingTaskDone:  r.AdultingTaskDone,
		StepsCount:        r.StepsCount,
		WaterIntake:       r.WaterIntake,
		ProteinIntake:     r.ProteinIntake,
		SleepHours:        r.SleepHours,
		ReadingMinutes:    r.ReadingMinutes,
		ExerciseMinutes:   r.ExerciseMinutes,
		AdultingTask:      utils.SanitizePtr(r.AdultingTask),
	}
}

type progressItem struct {
	models.ProgressEntry
	CompletionRate int `json:"completionRate"`
}

type progressSummary struct {
	streak.Stats
	CompletionRate int `json:"completionRate"`
	PerfectDayRate int `json:"perfectDayRate"`
}

// GetProgress returns one day when date is given, otherwise the full
// history in ascending order with per-day completion and a summary.
func (p *ProgressController) GetProgress(ctx *gin.Context) {
	userID := queryParam(ctx, "userId")
	if userID == "" {
		utils.Error(ctx, http.StatusBadRequest, 40010, "userId is required")
		return
	}
	rc := ctx.Request.Context()

	if raw := queryParam(ctx, "date"); raw != "" {
		date, err := models.ParseDate(raw)
		if err != nil {
			utils.Error(ctx, http.StatusBadRequest, 40011, err.Error())
			return
		}
		entry, err := p.store.GetProgress(rc, userID, date)
		if err != nil {
			storeFailure(ctx, err, 40410, "no progress for this date", 50010, "failed to load progress")
			return
		}
		utils.Success(ctx, progressItem{ProgressEntry: entry, CompletionRate: streak.CompletionRate(entry.Day())})
		return
	}

	if _, err := p.store.FindUserByID(rc, userID); err != nil {
		storeFailure(ctx, err, 40401, "user not found", 50010, "failed to load progress")
		return
	}
	history, err := p.store.ListProgress(rc, userID)
	if err != nil {
		storeFailure(ctx, err, 40401, "user not found", 50010, "failed to load progress")
		return
	}

	items := make([]progressItem, len(history))
	for i, e := range history {
		items[i] = progressItem{ProgressEntry: e, CompletionRate: streak.CompletionRate(e.Day())}
	}
	days := models.Days(history)
	stats := streak.Compute(days)

	utils.Success(ctx, gin.H{
		"entries": items,
		"summary": progressSummary{
			Stats:          stats,
			CompletionRate: streak.OverallCompletionRate(days),
			PerfectDayRate: streak.PerfectDayRate(stats),
		},
	})
}

// SaveProgress upserts one day and refreshes the user's leaderboard entry.
func (p *ProgressController) SaveProgress(ctx *gin.Context) {
	var req progressRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40012, "userId and date are required and details must be in range")
		return
	}
	date, err := models.ParseDate(req.Date)
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40011, err.Error())
		return
	}
	if !actingAs(ctx, req.UserID) {
		return
	}

	rc := ctx.Request.Context()
	pingCtx, cancel := context.WithTimeout(rc, 3*time.Second)
	err = p.store.Ping(pingCtx)
	cancel()
	if err != nil {
		utils.Sugar.Errorw("database unreachable before saving progress", "error", err)
		utils.Error(ctx, http.StatusServiceUnavailable, 50301, "database connection failed")
		return
	}

	entry, err := p.store.UpsertProgress(rc, req.entry(date))
	if err != nil {
		storeFailure(ctx, err, 40401, "user not found", 50011, "failed to save progress")
		return
	}

	board, err := p.board.Recompute(rc, entry.UserID)
	if err != nil {
		storeFailure(ctx, err, 40401, "user not found", 50012, "failed to update leaderboard")
		return
	}

	utils.Sugar.Debugw("progress saved", "user_id", entry.UserID, "date", entry.Date.Format(models.DateLayout))
	utils.Success(ctx, gin.H{
		"entry": progressItem{ProgressEntry: entry, CompletionRate: streak.CompletionRate(entry.Day())},
		"stats": board.Stats(),
	})
}
