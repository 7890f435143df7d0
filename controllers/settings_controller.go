package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/cppla/cracker/middleware"
	"github.com/cppla/cracker/models"
	"github.com/cppla/cracker/store"
	"github.com/cppla/cracker/utils"
)

// SettingsController reads and edits personal challenge goals.
type SettingsController struct {
	store *store.Store
}

// NewSettingsController creates a new SettingsController instance.
func NewSettingsController(s *store.Store) *SettingsController {
	return &SettingsController{store: s}
}

// GetSettings returns the challenge settings of userId.
func (s *SettingsController) GetSettings(ctx *gin.Context) {
	userID := queryParam(ctx, "userId")
	if userID == "" {
		utils.Error(ctx, http.StatusBadRequest, 40030, "userId is required")
		return
	}
	settings, err := s.store.GetSettings(ctx.Request.Context(), userID)
	if err != nil {
		storeFailure(ctx, err, 40401, "user not found", 50030, "failed to load settings")
		return
	}
	utils.Success(ctx, gin.H{"settings": settings})
}

// UpdateSettings patches the caller's own settings.
func (s *SettingsController) UpdateSettings(ctx *gin.Context) {
	userID, ok := middleware.AuthenticatedUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var req struct {
		StartDate               *string  `json:"startDate"`
		EndDate                 *string  `json:"endDate"`
		StepsGoal               *int     `json:"stepsGoal"`
		WaterGoal               *float64 `json:"waterGoal"`
		ProteinGoal             *float64 `json:"proteinGoal"`
		SleepGoal               *float64 `json:"sleepGoal"`
		ReadingGoal             *int     `json:"readingGoal"`
		ExerciseSessionsPerWeek *int     `json:"exerciseSessionsPerWeek"`
		AdultingTasksPerWeek    *int     `json:"adultingTasksPerWeek"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40031, "invalid request payload")
		return
	}

	patch := store.SettingsPatch{
		StepsGoal:               req.StepsGoal,
		WaterGoal:               req.WaterGoal,
		ProteinGoal:             req.ProteinGoal,
		SleepGoal:               req.SleepGoal,
		ReadingGoal:             req.ReadingGoal,
		ExerciseSessionsPerWeek: req.ExerciseSessionsPerWeek,
		AdultingTasksPerWeek:    req.AdultingTasksPerWeek,
	}
	var err error
	if patch.StartDate, err = optionalDate(req.StartDate); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40032, "startDate: "+err.Error())
		return
	}
	if patch.EndDate, err = optionalDate(req.EndDate); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40032, "endDate: "+err.Error())
		return
	}

	settings, err := s.store.UpdateSettings(ctx.Request.Context(), userID, patch)
	if err != nil {
		storeFailure(ctx, err, 40401, "user not found", 50031, "failed to update settings")
		return
	}
	utils.Success(ctx, gin.H{"settings": settings})
}

func optionalDate(raw *string) (*time.Time, error) {
	if raw == nil {
		return nil, nil
	}
	t, err := models.ParseDate(*raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
