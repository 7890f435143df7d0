package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/cppla/cracker/models"
	"github.com/cppla/cracker/store"
	"github.com/cppla/cracker/streak"
	"github.com/cppla/cracker/utils"
)

const defaultShareMessage = "Just shared my Christmas Cracker progress! 🎄"

// ShareController builds shareable progress summaries.
type ShareController struct {
	store *store.Store
}

// NewShareController creates a new ShareController instance.
func NewShareController(s *store.Store) *ShareController {
	return &ShareController{store: s}
}

type shareStats struct {
	TotalDays      int `json:"totalDays"`
	PerfectDays    int `json:"perfectDays"`
	CurrentStreak  int `json:"currentStreak"`
	LongestStreak  int `json:"longestStreak"`
	CompletionRate int `json:"completionRate"`
}

// ShareProgress returns a summary of the user's challenge so far. Nothing is
// stored.
func (s *ShareController) ShareProgress(ctx *gin.Context) {
	var req struct {
		UserID  string `json:"userId" binding:"required"`
		Message string `json:"message" binding:"max=280"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40040, "userId is required")
		return
	}
	if !actingAs(ctx, req.UserID) {
		return
	}

	rc := ctx.Request.Context()
	user, err := s.store.FindUserByID(rc, req.UserID)
	if err != nil {
		storeFailure(ctx, err, 40401, "user not found", 50040, "failed to share progress")
		return
	}
	history, err := s.store.ListProgress(rc, user.ID)
	if err != nil {
		storeFailure(ctx, err, 40401, "user not found", 50040, "failed to share progress")
		return
	}

	stats := streak.Compute(models.Days(history))
	message := utils.Sanitize(req.Message)
	if message == "" {
		message = defaultShareMessage
	}

	utils.Success(ctx, gin.H{
		"message": "Progress shared successfully!",
		"summary": gin.H{
			"userId":   user.ID,
			"userName": user.Name,
			"user":     userPayload(user),
			"message":  message,
			"stats": shareStats{
				TotalDays:      stats.TotalDaysTracked,
				PerfectDays:    stats.PerfectDays,
				CurrentStreak:  stats.CurrentStreak,
				LongestStreak:  stats.LongestStreak,
				CompletionRate: streak.PerfectDayRate(stats),
			},
			"sharedAt": time.Now().UTC(),
		},
		"shareUrl": "/community/share/" + user.ID,
	})
}

// RecentShares lists public shares. Shares are not persisted yet.
func (s *ShareController) RecentShares(ctx *gin.Context) {
	utils.Success(ctx, gin.H{
		"recentShares": []interface{}{},
		"message":      "No recent shares yet",
	})
}
