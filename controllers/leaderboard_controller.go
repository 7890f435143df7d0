package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cppla/cracker/utils"
)

// LeaderboardController exposes the ranked aggregates.
type LeaderboardController struct {
	board *LeaderboardCache
}

// NewLeaderboardController creates a new LeaderboardController instance.
func NewLeaderboardController(board *LeaderboardCache) *LeaderboardController {
	return &LeaderboardController{board: board}
}

// GetLeaderboard returns every user's aggregate, best first.
func (l *LeaderboardController) GetLeaderboard(ctx *gin.Context) {
	entries, err := l.board.Get(ctx.Request.Context())
	if err != nil {
		storeFailure(ctx, err, 40420, "leaderboard not found", 50020, "failed to load leaderboard")
		return
	}
	utils.Success(ctx, gin.H{"entries": entries})
}

// RecomputeLeaderboard rebuilds one user's aggregate from their history.
func (l *LeaderboardController) RecomputeLeaderboard(ctx *gin.Context) {
	var req struct {
		UserID string `json:"userId" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40020, "userId is required")
		return
	}
	if !actingAs(ctx, req.UserID) {
		return
	}

	entry, err := l.board.Recompute(ctx.Request.Context(), req.UserID)
	if err != nil {
		storeFailure(ctx, err, 40401, "user not found", 50021, "failed to update leaderboard")
		return
	}
	utils.Success(ctx, gin.H{"entry": entry})
}
