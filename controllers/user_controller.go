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

// recentEntries is how many days of history the user lookup returns.
const recentEntries = 30

// UserController handles registration, lookup and sessions.
type UserController struct {
	store *store.Store
}

// NewUserController creates a new UserController instance.
func NewUserController(s *store.Store) *UserController {
	return &UserController{store: s}
}

// CreateUser registers a participant and their default challenge settings.
func (u *UserController) CreateUser(ctx *gin.Context) {
	var req struct {
		Name  string `json:"name" binding:"required"`
		Email string `json:"email" binding:"required,email"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40001, "name and a valid email are required")
		return
	}

	user, err := u.store.CreateUser(ctx.Request.Context(), utils.Sanitize(req.Name), req.Email)
	if err != nil {
		storeFailure(ctx, err, 40401, "user not found", 50001, "failed to create user")
		return
	}

	utils.Sugar.Infow("user created", "user_id", user.ID)
	utils.Created(ctx, gin.H{"user": user})
}

// GetUser looks a user up by email and returns the recent history and settings.
func (u *UserController) GetUser(ctx *gin.Context) {
	email := queryParam(ctx, "email")
	if email == "" {
		utils.Error(ctx, http.StatusBadRequest, 40002, "email is required")
		return
	}

	rc := ctx.Request.Context()
	user, err := u.store.FindUserByEmail(rc, email)
	if err != nil {
		storeFailure(ctx, err, 40401, "user not found", 50002, "failed to load user")
		return
	}
	entries, err := u.store.RecentProgress(rc, user.ID, recentEntries)
	if err != nil {
		storeFailure(ctx, err, 40401, "user not found", 50002, "failed to load user")
		return
	}
	settings, err := u.store.GetSettings(rc, user.ID)
	if err != nil {
		storeFailure(ctx, err, 40401, "user not found", 50002, "failed to load user")
		return
	}

	utils.Success(ctx, gin.H{
		"user":              user,
		"progressEntries":   entries,
		"challengeSettings": settings,
	})
}

// Login issues a session token for an existing user. Users are identified by
// email only.
func (u *UserController) Login(ctx *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40003, "email is required")
		return
	}

	user, err := u.store.FindUserByEmail(ctx.Request.Context(), req.Email)
	if err != nil {
		storeFailure(ctx, err, 40401, "user not found", 50003, "failed to load user")
		return
	}

	token, err := utils.GenerateToken(user.ID, user.Email, utils.TokenTTL)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50004, "failed to generate token")
		return
	}

	utils.Success(ctx, gin.H{
		"token":     token,
		"expiresAt": time.Now().Add(utils.TokenTTL).UTC(),
		"user":      user,
	})
}

// Logout invalidates the token by blacklisting it until expiration.
func (u *UserController) Logout(ctx *gin.Context) {
	token := ctx.GetString(middleware.ContextTokenKey)
	v, exists := ctx.Get(middleware.ContextClaimsKey)
	claims, ok := v.(*utils.Claims)
	if token == "" || !exists || !ok || claims == nil {
		utils.Error(ctx, http.StatusUnauthorized, 40105, "invalid token")
		return
	}

	expiresAt := time.Now().Add(utils.TokenTTL)
	if claims.ExpiresAt != nil {
		expiresAt = claims.ExpiresAt.Time
	}

	utils.BlacklistToken(ctx.Request.Context(), token, expiresAt)
	utils.Success(ctx, gin.H{"message": "logged out"})
}

// userPayload returns the display subset of a user.
func userPayload(user models.User) models.UserRef {
	return models.UserRef{ID: user.ID, Name: user.Name, Email: user.Email}
}
