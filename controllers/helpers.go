package controllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/cppla/cracker/middleware"
	"github.com/cppla/cracker/store"
	"github.com/cppla/cracker/utils"
)

// storeFailure maps a store error onto the response envelope. notFoundCode
// and failCode are the endpoint specific codes for 404 and 500.
func storeFailure(ctx *gin.Context, err error, notFoundCode int, notFoundMsg string, failCode int, failMsg string) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		utils.Error(ctx, http.StatusNotFound, notFoundCode, notFoundMsg)
	case errors.Is(err, store.ErrConflict):
		utils.Error(ctx, http.StatusConflict, 40900, err.Error())
	case errors.Is(err, store.ErrInvalidInput):
		utils.Error(ctx, http.StatusBadRequest, 40000, err.Error())
	default:
		utils.Sugar.Errorw(failMsg, "path", ctx.FullPath(), "error", err)
		utils.Error(ctx, http.StatusInternalServerError, failCode, failMsg)
	}
}

// actingAs rejects callers whose bearer token names a different user. Anonymous
// callers pass.
func actingAs(ctx *gin.Context, userID string) bool {
	caller, ok := middleware.AuthenticatedUserID(ctx)
	if ok && caller != userID {
		utils.Error(ctx, http.StatusForbidden, 40301, "token does not belong to this user")
		return false
	}
	return true
}

func queryParam(ctx *gin.Context, key string) string {
	return strings.TrimSpace(ctx.Query(key))
}
