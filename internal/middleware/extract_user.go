package middleware

import (
	"net/http"

	"go-leave/internal/shared/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func ExtractUserID() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		userID, exists := ctx.Get("user_id")
		if !exists {
			response.Abort(ctx, http.StatusUnauthorized, "UNAUTHORIZED", "User is not authenticated")
			return
		}

		userIDStr, ok := userID.(string)
		if !ok || userIDStr == "" {
			response.Abort(ctx, http.StatusUnauthorized, "INVALID_USER_ID", "Invalid user_id format")
			return
		}
		if _, err := uuid.Parse(userIDStr); err != nil {
			response.Abort(ctx, http.StatusUnauthorized, "INVALID_USER_ID", "Invalid user_id format")
			return
		}

		ctx.Set("user_id_validated", userIDStr)
		ctx.Next()
	}
}
