package notification

import (
	"go-leave/internal/domain"
	"go-leave/internal/middleware"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func RegisterRoutes(
	r *gin.RouterGroup,
	handler *Handler,
	rbacService middleware.RBACService,
	jwtSecret string,
	logger *zap.Logger,
) {
	notifications := r.Group("/notifications")
	notifications.Use(middleware.AuthMiddleware(jwtSecret))
	notifications.Use(middleware.ExtractUserID())
	notifications.Use(middleware.ContextLogger(logger))
	{
		notifications.GET("", middleware.RBACAuthorize(rbacService, domain.ResourceNotification, domain.ActionRead), handler.List)
		notifications.GET("/unread-count", middleware.RBACAuthorize(rbacService, domain.ResourceNotification, domain.ActionRead), handler.UnreadCount)
		notifications.PATCH("/read-all", middleware.RBACAuthorize(rbacService, domain.ResourceNotification, domain.ActionUpdate), handler.MarkAllAsRead)
		notifications.PATCH("/:id/read", middleware.RBACAuthorize(rbacService, domain.ResourceNotification, domain.ActionUpdate), handler.MarkAsRead)
	}
}
