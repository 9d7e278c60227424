package user

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
	users := r.Group("/users")
	users.Use(middleware.AuthMiddleware(jwtSecret))
	users.Use(middleware.ExtractUserID())
	users.Use(middleware.ContextLogger(logger))
	{
		users.GET("/me",
			middleware.RateLimitByUser(3, 10),
			middleware.RBACAuthorize(rbacService, domain.ResourceUser, domain.ActionReadSelf),
			handler.Me,
		)

		users.PUT("/me/avatar",
			middleware.RateLimitByUser(0.5, 2),
			middleware.RBACAuthorize(rbacService, domain.ResourceUser, domain.ActionEditSelf),
			handler.UploadAvatar,
		)

		users.GET("",
			middleware.RateLimitByUser(3, 10),
			middleware.RBACAuthorize(rbacService, domain.ResourceUser, domain.ActionRead),
			handler.GetAll,
		)

		users.GET("/options",
			middleware.RateLimitByUser(3, 10),
			middleware.RBACAuthorize(rbacService, domain.ResourceUser, domain.ActionRead),
			handler.Options,
		)
	}
}
