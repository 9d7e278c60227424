package leave

import (
	"go-leave/internal/domain"
	"go-leave/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func RegisterRoutes(
	r *gin.RouterGroup,
	handler *Handler,
	rbacService middleware.RBACService,
	rdb *redis.Client,
	jwtSecret string,
	logger *zap.Logger,
) {
	readAll := middleware.RBACFlag(rbacService, domain.ResourceLeave, domain.ActionReadAll, "has_read_all")

	leaves := r.Group("/leaves")
	leaves.Use(
		middleware.AuthMiddleware(jwtSecret),
		middleware.ExtractUserID(),
		middleware.ContextLogger(logger),
	)
	{
		leaves.POST("",
			middleware.RBACAuthorize(rbacService, domain.ResourceLeave, domain.ActionCreate),
			middleware.Idempotency(rdb),
			handler.Create,
		)
		leaves.GET("", middleware.RBACAuthorize(rbacService, domain.ResourceLeave, domain.ActionRead), readAll, handler.GetAll)
		leaves.GET("/export", middleware.RBACAuthorize(rbacService, domain.ResourceLeave, domain.ActionExport), handler.Export)
		leaves.GET("/:id", middleware.RBACAuthorize(rbacService, domain.ResourceLeave, domain.ActionRead), readAll, handler.GetById)
		leaves.GET("/:id/proof", middleware.RBACAuthorize(rbacService, domain.ResourceLeave, domain.ActionRead), readAll, handler.GetProof)
		leaves.PUT("/:id/status", middleware.RBACAuthorize(rbacService, domain.ResourceLeave, domain.ActionApprove), handler.UpdateStatus)
		leaves.DELETE("/:id", middleware.RBACAuthorize(rbacService, domain.ResourceLeave, domain.ActionDelete), handler.Delete)
	}
}
