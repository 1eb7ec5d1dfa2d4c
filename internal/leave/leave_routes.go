package leave

import (
	"go-leave/internal/middleware"
	"go-leave/internal/rbac"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes expects r to be behind the auth middleware. idempotency
// guards request creation.
func RegisterRoutes(
	r *gin.RouterGroup,
	handler *Handler,
	rbacService rbac.Service,
	idempotency gin.HandlerFunc,
) {
	leaves := r.Group("/leaves")
	{
		leaves.POST("", middleware.RBACAuthorize(rbacService, rbac.ResourceLeave, rbac.ActionCreate), idempotency, handler.Create)
		leaves.GET("/mine", middleware.RBACAuthorize(rbacService, rbac.ResourceLeave, rbac.ActionReadOwn), handler.ListMine)
		leaves.GET("/:id", middleware.RBACAuthorize(rbacService, rbac.ResourceLeave, rbac.ActionReadOwn), handler.GetById)
		leaves.GET("/:id/history", middleware.RBACAuthorize(rbacService, rbac.ResourceLeave, rbac.ActionReadOwn), handler.History)
		leaves.POST("/:id/cancel", middleware.RBACAuthorize(rbacService, rbac.ResourceLeave, rbac.ActionCancel), handler.Cancel)
		leaves.POST("/:id/respond", middleware.RBACAuthorize(rbacService, rbac.ResourceLeave, rbac.ActionRespond), handler.Respond)
		leaves.POST("/:id/approve", middleware.RBACAuthorize(rbacService, rbac.ResourceLeave, rbac.ActionReview), handler.Approve)
		leaves.POST("/:id/reject", middleware.RBACAuthorize(rbacService, rbac.ResourceLeave, rbac.ActionReview), handler.Reject)
		leaves.POST("/:id/request-info", middleware.RBACAuthorize(rbacService, rbac.ResourceLeave, rbac.ActionReview), handler.RequestInfo)
	}

	r.GET("/departments/:department/leaves",
		middleware.RBACAuthorize(rbacService, rbac.ResourceLeave, rbac.ActionReadDepartment),
		handler.ListByDepartment,
	)
}
