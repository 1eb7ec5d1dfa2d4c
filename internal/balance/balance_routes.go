package balance

import (
	"go-leave/internal/middleware"
	"go-leave/internal/rbac"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler, rbacService rbac.Service) {
	balances := r.Group("/balances")
	{
		balances.GET("/mine", middleware.RBACAuthorize(rbacService, rbac.ResourceBalance, rbac.ActionReadOwn), handler.Mine)
		balances.GET("/:employee_id", middleware.RBACAuthorize(rbacService, rbac.ResourceBalance, rbac.ActionRead), handler.ForEmployee)
		balances.PUT("/:employee_id/:leave_type", middleware.RBACAuthorize(rbacService, rbac.ResourceBalance, rbac.ActionManage), handler.SetTotal)
	}
}
