package report

import (
	"go-leave/internal/middleware"
	"go-leave/internal/rbac"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler, rbacService rbac.Service) {
	reports := r.Group("/reports")
	{
		reports.GET("/departments/:department/stats", middleware.RBACAuthorize(rbacService, rbac.ResourceReport, rbac.ActionRead), handler.DepartmentStats)
		reports.GET("/leaves", middleware.RBACAuthorize(rbacService, rbac.ResourceReport, rbac.ActionRead), handler.Requests)
		reports.GET("/leaves/export", middleware.RBACAuthorize(rbacService, rbac.ResourceReport, rbac.ActionExport), handler.Export)
		reports.GET("/calendar", middleware.RBACAuthorize(rbacService, rbac.ResourceReport, rbac.ActionRead), handler.Calendar)
	}
}
