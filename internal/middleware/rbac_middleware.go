package middleware

import (
	"net/http"

	"go-leave/internal/domain"
	"go-leave/internal/shared/apperror"
	"go-leave/internal/shared/response"

	"github.com/gin-gonic/gin"
)

// RBACService is satisfied by anything that can enforce a role policy.
type RBACService interface {
	Enforce(req domain.EnforceRequest) (bool, error)
}

func RBACAuthorize(service RBACService, resource, action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString(ContextRole)
		if c.GetString(ContextEmployeeID) == "" {
			response.Abort(c, http.StatusUnauthorized, apperror.CodeUnauthorized, "missing auth context")
			return
		}

		allowed, err := service.Enforce(domain.EnforceRequest{
			Role:     role,
			Resource: resource,
			Action:   action,
		})
		if err != nil {
			response.Abort(c, http.StatusInternalServerError, apperror.CodeInternalError, apperror.ErrInternal.Message)
			return
		}

		if !allowed {
			response.Error(c, http.StatusForbidden, apperror.CodeForbidden,
				apperror.ErrForbidden.Message,
				map[string]string{"required": resource + ":" + action},
			)
			c.Abort()
			return
		}
		c.Next()
	}
}
