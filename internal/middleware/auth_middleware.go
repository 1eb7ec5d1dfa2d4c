package middleware

import (
	"errors"
	"strings"

	"go-leave/internal/auth"
	autherrors "go-leave/internal/auth/errors"
	"go-leave/internal/domain"
	"go-leave/internal/shared/apperror"
	"go-leave/internal/shared/contextutil"
	"go-leave/internal/shared/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	ContextEmployeeID   = "employee_id"
	ContextEmployeeName = "employee_name"
	ContextDepartment   = "department"
	ContextPosition     = "position"
	ContextRole         = "role"
)

// AuthMiddleware verifies the bearer token (or access_token cookie) and puts
// the caller identity on the gin context.
func AuthMiddleware(tokens *auth.Tokens) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, found := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
		if !found {
			tokenString = ""
		}
		if tokenString == "" {
			if cookie, err := c.Cookie("access_token"); err == nil {
				tokenString = cookie
			}
		}
		if tokenString == "" {
			abortWith(c, autherrors.ErrTokenNotFound)
			return
		}

		claims, err := tokens.Parse(tokenString)
		if err != nil {
			abortWith(c, err)
			return
		}

		c.Set(ContextEmployeeID, claims.EmployeeID)
		c.Set(ContextEmployeeName, claims.EmployeeName)
		c.Set(ContextDepartment, claims.Department)
		c.Set(ContextPosition, claims.Position)
		c.Set(ContextRole, strings.ToLower(claims.Role))

		ctx := contextutil.WithEmployeeID(c.Request.Context(), claims.EmployeeID)
		logger := contextutil.GetLogger(ctx, zap.L()).With(zap.String("employee_id", claims.EmployeeID))
		c.Request = c.Request.WithContext(contextutil.WithLogger(ctx, logger))

		c.Next()
	}
}

// Actor reads the identity set by AuthMiddleware.
func Actor(c *gin.Context) domain.Actor {
	return domain.Actor{
		EmployeeID: c.GetString(ContextEmployeeID),
		Name:       c.GetString(ContextEmployeeName),
		Department: c.GetString(ContextDepartment),
		Position:   c.GetString(ContextPosition),
		Role:       c.GetString(ContextRole),
	}
}

func abortWith(c *gin.Context, err error) {
	var appErr *apperror.AppError
	if !errors.As(err, &appErr) {
		appErr = autherrors.ErrInvalidToken
	}
	response.Abort(c, appErr.HTTPStatus, appErr.Code, appErr.Message)
}
