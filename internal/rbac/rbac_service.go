package rbac

import (
	"strings"

	"go-leave/internal/domain"

	"github.com/casbin/casbin/v2"
	"go.uber.org/zap"
)

type Service interface {
	Enforce(req domain.EnforceRequest) (bool, error)
	Permissions(role string) ([][]string, error)
}

type service struct {
	enforcer *casbin.SyncedEnforcer
	logger   *zap.Logger
}

func NewService(enforcer *casbin.SyncedEnforcer, logger ...*zap.Logger) Service {
	l := zap.L().Named("rbac.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("rbac.service")
	}
	return &service{enforcer: enforcer, logger: l}
}

func (s *service) Enforce(req domain.EnforceRequest) (bool, error) {
	role := strings.ToLower(strings.TrimSpace(req.Role))
	if role == "" {
		return false, nil
	}

	allowed, err := s.enforcer.Enforce(role, req.Resource, req.Action)
	if err != nil {
		s.logger.Error("rbac enforce failed",
			zap.String("role", role),
			zap.String("resource", req.Resource),
			zap.String("action", req.Action),
			zap.Error(err),
		)
		return false, err
	}

	s.logger.Debug("rbac enforce result",
		zap.String("role", role),
		zap.String("resource", req.Resource),
		zap.String("action", req.Action),
		zap.Bool("allowed", allowed),
	)
	return allowed, nil
}

// Permissions returns resource, action pairs granted to role, inherited ones included.
func (s *service) Permissions(role string) ([][]string, error) {
	perms, err := s.enforcer.GetImplicitPermissionsForUser(strings.ToLower(role))
	if err != nil {
		return nil, err
	}
	out := make([][]string, 0, len(perms))
	for _, p := range perms {
		if len(p) == 3 {
			out = append(out, []string{p[1], p[2]})
		}
	}
	return out, nil
}
