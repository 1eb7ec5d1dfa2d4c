package rbac

import (
	"testing"

	"go-leave/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) Service {
	t.Helper()
	enforcer, err := NewEnforcer()
	require.NoError(t, err)
	return NewService(enforcer)
}

func TestRBACService_Enforce(t *testing.T) {
	svc := newTestService(t)

	tests := []struct {
		name     string
		role     string
		resource string
		action   string
		want     bool
	}{
		{"employee creates leave", domain.RoleEmployee, ResourceLeave, ActionCreate, true},
		{"employee cannot review", domain.RoleEmployee, ResourceLeave, ActionReview, false},
		{"reviewer reviews", domain.RoleReviewer, ResourceLeave, ActionReview, true},
		{"reviewer inherits create", domain.RoleReviewer, ResourceLeave, ActionCreate, true},
		{"reviewer cannot manage balances", domain.RoleReviewer, ResourceBalance, ActionManage, false},
		{"admin inherits review", domain.RoleAdmin, ResourceLeave, ActionReview, true},
		{"admin inherits employee", domain.RoleAdmin, ResourceBalance, ActionReadOwn, true},
		{"admin exports", domain.RoleAdmin, ResourceReport, ActionExport, true},
		{"role is case insensitive", "Reviewer", ResourceReport, ActionRead, true},
		{"unknown role", "guest", ResourceLeave, ActionCreate, false},
		{"empty role", "", ResourceLeave, ActionCreate, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			allowed, err := svc.Enforce(domain.EnforceRequest{Role: tt.role, Resource: tt.resource, Action: tt.action})
			assert.NoError(t, err)
			assert.Equal(t, tt.want, allowed)
		})
	}
}

func TestRBACService_Permissions(t *testing.T) {
	svc := newTestService(t)

	employee, err := svc.Permissions(domain.RoleEmployee)
	assert.NoError(t, err)
	admin, err := svc.Permissions(domain.RoleAdmin)
	assert.NoError(t, err)

	assert.Contains(t, employee, []string{ResourceLeave, ActionCreate})
	assert.NotContains(t, employee, []string{ResourceLeave, ActionReview})
	assert.Contains(t, admin, []string{ResourceLeave, ActionCreate})
	assert.Contains(t, admin, []string{ResourceReport, ActionExport})
	assert.Greater(t, len(admin), len(employee))
}
