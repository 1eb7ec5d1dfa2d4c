package rbac

import (
	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"

	"go-leave/internal/domain"
)

const modelText = `[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[role_definition]
g = _, _

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = g(r.sub, p.sub) && r.obj == p.obj && r.act == p.act
`

const (
	ResourceLeave   = "leave"
	ResourceBalance = "balance"
	ResourceReport  = "report"

	ActionCreate         = "create"
	ActionReadOwn        = "read_own"
	ActionRead           = "read"
	ActionCancel         = "cancel"
	ActionRespond        = "respond"
	ActionReview         = "review"
	ActionReadDepartment = "read_department"
	ActionManage         = "manage"
	ActionExport         = "export"
)

// roleHierarchy lists child, parent pairs: a child holds every permission of
// its parent.
var roleHierarchy = [][]string{
	{domain.RoleReviewer, domain.RoleEmployee},
	{domain.RoleAdmin, domain.RoleReviewer},
}

var policies = [][]string{
	{domain.RoleEmployee, ResourceLeave, ActionCreate},
	{domain.RoleEmployee, ResourceLeave, ActionReadOwn},
	{domain.RoleEmployee, ResourceLeave, ActionCancel},
	{domain.RoleEmployee, ResourceLeave, ActionRespond},
	{domain.RoleEmployee, ResourceBalance, ActionReadOwn},

	{domain.RoleReviewer, ResourceLeave, ActionReview},
	{domain.RoleReviewer, ResourceLeave, ActionReadDepartment},
	{domain.RoleReviewer, ResourceBalance, ActionRead},
	{domain.RoleReviewer, ResourceReport, ActionRead},

	{domain.RoleAdmin, ResourceBalance, ActionManage},
	{domain.RoleAdmin, ResourceReport, ActionExport},
}

// NewEnforcer builds the role policy in memory.
func NewEnforcer() (*casbin.SyncedEnforcer, error) {
	m, err := model.NewModelFromString(modelText)
	if err != nil {
		return nil, err
	}
	e, err := casbin.NewSyncedEnforcer(m)
	if err != nil {
		return nil, err
	}
	if _, err := e.AddGroupingPolicies(roleHierarchy); err != nil {
		return nil, err
	}
	if _, err := e.AddPolicies(policies); err != nil {
		return nil, err
	}
	return e, nil
}
