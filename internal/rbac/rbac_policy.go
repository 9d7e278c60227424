package rbac

import (
	"go-leave/internal/domain"
	"go-leave/internal/user"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
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

// DefaultPolicies grants employees self-service access; admins inherit
// everything employees can do.
var DefaultPolicies = [][]string{
	{user.RoleEmployee, domain.ResourceLeave, domain.ActionCreate},
	{user.RoleEmployee, domain.ResourceLeave, domain.ActionRead},
	{user.RoleEmployee, domain.ResourceNotification, domain.ActionRead},
	{user.RoleEmployee, domain.ResourceNotification, domain.ActionUpdate},
	{user.RoleEmployee, domain.ResourceUser, domain.ActionReadSelf},
	{user.RoleEmployee, domain.ResourceUser, domain.ActionEditSelf},

	{user.RoleAdmin, domain.ResourceLeave, domain.ActionApprove},
	{user.RoleAdmin, domain.ResourceLeave, domain.ActionDelete},
	{user.RoleAdmin, domain.ResourceLeave, domain.ActionReadAll},
	{user.RoleAdmin, domain.ResourceLeave, domain.ActionExport},
	{user.RoleAdmin, domain.ResourceUser, domain.ActionRead},
}

var DefaultGroupings = [][]string{
	{user.RoleAdmin, user.RoleEmployee},
}

// NewEnforcer builds an in-memory enforcer loaded with the default policy.
func NewEnforcer() (*casbin.Enforcer, error) {
	m, err := model.NewModelFromString(modelText)
	if err != nil {
		return nil, err
	}

	e, err := casbin.NewEnforcer(m)
	if err != nil {
		return nil, err
	}

	if _, err := e.AddPolicies(DefaultPolicies); err != nil {
		return nil, err
	}
	if _, err := e.AddGroupingPolicies(DefaultGroupings); err != nil {
		return nil, err
	}
	return e, nil
}
