package auth

import (
	"fmt"
	"strings"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	stringadapter "github.com/casbin/casbin/v2/persist/string-adapter"
	"github.com/ribat/admissions/internal/app/models"
)

// rbacModel matches a role against a gin route template and HTTP method. Templates are compared
// exactly so /applications/export never falls under /applications/:id.
const rbacModel = `
[request_definition]
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

// DefaultPolicy lets teachers view applications and the dashboard; admins inherit that
// and alone may edit, decide, export and delete
const DefaultPolicy = `
p, teacher, /api/v1/applications, GET
p, teacher, /api/v1/applications/stats, GET
p, teacher, /api/v1/applications/:id, GET
p, teacher, /api/v1/dashboard/ws, GET
p, admin, /api/v1/applications/export, GET
p, admin, /api/v1/applications/:id, PUT
p, admin, /api/v1/applications/:id/approve, POST
p, admin, /api/v1/applications/:id/reject, POST
p, admin, /api/v1/applications/:id, DELETE
g, admin, teacher
`

// AuthorizationService decides which role may call which staff route
type AuthorizationService struct {
	enforcer *casbin.SyncedEnforcer
}

// NewAuthorizationService builds the enforcer from DefaultPolicy
func NewAuthorizationService() (*AuthorizationService, error) {
	return NewAuthorizationServiceWithPolicy(DefaultPolicy)
}

// NewAuthorizationServiceWithPolicy builds the enforcer from a CSV policy text
func NewAuthorizationServiceWithPolicy(policy string) (*AuthorizationService, error) {
	m, err := model.NewModelFromString(rbacModel)
	if err != nil {
		return nil, fmt.Errorf("failed to load RBAC model: %w", err)
	}

	adapter := stringadapter.NewAdapter(strings.TrimSpace(policy))
	enforcer, err := casbin.NewSyncedEnforcer(m, adapter)
	if err != nil {
		return nil, fmt.Errorf("failed to create RBAC enforcer: %w", err)
	}

	return &AuthorizationService{enforcer: enforcer}, nil
}

// Authorize reports whether role may perform method on route, a gin route template such as
// "/api/v1/applications/:id"
func (s *AuthorizationService) Authorize(role models.Role, route, method string) (bool, error) {
	if !role.Valid() {
		return false, nil
	}
	allowed, err := s.enforcer.Enforce(string(role), route, strings.ToUpper(method))
	if err != nil {
		return false, fmt.Errorf("RBAC enforce failed: %w", err)
	}
	return allowed, nil
}
