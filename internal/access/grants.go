package access

import (
	"fmt"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"

	"github.com/spec-kit/itsm-service/internal/domain"
)

// EntityType names a scoped resource.
type EntityType string

const (
	EntityCompany  EntityType = "company"
	EntityUser     EntityType = "user"
	EntityAsset    EntityType = "asset"
	EntityService  EntityType = "service"
	EntityContract EntityType = "contract"
	EntityTicket   EntityType = "ticket"
	EntitySystem   EntityType = "system_config"
)

// Action names an operation on an entity.
type Action string

const (
	ActionRead       Action = "read"
	ActionCreate     Action = "create"
	ActionUpdate     Action = "update"
	ActionDelete     Action = "delete"
	ActionTransition Action = "transition"
	ActionAssign     Action = "assign"
)

const grantModel = `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = r.sub == p.sub && (p.obj == "*" || r.obj == p.obj) && (p.act == "*" || r.act == p.act)
`

// defaultGrants is the role x entity x action matrix.
var defaultGrants = [][]string{
	{string(domain.RoleAdmin), "*", "*"},

	{string(domain.RoleTechnician), "*", string(ActionRead)},
	{string(domain.RoleTechnician), string(EntityTicket), string(ActionCreate)},
	{string(domain.RoleTechnician), string(EntityTicket), string(ActionUpdate)},
	{string(domain.RoleTechnician), string(EntityTicket), string(ActionTransition)},
	{string(domain.RoleTechnician), string(EntityTicket), string(ActionAssign)},
	{string(domain.RoleTechnician), string(EntityAsset), string(ActionCreate)},
	{string(domain.RoleTechnician), string(EntityAsset), string(ActionUpdate)},
	{string(domain.RoleTechnician), string(EntityService), string(ActionCreate)},
	{string(domain.RoleTechnician), string(EntityService), string(ActionUpdate)},

	{string(domain.RoleClient), "*", string(ActionRead)},
	{string(domain.RoleClient), string(EntityTicket), string(ActionCreate)},
}

// Grants answers whether a role may perform an action on an entity type. It does not
// look at individual records; record visibility is the policy's job.
type Grants struct {
	enforcer *casbin.SyncedEnforcer
}

// NewGrants builds the enforcer loaded with the default matrix.
func NewGrants() (*Grants, error) {
	m, err := model.NewModelFromString(grantModel)
	if err != nil {
		return nil, fmt.Errorf("load grant model: %w", err)
	}
	enforcer, err := casbin.NewSyncedEnforcer(m)
	if err != nil {
		return nil, fmt.Errorf("create enforcer: %w", err)
	}
	if _, err := enforcer.AddPolicies(defaultGrants); err != nil {
		return nil, fmt.Errorf("load grants: %w", err)
	}
	return &Grants{enforcer: enforcer}, nil
}

// Allowed reports whether role holds the grant. Enforcer errors deny.
func (g *Grants) Allowed(role domain.Role, entity EntityType, action Action) bool {
	ok, err := g.enforcer.Enforce(string(role), string(entity), string(action))
	if err != nil {
		return false
	}
	return ok
}
