package access

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/itsm-service/internal/domain"
	apperrors "github.com/spec-kit/itsm-service/pkg/util"
)

func strPtr(s string) *string { return &s }

func newResolver(t *testing.T) *Resolver {
	t.Helper()
	r, err := NewResolver()
	require.NoError(t, err)
	return r
}

var (
	admin      = domain.Principal{UserID: "u-admin", Role: domain.RoleAdmin}
	technician = domain.Principal{UserID: "u-tech", Role: domain.RoleTechnician}
	clientA    = domain.Principal{UserID: "u-client", Role: domain.RoleClient, CompanyID: strPtr("c-a")}
	orphan     = domain.Principal{UserID: "u-orphan", Role: domain.RoleClient}
)

func TestScopeFor_ClientSeesOnlyOwnCompany(t *testing.T) {
	r := newResolver(t)
	tickets := []domain.Ticket{
		{ID: "t1", CompanyID: "c-a"},
		{ID: "t2", CompanyID: "c-b"},
		{ID: "t3", CompanyID: "c-a"},
	}

	visible := Filter(tickets, r.ScopeFor(clientA, EntityTicket))
	require.Len(t, visible, 2)
	assert.Equal(t, "t1", visible[0].ID)
	assert.Equal(t, "t3", visible[1].ID)

	for _, entity := range []EntityType{EntityCompany, EntityAsset, EntityService, EntityContract, EntityUser} {
		pred := r.ScopeFor(clientA, entity)
		assert.True(t, pred(domain.Company{ID: "c-a"}), entity)
		assert.False(t, pred(domain.Company{ID: "c-b"}), entity)
	}
}

func TestScopeFor_ClientWithoutCompanySeesNothing(t *testing.T) {
	r := newResolver(t)
	pred := r.ScopeFor(orphan, EntityTicket)
	assert.False(t, pred(domain.Ticket{CompanyID: "c-a"}))
	assert.False(t, pred(domain.Ticket{CompanyID: ""}))
}

func TestScopeFor_StaffSeeEverything(t *testing.T) {
	r := newResolver(t)
	for _, p := range []domain.Principal{admin, technician} {
		for _, entity := range []EntityType{EntityCompany, EntityUser, EntityAsset, EntityService, EntityContract, EntityTicket} {
			assert.True(t, r.ScopeFor(p, entity)(domain.Asset{CompanyID: "c-z"}), "%s %s", p.Role, entity)
		}
	}
}

func TestScopeFor_UnknownRoleSeesNothing(t *testing.T) {
	r := newResolver(t)
	ghost := domain.Principal{UserID: "x", Role: domain.Role("auditor"), CompanyID: strPtr("c-a")}
	assert.False(t, r.ScopeFor(ghost, EntityTicket)(domain.Ticket{CompanyID: "c-a"}))
	assert.True(t, apperrors.IsForbidden(r.Authorize(ghost, EntityTicket, ActionRead, nil)))
}

func TestAuthorize_GrantMatrix(t *testing.T) {
	r := newResolver(t)

	cases := []struct {
		principal domain.Principal
		entity    EntityType
		action    Action
		allowed   bool
	}{
		{admin, EntityUser, ActionDelete, true},
		{admin, EntityContract, ActionCreate, true},
		{technician, EntityTicket, ActionCreate, true},
		{technician, EntityTicket, ActionTransition, true},
		{technician, EntityTicket, ActionAssign, true},
		{technician, EntityAsset, ActionUpdate, true},
		{technician, EntityService, ActionCreate, true},
		{technician, EntityTicket, ActionDelete, false},
		{technician, EntityUser, ActionCreate, false},
		{technician, EntityContract, ActionUpdate, false},
		{technician, EntityCompany, ActionCreate, false},
		{clientA, EntityTicket, ActionCreate, true},
		{clientA, EntityTicket, ActionRead, true},
		{clientA, EntityTicket, ActionUpdate, false},
		{clientA, EntityTicket, ActionTransition, false},
		{clientA, EntityTicket, ActionAssign, false},
		{clientA, EntityAsset, ActionCreate, false},
		{clientA, EntityService, ActionUpdate, false},
		{clientA, EntityContract, ActionCreate, false},
		{clientA, EntityUser, ActionUpdate, false},
	}

	for _, tc := range cases {
		err := r.Authorize(tc.principal, tc.entity, tc.action, nil)
		if tc.allowed {
			assert.NoError(t, err, "%s %s %s", tc.principal.Role, tc.action, tc.entity)
		} else {
			assert.True(t, apperrors.IsForbidden(err), "%s %s %s", tc.principal.Role, tc.action, tc.entity)
		}
	}
}

func TestAuthorize_TargetOutsideScope(t *testing.T) {
	r := newResolver(t)

	err := r.Authorize(clientA, EntityTicket, ActionCreate, domain.Ticket{CompanyID: "c-b"})
	assert.True(t, apperrors.IsForbidden(err))

	require.NoError(t, r.Authorize(clientA, EntityTicket, ActionCreate, domain.Ticket{CompanyID: "c-a"}))

	err = r.Authorize(orphan, EntityTicket, ActionCreate, domain.Ticket{CompanyID: "c-a"})
	assert.True(t, apperrors.IsForbidden(err))
}
