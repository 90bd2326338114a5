package access

import (
	"fmt"

	"github.com/spec-kit/itsm-service/internal/domain"
	apperrors "github.com/spec-kit/itsm-service/pkg/util"
)

func denyAll(Scoped) bool { return false }

// Resolver combines role policies with the grant matrix.
type Resolver struct {
	policies map[domain.Role]Policy
	grants   *Grants
}

// NewResolver builds a resolver with the default policies and grants.
func NewResolver() (*Resolver, error) {
	grants, err := NewGrants()
	if err != nil {
		return nil, err
	}
	return NewResolverWith(grants, DefaultPolicies()...), nil
}

// NewResolverWith builds a resolver from explicit parts.
func NewResolverWith(grants *Grants, policies ...Policy) *Resolver {
	byRole := make(map[domain.Role]Policy, len(policies))
	for _, p := range policies {
		byRole[p.Role()] = p
	}
	return &Resolver{policies: byRole, grants: grants}
}

// ScopeFor returns the visibility predicate for principal over entity. Unknown roles get
// a predicate that rejects everything.
func (r *Resolver) ScopeFor(principal domain.Principal, entity EntityType) Predicate {
	policy, ok := r.policies[principal.Role]
	if !ok || !r.grants.Allowed(principal.Role, entity, ActionRead) {
		return denyAll
	}
	return func(e Scoped) bool {
		return policy.Visible(principal, e)
	}
}

// Can reports whether the principal's role holds the grant, ignoring record scope.
func (r *Resolver) Can(principal domain.Principal, entity EntityType, action Action) bool {
	if _, ok := r.policies[principal.Role]; !ok {
		return false
	}
	return r.grants.Allowed(principal.Role, entity, action)
}

// Authorize checks the grant and, when target is non-nil, that the target is in scope.
// It never mutates anything and must run before any write.
func (r *Resolver) Authorize(principal domain.Principal, entity EntityType, action Action, target Scoped) error {
	if !r.Can(principal, entity, action) {
		return apperrors.NewForbidden(fmt.Sprintf("role %q may not %s %s", principal.Role, action, entity))
	}
	if target != nil && !r.ScopeFor(principal, entity)(target) {
		return apperrors.NewForbidden(fmt.Sprintf("%s is outside your scope", entity))
	}
	return nil
}

// Filter keeps the items accepted by pred, preserving order.
func Filter[T Scoped](items []T, pred Predicate) []T {
	out := make([]T, 0, len(items))
	for _, item := range items {
		if pred(item) {
			out = append(out, item)
		}
	}
	return out
}
