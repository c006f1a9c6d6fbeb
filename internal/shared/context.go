package shared

import (
	"context"

	"github.com/google/uuid"
)

// Tenant identifies the organization every core operation is scoped to.
// It is resolved by the edge (gateway or auth layer) before the core runs.
type Tenant struct {
	OrganizationID uuid.UUID
}

// Principal describes the authenticated actor as resolved by the edge.
type Principal struct {
	UserID uuid.UUID
	Role   string
}

type tenantContextKey struct{}

type principalContextKey struct{}

// ContextWithTenant stores the tenant in context.
func ContextWithTenant(ctx context.Context, t Tenant) context.Context {
	return context.WithValue(ctx, tenantContextKey{}, t)
}

// TenantFromContext extracts the tenant from context.
func TenantFromContext(ctx context.Context) (Tenant, bool) {
	t, ok := ctx.Value(tenantContextKey{}).(Tenant)
	return t, ok
}

// ContextWithPrincipal stores the principal in context.
func ContextWithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalContextKey{}, p)
}

// PrincipalFromContext extracts the principal from context.
func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalContextKey{}).(Principal)
	return p, ok
}
