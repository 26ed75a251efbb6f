package auth

import (
	"context"
	"errors"
	"fmt"

	"grocerify/models"
)

var (
	ErrUnauthenticated  = errors.New("not logged in")
	ErrPermissionDenied = errors.New("permission denied")
)

// Principal is the logged-in account for the current command.
type Principal struct {
	Username string
	Role     models.Role
}

type principalKey struct{}

// WithPrincipal stores the principal in context.
func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// FromContext retrieves the principal from context (if any).
func FromContext(ctx context.Context) (*Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(*Principal)
	return p, ok && p != nil
}

// UserLookup is the slice of the account store the access checks need.
type UserLookup interface {
	GetByUsername(ctx context.Context, username string) (*models.User, error)
}

// RequirePrincipal ensures a principal is present in context.
func RequirePrincipal(ctx context.Context) (*Principal, error) {
	p, ok := FromContext(ctx)
	if !ok {
		return nil, ErrUnauthenticated
	}
	return p, nil
}

// RequireAdmin ensures the caller claims the admin role AND that the stored
// account still has it.
func RequireAdmin(ctx context.Context, users UserLookup) (*Principal, error) {
	p, err := RequirePrincipal(ctx)
	if err != nil {
		return nil, err
	}
	if p.Role != models.RoleAdmin {
		return nil, fmt.Errorf("%w: only admin can perform this action", ErrPermissionDenied)
	}
	if users == nil {
		return nil, errors.New("users store not configured")
	}
	u, err := users.GetByUsername(ctx, p.Username)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if !u.IsAdmin() {
		return nil, fmt.Errorf("%w: only admin can perform this action", ErrPermissionDenied)
	}
	return p, nil
}
