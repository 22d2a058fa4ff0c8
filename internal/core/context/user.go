// Package context provides request-scoped values extraction.
package context

import (
	"context"
)

// Roles known to the service.
const (
	RoleAdmin   = "admin"
	RoleCashier = "cashier"
)

// UserContext contains the authenticated staff member.
type UserContext struct {
	UserID   string
	Username string
	Role     string
}

// IsAdmin reports whether the user has the admin role.
func (u *UserContext) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

type userContextKey struct{}

// WithUser adds UserContext to context.
func WithUser(ctx context.Context, user *UserContext) context.Context {
	return context.WithValue(ctx, userContextKey{}, user)
}

// GetUser returns UserContext from context.
func GetUser(ctx context.Context) *UserContext {
	if v, ok := ctx.Value(userContextKey{}).(*UserContext); ok {
		return v
	}
	return nil
}

// GetUserID returns user ID from context or empty string.
func GetUserID(ctx context.Context) string {
	if u := GetUser(ctx); u != nil {
		return u.UserID
	}
	return ""
}

// HasRole checks if user has one of the given roles.
func HasRole(ctx context.Context, roles ...string) bool {
	u := GetUser(ctx)
	if u == nil {
		return false
	}
	for _, r := range roles {
		if u.Role == r {
			return true
		}
	}
	return false
}
