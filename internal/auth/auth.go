// Package auth resolves the acting user from a bearer token. Login and
// session management live outside this service; tokens are only verified here.
package auth

import (
	"context"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

type Role string

const (
	RoleEmployee Role = "employee"
	RoleManager  Role = "manager"
	RoleAdmin    Role = "admin"
)

func ParseRole(raw string) (Role, bool) {
	switch r := Role(strings.ToLower(strings.TrimSpace(raw))); r {
	case RoleEmployee, RoleManager, RoleAdmin:
		return r, true
	}
	return "", false
}

// Actor is the authenticated caller of an operation.
type Actor struct {
	ID   int64 `json:"id"`
	Role Role  `json:"role"`
}

// CanApprove reports whether the actor may approve or reject other people's work.
func (a Actor) CanApprove() bool {
	return a.Role == RoleManager || a.Role == RoleAdmin
}

func (a Actor) HasRole(roles ...Role) bool {
	for _, r := range roles {
		if a.Role == r {
			return true
		}
	}
	return false
}

// Claims represents JWT token claims
type Claims struct {
	UserID int64  `json:"uid"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

type ctxKey string

const contextActorKey ctxKey = "actor"

func ContextWithActor(ctx context.Context, actor Actor) context.Context {
	return context.WithValue(ctx, contextActorKey, actor)
}

func ActorFromContext(ctx context.Context) (Actor, bool) {
	if ctx == nil {
		return Actor{}, false
	}
	actor, ok := ctx.Value(contextActorKey).(Actor)
	return actor, ok
}
