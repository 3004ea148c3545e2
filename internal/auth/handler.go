package auth

import (
	"log/slog"
	"net/http"

	"github.com/frahmantamala/workforce-portal/internal"
	"github.com/frahmantamala/workforce-portal/internal/transport"
)

type Verifier interface {
	Verify(tokenString string) (Actor, error)
}

type Handler struct {
	*transport.BaseHandler
	verifier Verifier
}

func NewHandler(base *transport.BaseHandler, verifier Verifier) *Handler {
	return &Handler{BaseHandler: base, verifier: verifier}
}

// AuthMiddleware resolves the bearer token into an Actor on the request context.
func (h *Handler) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := h.ExtractTokenFromHeader(r)
		if token == "" {
			h.Logger.Warn("auth middleware: missing authorization token", "path", r.URL.Path)
			h.HandleServiceError(w, internal.ErrInvalidToken)
			return
		}

		actor, err := h.verifier.Verify(token)
		if err != nil {
			h.Logger.Warn("auth middleware: token validation failed", "error", err)
			h.HandleServiceError(w, err)
			return
		}

		ctx := ContextWithActor(r.Context(), actor)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireRole rejects actors whose role is not listed.
func (h *Handler) RequireRole(roles ...Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, ok := ActorFromContext(r.Context())
			if !ok {
				h.HandleServiceError(w, internal.ErrInvalidToken)
				return
			}
			if !actor.HasRole(roles...) {
				h.Logger.Warn("access denied: role not allowed",
					slog.Int64("actor_id", actor.ID),
					slog.String("role", string(actor.Role)),
					slog.Any("required_roles", roles))
				h.HandleServiceError(w, internal.ErrRoleForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
