package middleware

import (
	"net/http"
	"slices"

	"go-medical-appointment/internal/domain/entity"
	"go-medical-appointment/pkg/response"
)

// RequireRole admits authenticated users whose role name is in roles.
// Tokens carrying an unknown role ID are refused. Runs after Authenticate.
func RequireRole(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := GetRoleIDFromContext(r.Context()); !ok {
				response.Unauthorized(w, "Role information not found")
				return
			}

			actor, ok := GetActorFromContext(r.Context())
			if !ok || !slices.Contains(roles, actor.Role) {
				response.Forbidden(w, "You don't have permission to access this resource")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

var (
	RequireAdmin   = RequireRole(entity.RoleAdmin)
	RequireDoctor  = RequireRole(entity.RoleDoctor)
	RequirePatient = RequireRole(entity.RolePatient)
	RequireAnyRole = RequireRole(entity.RoleAdmin, entity.RoleDoctor, entity.RolePatient)
)
