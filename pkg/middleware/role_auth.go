package middleware

import (
	"context"
	"net/http"
)

// RoleAdmin may read every owner's records
const RoleAdmin = "admin"

// RoleAuthMiddleware checks if the user has one of the required roles. It
// must run after JWTAuthMiddleware.
func RoleAuthMiddleware(allowedRoles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role, ok := GetUserRole(r.Context())
			if !ok {
				sendUnauthorized(w, r, "User role not found")
				return
			}

			for _, allowed := range allowedRoles {
				if role == allowed {
					next.ServeHTTP(w, r)
					return
				}
			}
			sendApiErrorResponse(w, GetRequestID(r.Context()), http.StatusForbidden, "FORBIDDEN", "Insufficient permissions")
		})
	}
}

// RequireAdmin middleware that requires Admin role
func RequireAdmin(next http.Handler) http.Handler {
	return RoleAuthMiddleware(RoleAdmin)(next)
}

func GetUserRole(ctx context.Context) (string, bool) {
	role, ok := ctx.Value(RoleKey).(string)
	return role, ok && role != ""
}
