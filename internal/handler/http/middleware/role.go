package middleware

import (
	"fmt"
	"net/http"

	"github.com/cmlabs-hris/hris-timesheet/internal/domain/user"
	"github.com/cmlabs-hris/hris-timesheet/internal/handler/http/response"
	"github.com/go-chi/jwtauth/v5"
)

// RequireEmployee rejects tokens that carry no employee_id
func RequireEmployee(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := EmployeeID(r); !ok {
			response.HandleError(w, user.ErrEmployeeIDRequired)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequirePermission checks if user has specific permission
func RequirePermission(permission user.Permission) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, claims, err := jwtauth.FromContext(r.Context())
			if err != nil {
				response.HandleError(w, fmt.Errorf("%w: required '%s'", user.ErrInsufficientPermissions, permission))
				return
			}

			roleStr, ok := claims["role"].(string)
			if !ok {
				response.HandleError(w, fmt.Errorf("%w: required '%s'", user.ErrInsufficientPermissions, permission))
				return
			}

			role := user.Role(roleStr)
			if !user.HasPermission(role, permission) {
				response.HandleError(w, fmt.Errorf("%w: required '%s', but user role is '%s'", user.ErrInsufficientPermissions, permission, role))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
