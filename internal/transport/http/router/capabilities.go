package router

import (
	"net/http"

	"campus-leave/internal/domain"
	mdw "campus-leave/internal/transport/http/middleware"
)

var (
	admin   = domain.RoleAdmin
	hod     = domain.RoleHOD
	staff   = domain.RoleStaff
	student = domain.RoleStudent
)

func key(method, path string) string { return mdw.CapabilityKey(method, path) }

// Capabilities is the single role table for every guarded route.
func Capabilities() mdw.Capabilities {
	return mdw.Capabilities{
		// session and recovery
		key(http.MethodPost, "/login"):               mdw.Public(),
		key(http.MethodPost, "/logout"):              mdw.Public(),
		key(http.MethodPost, "/register"):            mdw.Public(),
		key(http.MethodPost, "/forgetPassword"):      mdw.Public(),
		key(http.MethodPost, "/match-otp"):           mdw.Public(),
		key(http.MethodPost, "/reset-password"):      mdw.Public(),
		key(http.MethodPost, "/verify"):              mdw.Public(),
		key(http.MethodGet, "/auth/google"):          mdw.Public(),
		key(http.MethodGet, "/auth/google/callback"): mdw.Public(),
		key(http.MethodGet, "/whoami"):               mdw.Authenticated(),
		key(http.MethodPatch, "/update-profile"):     mdw.Authenticated(),
		key(http.MethodPost, "/upload-image"):        mdw.Authenticated(),

		// accounts
		key(http.MethodPost, "/signup"):        mdw.Roles(admin),
		key(http.MethodPatch, "/user/:id"):     mdw.Roles(admin),
		key(http.MethodDelete, "/user/:id"):    mdw.Roles(admin),
		key(http.MethodPost, "/users"):         mdw.Roles(admin, hod),
		key(http.MethodGet, "/student"):        mdw.Roles(admin, student),
		key(http.MethodGet, "/dashboard-info"): mdw.Roles(admin),

		// leave lifecycle
		key(http.MethodPost, "/apply-leave"):        mdw.Authenticated(),
		key(http.MethodPatch, "/leave/:id"):         mdw.Roles(admin, staff, hod),
		key(http.MethodPatch, "/edit-leave/:id"):    mdw.Authenticated(),
		key(http.MethodDelete, "/delete-leave/:id"): mdw.Authenticated(),
		key(http.MethodGet, "/leaves"):              mdw.Roles(admin, hod, staff),
		key(http.MethodGet, "/personal-leaves/:id"): mdw.Authenticated(),
		key(http.MethodGet, "/leaves-balance/:id"):  mdw.Authenticated(),
		key(http.MethodGet, "/staff"):               mdw.Authenticated(),
		key(http.MethodGet, "/chart"):               mdw.Roles(admin),
		key(http.MethodGet, "/dashboard"):           mdw.Authenticated(),

		// blogs
		key(http.MethodPost, "/blogs"):       mdw.Roles(admin, student),
		key(http.MethodGet, "/blogs"):        mdw.Roles(admin, student),
		key(http.MethodPatch, "/blogs/:id"):  mdw.Roles(admin, student),
		key(http.MethodDelete, "/blogs/:id"): mdw.Roles(admin, student),
	}
}
