package service

import (
	"strings"
	"time"

	"campus-leave/internal/domain"
	"campus-leave/pkg/apperr"
)

const (
	msgInvalidInput = "Invalid input"
	msgUserNotFound = "User not found"
)

type clock func() time.Time

func normalizeEmail(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

// sortFor validates sortBy against allowed. Empty sortBy keeps the repository default.
func sortFor(sortBy, order string, allowed ...string) (domain.Sort, error) {
	if sortBy == "" {
		return domain.Sort{}, nil
	}
	for _, a := range allowed {
		if a == sortBy {
			return domain.Sort{Column: sortBy, Desc: order == "desc"}, nil
		}
	}
	return domain.Sort{}, apperr.Field(msgInvalidInput, "sortBy", "unsupported sort field "+sortBy)
}

func canViewUser(viewer domain.Identity, userID string) bool {
	return viewer.ID == userID || viewer.Role != domain.RoleStudent
}
