package domain

type RoleName string

const (
	RoleAdmin   RoleName = "ADMIN"
	RoleHOD     RoleName = "HOD"
	RoleStaff   RoleName = "STAFF"
	RoleStudent RoleName = "STUDENT"
)

// Role is reference data seeded at startup. IDs are stable and double as the
// role filter values accepted by the user listing.
type Role struct {
	ID       string   `gorm:"primaryKey;size:8" json:"id"`
	Name     RoleName `gorm:"uniqueIndex;size:16;not null" json:"name"`
	Priority int      `gorm:"not null" json:"priority"`
}

func (Role) TableName() string { return "roles" }

var Roles = []Role{
	{ID: "1", Name: RoleAdmin, Priority: 1},
	{ID: "2", Name: RoleHOD, Priority: 2},
	{ID: "3", Name: RoleStaff, Priority: 3},
	{ID: "4", Name: RoleStudent, Priority: 4},
}

func RoleByID(id string) (Role, bool) {
	for _, r := range Roles {
		if r.ID == id {
			return r, true
		}
	}
	return Role{}, false
}

func RoleIDOf(name RoleName) string {
	for _, r := range Roles {
		if r.Name == name {
			return r.ID
		}
	}
	return ""
}

func (n RoleName) Valid() bool { return RoleIDOf(n) != "" }
