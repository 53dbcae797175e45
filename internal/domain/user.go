package domain

import (
	"errors"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

type Provider string

const (
	ProviderCredentials Provider = "credentials"
	ProviderGoogle      Provider = "google"
)

type Gender string

const (
	GenderMale   Gender = "MALE"
	GenderFemale Gender = "FEMALE"
	GenderOther  Gender = "OTHER"
)

type Department string

const (
	DeptAdmin Department = "ADMIN"
	DeptCSE   Department = "CSE"
	DeptIT    Department = "IT"
	DeptECE   Department = "ECE"
	DeptEEE   Department = "EEE"
	DeptMECH  Department = "MECH"
	DeptCIVIL Department = "CIVIL"
)

var Departments = []Department{DeptAdmin, DeptCSE, DeptIT, DeptECE, DeptEEE, DeptMECH, DeptCIVIL}

func (d Department) Valid() bool {
	for _, v := range Departments {
		if v == d {
			return true
		}
	}
	return false
}

type User struct {
	ID           string     `gorm:"primaryKey;size:36" json:"id"`
	Email        string     `gorm:"uniqueIndex;size:191;not null" json:"email"`
	PasswordHash string     `gorm:"column:password;size:191" json:"-"`
	Provider     Provider   `gorm:"size:16;not null;default:credentials" json:"provider"`
	Name         string     `gorm:"size:100;not null" json:"name"`
	Gender       Gender     `gorm:"size:16" json:"gender"`
	Department   Department `gorm:"size:16;index" json:"department"`
	RoleID       string     `gorm:"size:8;not null;index" json:"roleId"`
	Phone        string     `gorm:"size:20" json:"phone"`
	Address      string     `gorm:"size:255" json:"address"`
	Image        string     `gorm:"size:512" json:"image"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

func (User) TableName() string { return "users" }

func (u *User) Role() RoleName {
	r, _ := RoleByID(u.RoleID)
	return r.Name
}

// Identity is the authenticated caller as seen by services.
type Identity struct {
	ID         string
	Email      string
	Name       string
	Image      string
	Role       RoleName
	RoleID     string
	Department Department
}

func (u *User) Identity() Identity {
	return Identity{
		ID:         u.ID,
		Email:      u.Email,
		Name:       u.Name,
		Image:      u.Image,
		Role:       u.Role(),
		RoleID:     u.RoleID,
		Department: u.Department,
	}
}

func (id Identity) Is(roles ...RoleName) bool {
	for _, r := range roles {
		if id.Role == r {
			return true
		}
	}
	return false
}

// DefaultAvatar returns the placeholder image keyed on the name's first letter.
func DefaultAvatar(name string) string {
	initial := "u"
	if r, _ := utf8.DecodeRuneInString(strings.TrimSpace(name)); r != utf8.RuneError {
		initial = string(unicode.ToLower(r))
	}
	return "https://avatar.vercel.sh/" + initial
}

var (
	ErrDuplicateEmail = errors.New("email already registered")
	ErrCodeConsumed   = errors.New("one-time code already used")
)
