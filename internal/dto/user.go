package dto

import (
	"time"

	"campus-leave/internal/domain"
)

type SignupRequest struct {
	Email      string            `json:"email" binding:"required,email,max=191"`
	Password   string            `json:"password" binding:"required,min=6,max=72"`
	Name       string            `json:"name" binding:"required,max=100"`
	Gender     domain.Gender     `json:"gender" binding:"required,oneof=MALE FEMALE OTHER"`
	Department domain.Department `json:"department" binding:"required,oneof=ADMIN CSE IT ECE EEE MECH CIVIL"`
	RoleID     string            `json:"roleId" binding:"required,oneof=1 2 3 4"`
	Phone      string            `json:"phone" binding:"required,max=20"`
	Address    string            `json:"address" binding:"max=255"`
	Image      string            `json:"image" binding:"omitempty,url,max=512"`
}

// RegisterRequest is the public student sign-up form.
type RegisterRequest struct {
	Email      string            `json:"email" binding:"required,email,max=191"`
	Password   string            `json:"password" binding:"required,min=6,max=72"`
	Name       string            `json:"name" binding:"required,max=100"`
	Gender     domain.Gender     `json:"gender" binding:"required,oneof=MALE FEMALE OTHER"`
	Department domain.Department `json:"department" binding:"required,oneof=CSE IT ECE EEE MECH CIVIL"`
	Phone      string            `json:"phone" binding:"required,max=20"`
	Address    string            `json:"address" binding:"max=255"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	Token string   `json:"token"`
	User  UserView `json:"user"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type MatchOTPRequest struct {
	Email string `json:"email" binding:"required,email"`
	OTP   string `json:"otp" binding:"required,len=4,numeric"`
}

type ResetPasswordRequest struct {
	Email    string `json:"email" binding:"required,email"`
	OTP      string `json:"otp" binding:"required,len=4,numeric"`
	Password string `json:"password" binding:"required,min=6,max=72"`
}

type VerifyRequest struct {
	Token string `json:"token"`
}

type UpdateProfileRequest struct {
	Name    *string        `json:"name" binding:"omitempty,min=1,max=100"`
	Phone   *string        `json:"phone" binding:"omitempty,min=1,max=20"`
	Address *string        `json:"address" binding:"omitempty,max=255"`
	Gender  *domain.Gender `json:"gender" binding:"omitempty,oneof=MALE FEMALE OTHER"`
}

type UpdateUserRequest struct {
	Email      *string            `json:"email" binding:"omitempty,email,max=191"`
	Name       *string            `json:"name" binding:"omitempty,min=1,max=100"`
	Gender     *domain.Gender     `json:"gender" binding:"omitempty,oneof=MALE FEMALE OTHER"`
	Department *domain.Department `json:"department" binding:"omitempty,oneof=ADMIN CSE IT ECE EEE MECH CIVIL"`
	RoleID     *string            `json:"roleId" binding:"omitempty,oneof=1 2 3 4"`
	Phone      *string            `json:"phone" binding:"omitempty,min=1,max=20"`
	Address    *string            `json:"address" binding:"omitempty,max=255"`
}

// UserListRequest is posted as a JSON body to /users.
type UserListRequest struct {
	Page      int    `json:"page" binding:"omitempty,min=1"`
	Limit     int    `json:"limit" binding:"omitempty,min=1"`
	Search    string `json:"search" binding:"max=100"`
	RoleID    string `json:"roleID" binding:"omitempty,oneof=All 1 2 3 4"`
	SortBy    string `json:"sortBy"`
	SortOrder string `json:"sortOrder" binding:"omitempty,oneof=asc desc"`
	Col       string `json:"col"`
	Sort      string `json:"sort" binding:"omitempty,oneof=asc desc"`
}

func (q UserListRequest) Sorting() (string, string) { return sorting(q.SortBy, q.SortOrder, q.Col, q.Sort) }

type UserView struct {
	ID         string            `json:"id"`
	Email      string            `json:"email"`
	Name       string            `json:"name"`
	Gender     domain.Gender     `json:"gender,omitempty"`
	Department domain.Department `json:"department,omitempty"`
	Role       domain.RoleName   `json:"role"`
	RoleID     string            `json:"roleId"`
	Phone      string            `json:"phone,omitempty"`
	Address    string            `json:"address,omitempty"`
	Image      string            `json:"image,omitempty"`
	Provider   domain.Provider   `json:"provider"`
	CreatedAt  time.Time         `json:"createdAt"`
}

func NewUserView(u *domain.User) UserView {
	return UserView{
		ID:         u.ID,
		Email:      u.Email,
		Name:       u.Name,
		Gender:     u.Gender,
		Department: u.Department,
		Role:       u.Role(),
		RoleID:     u.RoleID,
		Phone:      u.Phone,
		Address:    u.Address,
		Image:      u.Image,
		Provider:   u.Provider,
		CreatedAt:  u.CreatedAt,
	}
}

func NewUserViews(us []domain.User) []UserView {
	out := make([]UserView, 0, len(us))
	for i := range us {
		out = append(out, NewUserView(&us[i]))
	}
	return out
}

type DashboardStats struct {
	Pending  int64 `json:"pendingLeaves"`
	Approved int64 `json:"approvedLeaves"`
	Rejected int64 `json:"rejectedLeaves"`
	Users    int64 `json:"totalUsers"`
	Leaves   int64 `json:"totalLeaves"`
}
