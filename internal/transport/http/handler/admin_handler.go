package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"campus-leave/internal/domain"
	"campus-leave/internal/dto"
	"campus-leave/internal/service"
	"campus-leave/internal/transport/http/ez"
)

// AdminHandler serves account administration and the user directory.
type AdminHandler struct {
	users *service.UserService
}

func NewAdminHandler(users *service.UserService) *AdminHandler { return &AdminHandler{users: users} }

func (h *AdminHandler) Priority() int { return 20 }

func (h *AdminHandler) Mount(e ez.EZ) {
	ez.RegisterAction(e, ez.Action[dto.SignupRequest, *dto.UserView]{
		Method:  http.MethodPost,
		Path:    "/signup",
		Binder:  ez.BindJSON,
		Status:  http.StatusCreated,
		Message: "User created successfully",
		Handler: func(c *gin.Context, in *dto.SignupRequest) (*dto.UserView, error) {
			return h.users.Signup(c.Request.Context(), *in)
		},
	})

	ez.RegisterAction(e, ez.Action[dto.UserListRequest, domain.Page[dto.UserView]]{
		Method: http.MethodPost,
		Path:   "/users",
		Binder: ez.BindJSON,
		Handler: func(c *gin.Context, in *dto.UserListRequest) (domain.Page[dto.UserView], error) {
			id, err := actor(c)
			if err != nil {
				return domain.Page[dto.UserView]{}, err
			}
			return h.users.List(c.Request.Context(), id, *in)
		},
	})

	ez.RegisterAction(e, ez.Action[dto.UpdateUserRequest, *dto.UserView]{
		Method:  http.MethodPatch,
		Path:    "/user/:id",
		Binder:  ez.BindJSON,
		Message: "User updated successfully",
		Handler: func(c *gin.Context, in *dto.UpdateUserRequest) (*dto.UserView, error) {
			id, err := ez.Param(c, "id")
			if err != nil {
				return nil, err
			}
			return h.users.Update(c.Request.Context(), id, *in)
		},
	})

	ez.RegisterAction(e, ez.Action[empty, any]{
		Method:  http.MethodDelete,
		Path:    "/user/:id",
		Binder:  ez.BindNone,
		Message: "User deleted successfully",
		Handler: func(c *gin.Context, _ *empty) (any, error) {
			viewer, err := actor(c)
			if err != nil {
				return nil, err
			}
			id, err := ez.Param(c, "id")
			if err != nil {
				return nil, err
			}
			return nil, h.users.Delete(c.Request.Context(), viewer, id)
		},
	})

	ez.RegisterAction(e, ez.Action[empty, []dto.UserView]{
		Method: http.MethodGet,
		Path:   "/student",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ *empty) ([]dto.UserView, error) {
			return h.users.Students(c.Request.Context())
		},
	})

	ez.RegisterAction(e, ez.Action[empty, *dto.DashboardStats]{
		Method: http.MethodGet,
		Path:   "/dashboard-info",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ *empty) (*dto.DashboardStats, error) {
			return h.users.Dashboard(c.Request.Context())
		},
	})
}
