package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"campus-leave/internal/domain"
	"campus-leave/internal/dto"
	"campus-leave/internal/service"
	"campus-leave/internal/transport/http/ez"
)

type LeaveHandler struct {
	leaves *service.LeaveService
}

func NewLeaveHandler(leaves *service.LeaveService) *LeaveHandler { return &LeaveHandler{leaves: leaves} }

func (h *LeaveHandler) Priority() int { return 30 }

// withActorAndID pulls the caller and the :id path parameter.
func withActorAndID(c *gin.Context) (domain.Identity, string, error) {
	id, err := actor(c)
	if err != nil {
		return id, "", err
	}
	p, err := ez.Param(c, "id")
	return id, p, err
}

func (h *LeaveHandler) Mount(e ez.EZ) {
	ez.RegisterAction(e, ez.Action[dto.ApplyLeaveRequest, *dto.LeaveView]{
		Method:  http.MethodPost,
		Path:    "/apply-leave",
		Binder:  ez.BindJSON,
		Status:  http.StatusCreated,
		Message: "Leave request submitted",
		Handler: func(c *gin.Context, in *dto.ApplyLeaveRequest) (*dto.LeaveView, error) {
			id, err := actor(c)
			if err != nil {
				return nil, err
			}
			return h.leaves.Apply(c.Request.Context(), id, *in)
		},
	})

	ez.RegisterAction(e, ez.Action[dto.StatusRequest, *dto.TransitionResult]{
		Method:  http.MethodPatch,
		Path:    "/leave/:id",
		Binder:  ez.BindJSON,
		Message: "Leave status updated",
		Handler: func(c *gin.Context, in *dto.StatusRequest) (*dto.TransitionResult, error) {
			who, id, err := withActorAndID(c)
			if err != nil {
				return nil, err
			}
			return h.leaves.UpdateStatus(c.Request.Context(), who, id, in.Status)
		},
	})

	ez.RegisterAction(e, ez.Action[dto.ApplyLeaveRequest, *dto.LeaveView]{
		Method:  http.MethodPatch,
		Path:    "/edit-leave/:id",
		Binder:  ez.BindJSON,
		Message: "Leave request updated",
		Handler: func(c *gin.Context, in *dto.ApplyLeaveRequest) (*dto.LeaveView, error) {
			who, id, err := withActorAndID(c)
			if err != nil {
				return nil, err
			}
			return h.leaves.Edit(c.Request.Context(), who, id, *in)
		},
	})

	ez.RegisterAction(e, ez.Action[empty, any]{
		Method:  http.MethodDelete,
		Path:    "/delete-leave/:id",
		Binder:  ez.BindNone,
		Message: "Leave request deleted",
		Handler: func(c *gin.Context, _ *empty) (any, error) {
			who, id, err := withActorAndID(c)
			if err != nil {
				return nil, err
			}
			return nil, h.leaves.Delete(c.Request.Context(), who, id)
		},
	})

	ez.RegisterAction(e, ez.Action[dto.InboxQuery, domain.Page[dto.LeaveView]]{
		Method: http.MethodGet,
		Path:   "/leaves",
		Binder: ez.BindQuery,
		Handler: func(c *gin.Context, in *dto.InboxQuery) (domain.Page[dto.LeaveView], error) {
			who, err := actor(c)
			if err != nil {
				return domain.Page[dto.LeaveView]{}, err
			}
			return h.leaves.Inbox(c.Request.Context(), who, *in)
		},
	})

	ez.RegisterAction(e, ez.Action[dto.PersonalLeaveQuery, domain.Page[dto.LeaveView]]{
		Method: http.MethodGet,
		Path:   "/personal-leaves/:id",
		Binder: ez.BindQuery,
		Handler: func(c *gin.Context, in *dto.PersonalLeaveQuery) (domain.Page[dto.LeaveView], error) {
			who, id, err := withActorAndID(c)
			if err != nil {
				return domain.Page[dto.LeaveView]{}, err
			}
			return h.leaves.Personal(c.Request.Context(), who, id, *in)
		},
	})

	ez.RegisterAction(e, ez.Action[empty, *domain.LeaveBalance]{
		Method: http.MethodGet,
		Path:   "/leaves-balance/:id",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ *empty) (*domain.LeaveBalance, error) {
			who, id, err := withActorAndID(c)
			if err != nil {
				return nil, err
			}
			return h.leaves.Balance(c.Request.Context(), who, id)
		},
	})

	ez.RegisterAction(e, ez.Action[empty, []dto.ApproverView]{
		Method: http.MethodGet,
		Path:   "/staff",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ *empty) ([]dto.ApproverView, error) {
			who, err := actor(c)
			if err != nil {
				return nil, err
			}
			return h.leaves.Approvers(c.Request.Context(), who)
		},
	})

	ez.RegisterAction(e, ez.Action[empty, []dto.ChartRow]{
		Method: http.MethodGet,
		Path:   "/chart",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ *empty) ([]dto.ChartRow, error) {
			return h.leaves.Chart(c.Request.Context())
		},
	})

	ez.RegisterAction(e, ez.Action[empty, []dto.CalendarEvent]{
		Method: http.MethodGet,
		Path:   "/dashboard",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ *empty) ([]dto.CalendarEvent, error) {
			return h.leaves.Calendar(c.Request.Context())
		},
	})
}
