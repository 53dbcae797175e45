package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"campus-leave/internal/domain"
	"campus-leave/internal/dto"
	"campus-leave/internal/service"
	"campus-leave/internal/transport/http/ez"
)

type BlogHandler struct {
	blogs *service.BlogService
}

func NewBlogHandler(blogs *service.BlogService) *BlogHandler { return &BlogHandler{blogs: blogs} }

func (h *BlogHandler) Mount(e ez.EZ) {
	ez.RegisterAction(e, ez.Action[dto.BlogRequest, *dto.BlogView]{
		Method:  http.MethodPost,
		Path:    "/blogs",
		Binder:  ez.BindJSON,
		Status:  http.StatusCreated,
		Message: "Blog created",
		Handler: func(c *gin.Context, in *dto.BlogRequest) (*dto.BlogView, error) {
			who, err := actor(c)
			if err != nil {
				return nil, err
			}
			return h.blogs.Create(c.Request.Context(), who, *in)
		},
	})

	ez.RegisterAction(e, ez.Action[dto.BlogListQuery, domain.Page[dto.BlogView]]{
		Method: http.MethodGet,
		Path:   "/blogs",
		Binder: ez.BindQuery,
		Handler: func(c *gin.Context, in *dto.BlogListQuery) (domain.Page[dto.BlogView], error) {
			return h.blogs.List(c.Request.Context(), *in)
		},
	})

	ez.RegisterAction(e, ez.Action[dto.BlogRequest, *dto.BlogView]{
		Method:  http.MethodPatch,
		Path:    "/blogs/:id",
		Binder:  ez.BindJSON,
		Message: "Blog updated",
		Handler: func(c *gin.Context, in *dto.BlogRequest) (*dto.BlogView, error) {
			who, id, err := withActorAndID(c)
			if err != nil {
				return nil, err
			}
			return h.blogs.Update(c.Request.Context(), who, id, *in)
		},
	})

	ez.RegisterAction(e, ez.Action[empty, any]{
		Method:  http.MethodDelete,
		Path:    "/blogs/:id",
		Binder:  ez.BindNone,
		Message: "Blog deleted",
		Handler: func(c *gin.Context, _ *empty) (any, error) {
			who, id, err := withActorAndID(c)
			if err != nil {
				return nil, err
			}
			return nil, h.blogs.Delete(c.Request.Context(), who, id)
		},
	})
}
