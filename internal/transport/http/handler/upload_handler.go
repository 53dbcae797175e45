package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"campus-leave/internal/dto"
	"campus-leave/internal/service"
	"campus-leave/internal/transport/http/ez"
	"campus-leave/pkg/apperr"
)

type UploadHandler struct {
	uploads *service.UploadService
}

func NewUploadHandler(uploads *service.UploadService) *UploadHandler {
	return &UploadHandler{uploads: uploads}
}

func (h *UploadHandler) Mount(e ez.EZ) {
	ez.RegisterAction(e, ez.Action[empty, *dto.UserView]{
		Method:  http.MethodPost,
		Path:    "/upload-image",
		Binder:  ez.BindNone,
		Message: "Profile image updated",
		Handler: func(c *gin.Context, _ *empty) (*dto.UserView, error) {
			who, err := actor(c)
			if err != nil {
				return nil, err
			}
			fh, err := c.FormFile("image")
			if err != nil {
				var mbe *http.MaxBytesError
				if errors.As(err, &mbe) {
					return nil, apperr.Field("Invalid input", "image", "must be at most 5 MiB")
				}
				return nil, apperr.Field("Invalid input", "image", "is required")
			}
			f, err := fh.Open()
			if err != nil {
				return nil, apperr.Internal("open upload", err)
			}
			defer f.Close()
			return h.uploads.ProfileImage(c.Request.Context(), who, f, fh.Size)
		},
	})
}
