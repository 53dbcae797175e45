package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"campus-leave/internal/core/storage"
	"campus-leave/internal/domain"
	"campus-leave/internal/dto"
	"campus-leave/pkg/apperr"
)

const MaxImageBytes = 5 << 20

var imageExt = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
}

type UploadService struct {
	users domain.UserRepository
	store storage.ImageStore
	log   *zap.Logger
	now   clock
}

func NewUploadService(users domain.UserRepository, store storage.ImageStore, l *zap.Logger) *UploadService {
	return &UploadService{users: users, store: store, log: l, now: time.Now}
}

// ProfileImage replaces actor's profile image with the JPEG or PNG in r.
func (s *UploadService) ProfileImage(ctx context.Context, actor domain.Identity, r io.Reader, size int64) (*dto.UserView, error) {
	if size > MaxImageBytes {
		return nil, apperr.Field(msgInvalidInput, "image", "must be at most 5 MiB")
	}
	head := make([]byte, 512)
	n, err := io.ReadFull(r, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return nil, apperr.Internal("read upload", err)
	}
	head = head[:n]
	ext, ok := imageExt[http.DetectContentType(head)]
	if !ok {
		return nil, apperr.Field(msgInvalidInput, "image", "only JPEG and PNG images are allowed")
	}

	u, err := s.users.FindByID(ctx, actor.ID)
	if err != nil {
		return nil, apperr.Internal("find user", err)
	}
	if u == nil {
		return nil, apperr.NotFound(msgUserNotFound)
	}
	name := fmt.Sprintf("%s_%d%s", u.ID, s.now().Unix(), ext)
	url, err := s.store.Upload(ctx, io.MultiReader(bytes.NewReader(head), r), name)
	if err != nil {
		return nil, apperr.Internal("upload image", err)
	}
	previous := u.Image
	u.Image = url
	if err := s.users.Update(ctx, u); err != nil {
		if derr := s.store.Destroy(ctx, url); derr != nil {
			s.log.Warn("orphaned upload not removed", zap.String("user_id", u.ID), zap.Error(derr))
		}
		return nil, apperr.Internal("save image url", err)
	}
	// the row already points at the new image, so a failed cleanup only leaks an asset
	if previous != "" {
		if err := s.store.Destroy(ctx, previous); err != nil {
			s.log.Warn("previous image not removed", zap.String("user_id", u.ID), zap.Error(err))
		}
	}
	v := dto.NewUserView(u)
	return &v, nil
}
