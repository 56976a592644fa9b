package user

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/dmitrymomot/mango/pkg/logger"
	"github.com/dmitrymomot/mango/pkg/storage"
)

// MaxAvatarSize is the largest accepted avatar image.
const MaxAvatarSize = 5 << 20

var avatarExtensions = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/gif":  "gif",
	"image/webp": "webp",
}

// ErrAvatarsDisabled is returned when the service runs without file storage.
var ErrAvatarsDisabled = errors.New("user.avatars_disabled")

// UpdateAvatar stores a new avatar image and drops the previous one. The
// format is sniffed from the content, the client supplied type is ignored.
func (s *Service) UpdateAvatar(ctx context.Context, id uuid.UUID, data []byte) (*User, error) {
	if s.files == nil {
		return nil, ErrAvatarsDisabled
	}
	if len(data) > MaxAvatarSize {
		return nil, ErrAvatarTooLarge
	}

	contentType := storage.DetectContentType(data)
	ext, ok := avatarExtensions[contentType]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedAvatar, contentType)
	}

	u, err := s.users.GetUserByID(ctx, id)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("avatars/%s/%s.%s", u.ID, uuid.New(), ext)
	obj, err := s.files.Put(ctx, key, bytes.NewReader(data), int64(len(data)), contentType)
	if err != nil {
		return nil, fmt.Errorf("failed to store avatar: %w", err)
	}

	previous := u.AvatarKey
	u.AvatarKey = obj.Key
	u.AvatarURL = obj.URL
	u.UpdatedAt = s.now()
	if err := s.users.UpdateUser(ctx, u); err != nil {
		s.removeObject(ctx, obj.Key)
		return nil, fmt.Errorf("failed to save avatar: %w", err)
	}

	s.removeObject(ctx, previous)
	return u, nil
}

func (s *Service) removeObject(ctx context.Context, key string) {
	if key == "" || s.files == nil {
		return
	}
	if err := s.files.Delete(ctx, key); err != nil && !errors.Is(err, storage.ErrObjectNotFound) {
		s.logger.WarnContext(ctx, "failed to delete stored object",
			logger.Component("user"),
			logger.Error(err),
		)
	}
}
