package mediainfo

import (
	"context"

	"github.com/ytget/ytgrab-bot/internal/model"
)

// Inspector reads physical metadata of a media file.
type Inspector interface {
	Inspect(ctx context.Context, path string) (*model.MediaMeta, error)
}
