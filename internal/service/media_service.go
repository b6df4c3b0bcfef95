package service

import (
	"Bigwise/internal/api/dto"
	"Bigwise/internal/pkg/consts"
	"Bigwise/internal/pkg/minio"
	"Bigwise/internal/pkg/processor"
	"Bigwise/internal/pkg/redis"
	"bytes"
	"context"
	"io"
	log "log/slog"
	"mime/multipart"
	"path"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
)

// 允许上传的图片类型
var allowedImageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

// MediaService 商品图上传走两段式：先进临时桶并登记，
// 商品保存时 Confirm 转正，超时未确认的对象由清理任务回收。
type MediaService interface {
	Upload(ctx context.Context, fileHeader *multipart.FileHeader) (*dto.MediaUploadRes, error)
	Confirm(ctx context.Context, fileKeys []string)
}

type mediaServiceImpl struct{}

func NewMediaService() MediaService {
	return &mediaServiceImpl{}
}

func (s *mediaServiceImpl) Upload(ctx context.Context, fileHeader *multipart.FileHeader) (*dto.MediaUploadRes, error) {
	contentType := fileHeader.Header.Get("Content-Type")
	ext, ok := allowedImageTypes[contentType]
	if !ok {
		return nil, ErrFileNotSupported
	}

	file, err := fileHeader.Open()
	if err != nil {
		log.ErrorContext(ctx, "open upload failed", "err", err)
		return nil, UnExpectedError
	}
	defer file.Close()

	raw, err := io.ReadAll(io.LimitReader(file, 10<<20+1))
	if err != nil {
		log.ErrorContext(ctx, "read upload failed", "err", err)
		return nil, UnExpectedError
	}
	if len(raw) > 10<<20 {
		return nil, ErrFileNotSupported
	}

	fileKey := uuid.New().String() + ext
	if _, err = minio.UploadFile(ctx, minio.TempBucket, fileKey, bytes.NewReader(raw), int64(len(raw)), contentType); err != nil {
		log.ErrorContext(ctx, "upload to temp bucket failed", "fileKey", fileKey, "err", err)
		return nil, UnExpectedError
	}

	res := &dto.MediaUploadRes{
		FileKey: fileKey,
		URL:     minio.GetPublicURL(fileKey),
	}

	// 缩略图失败不影响原图上传
	if thumb, err := processor.MakeThumbnail(bytes.NewReader(raw)); err != nil {
		log.WarnContext(ctx, "make thumbnail failed", "fileKey", fileKey, "err", err)
	} else {
		thumbKey := thumbKeyOf(fileKey)
		if _, err = minio.UploadFile(ctx, minio.TempBucket, thumbKey, bytes.NewReader(thumb), int64(len(thumb)), "image/jpeg"); err != nil {
			log.WarnContext(ctx, "upload thumbnail failed", "fileKey", thumbKey, "err", err)
		} else {
			s.register(ctx, thumbKey, "image/jpeg")
			res.ThumbURL = minio.GetPublicURL(thumbKey)
		}
	}

	s.register(ctx, fileKey, contentType)
	return res, nil
}

// Confirm 将已被商品引用的临时对象转正。
// 只处理登记过的 fileKey，外链 URL 等无关值直接跳过；失败只记录。
func (s *mediaServiceImpl) Confirm(ctx context.Context, fileKeys []string) {
	registry, err := redis.HGetAll(ctx, consts.MediaTempKey)
	if err != nil {
		log.WarnContext(ctx, "load media temp registry failed", "err", err)
		return
	}

	for _, fileKey := range fileKeys {
		for _, key := range []string{fileKey, thumbKeyOf(fileKey)} {
			if _, ok := registry[key]; !ok {
				continue
			}
			if err = minio.PromoteFile(ctx, key); err != nil {
				log.WarnContext(ctx, "promote media failed", "fileKey", key, "err", err)
				continue
			}
			if err = redis.HDel(ctx, consts.MediaTempKey, key); err != nil {
				log.WarnContext(ctx, "unregister media failed", "fileKey", key, "err", err)
			}
		}
	}
}

func (s *mediaServiceImpl) register(ctx context.Context, fileKey, mimeType string) {
	meta := dto.MediaTempMetadata{
		MimeType:  mimeType,
		CreatedAt: time.Now().Unix(),
	}
	payload, _ := json.Marshal(meta)
	if err := redis.HSet(ctx, consts.MediaTempKey, fileKey, payload); err != nil {
		log.WarnContext(ctx, "register media temp failed", "fileKey", fileKey, "err", err)
	}
}

func thumbKeyOf(fileKey string) string {
	ext := path.Ext(fileKey)
	return fileKey[:len(fileKey)-len(ext)] + "_thumb.jpg"
}
