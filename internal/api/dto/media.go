package dto

// MediaTempMetadata 临时上传对象在 Redis 中登记的元信息
type MediaTempMetadata struct {
	MimeType  string `json:"mime_type"`
	CreatedAt int64  `json:"created_at"`
}

// MediaUploadRes 上传成功响应
type MediaUploadRes struct {
	FileKey  string `json:"fileKey"`
	URL      string `json:"url"`
	ThumbURL string `json:"thumbUrl,omitempty"`
}
