package processor

import (
	"bytes"
	"fmt"
	"io"

	"github.com/disintegration/imaging"
)

const thumbMaxEdge = 512

// MakeThumbnail 为图片生成等比缩略图并编码为 JPEG。
// 长边不超过 512 像素，小图原尺寸重编码。
func MakeThumbnail(reader io.Reader) ([]byte, error) {
	img, err := imaging.Decode(reader, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("decode image failed: %w", err)
	}

	bounds := img.Bounds()
	if bounds.Dx() > thumbMaxEdge || bounds.Dy() > thumbMaxEdge {
		img = imaging.Fit(img, thumbMaxEdge, thumbMaxEdge, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err = imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(80)); err != nil {
		return nil, fmt.Errorf("encode thumbnail failed: %w", err)
	}
	return buf.Bytes(), nil
}
