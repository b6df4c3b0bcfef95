package handler

import (
	"Bigwise/internal/pkg/response"
	"Bigwise/internal/service"

	"github.com/gin-gonic/gin"
)

type MediaHandler struct {
	mediaSvc service.MediaService
}

func NewMediaHandler(mediaSvc service.MediaService) *MediaHandler {
	return &MediaHandler{mediaSvc: mediaSvc}
}

// Upload 管理端上传商品图，multipart 字段名 file
func (s *MediaHandler) Upload(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.Fail(c, response.BadRequest, service.ErrParamInvalid.Error())
		return
	}

	res, err := s.mediaSvc.Upload(c.Request.Context(), fileHeader)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, res)
}
