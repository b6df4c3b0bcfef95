package handler

import (
	"Bigwise/internal/api/dto"
	"Bigwise/internal/api/middleware"
	"Bigwise/internal/pkg/response"
	"Bigwise/internal/service"
	"strconv"

	"github.com/gin-gonic/gin"
)

type WishlistHandler struct {
	wishlistSvc service.WishlistService
}

func NewWishlistHandler(wishlistSvc service.WishlistService) *WishlistHandler {
	return &WishlistHandler{wishlistSvc: wishlistSvc}
}

func (s *WishlistHandler) GetItems(c *gin.Context) {
	sess := middleware.GetSession(c)
	items, err := s.wishlistSvc.GetItems(c.Request.Context(), sess.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, items)
}

func (s *WishlistHandler) AddItem(c *gin.Context) {
	var req dto.AddWishlistItemReq
	if err := c.ShouldBind(&req); err != nil {
		response.Error(c, err)
		return
	}

	sess := middleware.GetSession(c)
	if err := s.wishlistSvc.AddItem(c.Request.Context(), sess.UserID, req.ProductID); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

func (s *WishlistHandler) RemoveItem(c *gin.Context) {
	productID, err := strconv.ParseUint(c.Param("productId"), 10, 64)
	if err != nil {
		response.Fail(c, response.BadRequest, service.ErrParamInvalid.Error())
		return
	}

	sess := middleware.GetSession(c)
	if err = s.wishlistSvc.RemoveItem(c.Request.Context(), sess.UserID, productID); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}
