package handler

import (
	"Bigwise/internal/api/dto"
	"Bigwise/internal/api/middleware"
	"Bigwise/internal/pkg/response"
	"Bigwise/internal/service"
	"strconv"

	"github.com/gin-gonic/gin"
)

type CartHandler struct {
	cartSvc service.CartService
}

func NewCartHandler(cartSvc service.CartService) *CartHandler {
	return &CartHandler{cartSvc: cartSvc}
}

func (s *CartHandler) GetItems(c *gin.Context) {
	sess := middleware.GetSession(c)
	items, err := s.cartSvc.GetItems(c.Request.Context(), sess.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, items)
}

func (s *CartHandler) AddItem(c *gin.Context) {
	var req dto.AddCartItemReq
	if err := c.ShouldBind(&req); err != nil {
		response.Error(c, err)
		return
	}

	sess := middleware.GetSession(c)
	if err := s.cartSvc.AddItem(c.Request.Context(), sess.UserID, &req); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

func (s *CartHandler) UpdateItem(c *gin.Context) {
	itemID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		response.Fail(c, response.BadRequest, service.ErrParamInvalid.Error())
		return
	}

	var req dto.UpdateCartItemReq
	if err = c.ShouldBind(&req); err != nil {
		response.Error(c, err)
		return
	}

	sess := middleware.GetSession(c)
	if err = s.cartSvc.UpdateQuantity(c.Request.Context(), sess.UserID, itemID, req.Quantity); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

func (s *CartHandler) RemoveItem(c *gin.Context) {
	itemID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		response.Fail(c, response.BadRequest, service.ErrParamInvalid.Error())
		return
	}

	sess := middleware.GetSession(c)
	if err = s.cartSvc.RemoveItem(c.Request.Context(), sess.UserID, itemID); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

func (s *CartHandler) Clear(c *gin.Context) {
	sess := middleware.GetSession(c)
	if err := s.cartSvc.Clear(c.Request.Context(), sess.UserID); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}
