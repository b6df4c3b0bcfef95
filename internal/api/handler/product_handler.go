package handler

import (
	"Bigwise/internal/api/dto"
	"Bigwise/internal/pkg/response"
	"Bigwise/internal/repository"
	"Bigwise/internal/service"
	"strconv"

	"github.com/gin-gonic/gin"
)

type ProductHandler struct {
	productSvc service.ProductService
}

func NewProductHandler(productSvc service.ProductService) *ProductHandler {
	return &ProductHandler{productSvc: productSvc}
}

// ListProducts 商品列表，支持 category 与 featured 过滤
func (s *ProductHandler) ListProducts(c *gin.Context) {
	filter := repository.ProductFilter{
		Category: c.Query("category"),
	}
	if raw := c.Query("featured"); raw != "" {
		featured := raw == "true" || raw == "1"
		filter.Featured = &featured
	}

	products, err := s.productSvc.ListProducts(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, products)
}

func (s *ProductHandler) GetProduct(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		response.Fail(c, response.BadRequest, service.ErrParamInvalid.Error())
		return
	}

	product, err := s.productSvc.GetProduct(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, product)
}

func (s *ProductHandler) CreateProduct(c *gin.Context) {
	var req dto.ProductReq
	if err := c.ShouldBind(&req); err != nil {
		response.Error(c, err)
		return
	}

	product, err := s.productSvc.CreateProduct(c.Request.Context(), &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, product)
}

func (s *ProductHandler) UpdateProduct(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		response.Fail(c, response.BadRequest, service.ErrParamInvalid.Error())
		return
	}

	var req dto.ProductReq
	if err = c.ShouldBind(&req); err != nil {
		response.Error(c, err)
		return
	}

	product, err := s.productSvc.UpdateProduct(c.Request.Context(), id, &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, product)
}

func (s *ProductHandler) DeleteProduct(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		response.Fail(c, response.BadRequest, service.ErrParamInvalid.Error())
		return
	}

	if err = s.productSvc.DeleteProduct(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}
