package service

import (
	"Bigwise/internal/api/dto"
	"Bigwise/internal/model"
	"Bigwise/internal/pkg/consts"
	"Bigwise/internal/pkg/redis"
	"Bigwise/internal/repository"
	"context"
	log "log/slog"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	"github.com/jinzhu/copier"
)

const productCacheTTL = 10 * time.Minute

type ProductService interface {
	CreateProduct(ctx context.Context, req *dto.ProductReq) (*dto.ProductDTO, error)
	UpdateProduct(ctx context.Context, id uint64, req *dto.ProductReq) (*dto.ProductDTO, error)
	DeleteProduct(ctx context.Context, id uint64) error
	GetProduct(ctx context.Context, id uint64) (*dto.ProductDTO, error)
	ListProducts(ctx context.Context, filter repository.ProductFilter) ([]*dto.ProductDTO, error)
}

type productServiceImpl struct {
	productRepo repository.ProductRepo
	media       MediaService
}

func NewProductService(productRepo repository.ProductRepo, media MediaService) ProductService {
	return &productServiceImpl{productRepo: productRepo, media: media}
}

func (s *productServiceImpl) CreateProduct(ctx context.Context, req *dto.ProductReq) (*dto.ProductDTO, error) {
	product := &model.Product{}
	_ = copier.Copy(product, req)

	if err := s.productRepo.CreateProduct(ctx, product); err != nil {
		log.ErrorContext(ctx, "create product failed", "err", err)
		return nil, UnExpectedError
	}

	// 商品引用的临时图转正
	s.media.Confirm(ctx, req.Images)
	s.evictCache(ctx, product.ID)
	return toProductDTO(product), nil
}

func (s *productServiceImpl) UpdateProduct(ctx context.Context, id uint64, req *dto.ProductReq) (*dto.ProductDTO, error) {
	product, err := s.productRepo.GetProduct(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrProductNotFound
		}
		log.ErrorContext(ctx, "load product failed", "id", id, "err", err)
		return nil, UnExpectedError
	}

	_ = copier.Copy(product, req)
	if err = s.productRepo.UpdateProduct(ctx, product); err != nil {
		log.ErrorContext(ctx, "update product failed", "id", id, "err", err)
		return nil, UnExpectedError
	}

	s.media.Confirm(ctx, req.Images)
	s.evictCache(ctx, id)
	return toProductDTO(product), nil
}

func (s *productServiceImpl) DeleteProduct(ctx context.Context, id uint64) error {
	ok, err := s.productRepo.DeleteProduct(ctx, id)
	if err != nil {
		log.ErrorContext(ctx, "delete product failed", "id", id, "err", err)
		return UnExpectedError
	}
	if !ok {
		return ErrProductNotFound
	}

	s.evictCache(ctx, id)
	return nil
}

// GetProduct 详情走 Redis 旁路缓存
func (s *productServiceImpl) GetProduct(ctx context.Context, id uint64) (*dto.ProductDTO, error) {
	cacheKey := consts.ProductInfoKey + strconv.FormatUint(id, 10)
	if cached, err := redis.GetValue(ctx, cacheKey); err == nil && cached != "" {
		var d dto.ProductDTO
		if err = json.Unmarshal([]byte(cached), &d); err == nil {
			return &d, nil
		}
	}

	product, err := s.productRepo.GetProduct(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrProductNotFound
		}
		log.ErrorContext(ctx, "load product failed", "id", id, "err", err)
		return nil, UnExpectedError
	}

	d := toProductDTO(product)
	if payload, err := json.Marshal(d); err == nil {
		if err = redis.SetWithExpiration(ctx, cacheKey, payload, productCacheTTL); err != nil {
			log.WarnContext(ctx, "cache product failed", "id", id, "err", err)
		}
	}
	return d, nil
}

// ListProducts 无过滤条件的全量列表走缓存，带条件的查询直达数据库
func (s *productServiceImpl) ListProducts(ctx context.Context, filter repository.ProductFilter) ([]*dto.ProductDTO, error) {
	cacheable := filter.Category == "" && filter.Featured == nil

	if cacheable {
		if cached, err := redis.GetValue(ctx, consts.ProductListKey); err == nil && cached != "" {
			var res []*dto.ProductDTO
			if err = json.Unmarshal([]byte(cached), &res); err == nil {
				return res, nil
			}
		}
	}

	products, err := s.productRepo.ListProducts(ctx, filter)
	if err != nil {
		log.ErrorContext(ctx, "list products failed", "err", err)
		return nil, UnExpectedError
	}

	res := make([]*dto.ProductDTO, 0, len(products))
	for _, p := range products {
		res = append(res, toProductDTO(p))
	}

	if cacheable {
		if payload, err := json.Marshal(res); err == nil {
			if err = redis.SetWithExpiration(ctx, consts.ProductListKey, payload, productCacheTTL); err != nil {
				log.WarnContext(ctx, "cache product list failed", "err", err)
			}
		}
	}
	return res, nil
}

func (s *productServiceImpl) evictCache(ctx context.Context, id uint64) {
	keys := []string{consts.ProductListKey, consts.ProductInfoKey + strconv.FormatUint(id, 10)}
	if err := redis.Delete(ctx, keys...); err != nil {
		log.WarnContext(ctx, "evict product cache failed", "id", id, "err", err)
	}
}

func toProductDTO(p *model.Product) *dto.ProductDTO {
	var d dto.ProductDTO
	_ = copier.Copy(&d, p)
	return &d
}
