package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"

	"github.com/flicky/homeclick-store/internal/dto"
	"github.com/flicky/homeclick-store/internal/identity"
	"github.com/flicky/homeclick-store/internal/model"
	"github.com/flicky/homeclick-store/internal/repository"
)

var (
	ErrProductNotFound  = errors.New("product not found")
	ErrProductCodeTaken = errors.New("product code already in use")
	ErrProductInUse     = errors.New("product is referenced by orders")
)

const productCacheTTL = 60 * time.Second

type ProductService struct {
	productRepo repository.ProductRepository
	redisClient *redis.Client
}

func NewProductService(productRepo repository.ProductRepository, redisClient *redis.Client) *ProductService {
	return &ProductService{productRepo: productRepo, redisClient: redisClient}
}

func (s *ProductService) Create(ctx context.Context, id identity.Identity, req dto.CreateProductRequest) (*dto.ProductResponse, error) {
	if err := requireAdmin(id); err != nil {
		return nil, err
	}
	product := &model.Product{
		Name:    strings.TrimSpace(req.Name),
		Code:    strings.TrimSpace(req.Code),
		Price:   req.Price,
		Digital: req.Digital,
		Image:   req.Image,
	}
	if err := s.productRepo.Create(ctx, product); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrProductCodeTaken
		}
		return nil, fmt.Errorf("create product: %w", err)
	}
	resp := toProductResponse(product)
	return &resp, nil
}

func (s *ProductService) GetByID(ctx context.Context, id uuid.UUID) (*dto.ProductResponse, error) {
	cacheKey := "product:" + id.String()

	// Try cache
	if s.redisClient != nil {
		if cached, err := s.redisClient.Get(ctx, cacheKey).Result(); err == nil {
			var resp dto.ProductResponse
			if json.Unmarshal([]byte(cached), &resp) == nil {
				return &resp, nil
			}
		}
	}

	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	if product == nil {
		return nil, ErrProductNotFound
	}

	resp := toProductResponse(product)

	if s.redisClient != nil {
		if data, err := json.Marshal(resp); err == nil {
			s.redisClient.Set(ctx, cacheKey, data, productCacheTTL)
		}
	}

	return &resp, nil
}

func (s *ProductService) List(ctx context.Context, req dto.ListProductsRequest) (*dto.ProductListResponse, error) {
	offset := (req.Page - 1) * req.Limit
	products, total, err := s.productRepo.List(ctx, req.Limit, offset, strings.TrimSpace(req.Search))
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}

	items := make([]dto.ProductResponse, 0, len(products))
	for _, p := range products {
		items = append(items, toProductResponse(&p))
	}

	return &dto.ProductListResponse{Products: items, Total: total, Page: req.Page, Limit: req.Limit}, nil
}

func (s *ProductService) Update(ctx context.Context, id identity.Identity, productID uuid.UUID, req dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	if err := requireAdmin(id); err != nil {
		return nil, err
	}
	product, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	if product == nil {
		return nil, ErrProductNotFound
	}

	if req.Name != nil {
		product.Name = *req.Name
	}
	if req.Code != nil {
		product.Code = *req.Code
	}
	if req.Price != nil {
		product.Price = *req.Price
	}
	if req.Digital != nil {
		product.Digital = *req.Digital
	}
	if req.Image != nil {
		product.Image = *req.Image
	}

	if err := s.productRepo.Update(ctx, product); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrProductCodeTaken
		}
		return nil, fmt.Errorf("update product: %w", err)
	}

	s.invalidateCache(ctx, productID)
	resp := toProductResponse(product)
	return &resp, nil
}

func (s *ProductService) Delete(ctx context.Context, id identity.Identity, productID uuid.UUID) error {
	if err := requireAdmin(id); err != nil {
		return err
	}
	if err := s.productRepo.Delete(ctx, productID); err != nil {
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			return ErrProductNotFound
		case errors.Is(err, repository.ErrReferenced):
			return ErrProductInUse
		}
		return fmt.Errorf("delete product: %w", err)
	}
	s.invalidateCache(ctx, productID)
	return nil
}

func (s *ProductService) invalidateCache(ctx context.Context, id uuid.UUID) {
	if s.redisClient != nil {
		s.redisClient.Del(ctx, "product:"+id.String())
	}
}

func toProductResponse(p *model.Product) dto.ProductResponse {
	return dto.ProductResponse{
		ID:        p.ID,
		Name:      p.Name,
		Code:      p.Code,
		Price:     p.Price,
		Digital:   p.Digital,
		Image:     p.Image,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}
