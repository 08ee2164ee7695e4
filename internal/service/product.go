package service

import (
	"context"

	"github.com/Fadil369/brainsait-healthcare-platform/internal/domain"

	log "github.com/sirupsen/logrus"
)

type ProductRepository interface {
	ListProducts(ctx context.Context, category *string, onlyActive bool, limit, offset int) ([]domain.Product, error)
	GetByID(ctx context.Context, id string) (*domain.Product, error)
	GetBySKU(ctx context.Context, sku string) (*domain.Product, error)
	Create(ctx context.Context, req domain.CreateProductRequest) (*domain.Product, error)
	Update(ctx context.Context, id string, req domain.UpdateProductRequest) (*domain.Product, error)
	Delete(ctx context.Context, id string) error
}

// ProductCache mirrors cache.ProductCache. The service treats a nil cache
// as disabled.
type ProductCache interface {
	Get(ctx context.Context, id string) (*domain.Product, error)
	Set(ctx context.Context, product *domain.Product) error
	Invalidate(ctx context.Context, id string) error
}

type productService struct {
	productRepo ProductRepository
	cache       ProductCache
	currency    string
	region      string
}

func NewProductService(productRepo ProductRepository, cache ProductCache, currency, region string) *productService {
	return &productService{
		productRepo: productRepo,
		cache:       cache,
		currency:    currency,
		region:      region,
	}
}

func (s *productService) ListProducts(ctx context.Context, category *string, onlyActive bool, limit, offset int) ([]domain.Product, error) {
	if limit <= 0 {
		limit = 10
	}
	if limit > domain.MaxListLimit {
		limit = domain.MaxListLimit
	}
	if offset < 0 {
		offset = 0
	}

	products, err := s.productRepo.ListProducts(ctx, category, onlyActive, limit, offset)
	if err != nil {
		log.WithError(err).Error("Failed to list products")
		return nil, err
	}
	return products, nil
}

func (s *productService) GetProductByID(ctx context.Context, id string) (*domain.Product, error) {
	if id == "" {
		return nil, domain.ErrInvalidUUID
	}

	if s.cache != nil {
		if product, err := s.cache.Get(ctx, id); err != nil {
			log.WithError(err).WithField("product_id", id).Warn("Product cache read failed")
		} else if product != nil {
			return product, nil
		}
	}

	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, product); err != nil {
			log.WithError(err).WithField("product_id", id).Warn("Product cache write failed")
		}
	}

	return product, nil
}

func (s *productService) GetProductBySKU(ctx context.Context, sku string) (*domain.Product, error) {
	if err := domain.ValidateProductSKU(sku); err != nil {
		return nil, err
	}

	product, err := s.productRepo.GetBySKU(ctx, sku)
	if err != nil {
		return nil, err
	}
	return product, nil
}

func (s *productService) CreateProduct(ctx context.Context, req domain.CreateProductRequest) (*domain.Product, error) {
	if err := domain.ValidateProductSKU(req.SKU); err != nil {
		return nil, err
	}
	if err := domain.ValidateProductName(req.Name); err != nil {
		return nil, err
	}
	if err := domain.ValidateProductPrice(req.PriceCents); err != nil {
		return nil, err
	}

	if req.Currency == "" {
		req.Currency = s.currency
	}
	if req.Region == "" {
		req.Region = s.region
	}

	existing, err := s.productRepo.GetBySKU(ctx, req.SKU)
	if err != nil && err != domain.ErrProductNotFound {
		log.WithError(err).WithField("sku", req.SKU).Error("Failed to check product existence")
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrProductSKUExists
	}

	product, err := s.productRepo.Create(ctx, req)
	if err != nil {
		log.WithError(err).WithFields(log.Fields{
			"sku":      req.SKU,
			"name":     req.Name,
			"category": req.Category,
		}).Error("Failed to create product")
		return nil, err
	}

	return product, nil
}

func (s *productService) UpdateProduct(ctx context.Context, id string, req domain.UpdateProductRequest) (*domain.Product, error) {
	if id == "" {
		return nil, domain.ErrInvalidUUID
	}

	if req.Name != nil {
		if err := domain.ValidateProductName(*req.Name); err != nil {
			return nil, err
		}
	}
	if req.PriceCents != nil {
		if err := domain.ValidateProductPrice(*req.PriceCents); err != nil {
			return nil, err
		}
	}

	product, err := s.productRepo.Update(ctx, id, req)
	if err != nil {
		log.WithError(err).WithField("product_id", id).Error("Failed to update product")
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, id); err != nil {
			log.WithError(err).WithField("product_id", id).Warn("Product cache invalidation failed")
		}
	}

	return product, nil
}

func (s *productService) DeleteProduct(ctx context.Context, id string) error {
	if id == "" {
		return domain.ErrInvalidUUID
	}

	err := s.productRepo.Delete(ctx, id)
	if err != nil {
		log.WithError(err).WithField("product_id", id).Error("Failed to delete product")
		return err
	}

	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, id); err != nil {
			log.WithError(err).WithField("product_id", id).Warn("Product cache invalidation failed")
		}
	}

	return nil
}
