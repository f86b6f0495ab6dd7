package services

import (
	"context"
	"strings"
	"time"

	"rentalhub/internal/caching"
	"rentalhub/internal/common"
	"rentalhub/internal/models"
	"rentalhub/internal/repositories"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const productCacheTTL = 15 * time.Minute

type ProductService interface {
	Create(ctx context.Context, product *models.Product) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	Update(ctx context.Context, product *models.Product) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, search string, limit, offset int) ([]*models.Product, error)
}

type productService struct {
	productRepo  repositories.ProductRepository
	cacheService caching.CacheService
	logger       *zap.Logger
}

func NewProductService(productRepo repositories.ProductRepository, cacheService caching.CacheService, logger *zap.Logger) ProductService {
	return &productService{
		productRepo:  productRepo,
		cacheService: cacheService,
		logger:       logger,
	}
}

func validateProduct(product *models.Product) error {
	product.Name = strings.TrimSpace(product.Name)
	if product.Name == "" {
		return common.ValidationError("product name is required")
	}
	if len(product.Name) > 255 {
		return common.ValidationError("product name cannot exceed 255 characters")
	}
	if err := common.ValidateOptionalString(product.Description, "description", 2000); err != nil {
		return err
	}
	if product.RentalUnit == "" {
		product.RentalUnit = models.RentalUnitDay
	}
	if !models.ValidRentalUnit(product.RentalUnit) {
		return common.ValidationError("rental_unit must be one of hour, day, week, month")
	}
	if err := common.ValidateMoneyAmount(product.RentalPrice, "rental_price"); err != nil {
		return err
	}
	if err := common.ValidateMoneyAmount(product.Tax, "tax"); err != nil {
		return err
	}
	return nil
}

func (s *productService) Create(ctx context.Context, product *models.Product) error {
	if err := validateProduct(product); err != nil {
		return err
	}
	product.ID = uuid.New()
	if err := s.productRepo.Create(ctx, product); err != nil {
		return err
	}
	s.logger.Info("product created", zap.String("product_id", product.ID.String()), zap.String("name", product.Name))
	return nil
}

// GetByID reads through the cache. Cache failures are logged and the
// database is used instead.
func (s *productService) GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	if cached, err := s.cacheService.GetProduct(ctx, id); cached != nil {
		return cached, nil
	} else if err != nil {
		s.logger.Warn("product cache read failed", zap.String("product_id", id.String()), zap.Error(err))
	}

	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.cacheService.SetProduct(ctx, product, productCacheTTL); err != nil {
		s.logger.Warn("product cache write failed", zap.String("product_id", id.String()), zap.Error(err))
	}
	return product, nil
}

func (s *productService) Update(ctx context.Context, product *models.Product) error {
	if err := validateProduct(product); err != nil {
		return err
	}
	if err := s.productRepo.Update(ctx, product); err != nil {
		return err
	}
	s.evict(ctx, product.ID)
	return nil
}

func (s *productService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.productRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.evict(ctx, id)
	return nil
}

func (s *productService) List(ctx context.Context, search string, limit, offset int) ([]*models.Product, error) {
	limit, offset, err := common.ValidatePaginationParams(limit, offset)
	if err != nil {
		return nil, err
	}
	return s.productRepo.List(ctx, strings.TrimSpace(search), limit, offset)
}

func (s *productService) evict(ctx context.Context, id uuid.UUID) {
	if err := s.cacheService.DeleteProduct(ctx, id); err != nil {
		s.logger.Warn("product cache eviction failed", zap.String("product_id", id.String()), zap.Error(err))
	}
}
