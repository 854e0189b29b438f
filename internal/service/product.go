package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/emajohn/checkout/internal/logger"
	"github.com/emajohn/checkout/internal/models"
	"github.com/emajohn/checkout/internal/redisx"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// ProductRepository is interface for interacting with catalog data
type ProductRepository interface {
	// CreateProduct inserts new catalog product
	CreateProduct(ctx context.Context, product *models.Product) (*models.Product, error)
	// GetProducts returns one catalog page
	GetProducts(ctx context.Context, page, limit int) ([]models.Product, error)
	// CountProducts returns total number of catalog products
	CountProducts(ctx context.Context) (int64, error)
}

// ProductService serves the catalog with a read-through cache.
// rdb may be nil, caching is then skipped entirely.
type ProductService struct {
	repo ProductRepository
	rdb  *redis.Client
}

// NewProductService creates new ProductService instance
func NewProductService(repo ProductRepository, rdb *redis.Client) *ProductService {
	return &ProductService{repo: repo, rdb: rdb}
}

// AddProduct inserts catalog product and drops the stale count cache
func (ps *ProductService) AddProduct(ctx context.Context, product *models.Product) (*models.Product, error) {
	if product.Name == "" || product.Price <= 0 {
		return nil, fmt.Errorf("%w: product requires a name and a positive price", models.ErrValidation)
	}

	product, err := ps.repo.CreateProduct(ctx, product)
	if err != nil {
		return nil, err
	}

	if ps.rdb != nil {
		if err := ps.rdb.Del(ctx, redisx.KeyProductCount).Err(); err != nil {
			logger.Log.Warn("drop product count cache", zap.Error(err))
		}
	}

	return product, nil
}

// ListProducts returns one catalog page, cached briefly
func (ps *ProductService) ListProducts(ctx context.Context, page, limit int) ([]models.Product, error) {
	key := fmt.Sprintf(redisx.KeyProductPage, page, limit)

	if ps.rdb != nil {
		cached, err := ps.rdb.Get(ctx, key).Result()
		if err == nil {
			var products []models.Product
			if err := json.Unmarshal([]byte(cached), &products); err == nil {
				return products, nil
			}
		} else if !errors.Is(err, redis.Nil) {
			logger.Log.Warn("product page cache read", zap.Error(err))
		}
	}

	products, err := ps.repo.GetProducts(ctx, page, limit)
	if err != nil {
		return nil, err
	}

	if ps.rdb != nil {
		if raw, err := json.Marshal(products); err == nil {
			if err := ps.rdb.Set(ctx, key, raw, redisx.TTLProductCache).Err(); err != nil {
				logger.Log.Warn("product page cache write", zap.Error(err))
			}
		}
	}

	return products, nil
}

// CountProducts returns total catalog size, cached briefly
func (ps *ProductService) CountProducts(ctx context.Context) (int64, error) {
	if ps.rdb != nil {
		if cached, err := ps.rdb.Get(ctx, redisx.KeyProductCount).Int64(); err == nil {
			return cached, nil
		}
	}

	total, err := ps.repo.CountProducts(ctx)
	if err != nil {
		return 0, err
	}

	if ps.rdb != nil {
		if err := ps.rdb.Set(ctx, redisx.KeyProductCount, total, redisx.TTLProductCache).Err(); err != nil {
			logger.Log.Warn("product count cache write", zap.Error(err))
		}
	}

	return total, nil
}
