package repository

import (
	"context"

	"github.com/emajohn/checkout/internal/models"
	"github.com/emajohn/checkout/internal/repository/postgres"
)

const (
	insertProductQuery = `
						INSERT INTO products (name, price, category, img)
						VALUES ($1, $2, $3, $4)
						RETURNING id, name, price, category, img, created_at
`
	selectProductsQuery = `
						SELECT id, name, price, category, img, created_at FROM products
						ORDER BY id
						OFFSET $1 LIMIT $2
`
	countProductsQuery = `SELECT count(*) FROM products`
)

// ProductRepository implements catalog storage on postgres
type ProductRepository struct {
	db *postgres.DB
}

// NewProductRepository creates new ProductRepository instance
func NewProductRepository(db *postgres.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

// CreateProduct inserts new catalog product
func (pr *ProductRepository) CreateProduct(ctx context.Context, product *models.Product) (*models.Product, error) {
	err := pr.db.QueryRow(ctx, insertProductQuery, product.Name, product.Price, product.Category, product.Img).
		Scan(&product.ID, &product.Name, &product.Price, &product.Category, &product.Img, &product.CreatedAt)
	if err != nil {
		return nil, err
	}

	return product, nil
}

// GetProducts returns one catalog page
func (pr *ProductRepository) GetProducts(ctx context.Context, page, limit int) ([]models.Product, error) {
	rows, err := pr.db.Query(ctx, selectProductsQuery, page*limit, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	products := []models.Product{}

	for rows.Next() {
		product := models.Product{}
		err = rows.Scan(&product.ID, &product.Name, &product.Price, &product.Category, &product.Img, &product.CreatedAt)
		if err != nil {
			continue
		}
		products = append(products, product)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return products, nil
}

// CountProducts returns total number of catalog products
func (pr *ProductRepository) CountProducts(ctx context.Context) (int64, error) {
	var total int64
	if err := pr.db.QueryRow(ctx, countProductsQuery).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}
