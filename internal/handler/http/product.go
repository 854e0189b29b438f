package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/emajohn/checkout/internal/models"
)

const (
	defaultPage  = 0
	defaultLimit = 10
)

type ProductService interface {
	// AddProduct inserts catalog product
	AddProduct(ctx context.Context, product *models.Product) (*models.Product, error)
	// ListProducts returns one catalog page
	ListProducts(ctx context.Context, page, limit int) ([]models.Product, error)
	// CountProducts returns total catalog size
	CountProducts(ctx context.Context) (int64, error)
}

// ProductHandler represents HTTP handler for catalog requests
type ProductHandler struct {
	svc ProductService
}

// NewProductHandler creates new ProductHandler instance
func NewProductHandler(svc ProductService) *ProductHandler {
	return &ProductHandler{svc: svc}
}

type productRequest struct {
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Category string  `json:"category"`
	Img      string  `json:"img"`
}

type productResponse struct {
	ID       uint64  `json:"id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Category string  `json:"category,omitempty"`
	Img      string  `json:"img,omitempty"`
}

// AddProduct inserts catalog product
// 200 — product stored;
// 400 — malformed product;
// 500 — internal error.
func (ph *ProductHandler) AddProduct() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req productRequest

		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		product := models.Product{
			Name:     req.Name,
			Price:    req.Price,
			Category: req.Category,
			Img:      req.Img,
		}

		created, err := ph.svc.AddProduct(r.Context(), &product)
		if err != nil {
			if errors.Is(err, models.ErrValidation) {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)

		if err := json.NewEncoder(w).Encode(toProductResponse(*created)); err != nil {
			return
		}
	}
}

// ListProducts returns catalog page selected by page and limit query params
// 200 — page served;
// 500 — internal error.
func (ph *ProductHandler) ListProducts() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page := queryInt(r, "page", defaultPage)
		limit := queryInt(r, "limit", defaultLimit)

		products, err := ph.svc.ListProducts(r.Context(), page, limit)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		resp := make([]productResponse, 0, len(products))
		for _, product := range products {
			resp = append(resp, toProductResponse(product))
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)

		if err := json.NewEncoder(w).Encode(resp); err != nil {
			return
		}
	}
}

type totalProductsResponse struct {
	TotalProducts int64 `json:"totalProducts"`
}

// TotalProducts returns total catalog size
// 200 — count served;
// 500 — internal error.
func (ph *ProductHandler) TotalProducts() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		total, err := ph.svc.CountProducts(r.Context())
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)

		if err := json.NewEncoder(w).Encode(totalProductsResponse{TotalProducts: total}); err != nil {
			return
		}
	}
}

func toProductResponse(p models.Product) productResponse {
	return productResponse{
		ID:       p.ID,
		Name:     p.Name,
		Price:    p.Price,
		Category: p.Category,
		Img:      p.Img,
	}
}

// queryInt reads a non-negative integer query param, falling back to def
func queryInt(r *http.Request, name string, def int) int {
	val := r.URL.Query().Get(name)
	if val == "" {
		return def
	}
	n, err := strconv.Atoi(val)
	if err != nil || n < 0 {
		return def
	}
	return n
}
