package redisx

import "time"

const (
	// Catalog page cache: products:page:{page}:{limit} -> json array
	KeyProductPage = "products:page:%d:%d"

	// Catalog size cache: products:count -> integer
	KeyProductCount = "products:count"
)

var (
	TTLProductCache = 30 * time.Second
)
