package redisx

import (
	"github.com/redis/go-redis/v9"
)

// New creates redis client for addr
func New(addr string) *redis.Client {
	return redis.NewClient(&redis.Options{Addr: addr})
}
