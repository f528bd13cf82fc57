// Package cache abstracts a byte cache with two backends: in-process
// memory for dev and tests, redis for deployments with more than one
// replica. The app registry uses it as a read-through cache for app rows.
package cache

import "time"

// Cache is the minimal contract the registry needs.
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration)
	Delete(key string)
}
