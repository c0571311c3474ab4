package cache

import "time"

// BytesCache stores raw payloads with a TTL. The series adapter caches upstream
// responses through it.
type BytesCache interface {
	GetBytes(key string) (b []byte, ok bool, err error)
	SetBytes(key string, value []byte, ttl time.Duration) error
}
