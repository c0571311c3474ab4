package cache

import "time"

// LayeredCache reads through an in-process L1 before a shared L2 (Redis).
// Writes go to L2 first; an L2 write failure still populates L1.
type LayeredCache struct {
	l1    *TTLCache
	l2    BytesCache
	l1TTL time.Duration
}

// NewLayeredCache keeps L1 entries for at most l1TTL.
func NewLayeredCache(l2 BytesCache, l1TTL time.Duration) *LayeredCache {
	if l1TTL <= 0 {
		l1TTL = 5 * time.Minute
	}
	return &LayeredCache{l1: NewTTLCache(), l2: l2, l1TTL: l1TTL}
}

func (lc *LayeredCache) GetBytes(key string) ([]byte, bool, error) {
	if b, ok, _ := lc.l1.GetBytes(key); ok {
		return b, true, nil
	}
	b, ok, err := lc.l2.GetBytes(key)
	if err != nil || !ok {
		return nil, false, err
	}
	_ = lc.l1.SetBytes(key, b, lc.l1TTL)
	return b, true, nil
}

func (lc *LayeredCache) SetBytes(key string, value []byte, ttl time.Duration) error {
	err := lc.l2.SetBytes(key, value, ttl)
	l1 := lc.l1TTL
	if ttl > 0 && ttl < l1 {
		l1 = ttl
	}
	_ = lc.l1.SetBytes(key, value, l1)
	return err
}
