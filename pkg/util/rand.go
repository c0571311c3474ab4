package util

import (
    "math/rand"
    "sync"
    "time"
)

// Rand is a mutex-guarded *rand.Rand safe for concurrent readers.
type Rand struct {
    mu sync.Mutex
    r  *rand.Rand
}

// NewRand seeds a source. A zero seed uses the current time.
func NewRand(seed int64) *Rand {
    if seed == 0 {
        seed = time.Now().UnixNano()
    }
    return &Rand{r: rand.New(rand.NewSource(seed))}
}

// Float64 returns a value in [0, 1).
func (r *Rand) Float64() float64 {
    r.mu.Lock()
    v := r.r.Float64()
    r.mu.Unlock()
    return v
}

// Intn returns a value in [0, n).
func (r *Rand) Intn(n int) int {
    r.mu.Lock()
    v := r.r.Intn(n)
    r.mu.Unlock()
    return v
}

// Perm returns a random permutation of [0, n).
func (r *Rand) Perm(n int) []int {
    r.mu.Lock()
    v := r.r.Perm(n)
    r.mu.Unlock()
    return v
}

// Span returns a value in [base, base+width). The second argument is a
// width, not an upper bound.
func (r *Rand) Span(base, width float64) float64 {
    return base + r.Float64()*width
}
