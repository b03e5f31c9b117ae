package pacmcache

// Limiter is a buffered-channel semaphore bounding concurrent tarball
// downloads (Store holds a slot only around the HTTP fetch), mirrored on turbo's httpCache
// requestLimiter (cli/internal/cache/cache_http.go), which uses the same
// make(limiter, N) pattern to cap concurrent artifact requests.
type Limiter chan struct{}

// NewLimiter returns a Limiter allowing up to n concurrent holders.
func NewLimiter(n int) Limiter {
	return make(Limiter, n)
}

// Acquire blocks until a slot is free.
func (l Limiter) Acquire() { l <- struct{}{} }

// Release frees a slot.
func (l Limiter) Release() { <-l }

// MaxConcurrentFetches is the global cap on simultaneous download/extract
// tasks across an entire install operation, per §4.3.
const MaxConcurrentFetches = 20
