package utils

import (
	"context"
	"sync"

	"golang.org/x/sync/semaphore"
)

// Mapper runs an indexed function over n items with bounded concurrency
// and returns the per-index errors. Implementations must stop scheduling
// new work once ctx is cancelled; indices never scheduled keep ctx.Err().
type Mapper interface {
	Map(ctx context.Context, n int, fn func(ctx context.Context, i int) error) []error
}

// PoolMapper distributes indices to a fixed set of worker goroutines over
// a channel.
type PoolMapper struct {
	Workers int
}

// NewPoolMapper creates a pool-backed mapper.
func NewPoolMapper(workers int) *PoolMapper {
	if workers <= 0 {
		workers = 1
	}
	return &PoolMapper{Workers: workers}
}

// Map implements Mapper.
func (p *PoolMapper) Map(ctx context.Context, n int, fn func(ctx context.Context, i int) error) []error {
	errs := make([]error, n)
	if n == 0 {
		return errs
	}

	workers := p.Workers
	if workers > n {
		workers = n
	}

	indices := make(chan int)
	var wg sync.WaitGroup
	var mu sync.Mutex

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case i, ok := <-indices:
					if !ok {
						return
					}
					err := fn(ctx, i)
					mu.Lock()
					errs[i] = err
					mu.Unlock()
				}
			}
		}()
	}

	next := 0
submit:
	for ; next < n; next++ {
		select {
		case <-ctx.Done():
			break submit
		case indices <- next:
		}
	}
	close(indices)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		mu.Lock()
		for i := next; i < n; i++ {
			errs[i] = err
		}
		mu.Unlock()
	}
	return errs
}

// SemaphoreMapper starts one goroutine per item, gated by a weighted
// semaphore admitting at most Limit at a time.
type SemaphoreMapper struct {
	Limit int64
}

// NewSemaphoreMapper creates a semaphore-gated mapper.
func NewSemaphoreMapper(limit int) *SemaphoreMapper {
	if limit <= 0 {
		limit = 1
	}
	return &SemaphoreMapper{Limit: int64(limit)}
}

// Map implements Mapper.
func (s *SemaphoreMapper) Map(ctx context.Context, n int, fn func(ctx context.Context, i int) error) []error {
	errs := make([]error, n)
	if n == 0 {
		return errs
	}

	sem := semaphore.NewWeighted(s.Limit)
	var wg sync.WaitGroup
	var mu sync.Mutex

	for i := 0; i < n; i++ {
		if err := sem.Acquire(ctx, 1); err != nil {
			mu.Lock()
			errs[i] = err
			mu.Unlock()
			continue
		}
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			defer sem.Release(1)
			err := fn(ctx, i)
			mu.Lock()
			errs[i] = err
			mu.Unlock()
		}(i)
	}

	wg.Wait()
	return errs
}

// FirstError returns the first non-nil error from a slice of errors
func FirstError(errors []error) error {
	for _, err := range errors {
		if err != nil {
			return err
		}
	}
	return nil
}

// CollectErrors collects all non-nil errors from a slice
func CollectErrors(errors []error) []error {
	var result []error
	for _, err := range errors {
		if err != nil {
			result = append(result, err)
		}
	}
	return result
}
