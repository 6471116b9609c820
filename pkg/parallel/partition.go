package parallel

import (
	"sync"
)

// Range is a half-open index interval [Lo, Hi).
type Range struct {
	Lo int
	Hi int
}

// Partition splits [0, n) into at most parts contiguous ranges of nearly
// equal size. The assignment is static and deterministic, which gives each
// worker exclusive ownership of its vertices.
func Partition(n, parts int) []Range {
	if n <= 0 {
		return nil
	}
	if parts <= 0 {
		parts = 1
	}
	if parts > n {
		parts = n
	}

	ranges := make([]Range, 0, parts)
	chunk := n / parts
	extra := n % parts

	lo := 0
	for i := 0; i < parts; i++ {
		hi := lo + chunk
		if i < extra {
			hi++
		}
		ranges = append(ranges, Range{Lo: lo, Hi: hi})
		lo = hi
	}
	return ranges
}

// MapReduce fans the ranges of [0, n) out across the pool, collects one
// partial result per range and folds them in range order. Per-range partials
// merged after the fan-out avoid any shared accumulator, and the fixed fold
// order keeps floating-point reductions bit-stable.
func MapReduce[T any](pool *WorkerPool, n int, mapFn func(r Range) T, reduceFn func(a, b T) T) T {
	var zero T

	ranges := Partition(n, pool.Workers())
	if len(ranges) == 0 {
		return zero
	}

	partials := make([]T, len(ranges))
	var wg sync.WaitGroup

	for i, r := range ranges {
		i, r := i, r
		wg.Add(1)
		submitted := pool.Submit(func() {
			defer wg.Done()
			partials[i] = mapFn(r)
		})
		if !submitted {
			// Pool already closed; run inline to keep the result complete.
			partials[i] = mapFn(r)
			wg.Done()
		}
	}
	wg.Wait()

	acc := partials[0]
	for _, p := range partials[1:] {
		acc = reduceFn(acc, p)
	}
	return acc
}
