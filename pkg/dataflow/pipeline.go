package dataflow

import (
	"context"
	"sync"
)

// Stream is a read-only channel of items.
type Stream[T any] <-chan T

// From creates a stream from a slice of items.
func From[T any](ctx context.Context, items ...T) Stream[T] {
	out := make(chan T, len(items))
	go func() {
		defer close(out)
		for _, item := range items {
			select {
			case <-ctx.Done():
				return
			case out <- item:
			}
		}
	}()
	return out
}

// Map transforms every item with fn, running WithWorkers goroutines. Output
// order is not preserved when more than one worker runs. Items whose fn
// fails are dropped after the error handler has seen the error.
func Map[T, R any](ctx context.Context, input Stream[T], fn func(context.Context, T) (R, error), opts ...Option) Stream[R] {
	cfg := newConfig(opts)
	out := make(chan R, cfg.bufferSize)

	var wg sync.WaitGroup
	worker := func() {
		defer wg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-input:
				if !ok {
					return
				}
				res, err := fn(ctx, msg)
				if err != nil {
					cfg.handle(err)
					continue
				}
				select {
				case <-ctx.Done():
					return
				case out <- res:
				}
			}
		}
	}

	wg.Add(cfg.workers)
	for i := 0; i < cfg.workers; i++ {
		go worker()
	}
	go func() {
		wg.Wait()
		close(out)
	}()
	return out
}

// Collect drains the stream into a slice.
func Collect[T any](ctx context.Context, input Stream[T]) ([]T, error) {
	var out []T
	for {
		select {
		case <-ctx.Done():
			return out, ctx.Err()
		case msg, ok := <-input:
			if !ok {
				return out, nil
			}
			out = append(out, msg)
		}
	}
}
