package arcade

import (
	"context"
	"errors"
	"fmt"
)

// Walker is a stateful cursor that presents every page reachable from a
// starting Page via next links as one logical ordered sequence. Items are
// yielded in server order within a page and page order across pages. The
// walker fetches lazily: a page is requested only once the previous one is
// fully consumed, with at most one fetch in flight.
//
// A Walker is forward-only and not restartable. Once Next returns an error
// other than ErrNoMoreItems the walker is terminal: every later call returns
// that same error without issuing further fetches. A Walker is not safe for
// concurrent use.
type Walker[T any] struct {
	page *Page[T]
	pos  int
	err  error
	done bool
}

// NewWalker returns a Walker positioned at the start of page.
func NewWalker[T any](page *Page[T]) *Walker[T] {
	return &Walker[T]{page: page}
}

// Next yields the next item of the logical sequence. Consuming a buffered
// item performs no I/O; crossing a page boundary fetches the next page with
// the caller's ctx. Exhaustion is signalled with ErrNoMoreItems and is
// repeatable, never an error state. A fetch or cancellation failure is
// terminal and sticky.
func (w *Walker[T]) Next(ctx context.Context) (T, error) {
	var zero T

	if w.err != nil {
		return zero, w.err
	}

	if w.done {
		return zero, ErrNoMoreItems
	}

	// Empty pages in the middle of a sequence advance again until an item
	// or the end of the chain is found.
	for w.pos >= w.page.Count() {
		if !w.page.HasNext() {
			w.done = true

			return zero, ErrNoMoreItems
		}

		next, err := w.page.Next(ctx)
		if err != nil {
			w.err = fmt.Errorf("fetching next page: %w", err)

			return zero, w.err
		}

		w.page = next
		w.pos = 0
	}

	item := w.page.Item(w.pos)
	w.pos++

	return item, nil
}

// HasNext reports whether another item may be available. It performs no I/O
// and is optimistic: a pending next link counts even when the next page turns
// out empty and last. A terminal walker always reports false.
func (w *Walker[T]) HasNext() bool {
	if w.err != nil || w.done {
		return false
	}

	return w.pos < w.page.Count() || w.page.HasNext()
}

// Err returns the terminal error, or nil. Natural exhaustion is not an
// error.
func (w *Walker[T]) Err() error {
	return w.err
}

// All consumes the walker to exhaustion and returns every remaining item.
func (w *Walker[T]) All(ctx context.Context) ([]T, error) {
	var items []T

	for {
		item, err := w.Next(ctx)
		if errors.Is(err, ErrNoMoreItems) {
			return items, nil
		}

		if err != nil {
			return nil, err
		}

		items = append(items, item)
	}
}

// ForEach applies fn to every remaining item in order, stopping early if fn
// returns an error.
func (w *Walker[T]) ForEach(ctx context.Context, fn func(T) error) error {
	for {
		item, err := w.Next(ctx)
		if errors.Is(err, ErrNoMoreItems) {
			return nil
		}

		if err != nil {
			return err
		}

		if err := fn(item); err != nil {
			return err
		}
	}
}

// WalkOptions bounds the page-level helpers.
type WalkOptions struct {
	// MaxPages caps how many pages are visited. Zero means unlimited.
	MaxPages int
}

// DefaultWalkOptions returns unbounded options.
func DefaultWalkOptions() *WalkOptions {
	return &WalkOptions{}
}

// EachPage applies fn to first and every page after it, fetching each
// successor only after fn returned. A nil opts means no page cap.
func EachPage[T any](ctx context.Context, first *Page[T], opts *WalkOptions, fn func(*Page[T]) error) error {
	limit := 0
	if opts != nil {
		limit = opts.MaxPages
	}

	page := first

	for count := 1; ; count++ {
		if err := fn(page); err != nil {
			return err
		}

		if limit > 0 && count >= limit {
			return nil
		}

		if !page.HasNext() {
			return nil
		}

		next, err := page.Next(ctx)
		if err != nil {
			return fmt.Errorf("fetching next page: %w", err)
		}

		page = next
	}
}

// AllPages collects the items of first and every page after it.
func AllPages[T any](ctx context.Context, first *Page[T], opts *WalkOptions) ([]T, error) {
	var items []T

	err := EachPage(ctx, first, opts, func(page *Page[T]) error {
		items = append(items, page.items...)

		return nil
	})
	if err != nil {
		return nil, err
	}

	return items, nil
}

// PageResult is one streamed page or the error that ended the stream.
type PageResult[T any] struct {
	Page *Page[T]
	Err  error
}

// StreamPages delivers first and every page after it on an unbuffered
// channel. The next fetch starts only after the current page was received,
// so at most one fetch is in flight. The channel closes after the last page,
// after a failed fetch (delivered as PageResult.Err), or once ctx is done.
func StreamPages[T any](ctx context.Context, first *Page[T], opts *WalkOptions) <-chan PageResult[T] {
	results := make(chan PageResult[T])

	go func() {
		defer close(results)

		limit := 0
		if opts != nil {
			limit = opts.MaxPages
		}

		page := first

		for count := 1; ; count++ {
			select {
			case results <- PageResult[T]{Page: page}:
			case <-ctx.Done():
				return
			}

			if limit > 0 && count >= limit {
				return
			}

			if !page.HasNext() {
				return
			}

			next, err := page.Next(ctx)
			if err != nil {
				select {
				case results <- PageResult[T]{Err: fmt.Errorf("fetching next page: %w", err)}:
				case <-ctx.Done():
				}

				return
			}

			page = next
		}
	}()

	return results
}
