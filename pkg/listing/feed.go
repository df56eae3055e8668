package listing

import (
	"context"
	"strings"
	"sync"
	"time"
)

// Feed is a searchable order list: filter changes reload at once, search
// text reloads after the debounce delay, and scrolling loads further pages.
type Feed[T any] struct {
	ctx      context.Context
	pager    *Pager[T]
	search   *Debouncer[string]
	onChange func(Snapshot[T])

	mu      sync.Mutex
	filters Query
}

type FeedConfig[T any] struct {
	Fetcher  Fetcher[T]
	Debounce time.Duration
	Options  []Option
	// OnChange is called after every load, successful or not.
	OnChange func(Snapshot[T])
}

// NewFeed creates a feed whose loads run with ctx.
func NewFeed[T any](ctx context.Context, cfg FeedConfig[T]) *Feed[T] {
	f := &Feed[T]{
		ctx:      ctx,
		pager:    NewPager(cfg.Fetcher, cfg.Options...),
		onChange: cfg.OnChange,
	}
	f.search = NewDebouncer(cfg.Debounce, f.applySearch)
	return f
}

// SetFilters replaces every filter but the search text and reloads.
func (f *Feed[T]) SetFilters(q Query) error {
	f.mu.Lock()
	q.Search = f.filters.Search
	f.filters = q
	f.mu.Unlock()
	return f.reload(q)
}

// Search schedules a reload with text once typing pauses.
func (f *Feed[T]) Search(text string) {
	f.search.Trigger(strings.TrimSpace(text))
}

func (f *Feed[T]) applySearch(text string) {
	f.mu.Lock()
	if f.filters.Search == text && f.pager.Query() == f.filters {
		f.mu.Unlock()
		return
	}
	f.filters.Search = text
	q := f.filters
	f.mu.Unlock()
	_ = f.reload(q)
}

func (f *Feed[T]) reload(q Query) error {
	f.pager.Reset(q)
	err := f.pager.LoadMore(f.ctx)
	f.notify()
	return err
}

func (f *Feed[T]) OnScroll(position, extent float64) error {
	loaded, err := f.pager.OnScroll(f.ctx, position, extent)
	if loaded {
		f.notify()
	}
	return err
}

func (f *Feed[T]) Snapshot() Snapshot[T] {
	return f.pager.Snapshot()
}

// Close cancels a pending search.
func (f *Feed[T]) Close() {
	f.search.Stop()
}

func (f *Feed[T]) notify() {
	if f.onChange != nil {
		f.onChange(f.pager.Snapshot())
	}
}
