package listing

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/singleflight"
)

const (
	DefaultPageSize  int32 = 20
	DefaultThreshold       = 0.8
)

// Query is the set of list filters. Empty fields are not applied.
type Query struct {
	BranchID string
	Category string
	DateFrom string
	DateTo   string
	Search   string
}

func (q Query) key() string {
	return fmt.Sprintf("%s|%s|%s|%s|%s", q.BranchID, q.Category, q.DateFrom, q.DateTo, q.Search)
}

// Page is one page of results. Pages are numbered from 1.
type Page[T any] struct {
	Items   []T
	Total   int32
	HasMore bool
}

type Fetcher[T any] interface {
	Fetch(ctx context.Context, query Query, page, pageSize int32) (*Page[T], error)
}

// FetchFunc adapts a function to the Fetcher interface.
type FetchFunc[T any] func(ctx context.Context, query Query, page, pageSize int32) (*Page[T], error)

func (f FetchFunc[T]) Fetch(ctx context.Context, query Query, page, pageSize int32) (*Page[T], error) {
	return f(ctx, query, page, pageSize)
}

// Snapshot is a copy of the pager state.
type Snapshot[T any] struct {
	Query   Query
	Items   []T
	Total   int32
	HasMore bool
	Loading bool
	Err     error
}

type Option func(*options)

type options struct {
	pageSize  int32
	threshold float64
}

func WithPageSize(n int32) Option {
	return func(o *options) {
		if n > 0 {
			o.pageSize = n
		}
	}
}

// WithThreshold sets the scroll fraction, in (0, 1], at which the next page loads.
func WithThreshold(f float64) Option {
	return func(o *options) {
		if f > 0 && f <= 1 {
			o.threshold = f
		}
	}
}

// Pager accumulates the pages of one query. At most one fetch is in flight
// for a given query and page; concurrent callers share its result.
type Pager[T any] struct {
	fetcher   Fetcher[T]
	pageSize  int32
	threshold float64
	group     singleflight.Group

	mu       sync.Mutex
	query    Query
	gen      uint64
	items    []T
	nextPage int32
	total    int32
	hasMore  bool
	loading  int
	err      error
}

func NewPager[T any](fetcher Fetcher[T], opts ...Option) *Pager[T] {
	o := options{pageSize: DefaultPageSize, threshold: DefaultThreshold}
	for _, opt := range opts {
		opt(&o)
	}
	return &Pager[T]{
		fetcher:   fetcher,
		pageSize:  o.pageSize,
		threshold: o.threshold,
		nextPage:  1,
		hasMore:   true,
	}
}

// Reset drops every loaded page and starts over with q. Results of fetches
// still running for the previous query are discarded.
func (p *Pager[T]) Reset(q Query) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.query = q
	p.gen++
	p.items = nil
	p.nextPage = 1
	p.total = 0
	p.hasMore = true
	p.err = nil
}

func (p *Pager[T]) Query() Query {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.query
}

// LoadMore fetches the next page unless every page is loaded.
func (p *Pager[T]) LoadMore(ctx context.Context) error {
	p.mu.Lock()
	if !p.hasMore {
		p.mu.Unlock()
		return nil
	}
	query, gen, page := p.query, p.gen, p.nextPage
	p.mu.Unlock()

	// The fetch is shared by every caller that joins it, so it must outlive
	// the caller that happened to start it. Each caller still stops waiting
	// when its own ctx ends.
	shared := context.WithoutCancel(ctx)
	key := fmt.Sprintf("%d|%s|%d", gen, query.key(), page)
	ch := p.group.DoChan(key, func() (interface{}, error) {
		return nil, p.fetch(shared, query, gen, page)
	})
	select {
	case res := <-ch:
		return res.Err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *Pager[T]) fetch(ctx context.Context, query Query, gen uint64, page int32) error {
	p.mu.Lock()
	if gen != p.gen || page != p.nextPage {
		p.mu.Unlock()
		return nil
	}
	p.loading++
	p.mu.Unlock()

	result, err := p.fetcher.Fetch(ctx, query, page, p.pageSize)

	p.mu.Lock()
	defer p.mu.Unlock()
	p.loading--
	if gen != p.gen {
		return nil
	}
	if err != nil {
		p.err = err
		return err
	}
	p.err = nil
	p.items = append(p.items, result.Items...)
	p.total = result.Total
	p.hasMore = result.HasMore
	p.nextPage = page + 1
	return nil
}

// OnScroll loads the next page once position/extent reaches the threshold.
// It reports whether a load was attempted.
func (p *Pager[T]) OnScroll(ctx context.Context, position, extent float64) (bool, error) {
	if extent <= 0 || position/extent < p.threshold {
		return false, nil
	}
	p.mu.Lock()
	more := p.hasMore
	p.mu.Unlock()
	if !more {
		return false, nil
	}
	return true, p.LoadMore(ctx)
}

func (p *Pager[T]) Snapshot() Snapshot[T] {
	p.mu.Lock()
	defer p.mu.Unlock()
	return Snapshot[T]{
		Query:   p.query,
		Items:   append([]T(nil), p.items...),
		Total:   p.total,
		HasMore: p.hasMore,
		Loading: p.loading > 0,
		Err:     p.err,
	}
}
