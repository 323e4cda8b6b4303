package arcade

import (
	"context"
)

// FetchFunc fetches the page addressed by url. The concrete client binds one
// of these into every Page it constructs so navigation keeps working without
// the Page owning transport or credentials.
type FetchFunc[T any] func(ctx context.Context, url string) (*Page[T], error)

// Page is one fetched batch of items plus the navigation links the server
// sent alongside it. A Page is immutable once constructed and safe to share
// between goroutines.
//
// A Page covers exactly one server response: Count and Item address only the
// items of this page, never the whole logical collection. Walk the full
// collection with Walk or the package-level helpers.
type Page[T any] struct {
	items     []T
	links     PageLinks
	relations []Relation
	fetch     FetchFunc[T]
}

// NewPage constructs a Page from decoded items and parsed relations. The
// items and relations are copied. fetch may be nil, producing a pure data
// page that cannot navigate.
func NewPage[T any](items []T, relations []Relation, fetch FetchFunc[T]) *Page[T] {
	page := &Page[T]{
		items:     make([]T, len(items)),
		relations: make([]Relation, len(relations)),
		links:     ResolvePageLinks(relations),
		fetch:     fetch,
	}

	copy(page.items, items)
	copy(page.relations, relations)

	return page
}

// Count returns the number of items on this page.
func (p *Page[T]) Count() int {
	return len(p.items)
}

// Item returns the item at index i in server response order.
func (p *Page[T]) Item(i int) T {
	return p.items[i]
}

// Items returns a copy of this page's items in server response order.
func (p *Page[T]) Items() []T {
	items := make([]T, len(p.items))
	copy(items, p.items)

	return items
}

// Links returns the four navigation links resolved for this page.
func (p *Page[T]) Links() PageLinks {
	return p.links
}

// Relations returns a copy of every relation parsed from the response,
// including ones outside the four paging names.
func (p *Page[T]) Relations() []Relation {
	relations := make([]Relation, len(p.relations))
	copy(relations, p.relations)

	return relations
}

// HasNext reports whether the server advertised a next page.
func (p *Page[T]) HasNext() bool {
	return p.links.Next != ""
}

// Next fetches the page behind the next link. It returns ErrNoMoreItems when
// the server advertised no next page and ErrPageNotNavigable when the page
// carries no fetch function.
func (p *Page[T]) Next(ctx context.Context) (*Page[T], error) {
	if p.links.Next == "" {
		return nil, ErrNoMoreItems
	}

	return p.Follow(ctx, p.links.Next)
}

// Follow fetches an arbitrary link through the page's fetch binding. Use
// Links or Relations to obtain candidate URLs.
func (p *Page[T]) Follow(ctx context.Context, url string) (*Page[T], error) {
	if url == "" {
		return nil, ErrEmptyLink
	}

	if p.fetch == nil {
		return nil, ErrPageNotNavigable
	}

	return p.fetch(ctx, url)
}

// Walk returns a Walker positioned at the start of this page.
func (p *Page[T]) Walk() *Walker[T] {
	return NewWalker(p)
}
