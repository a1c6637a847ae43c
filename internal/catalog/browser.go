// Package catalog tracks the book list view state: one fetched page, the
// server-reported page count, and the genre list used by the book form.
package catalog

import (
	"context"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"tokobuku/internal/api"
	"tokobuku/pkg/domain"
)

// Query selects one page of the catalog. The page size is fixed per browser.
type Query struct {
	Page      int
	Sort      string
	Order     string
	Condition string
}

// Browser pages through the catalog. A page is refetched only when the query
// changes; substring search runs over the already-fetched page so typing
// never triggers a request.
type Browser struct {
	api      *api.Client
	pageSize int

	mu         sync.Mutex
	query      Query
	loaded     bool
	books      []domain.Book
	totalPages int
	genres     []domain.Genre
}

// NewBrowser builds a browser starting at page 1, sorted by title ascending.
func NewBrowser(client *api.Client, pageSize int) *Browser {
	return &Browser{
		api:      client,
		pageSize: pageSize,
		query:    Query{Page: 1, Sort: "title", Order: "asc"},
	}
}

// Apply merges q into the current query and reports whether a refetch is
// needed. Zero-valued fields keep their current value; page is clamped to 1.
func (b *Browser) Apply(q Query) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	next := b.query
	if q.Page > 0 {
		next.Page = q.Page
	}
	if q.Sort != "" {
		next.Sort = q.Sort
	}
	if q.Order != "" {
		next.Order = q.Order
	}
	if q.Condition != "" {
		next.Condition = q.Condition
	}
	changed := next != b.query
	b.query = next
	return changed || !b.loaded
}

// Load fetches the current page. The genre list is fetched concurrently on
// first use; the two requests complete in no particular order and each
// updates only its own slice.
func (b *Browser) Load(ctx context.Context) error {
	b.mu.Lock()
	q := b.query
	needGenres := b.genres == nil
	b.mu.Unlock()

	var (
		books      []domain.Book
		totalPages int
		genres     []domain.Genre
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		books, totalPages, err = b.api.Books(gctx, api.BooksQuery{
			Page:      q.Page,
			Limit:     b.pageSize,
			Sort:      q.Sort,
			Order:     q.Order,
			Condition: q.Condition,
		})
		return err
	})
	if needGenres {
		g.Go(func() error {
			var err error
			genres, err = b.api.Genres(gctx)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	b.mu.Lock()
	b.books = books
	b.totalPages = totalPages
	if needGenres {
		b.genres = genres
	}
	b.loaded = true
	b.mu.Unlock()
	return nil
}

// Page returns the fetched books and the server-reported total page count.
func (b *Browser) Page() ([]domain.Book, int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	books := make([]domain.Book, len(b.books))
	copy(books, b.books)
	return books, b.totalPages
}

// Query returns the effective query.
func (b *Browser) Query() Query {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.query
}

// Genres returns the cached genre list.
func (b *Browser) Genres() []domain.Genre {
	b.mu.Lock()
	defer b.mu.Unlock()
	genres := make([]domain.Genre, len(b.genres))
	copy(genres, b.genres)
	return genres
}

// Search filters the fetched page without refetching: case-insensitive
// substring match on title, writer, and genre name. The match is scoped to
// the current page's data, not the full result set.
func (b *Browser) Search(q string) []domain.Book {
	books, _ := b.Page()
	q = strings.ToLower(strings.TrimSpace(q))
	if q == "" {
		return books
	}
	filtered := books[:0]
	for _, book := range books {
		if matches(book, q) {
			filtered = append(filtered, book)
		}
	}
	return filtered
}

func matches(b domain.Book, q string) bool {
	return strings.Contains(strings.ToLower(b.Title), q) ||
		strings.Contains(strings.ToLower(b.Writer), q) ||
		strings.Contains(strings.ToLower(b.Genre.Name), q)
}
