// Package catalog holds the externally sourced categories and the currently
// displayed product list. State only changes on successful fetches.
package catalog

import (
	"context"
	"sync"

	"github.com/angelmondragon/miniapp-storefront/internal/cart"
	"github.com/angelmondragon/miniapp-storefront/pkg/backend"
	pkgerrors "github.com/angelmondragon/miniapp-storefront/pkg/errors"
)

// Client is the read surface of the catalog collaborator.
type Client interface {
	ListCategories(ctx context.Context) ([]backend.Category, error)
	ListProducts(ctx context.Context, categoryID string) ([]backend.Product, error)
}

// Snapshot is what renderers see after a catalog change.
type Snapshot struct {
	Categories []backend.Category
	Products   []backend.Product
	Selected   string
}

// Observer is invoked synchronously after every committed catalog change.
type Observer func(Snapshot)

// Store caches catalog reads and owns the category filter. Concurrent filter
// requests are tagged with a sequence number; a response that is not for the
// latest issued request is discarded, so rapid category switching cannot let
// an older response overwrite a newer one.
type Store struct {
	mu         sync.Mutex
	client     Client
	categories []backend.Category
	products   []backend.Product
	selected   string
	seq        uint64
	observers  []Observer
}

// NewStore builds a catalog store backed by the given client.
func NewStore(client Client) *Store {
	return &Store{client: client}
}

// Subscribe registers an observer for catalog snapshots.
func (s *Store) Subscribe(fn Observer) {
	if fn == nil {
		return
	}
	s.mu.Lock()
	s.observers = append(s.observers, fn)
	s.mu.Unlock()
}

// LoadCategories fetches and replaces the category list. On failure the
// current list is left untouched.
func (s *Store) LoadCategories(ctx context.Context) error {
	categories, err := s.client.ListCategories(ctx)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load categories")
	}

	s.mu.Lock()
	s.categories = categories
	snapshot := s.snapshotLocked()
	s.mu.Unlock()

	s.notify(snapshot)
	return nil
}

// LoadProducts fetches the product list for the current filter. A failed or
// stale fetch leaves the displayed products untouched.
func (s *Store) LoadProducts(ctx context.Context) error {
	s.mu.Lock()
	s.seq++
	issued := s.seq
	selected := s.selected
	s.mu.Unlock()

	return s.fetchProducts(ctx, issued, selected)
}

// Select toggles the category filter: selecting the active category again
// clears it. The product list is reloaded for the new filter.
func (s *Store) Select(ctx context.Context, categoryID string) error {
	s.mu.Lock()
	if s.selected == categoryID {
		s.selected = ""
	} else {
		s.selected = categoryID
	}
	s.seq++
	issued := s.seq
	selected := s.selected
	snapshot := s.snapshotLocked()
	s.mu.Unlock()

	// Highlighting updates immediately; the grid only changes on success.
	s.notify(snapshot)

	return s.fetchProducts(ctx, issued, selected)
}

func (s *Store) fetchProducts(ctx context.Context, issued uint64, categoryID string) error {
	products, err := s.client.ListProducts(ctx, categoryID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load products")
	}

	s.mu.Lock()
	if issued != s.seq {
		// A newer request was issued while this one was in flight.
		s.mu.Unlock()
		return nil
	}
	s.products = products
	snapshot := s.snapshotLocked()
	s.mu.Unlock()

	s.notify(snapshot)
	return nil
}

// Categories returns the cached category list.
func (s *Store) Categories() []backend.Category {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]backend.Category, len(s.categories))
	copy(out, s.categories)
	return out
}

// Products returns the currently displayed product list.
func (s *Store) Products() []backend.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]backend.Product, len(s.products))
	copy(out, s.products)
	return out
}

// Selected returns the active category filter, empty when unfiltered.
func (s *Store) Selected() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selected
}

// Product looks up a displayed product by ID.
func (s *Store) Product(id string) (backend.Product, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.products {
		if p.ID == id {
			return p, true
		}
	}
	return backend.Product{}, false
}

// ToCartProduct converts a catalog product into the shape the cart snapshots.
func ToCartProduct(p backend.Product) cart.Product {
	return cart.Product{
		ID:         p.ID,
		Name:       p.Name,
		Price:      p.Price,
		Image:      p.Image,
		CategoryID: p.CategoryID,
	}
}

func (s *Store) snapshotLocked() Snapshot {
	snapshot := Snapshot{
		Categories: make([]backend.Category, len(s.categories)),
		Products:   make([]backend.Product, len(s.products)),
		Selected:   s.selected,
	}
	copy(snapshot.Categories, s.categories)
	copy(snapshot.Products, s.products)
	return snapshot
}

func (s *Store) notify(snapshot Snapshot) {
	s.mu.Lock()
	observers := make([]Observer, len(s.observers))
	copy(observers, s.observers)
	s.mu.Unlock()

	for _, fn := range observers {
		fn(snapshot)
	}
}
