package cart

import (
	"context"
	"strings"
	"sync"

	"github.com/angelmondragon/miniapp-storefront/pkg/logger"
	"github.com/shopspring/decimal"
)

// Product is the catalog data the cart snapshots at add time. The cart never
// references catalog entries live, so later catalog changes cannot drift a
// line that is already in the cart.
type Product struct {
	ID         string
	Name       string
	Price      decimal.Decimal
	Image      string
	CategoryID string
}

// Line aggregates one product inside the cart. Quantity is always >= 1; a
// line whose quantity would drop to zero is removed instead.
type Line struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Image     string          `json:"image,omitempty"`
	Quantity  int             `json:"quantity"`
}

// Subtotal returns unit price times quantity.
func (l Line) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Storage persists the full line sequence under a fixed key.
type Storage interface {
	Load(ctx context.Context) ([]Line, error)
	Save(ctx context.Context, lines []Line) error
}

// Observer is invoked synchronously after every committed mutation with a
// snapshot of the new state.
type Observer func(lines []Line)

// Store owns the cart state. It is the single system of record for what the
// user intends to buy: mutations persist first, then notify observers.
type Store struct {
	mu        sync.Mutex
	lines     []Line
	storage   Storage
	logg      *logger.Logger
	observers []Observer
}

// NewStore builds an empty cart backed by the provided storage.
func NewStore(storage Storage, logg *logger.Logger) *Store {
	return &Store{storage: storage, logg: logg}
}

// Restore rehydrates the cart from storage. A corrupt or missing payload
// degrades to an empty cart; it never fails the session.
func (s *Store) Restore(ctx context.Context) {
	lines, err := s.storage.Load(ctx)
	if err != nil {
		if s.logg != nil {
			s.logg.Warn(ctx, "cart restore failed, starting empty")
		}
		lines = nil
	}

	// Copy rather than filter in place; the loaded slice belongs to the
	// storage driver.
	kept := make([]Line, 0, len(lines))
	for _, line := range lines {
		if line.ProductID == "" || line.Quantity < 1 {
			continue
		}
		kept = append(kept, line)
	}

	s.mu.Lock()
	s.lines = kept
	snapshot := s.snapshotLocked()
	s.mu.Unlock()

	s.notify(snapshot)
}

// Subscribe registers an observer for post-mutation snapshots.
func (s *Store) Subscribe(fn Observer) {
	if fn == nil {
		return
	}
	s.mu.Lock()
	s.observers = append(s.observers, fn)
	s.mu.Unlock()
}

// Add merges the product into the cart: an existing line gains one unit, a
// new product appends a line with quantity 1. Malformed products are no-ops.
func (s *Store) Add(ctx context.Context, p Product) {
	if strings.TrimSpace(p.ID) == "" || strings.TrimSpace(p.Name) == "" || p.Price.IsNegative() {
		return
	}

	s.mu.Lock()
	merged := false
	for i := range s.lines {
		if s.lines[i].ProductID == p.ID {
			s.lines[i].Quantity++
			merged = true
			break
		}
	}
	if !merged {
		s.lines = append(s.lines, Line{
			ProductID: p.ID,
			Name:      p.Name,
			UnitPrice: p.Price,
			Image:     p.Image,
			Quantity:  1,
		})
	}
	snapshot := s.snapshotLocked()
	s.mu.Unlock()

	s.commit(ctx, snapshot)
}

// ChangeQuantity adds delta to the line's quantity. At or below zero the
// line is removed; an unknown product ID is a no-op.
func (s *Store) ChangeQuantity(ctx context.Context, productID string, delta int) {
	s.mu.Lock()
	idx := -1
	for i := range s.lines {
		if s.lines[i].ProductID == productID {
			idx = i
			break
		}
	}
	if idx == -1 {
		s.mu.Unlock()
		return
	}

	s.lines[idx].Quantity += delta
	if s.lines[idx].Quantity <= 0 {
		s.lines = append(s.lines[:idx], s.lines[idx+1:]...)
	}
	snapshot := s.snapshotLocked()
	s.mu.Unlock()

	s.commit(ctx, snapshot)
}

// Clear drops every line in one step. Used as the terminal step of a
// successful checkout.
func (s *Store) Clear(ctx context.Context) {
	s.mu.Lock()
	s.lines = nil
	snapshot := s.snapshotLocked()
	s.mu.Unlock()

	s.commit(ctx, snapshot)
}

// Lines returns a copy of the current line sequence in insertion order.
func (s *Store) Lines() []Line {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Total recomputes the grand total on every call; it is never cached.
func (s *Store) Total() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := decimal.Zero
	for _, line := range s.lines {
		total = total.Add(line.Subtotal())
	}
	return total
}

// Count returns the total number of units across all lines, not the number
// of lines. It backs the cart badge.
func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for _, line := range s.lines {
		count += line.Quantity
	}
	return count
}

func (s *Store) snapshotLocked() []Line {
	snapshot := make([]Line, len(s.lines))
	copy(snapshot, s.lines)
	return snapshot
}

// commit writes the snapshot to storage and then notifies observers, in that
// order, so a crash between the two is never observed as committed state
// that was not persisted. A storage failure keeps the in-memory state and is
// logged; the session stays usable.
func (s *Store) commit(ctx context.Context, snapshot []Line) {
	if err := s.storage.Save(ctx, snapshot); err != nil && s.logg != nil {
		s.logg.Error(ctx, "cart persist failed", err)
	}
	s.notify(snapshot)
}

func (s *Store) notify(snapshot []Line) {
	s.mu.Lock()
	observers := make([]Observer, len(s.observers))
	copy(observers, s.observers)
	s.mu.Unlock()

	for _, fn := range observers {
		fn(snapshot)
	}
}
