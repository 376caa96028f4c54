package cart

import (
	"context"
	"sync"

	"github.com/blastmusic247/blast-gear-full/internal/domain"
	"github.com/google/uuid"
)

// Store owns the authoritative in-memory cart for one session and keeps the
// durable mirror in sync after every mutation.
//
// Unknown cart IDs are silent no-ops on update and remove: the UI never
// needs to distinguish "not found" from "nothing to do". Quantities below 1
// are ignored rather than rejected, so a minus button mashed past zero
// leaves the line item alone instead of producing an empty or negative row.
//
// Concurrent writers on the same session key (two tabs, two devices) are
// last-writer-wins at the storage layer. Not resolved here.
type Store struct {
	mu       sync.Mutex
	storage  Storage
	items    domain.Cart
	hydrated bool
}

func NewStore(storage Storage) *Store {
	return &Store{storage: storage}
}

// Items returns the current cart in insertion order, hydrating from the
// durable mirror on first access.
func (s *Store) Items(ctx context.Context) (domain.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.hydrate(ctx); err != nil {
		return nil, err
	}
	return s.snapshot(), nil
}

// Add merges into an existing line item when product and size both match,
// otherwise appends a new line item with a fresh cart ID. A quantity below
// 1 is a no-op.
func (s *Store) Add(ctx context.Context, product domain.Product, size string, quantity int) (domain.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.hydrate(ctx); err != nil {
		return nil, err
	}

	if quantity < 1 {
		return s.snapshot(), nil
	}

	merged := false
	for i := range s.items {
		if s.items[i].ProductID == product.ID && s.items[i].Size == size {
			s.items[i].Quantity += quantity
			merged = true
			break
		}
	}

	if !merged {
		s.items = append(s.items, domain.LineItem{
			CartID:    uuid.NewString(),
			ProductID: product.ID,
			Name:      product.Name,
			UnitPrice: product.Price,
			Image:     product.Image,
			Size:      size,
			Quantity:  quantity,
		})
	}

	if err := s.storage.Save(ctx, s.items); err != nil {
		return nil, err
	}
	return s.snapshot(), nil
}

// UpdateQuantity sets the quantity of the line item with the given cart ID.
// Quantities below 1 and unknown cart IDs leave the cart unchanged.
func (s *Store) UpdateQuantity(ctx context.Context, cartID string, quantity int) (domain.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.hydrate(ctx); err != nil {
		return nil, err
	}

	if quantity < 1 {
		return s.snapshot(), nil
	}

	for i := range s.items {
		if s.items[i].CartID == cartID {
			s.items[i].Quantity = quantity
			if err := s.storage.Save(ctx, s.items); err != nil {
				return nil, err
			}
			break
		}
	}
	return s.snapshot(), nil
}

// Remove drops the line item with the given cart ID; unknown IDs are a no-op.
func (s *Store) Remove(ctx context.Context, cartID string) (domain.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.hydrate(ctx); err != nil {
		return nil, err
	}

	for i := range s.items {
		if s.items[i].CartID == cartID {
			s.items = append(s.items[:i], s.items[i+1:]...)
			if err := s.storage.Save(ctx, s.items); err != nil {
				return nil, err
			}
			break
		}
	}
	return s.snapshot(), nil
}

// Clear empties the cart and erases the durable mirror. Called only after
// an order has been placed successfully.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = nil
	s.hydrated = true
	return s.storage.Clear(ctx)
}

func (s *Store) hydrate(ctx context.Context) error {
	if s.hydrated {
		return nil
	}
	items, err := s.storage.Load(ctx)
	if err != nil {
		return err
	}
	s.items = items
	s.hydrated = true
	return nil
}

// snapshot copies the items so callers cannot mutate the store's state.
func (s *Store) snapshot() domain.Cart {
	out := make(domain.Cart, len(s.items))
	copy(out, s.items)
	return out
}
