package inventory

import (
	"context"
	"errors"
	"sort"
	"strconv"
	"strings"
	"sync"
)

// ErrNotFound is returned by stores when a product ID does not exist.
var ErrNotFound = errors.New("product not found")

// Store persists products. Implementations must be safe for concurrent use.
type Store interface {
	// Add inserts a product and returns it with its assigned ID and
	// derived status.
	Add(ctx context.Context, p Product) (Product, error)

	// List returns all products ordered by ID, status derived.
	List(ctx context.Context) ([]Product, error)

	// Get returns a single product by ID.
	Get(ctx context.Context, id string) (Product, error)

	// Replace swaps the full catalog for the given products, assigning
	// IDs to any product without one.
	Replace(ctx context.Context, products []Product) error

	// Clear removes all products.
	Clear(ctx context.Context) error

	// Close releases store resources.
	Close() error
}

// MemoryStore is the default in-process store.
type MemoryStore struct {
	mu       sync.RWMutex
	products map[string]Product
	nextID   int
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{products: make(map[string]Product), nextID: 1}
}

func (s *MemoryStore) Add(_ context.Context, p Product) (Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.ID == "" {
		p.ID = FormatID(s.nextID)
	}
	s.bumpNextID(p.ID)
	p.DeriveStatus()
	s.products[p.ID] = p
	return p, nil
}

func (s *MemoryStore) List(_ context.Context) ([]Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Product, 0, len(s.products))
	for _, p := range s.products {
		p.DeriveStatus()
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.products[id]
	if !ok {
		return Product{}, ErrNotFound
	}
	p.DeriveStatus()
	return p, nil
}

func (s *MemoryStore) Replace(_ context.Context, products []Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products = make(map[string]Product, len(products))
	s.nextID = 1
	for _, p := range products {
		if p.ID == "" {
			p.ID = FormatID(s.nextID)
		}
		s.bumpNextID(p.ID)
		p.DeriveStatus()
		s.products[p.ID] = p
	}
	return nil
}

func (s *MemoryStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products = make(map[string]Product)
	s.nextID = 1
	return nil
}

func (s *MemoryStore) Close() error { return nil }

// bumpNextID keeps the ID counter ahead of any explicitly assigned ID.
// Caller must hold the write lock.
func (s *MemoryStore) bumpNextID(id string) {
	if n, err := strconv.Atoi(strings.TrimPrefix(id, "P")); err == nil && n >= s.nextID {
		s.nextID = n + 1
	}
}
