package cart

import (
	"context"
	"fmt"
	"sync"

	"warimas-pos/internal/product"
)

// Engine maintains the basket for one till. In-memory state is the source
// of truth and the store is written through after every mutation, so a
// crash at worst loses the mutation in flight, never corrupts the basket.
type Engine struct {
	mu      sync.Mutex
	lines   []Line // insertion order
	catalog map[int64]product.Product
	store   Store
}

func NewEngine(store Store) *Engine {
	return &Engine{
		catalog: make(map[int64]product.Product),
		store:   store,
	}
}

// Restore loads the persisted basket, run once at startup. Rows that would
// break the basket invariants (zero quantity, duplicated product) are
// dropped silently since they can only come from a tampered store.
func (e *Engine) Restore(ctx context.Context) error {
	lines, err := e.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrFailedLoadCart, err)
	}

	clean := make([]Line, 0, len(lines))
	seen := make(map[int64]bool, len(lines))
	for _, l := range lines {
		if l.Quantity < 1 || seen[l.ProductID] {
			continue
		}
		seen[l.ProductID] = true
		clean = append(clean, l)
	}

	e.mu.Lock()
	e.lines = clean
	e.mu.Unlock()
	return nil
}

// SetCatalog replaces the known catalog and refreshes the name and price of
// every line whose product still exists. Lines whose product disappeared
// stay as they are, so a transient refetch cannot wipe what the cashier
// already rang up. The store is only touched when something changed.
func (e *Engine) SetCatalog(ctx context.Context, products []product.Product) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.catalog = make(map[int64]product.Product, len(products))
	for _, p := range products {
		e.catalog[p.ID] = p
	}

	changed := false
	for i := range e.lines {
		p, ok := e.catalog[e.lines[i].ProductID]
		if !ok {
			continue
		}
		if e.lines[i].Name != p.Name || !e.lines[i].UnitPrice.Equal(p.Price) {
			e.lines[i].Name = p.Name
			e.lines[i].UnitPrice = p.Price
			changed = true
		}
	}

	if !changed {
		return nil
	}
	return e.persist(ctx)
}

// Add puts one more unit of the product in the basket: a new line at
// quantity 1 with name and price copied from the catalog, or an increment
// on the line that already exists.
func (e *Engine) Add(ctx context.Context, productID int64) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	p, ok := e.catalog[productID]
	if !ok {
		return ErrUnknownProduct
	}
	if p.Stock <= 0 {
		return ErrOutOfStock
	}

	if i := e.index(productID); i >= 0 {
		e.lines[i].Quantity++
	} else {
		e.lines = append(e.lines, Line{
			ProductID: p.ID,
			Name:      p.Name,
			UnitPrice: p.Price,
			Quantity:  1,
		})
	}

	return e.persist(ctx)
}

// Decrease takes one unit off the line; at quantity 1 the line is removed
// entirely. Unknown products are a no-op.
func (e *Engine) Decrease(ctx context.Context, productID int64) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	i := e.index(productID)
	if i < 0 {
		return nil
	}

	if e.lines[i].Quantity <= 1 {
		e.lines = append(e.lines[:i], e.lines[i+1:]...)
	} else {
		e.lines[i].Quantity--
	}

	return e.persist(ctx)
}

// Reset empties the basket and removes the stored record.
func (e *Engine) Reset(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.lines = nil
	return e.persist(ctx)
}

// Lines returns a copy of the basket in insertion order.
func (e *Engine) Lines() []Line {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]Line, len(e.lines))
	copy(out, e.lines)
	return out
}

func (e *Engine) IsEmpty() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.lines) == 0
}

// Totals computes checkout arithmetic over the current basket.
func (e *Engine) Totals(serviceChargePercent float64) Totals {
	return ComputeTotals(e.Lines(), serviceChargePercent)
}

// index returns the position of the product's line, -1 when absent. Baskets
// are a handful of rows, a linear scan keeps insertion order for free.
func (e *Engine) index(productID int64) int {
	for i := range e.lines {
		if e.lines[i].ProductID == productID {
			return i
		}
	}
	return -1
}

// persist writes through to the store. An empty basket removes the record
// instead of saving an empty list, so "no cart" and "empty cart" stay one
// and the same state.
func (e *Engine) persist(ctx context.Context) error {
	if len(e.lines) == 0 {
		if err := e.store.Clear(ctx); err != nil {
			return fmt.Errorf("%w: %v", ErrFailedClearCart, err)
		}
		return nil
	}

	if err := e.store.Save(ctx, e.lines); err != nil {
		return fmt.Errorf("%w: %v", ErrFailedSaveCart, err)
	}
	return nil
}
