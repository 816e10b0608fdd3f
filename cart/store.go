package cart

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/umesh2702/OUTLAW/models"
	"github.com/umesh2702/OUTLAW/storage"
)

// Key returns the cart document key for a browsing session.
func Key(sessionID string) string {
	return "cart:session:" + sessionID
}

// Store holds one session's cart in memory and mirrors every mutation to the
// KV document. It starts in a hydrating state: until Hydrate runs, readers
// see an empty cart with Loading() true, and mutations apply in memory only
// so a late hydration cannot be clobbered by a stale write.
//
// A mutex serializes mutators; storage writes are best-effort and never
// surface to callers (a failed save is logged and the in-memory state stays
// authoritative for the rest of the request).
type Store struct {
	mu       sync.Mutex
	kv       storage.KV
	key      string
	log      *zap.Logger
	items    []models.CartItem
	hydrated bool
	subs     map[int]func()
	nextSub  int
}

func NewStore(kv storage.KV, sessionID string, log *zap.Logger) *Store {
	return &Store{
		kv:   kv,
		key:  Key(sessionID),
		log:  log,
		subs: make(map[int]func()),
	}
}

// Hydrate loads the persisted cart document. A missing or corrupt document
// hydrates to an empty cart.
func (s *Store) Hydrate(ctx context.Context) {
	var doc models.Cart
	ok := storage.LoadJSON(ctx, s.kv, s.key, &doc)

	s.mu.Lock()
	if ok {
		s.items = doc.Items
	}
	s.hydrated = true
	s.mu.Unlock()
}

// Loading reports whether the store has not yet hydrated from storage.
func (s *Store) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.hydrated
}

// Add merges a product into the cart. An existing entry for the same product
// id has its quantity incremented; otherwise a new entry is appended with a
// snapshot copy of the product. Quantities below 1 count as 1. Stock caps are
// the caller's concern, not this layer's.
func (s *Store) Add(ctx context.Context, product models.Product, quantity int) {
	if quantity < 1 {
		quantity = 1
	}

	s.mu.Lock()
	found := false
	for i := range s.items {
		if s.items[i].ProductID == product.ID {
			s.items[i].Quantity += quantity
			found = true
			break
		}
	}
	if !found {
		s.items = append(s.items, models.CartItem{
			ProductID: product.ID,
			Product:   product,
			Quantity:  quantity,
		})
	}
	s.persistLocked(ctx)
	subs := s.subscribersLocked()
	s.mu.Unlock()

	notify(subs)
}

// Remove deletes the entry for productID. No-op when absent.
func (s *Store) Remove(ctx context.Context, productID string) {
	s.mu.Lock()
	kept := s.items[:0]
	for _, item := range s.items {
		if item.ProductID != productID {
			kept = append(kept, item)
		}
	}
	s.items = kept
	s.persistLocked(ctx)
	subs := s.subscribersLocked()
	s.mu.Unlock()

	notify(subs)
}

// UpdateQuantity sets the entry's quantity to exactly quantity. A quantity of
// zero or below removes the entry. No-op when the product is not in the cart.
func (s *Store) UpdateQuantity(ctx context.Context, productID string, quantity int) {
	if quantity <= 0 {
		s.Remove(ctx, productID)
		return
	}

	s.mu.Lock()
	for i := range s.items {
		if s.items[i].ProductID == productID {
			s.items[i].Quantity = quantity
			break
		}
	}
	s.persistLocked(ctx)
	subs := s.subscribersLocked()
	s.mu.Unlock()

	notify(subs)
}

// Clear empties the cart. Clearing an empty cart is a no-op.
func (s *Store) Clear(ctx context.Context) {
	s.mu.Lock()
	s.items = nil
	s.persistLocked(ctx)
	subs := s.subscribersLocked()
	s.mu.Unlock()

	notify(subs)
}

// Items returns a copy of the current entries in insertion order.
func (s *Store) Items() []models.CartItem {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := make([]models.CartItem, len(s.items))
	copy(items, s.items)
	return items
}

// Count is the sum of quantities across all entries.
func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	cart := models.Cart{Items: s.items}
	return cart.Count()
}

// Total is the sum of snapshot price times quantity.
func (s *Store) Total() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	cart := models.Cart{Items: s.items}
	return cart.Total()
}

// Subscribe registers fn to run synchronously after every mutation. The
// returned func unregisters it.
func (s *Store) Subscribe(fn func()) func() {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// persistLocked writes the whole cart document. Skipped until hydration so an
// early mutation cannot overwrite a cart that has not been loaded yet.
func (s *Store) persistLocked(ctx context.Context) {
	if !s.hydrated {
		return
	}
	doc := models.Cart{Items: s.items, UpdatedAt: time.Now()}
	if err := storage.SaveJSON(ctx, s.kv, s.key, &doc); err != nil {
		s.log.Warn("failed to persist cart", zap.String("key", s.key), zap.Error(err))
	}
}

func (s *Store) subscribersLocked() []func() {
	subs := make([]func(), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	return subs
}

func notify(subs []func()) {
	for _, fn := range subs {
		fn()
	}
}
