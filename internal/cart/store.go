// Package cart holds the shopper's in-progress selection.
//
// Store is the single source of truth shared by the cart page, the checkout
// and the item count badge. It is mutated only through its methods and
// persisted under one namespaced key after every change.
package cart

import (
	"encoding/json"
	"errors"
	"sync"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/rugstore/storefront/internal/localstore"
)

// Persister stores the serialized cart
type Persister interface {
	Load(key string) ([]byte, error)
	Save(key string, value []byte) error
}

// Product is the catalog data needed to add a line item
type Product struct {
	ID          string
	Name        string
	Price       decimal.Decimal
	MarketPrice *decimal.Decimal
	Thumbnail   string
}

// LineItem is one distinct (product, variant, size) selection
type LineItem struct {
	ID          string           `json:"id"`
	ProductID   string           `json:"product_id"`
	VariantID   string           `json:"variant_id"`
	Name        string           `json:"name"`
	UnitPrice   decimal.Decimal  `json:"unit_price"`
	MarketPrice *decimal.Decimal `json:"market_price,omitempty"`
	Quantity    int              `json:"quantity"`
	Thumbnail   string           `json:"thumbnail,omitempty"`
	Color       string           `json:"color,omitempty"`
	Size        string           `json:"size"`
}

// LineTotal returns unit price times quantity
func (li LineItem) LineTotal() decimal.Decimal {
	return li.UnitPrice.Mul(decimal.NewFromInt(int64(li.Quantity)))
}

// ItemID builds the composite identity of a line item
func ItemID(productID, variantID, size string) string {
	return productID + ":" + variantID + ":" + size
}

type document struct {
	Items []LineItem `json:"items"`
}

type Store struct {
	mu        sync.Mutex
	items     []LineItem
	persister Persister
	key       string
	logger    *zap.Logger

	subMu     sync.Mutex
	nextSub   int
	itemSubs  map[int]func([]LineItem)
	totalSubs map[int]func(decimal.Decimal)
	countSubs map[int]func(int)
	lastTotal decimal.Decimal
	lastCount int
}

// Open restores the cart from p. A missing or unreadable document yields an
// empty cart; the latter is logged.
func Open(p Persister, logger *zap.Logger) *Store {
	s := &Store{
		persister: p,
		key:       localstore.KeyCart,
		logger:    logger,
		itemSubs:  make(map[int]func([]LineItem)),
		totalSubs: make(map[int]func(decimal.Decimal)),
		countSubs: make(map[int]func(int)),
	}

	raw, err := p.Load(s.key)
	switch {
	case errors.Is(err, localstore.ErrNotFound):
	case err != nil:
		logger.Warn("Failed to load cart, starting empty", zap.Error(err))
	default:
		var doc document
		if err := json.Unmarshal(raw, &doc); err != nil {
			logger.Warn("Discarding unreadable cart", zap.Error(err))
		} else {
			index := make(map[string]int, len(doc.Items))
			for _, item := range doc.Items {
				if item.Quantity < 1 {
					item.Quantity = 1
				}
				item.ID = ItemID(item.ProductID, item.VariantID, item.Size)
				// Fold duplicates left by older or hand-edited documents.
				if i, ok := index[item.ID]; ok {
					s.items[i].Quantity += item.Quantity
					continue
				}
				index[item.ID] = len(s.items)
				s.items = append(s.items, item)
			}
		}
	}

	s.lastTotal = subtotal(s.items)
	s.lastCount = count(s.items)
	return s
}

// AddItem merges quantity into an identical line item or appends a new one.
// A quantity below 1 is ignored.
func (s *Store) AddItem(product Product, size string, quantity int, variantID, color string) {
	if quantity < 1 || product.ID == "" {
		return
	}

	id := ItemID(product.ID, variantID, size)

	s.mutate(func(items []LineItem) []LineItem {
		for i := range items {
			if items[i].ID == id {
				items[i].Quantity += quantity
				return items
			}
		}
		return append(items, LineItem{
			ID:          id,
			ProductID:   product.ID,
			VariantID:   variantID,
			Name:        product.Name,
			UnitPrice:   product.Price,
			MarketPrice: product.MarketPrice,
			Quantity:    quantity,
			Thumbnail:   product.Thumbnail,
			Color:       color,
			Size:        size,
		})
	})
}

// UpdateQuantity replaces the quantity of itemID, clamped to at least 1.
// Unknown ids are ignored.
func (s *Store) UpdateQuantity(itemID string, quantity int) {
	if quantity < 1 {
		quantity = 1
	}
	s.mutate(func(items []LineItem) []LineItem {
		for i := range items {
			if items[i].ID == itemID {
				items[i].Quantity = quantity
				break
			}
		}
		return items
	})
}

// RemoveItem deletes a line item regardless of its quantity
func (s *Store) RemoveItem(itemID string) {
	s.mutate(func(items []LineItem) []LineItem {
		for i := range items {
			if items[i].ID == itemID {
				return append(items[:i], items[i+1:]...)
			}
		}
		return items
	})
}

// Clear empties the cart. It is called after a confirmed order.
func (s *Store) Clear() {
	s.mutate(func([]LineItem) []LineItem { return nil })
}

// Items returns a copy of the line items in insertion order
func (s *Store) Items() []LineItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return clone(s.items)
}

// Item returns a line item by id
func (s *Store) Item(itemID string) (LineItem, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, item := range s.items {
		if item.ID == itemID {
			return item, true
		}
	}
	return LineItem{}, false
}

// Subtotal is recomputed from the line items on every call
func (s *Store) Subtotal() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return subtotal(s.items)
}

// Count returns the total quantity across line items
func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return count(s.items)
}

func (s *Store) IsEmpty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items) == 0
}

// SubscribeItems calls fn with the line items after every mutation
func (s *Store) SubscribeItems(fn func([]LineItem)) (unsubscribe func()) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	id := s.nextSub
	s.nextSub++
	s.itemSubs[id] = fn
	return func() {
		s.subMu.Lock()
		delete(s.itemSubs, id)
		s.subMu.Unlock()
	}
}

// SubscribeSubtotal calls fn when the subtotal changes
func (s *Store) SubscribeSubtotal(fn func(decimal.Decimal)) (unsubscribe func()) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	id := s.nextSub
	s.nextSub++
	s.totalSubs[id] = fn
	return func() {
		s.subMu.Lock()
		delete(s.totalSubs, id)
		s.subMu.Unlock()
	}
}

// SubscribeCount calls fn when the item count changes
func (s *Store) SubscribeCount(fn func(int)) (unsubscribe func()) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	id := s.nextSub
	s.nextSub++
	s.countSubs[id] = fn
	return func() {
		s.subMu.Lock()
		delete(s.countSubs, id)
		s.subMu.Unlock()
	}
}

func (s *Store) mutate(fn func([]LineItem) []LineItem) {
	s.mu.Lock()
	s.items = fn(s.items)
	snapshot := clone(s.items)
	s.persist(snapshot)
	s.mu.Unlock()

	s.notify(snapshot)
}

// persist must be called with s.mu held so writes land in mutation order.
func (s *Store) persist(items []LineItem) {
	if items == nil {
		items = []LineItem{}
	}
	raw, err := json.Marshal(document{Items: items})
	if err != nil {
		s.logger.Error("Failed to encode cart", zap.Error(err))
		return
	}
	if err := s.persister.Save(s.key, raw); err != nil {
		s.logger.Warn("Failed to persist cart", zap.Error(err))
	}
}

func (s *Store) notify(items []LineItem) {
	total := subtotal(items)
	n := count(items)

	s.subMu.Lock()
	itemSubs := make([]func([]LineItem), 0, len(s.itemSubs))
	for _, fn := range s.itemSubs {
		itemSubs = append(itemSubs, fn)
	}
	var totalSubs []func(decimal.Decimal)
	if !total.Equal(s.lastTotal) {
		s.lastTotal = total
		for _, fn := range s.totalSubs {
			totalSubs = append(totalSubs, fn)
		}
	}
	var countSubs []func(int)
	if n != s.lastCount {
		s.lastCount = n
		for _, fn := range s.countSubs {
			countSubs = append(countSubs, fn)
		}
	}
	s.subMu.Unlock()

	for _, fn := range itemSubs {
		fn(clone(items))
	}
	for _, fn := range totalSubs {
		fn(total)
	}
	for _, fn := range countSubs {
		fn(n)
	}
}

func subtotal(items []LineItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.LineTotal())
	}
	return total
}

func count(items []LineItem) int {
	n := 0
	for _, item := range items {
		n += item.Quantity
	}
	return n
}

func clone(items []LineItem) []LineItem {
	if items == nil {
		return nil
	}
	return append([]LineItem(nil), items...)
}
