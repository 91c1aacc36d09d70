package memory

import (
	"context"
	"sort"
)

// Item is one keyed memory. Upsert overwrites by id; items live for the
// process lifetime only.
type Item struct {
	ID       string         `json:"id"`
	Text     string         `json:"text"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// Scored pairs an item with its similarity score against a query.
type Scored struct {
	Item  Item
	Score float64
}

// Store holds keyed items with tiered similarity search: real embeddings
// when the semantic_memory backend is available, hashed vectors otherwise,
// and token overlap when cosine carries no signal. Not safe for concurrent
// mutation; callers serialize externally.
type Store struct {
	items map[string]Item
	order []string
	dims  int
}

// NewStore returns an empty store using the default vector dimensionality.
func NewStore() *Store {
	return &Store{
		items: make(map[string]Item),
		dims:  DefaultDims,
	}
}

// Upsert inserts or overwrites the item by id. First insertion fixes the
// item's position in List order.
func (s *Store) Upsert(item Item) {
	if _, exists := s.items[item.ID]; !exists {
		s.order = append(s.order, item.ID)
	}
	s.items[item.ID] = item
}

// Get returns the item by id.
func (s *Store) Get(id string) (Item, bool) {
	item, ok := s.items[id]
	return item, ok
}

// Delete removes the item by id, reporting whether it existed.
func (s *Store) Delete(id string) bool {
	if _, ok := s.items[id]; !ok {
		return false
	}
	delete(s.items, id)
	for i, existing := range s.order {
		if existing == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return true
}

// List returns all items in insertion order.
func (s *Store) List() []Item {
	out := make([]Item, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.items[id])
	}
	return out
}

// Similar scores every stored item against the query and returns the top-k
// pairs with score > 0, highest first. A linear scan is intentional at the
// target scale; there is no index to maintain.
func (s *Store) Similar(ctx context.Context, query string, k int) []Scored {
	if k <= 0 || len(s.order) == 0 {
		return nil
	}

	queryVec := s.vectorFor(ctx, query)
	queryTokens := tokenSet(query)

	scored := make([]Scored, 0, len(s.order))
	for _, id := range s.order {
		item := s.items[id]
		score := Cosine(queryVec, s.vectorFor(ctx, item.Text))
		if score == 0 {
			// Hashed vectors of disjoint vocabularies can still collide into
			// zero; token overlap is the signal of last resort.
			itemTokens := tokenSet(item.Text)
			if len(queryTokens) > 0 && len(itemTokens) > 0 {
				score = tokenOverlap(queryTokens, itemTokens)
			}
		}
		if score > 0 {
			scored = append(scored, Scored{Item: item, Score: score})
		}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	if len(scored) > k {
		scored = scored[:k]
	}
	return scored
}

// vectorFor prefers the semantic backend and silently falls back to the
// hashed vector when the backend is unavailable or fails.
func (s *Store) vectorFor(ctx context.Context, text string) []float64 {
	if backend := loadEmbedder(ctx); backend != nil {
		if vec, err := backend.Embed(ctx, text); err == nil {
			return vec
		}
	}
	return TextToVector(text, s.dims)
}
