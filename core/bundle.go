package core

import (
	"sort"
	"strings"
)

// Bundle is an unordered set of goods keyed by good ID.
// The zero value is an empty bundle ready to use.
type Bundle struct {
	goods map[string]Good
}

// NewBundle builds a bundle from the given goods. Duplicate IDs collapse to one entry.
func NewBundle(goods ...Good) Bundle {
	b := Bundle{goods: make(map[string]Good, len(goods))}
	for _, g := range goods {
		b.goods[g.ID] = g
	}
	return b
}

// Add inserts a good into the bundle.
func (b *Bundle) Add(g Good) {
	if b.goods == nil {
		b.goods = make(map[string]Good)
	}
	b.goods[g.ID] = g
}

// Contains reports whether the bundle holds a good with the same ID.
func (b Bundle) Contains(g Good) bool {
	return b.ContainsID(g.ID)
}

// ContainsID reports whether the bundle holds the good with the given ID.
func (b Bundle) ContainsID(id string) bool {
	_, ok := b.goods[id]
	return ok
}

// Len returns the number of goods in the bundle.
func (b Bundle) Len() int {
	return len(b.goods)
}

// IsEmpty reports whether the bundle holds no goods.
func (b Bundle) IsEmpty() bool {
	return len(b.goods) == 0
}

// Goods returns the goods sorted by ID.
func (b Bundle) Goods() []Good {
	goods := make([]Good, 0, len(b.goods))
	for _, g := range b.goods {
		goods = append(goods, g)
	}
	sort.Slice(goods, func(i, j int) bool {
		return goods[i].ID < goods[j].ID
	})
	return goods
}

// IDs returns the good IDs sorted ascending.
func (b Bundle) IDs() []string {
	ids := make([]string, 0, len(b.goods))
	for id := range b.goods {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Equal reports set equality: same cardinality and every good of b is in other.
func (b Bundle) Equal(other Bundle) bool {
	if b.Len() != other.Len() {
		return false
	}
	for id := range b.goods {
		if !other.ContainsID(id) {
			return false
		}
	}
	return true
}

// Clone returns an independent copy of the bundle.
func (b Bundle) Clone() Bundle {
	c := Bundle{goods: make(map[string]Good, len(b.goods))}
	for id, g := range b.goods {
		c.goods[id] = g
	}
	return c
}

// String renders the bundle as {A,B,C}.
func (b Bundle) String() string {
	return "{" + strings.Join(b.IDs(), ",") + "}"
}

// bundleKey is the canonical lookup key of a bundle: sorted good IDs.
type bundleKey string

// keySeparator is a control byte so that IDs containing commas cannot collide.
const keySeparator = "\x1f"

func keyOf(b Bundle) bundleKey {
	return bundleKey(strings.Join(b.IDs(), keySeparator))
}
