package content

import (
	"encoding/json"
	"fmt"
)

// Table is an immutable keyed collection that remembers load order.
// Random picks draw over Keys(), so the order is part of the contract.
type Table[T any] struct {
	keys  []string
	byKey map[string]T
}

func newTable[T any](name string, items []T, keyOf func(T) string) (Table[T], error) {
	t := Table[T]{
		keys:  make([]string, 0, len(items)),
		byKey: make(map[string]T, len(items)),
	}
	if len(items) == 0 {
		return t, fmt.Errorf("%s: table is empty", name)
	}
	for i, item := range items {
		key := keyOf(item)
		if key == "" {
			return t, fmt.Errorf("%s[%d]: missing key", name, i)
		}
		if _, dup := t.byKey[key]; dup {
			return t, fmt.Errorf("%s: duplicate key %q", name, key)
		}
		t.keys = append(t.keys, key)
		t.byKey[key] = item
	}
	return t, nil
}

// Get looks up an entry by key.
func (t Table[T]) Get(key string) (T, bool) {
	v, ok := t.byKey[key]
	return v, ok
}

// Has reports whether key exists.
func (t Table[T]) Has(key string) bool {
	_, ok := t.byKey[key]
	return ok
}

// Keys returns the keys in load order. The slice must not be modified.
func (t Table[T]) Keys() []string {
	return t.keys
}

// Len returns the number of entries.
func (t Table[T]) Len() int {
	return len(t.keys)
}

// All returns the entries in load order.
func (t Table[T]) All() []T {
	out := make([]T, 0, len(t.keys))
	for _, k := range t.keys {
		out = append(out, t.byKey[k])
	}
	return out
}

// MarshalJSON encodes the table as an ordered list.
func (t Table[T]) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.All())
}
