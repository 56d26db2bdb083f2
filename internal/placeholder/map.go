// Package placeholder holds the lazily evaluated namespace of values that
// version and property formats are rendered against.
//
// Every key maps to a producer that runs at most once; the computed string
// (or error) is cached in a cell. Clones share cells, so a value computed
// through a per-project map is computed once for the whole build.
package placeholder

import (
	"sort"
	"sync"
)

// Producer computes the value behind a key.
type Producer func() (string, error)

type cell struct {
	get func() (string, error)
}

func newCell(fn Producer) *cell {
	return &cell{get: sync.OnceValues(fn)}
}

// Map is a registry of lazily computed placeholder values.
type Map struct {
	cells map[string]*cell
}

// NewMap creates an empty map.
func NewMap() *Map {
	return &Map{cells: make(map[string]*cell)}
}

// Set registers fn under key, replacing any previous producer.
func (m *Map) Set(key string, fn Producer) {
	m.cells[key] = newCell(fn)
}

// SetString registers a constant value.
func (m *Map) SetString(key, value string) {
	m.Set(key, func() (string, error) { return value, nil })
}

// SetFunc registers a producer that cannot fail.
func (m *Map) SetFunc(key string, fn func() string) {
	m.Set(key, func() (string, error) { return fn(), nil })
}

// Lookup resolves key, computing its value on first access.
func (m *Map) Lookup(key string) (string, bool, error) {
	c, ok := m.cells[key]
	if !ok {
		return "", false, nil
	}
	v, err := c.get()
	return v, true, err
}

// Has reports whether key is defined.
func (m *Map) Has(key string) bool {
	_, ok := m.cells[key]
	return ok
}

// Keys returns all defined keys in sorted order.
func (m *Map) Keys() []string {
	keys := make([]string, 0, len(m.cells))
	for k := range m.cells {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Len returns the number of defined keys.
func (m *Map) Len() int {
	return len(m.cells)
}

// Clone returns a map with the same keys. Cells are shared, not copied.
func (m *Map) Clone() *Map {
	c := &Map{cells: make(map[string]*cell, len(m.cells))}
	for k, v := range m.cells {
		c.cells[k] = v
	}
	return c
}
