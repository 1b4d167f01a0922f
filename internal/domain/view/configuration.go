// Package view tracks which columns of a table are shown.
package view

import (
	"slices"
	"strings"
	"sync"
)

// Pinned columns can never be hidden.
const (
	ColumnAction      = "action"
	ColumnLeadJourney = "leadJourney"
)

var pinned = []string{ColumnAction, ColumnLeadJourney}

func IsPinned(id string) bool {
	return slices.Contains(pinned, id)
}

type Column struct {
	ID      string `json:"id"`
	Visible bool   `json:"visible"`
	Pinned  bool   `json:"pinned,omitempty"`
}

// Configuration is the per-table column visibility state. Ids never seen
// before are treated as visible.
type Configuration struct {
	mu      sync.RWMutex
	tableID string
	order   []string
	visible map[string]bool
}

// NewConfiguration registers columns in order, all visible. Pinned columns
// missing from the list are appended.
func NewConfiguration(tableID string, columns []string) *Configuration {
	c := &Configuration{
		tableID: tableID,
		visible: make(map[string]bool, len(columns)+len(pinned)),
	}
	for _, id := range columns {
		c.register(id, true)
	}
	for _, id := range pinned {
		c.register(id, true)
	}
	return c
}

func (c *Configuration) TableID() string {
	return c.tableID
}

func (c *Configuration) register(id string, visible bool) bool {
	id = strings.TrimSpace(id)
	if id == "" {
		return false
	}
	if _, ok := c.visible[id]; ok {
		return false
	}
	c.order = append(c.order, id)
	c.visible[id] = visible || IsPinned(id)
	return true
}

// Register adds a visible column at the end. Known ids are left as they are.
func (c *Configuration) Register(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.register(id, true)
}

// Registered reports whether id is one of the configuration's columns.
func (c *Configuration) Registered(id string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	_, ok := c.visible[strings.TrimSpace(id)]
	return ok
}

// Toggle flips a column and reports its new visibility. Pinned columns are
// left untouched. An unknown id was implicitly visible, so it is registered
// hidden.
func (c *Configuration) Toggle(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if IsPinned(id) {
		return true
	}
	cur, ok := c.visible[id]
	if !ok {
		if !c.register(id, false) {
			return true
		}
		return false
	}
	c.visible[id] = !cur
	return !cur
}

func (c *Configuration) IsVisible(id string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if IsPinned(id) {
		return true
	}
	v, ok := c.visible[id]
	return !ok || v
}

// VisibleColumns lists visible ids in registration order, pinned ones always included.
func (c *Configuration) VisibleColumns() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]string, 0, len(c.order))
	for _, id := range c.order {
		if c.visible[id] || IsPinned(id) {
			out = append(out, id)
		}
	}
	return out
}

func (c *Configuration) Columns() []Column {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]Column, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, Column{ID: id, Visible: c.visible[id] || IsPinned(id), Pinned: IsPinned(id)})
	}
	return out
}

// Snapshot is the serialisable form of a configuration.
type Snapshot struct {
	TableID string   `json:"tableId"`
	Columns []Column `json:"columns"`
}

func (c *Configuration) Snapshot() Snapshot {
	return Snapshot{TableID: c.tableID, Columns: c.Columns()}
}

// Restore applies saved visibility flags. Saved columns unknown to this
// configuration are appended; pinned columns stay visible whatever was saved.
func (c *Configuration) Restore(s Snapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, col := range s.Columns {
		if !c.register(col.ID, col.Visible) {
			if _, ok := c.visible[col.ID]; ok {
				c.visible[col.ID] = col.Visible || IsPinned(col.ID)
			}
		}
	}
}
