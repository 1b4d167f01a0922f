// Package table owns the per-table view configuration and draft session.
package table

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"dealer-crm-service/internal/domain/view"
	xerrors "dealer-crm-service/internal/pkg/errors"
	"dealer-crm-service/internal/service/draft"

	"go.uber.org/zap"
)

// ViewStore persists column layouts between restarts.
type ViewStore interface {
	Save(ctx context.Context, snap view.Snapshot) error
	Load(ctx context.Context, tableID string) (view.Snapshot, bool, error)
}

// Table is one table instance: its columns and the single draft being edited in it.
type Table struct {
	ID    string
	View  *view.Configuration
	Draft *draft.Session
}

type Registry struct {
	mu      sync.Mutex
	layouts map[string][]string
	tables  map[string]*Table
	leads   draft.LeadCommitter
	store   ViewStore
	logger  *zap.Logger
}

// NewRegistry serves the tables named in layouts, each with its default
// column order. store may be nil.
func NewRegistry(layouts map[string][]string, leads draft.LeadCommitter, store ViewStore, logger *zap.Logger) *Registry {
	return &Registry{
		layouts: layouts,
		tables:  make(map[string]*Table, len(layouts)),
		leads:   leads,
		store:   store,
		logger:  logger,
	}
}

// Table returns the instance for tableID, creating it on first use from the
// saved layout when one exists.
func (r *Registry) Table(ctx context.Context, tableID string) (*Table, error) {
	tableID = strings.TrimSpace(tableID)

	r.mu.Lock()
	defer r.mu.Unlock()

	if t, ok := r.tables[tableID]; ok {
		return t, nil
	}
	columns, ok := r.layouts[tableID]
	if !ok {
		return nil, fmt.Errorf("table %q: %w", tableID, xerrors.ErrNotFound)
	}

	t := &Table{
		ID:    tableID,
		View:  view.NewConfiguration(tableID, columns),
		Draft: draft.NewSession(r.leads, r.logger.With(zap.String("table_id", tableID))),
	}

	if r.store != nil {
		snap, found, err := r.store.Load(ctx, tableID)
		switch {
		case err != nil:
			r.logger.Warn("failed to load saved columns, using defaults", zap.String("table_id", tableID), zap.Error(err))
		case found:
			t.View.Restore(snap)
		}
	}

	r.tables[tableID] = t
	return t, nil
}

// ToggleColumn flips a column of tableID and persists the new layout. Only
// columns the table already carries can be toggled.
func (r *Registry) ToggleColumn(ctx context.Context, tableID, columnID string) ([]view.Column, error) {
	t, err := r.Table(ctx, tableID)
	if err != nil {
		return nil, err
	}
	if !t.View.Registered(columnID) {
		return nil, fmt.Errorf("column %q of table %q: %w", columnID, t.ID, xerrors.ErrNotFound)
	}

	visible := t.View.Toggle(columnID)
	r.logger.Debug("column toggled",
		zap.String("table_id", t.ID),
		zap.String("column", columnID),
		zap.Bool("visible", visible),
	)

	if r.store != nil {
		if err := r.store.Save(ctx, t.View.Snapshot()); err != nil {
			r.logger.Warn("failed to persist columns", zap.String("table_id", t.ID), zap.Error(err))
		}
	}
	return t.View.Columns(), nil
}
