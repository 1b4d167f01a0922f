// Package query composes free-text search with discrete and date-range
// predicates over any record type. One Engine is configured per table.
package query

import (
	"iter"
	"maps"
	"slices"
	"strings"
	"time"

	xerrors "dealer-crm-service/internal/pkg/errors"
)

// All is the sentinel meaning "no constraint" for a discrete dimension.
const All = "all"

// Field is a free-text searchable field.
type Field[T any] struct {
	Name  string
	Value func(T) string
}

// Dimension is a discrete filter. An empty Allowed set accepts any value.
type Dimension[T any] struct {
	Name    string
	Value   func(T) string
	Allowed []string
}

// DateField is a date the engine can range over. ok is false when the
// record has no value for it.
type DateField[T any] struct {
	Name  string
	Value func(T) (t time.Time, ok bool)
}

type Config[T any] struct {
	Searchable []Field[T]
	Discrete   []Dimension[T]
	Dates      []DateField[T]
}

// DateRange bounds are inclusive; a nil bound is open.
type DateRange struct {
	From *time.Time `json:"from,omitempty"`
	To   *time.Time `json:"to,omitempty"`
}

func (r DateRange) Active() bool {
	return r.From != nil || r.To != nil
}

func (r DateRange) contains(t time.Time) bool {
	if r.From != nil && t.Before(*r.From) {
		return false
	}
	if r.To != nil && t.After(*r.To) {
		return false
	}
	return true
}

type Criteria struct {
	Query    string               `json:"query,omitempty"`
	Discrete map[string]string    `json:"discrete,omitempty"`
	Dates    map[string]DateRange `json:"dates,omitempty"`
}

type Engine[T any] struct {
	cfg   Config[T]
	dims  map[string]Dimension[T]
	dates map[string]DateField[T]
}

func New[T any](cfg Config[T]) *Engine[T] {
	e := &Engine[T]{
		cfg:   cfg,
		dims:  make(map[string]Dimension[T], len(cfg.Discrete)),
		dates: make(map[string]DateField[T], len(cfg.Dates)),
	}
	for _, d := range cfg.Discrete {
		e.dims[d.Name] = d
	}
	for _, d := range cfg.Dates {
		e.dates[d.Name] = d
	}
	return e
}

// Validate reports every unknown dimension, disallowed value and inverted
// date range in c.
func (e *Engine[T]) Validate(c Criteria) error {
	verr := &xerrors.ValidationError{}

	for _, name := range slices.Sorted(maps.Keys(c.Discrete)) {
		value := c.Discrete[name]
		dim, ok := e.dims[name]
		if !ok {
			verr.Add(name, "unknown filter dimension")
			continue
		}
		if unconstrained(value) || len(dim.Allowed) == 0 {
			continue
		}
		if !slices.ContainsFunc(dim.Allowed, func(a string) bool { return strings.EqualFold(a, strings.TrimSpace(value)) }) {
			verr.Add(name, "%q is not one of %s", value, strings.Join(dim.Allowed, ", "))
		}
	}

	for _, name := range slices.Sorted(maps.Keys(c.Dates)) {
		r := c.Dates[name]
		if _, ok := e.dates[name]; !ok {
			verr.Add(name, "unknown date field")
			continue
		}
		if r.From != nil && r.To != nil && r.From.After(*r.To) {
			verr.Add(name, "range start is after range end")
		}
	}

	return verr.OrNil()
}

// Match reports whether item satisfies the text query, every discrete
// predicate and every active date range. A predicate naming a dimension the
// engine does not know matches nothing.
func (e *Engine[T]) Match(item T, c Criteria) bool {
	if !e.matchText(item, c.Query) {
		return false
	}

	for name, value := range c.Discrete {
		if unconstrained(value) {
			continue
		}
		dim, ok := e.dims[name]
		if !ok || !strings.EqualFold(strings.TrimSpace(dim.Value(item)), strings.TrimSpace(value)) {
			return false
		}
	}

	for name, r := range c.Dates {
		if !r.Active() {
			continue
		}
		df, ok := e.dates[name]
		if !ok {
			return false
		}
		t, has := df.Value(item)
		if !has || !r.contains(t) {
			return false
		}
	}

	return true
}

func (e *Engine[T]) matchText(item T, q string) bool {
	q = strings.ToLower(strings.TrimSpace(q))
	if q == "" {
		return true
	}
	for _, f := range e.cfg.Searchable {
		if strings.Contains(strings.ToLower(f.Value(item)), q) {
			return true
		}
	}
	return false
}

// Filter lazily yields the items of seq that match c, in input order.
func (e *Engine[T]) Filter(seq iter.Seq[T], c Criteria) iter.Seq[T] {
	return func(yield func(T) bool) {
		for item := range seq {
			if !e.Match(item, c) {
				continue
			}
			if !yield(item) {
				return
			}
		}
	}
}

// Apply is Filter over a slice, returning a new slice.
func (e *Engine[T]) Apply(items []T, c Criteria) []T {
	out := make([]T, 0, len(items))
	for item := range e.Filter(slices.Values(items), c) {
		out = append(out, item)
	}
	return out
}

func unconstrained(v string) bool {
	v = strings.TrimSpace(v)
	return v == "" || strings.EqualFold(v, All)
}
