// internal/repository/postgres/timeline_repo.go
package postgres

import (
	"context"
	"fmt"
	"iter"
	"slices"
	"strings"
	"time"

	"dealer-crm-service/internal/domain/lead"
	"dealer-crm-service/internal/domain/timeline"
	xerrors "dealer-crm-service/internal/pkg/errors"
	"dealer-crm-service/internal/pkg/query"

	"github.com/jackc/pgx/v5"
	"github.com/lib/pq"
	"github.com/oklog/ulid/v2"
)

const eventColumns = `seq, id, lead_id, occurred_at, actor, action, description, category, resulting_status`

type TimelineRepository struct {
	db     *DB
	engine *query.Engine[timeline.Event]
}

func NewTimelineRepository(db *DB) *TimelineRepository {
	return &TimelineRepository{db: db, engine: timeline.NewQueryEngine()}
}

func scanEvent(row pgx.Row) (timeline.Event, error) {
	var (
		e                         timeline.Event
		seq                       int64
		category, resultingStatus string
	)
	if err := row.Scan(&seq, &e.ID, &e.LeadID, &e.Timestamp, &e.Actor, &e.Action, &e.Description, &category, &resultingStatus); err != nil {
		return timeline.Event{}, err
	}
	e.Sequence = uint64(seq)
	e.Category = timeline.Category(category)
	e.ResultingStatus = lead.Status(resultingStatus)
	return e, nil
}

// Append inserts an event. The lead foreign key turns an unknown lead into NotFound.
func (r *TimelineRepository) Append(ctx context.Context, e timeline.Event) (timeline.Event, error) {
	if err := e.Prepare(time.Now().UTC()); err != nil {
		return timeline.Event{}, err
	}
	e.ID = ulid.Make().String()

	var seq int64
	err := r.db.Pool().QueryRow(ctx, `
		INSERT INTO lead_events (id, lead_id, occurred_at, actor, action, description, category, resulting_status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING seq`,
		e.ID, e.LeadID, e.Timestamp, e.Actor, e.Action, e.Description, string(e.Category), string(e.ResultingStatus),
	).Scan(&seq)
	if err != nil {
		if pgErrorCode(err) == codeForeignKeyViolation {
			return timeline.Event{}, fmt.Errorf("lead %q: %w", e.LeadID, xerrors.ErrNotFound)
		}
		return timeline.Event{}, fmt.Errorf("failed to append event: %w", err)
	}
	e.Sequence = uint64(seq)
	return e, nil
}

func (r *TimelineRepository) EventsFor(ctx context.Context, leadID string) (iter.Seq[timeline.Event], error) {
	events, err := r.query(ctx, leadID, nil)
	if err != nil {
		return nil, err
	}
	return slices.Values(events), nil
}

// Filter pushes the category predicate down to SQL and evaluates the rest
// of c in memory.
func (r *TimelineRepository) Filter(ctx context.Context, leadID string, c query.Criteria) ([]timeline.Event, error) {
	if err := r.engine.Validate(c); err != nil {
		return nil, err
	}

	var categories []string
	if v := strings.TrimSpace(c.Discrete["category"]); v != "" && !strings.EqualFold(v, query.All) {
		categories = []string{strings.ToLower(v)}
	}

	events, err := r.query(ctx, leadID, categories)
	if err != nil {
		return nil, err
	}
	return r.engine.Apply(events, c), nil
}

func (r *TimelineRepository) query(ctx context.Context, leadID string, categories []string) ([]timeline.Event, error) {
	sql := fmt.Sprintf(`SELECT %s FROM lead_events WHERE lead_id = $1`, eventColumns)
	args := []any{strings.TrimSpace(leadID)}
	if len(categories) > 0 {
		sql += ` AND category = ANY($2)`
		args = append(args, pq.StringArray(categories))
	}
	sql += ` ORDER BY occurred_at, seq`

	rows, err := r.db.Pool().Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	var events []timeline.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate events: %w", err)
	}
	return events, nil
}
