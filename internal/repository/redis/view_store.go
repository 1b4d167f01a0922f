// internal/repository/redis/view_store.go
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"dealer-crm-service/internal/domain/view"

	"github.com/redis/go-redis/v9"
)

// ViewStore keeps column layouts across table sessions.
type ViewStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewViewStore(client *redis.Client, ttl time.Duration) *ViewStore {
	return &ViewStore{client: client, ttl: ttl}
}

func viewKey(tableID string) string {
	return fmt.Sprintf("view:columns:%s", tableID)
}

func (s *ViewStore) Save(ctx context.Context, snap view.Snapshot) error {
	payload, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to marshal view snapshot: %w", err)
	}
	if err := s.client.Set(ctx, viewKey(snap.TableID), payload, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save view snapshot: %w", err)
	}
	return nil
}

// Load returns the saved layout of a table; found is false when none is stored.
func (s *ViewStore) Load(ctx context.Context, tableID string) (snap view.Snapshot, found bool, err error) {
	payload, err := s.client.Get(ctx, viewKey(tableID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return view.Snapshot{}, false, nil
	}
	if err != nil {
		return view.Snapshot{}, false, fmt.Errorf("failed to load view snapshot: %w", err)
	}
	if err := json.Unmarshal(payload, &snap); err != nil {
		return view.Snapshot{}, false, fmt.Errorf("failed to unmarshal view snapshot: %w", err)
	}
	return snap, true, nil
}
