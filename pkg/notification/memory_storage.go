package notification

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryStorage is an in-memory implementation of the Storage interface.
// Suitable for development, tests, and single-node deployments; swap in the
// redis-backed store when notifications must outlive the process.
type MemoryStorage struct {
	mu            sync.Mutex
	notifications map[string]*Notification

	// Indexes kept in lockstep with the main map.
	byBroadcast map[string][]string
	byRecipient map[string][]string
}

// NewMemoryStorage creates an empty in-memory notification store.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		notifications: make(map[string]*Notification),
		byBroadcast:   make(map[string][]string),
		byRecipient:   make(map[string][]string),
	}
}

func (s *MemoryStorage) Create(ctx context.Context, n Notification) error {
	if err := validate(n); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.notifications[n.ID]; exists {
		return ErrAlreadyExists
	}

	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}
	n.UpdatedAt = n.CreatedAt

	stored := n
	s.notifications[n.ID] = &stored
	if n.BroadcastID != "" {
		s.byBroadcast[n.BroadcastID] = append(s.byBroadcast[n.BroadcastID], n.ID)
	}
	s.byRecipient[n.RecipientID] = append(s.byRecipient[n.RecipientID], n.ID)
	return nil
}

func (s *MemoryStorage) Get(ctx context.Context, id string) (*Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, exists := s.notifications[id]
	if !exists {
		return nil, ErrNotFound
	}
	// Copy prevents external mutation of stored state.
	out := *n
	return &out, nil
}

func (s *MemoryStorage) Update(ctx context.Context, n Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, exists := s.notifications[n.ID]
	if !exists {
		return ErrNotFound
	}

	n.UpdatedAt = time.Now()
	*stored = n
	return nil
}

func (s *MemoryStorage) ClaimDue(ctx context.Context, now time.Time, limit int, lockFor time.Duration) ([]Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	due := make([]*Notification, 0, limit)
	for _, n := range s.notifications {
		if n.Status != StatusPending {
			continue
		}
		if n.NextRetryAt != nil && n.NextRetryAt.After(now) {
			continue
		}
		if n.LockedUntil != nil && n.LockedUntil.After(now) {
			continue
		}
		due = append(due, n)
	}

	// Oldest first so a burst cannot starve earlier notifications.
	sort.Slice(due, func(i, j int) bool {
		return due[i].CreatedAt.Before(due[j].CreatedAt)
	})
	if len(due) > limit {
		due = due[:limit]
	}

	claimed := make([]Notification, 0, len(due))
	lockUntil := now.Add(lockFor)
	for _, n := range due {
		n.LockedUntil = &lockUntil
		n.Attempts++ // attempts counts sends started, and a claim starts one
		n.UpdatedAt = now
		claimed = append(claimed, *n)
	}
	return claimed, nil
}

func (s *MemoryStorage) ListByBroadcast(ctx context.Context, broadcastID string) ([]Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.collect(s.byBroadcast[broadcastID]), nil
}

func (s *MemoryStorage) ListByRecipient(ctx context.Context, recipientID string) ([]Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.collect(s.byRecipient[recipientID]), nil
}

func (s *MemoryStorage) ListStale(ctx context.Context, cutoff time.Time) ([]Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var stale []Notification
	for _, n := range s.notifications {
		if n.Status.Terminal() {
			continue
		}
		if n.UpdatedAt.Before(cutoff) {
			stale = append(stale, *n)
		}
	}
	return stale, nil
}

func (s *MemoryStorage) collect(ids []string) []Notification {
	out := make([]Notification, 0, len(ids))
	for _, id := range ids {
		if n, ok := s.notifications[id]; ok {
			out = append(out, *n)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

func validate(n Notification) error {
	if n.ID == "" {
		return ErrMissingID
	}
	if n.RecipientID == "" {
		return ErrMissingRecipient
	}
	if !n.Channel.Valid() {
		return ErrInvalidChannel
	}
	return nil
}
