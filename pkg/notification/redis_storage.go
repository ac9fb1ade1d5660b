package notification

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisConfig holds connection settings for the redis-backed store.
type RedisConfig struct {
	ConnectionURL  string        `env:"REDIS_URL" envDefault:"redis://localhost:6379/0"` // format "redis://:password@host:6379/0"
	RetryAttempts  int           `env:"REDIS_RETRY_ATTEMPTS" envDefault:"3"`
	RetryInterval  time.Duration `env:"REDIS_RETRY_INTERVAL" envDefault:"5s"`
	ConnectTimeout time.Duration `env:"REDIS_CONNECT_TIMEOUT" envDefault:"30s"`
}

var (
	// ErrInvalidRedisURL is returned when the connection URL cannot be parsed.
	ErrInvalidRedisURL = errors.New("notification: invalid redis connection URL")

	// ErrRedisNotReady is returned when the server does not answer pings
	// within the configured retry budget.
	ErrRedisNotReady = errors.New("notification: redis is not ready")
)

// ConnectRedis establishes a redis connection with retry, for wiring the
// RedisStorage in one call from environment config.
func ConnectRedis(ctx context.Context, cfg RedisConfig) (*redis.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()

	opt, err := redis.ParseURL(cfg.ConnectionURL)
	if err != nil {
		return nil, errors.Join(ErrInvalidRedisURL, err)
	}

	attempts := max(cfg.RetryAttempts, 1)
	for i := 0; i < attempts; i++ {
		client := redis.NewClient(opt)
		if err := client.Ping(ctx).Err(); err == nil {
			return client, nil
		}
		_ = client.Close()

		select {
		case <-ctx.Done():
			return nil, errors.Join(ErrRedisNotReady, ctx.Err())
		case <-time.After(cfg.RetryInterval):
		}
	}
	return nil, ErrRedisNotReady
}

// RedisStorage is a redis-backed implementation of the Storage interface.
//
// Layout: one JSON value per notification, a due-time sorted set driving
// ClaimDue, and index sets per broadcast, per recipient, and for all
// non-terminal (active) notifications. Claiming is atomic per member: the
// claimer that wins the ZREM owns the notification; a claimer that dies
// before reporting an outcome is recovered by the reaper via the active set.
type RedisStorage struct {
	client *redis.Client
	prefix string
}

// NewRedisStorage creates a redis-backed notification store.
func NewRedisStorage(client *redis.Client) *RedisStorage {
	if client == nil {
		panic("notification: redis client cannot be nil")
	}
	return &RedisStorage{client: client, prefix: "alertkit:"}
}

func (s *RedisStorage) key(id string) string          { return s.prefix + "notification:" + id }
func (s *RedisStorage) dueKey() string                { return s.prefix + "due" }
func (s *RedisStorage) activeKey() string             { return s.prefix + "active" }
func (s *RedisStorage) broadcastKey(id string) string { return s.prefix + "broadcast:" + id }
func (s *RedisStorage) recipientKey(id string) string { return s.prefix + "recipient:" + id }

func (s *RedisStorage) Create(ctx context.Context, n Notification) error {
	if err := validate(n); err != nil {
		return err
	}

	exists, err := s.client.Exists(ctx, s.key(n.ID)).Result()
	if err != nil {
		return fmt.Errorf("redis exists: %w", err)
	}
	if exists > 0 {
		return ErrAlreadyExists
	}

	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}
	n.UpdatedAt = n.CreatedAt

	payload, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, s.key(n.ID), payload, 0)
	pipe.SAdd(ctx, s.activeKey(), n.ID)
	pipe.SAdd(ctx, s.recipientKey(n.RecipientID), n.ID)
	if n.BroadcastID != "" {
		pipe.SAdd(ctx, s.broadcastKey(n.BroadcastID), n.ID)
	}
	if n.Status == StatusPending {
		pipe.ZAdd(ctx, s.dueKey(), redis.Z{Score: dueScore(n), Member: n.ID})
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis create: %w", err)
	}
	return nil
}

func (s *RedisStorage) Get(ctx context.Context, id string) (*Notification, error) {
	raw, err := s.client.Get(ctx, s.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get: %w", err)
	}

	var n Notification
	if err := json.Unmarshal(raw, &n); err != nil {
		return nil, fmt.Errorf("unmarshal notification: %w", err)
	}
	return &n, nil
}

func (s *RedisStorage) Update(ctx context.Context, n Notification) error {
	exists, err := s.client.Exists(ctx, s.key(n.ID)).Result()
	if err != nil {
		return fmt.Errorf("redis exists: %w", err)
	}
	if exists == 0 {
		return ErrNotFound
	}

	n.UpdatedAt = time.Now()
	payload, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, s.key(n.ID), payload, 0)
	if n.Status == StatusPending {
		pipe.SAdd(ctx, s.activeKey(), n.ID)
		pipe.ZAdd(ctx, s.dueKey(), redis.Z{Score: dueScore(n), Member: n.ID})
	} else {
		pipe.ZRem(ctx, s.dueKey(), n.ID)
		if n.Status.Terminal() {
			pipe.SRem(ctx, s.activeKey(), n.ID)
		}
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis update: %w", err)
	}
	return nil
}

func (s *RedisStorage) ClaimDue(ctx context.Context, now time.Time, limit int, lockFor time.Duration) ([]Notification, error) {
	ids, err := s.client.ZRangeByScore(ctx, s.dueKey(), &redis.ZRangeBy{
		Min:   "-inf",
		Max:   fmt.Sprintf("%d", now.UnixMilli()),
		Count: int64(limit),
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("redis zrangebyscore: %w", err)
	}

	lockUntil := now.Add(lockFor)
	claimed := make([]Notification, 0, len(ids))
	for _, id := range ids {
		// ZREM decides ownership: exactly one concurrent claimer gets 1.
		removed, err := s.client.ZRem(ctx, s.dueKey(), id).Result()
		if err != nil {
			return claimed, fmt.Errorf("redis zrem: %w", err)
		}
		if removed == 0 {
			continue
		}

		n, err := s.Get(ctx, id)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return claimed, err
		}
		if n.Status != StatusPending {
			continue
		}

		n.LockedUntil = &lockUntil
		n.Attempts++
		n.UpdatedAt = now
		payload, err := json.Marshal(n)
		if err != nil {
			return claimed, fmt.Errorf("marshal notification: %w", err)
		}
		if err := s.client.Set(ctx, s.key(id), payload, 0).Err(); err != nil {
			return claimed, fmt.Errorf("redis set: %w", err)
		}
		claimed = append(claimed, *n)
	}
	return claimed, nil
}

func (s *RedisStorage) ListByBroadcast(ctx context.Context, broadcastID string) ([]Notification, error) {
	return s.listSet(ctx, s.broadcastKey(broadcastID))
}

func (s *RedisStorage) ListByRecipient(ctx context.Context, recipientID string) ([]Notification, error) {
	return s.listSet(ctx, s.recipientKey(recipientID))
}

func (s *RedisStorage) ListStale(ctx context.Context, cutoff time.Time) ([]Notification, error) {
	all, err := s.listSet(ctx, s.activeKey())
	if err != nil {
		return nil, err
	}

	stale := all[:0]
	for _, n := range all {
		if !n.Status.Terminal() && n.UpdatedAt.Before(cutoff) {
			stale = append(stale, n)
		}
	}
	return stale, nil
}

func (s *RedisStorage) listSet(ctx context.Context, setKey string) ([]Notification, error) {
	ids, err := s.client.SMembers(ctx, setKey).Result()
	if err != nil {
		return nil, fmt.Errorf("redis smembers: %w", err)
	}
	if len(ids) == 0 {
		return []Notification{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = s.key(id)
	}
	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("redis mget: %w", err)
	}

	out := make([]Notification, 0, len(values))
	for _, v := range values {
		raw, ok := v.(string)
		if !ok {
			continue // index entry without a value, e.g. expired record
		}
		var n Notification
		if err := json.Unmarshal([]byte(raw), &n); err != nil {
			return nil, fmt.Errorf("unmarshal notification: %w", err)
		}
		out = append(out, n)
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

// dueScore orders the due queue by next retry time, falling back to creation
// time for first attempts.
func dueScore(n Notification) float64 {
	if n.NextRetryAt != nil {
		return float64(n.NextRetryAt.UnixMilli())
	}
	return float64(n.CreatedAt.UnixMilli())
}
