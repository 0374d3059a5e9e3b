package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"holdagent/internal/models"
)

type Config struct {
	Addr      string
	Password  string
	DB        int
	KeyPrefix string
}

// HoldSnapshots keeps a copy of the session's hold in Redis so a restarted agent can
// pick it back up. Entries expire together with the hold.
type HoldSnapshots struct {
	client    redis.Cmdable
	keyPrefix string
	now       func() time.Time
}

func NewRedisClient(cfg Config) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
		DialTimeout:  5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return rdb, nil
}

func NewHoldSnapshots(client redis.Cmdable, keyPrefix string, now func() time.Time) *HoldSnapshots {
	if keyPrefix == "" {
		keyPrefix = "seathold:session:"
	}
	if now == nil {
		now = time.Now
	}
	return &HoldSnapshots{client: client, keyPrefix: keyPrefix, now: now}
}

func (s *HoldSnapshots) key(sessionID string) string {
	return s.keyPrefix + sessionID
}

// Save stores hold until its expiry. Holds that already ran out are not written.
func (s *HoldSnapshots) Save(ctx context.Context, hold *models.ReservationHold) error {
	ttl := hold.ExpiresAt.Sub(s.now())
	if ttl <= 0 {
		return nil
	}

	payload, err := json.Marshal(hold)
	if err != nil {
		return fmt.Errorf("failed to marshal hold snapshot: %w", err)
	}

	if err := s.client.Set(ctx, s.key(hold.SessionID), payload, ttl).Err(); err != nil {
		return fmt.Errorf("failed to save hold snapshot: %w", err)
	}
	return nil
}

// Load returns the stored hold for sessionID, or nil when there is none
func (s *HoldSnapshots) Load(ctx context.Context, sessionID string) (*models.ReservationHold, error) {
	raw, err := s.client.Get(ctx, s.key(sessionID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("snapshot lookup error: %w", err)
	}

	var hold models.ReservationHold
	if err := json.Unmarshal(raw, &hold); err != nil {
		return nil, fmt.Errorf("invalid hold snapshot: %w", err)
	}
	return &hold, nil
}

func (s *HoldSnapshots) Delete(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, s.key(sessionID)).Err(); err != nil {
		return fmt.Errorf("failed to delete hold snapshot: %w", err)
	}
	return nil
}
