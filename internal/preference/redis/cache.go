package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/frahmantamala/workforce-portal/internal/preference"
	goredis "github.com/redis/go-redis/v9"
)

const (
	keyPrefix  = "workforce:preferences:"
	DefaultTTL = 10 * time.Minute
)

// PreferenceCache keeps JSON-encoded preferences per user. A nil client turns
// every call into a miss or a no-op.
type PreferenceCache struct {
	client *goredis.Client
	ttl    time.Duration
}

func NewPreferenceCache(client *goredis.Client, ttl time.Duration) *PreferenceCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &PreferenceCache{client: client, ttl: ttl}
}

func Key(userID int64) string {
	return fmt.Sprintf("%s%d", keyPrefix, userID)
}

func (c *PreferenceCache) Get(ctx context.Context, userID int64) (*preference.Preferences, bool, error) {
	if c.client == nil {
		return nil, false, nil
	}

	raw, err := c.client.Get(ctx, Key(userID)).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("redis get %s: %w", Key(userID), err)
	}

	p, err := decode(userID, raw)
	if err != nil {
		return nil, false, err
	}
	return p, true, nil
}

func (c *PreferenceCache) Set(ctx context.Context, p *preference.Preferences) error {
	if c.client == nil {
		return nil
	}

	payload, err := encode(p)
	if err != nil {
		return err
	}
	if err := c.client.Set(ctx, Key(p.UserID), payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", Key(p.UserID), err)
	}
	return nil
}

func (c *PreferenceCache) Delete(ctx context.Context, userID int64) error {
	if c.client == nil {
		return nil
	}
	if err := c.client.Del(ctx, Key(userID)).Err(); err != nil {
		return fmt.Errorf("redis delete %s: %w", Key(userID), err)
	}
	return nil
}

func encode(p *preference.Preferences) ([]byte, error) {
	payload, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("marshal preferences of user %d: %w", p.UserID, err)
	}
	return payload, nil
}

// decode rejects an entry stored under another user's key.
func decode(userID int64, raw []byte) (*preference.Preferences, error) {
	var p preference.Preferences
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("unmarshal cached preferences of user %d: %w", userID, err)
	}
	if p.UserID != userID {
		return nil, fmt.Errorf("cached preferences under %s belong to user %d", Key(userID), p.UserID)
	}
	return &p, nil
}
