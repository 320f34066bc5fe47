package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

type redisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore keeps every key for ttl after its last write.
func NewRedisStore(client *redis.Client, ttl time.Duration) Store {
	return &redisStore{client: client, ttl: ttl}
}

func discountKey(sessionID string) string { return "session:" + sessionID + ":discount" }
func summaryKey(sessionID string) string  { return "session:" + sessionID + ":checkout" }

func (s *redisStore) GetDiscount(ctx context.Context, sessionID string) (Discount, error) {
	if sessionID == "" {
		return Discount{}, ErrNoSession
	}
	vals, err := s.client.HGetAll(ctx, discountKey(sessionID)).Result()
	if err != nil {
		return Discount{}, fmt.Errorf("get discount: %w", err)
	}
	d := Discount{Code: vals["code"]}
	if raw := vals["amount"]; raw != "" {
		d.Amount, err = strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return Discount{}, fmt.Errorf("parse discount amount: %w", err)
		}
	}
	return d, nil
}

func (s *redisStore) SetDiscount(ctx context.Context, sessionID string, d Discount) error {
	if sessionID == "" {
		return ErrNoSession
	}
	key := discountKey(sessionID)
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key, "code", d.Code, "amount", d.Amount)
		pipe.Expire(ctx, key, s.ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("set discount: %w", err)
	}
	return nil
}

func (s *redisStore) ClearDiscount(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return ErrNoSession
	}
	if err := s.client.Del(ctx, discountKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("clear discount: %w", err)
	}
	return nil
}

func (s *redisStore) Clear(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return ErrNoSession
	}
	if err := s.client.Del(ctx, discountKey(sessionID), summaryKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

func (s *redisStore) SaveSummary(ctx context.Context, sessionID string, sum Summary) error {
	if sessionID == "" {
		return ErrNoSession
	}
	data, err := json.Marshal(sum)
	if err != nil {
		return fmt.Errorf("marshal summary: %w", err)
	}
	if err := s.client.Set(ctx, summaryKey(sessionID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("save summary: %w", err)
	}
	return nil
}

func (s *redisStore) LoadSummary(ctx context.Context, sessionID string, consume bool) (*Summary, error) {
	if sessionID == "" {
		return nil, ErrNoSession
	}
	var (
		raw string
		err error
	)
	if consume {
		raw, err = s.client.GetDel(ctx, summaryKey(sessionID)).Result()
	} else {
		raw, err = s.client.Get(ctx, summaryKey(sessionID)).Result()
	}
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load summary: %w", err)
	}
	var sum Summary
	if err := json.Unmarshal([]byte(raw), &sum); err != nil {
		return nil, fmt.Errorf("unmarshal summary: %w", err)
	}
	return &sum, nil
}
