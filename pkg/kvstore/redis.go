package kvstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/campuskart/storefront/pkg/config"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/multierr"
)

const (
	keyNamespace  = "storefront"
	kvPrefix      = "kv"
	changeChannel = "storefront:changes"
)

type redisStore struct {
	client *redis.Client
	origin uuid.UUID

	mu   sync.Mutex
	subs []*redis.PubSub
}

// OpenRedis connects the shared-store driver and verifies connectivity.
// Change events ride a pub/sub channel, so sessions in separate processes
// (or on separate machines) still receive the cross-tab signal.
func OpenRedis(ctx context.Context, cfg config.RedisConfig) (Store, error) {
	opts, err := optionsFromConfig(cfg)
	if err != nil {
		return nil, err
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &redisStore{client: client, origin: uuid.New()}, nil
}

func optionsFromConfig(cfg config.RedisConfig) (*redis.Options, error) {
	if cfg.URL == "" && cfg.Address == "" {
		return nil, errors.New("redis url or address is required")
	}
	var opts *redis.Options
	if cfg.URL != "" {
		parsed, err := redis.ParseURL(cfg.URL)
		if err != nil {
			return nil, fmt.Errorf("parsing redis url: %w", err)
		}
		opts = parsed
	} else {
		opts = &redis.Options{
			Addr:     cfg.Address,
			Password: cfg.Password,
			DB:       cfg.DB,
		}
	}
	if opts.PoolSize == 0 {
		opts.PoolSize = cfg.PoolSize
	}
	if opts.MinIdleConns == 0 {
		opts.MinIdleConns = cfg.MinIdleConns
	}
	if opts.DialTimeout == 0 {
		opts.DialTimeout = cfg.DialTimeout
	}
	if opts.ReadTimeout == 0 {
		opts.ReadTimeout = cfg.ReadTimeout
	}
	if opts.WriteTimeout == 0 {
		opts.WriteTimeout = cfg.WriteTimeout
	}
	return opts, nil
}

func (s *redisStore) Get(ctx context.Context, key string) (string, error) {
	value, err := s.client.Get(ctx, buildKey(key)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrNotFound
		}
		return "", err
	}
	return value, nil
}

func (s *redisStore) Set(ctx context.Context, key, value string) error {
	if err := s.client.Set(ctx, buildKey(key), value, 0).Err(); err != nil {
		return err
	}
	return s.publish(ctx, Event{Key: key, NewValue: value, Origin: s.origin})
}

func (s *redisStore) Delete(ctx context.Context, key string) error {
	removed, err := s.client.Del(ctx, buildKey(key)).Result()
	if err != nil {
		return err
	}
	if removed == 0 {
		return nil
	}
	return s.publish(ctx, Event{Key: key, Deleted: true, Origin: s.origin})
}

func (s *redisStore) publish(ctx context.Context, ev Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("encode change event: %w", err)
	}
	return s.client.Publish(ctx, changeChannel, payload).Err()
}

func (s *redisStore) Watch(ctx context.Context) (<-chan Event, error) {
	sub := s.client.Subscribe(ctx, changeChannel)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, fmt.Errorf("subscribe change channel: %w", err)
	}

	s.mu.Lock()
	s.subs = append(s.subs, sub)
	s.mu.Unlock()

	out := make(chan Event, watchBuffer)
	go func() {
		defer close(out)
		msgs := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				var ev Event
				if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
					continue
				}
				if ev.Origin == s.origin {
					continue
				}
				select {
				case out <- ev:
				default:
				}
			}
		}
	}()
	return out, nil
}

func (s *redisStore) Origin() uuid.UUID {
	return s.origin
}

func (s *redisStore) Close() error {
	s.mu.Lock()
	subs := s.subs
	s.subs = nil
	s.mu.Unlock()

	var err error
	for _, sub := range subs {
		err = multierr.Append(err, sub.Close())
	}
	return multierr.Append(err, s.client.Close())
}

func buildKey(key string) string {
	return keyNamespace + ":" + kvPrefix + ":" + key
}
