// Package redis backs the session store and the notification pub/sub
// with a Redis server. Both roles share one dialing path; the server
// refuses to start when Redis is configured but unreachable.
package redis

import (
	"context"
	"errors"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

const dialTimeout = 5 * time.Second

// ErrNotFound is returned when a key does not exist.
var ErrNotFound = errors.New("cache: key not found")

// Config holds Redis connection settings.
type Config struct {
	Addr     string
	Password string
	DB       int
}

func dial(cfg Config) (*goredis.Client, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), dialTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}
	return client, nil
}

// RedisCache is the Redis-backed session KV store.
type RedisCache struct {
	client *goredis.Client
}

// NewCache dials Redis and returns the KV store.
func NewCache(cfg Config) (*RedisCache, error) {
	client, err := dial(cfg)
	if err != nil {
		return nil, err
	}
	return &RedisCache{client: client}, nil
}

func (r *RedisCache) Get(ctx context.Context, key string) (string, error) {
	v, err := r.client.Get(ctx, key).Result()
	if errors.Is(err, goredis.Nil) {
		return "", ErrNotFound
	}
	return v, err
}

func (r *RedisCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return r.client.Set(ctx, key, value, ttl).Err()
}

func (r *RedisCache) Del(ctx context.Context, keys ...string) error {
	return r.client.Del(ctx, keys...).Err()
}

func (r *RedisCache) Exists(ctx context.Context, key string) (bool, error) {
	n, err := r.client.Exists(ctx, key).Result()
	return n > 0, err
}

// RedisMessage is one received pub/sub message.
type RedisMessage struct {
	Channel string
	Payload string
}

// RedisPubSub carries notification events between server instances.
type RedisPubSub struct {
	client *goredis.Client
}

// NewPubSub dials Redis and returns the pub/sub side.
func NewPubSub(cfg Config) (*RedisPubSub, error) {
	client, err := dial(cfg)
	if err != nil {
		return nil, err
	}
	return &RedisPubSub{client: client}, nil
}

func (r *RedisPubSub) Publish(ctx context.Context, channel, message string) error {
	return r.client.Publish(ctx, channel, message).Err()
}

// Subscribe starts a subscription on the given channels. The returned
// cancel func closes the subscription, which in turn closes the channel.
func (r *RedisPubSub) Subscribe(ctx context.Context, channels ...string) (<-chan *RedisMessage, func(), error) {
	ps := r.client.Subscribe(ctx, channels...)
	out := make(chan *RedisMessage, 256)

	go func() {
		defer close(out)
		for msg := range ps.Channel() {
			out <- &RedisMessage{Channel: msg.Channel, Payload: msg.Payload}
		}
	}()

	return out, func() { _ = ps.Close() }, nil
}
