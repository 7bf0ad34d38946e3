package kv

import (
	"errors"
	"time"

	"github.com/go-redis/redis/v7"
)

var ErrKeyNotFound = errors.New("key not found")

type Redis struct {
	client *redis.Client
}

var _ Store = (*Redis)(nil)

func NewRedis(addr, pwd string, db int) (*Redis, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: pwd,
		DB:       db,
	})

	if err := client.Ping().Err(); err != nil {
		return nil, err
	}

	return &Redis{client: client}, nil
}

func (r *Redis) Set(key, value string, exp time.Duration) error {
	return r.client.Set(key, value, exp).Err()
}

func (r *Redis) Get(key string) (string, error) {
	v, err := r.client.Get(key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrKeyNotFound
	}
	return v, err
}

func (r *Redis) Del(key string) error {
	return r.client.Del(key).Err()
}

func (r *Redis) TTL(key string) (time.Duration, error) {
	return r.client.TTL(key).Result()
}

func (r *Redis) Close() error { return r.client.Close() }
