package broadcast

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const RelayChannelPrefix = "bidhub:"

var publishTimeout = 3 * time.Second

// RedisRelay publishes pushes to redis so that every instance delivers them to its own Hub.
type RedisRelay struct {
	client *redis.Client
	prefix string
}

func NewRedisClient(addr, password string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return rdb, nil
}

func NewRedisRelay(client *redis.Client) *RedisRelay {
	return &RedisRelay{client: client, prefix: RelayChannelPrefix}
}

func (r *RedisRelay) Push(topicKey string, payload interface{}) error {
	data, err := encode(payload)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()
	return r.client.Publish(ctx, r.prefix+topicKey, data).Err()
}

// Run forwards every relayed message into hub until ctx is done, which is a normal stop.
func (r *RedisRelay) Run(ctx context.Context, hub *Hub) error {
	pubsub := r.client.PSubscribe(ctx, r.prefix+"*")
	defer pubsub.Close()

	if _, err := pubsub.Receive(ctx); err != nil {
		return fmt.Errorf("failed to subscribe relay channels: %w", err)
	}

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			topicKey := strings.TrimPrefix(msg.Channel, r.prefix)
			if err := hub.Push(topicKey, []byte(msg.Payload)); err != nil {
				logrus.Warnf("failed to deliver relayed message of topic %s: %v", topicKey, err)
			}
		}
	}
}
