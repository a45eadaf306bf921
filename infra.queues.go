package main

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/redis/go-redis/v9"
)

// Predefinied Queue IDs.
const (
	CreateQueue = "creation"
	UpdateQueue = "updating"
	DeleteQueue = "deletion"
)

var (
	_ Queuer = (*redisQueue)(nil)
	_ Queuer = (*nopQueue)(nil)
)

// codec encodes change events on the queue and in the journal store.
var codec = jsoniter.ConfigCompatibleWithStandardLibrary

// ChangeEvent describes a successful write made on a library entity.
type ChangeEvent struct {
	Entity   string          `json:"entity"`
	Action   string          `json:"action"`
	EntityID int64           `json:"entity_id"`
	Data     json.RawMessage `json:"data"`
	At       time.Time       `json:"at"`
}

// NewChangeEvent builds a change event with data encoded as JSON.
func NewChangeEvent(entity, action string, id int64, data interface{}, at time.Time) (ChangeEvent, error) {
	raw, err := codec.Marshal(data)
	if err != nil {
		return ChangeEvent{}, err
	}
	return ChangeEvent{Entity: entity, Action: action, EntityID: id, Data: raw, At: at}, nil
}

// Queuer describes a queue.
type Queuer interface {
	Push(ctx context.Context, qid string, event ChangeEvent) error
	Pop(ctx context.Context, qids ...string) (string, ChangeEvent, error)
}

// redisQueue represents a queue which implements the Queuer interface.
type redisQueue struct {
	client *redis.Client
}

func NewRedisQueue(client *redis.Client) Queuer {
	return &redisQueue{client: client}
}

// Push enqueues a change event onto the queue identified by qid.
func (q *redisQueue) Push(ctx context.Context, qid string, event ChangeEvent) error {
	eventBytes, err := codec.Marshal(event)
	if err != nil {
		return err
	}
	return q.client.RPush(ctx, qid, eventBytes).Err()
}

// Pop blocks until a change event is available on one of the
// queue ids then returns it with the queue it was taken from.
func (q *redisQueue) Pop(ctx context.Context, qids ...string) (string, ChangeEvent, error) {
	var event ChangeEvent
	var qid string
	infos, err := q.client.BLPop(ctx, 0*time.Second, qids...).Result()
	if err != nil {
		return qid, event, err
	}

	if err = codec.Unmarshal([]byte(infos[1]), &event); err != nil {
		return qid, event, err
	}
	qid = infos[0]
	return qid, event, nil
}

// nopQueue drops every event. It is used when the journal is disabled.
type nopQueue struct{}

func NewNopQueue() Queuer {
	return nopQueue{}
}

func (nopQueue) Push(context.Context, string, ChangeEvent) error {
	return nil
}

// Pop waits for the context to be done since nothing is ever queued.
func (nopQueue) Pop(ctx context.Context, _ ...string) (string, ChangeEvent, error) {
	<-ctx.Done()
	return "", ChangeEvent{}, ctx.Err()
}

// GetRedisClient provides a ready to use redis client.
func GetRedisClient(config *RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         config.Host + ":" + config.Port,
		DialTimeout:  config.DialTimeout,
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
		PoolSize:     config.PoolSize,
		PoolTimeout:  config.PoolTimeout,
		Password:     config.Password,
		Username:     config.Username,
		DB:           config.DatabaseIndex,
	})

	// test connection.
	if pong, err := client.Ping(context.Background()).Result(); pong != "PONG" || err != nil {
		return client, fmt.Errorf("test connection failed: %v", err)
	}
	return client, nil
}
