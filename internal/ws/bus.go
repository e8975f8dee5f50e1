package ws

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"screenroom/internal/app"
)

// BusMessage carries one already-encoded event frame between instances.
// Origin lets an instance skip frames it published itself.
type BusMessage struct {
	Origin   string `json:"origin"`
	RoomCode string `json:"roomCode"`
	Payload  []byte `json:"payload"`
}

// Bus bridges room fan-out across server instances over redis pub/sub.
// It is optional; a nil *Bus means single-instance, purely in-memory
// operation.
type Bus struct {
	rdb *redis.Client
	id  string
	log *slog.Logger
}

// NewBus connects to redis and verifies connectivity
func NewBus(ctx context.Context, cfg app.Config, log *slog.Logger) (*Bus, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr: cfg.RedisAddr,
		DB:   cfg.RedisDB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, err
	}
	return &Bus{rdb: rdb, id: uuid.NewString(), log: log}, nil
}

// Publish sends a frame to the redis channel for a room
func (b *Bus) Publish(ctx context.Context, roomCode string, payload []byte) error {
	raw, _ := json.Marshal(BusMessage{Origin: b.id, RoomCode: roomCode, Payload: payload})
	return b.rdb.Publish(ctx, channel(roomCode), raw).Err()
}

// Subscribe listens to all room channels and invokes fn for each frame
// published by another instance.
func (b *Bus) Subscribe(ctx context.Context, fn func(BusMessage)) {
	pubsub := b.rdb.PSubscribe(ctx, channel("*"))
	ch := pubsub.Channel()

	for {
		select {
		case <-ctx.Done():
			_ = pubsub.Close()
			return
		case msg := <-ch:
			var bm BusMessage
			_ = json.Unmarshal([]byte(msg.Payload), &bm)
			if bm.RoomCode == "" || bm.Origin == b.id {
				continue
			}
			fn(bm)
		}
	}
}

// Close shuts down the redis connection
func (b *Bus) Close() { _ = b.rdb.Close() }

// channel namespacing for room pub/sub
func channel(roomCode string) string { return "room:" + roomCode }
