package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hugohenrick/warung-digital/pkg/logger"
	"github.com/redis/go-redis/v9"
)

// DefaultChannel é o canal Pub/Sub usado entre processos
const DefaultChannel = "warung:events"

// RedisRelay propaga eventos entre processos via Redis Pub/Sub
type RedisRelay struct {
	client  *redis.Client
	channel string
	bus     *Bus
	logger  logger.Logger
}

// NewRedisRelay cria o relay e o conecta ao barramento
func NewRedisRelay(client *redis.Client, channel string, bus *Bus, log logger.Logger) *RedisRelay {
	if channel == "" {
		channel = DefaultChannel
	}
	if log == nil {
		log = logger.Nop()
	}
	r := &RedisRelay{client: client, channel: channel, bus: bus, logger: log}
	bus.SetRelay(r)
	return r
}

// Broadcast implementa Relay.Broadcast
func (r *RedisRelay) Broadcast(ctx context.Context, e Event) error {
	payload, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("erro ao serializar evento: %w", err)
	}
	if err := r.client.Publish(ctx, r.channel, payload).Err(); err != nil {
		return fmt.Errorf("erro ao publicar evento: %w", err)
	}
	return nil
}

// Run assina o canal e entrega os eventos recebidos ao barramento até ctx ser cancelado
func (r *RedisRelay) Run(ctx context.Context) error {
	sub := r.client.Subscribe(ctx, r.channel)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("erro ao assinar canal %s: %w", r.channel, err)
	}
	r.logger.Info("relay de eventos ativo", "channel", r.channel, "origin", r.bus.Origin())

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			var e Event
			if err := json.Unmarshal([]byte(msg.Payload), &e); err != nil {
				r.logger.Warn("evento inválido recebido", "error", err)
				continue
			}
			r.bus.Deliver(e)
		}
	}
}
