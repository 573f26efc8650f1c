// Package events implementa o barramento de notificações de mudança.
//
// Toda mutação de uma chave compartilhada publica um evento; todo assinante recarrega por
// completo o estado derivado daquela chave. Eventos vindos de outros processos chegam pelo
// Relay e são entregues aos assinantes locais como se tivessem sido publicados aqui.
package events

import (
	"context"
	"sync"
	"time"

	"github.com/hugohenrick/warung-digital/pkg/logger"
)

// Topic identifica o tipo de mudança
type Topic string

const (
	TopicCatalogChanged  Topic = "catalog-changed"
	TopicCartChanged     Topic = "cart-changed"
	TopicSalesChanged    Topic = "sales-changed"
	TopicSettingsChanged Topic = "settings-changed"
	TopicAuthChanged     Topic = "auth-changed"
)

// AllTopics lista todos os tópicos conhecidos
var AllTopics = []Topic{
	TopicCatalogChanged,
	TopicCartChanged,
	TopicSalesChanged,
	TopicSettingsChanged,
	TopicAuthChanged,
}

// Event é a notificação entregue aos assinantes. Não carrega o novo estado: quem recebe relê a chave.
type Event struct {
	Topic  Topic     `json:"topic"`
	Key    string    `json:"key"`
	Origin string    `json:"origin"`
	At     time.Time `json:"at"`
}

// Handler trata um evento
type Handler func(Event)

// Relay propaga eventos para outros processos
type Relay interface {
	Broadcast(ctx context.Context, e Event) error
}

type subscription struct {
	handler Handler
	topics  map[Topic]struct{}
}

// Bus é o barramento de eventos do processo
type Bus struct {
	mu     sync.RWMutex
	subs   map[uint64]*subscription
	nextID uint64
	origin string
	relay  Relay
	logger logger.Logger
}

// NewBus cria um barramento identificado por origin
func NewBus(origin string, log logger.Logger) *Bus {
	if log == nil {
		log = logger.Nop()
	}
	return &Bus{
		subs:   map[uint64]*subscription{},
		origin: origin,
		logger: log,
	}
}

// Origin retorna o identificador deste processo
func (b *Bus) Origin() string {
	return b.origin
}

// SetRelay conecta o barramento a um Relay entre processos
func (b *Bus) SetRelay(r Relay) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.relay = r
}

// Subscribe registra handler para os tópicos informados (todos, se nenhum for informado).
// A função devolvida cancela a assinatura.
func (b *Bus) Subscribe(handler Handler, topics ...Topic) func() {
	sub := &subscription{handler: handler}
	if len(topics) > 0 {
		sub.topics = make(map[Topic]struct{}, len(topics))
		for _, t := range topics {
			sub.topics[t] = struct{}{}
		}
	}

	b.mu.Lock()
	b.nextID++
	id := b.nextID
	b.subs[id] = sub
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, id)
			b.mu.Unlock()
		})
	}
}

// Publish entrega o evento aos assinantes locais e o propaga pelo Relay
func (b *Bus) Publish(ctx context.Context, topic Topic, key string) {
	e := Event{Topic: topic, Key: key, Origin: b.origin, At: time.Now().UTC()}
	b.dispatch(e)

	b.mu.RLock()
	relay := b.relay
	b.mu.RUnlock()
	if relay == nil {
		return
	}
	if err := relay.Broadcast(ctx, e); err != nil {
		b.logger.Warn("falha ao propagar evento", "topic", topic, "error", err)
	}
}

// Deliver recebe um evento vindo de outro processo. Eventos do próprio processo são ignorados.
func (b *Bus) Deliver(e Event) {
	if e.Origin == b.origin {
		return
	}
	b.dispatch(e)
}

// SubscriberCount retorna o número de assinaturas ativas
func (b *Bus) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

func (b *Bus) dispatch(e Event) {
	b.mu.RLock()
	handlers := make([]Handler, 0, len(b.subs))
	for _, s := range b.subs {
		if s.topics != nil {
			if _, ok := s.topics[e.Topic]; !ok {
				continue
			}
		}
		handlers = append(handlers, s.handler)
	}
	b.mu.RUnlock()

	for _, h := range handlers {
		h(e)
	}
}
