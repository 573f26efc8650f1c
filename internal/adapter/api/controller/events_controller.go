package controller

import (
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hugohenrick/warung-digital/internal/adapter/api/dto"
	"github.com/hugohenrick/warung-digital/internal/domain/storage"
	"github.com/hugohenrick/warung-digital/pkg/auth"
	"github.com/hugohenrick/warung-digital/pkg/events"
	"github.com/hugohenrick/warung-digital/pkg/logger"
)

const eventBuffer = 32

// EventsController transmite as notificações de mudança por Server-Sent Events
type EventsController struct {
	bus       *events.Bus
	logger    logger.Logger
	keepAlive time.Duration
}

// NewEventsController cria uma nova instância de EventsController
func NewEventsController(bus *events.Bus, logger logger.Logger) *EventsController {
	return &EventsController{
		bus:       bus,
		logger:    logger,
		keepAlive: 25 * time.Second,
	}
}

// Stream mantém a conexão aberta e envia cada evento do barramento.
// Eventos de carrinho de outras sessões não são enviados.
// @Summary Assinar eventos
// @Description Stream SSE com catalog-changed, cart-changed, sales-changed, settings-changed e auth-changed
// @Tags events
// @Produce text/event-stream
// @Security Bearer
// @Param topics query []string false "Tópicos desejados" collectionFormat(multi)
// @Success 200 {object} events.Event
// @Failure 400 {object} dto.ErrorResponse
// @Router /events [get]
func (c *EventsController) Stream(ctx *gin.Context) {
	topics, ok := parseTopics(ctx.QueryArray("topics"))
	if !ok {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(http.StatusBadRequest, "tópico inválido", ctx.Request.URL.RawQuery))
		return
	}

	ownCart := storage.CartKey(auth.GetCurrentUser(ctx).ID)
	ch := make(chan events.Event, eventBuffer)
	unsubscribe := c.bus.Subscribe(func(e events.Event) {
		if e.Topic == events.TopicCartChanged && e.Key != ownCart {
			return
		}
		select {
		case ch <- e:
		default:
			c.logger.Warn("evento descartado, cliente lento", "topic", e.Topic, "key", e.Key)
		}
	}, topics...)
	defer unsubscribe()

	ticker := time.NewTicker(c.keepAlive)
	defer ticker.Stop()

	ctx.Header("Cache-Control", "no-cache")
	ctx.Header("Connection", "keep-alive")
	ctx.Header("X-Accel-Buffering", "no")

	ctx.Stream(func(w io.Writer) bool {
		select {
		case <-ctx.Request.Context().Done():
			return false
		case e := <-ch:
			ctx.SSEvent(string(e.Topic), e)
			return true
		case <-ticker.C:
			ctx.SSEvent("ping", time.Now().UTC())
			return true
		}
	})
}

func parseTopics(raw []string) ([]events.Topic, bool) {
	if len(raw) == 0 {
		return events.AllTopics, true
	}
	known := make(map[events.Topic]struct{}, len(events.AllTopics))
	for _, t := range events.AllTopics {
		known[t] = struct{}{}
	}

	topics := make([]events.Topic, 0, len(raw))
	for _, r := range raw {
		t := events.Topic(r)
		if _, ok := known[t]; !ok {
			return nil, false
		}
		topics = append(topics, t)
	}
	return topics, true
}
