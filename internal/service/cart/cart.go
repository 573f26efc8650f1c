// Package cart mantém a seleção em andamento de uma sessão de caixa.
package cart

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	domain "github.com/hugohenrick/warung-digital/internal/domain/cart"
	"github.com/hugohenrick/warung-digital/internal/domain/storage"
	"github.com/hugohenrick/warung-digital/pkg/confirm"
	"github.com/hugohenrick/warung-digital/pkg/events"
	"github.com/hugohenrick/warung-digital/pkg/logger"
)

// Cart é o carrinho de uma sessão, persistido em storage.CartKey(session)
type Cart struct {
	store  storage.Store
	bus    *events.Bus
	logger logger.Logger
	key    string

	mu    sync.RWMutex
	lines domain.Lines
}

// Service abre os carrinhos das sessões sobre o mesmo armazenamento
type Service struct {
	store  storage.Store
	bus    *events.Bus
	logger logger.Logger
}

// NewService cria uma nova instância de Service
func NewService(store storage.Store, bus *events.Bus, log logger.Logger) *Service {
	return &Service{store: store, bus: bus, logger: log}
}

// Open reidrata o carrinho da sessão
func (s *Service) Open(ctx context.Context, session string) (*Cart, error) {
	return Open(ctx, s.store, s.bus, s.logger, session)
}

// Open reidrata o carrinho da sessão. Um retrato persistido inválido é descartado.
func Open(ctx context.Context, store storage.Store, bus *events.Bus, log logger.Logger, session string) (*Cart, error) {
	if log == nil {
		log = logger.Nop()
	}
	c := &Cart{
		store:  store,
		bus:    bus,
		logger: log,
		key:    storage.CartKey(session),
	}
	if err := c.Reload(ctx); err != nil {
		return nil, err
	}
	return c, nil
}

// Key retorna a chave persistida do carrinho
func (c *Cart) Key() string {
	return c.key
}

// Reload relê o retrato persistido
func (c *Cart) Reload(ctx context.Context) error {
	raw, err := c.store.Get(ctx, c.key)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			c.set(nil)
			return nil
		}
		return fmt.Errorf("erro ao ler carrinho: %w", err)
	}

	lines, err := domain.Decode(raw)
	if err != nil {
		c.logger.Warn("carrinho persistido inválido descartado", "key", c.key, "error", err)
		lines = nil
	}
	c.set(lines)
	return nil
}

// AddItem aplica delta à linha do produto. Passar do estoque conhecido devolve
// *cart.StockLimitError e mantém o carrinho como estava.
func (c *Cart) AddItem(ctx context.Context, item domain.Item, delta int) error {
	return c.update(ctx, func(lines domain.Lines) (domain.Lines, error) {
		return lines.Add(item, delta)
	})
}

// RemoveItem remove a linha sem confirmação
func (c *Cart) RemoveItem(ctx context.Context, code string) error {
	code = strings.TrimSpace(code)
	if code == "" {
		return domain.ErrEmptyCode
	}
	return c.update(ctx, func(lines domain.Lines) (domain.Lines, error) {
		return lines.Remove(code), nil
	})
}

// Clear esvazia o carrinho e apaga o retrato persistido
func (c *Cart) Clear(ctx context.Context) error {
	err := c.store.Update(ctx, []string{c.key}, func(map[string][]byte) (map[string][]byte, error) {
		return map[string][]byte{c.key: nil}, nil
	})
	if err != nil {
		return fmt.Errorf("erro ao limpar carrinho: %w", err)
	}
	c.set(nil)
	c.publish(ctx)
	return nil
}

// ClearConfirmed esvazia o carrinho depois da confirmação. Recusar não é erro: devolve false.
func (c *Cart) ClearConfirmed(ctx context.Context, confirmer confirm.Confirmer) (bool, error) {
	prompt := confirm.Prompt{Action: "clear-cart", Message: "Kosongkan keranjang?"}
	if !confirm.Approved(ctx, confirmer, prompt) {
		return false, nil
	}
	if err := c.Clear(ctx); err != nil {
		return false, err
	}
	return true, nil
}

// Lines retorna uma cópia das linhas, na ordem de inclusão
func (c *Cart) Lines() domain.Lines {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make(domain.Lines, len(c.lines))
	copy(out, c.lines)
	return out
}

// IsEmpty indica se o carrinho não tem linhas
func (c *Cart) IsEmpty() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.lines) == 0
}

// TotalQty soma as quantidades
func (c *Cart) TotalQty() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lines.TotalQty()
}

// TotalPrice soma qty * preço guardado na linha
func (c *Cart) TotalPrice() float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lines.TotalPrice()
}

func (c *Cart) update(ctx context.Context, fn func(domain.Lines) (domain.Lines, error)) error {
	var next domain.Lines
	err := c.store.Update(ctx, []string{c.key}, func(cur map[string][]byte) (map[string][]byte, error) {
		var lines domain.Lines
		if raw, ok := cur[c.key]; ok {
			decoded, err := domain.Decode(raw)
			if err == nil {
				lines = decoded
			}
		}

		out, err := fn(lines)
		if err != nil {
			return nil, err
		}
		raw, err := domain.Encode(out)
		if err != nil {
			return nil, fmt.Errorf("erro ao serializar carrinho: %w", err)
		}
		next = out
		return map[string][]byte{c.key: raw}, nil
	})
	if err != nil {
		return err
	}

	c.set(next)
	c.publish(ctx)
	return nil
}

func (c *Cart) set(lines domain.Lines) {
	c.mu.Lock()
	c.lines = lines
	c.mu.Unlock()
}

func (c *Cart) publish(ctx context.Context) {
	if c.bus != nil {
		c.bus.Publish(ctx, events.TopicCartChanged, c.key)
	}
}
