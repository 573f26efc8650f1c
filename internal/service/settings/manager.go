package settings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	domain "github.com/hugohenrick/warung-digital/internal/domain/settings"
	"github.com/hugohenrick/warung-digital/internal/domain/storage"
	"github.com/hugohenrick/warung-digital/pkg/confirm"
	"github.com/hugohenrick/warung-digital/pkg/events"
	"github.com/hugohenrick/warung-digital/pkg/logger"
	"golang.org/x/sync/singleflight"
)

// Manager guarda as configurações carregadas e aplica atualizações por campo
type Manager struct {
	store  storage.Store
	bus    *events.Bus
	logger logger.Logger

	mu        sync.RWMutex
	current   domain.Settings
	ticket    uint64
	installed uint64

	reloads     singleflight.Group
	unsubscribe func()
}

// NewManager carrega as configurações (mesclando com os padrões) e escuta settings-changed
func NewManager(ctx context.Context, store storage.Store, bus *events.Bus, log logger.Logger) (*Manager, error) {
	if log == nil {
		log = logger.Nop()
	}
	m := &Manager{
		store:   store,
		bus:     bus,
		logger:  log,
		current: domain.Defaults(),
	}
	if err := m.Load(ctx); err != nil {
		return nil, err
	}
	if bus != nil {
		m.unsubscribe = bus.Subscribe(func(events.Event) {
			m.reloads.Forget(storage.KeySettings)
			if err := m.Load(context.Background()); err != nil {
				m.logger.Error("falha ao recarregar configurações", "error", err)
			}
		}, events.TopicSettingsChanged)
	}
	return m, nil
}

// Close cancela a assinatura no barramento
func (m *Manager) Close() {
	if m.unsubscribe != nil {
		m.unsubscribe()
	}
}

// Load relê o documento persistido. Documento ausente resulta nos padrões; documento inválido
// também, com um aviso no log. Uma leitura iniciada antes de uma escrita local é descartada.
func (m *Manager) Load(ctx context.Context) error {
	_, err, _ := m.reloads.Do(storage.KeySettings, func() (interface{}, error) {
		ticket := m.nextTicket()
		raw, err := m.store.Get(ctx, storage.KeySettings)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				m.install(domain.Defaults(), ticket)
				return nil, nil
			}
			return nil, fmt.Errorf("erro ao ler configurações: %w", err)
		}

		s, err := domain.Decode(raw)
		if err != nil {
			m.logger.Warn("configurações persistidas inválidas, usando padrões", "error", err)
		}
		m.install(s, ticket)
		return nil, nil
	})
	return err
}

// Get retorna as configurações atuais
func (m *Manager) Get() domain.Settings {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// LowStockThreshold retorna o limite unificado de estoque baixo
func (m *Manager) LowStockThreshold() int {
	return m.Get().Stock.LowStockThreshold
}

// UpdateField grava section.field com o valor JSON informado
func (m *Manager) UpdateField(ctx context.Context, section, field string, value json.RawMessage) (domain.Settings, error) {
	var next domain.Settings
	err := m.store.Update(ctx, []string{storage.KeySettings}, func(cur map[string][]byte) (map[string][]byte, error) {
		base := domain.Defaults()
		if raw, ok := cur[storage.KeySettings]; ok {
			if decoded, err := domain.Decode(raw); err == nil {
				base = decoded
			}
		}

		s, err := base.WithField(section, field, value)
		if err != nil {
			return nil, err
		}
		raw, err := json.Marshal(s)
		if err != nil {
			return nil, fmt.Errorf("erro ao serializar configurações: %w", err)
		}
		next = s
		return map[string][]byte{storage.KeySettings: raw}, nil
	})
	if err != nil {
		return domain.Settings{}, err
	}

	m.set(next)
	m.publish(ctx)
	m.logger.Info("configuração alterada", "section", section, "field", field)
	return next, nil
}

// Reset volta todas as configurações aos padrões depois da confirmação
func (m *Manager) Reset(ctx context.Context, c confirm.Confirmer) (bool, error) {
	prompt := confirm.Prompt{Action: "reset-settings", Message: "Kembalikan semua pengaturan ke bawaan?"}
	if !confirm.Approved(ctx, c, prompt) {
		return false, nil
	}

	err := m.store.Update(ctx, []string{storage.KeySettings}, func(map[string][]byte) (map[string][]byte, error) {
		return map[string][]byte{storage.KeySettings: nil}, nil
	})
	if err != nil {
		return false, fmt.Errorf("erro ao redefinir configurações: %w", err)
	}
	m.set(domain.Defaults())
	m.publish(ctx)
	m.logger.Info("configurações redefinidas")
	return true, nil
}

func (m *Manager) nextTicket() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ticket++
	return m.ticket
}

func (m *Manager) install(s domain.Settings, ticket uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if ticket <= m.installed {
		return
	}
	m.installed = ticket
	m.current = s
}

// set instala o resultado de uma escrita local
func (m *Manager) set(s domain.Settings) {
	m.install(s, m.nextTicket())
}

func (m *Manager) publish(ctx context.Context) {
	if m.bus != nil {
		m.bus.Publish(ctx, events.TopicSettingsChanged, storage.KeySettings)
	}
}
