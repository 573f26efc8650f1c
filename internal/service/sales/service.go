package sales

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hugohenrick/warung-digital/internal/domain/sale"
	"github.com/hugohenrick/warung-digital/internal/domain/storage"
	"github.com/hugohenrick/warung-digital/pkg/confirm"
	"github.com/hugohenrick/warung-digital/pkg/events"
	"github.com/hugohenrick/warung-digital/pkg/logger"
)

var ErrSaleNotFound = errors.New("venda não encontrada")

// Service dá acesso ao histórico de vendas canônico (storage.KeySales)
type Service struct {
	store  storage.Store
	bus    *events.Bus
	logger logger.Logger
}

// NewService cria uma nova instância de Service
func NewService(store storage.Store, bus *events.Bus, log logger.Logger) *Service {
	if log == nil {
		log = logger.Nop()
	}
	return &Service{
		store:  store,
		bus:    bus,
		logger: log,
	}
}

// List retorna o histórico completo, mais recente primeiro
func (s *Service) List(ctx context.Context) (sale.Log, error) {
	raw, err := s.store.Get(ctx, storage.KeySales)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return sale.Log{}, nil
		}
		return nil, fmt.Errorf("erro ao ler vendas: %w", err)
	}
	log, err := sale.DecodeLog(raw)
	if err != nil {
		return nil, fmt.Errorf("erro ao decodificar vendas: %w", err)
	}
	return log, nil
}

// Get busca uma venda pelo ID
func (s *Service) Get(ctx context.Context, id string) (sale.Record, error) {
	log, err := s.List(ctx)
	if err != nil {
		return sale.Record{}, err
	}
	r, ok := log.Find(id)
	if !ok {
		return sale.Record{}, ErrSaleNotFound
	}
	return r, nil
}

// Query filtra as vendas em [from, to) e, se informado, pelo operador de caixa
func (s *Service) Query(ctx context.Context, from, to time.Time, cashierID string) (sale.Log, error) {
	log, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	return log.Filter(from, to, cashierID), nil
}

// Clear apaga todo o histórico depois da confirmação. Recusar mantém o histórico intacto.
func (s *Service) Clear(ctx context.Context, c confirm.Confirmer) (bool, error) {
	prompt := confirm.Prompt{Action: "clear-sales", Message: "Hapus seluruh riwayat penjualan?"}
	if !confirm.Approved(ctx, c, prompt) {
		return false, nil
	}

	err := s.store.Update(ctx, []string{storage.KeySales}, func(map[string][]byte) (map[string][]byte, error) {
		return map[string][]byte{storage.KeySales: nil}, nil
	})
	if err != nil {
		return false, fmt.Errorf("erro ao limpar vendas: %w", err)
	}
	if s.bus != nil {
		s.bus.Publish(ctx, events.TopicSalesChanged, storage.KeySales)
	}
	s.logger.Warn("histórico de vendas apagado")
	return true, nil
}
