// Package checkout converte o carrinho de uma sessão em venda.
//
// Estoque, histórico de vendas e carrinho são lidos e gravados numa única atualização atômica do
// storage.Store: ou as três chaves mudam juntas ou nenhuma muda.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/hugohenrick/warung-digital/internal/domain/cart"
	"github.com/hugohenrick/warung-digital/internal/domain/product"
	"github.com/hugohenrick/warung-digital/internal/domain/sale"
	"github.com/hugohenrick/warung-digital/internal/domain/settings"
	"github.com/hugohenrick/warung-digital/internal/domain/storage"
	"github.com/hugohenrick/warung-digital/pkg/events"
	"github.com/hugohenrick/warung-digital/pkg/logger"
	nanoid "github.com/jaevor/go-nanoid"
)

var (
	ErrInsufficientCash = errors.New("valor recebido menor que o total")
	ErrMethodDisabled   = errors.New("forma de pagamento desabilitada")
)

// InsufficientStockError indica que uma linha pede mais do que o estoque atual
type InsufficientStockError struct {
	Code      string
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("estoque insuficiente para %s: pedido %d, disponível %d", e.Code, e.Requested, e.Available)
}

// SettingsSource fornece as configurações vigentes
type SettingsSource interface {
	Get() settings.Settings
}

// Request são os dados de pagamento informados no caixa
type Request struct {
	Method      sale.PaymentMethod
	Tendered    float64
	CashierID   string
	CashierName string
}

// Receipt é o cupom entregue à tela de impressão
type Receipt struct {
	SaleID   string             `json:"saleId"`
	Date     time.Time          `json:"date"`
	ShopName string             `json:"shopName"`
	Address  string             `json:"address,omitempty"`
	Phone    string             `json:"phone,omitempty"`
	Header   string             `json:"header"`
	Footer   string             `json:"footer"`
	Cashier  string             `json:"cashier,omitempty"`
	Items    []cart.Line        `json:"items"`
	Total    float64            `json:"total"`
	Method   sale.PaymentMethod `json:"method"`
	Tendered float64            `json:"tendered,omitempty"`
	Change   float64            `json:"change,omitempty"`
	AutoCut  bool               `json:"autoCut"`
	Currency string             `json:"currency"`
}

// Service executa o fechamento de vendas
type Service struct {
	store    storage.Store
	settings SettingsSource
	bus      *events.Bus
	logger   logger.Logger
	now      func() time.Time
	newID    func(time.Time) string
}

// Option configura o Service
type Option func(*Service)

// WithClock substitui o relógio
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// WithIDGenerator substitui o gerador de IDs de venda
func WithIDGenerator(gen func(time.Time) string) Option {
	return func(s *Service) {
		s.newID = gen
	}
}

// NewService cria uma nova instância de Service
func NewService(store storage.Store, src SettingsSource, bus *events.Bus, log logger.Logger, opts ...Option) (*Service, error) {
	if log == nil {
		log = logger.Nop()
	}
	s := &Service{
		store:    store,
		settings: src,
		bus:      bus,
		logger:   log,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.newID == nil {
		suffix, err := nanoid.CustomASCII("0123456789ABCDEFGHJKLMNPQRSTUVWXYZ", 4)
		if err != nil {
			return nil, fmt.Errorf("erro ao criar gerador de IDs: %w", err)
		}
		s.newID = func(at time.Time) string {
			return "TRX-" + strconv.FormatInt(at.UnixMilli(), 10) + "-" + suffix()
		}
	}
	return s, nil
}

// Checkout fecha o carrinho da sessão. Carrinho vazio não é erro: devolve nil, nil.
func (s *Service) Checkout(ctx context.Context, session string, req Request) (*Receipt, error) {
	cfg := s.settings.Get()
	cartKey := storage.CartKey(session)
	keys := []string{storage.KeyProducts, storage.KeySales, cartKey}
	at := s.now()

	var record *sale.Record
	err := s.store.Update(ctx, keys, func(cur map[string][]byte) (map[string][]byte, error) {
		record = nil

		var lines cart.Lines
		if raw, ok := cur[cartKey]; ok {
			decoded, err := cart.Decode(raw)
			if err != nil {
				return nil, err
			}
			lines = decoded
		}
		if len(lines) == 0 {
			return nil, nil
		}
		if !cfg.MethodEnabled(req.Method) {
			return nil, fmt.Errorf("%w: %s", ErrMethodDisabled, req.Method)
		}

		total := lines.TotalPrice()
		tendered := req.Tendered
		if req.Method == sale.MethodCash {
			if tendered == 0 && !cfg.Cashier.RequireCashTendered {
				tendered = total
			}
			if tendered < total {
				return nil, ErrInsufficientCash
			}
		}

		var products []product.Product
		if raw, ok := cur[storage.KeyProducts]; ok {
			decoded, err := product.DecodeList(raw)
			if err != nil {
				return nil, err
			}
			products = decoded
		}
		products, err := decrement(products, lines)
		if err != nil {
			return nil, err
		}

		var log sale.Log
		if raw, ok := cur[storage.KeySales]; ok {
			decoded, err := sale.DecodeLog(raw)
			if err != nil {
				return nil, err
			}
			log = decoded
		}
		r := sale.NewRecord(s.newID(at), at, lines, req.Method, tendered, req.CashierID)
		log = log.Prepend(r)

		productsRaw, err := product.EncodeList(products)
		if err != nil {
			return nil, fmt.Errorf("erro ao serializar produtos: %w", err)
		}
		salesRaw, err := sale.EncodeLog(log)
		if err != nil {
			return nil, fmt.Errorf("erro ao serializar vendas: %w", err)
		}

		record = &r
		return map[string][]byte{
			storage.KeyProducts: productsRaw,
			storage.KeySales:    salesRaw,
			cartKey:             nil,
		}, nil
	})
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, nil
	}

	if s.bus != nil {
		s.bus.Publish(ctx, events.TopicCatalogChanged, storage.KeyProducts)
		s.bus.Publish(ctx, events.TopicSalesChanged, storage.KeySales)
		s.bus.Publish(ctx, events.TopicCartChanged, cartKey)
	}
	s.logger.Info("venda concluída", "id", record.ID, "total", record.Total, "method", record.Method, "items", record.ItemCount())

	return buildReceipt(cfg, *record, req.CashierName), nil
}

// decrement devolve uma nova lista com o estoque baixado. Uma linha sem produto ou acima do
// estoque atual rejeita o fechamento inteiro.
func decrement(products []product.Product, lines cart.Lines) ([]product.Product, error) {
	out := make([]product.Product, len(products))
	copy(out, products)

	for _, l := range lines {
		idx := product.IndexOf(out, l.Code)
		if idx < 0 {
			return nil, &InsufficientStockError{Code: l.Code, Requested: l.Qty, Available: 0}
		}
		if l.Qty > out[idx].Stock {
			return nil, &InsufficientStockError{Code: l.Code, Requested: l.Qty, Available: out[idx].Stock}
		}
		out[idx].Stock -= l.Qty
	}
	return out, nil
}

func buildReceipt(cfg settings.Settings, r sale.Record, cashierName string) *Receipt {
	rc := &Receipt{
		SaleID:   r.ID,
		Date:     r.Date,
		ShopName: cfg.General.ShopName,
		Address:  cfg.General.Address,
		Phone:    cfg.General.Phone,
		Header:   cfg.Receipt.Header,
		Footer:   cfg.Receipt.Footer,
		Items:    r.Items,
		Total:    r.Total,
		Method:   r.Method,
		Tendered: r.Tendered,
		Change:   r.Change,
		AutoCut:  cfg.Receipt.AutoCut,
		Currency: cfg.General.Currency,
	}
	if cfg.Receipt.ShowCashier {
		rc.Cashier = cashierName
	}
	return rc
}
