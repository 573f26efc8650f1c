// Package catalog mantém a lista autoritativa de produtos.
//
// Toda mutação é uma leitura-modificação-escrita atômica sobre storage.KeyProducts seguida de um
// evento catalog-changed. O retrato em memória só é trocado depois que a escrita foi aceita e é
// recarregado por completo a cada notificação recebida pelo barramento.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/hugohenrick/warung-digital/internal/domain/product"
	"github.com/hugohenrick/warung-digital/internal/domain/storage"
	"github.com/hugohenrick/warung-digital/pkg/confirm"
	"github.com/hugohenrick/warung-digital/pkg/events"
	"github.com/hugohenrick/warung-digital/pkg/logger"
	nanoid "github.com/jaevor/go-nanoid"
	"golang.org/x/sync/singleflight"
)

const (
	codePrefix   = "PRD-"
	codeAlphabet = "0123456789ABCDEFGHJKLMNPQRSTUVWXYZ"
	codeLength   = 8
)

var (
	ErrProductNotFound = errors.New("produto não encontrado")
	ErrNothingSelected = errors.New("nenhum produto selecionado")
)

// DuplicateCodeError indica que o código já pertence a outro produto
type DuplicateCodeError struct {
	Code string
}

func (e *DuplicateCodeError) Error() string {
	return fmt.Sprintf("já existe um produto com o código %s", e.Code)
}

// Manager é o dono do catálogo de produtos
type Manager struct {
	store   storage.Store
	bus     *events.Bus
	logger  logger.Logger
	newCode func() string

	mu       sync.RWMutex
	products []product.Product
	// tickets ordenam leituras e escritas; só um retrato mais novo que o instalado é aceito
	ticket    uint64
	installed uint64

	reloads     singleflight.Group
	unsubscribe func()
}

// Option configura o Manager
type Option func(*Manager)

// WithCodeGenerator substitui o gerador de códigos automáticos
func WithCodeGenerator(gen func() string) Option {
	return func(m *Manager) {
		m.newCode = gen
	}
}

// NewManager carrega o catálogo e passa a escutar catalog-changed
func NewManager(ctx context.Context, store storage.Store, bus *events.Bus, log logger.Logger, opts ...Option) (*Manager, error) {
	if log == nil {
		log = logger.Nop()
	}

	m := &Manager{
		store:  store,
		bus:    bus,
		logger: log,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.newCode == nil {
		gen, err := nanoid.CustomASCII(codeAlphabet, codeLength)
		if err != nil {
			return nil, fmt.Errorf("erro ao criar gerador de códigos: %w", err)
		}
		m.newCode = func() string { return codePrefix + gen() }
	}

	if err := m.Reload(ctx); err != nil {
		return nil, err
	}

	if bus != nil {
		m.unsubscribe = bus.Subscribe(func(e events.Event) {
			// uma leitura em andamento pode ter começado antes desta escrita
			m.reloads.Forget(storage.KeyProducts)
			if err := m.Reload(context.Background()); err != nil {
				m.logger.Error("falha ao recarregar catálogo", "origin", e.Origin, "error", err)
			}
		}, events.TopicCatalogChanged)
	}

	return m, nil
}

// Close cancela a assinatura no barramento
func (m *Manager) Close() {
	if m.unsubscribe != nil {
		m.unsubscribe()
	}
}

// Reload relê a lista persistida. Chamadas concorrentes compartilham a mesma leitura, e uma
// leitura iniciada antes de uma escrita local não substitui o retrato gravado por ela.
func (m *Manager) Reload(ctx context.Context) error {
	_, err, _ := m.reloads.Do(storage.KeyProducts, func() (interface{}, error) {
		ticket := m.nextTicket()
		products, err := m.read(ctx)
		if err != nil {
			return nil, err
		}
		if !m.install(products, ticket) {
			m.logger.Debug("leitura do catálogo descartada, retrato mais novo já instalado", "ticket", ticket)
		}
		return nil, nil
	})
	return err
}

// List retorna uma cópia do catálogo, ordenada por nome
func (m *Manager) List() []product.Product {
	m.mu.RLock()
	out := make([]product.Product, len(m.products))
	copy(out, m.products)
	m.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
	})
	return out
}

// Find busca um produto pelo código
func (m *Manager) Find(code string) (product.Product, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	idx := product.IndexOf(m.products, strings.TrimSpace(code))
	if idx < 0 {
		return product.Product{}, false
	}
	return m.products[idx], true
}

// Count retorna o número de produtos
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.products)
}

// LowStock lista os produtos com estoque abaixo do limite
func (m *Manager) LowStock(threshold int) []product.Product {
	out := []product.Product{}
	for _, p := range m.List() {
		if p.IsLowStock(threshold) {
			out = append(out, p)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Stock < out[j].Stock
	})
	return out
}

// AddOrUpdate cadastra um novo produto ou, com editing informado, substitui o registro de mesmo
// código no lugar. Sem código no formulário, um código é gerado.
func (m *Manager) AddOrUpdate(ctx context.Context, form product.Form, editing *product.Product) (product.Product, error) {
	p, err := product.ParseForm(form)
	if err != nil {
		return product.Product{}, err
	}

	if p.Code == "" {
		if editing != nil {
			p.Code = editing.Code
		} else {
			p.Code = m.newCode()
		}
	}

	var saved []product.Product
	err = m.update(ctx, func(products []product.Product) ([]product.Product, error) {
		if editing == nil {
			if product.IndexOf(products, p.Code) >= 0 {
				return nil, &DuplicateCodeError{Code: p.Code}
			}
			saved = append(products, p)
			return saved, nil
		}

		idx := product.IndexOf(products, editing.Code)
		if idx < 0 {
			return nil, fmt.Errorf("%w: %s", ErrProductNotFound, editing.Code)
		}
		if p.Code != editing.Code && product.IndexOf(products, p.Code) >= 0 {
			return nil, &DuplicateCodeError{Code: p.Code}
		}
		saved = make([]product.Product, len(products))
		copy(saved, products)
		saved[idx] = p
		return saved, nil
	})
	if err != nil {
		return product.Product{}, err
	}

	m.logger.Info("produto salvo", "code", p.Code, "edit", editing != nil)
	return p, nil
}

// Delete remove um produto depois da confirmação. Recusar não é erro: devolve false.
func (m *Manager) Delete(ctx context.Context, code string, c confirm.Confirmer) (bool, error) {
	code = strings.TrimSpace(code)
	if _, ok := m.Find(code); !ok {
		return false, fmt.Errorf("%w: %s", ErrProductNotFound, code)
	}

	prompt := confirm.Prompt{Action: "delete-product", Message: fmt.Sprintf("Hapus produk %s?", code)}
	if !confirm.Approved(ctx, c, prompt) {
		return false, nil
	}

	err := m.update(ctx, func(products []product.Product) ([]product.Product, error) {
		idx := product.IndexOf(products, code)
		if idx < 0 {
			return nil, fmt.Errorf("%w: %s", ErrProductNotFound, code)
		}
		out := make([]product.Product, 0, len(products)-1)
		out = append(out, products[:idx]...)
		return append(out, products[idx+1:]...), nil
	})
	if err != nil {
		return false, err
	}

	m.logger.Info("produto removido", "code", code)
	return true, nil
}

// BulkDelete remove todos os códigos informados numa única escrita.
// Devolve se a operação prosseguiu, para que o chamador limpe a seleção só nesse caso.
func (m *Manager) BulkDelete(ctx context.Context, codes []string, c confirm.Confirmer) (bool, error) {
	selected := make(map[string]struct{}, len(codes))
	for _, code := range codes {
		if code = strings.TrimSpace(code); code != "" {
			selected[code] = struct{}{}
		}
	}
	if len(selected) == 0 {
		return false, ErrNothingSelected
	}

	prompt := confirm.Prompt{Action: "bulk-delete-products", Message: fmt.Sprintf("Hapus %d produk terpilih?", len(selected))}
	if !confirm.Approved(ctx, c, prompt) {
		return false, nil
	}

	removed := 0
	err := m.update(ctx, func(products []product.Product) ([]product.Product, error) {
		removed = 0
		out := make([]product.Product, 0, len(products))
		for _, p := range products {
			if _, ok := selected[p.Code]; ok {
				removed++
				continue
			}
			out = append(out, p)
		}
		return out, nil
	})
	if err != nil {
		return false, err
	}

	m.logger.Info("produtos removidos em lote", "selected", len(selected), "removed", removed)
	return true, nil
}

// update aplica fn sobre a lista persistida, grava, troca o retrato e publica o evento
func (m *Manager) update(ctx context.Context, fn func([]product.Product) ([]product.Product, error)) error {
	var next []product.Product
	err := m.store.Update(ctx, []string{storage.KeyProducts}, func(cur map[string][]byte) (map[string][]byte, error) {
		var products []product.Product
		if raw, ok := cur[storage.KeyProducts]; ok {
			decoded, err := product.DecodeList(raw)
			if err != nil {
				return nil, err
			}
			products = decoded
		}

		out, err := fn(products)
		if err != nil {
			return nil, err
		}
		raw, err := product.EncodeList(out)
		if err != nil {
			return nil, fmt.Errorf("erro ao serializar produtos: %w", err)
		}
		next = out
		return map[string][]byte{storage.KeyProducts: raw}, nil
	})
	if err != nil {
		return err
	}

	m.install(next, m.nextTicket())
	if m.bus != nil {
		m.bus.Publish(ctx, events.TopicCatalogChanged, storage.KeyProducts)
	}
	return nil
}

func (m *Manager) read(ctx context.Context) ([]product.Product, error) {
	raw, err := m.store.Get(ctx, storage.KeyProducts)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return []product.Product{}, nil
		}
		return nil, fmt.Errorf("erro ao ler produtos: %w", err)
	}
	products, err := product.DecodeList(raw)
	if err != nil {
		return nil, fmt.Errorf("erro ao decodificar produtos: %w", err)
	}
	return products, nil
}

func (m *Manager) nextTicket() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ticket++
	return m.ticket
}

// install troca o retrato se ticket for mais novo que o instalado
func (m *Manager) install(products []product.Product, ticket uint64) bool {
	cp := make([]product.Product, len(products))
	copy(cp, products)

	m.mu.Lock()
	defer m.mu.Unlock()
	if ticket <= m.installed {
		return false
	}
	m.installed = ticket
	m.products = cp
	return true
}
