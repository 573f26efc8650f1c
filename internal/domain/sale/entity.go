package sale

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/hugohenrick/warung-digital/internal/domain/cart"
)

var (
	ErrUnknownMethod = errors.New("forma de pagamento desconhecida")
	ErrInvalidRecord = errors.New("registro de venda inválido")
)

// PaymentMethod define a forma de pagamento
type PaymentMethod string

const (
	MethodCash     PaymentMethod = "cash"     // Tunai
	MethodQRIS     PaymentMethod = "qris"     // QRIS
	MethodTransfer PaymentMethod = "transfer" // Transferência bancária
	MethodCard     PaymentMethod = "card"     // Cartão de débito/crédito
)

// Methods lista as formas de pagamento conhecidas
var Methods = []PaymentMethod{MethodCash, MethodQRIS, MethodTransfer, MethodCard}

// ParseMethod valida o texto da forma de pagamento
func ParseMethod(s string) (PaymentMethod, error) {
	for _, m := range Methods {
		if string(m) == s {
			return m, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownMethod, s)
}

// Record representa uma venda concluída. Não existe caminho de atualização.
type Record struct {
	ID        string        `json:"id"`
	Date      time.Time     `json:"date"`
	Items     []cart.Line   `json:"items"`
	Total     float64       `json:"total"`
	Method    PaymentMethod `json:"method"`
	Tendered  float64       `json:"tendered,omitempty"`
	Change    float64       `json:"change,omitempty"`
	CashierID string        `json:"cashierId,omitempty"`
}

// NewRecord monta o registro a partir de uma cópia das linhas do carrinho
func NewRecord(id string, at time.Time, lines cart.Lines, method PaymentMethod, tendered float64, cashierID string) Record {
	items := make([]cart.Line, len(lines))
	copy(items, lines)

	total := lines.TotalPrice()
	r := Record{
		ID:        id,
		Date:      at.UTC(),
		Items:     items,
		Total:     total,
		Method:    method,
		CashierID: cashierID,
	}
	if method == MethodCash {
		r.Tendered = tendered
		r.Change = tendered - total
	}
	return r
}

// ItemCount soma as quantidades vendidas
func (r Record) ItemCount() int {
	return cart.Lines(r.Items).TotalQty()
}

// Log é o histórico de vendas, mais recente primeiro
type Log []Record

// Prepend devolve um novo histórico com r na frente
func (l Log) Prepend(r Record) Log {
	out := make(Log, 0, len(l)+1)
	out = append(out, r)
	return append(out, l...)
}

// Find busca uma venda pelo ID
func (l Log) Find(id string) (Record, bool) {
	for _, r := range l {
		if r.ID == id {
			return r, true
		}
	}
	return Record{}, false
}

// Filter devolve as vendas no intervalo [from, to) e, se informado, do operador de caixa
func (l Log) Filter(from, to time.Time, cashierID string) Log {
	out := Log{}
	for _, r := range l {
		if !from.IsZero() && r.Date.Before(from) {
			continue
		}
		if !to.IsZero() && !r.Date.Before(to) {
			continue
		}
		if cashierID != "" && r.CashierID != cashierID {
			continue
		}
		out = append(out, r)
	}
	return out
}

// DecodeLog lê o histórico persistido
func DecodeLog(data []byte) (Log, error) {
	var l Log
	if err := json.Unmarshal(data, &l); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRecord, err)
	}
	for i, r := range l {
		if r.ID == "" {
			return nil, fmt.Errorf("%w: venda %d sem id", ErrInvalidRecord, i)
		}
	}
	return l, nil
}

// EncodeLog serializa o histórico
func EncodeLog(l Log) ([]byte, error) {
	if l == nil {
		l = Log{}
	}
	return json.Marshal(l)
}
