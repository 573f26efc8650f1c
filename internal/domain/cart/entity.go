package cart

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrEmptyCode   = errors.New("código do produto não informado")
	ErrInvalidLine = errors.New("linha de carrinho inválida")
)

// Line representa uma linha do carrinho. O preço é uma cópia do momento em que o item entrou.
type Line struct {
	Code  string  `json:"code"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
	Qty   int     `json:"qty"`
}

// Item é o produto que o chamador quer adicionar. Stock nil significa estoque desconhecido.
type Item struct {
	Code  string
	Name  string
	Price float64
	Stock *int
}

// StockLimitError indica que a quantidade pedida passaria do estoque conhecido
type StockLimitError struct {
	Code      string
	Requested int
	Available int
}

func (e *StockLimitError) Error() string {
	return fmt.Sprintf("estoque insuficiente para %s: pedido %d, disponível %d", e.Code, e.Requested, e.Available)
}

// Lines é o conteúdo ordenado do carrinho
type Lines []Line

// Add aplica delta à linha do código informado e devolve o novo conteúdo.
// Em caso de erro o conteúdo original é devolvido sem alteração.
func (ls Lines) Add(item Item, delta int) (Lines, error) {
	code := strings.TrimSpace(item.Code)
	if code == "" {
		return ls, ErrEmptyCode
	}

	idx := ls.IndexOf(code)
	if idx < 0 {
		if delta <= 0 {
			return ls, nil
		}
		if item.Stock != nil && delta > *item.Stock {
			return ls, &StockLimitError{Code: code, Requested: delta, Available: *item.Stock}
		}
		out := append(ls.clone(), Line{Code: code, Name: item.Name, Price: item.Price, Qty: delta})
		return out, nil
	}

	newQty := ls[idx].Qty + delta
	if newQty <= 0 {
		return ls.Remove(code), nil
	}
	if item.Stock != nil && delta > 0 && newQty > *item.Stock {
		return ls, &StockLimitError{Code: code, Requested: newQty, Available: *item.Stock}
	}

	out := ls.clone()
	out[idx].Qty = newQty
	return out, nil
}

// Remove devolve o conteúdo sem a linha do código informado
func (ls Lines) Remove(code string) Lines {
	out := make(Lines, 0, len(ls))
	for _, l := range ls {
		if l.Code != code {
			out = append(out, l)
		}
	}
	return out
}

// IndexOf retorna a posição da linha do código informado, ou -1
func (ls Lines) IndexOf(code string) int {
	for i, l := range ls {
		if l.Code == code {
			return i
		}
	}
	return -1
}

// TotalQty soma as quantidades
func (ls Lines) TotalQty() int {
	total := 0
	for _, l := range ls {
		total += l.Qty
	}
	return total
}

// TotalPrice soma qty * preço copiado de cada linha
func (ls Lines) TotalPrice() float64 {
	total := 0.0
	for _, l := range ls {
		total += float64(l.Qty) * l.Price
	}
	return total
}

func (ls Lines) clone() Lines {
	out := make(Lines, len(ls))
	copy(out, ls)
	return out
}

// Decode lê o carrinho persistido, descartando a persistência inválida com erro tipado
func Decode(data []byte) (Lines, error) {
	var ls Lines
	if err := json.Unmarshal(data, &ls); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidLine, err)
	}
	seen := make(map[string]struct{}, len(ls))
	for i, l := range ls {
		if strings.TrimSpace(l.Code) == "" || l.Qty <= 0 || l.Price < 0 {
			return nil, fmt.Errorf("%w: posição %d", ErrInvalidLine, i)
		}
		if _, dup := seen[l.Code]; dup {
			return nil, fmt.Errorf("%w: código %s repetido", ErrInvalidLine, l.Code)
		}
		seen[l.Code] = struct{}{}
	}
	return ls, nil
}

// Encode serializa o carrinho preservando a ordem das linhas
func Encode(ls Lines) ([]byte, error) {
	if ls == nil {
		ls = Lines{}
	}
	return json.Marshal(ls)
}
