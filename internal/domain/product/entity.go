package product

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

var (
	ErrEmptyName     = errors.New("nome do produto não pode ser vazio")
	ErrInvalidPrice  = errors.New("preço deve ser um número maior ou igual a zero")
	ErrInvalidStock  = errors.New("estoque deve ser um número inteiro maior ou igual a zero")
	ErrInvalidRecord = errors.New("registro de produto inválido")
)

// Product representa um produto do catálogo
type Product struct {
	Code     string  `json:"code"`     // Código (chave primária)
	Name     string  `json:"name"`     // Nome de exibição
	Price    float64 `json:"price"`    // Preço unitário de venda
	Stock    int     `json:"stock"`    // Unidades em estoque
	Category string  `json:"category"` // Categoria (informativa)
}

// Form representa os dados do formulário de cadastro, ainda como texto
type Form struct {
	Code     string `json:"code"`
	Name     string `json:"name"`
	Price    string `json:"price"`
	Stock    string `json:"stock"`
	Category string `json:"category"`
}

// ParseError descreve um campo inválido vindo de fora do sistema
type ParseError struct {
	Field string
	Value string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("campo %s inválido (%q): %v", e.Field, e.Value, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// ParseForm converte o formulário em Product. O código pode ficar vazio (será gerado).
func ParseForm(f Form) (Product, error) {
	p := Product{
		Code:     strings.TrimSpace(f.Code),
		Name:     strings.TrimSpace(f.Name),
		Category: strings.TrimSpace(f.Category),
	}

	if p.Name == "" {
		return Product{}, &ParseError{Field: "name", Value: f.Name, Err: ErrEmptyName}
	}

	price, err := parsePrice(f.Price)
	if err != nil {
		return Product{}, &ParseError{Field: "price", Value: f.Price, Err: err}
	}
	p.Price = price

	stock, err := parseStock(f.Stock)
	if err != nil {
		return Product{}, &ParseError{Field: "stock", Value: f.Stock, Err: err}
	}
	p.Stock = stock

	return p, nil
}

// Validate verifica as invariantes de um produto já tipado
func (p Product) Validate() error {
	if strings.TrimSpace(p.Code) == "" {
		return &ParseError{Field: "code", Value: p.Code, Err: ErrInvalidRecord}
	}
	if strings.TrimSpace(p.Name) == "" {
		return &ParseError{Field: "name", Value: p.Name, Err: ErrEmptyName}
	}
	if p.Price < 0 || math.IsNaN(p.Price) || math.IsInf(p.Price, 0) {
		return &ParseError{Field: "price", Value: strconv.FormatFloat(p.Price, 'f', -1, 64), Err: ErrInvalidPrice}
	}
	if p.Stock < 0 {
		return &ParseError{Field: "stock", Value: strconv.Itoa(p.Stock), Err: ErrInvalidStock}
	}
	return nil
}

// IsLowStock indica se o estoque está abaixo do limite configurado
func (p Product) IsLowStock(threshold int) bool {
	return p.Stock < threshold
}

// rawProduct aceita preço/estoque tanto como número quanto como texto
type rawProduct struct {
	Code     json.RawMessage `json:"code"`
	Name     string          `json:"name"`
	Price    json.RawMessage `json:"price"`
	Stock    json.RawMessage `json:"stock"`
	Category string          `json:"category"`
}

// DecodeList decodifica a lista persistida de produtos, validando cada registro
func DecodeList(data []byte) ([]Product, error) {
	var raws []rawProduct
	if err := json.Unmarshal(data, &raws); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRecord, err)
	}

	products := make([]Product, 0, len(raws))
	for i, r := range raws {
		p := Product{
			Code:     scalarText(r.Code),
			Name:     strings.TrimSpace(r.Name),
			Category: r.Category,
		}

		price, err := parsePrice(scalarText(r.Price))
		if err != nil {
			return nil, fmt.Errorf("produto %d: %w", i, &ParseError{Field: "price", Value: string(r.Price), Err: err})
		}
		p.Price = price

		stock, err := parseStock(scalarText(r.Stock))
		if err != nil {
			return nil, fmt.Errorf("produto %d: %w", i, &ParseError{Field: "stock", Value: string(r.Stock), Err: err})
		}
		p.Stock = stock

		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("produto %d: %w", i, err)
		}
		products = append(products, p)
	}
	return products, nil
}

// EncodeList serializa a lista completa de produtos
func EncodeList(products []Product) ([]byte, error) {
	if products == nil {
		products = []Product{}
	}
	return json.Marshal(products)
}

// IndexOf retorna a posição do produto com o código informado, ou -1
func IndexOf(products []Product, code string) int {
	for i, p := range products {
		if p.Code == code {
			return i
		}
	}
	return -1
}

// scalarText converte um valor JSON escalar (número, texto ou null) em texto
func scalarText(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			return strings.TrimSpace(s)
		}
	}
	return string(raw)
}

func parsePrice(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, ErrInvalidPrice
	}
	return v, nil
}

func parseStock(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < 0 || v != math.Trunc(v) || v > math.MaxInt32 {
		return 0, ErrInvalidStock
	}
	return int(v), nil
}
