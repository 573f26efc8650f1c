package dto

import (
	"github.com/hugohenrick/warung-digital/internal/domain/cart"
)

// CartItemRequest representa a inclusão de um produto no carrinho
type CartItemRequest struct {
	Code string `json:"code" binding:"required"`
	Qty  int    `json:"qty"`
}

// CartQtyRequest representa a variação de quantidade de uma linha
type CartQtyRequest struct {
	Delta int `json:"delta" binding:"required"`
}

// CartLineResponse representa uma linha do carrinho
type CartLineResponse struct {
	Code     string  `json:"code"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Qty      int     `json:"qty"`
	Subtotal float64 `json:"subtotal"`
}

// CartResponse representa o carrinho da sessão
type CartResponse struct {
	Items      []CartLineResponse `json:"items"`
	TotalQty   int                `json:"total_qty"`
	TotalPrice float64            `json:"total_price"`
}

// ToCartResponse converte as linhas do domínio para DTO de resposta
func ToCartResponse(lines cart.Lines) CartResponse {
	items := make([]CartLineResponse, len(lines))
	for i, l := range lines {
		items[i] = CartLineResponse{
			Code:     l.Code,
			Name:     l.Name,
			Price:    l.Price,
			Qty:      l.Qty,
			Subtotal: float64(l.Qty) * l.Price,
		}
	}
	return CartResponse{
		Items:      items,
		TotalQty:   lines.TotalQty(),
		TotalPrice: lines.TotalPrice(),
	}
}
