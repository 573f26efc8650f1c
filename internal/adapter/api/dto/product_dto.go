package dto

import (
	"github.com/hugohenrick/warung-digital/internal/domain/product"
)

// ProductRequest representa os dados do formulário de produto.
// Preço e estoque podem vir como número ou texto.
type ProductRequest struct {
	Code     string     `json:"code"`
	Name     string     `json:"name" binding:"required"`
	Price    NumberText `json:"price" swaggertype:"string" example:"3500"`
	Stock    NumberText `json:"stock" swaggertype:"string" example:"12"`
	Category string     `json:"category"`
}

// ToForm converte o DTO para o formulário do domínio
func (r ProductRequest) ToForm() product.Form {
	return product.Form{
		Code:     r.Code,
		Name:     r.Name,
		Price:    string(r.Price),
		Stock:    string(r.Stock),
		Category: r.Category,
	}
}

// ProductResponse representa a resposta com dados de um produto
type ProductResponse struct {
	Code     string  `json:"code"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Stock    int     `json:"stock"`
	Category string  `json:"category"`
	LowStock bool    `json:"low_stock"`
}

// ProductListResponse representa a lista de produtos
type ProductListResponse struct {
	Data              []ProductResponse `json:"data"`
	TotalCount        int               `json:"total_count"`
	LowStockThreshold int               `json:"low_stock_threshold"`
}

// BulkDeleteRequest representa os códigos selecionados para remoção
type BulkDeleteRequest struct {
	Codes []string `json:"codes" binding:"required,min=1"`
}

// ToProductResponse converte um produto do domínio para DTO de resposta
func ToProductResponse(p product.Product, threshold int) ProductResponse {
	return ProductResponse{
		Code:     p.Code,
		Name:     p.Name,
		Price:    p.Price,
		Stock:    p.Stock,
		Category: p.Category,
		LowStock: p.IsLowStock(threshold),
	}
}

// ToProductListResponse converte uma lista de produtos do domínio
func ToProductListResponse(products []product.Product, threshold int) ProductListResponse {
	data := make([]ProductResponse, len(products))
	for i, p := range products {
		data[i] = ToProductResponse(p, threshold)
	}
	return ProductListResponse{
		Data:              data,
		TotalCount:        len(products),
		LowStockThreshold: threshold,
	}
}
