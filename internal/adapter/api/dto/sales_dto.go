package dto

import (
	"github.com/hugohenrick/warung-digital/internal/domain/sale"
)

// SaleListResponse representa a lista paginada de vendas
type SaleListResponse struct {
	Data       []sale.Record `json:"data"`
	TotalCount int           `json:"total_count"`
	Page       int           `json:"page"`
	PageSize   int           `json:"page_size"`
	TotalPages int           `json:"total_pages"`
}

// ToSaleListResponse recorta a página pedida do histórico
func ToSaleListResponse(log sale.Log, p Pagination) SaleListResponse {
	start, end := p.Bounds(len(log))
	data := make([]sale.Record, end-start)
	copy(data, log[start:end])

	return SaleListResponse{
		Data:       data,
		TotalCount: len(log),
		Page:       p.Page,
		PageSize:   p.PageSize,
		TotalPages: calculateTotalPages(len(log), p.PageSize),
	}
}
