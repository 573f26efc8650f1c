package dto

// CheckoutRequest representa os dados de pagamento do fechamento
type CheckoutRequest struct {
	Method   string  `json:"method" binding:"required"`
	Tendered float64 `json:"tendered"`
}
