package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/hugohenrick/warung-digital/internal/adapter/api/dto"
	"github.com/hugohenrick/warung-digital/internal/domain/cart"
	"github.com/hugohenrick/warung-digital/internal/domain/sale"
	"github.com/hugohenrick/warung-digital/internal/service/checkout"
	"github.com/hugohenrick/warung-digital/pkg/auth"
	"github.com/hugohenrick/warung-digital/pkg/logger"
)

// CheckoutController gerencia o fechamento de vendas
type CheckoutController struct {
	checkout *checkout.Service
	logger   logger.Logger
}

// NewCheckoutController cria uma nova instância de CheckoutController
func NewCheckoutController(checkout *checkout.Service, logger logger.Logger) *CheckoutController {
	return &CheckoutController{
		checkout: checkout,
		logger:   logger,
	}
}

// Checkout fecha o carrinho da sessão
// @Summary Fechar venda
// @Description Baixa o estoque, registra a venda e esvazia o carrinho numa única operação. Carrinho vazio devolve 204.
// @Tags checkout
// @Accept json
// @Produce json
// @Security Bearer
// @Param payment body dto.CheckoutRequest true "Dados de pagamento"
// @Success 201 {object} checkout.Receipt
// @Success 204
// @Failure 400 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Failure 422 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /checkout [post]
func (c *CheckoutController) Checkout(ctx *gin.Context) {
	var req dto.CheckoutRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(http.StatusBadRequest, "dados inválidos", err.Error()))
		return
	}

	method, err := sale.ParseMethod(req.Method)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(http.StatusBadRequest, "forma de pagamento inválida", err.Error()))
		return
	}

	current := auth.GetCurrentUser(ctx)
	receipt, err := c.checkout.Checkout(ctx, current.ID, checkout.Request{
		Method:      method,
		Tendered:    req.Tendered,
		CashierID:   current.ID,
		CashierName: current.Name,
	})
	if err != nil {
		var short *checkout.InsufficientStockError
		switch {
		case errors.Is(err, checkout.ErrInsufficientCash):
			ctx.JSON(http.StatusUnprocessableEntity, dto.NewErrorResponse(http.StatusUnprocessableEntity, "valor recebido insuficiente", err.Error()))
		case errors.Is(err, checkout.ErrMethodDisabled):
			ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(http.StatusBadRequest, "forma de pagamento desabilitada", err.Error()))
		case errors.As(err, &short):
			ctx.JSON(http.StatusConflict, dto.NewErrorResponse(http.StatusConflict, "estoque insuficiente", err.Error()))
		case errors.Is(err, cart.ErrInvalidLine):
			ctx.JSON(http.StatusConflict, dto.NewErrorResponse(http.StatusConflict, "carrinho inválido", err.Error()))
		default:
			internalError(ctx, c.logger, "erro ao fechar venda", err)
		}
		return
	}

	if receipt == nil {
		ctx.Status(http.StatusNoContent)
		return
	}
	ctx.JSON(http.StatusCreated, receipt)
}
