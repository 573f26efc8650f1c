package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/hugohenrick/warung-digital/internal/adapter/api/dto"
	domain "github.com/hugohenrick/warung-digital/internal/domain/cart"
	cartsvc "github.com/hugohenrick/warung-digital/internal/service/cart"
	"github.com/hugohenrick/warung-digital/internal/service/catalog"
	"github.com/hugohenrick/warung-digital/pkg/auth"
	"github.com/hugohenrick/warung-digital/pkg/logger"
)

// CartController gerencia o carrinho da sessão autenticada
type CartController struct {
	carts   *cartsvc.Service
	catalog *catalog.Manager
	logger  logger.Logger
}

// NewCartController cria uma nova instância de CartController
func NewCartController(carts *cartsvc.Service, catalog *catalog.Manager, logger logger.Logger) *CartController {
	return &CartController{
		carts:   carts,
		catalog: catalog,
		logger:  logger,
	}
}

// Get retorna o carrinho da sessão
// @Summary Ver carrinho
// @Description Retorna as linhas e os totais do carrinho do usuário autenticado
// @Tags cart
// @Produce json
// @Security Bearer
// @Success 200 {object} dto.CartResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /cart [get]
func (c *CartController) Get(ctx *gin.Context) {
	cart, ok := c.open(ctx)
	if !ok {
		return
	}
	ctx.JSON(http.StatusOK, dto.ToCartResponse(cart.Lines()))
}

// AddItem inclui um produto no carrinho
// @Summary Adicionar ao carrinho
// @Description Soma qty (padrão 1) à linha do produto, respeitando o estoque
// @Tags cart
// @Accept json
// @Produce json
// @Security Bearer
// @Param item body dto.CartItemRequest true "Produto e quantidade"
// @Success 200 {object} dto.CartResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /cart/items [post]
func (c *CartController) AddItem(ctx *gin.Context) {
	var req dto.CartItemRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(http.StatusBadRequest, "dados inválidos", err.Error()))
		return
	}
	if req.Qty == 0 {
		req.Qty = 1
	}
	c.applyDelta(ctx, req.Code, req.Qty)
}

// UpdateItem aplica uma variação de quantidade a uma linha
// @Summary Alterar quantidade
// @Description Aplica delta à linha; quantidade <= 0 remove a linha
// @Tags cart
// @Accept json
// @Produce json
// @Security Bearer
// @Param code path string true "Código do produto"
// @Param delta body dto.CartQtyRequest true "Variação de quantidade"
// @Success 200 {object} dto.CartResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /cart/items/{code} [patch]
func (c *CartController) UpdateItem(ctx *gin.Context) {
	var req dto.CartQtyRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(http.StatusBadRequest, "dados inválidos", err.Error()))
		return
	}
	c.applyDelta(ctx, ctx.Param("code"), req.Delta)
}

// RemoveItem remove uma linha do carrinho
// @Summary Remover do carrinho
// @Description Remove a linha do produto, sem confirmação
// @Tags cart
// @Produce json
// @Security Bearer
// @Param code path string true "Código do produto"
// @Success 200 {object} dto.CartResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /cart/items/{code} [delete]
func (c *CartController) RemoveItem(ctx *gin.Context) {
	cart, ok := c.open(ctx)
	if !ok {
		return
	}
	if err := cart.RemoveItem(ctx, ctx.Param("code")); err != nil {
		c.handleError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.ToCartResponse(cart.Lines()))
}

// Clear esvazia o carrinho
// @Summary Esvaziar carrinho
// @Description Esvazia o carrinho; exige confirm=true
// @Tags cart
// @Produce json
// @Security Bearer
// @Param confirm query bool false "Confirmação"
// @Success 200 {object} dto.ConfirmationResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /cart [delete]
func (c *CartController) Clear(ctx *gin.Context) {
	rc := &recordingConfirmer{inner: queryConfirmer(ctx)}
	cart, ok := c.open(ctx)
	if !ok {
		return
	}

	proceeded, err := cart.ClearConfirmed(ctx, rc)
	if err != nil {
		c.handleError(ctx, err)
		return
	}
	confirmationResponse(ctx, proceeded, rc)
}

func (c *CartController) applyDelta(ctx *gin.Context, code string, delta int) {
	cart, ok := c.open(ctx)
	if !ok {
		return
	}

	item := domain.Item{Code: code}
	if p, found := c.catalog.Find(code); found {
		stock := p.Stock
		item.Name, item.Price, item.Stock = p.Name, p.Price, &stock
	} else {
		lines := cart.Lines()
		idx := lines.IndexOf(code)
		if idx < 0 || delta > 0 {
			ctx.JSON(http.StatusNotFound, dto.NewErrorResponse(http.StatusNotFound, "produto não encontrado", code))
			return
		}
		item.Name, item.Price = lines[idx].Name, lines[idx].Price
	}

	if err := cart.AddItem(ctx, item, delta); err != nil {
		c.handleError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.ToCartResponse(cart.Lines()))
}

func (c *CartController) open(ctx *gin.Context) (*cartsvc.Cart, bool) {
	cart, err := c.carts.Open(ctx, auth.GetCurrentUser(ctx).ID)
	if err != nil {
		internalError(ctx, c.logger, "erro ao abrir carrinho", err)
		return nil, false
	}
	return cart, true
}

func (c *CartController) handleError(ctx *gin.Context, err error) {
	var limit *domain.StockLimitError
	switch {
	case errors.As(err, &limit):
		ctx.JSON(http.StatusConflict, dto.NewErrorResponse(http.StatusConflict, "estoque insuficiente", err.Error()))
	case errors.Is(err, domain.ErrEmptyCode):
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(http.StatusBadRequest, "dados inválidos", err.Error()))
	default:
		internalError(ctx, c.logger, "erro ao atualizar carrinho", err)
	}
}
