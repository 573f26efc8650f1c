package controller

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hugohenrick/warung-digital/internal/adapter/api/dto"
	"github.com/hugohenrick/warung-digital/internal/domain/user"
	"github.com/hugohenrick/warung-digital/internal/service/sales"
	"github.com/hugohenrick/warung-digital/pkg/auth"
	"github.com/hugohenrick/warung-digital/pkg/logger"
)

// SalesController gerencia as consultas ao histórico de vendas
type SalesController struct {
	sales  *sales.Service
	loc    *time.Location
	logger logger.Logger
}

// NewSalesController cria uma nova instância de SalesController
func NewSalesController(sales *sales.Service, loc *time.Location, logger logger.Logger) *SalesController {
	if loc == nil {
		loc = time.Local
	}
	return &SalesController{
		sales:  sales,
		loc:    loc,
		logger: logger,
	}
}

// List lista as vendas, mais recentes primeiro
// @Summary Listar vendas
// @Description Lista as vendas no intervalo [from, to); operadores de caixa veem só as próprias
// @Tags sales
// @Produce json
// @Security Bearer
// @Param from query string false "Início (RFC3339 ou AAAA-MM-DD)"
// @Param to query string false "Fim exclusivo (RFC3339 ou AAAA-MM-DD)"
// @Param cashier query string false "ID do operador de caixa"
// @Param page query int false "Página"
// @Param page_size query int false "Itens por página"
// @Success 200 {object} dto.SaleListResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /sales [get]
func (c *SalesController) List(ctx *gin.Context) {
	from, err := parseTimeQuery(ctx, "from", c.loc)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(http.StatusBadRequest, "parâmetro inválido", err.Error()))
		return
	}
	to, err := parseTimeQuery(ctx, "to", c.loc)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(http.StatusBadRequest, "parâmetro inválido", err.Error()))
		return
	}

	cashier := ctx.Query("cashier")
	if current := auth.GetCurrentUser(ctx); current.Role != string(user.RoleOwner) {
		cashier = current.ID
	}

	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(ctx.DefaultQuery("page_size", "20"))

	log, err := c.sales.Query(ctx, from, to, cashier)
	if err != nil {
		internalError(ctx, c.logger, "erro ao listar vendas", err)
		return
	}
	ctx.JSON(http.StatusOK, dto.ToSaleListResponse(log, dto.GetPagination(page, pageSize)))
}

// Get retorna uma venda pelo ID
// @Summary Buscar venda
// @Description Retorna uma venda pelo ID
// @Tags sales
// @Produce json
// @Security Bearer
// @Param id path string true "ID da venda"
// @Success 200 {object} sale.Record
// @Failure 404 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /sales/{id} [get]
func (c *SalesController) Get(ctx *gin.Context) {
	r, err := c.sales.Get(ctx, ctx.Param("id"))
	if err != nil {
		if errors.Is(err, sales.ErrSaleNotFound) {
			ctx.JSON(http.StatusNotFound, dto.NewErrorResponse(http.StatusNotFound, "venda não encontrada", ctx.Param("id")))
			return
		}
		internalError(ctx, c.logger, "erro ao buscar venda", err)
		return
	}

	current := auth.GetCurrentUser(ctx)
	if current.Role != string(user.RoleOwner) && r.CashierID != current.ID {
		ctx.JSON(http.StatusNotFound, dto.NewErrorResponse(http.StatusNotFound, "venda não encontrada", ctx.Param("id")))
		return
	}
	ctx.JSON(http.StatusOK, r)
}

// Clear apaga todo o histórico
// @Summary Apagar histórico de vendas
// @Description Apaga todas as vendas; exige confirm=true
// @Tags sales
// @Produce json
// @Security Bearer
// @Param confirm query bool false "Confirmação"
// @Success 200 {object} dto.ConfirmationResponse
// @Failure 403 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /sales [delete]
func (c *SalesController) Clear(ctx *gin.Context) {
	rc := &recordingConfirmer{inner: queryConfirmer(ctx)}
	ok, err := c.sales.Clear(ctx, rc)
	if err != nil {
		internalError(ctx, c.logger, "erro ao apagar vendas", err)
		return
	}
	confirmationResponse(ctx, ok, rc)
}
