package controller

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hugohenrick/warung-digital/internal/adapter/api/dto"
	"github.com/hugohenrick/warung-digital/internal/service/report"
	"github.com/hugohenrick/warung-digital/pkg/logger"
)

// ReportController gerencia os relatórios de vendas
type ReportController struct {
	reports *report.Service
	loc     *time.Location
	now     func() time.Time
	logger  logger.Logger
}

// NewReportController cria uma nova instância de ReportController
func NewReportController(reports *report.Service, loc *time.Location, logger logger.Logger) *ReportController {
	if loc == nil {
		loc = time.Local
	}
	return &ReportController{
		reports: reports,
		loc:     loc,
		now:     time.Now,
		logger:  logger,
	}
}

// Summary resume as vendas de um período
// @Summary Resumo de vendas
// @Description Faturamento, quantidade de vendas, itens, formas de pagamento, produtos mais vendidos e totais diários. Sem from, usa os últimos 30 dias.
// @Tags reports
// @Produce json
// @Security Bearer
// @Param from query string false "Início (RFC3339 ou AAAA-MM-DD)"
// @Param to query string false "Fim exclusivo (RFC3339 ou AAAA-MM-DD)"
// @Success 200 {object} report.Summary
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /reports/summary [get]
func (c *ReportController) Summary(ctx *gin.Context) {
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
	if from.IsZero() {
		now := c.now().In(c.loc)
		today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, c.loc)
		from = today.AddDate(0, 0, -29)
	}
	if !to.IsZero() && !to.After(from) {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(http.StatusBadRequest, "parâmetro inválido", "to deve ser posterior a from"))
		return
	}

	sum, err := c.reports.Summary(ctx, from, to)
	if err != nil {
		internalError(ctx, c.logger, "erro ao montar resumo", err)
		return
	}
	ctx.JSON(http.StatusOK, sum)
}

// Dashboard retorna os números do dia
// @Summary Painel
// @Description Vendas de hoje, quantidade de produtos, estoque baixo e vendas recentes
// @Tags reports
// @Produce json
// @Security Bearer
// @Success 200 {object} report.Dashboard
// @Failure 500 {object} dto.ErrorResponse
// @Router /reports/dashboard [get]
func (c *ReportController) Dashboard(ctx *gin.Context) {
	d, err := c.reports.Dashboard(ctx, c.now())
	if err != nil {
		internalError(ctx, c.logger, "erro ao montar painel", err)
		return
	}
	ctx.JSON(http.StatusOK, d)
}
