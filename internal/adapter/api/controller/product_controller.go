package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/hugohenrick/warung-digital/internal/adapter/api/dto"
	"github.com/hugohenrick/warung-digital/internal/domain/product"
	"github.com/hugohenrick/warung-digital/internal/service/catalog"
	"github.com/hugohenrick/warung-digital/pkg/logger"
)

// ThresholdSource fornece o limite de estoque baixo vigente
type ThresholdSource interface {
	LowStockThreshold() int
}

// ProductController gerencia as requisições relacionadas a produtos
type ProductController struct {
	catalog   *catalog.Manager
	threshold ThresholdSource
	logger    logger.Logger
}

// NewProductController cria uma nova instância de ProductController
func NewProductController(catalog *catalog.Manager, threshold ThresholdSource, logger logger.Logger) *ProductController {
	return &ProductController{
		catalog:   catalog,
		threshold: threshold,
		logger:    logger,
	}
}

// Create cadastra um novo produto
// @Summary Cadastrar produto
// @Description Cadastra um novo produto; sem código, um código PRD- é gerado
// @Tags products
// @Accept json
// @Produce json
// @Security Bearer
// @Param product body dto.ProductRequest true "Dados do produto"
// @Success 201 {object} dto.ProductResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /products [post]
func (c *ProductController) Create(ctx *gin.Context) {
	var req dto.ProductRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(http.StatusBadRequest, "dados inválidos", err.Error()))
		return
	}

	p, err := c.catalog.AddOrUpdate(ctx, req.ToForm(), nil)
	if err != nil {
		c.handleError(ctx, "erro ao salvar produto", err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.ToProductResponse(p, c.threshold.LowStockThreshold()))
}

// Get retorna um produto pelo código
// @Summary Buscar produto
// @Description Retorna os dados de um produto pelo código
// @Tags products
// @Produce json
// @Security Bearer
// @Param code path string true "Código do produto"
// @Success 200 {object} dto.ProductResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /products/{code} [get]
func (c *ProductController) Get(ctx *gin.Context) {
	p, ok := c.catalog.Find(ctx.Param("code"))
	if !ok {
		ctx.JSON(http.StatusNotFound, dto.NewErrorResponse(http.StatusNotFound, "produto não encontrado", ctx.Param("code")))
		return
	}
	ctx.JSON(http.StatusOK, dto.ToProductResponse(p, c.threshold.LowStockThreshold()))
}

// List lista os produtos do catálogo
// @Summary Listar produtos
// @Description Lista todos os produtos, ordenados por nome
// @Tags products
// @Produce json
// @Security Bearer
// @Success 200 {object} dto.ProductListResponse
// @Router /products [get]
func (c *ProductController) List(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, dto.ToProductListResponse(c.catalog.List(), c.threshold.LowStockThreshold()))
}

// LowStock lista os produtos com estoque baixo
// @Summary Produtos com estoque baixo
// @Description Lista os produtos com estoque abaixo do limite configurado
// @Tags products
// @Produce json
// @Security Bearer
// @Success 200 {object} dto.ProductListResponse
// @Router /products/low-stock [get]
func (c *ProductController) LowStock(ctx *gin.Context) {
	threshold := c.threshold.LowStockThreshold()
	ctx.JSON(http.StatusOK, dto.ToProductListResponse(c.catalog.LowStock(threshold), threshold))
}

// Update substitui os dados de um produto
// @Summary Atualizar produto
// @Description Substitui o registro do produto; o código pode ser trocado por um código livre
// @Tags products
// @Accept json
// @Produce json
// @Security Bearer
// @Param code path string true "Código do produto"
// @Param product body dto.ProductRequest true "Dados do produto"
// @Success 200 {object} dto.ProductResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /products/{code} [put]
func (c *ProductController) Update(ctx *gin.Context) {
	var req dto.ProductRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(http.StatusBadRequest, "dados inválidos", err.Error()))
		return
	}

	current, ok := c.catalog.Find(ctx.Param("code"))
	if !ok {
		ctx.JSON(http.StatusNotFound, dto.NewErrorResponse(http.StatusNotFound, "produto não encontrado", ctx.Param("code")))
		return
	}

	p, err := c.catalog.AddOrUpdate(ctx, req.ToForm(), &current)
	if err != nil {
		c.handleError(ctx, "erro ao atualizar produto", err)
		return
	}

	ctx.JSON(http.StatusOK, dto.ToProductResponse(p, c.threshold.LowStockThreshold()))
}

// Delete remove um produto
// @Summary Remover produto
// @Description Remove um produto; exige confirm=true
// @Tags products
// @Produce json
// @Security Bearer
// @Param code path string true "Código do produto"
// @Param confirm query bool false "Confirmação da remoção"
// @Success 200 {object} dto.ConfirmationResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /products/{code} [delete]
func (c *ProductController) Delete(ctx *gin.Context) {
	rc := &recordingConfirmer{inner: queryConfirmer(ctx)}
	ok, err := c.catalog.Delete(ctx, ctx.Param("code"), rc)
	if err != nil {
		c.handleError(ctx, "erro ao remover produto", err)
		return
	}
	confirmationResponse(ctx, ok, rc)
}

// BulkDelete remove os produtos selecionados
// @Summary Remover produtos em lote
// @Description Remove todos os códigos informados numa única gravação; exige confirm=true
// @Tags products
// @Accept json
// @Produce json
// @Security Bearer
// @Param codes body dto.BulkDeleteRequest true "Códigos selecionados"
// @Param confirm query bool false "Confirmação da remoção"
// @Success 200 {object} dto.ConfirmationResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /products/bulk-delete [post]
func (c *ProductController) BulkDelete(ctx *gin.Context) {
	var req dto.BulkDeleteRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(http.StatusBadRequest, "dados inválidos", err.Error()))
		return
	}

	rc := &recordingConfirmer{inner: queryConfirmer(ctx)}
	ok, err := c.catalog.BulkDelete(ctx, req.Codes, rc)
	if err != nil {
		c.handleError(ctx, "erro ao remover produtos", err)
		return
	}
	confirmationResponse(ctx, ok, rc)
}

func (c *ProductController) handleError(ctx *gin.Context, message string, err error) {
	var perr *product.ParseError
	var dup *catalog.DuplicateCodeError

	switch {
	case errors.As(err, &perr):
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(http.StatusBadRequest, "dados inválidos", err.Error()))
	case errors.As(err, &dup):
		ctx.JSON(http.StatusConflict, dto.NewErrorResponse(http.StatusConflict, "código já cadastrado", err.Error()))
	case errors.Is(err, catalog.ErrProductNotFound):
		ctx.JSON(http.StatusNotFound, dto.NewErrorResponse(http.StatusNotFound, "produto não encontrado", err.Error()))
	case errors.Is(err, catalog.ErrNothingSelected):
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(http.StatusBadRequest, "nenhum produto selecionado", err.Error()))
	default:
		internalError(ctx, c.logger, message, err)
	}
}
