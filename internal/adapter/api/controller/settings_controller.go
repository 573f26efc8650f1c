package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/hugohenrick/warung-digital/internal/adapter/api/dto"
	domain "github.com/hugohenrick/warung-digital/internal/domain/settings"
	"github.com/hugohenrick/warung-digital/internal/service/settings"
	"github.com/hugohenrick/warung-digital/pkg/logger"
)

// SettingsController gerencia as configurações da loja
type SettingsController struct {
	settings *settings.Manager
	logger   logger.Logger
}

// NewSettingsController cria uma nova instância de SettingsController
func NewSettingsController(settings *settings.Manager, logger logger.Logger) *SettingsController {
	return &SettingsController{
		settings: settings,
		logger:   logger,
	}
}

// Get retorna as configurações
// @Summary Ver configurações
// @Description Retorna o documento de configurações já mesclado com os padrões
// @Tags settings
// @Produce json
// @Security Bearer
// @Success 200 {object} settings.Settings
// @Router /settings [get]
func (c *SettingsController) Get(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, c.settings.Get())
}

// UpdateField altera um campo das configurações
// @Summary Alterar configuração
// @Description Grava section.field com o valor informado
// @Tags settings
// @Accept json
// @Produce json
// @Security Bearer
// @Param section path string true "Seção (general, payment, cashier, stock, receipt)"
// @Param field path string true "Campo"
// @Param value body dto.SettingsFieldRequest true "Novo valor"
// @Success 200 {object} settings.Settings
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /settings/{section}/{field} [patch]
func (c *SettingsController) UpdateField(ctx *gin.Context) {
	var req dto.SettingsFieldRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(http.StatusBadRequest, "dados inválidos", err.Error()))
		return
	}

	s, err := c.settings.UpdateField(ctx, ctx.Param("section"), ctx.Param("field"), req.Value)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrUnknownSection), errors.Is(err, domain.ErrUnknownField):
			ctx.JSON(http.StatusNotFound, dto.NewErrorResponse(http.StatusNotFound, "configuração desconhecida", err.Error()))
		case errors.Is(err, domain.ErrInvalidValue):
			ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(http.StatusBadRequest, "valor inválido", err.Error()))
		default:
			internalError(ctx, c.logger, "erro ao salvar configuração", err)
		}
		return
	}
	ctx.JSON(http.StatusOK, s)
}

// Reset volta as configurações aos padrões
// @Summary Redefinir configurações
// @Description Volta todas as configurações aos padrões; exige confirm=true
// @Tags settings
// @Produce json
// @Security Bearer
// @Param confirm query bool false "Confirmação"
// @Success 200 {object} dto.ConfirmationResponse
// @Failure 403 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /settings/reset [post]
func (c *SettingsController) Reset(ctx *gin.Context) {
	rc := &recordingConfirmer{inner: queryConfirmer(ctx)}
	ok, err := c.settings.Reset(ctx, rc)
	if err != nil {
		internalError(ctx, c.logger, "erro ao redefinir configurações", err)
		return
	}
	confirmationResponse(ctx, ok, rc)
}
