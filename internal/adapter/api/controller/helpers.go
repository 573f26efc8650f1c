package controller

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hugohenrick/warung-digital/internal/adapter/api/dto"
	"github.com/hugohenrick/warung-digital/pkg/confirm"
	"github.com/hugohenrick/warung-digital/pkg/logger"
)

// queryConfirmer traduz ?confirm=true na resposta do diálogo de confirmação
func queryConfirmer(ctx *gin.Context) confirm.Confirmer {
	ok, _ := strconv.ParseBool(ctx.Query("confirm"))
	return confirm.Static(ok)
}

// recordingConfirmer responde como inner e guarda o último prompt recebido
type recordingConfirmer struct {
	inner  confirm.Confirmer
	prompt confirm.Prompt
}

func (r *recordingConfirmer) Confirm(ctx context.Context, p confirm.Prompt) bool {
	r.prompt = p
	return confirm.Approved(ctx, r.inner, p)
}

func confirmationResponse(ctx *gin.Context, proceeded bool, rc *recordingConfirmer) {
	ctx.JSON(http.StatusOK, dto.ConfirmationResponse{
		Proceeded: proceeded,
		Action:    rc.prompt.Action,
		Message:   rc.prompt.Message,
	})
}

func internalError(ctx *gin.Context, log logger.Logger, message string, err error) {
	log.Error(message, "path", ctx.FullPath(), "error", err)
	ctx.JSON(http.StatusInternalServerError, dto.NewErrorResponse(http.StatusInternalServerError, message, err.Error()))
}

// parseTimeQuery aceita RFC3339 ou data simples (AAAA-MM-DD, no fuso loc)
func parseTimeQuery(ctx *gin.Context, name string, loc *time.Location) (time.Time, error) {
	v := ctx.Query(name)
	if v == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t, nil
	}
	t, err := time.ParseInLocation("2006-01-02", v, loc)
	if err != nil {
		return time.Time{}, errors.New("use RFC3339 ou AAAA-MM-DD em " + name)
	}
	return t, nil
}
