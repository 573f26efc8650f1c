package route

import (
	"github.com/gin-gonic/gin"
	"github.com/hugohenrick/warung-digital/internal/adapter/api/controller"
	"github.com/hugohenrick/warung-digital/pkg/auth"
)

// SetupEventsRoutes configura o stream SSE. EventSource não envia cabeçalhos,
// por isso o middleware também aceita ?access_token=.
func SetupEventsRoutes(router *gin.RouterGroup, eventsController *controller.EventsController, jwtService *auth.JWTService) {
	router.GET("/events", auth.JWTAuthMiddleware(jwtService), eventsController.Stream)
}
