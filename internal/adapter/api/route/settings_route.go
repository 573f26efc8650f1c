package route

import (
	"github.com/gin-gonic/gin"
	"github.com/hugohenrick/warung-digital/internal/adapter/api/controller"
	"github.com/hugohenrick/warung-digital/internal/domain/user"
	"github.com/hugohenrick/warung-digital/pkg/auth"
)

// SetupSettingsRoutes configura as rotas de configuração da loja
func SetupSettingsRoutes(router *gin.RouterGroup, settingsController *controller.SettingsController, jwtService *auth.JWTService) {
	settingsRouter := router.Group("/settings")
	settingsRouter.Use(auth.JWTAuthMiddleware(jwtService))
	{
		settingsRouter.GET("", settingsController.Get)

		// Alterações ficam com o dono
		settingsRouter.PATCH("/:section/:field", auth.RoleAuthMiddleware(string(user.RoleOwner)), settingsController.UpdateField)
		settingsRouter.POST("/reset", auth.RoleAuthMiddleware(string(user.RoleOwner)), settingsController.Reset)
	}
}
