package route

import (
	"github.com/gin-gonic/gin"
	"github.com/hugohenrick/warung-digital/internal/adapter/api/controller"
	"github.com/hugohenrick/warung-digital/pkg/auth"
)

// SetupAuthRoutes configura as rotas para autenticação
func SetupAuthRoutes(router *gin.RouterGroup, authController *controller.AuthController, jwtService *auth.JWTService) {
	authRouter := router.Group("/auth")
	{
		// Cria o dono na primeira execução; depois disso devolve 409
		authRouter.POST("/register", authController.Register)

		authRouter.POST("/login", authController.Login)

		// Rota para renovar token (não requer autenticação pois usa o próprio token)
		authRouter.POST("/refresh-token", authController.RefreshToken)

		authRouter.POST("/logout", auth.JWTAuthMiddleware(jwtService), authController.Logout)
		authRouter.GET("/me", auth.JWTAuthMiddleware(jwtService), authController.Me)
	}
}
