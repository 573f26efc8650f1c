package route

import (
	"github.com/gin-gonic/gin"
	"github.com/hugohenrick/warung-digital/internal/adapter/api/controller"
	"github.com/hugohenrick/warung-digital/internal/domain/user"
	"github.com/hugohenrick/warung-digital/pkg/auth"
)

// SetupUserRoutes configura as rotas para o módulo de usuários
func SetupUserRoutes(router *gin.RouterGroup, userController *controller.UserController, jwtService *auth.JWTService) {
	userRouter := router.Group("/users")
	// Apenas o dono cadastra e lista operadores
	userRouter.Use(auth.JWTAuthMiddleware(jwtService))
	userRouter.Use(auth.RoleAuthMiddleware(string(user.RoleOwner)))
	{
		userRouter.POST("", userController.Create)
		userRouter.GET("", userController.List)
	}
}
