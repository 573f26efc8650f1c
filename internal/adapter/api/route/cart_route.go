package route

import (
	"github.com/gin-gonic/gin"
	"github.com/hugohenrick/warung-digital/internal/adapter/api/controller"
	"github.com/hugohenrick/warung-digital/pkg/auth"
)

// SetupCartRoutes configura as rotas do carrinho e do fechamento de venda.
// O carrinho é sempre o da sessão do usuário autenticado.
func SetupCartRoutes(router *gin.RouterGroup, cartController *controller.CartController, checkoutController *controller.CheckoutController, jwtService *auth.JWTService) {
	cartRouter := router.Group("/cart")
	cartRouter.Use(auth.JWTAuthMiddleware(jwtService))
	{
		cartRouter.GET("", cartController.Get)
		cartRouter.DELETE("", cartController.Clear)
		cartRouter.POST("/items", cartController.AddItem)
		cartRouter.PATCH("/items/:code", cartController.UpdateItem)
		cartRouter.DELETE("/items/:code", cartController.RemoveItem)
	}

	router.POST("/checkout", auth.JWTAuthMiddleware(jwtService), checkoutController.Checkout)
}
