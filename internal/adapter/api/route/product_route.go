package route

import (
	"github.com/gin-gonic/gin"
	"github.com/hugohenrick/warung-digital/internal/adapter/api/controller"
	"github.com/hugohenrick/warung-digital/pkg/auth"
)

// SetupProductRoutes configura as rotas do catálogo
func SetupProductRoutes(router *gin.RouterGroup, productController *controller.ProductController, jwtService *auth.JWTService) {
	productRouter := router.Group("/products")
	productRouter.Use(auth.JWTAuthMiddleware(jwtService))
	{
		productRouter.GET("", productController.List)
		productRouter.POST("", productController.Create)
		productRouter.GET("/low-stock", productController.LowStock)
		productRouter.POST("/bulk-delete", productController.BulkDelete)
		productRouter.GET("/:code", productController.Get)
		productRouter.PUT("/:code", productController.Update)
		productRouter.DELETE("/:code", productController.Delete)
	}
}
