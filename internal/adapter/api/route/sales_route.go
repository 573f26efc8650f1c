package route

import (
	"github.com/gin-gonic/gin"
	"github.com/hugohenrick/warung-digital/internal/adapter/api/controller"
	"github.com/hugohenrick/warung-digital/internal/domain/user"
	"github.com/hugohenrick/warung-digital/pkg/auth"
)

// SetupSalesRoutes configura as rotas do histórico de vendas e dos relatórios
func SetupSalesRoutes(router *gin.RouterGroup, salesController *controller.SalesController, reportController *controller.ReportController, jwtService *auth.JWTService) {
	owner := auth.RoleAuthMiddleware(string(user.RoleOwner))

	salesRouter := router.Group("/sales")
	salesRouter.Use(auth.JWTAuthMiddleware(jwtService))
	{
		salesRouter.GET("", salesController.List)
		salesRouter.GET("/:id", salesController.Get)
		salesRouter.DELETE("", owner, salesController.Clear)
	}

	reportRouter := router.Group("/reports")
	reportRouter.Use(auth.JWTAuthMiddleware(jwtService))
	{
		reportRouter.GET("/dashboard", reportController.Dashboard)
		reportRouter.GET("/summary", owner, reportController.Summary)
	}
}
