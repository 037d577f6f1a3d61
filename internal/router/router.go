package router

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"shopee_erp_v1_202608/internal/controller"
	"shopee_erp_v1_202608/internal/middleware"
	"shopee_erp_v1_202608/internal/model"

	_ "shopee_erp_v1_202608/docs"
)

// Controllers 控制器集合
type Controllers struct {
	Auth        *controller.AuthController
	Product     *controller.ProductController
	Integration *controller.IntegrationController
	Export      *controller.ExportController
}

// SetupRouter 创建 gin 引擎并注册所有路由
func SetupRouter(ctls *Controllers) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	// Swagger 文档路由
	// 访问 http://localhost:8080/swagger/index.html 即可查看
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := r.Group("/api/v1")
	{
		// auth 鉴权组
		auth := api.Group("/auth")
		{
			auth.POST("/login", ctls.Auth.Login)
			auth.POST("/refresh", ctls.Auth.Refresh)
			auth.GET("/profile", middleware.JWTAuth(), ctls.Auth.Profile)
			// 只有管理员能开账号
			auth.POST("/register",
				middleware.JWTAuth(),
				middleware.RequireRole(string(model.UserRoleAdmin)),
				ctls.Auth.Register)
		}

		// integrations 市场集成
		integrations := api.Group("/integrations/shopee")
		{
			// 回调来自 Shopee，不带我们的 JWT
			integrations.GET("/callback", ctls.Integration.Callback)

			authed := integrations.Group("", middleware.JWTAuth(), middleware.AuditContext())
			{
				authed.GET("/auth", ctls.Integration.AuthURL)
				authed.GET("/status", ctls.Integration.Status)
				authed.POST("/refresh", ctls.Integration.Refresh)
				authed.POST("/disconnect", ctls.Integration.Disconnect)
			}
		}

		// 下面的路由都要登录，写操作带审计上下文
		authed := api.Group("", middleware.JWTAuth(), middleware.AuditContext())

		// products 商品管理
		products := authed.Group("/products")
		{
			products.GET("", ctls.Product.List)
			products.POST("", ctls.Product.Create)
			products.GET("/:id", ctls.Product.Get)
			products.PUT("/:id", ctls.Product.Update)
			products.DELETE("/:id", ctls.Product.Delete)

			products.POST("/:id/media", ctls.Product.UploadMedia)
			products.DELETE("/:id/media/:media_id", ctls.Product.DeleteMedia)
			products.PUT("/:id/media/reorder", ctls.Product.ReorderMedia)

			products.GET("/:id/links", ctls.Export.Links)
		}

		// export 市场导出
		export := authed.Group("/export")
		{
			export.GET("/marketplaces", ctls.Export.Marketplaces)
			export.POST("/validate", ctls.Export.Validate)
			export.POST("", ctls.Export.Export)
		}
	}

	return r
}
