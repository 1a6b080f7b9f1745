package router

import (
	"github.com/gin-gonic/gin"
	"github.com/mkim-dev/storefront-backend/config"
	"github.com/mkim-dev/storefront-backend/internal/app/controller"
	"github.com/mkim-dev/storefront-backend/internal/middleware"
)

type Router struct {
	productController *controller.ProductController
	cartController    *controller.CartController
	config            *config.Config
}

func NewRouter(
	productController *controller.ProductController,
	cartController *controller.CartController,
	cfg *config.Config,
) *Router {
	return &Router{
		productController: productController,
		cartController:    cartController,
		config:            cfg,
	}
}

func (r *Router) Setup() *gin.Engine {
	gin.SetMode(r.config.Server.GinMode)

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.LoggingMiddleware())
	router.Use(corsMiddleware(r.config.CORS.AllowedOrigins))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"message": "Storefront API is running",
		})
	})

	v1 := router.Group("/api/v1")
	{
		products := v1.Group("/products")
		{
			products.GET("", r.productController.ListProducts)
			products.GET("/search", r.productController.SearchProducts)
			products.GET("/categories", r.productController.ListCategories)
			products.GET("/category/:category", r.productController.ListByCategory)
			products.GET("/:id", r.productController.GetProduct)
		}

		carts := v1.Group("/carts")
		{
			carts.POST("", r.cartController.CreateCart)
			carts.GET("/:id", r.cartController.GetCart)
			carts.DELETE("/:id", r.cartController.ClearCart)
			carts.POST("/:id/items", r.cartController.AddItem)
			carts.GET("/:id/items/:productId", r.cartController.GetItem)
			carts.PUT("/:id/items/:productId", r.cartController.UpdateItem)
			carts.DELETE("/:id/items/:productId", r.cartController.RemoveItem)
		}
	}

	return router
}

func corsMiddleware(allowedOrigins []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")

		allowed := false
		for _, allowedOrigin := range allowedOrigins {
			if origin == allowedOrigin || allowedOrigin == "*" {
				allowed = true
				break
			}
		}

		if allowed {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		}

		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With, X-Request-ID")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
