package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/msvetlov/shopping_api/internal/handlers"
	"github.com/msvetlov/shopping_api/internal/service/token"
)

type Deps struct {
	ProductHandler *handlers.ProductHandler
	OrderHandler   *handlers.OrderHandler
	AuthHandler    *handlers.AuthHandler
	SearchHandler  *handlers.SearchHandler
	TokenService   *token.TokenService
	ImageDir       string
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	e.Static("/images", d.ImageDir)

	api := e.Group("/api")

	users := api.Group("/users")
	users.POST("/register", d.AuthHandler.Register)
	users.POST("/login", d.AuthHandler.Login)
	users.POST("/logout", d.AuthHandler.Logout)

	product := api.Group("/product")
	product.GET("", d.ProductHandler.GetProducts)
	product.GET("/search", d.SearchHandler.Search)
	product.GET("/:id", d.ProductHandler.GetProduct)

	productAdmin := api.Group("/product", d.TokenService.RequireAdmin)
	productAdmin.POST("", d.ProductHandler.CreateProduct)
	productAdmin.PUT("", d.ProductHandler.PutProduct)
	productAdmin.DELETE("/:id", d.ProductHandler.DeleteProduct)

	orders := api.Group("/orders")
	orders.GET("", d.OrderHandler.GetOrders)
	orders.GET("/product-summary", d.OrderHandler.ProductSummary)
	orders.GET("/:id", d.OrderHandler.GetOrder)

	ordersAuth := api.Group("/orders", d.TokenService.RequireLogin)
	ordersAuth.POST("", d.OrderHandler.CreateOrder)
	ordersAuth.PUT("/:id", d.OrderHandler.UpdateOrder)
	ordersAuth.DELETE("/:id", d.OrderHandler.DeleteOrder)
}
