package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/fixitek/services-api/internal/middleware"
	"github.com/fixitek/services-api/internal/model"
)

type Handlers struct {
	Auth       *AuthHandler
	Taxonomies map[model.Taxonomy]*TaxonomyHandler
	Categories *CategoryHandler
	Options    map[model.Kind]*OptionHandler
	Cart       *CartHandler
	Orders     *OrderHandler
}

var taxonomyPaths = map[model.Taxonomy]string{
	model.TaxonomyLocations:         "/locations",
	model.TaxonomyServiceTypes:      "/service-types",
	model.TaxonomyAssemblyTypes:     "/assembly-types",
	model.TaxonomyInstallationTypes: "/installation-types",
	model.TaxonomyGazeboModels:      "/gazebo-models",
}

var optionPaths = map[model.Kind]string{
	model.KindTVMounting:        "/tv-mounting-options",
	model.KindFurnitureAssembly: "/furniture-assembly-options",
	model.KindInstallation:      "/installation-service-options",
	model.KindGazebo:            "/gazebo-service-options",
}

// Register mounts the API under v1. Catalog reads are public, catalog
// writes need an admin token, and checkout accepts guests.
func (h *Handlers) Register(v1 *gin.RouterGroup, jwtSecret string) {
	requireAuth := middleware.AuthMiddleware(jwtSecret)
	adminOnly := []gin.HandlerFunc{requireAuth, middleware.AdminOnly()}

	if h.Auth != nil {
		auth := v1.Group("/auth")
		auth.POST("/register", h.Auth.Register)
		auth.POST("/login", h.Auth.Login)
		auth.GET("/me", requireAuth, h.Auth.Me)
	}

	for t, th := range h.Taxonomies {
		g := v1.Group(taxonomyPaths[t])
		g.GET("", th.List)
		g.GET("/:id", th.Get)
		admin := g.Group("", adminOnly...)
		admin.POST("", th.Create)
		admin.PUT("/:id", th.Update)
		admin.DELETE("/:id", th.Delete)
	}

	if h.Categories != nil {
		g := v1.Group("/categories")
		g.GET("", h.Categories.List)
		g.GET("/:id", h.Categories.Get)
		g.GET("/:id/options", h.Categories.ListOptions)
		admin := g.Group("", adminOnly...)
		admin.POST("", h.Categories.Create)
		admin.PUT("/:id", h.Categories.Update)
		admin.DELETE("/:id", h.Categories.Delete)
	}

	for kind, oh := range h.Options {
		g := v1.Group(optionPaths[kind])
		g.GET("", oh.List)
		g.GET("/:id", oh.Get)
		admin := g.Group("", adminOnly...)
		admin.POST("", oh.Create)
		admin.PUT("/:id", oh.Update)
		admin.DELETE("/:id", oh.Delete)
	}

	if h.Cart != nil {
		cart := v1.Group("/cart", requireAuth)
		cart.GET("", h.Cart.GetCart)
		cart.DELETE("", h.Cart.Clear)
		cart.GET("/total", h.Cart.Total)
		cart.GET("/items", h.Cart.ListItems)
		cart.POST("/items", h.Cart.AddItem)
		cart.PUT("/items/:id", h.Cart.UpdateItem)
		cart.DELETE("/items/:id", h.Cart.DeleteItem)
	}

	if h.Orders != nil {
		orders := v1.Group("/orders")
		orders.POST("", middleware.OptionalAuth(jwtSecret), h.Orders.CreateOrder)
		orders.GET("", requireAuth, h.Orders.ListOrders)
		orders.GET("/:id", middleware.OptionalAuth(jwtSecret), h.Orders.GetOrder)
		orders.GET("/:id/items", middleware.OptionalAuth(jwtSecret), h.Orders.ListItems)
		orders.PATCH("/:id/status", append(adminOnly, h.Orders.UpdateStatus)...)
	}
}
