package routes

import (
	"github.com/gin-gonic/gin"

	cartControllers "github.com/Jatomit/UNLIMITED-TELECOM/controllers/cart"
	catalogcontroller "github.com/Jatomit/UNLIMITED-TELECOM/controllers/catalog"
)

// SetupStoreRoutes registers the public catalog and the session-or-user cart.
func SetupStoreRoutes(g *gin.RouterGroup, d Deps) {
	g.GET("/", catalogcontroller.Index(d.DB))
	g.GET("/products/:id", catalogcontroller.GetProductByID(d.DB))
	g.GET("/categories/:id", catalogcontroller.GetCategoryByID(d.DB))

	cart := g.Group("/cart")
	{
		cart.GET("/", cartControllers.CartDetail(d.DB))
		cart.POST("/add/:product_id/", cartControllers.AddToCartHandler(d.DB, d.Config.CartMaxLineQuantity))
		cart.DELETE("/items/:product_id/", cartControllers.RemoveItemHandler(d.DB))
		cart.DELETE("/", cartControllers.ClearHandler(d.DB))
	}
}
