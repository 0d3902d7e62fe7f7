package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/Jatomit/UNLIMITED-TELECOM/config"
	checkoutControllers "github.com/Jatomit/UNLIMITED-TELECOM/controllers/checkout"
	"github.com/Jatomit/UNLIMITED-TELECOM/middleware"
	"github.com/Jatomit/UNLIMITED-TELECOM/notify"
)

// Deps is everything the route groups need from main.
type Deps struct {
	DB       *gorm.DB
	Config   *config.Config
	Checkout *checkoutControllers.Service
	Hub      *notify.Hub
}

// SetupRoutes is the single entry-point that wires up the storefront, account,
// payment and admin route groups.
func SetupRoutes(r *gin.Engine, d Deps) {
	storefront := r.Group("/", middleware.OptionalAuth(d.Config.JWTSecret))

	// Catalog and cart work for anonymous visitors too
	SetupStoreRoutes(storefront, d)

	SetupAuthRoutes(storefront, d)

	// Checkout and orders (JWT-protected)
	SetupOrderRoutes(storefront, d)

	// Admin routes (API-Key-protected)
	SetupAdminRoutes(r, d)
}
