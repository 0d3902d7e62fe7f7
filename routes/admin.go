package routes

import (
	"github.com/gin-gonic/gin"

	adminController "github.com/Jatomit/UNLIMITED-TELECOM/controllers/admin"
	cartControllers "github.com/Jatomit/UNLIMITED-TELECOM/controllers/cart"
	catalogcontroller "github.com/Jatomit/UNLIMITED-TELECOM/controllers/catalog"
	orderControllers "github.com/Jatomit/UNLIMITED-TELECOM/controllers/order"
	"github.com/Jatomit/UNLIMITED-TELECOM/middleware"
)

// SetupAdminRoutes registers all "/admin/*" endpoints. Requires API-Key middleware.
func SetupAdminRoutes(r *gin.Engine, d Deps) {
	db := d.DB
	adminGroup := r.Group("/admin")
	adminGroup.Use(middleware.ValidateAPIKey(d.Config.AdminAPIKey))
	{
		// ─────────── Users & Wallets ───────────
		users := adminGroup.Group("/users")
		{
			users.GET("", adminController.ListUsers(db))
			users.GET("/:id", adminController.GetUser(db))
			users.POST("/verify", adminController.VerifyUsers(db))
			users.POST("/unverify", adminController.UnverifyUsers(db))
			users.GET("/:id/fund-wallet", adminController.FundWalletForm(db))
			users.POST("/:id/fund-wallet", adminController.FundWalletHandler(db, d.Config.WalletMaxFunding))
		}

		// ─────────── Product Management ───────────
		productAdmin := adminGroup.Group("/products")
		{
			productAdmin.POST("", catalogcontroller.CreateProduct(db))
			productAdmin.PUT("/:id", catalogcontroller.UpdateProduct(db))
			productAdmin.GET("", catalogcontroller.GetProducts(db))
			productAdmin.DELETE("/:id", catalogcontroller.DeleteProduct(db))
			productAdmin.POST("/:id/image", catalogcontroller.UploadProductImage(db, d.Config.UploadDir, d.Config.PublicBaseURL))
			productAdmin.POST("/import-excel", catalogcontroller.ImportProductsFromExcel(db))
			productAdmin.GET("/export-excel", catalogcontroller.ExportProductsToExcel(db))
		}

		// ─────────── Category Management ───────────
		categoryAdmin := adminGroup.Group("/categories")
		{
			categoryAdmin.POST("", catalogcontroller.CreateCategory(db))
			categoryAdmin.PUT("/:id", catalogcontroller.UpdateCategory(db))
			categoryAdmin.GET("", catalogcontroller.GetAllCategories(db))
			categoryAdmin.DELETE("/:id", catalogcontroller.DeleteCategory(db))
		}

		// ─────────── Services ───────────
		providers := adminGroup.Group("/providers")
		{
			providers.GET("", adminController.ListProviders(db))
			providers.POST("", adminController.CreateProvider(db))
			providers.POST("/activate", adminController.ActivateProviders(db))
			providers.POST("/deactivate", adminController.DeactivateProviders(db))
		}
		plans := adminGroup.Group("/plans")
		{
			plans.GET("", adminController.ListPlans(db))
			plans.POST("", adminController.CreatePlan(db))
			plans.PATCH("/:id", adminController.UpdatePlan(db))
			plans.POST("/activate", adminController.ActivatePlans(db))
			plans.POST("/deactivate", adminController.DeactivatePlans(db))
		}
		packages := adminGroup.Group("/cable-packages")
		{
			packages.GET("", adminController.ListCablePackages(db))
			packages.POST("", adminController.CreateCablePackage(db))
			packages.POST("/activate", adminController.ActivateCablePackages(db))
			packages.POST("/deactivate", adminController.DeactivateCablePackages(db))
		}

		// ─────────── Transactions ───────────
		txns := adminGroup.Group("/transactions")
		{
			txns.GET("", adminController.ListTransactions(db))
			txns.GET("/export", adminController.ExportTransactionsToExcel(db))
			txns.POST("/mark-successful", adminController.MarkTransactionsSuccessful(db))
			txns.POST("/mark-failed", adminController.MarkTransactionsFailed(db))
		}
		airtime := adminGroup.Group("/airtime")
		{
			airtime.GET("", adminController.ListAirtime(db))
			airtime.POST("/mark-successful", adminController.MarkAirtimeSuccessful(db))
			airtime.POST("/mark-failed", adminController.MarkAirtimeFailed(db))
			airtime.POST("/retry", adminController.RetryAirtime(db))
		}
		data := adminGroup.Group("/data")
		{
			data.GET("", adminController.ListData(db))
			data.POST("/mark-successful", adminController.MarkDataSuccessful(db))
			data.POST("/mark-failed", adminController.MarkDataFailed(db))
		}
		cable := adminGroup.Group("/cable")
		{
			cable.GET("", adminController.ListCable(db))
			cable.POST("/mark-successful", adminController.MarkCableSuccessful(db))
			cable.POST("/mark-failed", adminController.MarkCableFailed(db))
		}
		epins := adminGroup.Group("/epins")
		{
			epins.GET("", adminController.ListEPINs(db))
			epins.POST("/generate", adminController.GenerateEPINsHandler(db))
		}
		adminGroup.GET("/reports", adminController.Reports(db))

		// ─────────── Orders ───────────
		orders := adminGroup.Group("/orders")
		{
			orders.GET("", orderControllers.GetAllOrdersHandler(db))
			orders.GET("/ws", d.Hub.Handler)
			orders.GET("/:orderID", orderControllers.GetOrderByIDHandler(db))
		}
		cartMgmt := adminGroup.Group("/user-cart")
		{
			cartMgmt.GET("/:user_id", cartControllers.GetAdminUserCart(db))
		}
	}
}
