package routes

import (
	"github.com/gin-gonic/gin"

	checkoutControllers "github.com/Jatomit/UNLIMITED-TELECOM/controllers/checkout"
	orderControllers "github.com/Jatomit/UNLIMITED-TELECOM/controllers/order"
	"github.com/Jatomit/UNLIMITED-TELECOM/middleware"
)

// SetupOrderRoutes registers checkout, the gateway callbacks and the buyer's orders.
func SetupOrderRoutes(g *gin.RouterGroup, d Deps) {
	svc := d.Checkout

	payment := g.Group("/payment")
	{
		payment.GET("/failure/", checkoutControllers.PaymentFailure)
		payment.GET("/success_page/", checkoutControllers.SuccessPage)

		// Gateway-to-server; authenticated by signature, not by user
		payment.POST("/webhook",
			middleware.PaystackSignature(d.Config.PaystackSecretKey),
			checkoutControllers.Webhook(svc),
		)
	}

	authed := g.Group("/", middleware.RequireAuth)
	{
		authed.GET("/checkout/", checkoutControllers.Checkout(d.DB))
		authed.GET("/initiate-payment/", checkoutControllers.InitiatePayment(svc, d.Config.PublicBaseURL))
		authed.GET("/verify-payment/", checkoutControllers.VerifyPayment(svc))
		authed.GET("/payment/success/:reference/", checkoutControllers.PaymentSuccess(svc))
		authed.GET("/orders/", orderControllers.MyOrdersHandler(d.DB))
	}
}
