package checkoutControllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	cartControllers "github.com/Jatomit/UNLIMITED-TELECOM/controllers/cart"
	"github.com/Jatomit/UNLIMITED-TELECOM/middleware"
	"github.com/Jatomit/UNLIMITED-TELECOM/models"
	"github.com/Jatomit/UNLIMITED-TELECOM/paystack"
)

const (
	idempotencyHeader = "Idempotency-Key"
	failurePath       = "/payment/failure/"
	successPagePath   = "/payment/success_page/"
)

// GET /checkout/
func Checkout(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, _ := middleware.UserID(c)
		cart, err := cartControllers.ResolveCart(db, cartControllers.Actor{UserID: &userID})
		if err != nil {
			zap.L().Error("resolve cart", zap.Uint("user_id", userID), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch cart"})
			return
		}
		items, err := cartControllers.LoadItems(db, cart.ID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch cart"})
			return
		}
		if len(items) == 0 {
			c.Redirect(http.StatusSeeOther, "/")
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"cart":         cartControllers.Summarize(cart, items),
			"initiate_url": "/initiate-payment/",
		})
	}
}

// GET /initiate-payment/
func InitiatePayment(svc *Service, publicBaseURL string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, _ := middleware.UserID(c)
		var user models.User
		if err := svc.DB.First(&user, userID).Error; err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "login required", "login_url": "/accounts/login/"})
			return
		}

		callback := callbackURL(c, publicBaseURL)
		session, reused, err := svc.StartPayment(c.Request.Context(), user, callback, strings.TrimSpace(c.GetHeader(idempotencyHeader)))
		if err != nil {
			var apiErr *paystack.APIError
			switch {
			case errors.Is(err, ErrEmptyCart):
				c.Redirect(http.StatusSeeOther, "/")
			case errors.Is(err, ErrNothingToPay), errors.Is(err, ErrMissingEmail):
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			case errors.Is(err, ErrIdempotencyKeyUsed):
				c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			case errors.As(err, &apiErr):
				zap.L().Warn("gateway refused initialization", zap.Uint("user_id", userID), zap.String("message", apiErr.Message))
				c.JSON(http.StatusBadGateway, gin.H{"error": apiErr.Message})
			case errors.Is(err, paystack.ErrUnavailable):
				zap.L().Error("gateway unavailable", zap.Uint("user_id", userID), zap.Error(err))
				c.JSON(http.StatusBadGateway, gin.H{"error": "Payment gateway is unavailable, please try again"})
			default:
				zap.L().Error("initiate payment", zap.Uint("user_id", userID), zap.Error(err))
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to initiate payment"})
			}
			return
		}

		if cartControllers.WantsJSON(c) {
			c.JSON(http.StatusOK, gin.H{
				"authorization_url": session.AuthorizationURL,
				"reference":         session.Reference,
				"amount":            session.Amount,
				"reused":            reused,
			})
			return
		}
		c.Redirect(http.StatusFound, session.AuthorizationURL)
	}
}

// GET /verify-payment/?reference=
func VerifyPayment(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, _ := middleware.UserID(c)

		reference := c.Query("reference")
		if reference == "" {
			reference = c.Query("trxref")
		}
		if reference == "" {
			ref, err := svc.LatestOpenReference(userID)
			if err != nil {
				zap.L().Error("lookup open checkout", zap.Uint("user_id", userID), zap.Error(err))
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to verify payment"})
				return
			}
			if ref == "" {
				c.Redirect(http.StatusSeeOther, failurePath)
				return
			}
			reference = ref
		}

		verify(c, svc, userID, reference)
	}
}

// GET /payment/success/:reference/
func PaymentSuccess(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, _ := middleware.UserID(c)
		verify(c, svc, userID, c.Param("reference"))
	}
}

// GET /payment/failure/
func PaymentFailure(c *gin.Context) {
	c.JSON(http.StatusPaymentRequired, gin.H{"error": ErrPaymentNotSuccessful.Error(), "cart_url": "/cart/"})
}

// GET /payment/success_page/
func SuccessPage(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Payment successful"})
}

func verify(c *gin.Context, svc *Service, userID uint, reference string) {
	res, err := svc.Verify(c.Request.Context(), userID, reference)
	if err != nil {
		switch {
		case errors.Is(err, ErrUnknownReference):
			c.JSON(http.StatusNotFound, gin.H{"error": ErrUnknownReference.Error()})
		case errors.Is(err, ErrPaymentNotSuccessful):
			c.JSON(http.StatusPaymentRequired, gin.H{"error": ErrPaymentNotSuccessful.Error(), "detail": err.Error(), "reference": reference})
		case errors.Is(err, ErrEmptyCart), errors.Is(err, ErrAmountMismatch):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "reference": reference})
		case errors.Is(err, paystack.ErrUnavailable):
			zap.L().Error("gateway unavailable", zap.String("reference", reference), zap.Error(err))
			c.JSON(http.StatusBadGateway, gin.H{"error": "Payment gateway is unavailable, please try again"})
		default:
			zap.L().Error("verify payment", zap.String("reference", reference), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to verify payment"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":           "Payment successful",
		"order":             res.Order,
		"already_processed": res.AlreadyProcessed,
		"redirect":          successPagePath,
	})
}

// callbackURL is absolute: the gateway redirects the browser there.
func callbackURL(c *gin.Context, publicBaseURL string) string {
	base := strings.TrimRight(publicBaseURL, "/")
	if base == "" {
		scheme := "http"
		if c.Request.TLS != nil {
			scheme = "https"
		}
		if proto := c.GetHeader("X-Forwarded-Proto"); proto != "" {
			scheme = proto
		}
		base = scheme + "://" + c.Request.Host
	}
	return base + "/verify-payment/"
}
