package checkoutControllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Jatomit/UNLIMITED-TELECOM/middleware"
	"github.com/Jatomit/UNLIMITED-TELECOM/models"
	"github.com/Jatomit/UNLIMITED-TELECOM/paystack"
)

// POST /payment/webhook
// Runs behind middleware.PaystackSignature. Answers 2xx for anything the gateway
// should not retry and 5xx when a retry may succeed.
func Webhook(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, _ := c.Get(middleware.RawBodyKey)
		body, _ := raw.([]byte)

		ev, err := paystack.ParseEvent(body)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid event body"})
			return
		}
		if ev.Event != paystack.EventChargeSuccess {
			c.JSON(http.StatusOK, gin.H{"message": "ignored", "event": ev.Event})
			return
		}

		reference := ev.Data.Reference
		var session models.CheckoutSession
		if err := svc.DB.Where("reference = ?", reference).First(&session).Error; err != nil {
			zap.L().Warn("webhook for unknown reference", zap.String("reference", reference))
			c.JSON(http.StatusOK, gin.H{"message": "unknown reference"})
			return
		}

		res, err := svc.Verify(c.Request.Context(), session.UserID, reference)
		switch {
		case err == nil:
			c.JSON(http.StatusOK, gin.H{"message": "processed", "order_id": res.Order.ID, "already_processed": res.AlreadyProcessed})
		case errors.Is(err, paystack.ErrUnavailable):
			zap.L().Error("webhook verify unavailable", zap.String("reference", reference), zap.Error(err))
			c.JSON(http.StatusBadGateway, gin.H{"error": "gateway unavailable"})
		case errors.Is(err, ErrPaymentNotSuccessful), errors.Is(err, ErrEmptyCart), errors.Is(err, ErrAmountMismatch):
			zap.L().Warn("webhook not finalized", zap.String("reference", reference), zap.Error(err))
			c.JSON(http.StatusOK, gin.H{"message": err.Error()})
		default:
			zap.L().Error("webhook finalize", zap.String("reference", reference), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to process event"})
		}
	}
}
