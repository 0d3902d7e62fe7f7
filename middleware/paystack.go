package middleware

import (
	"bytes"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Jatomit/UNLIMITED-TELECOM/paystack"
)

const RawBodyKey = "raw_body"

// PaystackSignature verifies the x-paystack-signature header against the raw body.
func PaystackSignature(secretKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		body, err := io.ReadAll(io.LimitReader(c.Request.Body, 1<<20))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "failed to read body"})
			return
		}
		_ = c.Request.Body.Close()
		c.Request.Body = io.NopCloser(bytes.NewReader(body))

		if !paystack.ValidSignature(secretKey, body, c.GetHeader("x-paystack-signature")) {
			zap.L().Warn("paystack webhook signature rejected", zap.String("client_ip", c.ClientIP()))
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "invalid webhook signature"})
			return
		}

		c.Set(RawBodyKey, body)
		c.Next()
	}
}
