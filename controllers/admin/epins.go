package adminController

import (
	"crypto/rand"
	"errors"
	"math/big"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Jatomit/UNLIMITED-TELECOM/models"
)

const (
	pinLength   = 12
	pinAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	maxPinBatch = 500
)

var ErrPinCount = errors.New("count must be between 1 and 500")

// RandomPin returns n characters drawn uniformly from [A-Z0-9].
func RandomPin(n int) (string, error) {
	limit := big.NewInt(int64(len(pinAlphabet)))
	out := make([]byte, n)
	for i := range out {
		k, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return "", err
		}
		out[i] = pinAlphabet[k.Int64()]
	}
	return string(out), nil
}

// GenerateEPINs stores count fresh pins for the provider. Candidates that
// already exist are redrawn.
func GenerateEPINs(db *gorm.DB, providerID uint, denomination decimal.Decimal, count int) ([]models.EPIN, error) {
	if count < 1 || count > maxPinBatch {
		return nil, ErrPinCount
	}

	chosen := make(map[string]bool, count)
	for len(chosen) < count {
		var candidates []string
		for len(chosen)+len(candidates) < count {
			pin, err := RandomPin(pinLength)
			if err != nil {
				return nil, err
			}
			if !chosen[pin] {
				candidates = append(candidates, pin)
			}
		}

		var taken []string
		if err := db.Model(&models.EPIN{}).Where("pin IN ?", candidates).Pluck("pin", &taken).Error; err != nil {
			return nil, err
		}
		exists := make(map[string]bool, len(taken))
		for _, p := range taken {
			exists[p] = true
		}
		for _, p := range candidates {
			if !exists[p] {
				chosen[p] = true
			}
		}
	}

	pins := make([]models.EPIN, 0, count)
	for pin := range chosen {
		pins = append(pins, models.EPIN{ProviderID: providerID, Pin: pin, Denomination: denomination})
	}
	if err := db.CreateInBatches(&pins, 100).Error; err != nil {
		return nil, err
	}
	return pins, nil
}

// GET /admin/epins
func ListEPINs(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		query := db.Order("created_at DESC, id DESC")
		if v := c.Query("provider_id"); v != "" {
			query = query.Where("provider_id = ?", v)
		}
		if v := c.Query("is_used"); v != "" {
			query = query.Where("is_used = ?", v == "true" || v == "1")
		}

		var pins []models.EPIN
		if err := query.Find(&pins).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch epins"})
			return
		}
		c.JSON(http.StatusOK, pins)
	}
}

// POST /admin/epins/generate
func GenerateEPINsHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input struct {
			ProviderID   uint            `json:"provider_id" binding:"required"`
			Denomination decimal.Decimal `json:"denomination"`
			Count        int             `json:"count"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}
		if !input.Denomination.IsPositive() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "denomination must be greater than zero"})
			return
		}
		ok, err := providerExists(db, input.ProviderID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch provider"})
			return
		}
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "provider not found"})
			return
		}

		pins, err := GenerateEPINs(db, input.ProviderID, input.Denomination.Round(2), input.Count)
		if err != nil {
			if errors.Is(err, ErrPinCount) {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			zap.L().Error("generate epins", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate epins"})
			return
		}

		zap.L().Info("epins generated", zap.Uint("provider_id", input.ProviderID), zap.Int("count", len(pins)))
		c.JSON(http.StatusCreated, gin.H{"created": len(pins), "epins": pins})
	}
}
