package adminController

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Jatomit/UNLIMITED-TELECOM/models"
)

var (
	ErrProfileNotFound = errors.New("user profile not found")
	ErrInvalidAmount   = errors.New("amount must be a number greater than zero")
	ErrFundingLimit    = errors.New("amount exceeds the wallet funding limit")
)

// FundWallet credits the profile's wallet and logs a successful wallet_funding
// transaction in one DB transaction. maxAmount > 0 caps a single funding.
func FundWallet(db *gorm.DB, profileID uint, amount, maxAmount decimal.Decimal) (*models.Wallet, *models.Transaction, error) {
	if !amount.IsPositive() {
		return nil, nil, ErrInvalidAmount
	}
	if maxAmount.IsPositive() && amount.GreaterThan(maxAmount) {
		return nil, nil, ErrFundingLimit
	}
	amount = amount.Round(2)

	var wallet models.Wallet
	var txn models.Transaction
	err := db.Transaction(func(tx *gorm.DB) error {
		var profile models.UserProfile
		if err := tx.First(&profile, profileID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrProfileNotFound
			}
			return err
		}

		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("profile_id = ?", profile.ID).First(&wallet).Error; err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			wallet = models.Wallet{ProfileID: profile.ID, Balance: decimal.Zero}
			if err := tx.Create(&wallet).Error; err != nil {
				return err
			}
		}

		wallet.Balance = wallet.Balance.Add(amount)
		if err := tx.Model(&wallet).Update("balance", wallet.Balance).Error; err != nil {
			return err
		}

		txn = models.Transaction{
			TransactionID:   uuid.NewString(),
			UserID:          profile.UserID,
			Amount:          amount,
			TransactionType: models.TypeWalletFunding,
			Status:          models.StatusSuccessful,
			Description:     fmt.Sprintf("Admin wallet funding: ₦%s", formatNaira(amount)),
		}
		return tx.Create(&txn).Error
	})
	if err != nil {
		return nil, nil, err
	}

	zap.L().Info("wallet funded",
		zap.Uint("profile_id", profileID),
		zap.String("amount", amount.StringFixed(2)),
		zap.String("transaction_id", txn.TransactionID),
	)
	return &wallet, &txn, nil
}

// GET /admin/users/:id/fund-wallet
func FundWalletForm(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var profile models.UserProfile
		if err := db.Preload("User").Preload("Wallet").First(&profile, "id = ?", c.Param("id")).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": ErrProfileNotFound.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"title":   "Fund User Wallet",
			"user_id": profile.ID,
			"user":    profile.User,
			"balance": profile.Wallet.Balance,
			"fields":  []string{"amount"},
		})
	}
}

// POST /admin/users/:id/fund-wallet
func FundWalletHandler(db *gorm.DB, maxAmount decimal.Decimal) gin.HandlerFunc {
	return func(c *gin.Context) {
		profileID, err := strconv.ParseUint(c.Param("id"), 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user id"})
			return
		}

		var input struct {
			Amount string `form:"amount" json:"amount"`
		}
		if err := c.ShouldBind(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}
		amount, err := decimal.NewFromString(input.Amount)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": ErrInvalidAmount.Error()})
			return
		}

		wallet, txn, err := FundWallet(db, uint(profileID), amount, maxAmount)
		if err != nil {
			switch {
			case errors.Is(err, ErrProfileNotFound):
				c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			case errors.Is(err, ErrInvalidAmount), errors.Is(err, ErrFundingLimit):
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			default:
				zap.L().Error("fund wallet", zap.Uint64("profile_id", profileID), zap.Error(err))
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fund wallet"})
			}
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"message":     fmt.Sprintf("Successfully funded wallet with ₦%s", formatNaira(txn.Amount)),
			"wallet":      wallet,
			"transaction": txn,
		})
	}
}

// formatNaira renders 12345.5 as 12,345.50.
func formatNaira(d decimal.Decimal) string {
	s := d.Abs().StringFixed(2)
	intPart, frac := s[:len(s)-3], s[len(s)-3:]

	var out []byte
	for i := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			out = append(out, ',')
		}
		out = append(out, intPart[i])
	}
	if d.IsNegative() {
		return "-" + string(out) + frac
	}
	return string(out) + frac
}
