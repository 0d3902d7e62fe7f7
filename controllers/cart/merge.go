package cartControllers

import (
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Jatomit/UNLIMITED-TELECOM/models"
)

// MergeSessionCart moves the anonymous session cart into the user's cart,
// summing quantities per product, and deletes the anonymous cart. When
// maxLine is positive a summed line is clamped to it.
func MergeSessionCart(db *gorm.DB, sessionKey string, userID uint, maxLine int) (int, error) {
	if sessionKey == "" {
		return 0, nil
	}

	merged := 0
	err := db.Transaction(func(tx *gorm.DB) error {
		var guest models.Cart
		if err := tx.Where("session_key = ?", sessionKey).First(&guest).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}

		var items []models.CartItem
		if err := tx.Where("cart_id = ?", guest.ID).Find(&items).Error; err != nil {
			return err
		}

		if len(items) > 0 {
			cart, err := ResolveCart(tx, Actor{UserID: &userID})
			if err != nil {
				return err
			}
			for _, it := range items {
				if err := upsertLine(tx, cart.ID, it.ProductID, it.Quantity); err != nil {
					return err
				}
				if maxLine > 0 {
					if err := tx.Model(&models.CartItem{}).
						Where("cart_id = ? AND product_id = ? AND quantity > ?", cart.ID, it.ProductID, maxLine).
						Update("quantity", maxLine).Error; err != nil {
						return err
					}
				}
				merged++
			}
		}

		if err := tx.Where("cart_id = ?", guest.ID).Delete(&models.CartItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(&guest).Error
	})
	if err != nil {
		return 0, fmt.Errorf("merge session cart: %w", err)
	}
	if merged > 0 {
		zap.L().Info("merged guest cart", zap.Uint("user_id", userID), zap.Int("lines", merged))
	}
	return merged, nil
}
