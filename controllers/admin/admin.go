package adminController

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Jatomit/UNLIMITED-TELECOM/models"
)

// GET /admin/users lists profiles with their wallet.
// Filters: is_verified, q (username or phone number).
func ListUsers(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		query := db.Model(&models.UserProfile{}).
			Preload("User").
			Preload("Wallet").
			Joins("JOIN users ON users.id = user_profiles.user_id").
			Order("user_profiles.created_at DESC")

		if v := c.Query("is_verified"); v != "" {
			verified, err := strconv.ParseBool(v)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid is_verified"})
				return
			}
			query = query.Where("user_profiles.is_verified = ?", verified)
		}
		if q := strings.TrimSpace(c.Query("q")); q != "" {
			like := "%" + strings.ToLower(q) + "%"
			query = query.Where("(LOWER(users.username) LIKE ? OR user_profiles.phone_number LIKE ?)", like, like)
		}

		var profiles []models.UserProfile
		if err := query.Find(&profiles).Error; err != nil {
			zap.L().Error("list users", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch users"})
			return
		}
		c.JSON(http.StatusOK, profiles)
	}
}

// GET /admin/users/:id returns the profile, its wallet and the latest transactions.
func GetUser(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var profile models.UserProfile
		if err := db.Preload("User").Preload("Wallet").First(&profile, "id = ?", c.Param("id")).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch user"})
			return
		}

		var txns []models.Transaction
		if err := db.Where("user_id = ?", profile.UserID).Order("created_at DESC").Limit(20).Find(&txns).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch transactions"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"profile": profile, "transactions": txns})
	}
}
