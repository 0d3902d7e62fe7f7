package adminController

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	catalogcontroller "github.com/Jatomit/UNLIMITED-TELECOM/controllers/catalog"
	"github.com/Jatomit/UNLIMITED-TELECOM/models"
)

type providerRow struct {
	models.ServiceProvider
	TotalTransactions int64 `json:"total_transactions"`
}

var serviceTypes = map[models.ServiceType]bool{
	models.ServiceAirtime: true,
	models.ServiceData:    true,
	models.ServiceCable:   true,
	models.ServiceEPIN:    true,
}

// GET /admin/providers
func ListProviders(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		query := db.Model(&models.ServiceProvider{}).
			Select("service_providers.*, COUNT(transactions.id) AS total_transactions").
			Joins("LEFT JOIN transactions ON transactions.service_provider_id = service_providers.id").
			Group("service_providers.id").
			Order("service_providers.name ASC")

		if st := c.Query("service_type"); st != "" {
			query = query.Where("service_providers.service_type = ?", st)
		}
		if v := c.Query("is_active"); v != "" {
			active, err := strconv.ParseBool(v)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid is_active"})
				return
			}
			query = query.Where("service_providers.is_active = ?", active)
		}

		var rows []providerRow
		if err := query.Scan(&rows).Error; err != nil {
			zap.L().Error("list providers", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch providers"})
			return
		}
		c.JSON(http.StatusOK, rows)
	}
}

// POST /admin/providers
func CreateProvider(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input struct {
			Name        string             `json:"name" binding:"required"`
			Slug        string             `json:"slug"`
			ServiceType models.ServiceType `json:"service_type" binding:"required"`
			IsActive    *bool              `json:"is_active"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}
		if !serviceTypes[input.ServiceType] {
			c.JSON(http.StatusBadRequest, gin.H{"error": "service_type must be one of airtime, data, cable, epin"})
			return
		}

		slug := catalogcontroller.Slugify(input.Slug)
		if slug == "" {
			slug = catalogcontroller.Slugify(input.Name)
		}
		if slug == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "name must contain letters or digits"})
			return
		}

		var n int64
		if err := db.Model(&models.ServiceProvider{}).Where("slug = ?", slug).Count(&n).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check slug"})
			return
		}
		if n > 0 {
			c.JSON(http.StatusConflict, gin.H{"error": "A provider with this slug already exists"})
			return
		}

		provider := models.ServiceProvider{
			Name:        strings.TrimSpace(input.Name),
			Slug:        slug,
			ServiceType: input.ServiceType,
			IsActive:    input.IsActive == nil || *input.IsActive,
		}
		if err := db.Create(&provider).Error; err != nil {
			zap.L().Error("create provider", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create provider"})
			return
		}
		c.JSON(http.StatusCreated, provider)
	}
}

func ActivateProviders(db *gorm.DB) gin.HandlerFunc {
	return BulkAction(db, &models.ServiceProvider{}, "activate_providers", map[string]interface{}{"is_active": true})
}

func DeactivateProviders(db *gorm.DB) gin.HandlerFunc {
	return BulkAction(db, &models.ServiceProvider{}, "deactivate_providers", map[string]interface{}{"is_active": false})
}
