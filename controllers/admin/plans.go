package adminController

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Jatomit/UNLIMITED-TELECOM/models"
)

func providerExists(db *gorm.DB, id uint) (bool, error) {
	var n int64
	err := db.Model(&models.ServiceProvider{}).Where("id = ?", id).Count(&n).Error
	return n > 0, err
}

// GET /admin/plans
func ListPlans(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		query := db.Preload("Provider").Order("provider_id ASC, amount ASC")
		if v := c.Query("provider_id"); v != "" {
			query = query.Where("provider_id = ?", v)
		}
		if v := c.Query("is_active"); v != "" {
			active, err := strconv.ParseBool(v)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid is_active"})
				return
			}
			query = query.Where("is_active = ?", active)
		}

		var plans []models.DataPlan
		if err := query.Find(&plans).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch plans"})
			return
		}
		c.JSON(http.StatusOK, plans)
	}
}

// POST /admin/plans
func CreatePlan(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input struct {
			ProviderID   uint            `json:"provider_id" binding:"required"`
			Name         string          `json:"name" binding:"required"`
			Amount       decimal.Decimal `json:"amount"`
			DataVolume   string          `json:"data_volume"`
			ValidityDays int             `json:"validity_days"`
			IsActive     *bool           `json:"is_active"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}
		if !input.Amount.IsPositive() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "amount must be greater than zero"})
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

		plan := models.DataPlan{
			ProviderID:   input.ProviderID,
			Name:         strings.TrimSpace(input.Name),
			Amount:       input.Amount.Round(2),
			DataVolume:   input.DataVolume,
			ValidityDays: input.ValidityDays,
			IsActive:     input.IsActive == nil || *input.IsActive,
		}
		if err := db.Create(&plan).Error; err != nil {
			zap.L().Error("create plan", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create plan"})
			return
		}
		c.JSON(http.StatusCreated, plan)
	}
}

// PATCH /admin/plans/:id edits amount and is_active in place.
func UpdatePlan(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var plan models.DataPlan
		if err := db.First(&plan, "id = ?", c.Param("id")).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Plan not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch plan"})
			return
		}

		var input struct {
			Amount   *decimal.Decimal `json:"amount"`
			IsActive *bool            `json:"is_active"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}

		updates := make(map[string]interface{})
		if input.Amount != nil {
			if !input.Amount.IsPositive() {
				c.JSON(http.StatusBadRequest, gin.H{"error": "amount must be greater than zero"})
				return
			}
			updates["amount"] = input.Amount.Round(2)
		}
		if input.IsActive != nil {
			updates["is_active"] = *input.IsActive
		}
		if len(updates) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "nothing to update"})
			return
		}

		if err := db.Model(&plan).Updates(updates).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update plan"})
			return
		}
		if err := db.First(&plan, plan.ID).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reload plan"})
			return
		}
		c.JSON(http.StatusOK, plan)
	}
}

func ActivatePlans(db *gorm.DB) gin.HandlerFunc {
	return BulkAction(db, &models.DataPlan{}, "activate_plans", map[string]interface{}{"is_active": true})
}

func DeactivatePlans(db *gorm.DB) gin.HandlerFunc {
	return BulkAction(db, &models.DataPlan{}, "deactivate_plans", map[string]interface{}{"is_active": false})
}

// GET /admin/cable-packages
func ListCablePackages(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		query := db.Preload("Provider").Order("provider_id ASC, amount ASC")
		if v := c.Query("provider_id"); v != "" {
			query = query.Where("provider_id = ?", v)
		}

		var packages []models.CablePackage
		if err := query.Find(&packages).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch cable packages"})
			return
		}
		c.JSON(http.StatusOK, packages)
	}
}

// POST /admin/cable-packages
func CreateCablePackage(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input struct {
			ProviderID uint            `json:"provider_id" binding:"required"`
			Name       string          `json:"name" binding:"required"`
			Amount     decimal.Decimal `json:"amount"`
			IsActive   *bool           `json:"is_active"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}
		if !input.Amount.IsPositive() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "amount must be greater than zero"})
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

		pkg := models.CablePackage{
			ProviderID: input.ProviderID,
			Name:       strings.TrimSpace(input.Name),
			Amount:     input.Amount.Round(2),
			IsActive:   input.IsActive == nil || *input.IsActive,
		}
		if err := db.Create(&pkg).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create cable package"})
			return
		}
		c.JSON(http.StatusCreated, pkg)
	}
}

func ActivateCablePackages(db *gorm.DB) gin.HandlerFunc {
	return BulkAction(db, &models.CablePackage{}, "activate_cable_packages", map[string]interface{}{"is_active": true})
}

func DeactivateCablePackages(db *gorm.DB) gin.HandlerFunc {
	return BulkAction(db, &models.CablePackage{}, "deactivate_cable_packages", map[string]interface{}{"is_active": false})
}
