package adminController

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/Jatomit/UNLIMITED-TELECOM/models"
)

// GET /admin/airtime
func ListAirtime(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		query := db.Order("created_at DESC, id DESC")
		if v := c.Query("status"); v != "" {
			query = query.Where("status = ?", v)
		}
		if v := c.Query("network"); v != "" {
			query = query.Where("network = ?", v)
		}

		var rows []models.AirtimeTransaction
		if err := query.Find(&rows).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch airtime transactions"})
			return
		}
		c.JSON(http.StatusOK, rows)
	}
}

func MarkAirtimeSuccessful(db *gorm.DB) gin.HandlerFunc {
	return BulkAction(db, &models.AirtimeTransaction{}, "mark_airtime_successful", map[string]interface{}{"status": models.StatusSuccessful})
}

func MarkAirtimeFailed(db *gorm.DB) gin.HandlerFunc {
	return BulkAction(db, &models.AirtimeTransaction{}, "mark_airtime_failed", map[string]interface{}{"status": models.StatusFailed})
}

// RetryAirtime puts failed purchases back to pending. Other rows are left alone.
func RetryAirtime(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input BulkInput
		if err := c.ShouldBindJSON(&input); err != nil || len(input.IDs) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": ErrNoIDs.Error()})
			return
		}
		result := db.Model(&models.AirtimeTransaction{}).
			Where("id IN ? AND status = ?", input.IDs, models.StatusFailed).
			Update("status", models.StatusPending)
		if result.Error != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retry airtime transactions"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"updated": result.RowsAffected})
	}
}

// GET /admin/data
func ListData(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		query := db.Preload("DataPlan").Order("created_at DESC, id DESC")
		if v := c.Query("status"); v != "" {
			query = query.Where("status = ?", v)
		}

		var rows []models.DataTransaction
		if err := query.Find(&rows).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch data transactions"})
			return
		}
		c.JSON(http.StatusOK, rows)
	}
}

func MarkDataSuccessful(db *gorm.DB) gin.HandlerFunc {
	return BulkAction(db, &models.DataTransaction{}, "mark_data_successful", map[string]interface{}{"status": models.StatusSuccessful})
}

func MarkDataFailed(db *gorm.DB) gin.HandlerFunc {
	return BulkAction(db, &models.DataTransaction{}, "mark_data_failed", map[string]interface{}{"status": models.StatusFailed})
}

// GET /admin/cable
func ListCable(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		query := db.Preload("Package").Order("created_at DESC, id DESC")
		if v := c.Query("status"); v != "" {
			query = query.Where("status = ?", v)
		}

		var rows []models.CableSubscription
		if err := query.Find(&rows).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch cable subscriptions"})
			return
		}
		c.JSON(http.StatusOK, rows)
	}
}

func MarkCableSuccessful(db *gorm.DB) gin.HandlerFunc {
	return BulkAction(db, &models.CableSubscription{}, "mark_cable_successful", map[string]interface{}{"status": models.StatusSuccessful})
}

func MarkCableFailed(db *gorm.DB) gin.HandlerFunc {
	return BulkAction(db, &models.CableSubscription{}, "mark_cable_failed", map[string]interface{}{"status": models.StatusFailed})
}
