package catalogcontroller

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Jatomit/UNLIMITED-TELECOM/models"
)

var ErrCategoryNotFound = errors.New("category not found")

type ProductInput struct {
	Name        *string          `json:"name"`
	Description *string          `json:"description"`
	Price       *decimal.Decimal `json:"price"`
	Image       *string          `json:"image"`
	Stock       *int             `json:"stock"`
	IsAvailable *bool            `json:"is_available"`
	CategoryID  *uint            `json:"category_id"`
}

// apply copies the set fields onto p.
func (in ProductInput) apply(p *models.Product) {
	if in.Name != nil {
		p.Name = strings.TrimSpace(*in.Name)
	}
	if in.Description != nil {
		p.Description = *in.Description
	}
	if in.Price != nil {
		p.Price = *in.Price
	}
	if in.Image != nil {
		p.Image = *in.Image
	}
	if in.Stock != nil {
		p.Stock = *in.Stock
	}
	if in.IsAvailable != nil {
		p.IsAvailable = *in.IsAvailable
	}
	if in.CategoryID != nil {
		if *in.CategoryID == 0 {
			p.CategoryID = nil
		} else {
			id := *in.CategoryID
			p.CategoryID = &id
		}
	}
}

func validateProduct(db *gorm.DB, p *models.Product) (int, string) {
	if p.Name == "" {
		return http.StatusBadRequest, "name is required"
	}
	if p.Price.IsNegative() {
		return http.StatusBadRequest, "price must not be negative"
	}
	if p.Stock < 0 {
		return http.StatusBadRequest, "stock must not be negative"
	}
	if p.CategoryID != nil {
		var n int64
		if err := db.Model(&models.Category{}).Where("id = ?", *p.CategoryID).Count(&n).Error; err != nil {
			return http.StatusInternalServerError, "Failed to fetch category"
		}
		if n == 0 {
			return http.StatusBadRequest, ErrCategoryNotFound.Error()
		}
	}
	return 0, ""
}

// CreateProduct creates a product. Products are available unless is_available=false is sent.
func CreateProduct(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input ProductInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}
		if input.Price == nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "name and price are required"})
			return
		}

		product := models.Product{IsAvailable: true}
		input.apply(&product)
		if status, msg := validateProduct(db, &product); status != 0 {
			c.JSON(status, gin.H{"error": msg})
			return
		}

		if err := db.Create(&product).Error; err != nil {
			zap.L().Error("create product", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create product"})
			return
		}
		c.JSON(http.StatusCreated, product)
	}
}
