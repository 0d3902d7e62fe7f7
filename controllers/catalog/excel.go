package catalogcontroller

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/tealeg/xlsx"
	"gorm.io/gorm"

	"github.com/Jatomit/UNLIMITED-TELECOM/models"
)

// Column order shared by the product import and export sheets.
var productColumns = []string{"ID", "Name", "Description", "Price", "Stock", "IsAvailable", "CategoryID", "Image"}

// ImportProductsFromExcel upserts products from the first sheet. Rows with an
// existing ID are updated, the rest are created.
func ImportProductsFromExcel(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		header, err := c.FormFile("file")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Excel file is required"})
			return
		}
		file, err := header.Open()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to open Excel file"})
			return
		}
		defer file.Close()

		xlFile, err := xlsx.OpenReaderAt(file, header.Size)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to parse Excel file"})
			return
		}
		if len(xlFile.Sheets) == 0 || len(xlFile.Sheets[0].Rows) < 2 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Excel file is empty or missing header row"})
			return
		}

		created, updated, skipped := importRows(db, xlFile.Sheets[0].Rows[1:])
		c.JSON(http.StatusOK, gin.H{
			"message":       "Import completed",
			"created_count": created,
			"updated_count": updated,
			"skipped_count": skipped,
		})
	}
}

func importRows(db *gorm.DB, rows []*xlsx.Row) (created, updated, skipped int) {
	for _, row := range rows {
		get := func(i int) string {
			if row != nil && i < len(row.Cells) {
				return strings.TrimSpace(row.Cells[i].String())
			}
			return ""
		}

		name := get(1)
		price, err := decimal.NewFromString(get(3))
		if name == "" || err != nil || price.IsNegative() {
			skipped++
			continue
		}
		stock, _ := strconv.Atoi(get(4))
		available := true
		if v := get(5); v != "" {
			available, _ = strconv.ParseBool(v)
		}

		product := models.Product{
			Name:        name,
			Description: get(2),
			Price:       price,
			Stock:       stock,
			IsAvailable: available,
			Image:       get(7),
		}
		if cid, err := strconv.ParseUint(get(6), 10, 64); err == nil && cid > 0 {
			id := uint(cid)
			product.CategoryID = &id
		}

		if id, err := strconv.ParseUint(get(0), 10, 64); err == nil {
			var existing models.Product
			if db.First(&existing, id).Error == nil {
				product.ID = existing.ID
				product.CreatedAt = existing.CreatedAt
				if db.Omit("Category").Save(&product).Error == nil {
					updated++
				} else {
					skipped++
				}
				continue
			}
		}

		if db.Create(&product).Error == nil {
			created++
		} else {
			skipped++
		}
	}
	return created, updated, skipped
}
