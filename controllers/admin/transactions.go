package adminController

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tealeg/xlsx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Jatomit/UNLIMITED-TELECOM/models"
)

var transactionColumns = []string{"ID", "Transaction ID", "User ID", "Provider ID", "Type", "Status", "Amount", "Description", "Created At"}

func filterTransactions(c *gin.Context, db *gorm.DB) *gorm.DB {
	query := db.Model(&models.Transaction{}).Order("created_at DESC, id DESC")
	if v := c.Query("user_id"); v != "" {
		query = query.Where("user_id = ?", v)
	}
	if v := c.Query("status"); v != "" {
		query = query.Where("status = ?", v)
	}
	if v := c.Query("type"); v != "" {
		query = query.Where("transaction_type = ?", v)
	}
	return query
}

// GET /admin/transactions
func ListTransactions(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var txns []models.Transaction
		if err := filterTransactions(c, db).Find(&txns).Error; err != nil {
			zap.L().Error("list transactions", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch transactions"})
			return
		}
		c.JSON(http.StatusOK, txns)
	}
}

// Marking is unconditional and never touches wallet balances.
func MarkTransactionsSuccessful(db *gorm.DB) gin.HandlerFunc {
	return BulkAction(db, &models.Transaction{}, "mark_transactions_successful", map[string]interface{}{"status": models.StatusSuccessful})
}

func MarkTransactionsFailed(db *gorm.DB) gin.HandlerFunc {
	return BulkAction(db, &models.Transaction{}, "mark_transactions_failed", map[string]interface{}{"status": models.StatusFailed})
}

// GET /admin/transactions/export takes the same filters as the list.
func ExportTransactionsToExcel(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var txns []models.Transaction
		if err := filterTransactions(c, db).Find(&txns).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch transactions"})
			return
		}

		file, err := transactionWorkbook(txns)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create Excel sheet"})
			return
		}

		c.Header("Content-Disposition", "attachment; filename=transactions.xlsx")
		c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		if err := file.Write(c.Writer); err != nil {
			zap.L().Error("write transactions workbook", zap.Error(err))
		}
	}
}

func transactionWorkbook(txns []models.Transaction) (*xlsx.File, error) {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Transactions")
	if err != nil {
		return nil, err
	}

	header := sheet.AddRow()
	for _, h := range transactionColumns {
		header.AddCell().SetString(h)
	}

	for _, t := range txns {
		row := sheet.AddRow()
		row.AddCell().SetInt(int(t.ID))
		row.AddCell().SetString(t.TransactionID)
		row.AddCell().SetInt(int(t.UserID))
		if t.ServiceProviderID != nil {
			row.AddCell().SetInt(int(*t.ServiceProviderID))
		} else {
			row.AddCell().SetString("")
		}
		row.AddCell().SetString(string(t.TransactionType))
		row.AddCell().SetString(string(t.Status))
		row.AddCell().SetString(t.Amount.StringFixed(2))
		row.AddCell().SetString(t.Description)
		row.AddCell().SetString(t.CreatedAt.UTC().Format("2006-01-02 15:04:05"))
	}
	return file, nil
}
