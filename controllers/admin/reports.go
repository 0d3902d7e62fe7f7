package adminController

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Jatomit/UNLIMITED-TELECOM/models"
)

const reportDays = 30

type DayTotal struct {
	Date   string          `json:"date"`
	Count  int64           `json:"count"`
	Amount decimal.Decimal `json:"amount"`
}

type TypeTotal struct {
	TransactionType models.TransactionType `json:"transaction_type"`
	Count           int64                  `json:"count"`
	Amount          decimal.Decimal        `json:"amount"`
}

type Report struct {
	Since       time.Time       `json:"since"`
	Daily       []DayTotal      `json:"daily"`
	ByType      []TypeTotal     `json:"by_type"`
	UserCount   int64           `json:"user_count"`
	WalletTotal decimal.Decimal `json:"wallet_total"`
}

// BuildReport summarizes successful transactions over the reportDays days
// ending at now. Days without activity appear with zero totals.
func BuildReport(db *gorm.DB, now time.Time) (*Report, error) {
	now = now.UTC()
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, -(reportDays - 1))

	var txns []models.Transaction
	if err := db.Select("amount", "transaction_type", "created_at").
		Where("status = ? AND created_at >= ?", models.StatusSuccessful, start).
		Find(&txns).Error; err != nil {
		return nil, err
	}

	daily := make([]DayTotal, reportDays)
	index := make(map[string]int, reportDays)
	for i := range daily {
		d := start.AddDate(0, 0, i).Format("2006-01-02")
		daily[i] = DayTotal{Date: d, Amount: decimal.Zero}
		index[d] = i
	}

	byType := make(map[models.TransactionType]*TypeTotal)
	var order []models.TransactionType
	for _, t := range txns {
		if i, ok := index[t.CreatedAt.UTC().Format("2006-01-02")]; ok {
			daily[i].Count++
			daily[i].Amount = daily[i].Amount.Add(t.Amount)
		}
		tt, ok := byType[t.TransactionType]
		if !ok {
			tt = &TypeTotal{TransactionType: t.TransactionType, Amount: decimal.Zero}
			byType[t.TransactionType] = tt
			order = append(order, t.TransactionType)
		}
		tt.Count++
		tt.Amount = tt.Amount.Add(t.Amount)
	}

	report := &Report{Since: start, Daily: daily, WalletTotal: decimal.Zero}
	for _, k := range order {
		report.ByType = append(report.ByType, *byType[k])
	}

	if err := db.Model(&models.User{}).Count(&report.UserCount).Error; err != nil {
		return nil, err
	}

	var balances []decimal.Decimal
	if err := db.Model(&models.Wallet{}).Pluck("balance", &balances).Error; err != nil {
		return nil, err
	}
	for _, b := range balances {
		report.WalletTotal = report.WalletTotal.Add(b)
	}
	return report, nil
}

// GET /admin/reports
func Reports(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		report, err := BuildReport(db, time.Now())
		if err != nil {
			zap.L().Error("build report", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build report"})
			return
		}
		c.JSON(http.StatusOK, report)
	}
}
