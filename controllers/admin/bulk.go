package adminController

import (
	"errors"
	"net/http"
	"reflect"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var ErrNoIDs = errors.New("ids must not be empty")

type BulkInput struct {
	IDs []uint `json:"ids"`
}

// BulkUpdate applies updates to every row of model's table whose id is in ids,
// in one statement, and reports how many rows matched. model is only used for
// its type.
func BulkUpdate(db *gorm.DB, model interface{}, ids []uint, updates map[string]interface{}) (int64, error) {
	if len(ids) == 0 {
		return 0, ErrNoIDs
	}
	fresh := reflect.New(reflect.TypeOf(model).Elem()).Interface()
	result := db.Model(fresh).Where("id IN ?", ids).Updates(updates)
	return result.RowsAffected, result.Error
}

// BulkAction is the handler form of BulkUpdate: {"ids": [...]} in, {"updated": n} out.
func BulkAction(db *gorm.DB, model interface{}, action string, updates map[string]interface{}) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input BulkInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}

		n, err := BulkUpdate(db, model, input.IDs, updates)
		if err != nil {
			if errors.Is(err, ErrNoIDs) {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			zap.L().Error("bulk action failed", zap.String("action", action), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to apply " + action})
			return
		}

		zap.L().Info("bulk action", zap.String("action", action), zap.Int("requested", len(input.IDs)), zap.Int64("updated", n))
		c.JSON(http.StatusOK, gin.H{"updated": n})
	}
}
