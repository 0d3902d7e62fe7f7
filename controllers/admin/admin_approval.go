package adminController

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/Jatomit/UNLIMITED-TELECOM/models"
)

// POST /admin/users/verify
func VerifyUsers(db *gorm.DB) gin.HandlerFunc {
	return BulkAction(db, &models.UserProfile{}, "verify_users", map[string]interface{}{"is_verified": true})
}

// POST /admin/users/unverify
func UnverifyUsers(db *gorm.DB) gin.HandlerFunc {
	return BulkAction(db, &models.UserProfile{}, "unverify_users", map[string]interface{}{"is_verified": false})
}
