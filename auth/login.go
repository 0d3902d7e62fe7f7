package auth

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/Jatomit/UNLIMITED-TELECOM/config"
	cartControllers "github.com/Jatomit/UNLIMITED-TELECOM/controllers/cart"
	"github.com/Jatomit/UNLIMITED-TELECOM/middleware"
	"github.com/Jatomit/UNLIMITED-TELECOM/models"
)

var ErrInvalidCredentials = errors.New("invalid username or password")

type LoginInput struct {
	Username string `form:"username" json:"username" binding:"required"`
	Password string `form:"password" json:"password" binding:"required"`
}

// Authenticate checks the password against the stored bcrypt hash.
func Authenticate(db *gorm.DB, username, password string) (*models.User, error) {
	var user models.User
	if err := db.Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	return &user, nil
}

// POST /accounts/login/
func Login(db *gorm.DB, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input LoginInput
		if err := c.ShouldBind(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}

		user, err := Authenticate(db, input.Username, input.Password)
		if err != nil {
			if errors.Is(err, ErrInvalidCredentials) {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid username or password"})
				return
			}
			zap.L().Error("login lookup failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
			return
		}

		token, expiresAt, err := IssueToken(cfg.JWTSecret, cfg.JWTTTL, *user)
		if err != nil {
			zap.L().Error("sign token", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Token generation failed"})
			return
		}

		mergeStatus := "no-guest-cart"
		if key := middleware.SessionKey(c); key != "" {
			merged, err := cartControllers.MergeSessionCart(db, key, user.ID, cfg.CartMaxLineQuantity)
			switch {
			case err != nil:
				zap.L().Warn("guest cart merge failed", zap.Uint("user_id", user.ID), zap.Error(err))
				mergeStatus = "merge-failed"
			case merged > 0:
				mergeStatus = "merged-success"
			default:
				mergeStatus = "guest-cart-empty"
			}
			if err == nil {
				middleware.ClearSessionKey(c)
			}
		}

		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(middleware.TokenCookie, token, int(time.Until(expiresAt).Seconds()), "/", "", cfg.IsProduction(), true)

		c.JSON(http.StatusOK, gin.H{
			"message":      "Login successful",
			"token":        token,
			"expires_at":   expiresAt,
			"user":         user,
			"merge_status": mergeStatus,
		})
	}
}

// POST /accounts/logout/
func Logout(c *gin.Context) {
	c.SetCookie(middleware.TokenCookie, "", -1, "/", "", false, true)
	if cartControllers.WantsJSON(c) {
		c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
		return
	}
	c.Redirect(http.StatusSeeOther, "/")
}
