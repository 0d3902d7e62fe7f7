package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	cartControllers "github.com/Jatomit/UNLIMITED-TELECOM/controllers/cart"
	"github.com/Jatomit/UNLIMITED-TELECOM/models"
)

const minPasswordLength = 8

var ErrUsernameTaken = errors.New("a user with that username already exists")

type SignupInput struct {
	Username  string `form:"username" json:"username"`
	Email     string `form:"email" json:"email"`
	Password1 string `form:"password1" json:"password1"`
	Password2 string `form:"password2" json:"password2"`
}

// Validate returns field errors keyed by input name.
func (in SignupInput) Validate() map[string]string {
	errs := map[string]string{}
	if strings.TrimSpace(in.Username) == "" {
		errs["username"] = "This field is required."
	} else if len(in.Username) > 150 {
		errs["username"] = "Ensure this value has at most 150 characters."
	}
	if in.Email != "" && !strings.Contains(in.Email, "@") {
		errs["email"] = "Enter a valid email address."
	}
	if len(in.Password1) < minPasswordLength {
		errs["password1"] = "This password is too short. It must contain at least 8 characters."
	}
	if in.Password1 != in.Password2 {
		errs["password2"] = "The two password fields didn't match."
	}
	return errs
}

// Register creates the user with a profile and an empty wallet.
func Register(db *gorm.DB, in SignupInput) (*models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password1), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := models.User{
		Username:     strings.TrimSpace(in.Username),
		Email:        strings.TrimSpace(in.Email),
		PasswordHash: string(hash),
		Profile: models.UserProfile{
			Wallet: models.Wallet{Balance: decimal.Zero},
		},
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		var taken int64
		if err := tx.Model(&models.User{}).Where("username = ?", user.Username).Count(&taken).Error; err != nil {
			return err
		}
		if taken > 0 {
			return ErrUsernameTaken
		}
		return tx.Create(&user).Error
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GET /signup/
func SignupForm(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"fields": []string{"username", "email", "password1", "password2"},
		"action": "/signup/",
	})
}

// POST /signup/
func Signup(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input SignupInput
		if err := c.ShouldBind(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}
		if errs := input.Validate(); len(errs) > 0 {
			c.JSON(http.StatusBadRequest, gin.H{"errors": errs})
			return
		}

		user, err := Register(db, input)
		if err != nil {
			if errors.Is(err, ErrUsernameTaken) {
				c.JSON(http.StatusBadRequest, gin.H{"errors": gin.H{"username": err.Error()}})
				return
			}
			zap.L().Error("signup failed", zap.String("username", input.Username), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create user"})
			return
		}

		zap.L().Info("user registered", zap.Uint("user_id", user.ID))
		if cartControllers.WantsJSON(c) {
			c.JSON(http.StatusCreated, gin.H{"message": "Account created", "user": user, "login_url": "/accounts/login/"})
			return
		}
		c.Redirect(http.StatusSeeOther, "/accounts/login/")
	}
}
