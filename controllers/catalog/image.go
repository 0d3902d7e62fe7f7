package catalogcontroller

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Jatomit/UNLIMITED-TELECOM/models"
)

const maxImageBytes = 5 << 20

var (
	unsafeFileChars = regexp.MustCompile(`[^\w\-.]`)
	imageExtensions = map[string]bool{".jpg": true, ".jpeg": true, ".png": true, ".webp": true, ".gif": true}
)

// UploadProductImage stores the multipart "file" under uploadDir and points the
// product's image at its public URL. A previous upload of the same product is removed.
func UploadProductImage(db *gorm.DB, uploadDir, publicBaseURL string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var product models.Product
		if err := db.First(&product, "id = ?", c.Param("id")).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch product"})
			return
		}

		file, err := c.FormFile("file")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "No file uploaded"})
			return
		}
		if file.Size > maxImageBytes {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Image must be 5MB or smaller"})
			return
		}
		ext := strings.ToLower(filepath.Ext(file.Filename))
		if !imageExtensions[ext] {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unsupported image type"})
			return
		}

		cleanName := unsafeFileChars.ReplaceAllString(filepath.Base(file.Filename), "_")
		filename := fmt.Sprintf("product_%d_%d_%s", product.ID, time.Now().UnixNano(), cleanName)

		if err := os.MkdirAll(uploadDir, 0o755); err != nil {
			zap.L().Error("create upload dir", zap.String("dir", uploadDir), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store image"})
			return
		}
		if err := c.SaveUploadedFile(file, filepath.Join(uploadDir, filename)); err != nil {
			zap.L().Error("save upload", zap.String("file", filename), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store image"})
			return
		}

		previous := product.Image
		product.Image = strings.TrimRight(publicBaseURL, "/") + "/uploads/" + filename
		if err := db.Model(&product).Update("image", product.Image).Error; err != nil {
			_ = os.Remove(filepath.Join(uploadDir, filename))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update product"})
			return
		}

		removeUpload(uploadDir, previous)
		zap.L().Info("product image uploaded", zap.Uint("product_id", product.ID), zap.String("file", filename))
		c.JSON(http.StatusOK, gin.H{"image": product.Image, "message": "Image uploaded successfully"})
	}
}

// removeUpload deletes a file previously stored by UploadProductImage. URLs
// that do not point into /uploads/ are left alone.
func removeUpload(uploadDir, imageURL string) {
	i := strings.LastIndex(imageURL, "/uploads/")
	if i < 0 {
		return
	}
	name := filepath.Base(imageURL[i+len("/uploads/"):])
	if name == "." || name == "/" || name == "" {
		return
	}
	if err := os.Remove(filepath.Join(uploadDir, name)); err != nil && !os.IsNotExist(err) {
		zap.L().Warn("remove old product image", zap.String("file", name), zap.Error(err))
	}
}
