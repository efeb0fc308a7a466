package downloads

import (
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"illusly-backend/db"
	"illusly-backend/models"
	"illusly-backend/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

var extensionByMime = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/webp": "webp",
}

func downloadFileName(illustration *models.Illustration) string {
	ext, ok := extensionByMime[illustration.MimeType]
	if !ok {
		ext = "bin"
	}
	name := strings.ReplaceAll(strings.TrimSpace(illustration.Title), " ", "_")
	if name == "" {
		name = illustration.ID
	}
	return fmt.Sprintf("%s.%s", name, ext)
}

// @Summary Download an illustration
// @Description Download a published illustration. Free works require authentication only, paid works require an entitled subscription. Refused downloads leave no history row.
// @Tags downloads
// @Produce json
// @Param id path string true "Illustration ID"
// @Security BearerAuth
// @Success 200 {object} map[string]string "downloadUrl, fileName"
// @Failure 401 {object} map[string]string "error: Unauthorized"
// @Failure 403 {object} map[string]string "error: Subscription required"
// @Failure 404 {object} map[string]string "error: Illustration not found"
// @Failure 500 {object} map[string]string "error: Error message"
// @Router /illustrations/{id}/download [post]
func DownloadIllustration(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found in token"})
		return
	}

	illustrationID := c.Param("id")

	var illustration models.Illustration
	if err := db.DB.First(&illustration, "id = ? AND status = ?", illustrationID, models.IllustrationPublished).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Illustration not found"})
		return
	}

	// Un contenu payant exige un abonnement ouvrant droit au téléchargement.
	// Le refus n'écrit aucune ligne d'historique.
	if !illustration.IsFree {
		var subscription models.Subscription
		err := db.DB.First(&subscription, "user_id = ?", userID).Error
		if err != nil || !subscription.Entitled(time.Now()) {
			c.JSON(http.StatusForbidden, gin.H{"error": "Active subscription required to download this illustration"})
			return
		}
	}

	history := models.DownloadHistory{
		UserID:         userID.(string),
		IllustrationID: illustration.ID,
		IPAddress:      c.ClientIP(),
		UserAgent:      c.Request.UserAgent(),
	}

	if err := db.DB.Create(&history).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error recording download: " + err.Error()})
		return
	}

	if err := db.DB.Model(&illustration).
		UpdateColumn("download_count", gorm.Expr("download_count + 1")).Error; err != nil {
		utils.LogErrorWithUser(userID, err, "Erreur lors de l'incrément du compteur dans DownloadIllustration")
	}

	c.JSON(http.StatusOK, gin.H{
		"downloadUrl": illustration.ImageURL,
		"fileName":    downloadFileName(&illustration),
	})
}

// @Summary My download history
// @Description Paginated download history of the authenticated user, most recent first
// @Tags downloads
// @Produce json
// @Param page query int false "Page number"
// @Param limit query int false "Items per page"
// @Security BearerAuth
// @Success 200 {object} map[string]interface{} "downloads, pagination"
// @Failure 401 {object} map[string]string "error: Unauthorized"
// @Failure 500 {object} map[string]string "error: Error message"
// @Router /downloads [get]
func GetMyDownloads(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found in token"})
		return
	}

	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit < 1 || limit > 100 {
		limit = 20
	}

	query := db.DB.Model(&models.DownloadHistory{}).Where("user_id = ?", userID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error retrieving download history"})
		return
	}

	var downloads []models.DownloadHistory
	err = query.
		Preload("Illustration").
		Preload("Illustration.User").
		Order("downloaded_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&downloads).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error retrieving download history"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"downloads": downloads,
		"pagination": gin.H{
			"page":       page,
			"limit":      limit,
			"total":      total,
			"totalPages": int(math.Ceil(float64(total) / float64(limit))),
		},
	})
}
