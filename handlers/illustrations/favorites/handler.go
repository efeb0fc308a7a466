package favorites

import (
	"math"
	"net/http"
	"strconv"

	"illusly-backend/db"
	"illusly-backend/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// @Summary Add an illustration to favorites
// @Description Favorite a published illustration. Adding twice is an error.
// @Tags favorites
// @Produce json
// @Param id path string true "Illustration ID"
// @Security BearerAuth
// @Success 200 {object} map[string]string "message: Favorite added successfully"
// @Failure 400 {object} map[string]string "error: Already favorited"
// @Failure 401 {object} map[string]string "error: Unauthorized"
// @Failure 404 {object} map[string]string "error: Illustration not found"
// @Failure 500 {object} map[string]string "error: Error message"
// @Router /illustrations/{id}/favorite [post]
func AddFavorite(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found in token"})
		return
	}

	illustrationID := c.Param("id")

	// Seules les illustrations publiées peuvent être mises en favori
	var illustration models.Illustration
	if err := db.DB.First(&illustration, "id = ? AND status = ?", illustrationID, models.IllustrationPublished).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Illustration not found"})
		return
	}

	var existing models.Favorite
	if err := db.DB.First(&existing, "user_id = ? AND illustration_id = ?", userID, illustrationID).Error; err == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Illustration already in favorites"})
		return
	}

	favorite := models.Favorite{
		UserID:         userID.(string),
		IllustrationID: illustrationID,
	}

	if err := db.DB.Create(&favorite).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error adding favorite: " + err.Error()})
		return
	}

	if err := db.DB.Model(&illustration).
		UpdateColumn("favorite_count", gorm.Expr("favorite_count + 1")).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error updating favorite count: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Favorite added successfully"})
}

// @Summary Remove an illustration from favorites
// @Description Unfavorite an illustration. Removing an absent favorite is an error.
// @Tags favorites
// @Produce json
// @Param id path string true "Illustration ID"
// @Security BearerAuth
// @Success 200 {object} map[string]string "message: Favorite removed successfully"
// @Failure 400 {object} map[string]string "error: Not in favorites"
// @Failure 401 {object} map[string]string "error: Unauthorized"
// @Failure 500 {object} map[string]string "error: Error message"
// @Router /illustrations/{id}/favorite [delete]
func RemoveFavorite(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found in token"})
		return
	}

	illustrationID := c.Param("id")

	var favorite models.Favorite
	if err := db.DB.First(&favorite, "user_id = ? AND illustration_id = ?", userID, illustrationID).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Illustration not in favorites"})
		return
	}

	if err := db.DB.Delete(&favorite).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error removing favorite: " + err.Error()})
		return
	}

	if err := db.DB.Model(&models.Illustration{}).
		Where("id = ?", illustrationID).
		UpdateColumn("favorite_count", gorm.Expr("GREATEST(favorite_count - 1, 0)")).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error updating favorite count: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Favorite removed successfully"})
}

// @Summary List my favorites
// @Description Paginated list of the authenticated user's favorited illustrations, most recent first
// @Tags favorites
// @Produce json
// @Param page query int false "Page number"
// @Param limit query int false "Items per page"
// @Security BearerAuth
// @Success 200 {object} map[string]interface{} "favorites, pagination"
// @Failure 401 {object} map[string]string "error: Unauthorized"
// @Failure 500 {object} map[string]string "error: Error message"
// @Router /favorites [get]
func GetMyFavorites(c *gin.Context) {
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

	query := db.DB.Model(&models.Favorite{}).Where("user_id = ?", userID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error retrieving favorites"})
		return
	}

	var favorites []models.Favorite
	err = query.
		Preload("Illustration").
		Preload("Illustration.User").
		Preload("Illustration.Category").
		Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&favorites).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error retrieving favorites"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"favorites": favorites,
		"pagination": gin.H{
			"page":       page,
			"limit":      limit,
			"total":      total,
			"totalPages": int(math.Ceil(float64(total) / float64(limit))),
		},
	})
}
