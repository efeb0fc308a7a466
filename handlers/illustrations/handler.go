package illustrations

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"

	"illusly-backend/db"
	"illusly-backend/models"
	"illusly-backend/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const maxImageSize = 20 * 1024 * 1024

var allowedMimeTypes = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/webp": "webp",
}

// Champs de tri autorisés pour éviter l'injection via sortBy
var sortableFields = map[string]string{
	"createdAt":     "created_at",
	"updatedAt":     "updated_at",
	"title":         "title",
	"viewCount":     "view_count",
	"downloadCount": "download_count",
	"favoriteCount": "favorite_count",
}

type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
}

func parsePagination(c *gin.Context) (int, int) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit < 1 || limit > 100 {
		limit = 20
	}
	return page, limit
}

func buildPagination(page, limit int, total int64) Pagination {
	return Pagination{
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: int(math.Ceil(float64(total) / float64(limit))),
	}
}

func orderClause(c *gin.Context) string {
	column, ok := sortableFields[c.DefaultQuery("sortBy", "createdAt")]
	if !ok {
		column = "created_at"
	}
	direction := "DESC"
	if c.DefaultQuery("sortOrder", "desc") == "asc" {
		direction = "ASC"
	}
	return column + " " + direction
}

// @Summary List published illustrations
// @Description Paginated list of published illustrations with filtering and sorting
// @Tags illustrations
// @Produce json
// @Param page query int false "Page number"
// @Param limit query int false "Items per page"
// @Param category query string false "Filter by category ID"
// @Param tag query string false "Filter by tag ID"
// @Param search query string false "Case-insensitive search in title and description"
// @Param sortBy query string false "Sort field"
// @Param sortOrder query string false "asc or desc"
// @Success 200 {object} map[string]interface{} "illustrations, pagination"
// @Failure 500 {object} map[string]string "error: Error message"
// @Router /illustrations [get]
func GetAllIllustrations(c *gin.Context) {
	page, limit := parsePagination(c)

	query := db.DB.Model(&models.Illustration{}).Where("status = ?", models.IllustrationPublished)

	if categoryID := c.Query("category"); categoryID != "" {
		query = query.Where("category_id = ?", categoryID)
	}

	if tagID := c.Query("tag"); tagID != "" {
		query = query.Joins("JOIN illustration_tags ON illustrations.id = illustration_tags.illustration_id").
			Where("illustration_tags.tag_id = ?", tagID)
	}

	if search := c.Query("search"); search != "" {
		like := "%" + search + "%"
		query = query.Where("title ILIKE ? OR description ILIKE ?", like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		utils.LogError(err, "Erreur lors du comptage des illustrations dans GetAllIllustrations")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error retrieving illustrations"})
		return
	}

	var illustrations []models.Illustration
	err := query.
		Preload("User").
		Preload("Category").
		Preload("Tags").
		Order(orderClause(c)).
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&illustrations).Error
	if err != nil {
		utils.LogError(err, "Erreur lors de la récupération des illustrations dans GetAllIllustrations")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error retrieving illustrations"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"illustrations": illustrations,
		"pagination":    buildPagination(page, limit, total),
	})
}

// @Summary Get a published illustration
// @Description Retrieve one published illustration. Every read increments the view counter (intentional, no per-viewer dedup).
// @Tags illustrations
// @Produce json
// @Param id path string true "Illustration ID"
// @Success 200 {object} map[string]interface{} "illustration, isFavorited"
// @Failure 404 {object} map[string]string "error: Illustration not found"
// @Router /illustrations/{id} [get]
func GetIllustrationByID(c *gin.Context) {
	illustrationID := c.Param("id")

	var illustration models.Illustration
	err := db.DB.
		Preload("User").
		Preload("Category").
		Preload("Tags").
		First(&illustration, "id = ? AND status = ?", illustrationID, models.IllustrationPublished).Error
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Illustration not found"})
		return
	}

	// Incrément inconditionnel du compteur de vues, y compris pour des vues
	// répétées du même visiteur
	if err := db.DB.Model(&illustration).
		UpdateColumn("view_count", gorm.Expr("view_count + 1")).Error; err != nil {
		utils.LogError(err, "Erreur lors de l'incrément du compteur de vues dans GetIllustrationByID")
	}

	isFavorited := false
	if userID, exists := c.Get("user_id"); exists {
		var favorite models.Favorite
		err := db.DB.First(&favorite, "user_id = ? AND illustration_id = ?", userID, illustrationID).Error
		isFavorited = err == nil
	}

	c.JSON(http.StatusOK, gin.H{
		"illustration": illustration,
		"isFavorited":  isFavorited,
	})
}

// @Summary Create an illustration
// @Description Create a new illustration (illustrator role required)
// @Tags illustrations
// @Accept multipart/form-data
// @Produce json
// @Param title formData string true "Title"
// @Param description formData string false "Description"
// @Param categoryId formData string false "Category ID"
// @Param tags formData string false "JSON array of tag IDs"
// @Param isFree formData boolean false "Is the illustration free"
// @Param status formData string false "draft, published or private"
// @Param image formData file true "Image file (jpeg, png or webp, 20MB max)"
// @Security BearerAuth
// @Success 201 {object} map[string]interface{} "illustration"
// @Failure 400 {object} map[string]string "error: Invalid input"
// @Failure 401 {object} map[string]string "error: Unauthorized"
// @Failure 403 {object} map[string]string "error: Illustrator role required"
// @Failure 500 {object} map[string]string "error: Error message"
// @Router /illustrations [post]
func CreateIllustration(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found in token"})
		return
	}

	role, _ := c.Get("user_role")
	if !models.Role(role.(string)).AtLeast(models.IllustratorRole) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Illustrator role required"})
		return
	}

	title := c.Request.FormValue("title")
	if title == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Title is required"})
		return
	}

	file, err := c.FormFile("image")
	if err != nil || file == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Image is required"})
		return
	}

	mimeType := file.Header.Get("Content-Type")
	if _, ok := allowedMimeTypes[mimeType]; !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unsupported image format, use jpeg, png or webp"})
		return
	}

	if file.Size > maxImageSize {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Image too large (20MB max)"})
		return
	}

	status := models.IllustrationStatus(c.Request.FormValue("status"))
	if status == "" {
		status = models.IllustrationDraft
	}
	if !status.IsValid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status"})
		return
	}

	illustration := models.Illustration{
		UserID:      userID.(string),
		Title:       title,
		Description: c.Request.FormValue("description"),
		FileSize:    file.Size,
		MimeType:    mimeType,
		IsFree:      c.Request.FormValue("isFree") == "true",
		Status:      status,
	}

	if categoryID := c.Request.FormValue("categoryId"); categoryID != "" {
		var category models.Category
		if err := db.DB.First(&category, "id = ?", categoryID).Error; err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Category not found"})
			return
		}
		illustration.CategoryID = &category.ID
	}

	imageURL, err := utils.UploadImage(file, "illustrations", "illustration")
	if err != nil {
		if !errors.Is(err, utils.ErrStorageNotConfigured) {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error uploading image: " + err.Error()})
			return
		}
		// Stockage non configuré : URL de substitution, le stockage réel est
		// hors périmètre
		imageURL = fmt.Sprintf("https://example.com/images/%d-%s", time.Now().UnixNano(), file.Filename)
	}
	illustration.ImageURL = imageURL
	illustration.ThumbnailURL = imageURL

	if tagsStr := c.Request.FormValue("tags"); tagsStr != "" {
		var tagIDs []string
		if err := json.Unmarshal([]byte(tagsStr), &tagIDs); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid tags format: " + err.Error()})
			return
		}
		if len(tagIDs) > 0 {
			var tags []models.Tag
			if err := db.DB.Where("id IN ?", tagIDs).Find(&tags).Error; err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Error finding tags: " + err.Error()})
				return
			}
			illustration.Tags = tags
		}
	}

	if err := db.DB.Create(&illustration).Error; err != nil {
		utils.LogErrorWithUser(userID, err, "Erreur lors de la création dans CreateIllustration")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error creating illustration: " + err.Error()})
		return
	}

	if err := db.DB.Preload("User").Preload("Category").Preload("Tags").
		First(&illustration, "id = ?", illustration.ID).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error retrieving created illustration: " + err.Error()})
		return
	}

	utils.LogSuccessWithUser(userID, "Illustration créée dans CreateIllustration")
	c.JSON(http.StatusCreated, gin.H{
		"message":      "Illustration created successfully",
		"illustration": illustration,
	})
}

// @Summary Update an illustration
// @Description Update an illustration (owner or admin only). Tags are replaced as a whole set.
// @Tags illustrations
// @Accept json
// @Produce json
// @Param id path string true "Illustration ID"
// @Param illustration body models.IllustrationUpdate true "Fields to update"
// @Security BearerAuth
// @Success 200 {object} map[string]interface{} "illustration"
// @Failure 400 {object} map[string]string "error: Invalid input"
// @Failure 401 {object} map[string]string "error: Unauthorized"
// @Failure 403 {object} map[string]string "error: Not authorized"
// @Failure 404 {object} map[string]string "error: Illustration not found"
// @Router /illustrations/{id} [put]
func UpdateIllustration(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found in token"})
		return
	}

	var illustration models.Illustration
	illustrationID := c.Param("id")

	if err := db.DB.First(&illustration, "id = ?", illustrationID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Illustration not found"})
		return
	}

	// Seul le propriétaire ou un admin peut modifier
	userRole, _ := c.Get("user_role")
	if illustration.UserID != userID.(string) && userRole.(string) != string(models.AdminRole) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Not authorized to update this illustration"})
		return
	}

	var input models.IllustrationUpdate
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}

	if input.Title != nil {
		if *input.Title == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Title cannot be empty"})
			return
		}
		illustration.Title = *input.Title
	}
	if input.Description != nil {
		illustration.Description = *input.Description
	}
	if input.IsFree != nil {
		illustration.IsFree = *input.IsFree
	}
	if input.Status != nil {
		status := models.IllustrationStatus(*input.Status)
		if !status.IsValid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status"})
			return
		}
		illustration.Status = status
	}
	if input.CategoryID != nil {
		if *input.CategoryID == "" {
			illustration.CategoryID = nil
		} else {
			var category models.Category
			if err := db.DB.First(&category, "id = ?", *input.CategoryID).Error; err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Category not found"})
				return
			}
			illustration.CategoryID = &category.ID
		}
	}

	if err := db.DB.Save(&illustration).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error updating illustration: " + err.Error()})
		return
	}

	// Remplacement complet des tags : on remplace l'ensemble, pas de diff
	if input.Tags != nil {
		var tags []models.Tag
		if len(*input.Tags) > 0 {
			if err := db.DB.Where("id IN ?", *input.Tags).Find(&tags).Error; err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Error finding tags: " + err.Error()})
				return
			}
		}
		if err := db.DB.Model(&illustration).Association("Tags").Replace(&tags); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error updating tags: " + err.Error()})
			return
		}
	}

	if err := db.DB.Preload("User").Preload("Category").Preload("Tags").
		First(&illustration, "id = ?", illustration.ID).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error retrieving updated illustration: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":      "Illustration updated successfully",
		"illustration": illustration,
	})
}

// @Summary Delete an illustration
// @Description Delete an illustration (owner or admin only), cascading favorites, download history and tag links
// @Tags illustrations
// @Produce json
// @Param id path string true "Illustration ID"
// @Security BearerAuth
// @Success 200 {object} map[string]string "message: Illustration deleted successfully"
// @Failure 401 {object} map[string]string "error: Unauthorized"
// @Failure 403 {object} map[string]string "error: Not authorized"
// @Failure 404 {object} map[string]string "error: Illustration not found"
// @Router /illustrations/{id} [delete]
func DeleteIllustration(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found in token"})
		return
	}

	var illustration models.Illustration
	illustrationID := c.Param("id")

	if err := db.DB.First(&illustration, "id = ?", illustrationID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Illustration not found"})
		return
	}

	userRole, _ := c.Get("user_role")
	if illustration.UserID != userID.(string) && userRole.(string) != string(models.AdminRole) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Not authorized to delete this illustration"})
		return
	}

	if illustration.ImageURL != "" {
		_ = utils.DeleteImage(illustration.ImageURL)
	}

	if err := db.DB.Where("illustration_id = ?", illustration.ID).Delete(&models.Favorite{}).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error removing favorites: " + err.Error()})
		return
	}

	if err := db.DB.Where("illustration_id = ?", illustration.ID).Delete(&models.DownloadHistory{}).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error removing download history: " + err.Error()})
		return
	}

	if err := db.DB.Model(&illustration).Association("Tags").Clear(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error removing illustration tags: " + err.Error()})
		return
	}

	if err := db.DB.Delete(&illustration).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error deleting illustration: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Illustration deleted successfully"})
}

// @Summary List my illustrations
// @Description Paginated list of the authenticated illustrator's own works, drafts included
// @Tags illustrations
// @Produce json
// @Param page query int false "Page number"
// @Param limit query int false "Items per page"
// @Param status query string false "Filter by status"
// @Security BearerAuth
// @Success 200 {object} map[string]interface{} "illustrations, pagination"
// @Failure 401 {object} map[string]string "error: Unauthorized"
// @Router /my/illustrations [get]
func GetMyIllustrations(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found in token"})
		return
	}

	page, limit := parsePagination(c)

	query := db.DB.Model(&models.Illustration{}).Where("user_id = ?", userID)
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error retrieving illustrations"})
		return
	}

	var illustrations []models.Illustration
	err := query.
		Preload("Category").
		Preload("Tags").
		Order(orderClause(c)).
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&illustrations).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error retrieving illustrations"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"illustrations": illustrations,
		"pagination":    buildPagination(page, limit, total),
	})
}

// @Summary My illustration statistics
// @Description Aggregate counters over the authenticated illustrator's works
// @Tags illustrations
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} map[string]string "error: Unauthorized"
// @Router /my/illustrations/stats [get]
func GetMyStats(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found in token"})
		return
	}

	var total, published, draft, private int64
	db.DB.Model(&models.Illustration{}).Where("user_id = ?", userID).Count(&total)
	db.DB.Model(&models.Illustration{}).Where("user_id = ? AND status = ?", userID, models.IllustrationPublished).Count(&published)
	db.DB.Model(&models.Illustration{}).Where("user_id = ? AND status = ?", userID, models.IllustrationDraft).Count(&draft)
	db.DB.Model(&models.Illustration{}).Where("user_id = ? AND status = ?", userID, models.IllustrationPrivate).Count(&private)

	type counterSums struct {
		Views     int64
		Downloads int64
		Favorites int64
	}
	var sums counterSums
	db.DB.Model(&models.Illustration{}).
		Where("user_id = ?", userID).
		Select("COALESCE(SUM(view_count),0) as views, COALESCE(SUM(download_count),0) as downloads, COALESCE(SUM(favorite_count),0) as favorites").
		Scan(&sums)

	var recent int64
	db.DB.Model(&models.Illustration{}).
		Where("user_id = ? AND created_at > ?", userID, time.Now().AddDate(0, 0, -30)).
		Count(&recent)

	var popular []models.Illustration
	db.DB.Where("user_id = ?", userID).
		Order("view_count DESC").
		Limit(5).
		Find(&popular)

	c.JSON(http.StatusOK, gin.H{
		"totalIllustrations":     total,
		"publishedIllustrations": published,
		"draftIllustrations":     draft,
		"privateIllustrations":   private,
		"totalViews":             sums.Views,
		"totalDownloads":         sums.Downloads,
		"totalFavorites":         sums.Favorites,
		"recentIllustrations":    recent,
		"popularIllustrations":   popular,
	})
}
