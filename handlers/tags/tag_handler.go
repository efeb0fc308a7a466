package tags

import (
	"net/http"
	"os"

	"illusly-backend/db"
	"illusly-backend/handlers/categories"
	"illusly-backend/models"
	"illusly-backend/utils"

	"github.com/gin-gonic/gin"
)

// @Summary Get all tags
// @Description Retrieve all tags ordered by name
// @Tags tags
// @Produce json
// @Success 200 {array} models.Tag
// @Failure 500 {object} map[string]string "error: Error message"
// @Router /tags [get]
func GetAllTags(c *gin.Context) {
	var tags []models.Tag

	result := db.DB.Order("name ASC").Find(&tags)
	if result.Error != nil {
		if os.Getenv("VERCEL") != "" {
			c.JSON(http.StatusOK, []models.Tag{})
			return
		}
		utils.LogError(result.Error, "Erreur lors de la récupération des tags dans GetAllTags")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": result.Error.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, tags)
}

// @Summary Create a new tag
// @Description Create a new tag (admin only)
// @Tags tags
// @Accept json
// @Produce json
// @Param tag body models.TagCreate true "Tag information"
// @Security BearerAuth
// @Success 201 {object} models.Tag
// @Failure 400 {object} map[string]string "error: Invalid input"
// @Failure 401 {object} map[string]string "error: Unauthorized"
// @Failure 403 {object} map[string]string "error: Forbidden"
// @Failure 500 {object} map[string]string "error: Error message"
// @Router /tags [post]
func CreateTag(c *gin.Context) {
	var tagCreate models.TagCreate
	if err := c.ShouldBindJSON(&tagCreate); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid input: " + err.Error(),
		})
		return
	}

	var existingTag models.Tag
	if err := db.DB.First(&existingTag, "name = ?", tagCreate.Name).Error; err == nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Tag already exists",
		})
		return
	}

	slug := tagCreate.Slug
	if slug == "" {
		slug = categories.Slugify(tagCreate.Name)
	}

	tag := models.Tag{
		Name: tagCreate.Name,
		Slug: slug,
	}

	if err := db.DB.Create(&tag).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Error creating tag: " + err.Error(),
		})
		return
	}

	c.JSON(http.StatusCreated, tag)
}

// @Summary Delete a tag
// @Description Delete a tag by its ID (admin only). Links to illustrations are removed.
// @Tags tags
// @Produce json
// @Param id path string true "Tag ID"
// @Security BearerAuth
// @Success 200 {object} map[string]string "message: Tag deleted successfully"
// @Failure 401 {object} map[string]string "error: Unauthorized"
// @Failure 404 {object} map[string]string "error: Tag not found"
// @Failure 500 {object} map[string]string "error: Error message"
// @Router /tags/{id} [delete]
func DeleteTag(c *gin.Context) {
	tagID := c.Param("id")

	var tag models.Tag
	if err := db.DB.First(&tag, "id = ?", tagID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Tag not found"})
		return
	}

	if err := db.DB.Exec("DELETE FROM illustration_tags WHERE tag_id = ?", tagID).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Error detaching tag: " + err.Error(),
		})
		return
	}

	if err := db.DB.Delete(&tag).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Error deleting tag: " + err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Tag deleted successfully"})
}
