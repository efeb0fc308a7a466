package categories

import (
	"net/http"
	"os"
	"regexp"
	"strings"

	"illusly-backend/db"
	"illusly-backend/models"
	"illusly-backend/utils"

	"github.com/gin-gonic/gin"
)

var slugInvalidChars = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify normalise un nom en identifiant URL (minuscules, tirets)
func Slugify(name string) string {
	slug := strings.ToLower(strings.TrimSpace(name))
	slug = slugInvalidChars.ReplaceAllString(slug, "-")
	return strings.Trim(slug, "-")
}

// @Summary Get all categories
// @Description Retrieve all categories ordered by name
// @Tags categories
// @Produce json
// @Success 200 {array} models.Category
// @Failure 500 {object} map[string]string "error: Error message"
// @Router /categories [get]
func GetAllCategories(c *gin.Context) {
	var categories []models.Category

	result := db.DB.Order("name ASC").Find(&categories)
	if result.Error != nil {
		// En environnement serverless on préfère une liste vide à une erreur,
		// la navigation reste utilisable
		if os.Getenv("VERCEL") != "" {
			c.JSON(http.StatusOK, []models.Category{})
			return
		}
		utils.LogError(result.Error, "Erreur lors de la récupération des catégories dans GetAllCategories")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": result.Error.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, categories)
}

// @Summary Create a new category
// @Description Create a new category (admin only)
// @Tags categories
// @Accept json
// @Produce json
// @Param category body models.CategoryCreate true "Category information"
// @Security BearerAuth
// @Success 201 {object} models.Category
// @Failure 400 {object} map[string]string "error: Invalid input"
// @Failure 401 {object} map[string]string "error: Unauthorized"
// @Failure 403 {object} map[string]string "error: Forbidden"
// @Failure 500 {object} map[string]string "error: Error message"
// @Router /categories [post]
func CreateCategory(c *gin.Context) {
	var categoryCreate models.CategoryCreate
	isWellFormatted := c.ShouldBindJSON(&categoryCreate)
	if isWellFormatted != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid input: " + isWellFormatted.Error(),
		})
		return
	}

	var existingCategory models.Category
	resultInCategories := db.DB.First(&existingCategory, "name = ?", categoryCreate.Name)
	if resultInCategories.Error == nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Category already exists",
		})
		return
	}

	slug := categoryCreate.Slug
	if slug == "" {
		slug = Slugify(categoryCreate.Name)
	}

	category := models.Category{
		Name:        categoryCreate.Name,
		Slug:        slug,
		Description: categoryCreate.Description,
		Color:       categoryCreate.Color,
	}

	result := db.DB.Create(&category)
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Error creating category: " + result.Error.Error(),
		})
		return
	}

	c.JSON(http.StatusCreated, category)
}

// @Summary Update a category
// @Description Update a category by its ID (admin only)
// @Tags categories
// @Accept json
// @Produce json
// @Param id path string true "Category ID"
// @Param category body models.CategoryCreate true "Category information"
// @Security BearerAuth
// @Success 200 {object} models.Category
// @Failure 400 {object} map[string]string "error: Invalid input"
// @Failure 401 {object} map[string]string "error: Unauthorized"
// @Failure 404 {object} map[string]string "error: Category not found"
// @Failure 500 {object} map[string]string "error: Error message"
// @Router /categories/{id} [put]
func UpdateCategory(c *gin.Context) {
	categoryID := c.Param("id")

	var category models.Category
	if err := db.DB.First(&category, "id = ?", categoryID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Category not found"})
		return
	}

	var categoryUpdate models.CategoryCreate
	if err := c.ShouldBindJSON(&categoryUpdate); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid input: " + err.Error(),
		})
		return
	}

	category.Name = categoryUpdate.Name
	if categoryUpdate.Slug != "" {
		category.Slug = categoryUpdate.Slug
	} else {
		category.Slug = Slugify(categoryUpdate.Name)
	}
	category.Description = categoryUpdate.Description
	category.Color = categoryUpdate.Color

	if err := db.DB.Save(&category).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Error updating category: " + err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, category)
}

// @Summary Delete a category
// @Description Delete a category by its ID (admin only). Illustrations keep existing but lose the category link.
// @Tags categories
// @Produce json
// @Param id path string true "Category ID"
// @Security BearerAuth
// @Success 200 {object} map[string]string "message: Category deleted successfully"
// @Failure 401 {object} map[string]string "error: Unauthorized"
// @Failure 404 {object} map[string]string "error: Category not found"
// @Failure 500 {object} map[string]string "error: Error message"
// @Router /categories/{id} [delete]
func DeleteCategory(c *gin.Context) {
	categoryID := c.Param("id")

	var category models.Category
	result := db.DB.First(&category, "id = ?", categoryID)
	if result.Error != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Category not found"})
		return
	}

	// Les illustrations rattachées restent, seule la référence est vidée
	if err := db.DB.Model(&models.Illustration{}).
		Where("category_id = ?", categoryID).
		Update("category_id", nil).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Error detaching illustrations: " + err.Error(),
		})
		return
	}

	if err := db.DB.Delete(&category).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Error deleting category: " + err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Category deleted successfully"})
}
