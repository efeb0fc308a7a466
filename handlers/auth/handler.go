package auth

import (
	"net/http"

	"illusly-backend/db"
	"illusly-backend/models"
	"illusly-backend/utils"

	"github.com/gin-gonic/gin"
)

type RoleUpdate struct {
	Role string `json:"role" binding:"required"`
}

// @Summary Get the current user's role
// @Description Return the role of the authenticated user with convenience flags
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{} "role, isIllustrator, isAdmin"
// @Failure 401 {object} map[string]string "error: Unauthorized"
// @Router /auth/role [get]
func GetUserRole(c *gin.Context) {
	role, exists := c.Get("user_role")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	userRole := models.Role(role.(string))
	c.JSON(http.StatusOK, gin.H{
		"role":          userRole,
		"isIllustrator": userRole.AtLeast(models.IllustratorRole),
		"isAdmin":       userRole == models.AdminRole,
	})
}

// @Summary Register as an illustrator
// @Description Self-service role upgrade. Only the USER -> ILLUSTRATOR transition is allowed; the admin role can never be requested here.
// @Tags auth
// @Accept json
// @Produce json
// @Param role body RoleUpdate true "Requested role"
// @Security BearerAuth
// @Success 200 {object} map[string]string "role: new role"
// @Failure 400 {object} map[string]string "error: Invalid role / already registered"
// @Failure 401 {object} map[string]string "error: Unauthorized"
// @Failure 403 {object} map[string]string "error: Cannot set admin role directly"
// @Router /auth/role [post]
func UpdateUserRole(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var input RoleUpdate
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}

	requested := models.Role(input.Role)
	if !requested.IsValid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid role"})
		return
	}

	// Le rôle admin ne passe jamais par ce chemin, même pour un admin
	if requested == models.AdminRole {
		utils.LogErrorWithUser(userID, nil, "Tentative d'escalade vers ADMIN dans UpdateUserRole")
		c.JSON(http.StatusForbidden, gin.H{"error": "Cannot set admin role directly"})
		return
	}

	if requested != models.IllustratorRole {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Only the illustrator role can be requested"})
		return
	}

	currentRole, _ := c.Get("user_role")
	if models.Role(currentRole.(string)) != models.UserRole {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Already registered as illustrator"})
		return
	}

	err := db.DB.Model(&models.User{}).Where("id = ?", userID).Update("role", requested).Error
	if err != nil {
		utils.LogErrorWithUser(userID, err, "Erreur lors de la mise à jour du rôle dans UpdateUserRole")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update role"})
		return
	}

	utils.LogSuccessWithUser(userID, "Rôle illustrateur attribué dans UpdateUserRole")
	c.JSON(http.StatusOK, gin.H{
		"message": "Role updated successfully",
		"role":    requested,
	})
}
