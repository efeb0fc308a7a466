package users

import (
	"net/http"
	"time"

	"illusly-backend/db"
	"illusly-backend/models"
	"illusly-backend/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// @Summary Get my profile
// @Description Retrieve the authenticated user's profile
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} utils.Response
// @Failure 401 {object} utils.Response
// @Failure 404 {object} utils.Response
// @Router /users/profile [get]
func GetMyProfile(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		utils.SendError(c, http.StatusUnauthorized, "User not found in token")
		return
	}

	var user models.User
	if err := db.DB.First(&user, "id = ?", userID).Error; err != nil {
		utils.SendError(c, http.StatusNotFound, "User not found")
		return
	}

	utils.SendSuccess(c, http.StatusOK, "Profile retrieved successfully", user)
}

// @Summary Update my profile
// @Description Update the authenticated user's profile fields
// @Tags users
// @Accept json
// @Produce json
// @Param profile body models.UserProfileUpdate true "Fields to update"
// @Security BearerAuth
// @Success 200 {object} utils.Response
// @Failure 400 {object} utils.Response
// @Failure 401 {object} utils.Response
// @Router /users/profile [put]
func UpdateMyProfile(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		utils.SendError(c, http.StatusUnauthorized, "User not found in token")
		return
	}

	var user models.User
	if err := db.DB.First(&user, "id = ?", userID).Error; err != nil {
		utils.SendError(c, http.StatusNotFound, "User not found")
		return
	}

	var input models.UserProfileUpdate
	if !utils.ValidateRequestBody(c, &input) {
		return
	}

	if input.UserName != nil {
		user.UserName = *input.UserName
	}
	if input.Bio != nil {
		user.Bio = *input.Bio
	}
	if input.ProfilePicture != nil {
		user.ProfilePicture = *input.ProfilePicture
	}
	if input.Website != nil {
		user.Website = *input.Website
	}

	if err := db.DB.Save(&user).Error; err != nil {
		utils.SendError(c, http.StatusInternalServerError, "Error updating profile: "+err.Error())
		return
	}

	utils.LogSuccessWithUser(userID, "Profil mis à jour dans UpdateMyProfile")
	utils.SendSuccess(c, http.StatusOK, "Profile updated successfully", user)
}

// @Summary Get all users
// @Description Retrieve all users (admin only)
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{} "users"
// @Failure 401 {object} map[string]string "error: Unauthorized"
// @Failure 403 {object} map[string]string "error: Forbidden"
// @Failure 500 {object} map[string]string "error: Error message"
// @Router /users [get]
func GetAllUsers(c *gin.Context) {
	var users []models.User

	result := db.DB.Order("created_at DESC").Find(&users)
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Error retrieving users: " + result.Error.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"users": users})
}

// @Summary Delete my account
// @Description Delete the authenticated user's account and all owned data. Refused with 409 while a subscription still grants access and no cancellation is scheduled.
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]string "message"
// @Failure 401 {object} map[string]string "error: Unauthorized"
// @Failure 409 {object} map[string]string "error: Active subscription"
// @Failure 500 {object} map[string]string "error: Error message"
// @Router /account/delete [post]
func DeleteAccount(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found in token"})
		return
	}

	// Un abonnement encore actif sans annulation programmée bloque la
	// suppression : l'utilisateur doit d'abord résilier. Avec une annulation
	// programmée on accepte, la fin de période restante est abandonnée.
	forfeiting := false
	var sub models.Subscription
	if err := db.DB.First(&sub, "user_id = ?", userID).Error; err == nil {
		now := time.Now()
		if sub.Entitled(now) && !sub.CancelScheduled() {
			c.JSON(http.StatusConflict, gin.H{
				"error": "Cancel your subscription before deleting your account",
			})
			return
		}
		forfeiting = sub.Entitled(now)
	}

	err := db.DB.Transaction(func(tx *gorm.DB) error {
		// Données rattachées aux illustrations possédées
		ownedIllustrations := tx.Model(&models.Illustration{}).
			Select("id").
			Where("user_id = ?", userID)

		if err := tx.Exec("DELETE FROM illustration_tags WHERE illustration_id IN (?)", ownedIllustrations).Error; err != nil {
			return err
		}
		if err := tx.Where("illustration_id IN (?)", ownedIllustrations).Delete(&models.Favorite{}).Error; err != nil {
			return err
		}
		if err := tx.Where("illustration_id IN (?)", ownedIllustrations).Delete(&models.DownloadHistory{}).Error; err != nil {
			return err
		}

		// Données propres à l'utilisateur
		if err := tx.Where("user_id = ?", userID).Delete(&models.Favorite{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", userID).Delete(&models.DownloadHistory{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", userID).Delete(&models.Illustration{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", userID).Delete(&models.Subscription{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", userID).Delete(&models.User{}).Error
	})
	if err != nil {
		utils.LogErrorWithUser(userID, err, "Erreur lors de la suppression dans DeleteAccount")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error deleting account: " + err.Error()})
		return
	}

	utils.LogSuccessWithUser(userID, "Compte supprimé dans DeleteAccount")

	message := "Account deleted successfully"
	if forfeiting {
		message = "Account deleted, the remaining paid period is forfeited"
	}
	c.JSON(http.StatusOK, gin.H{"message": message})
}
