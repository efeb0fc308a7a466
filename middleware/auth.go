package middleware

import (
	"errors"
	"net/http"
	"strings"

	"illusly-backend/db"
	"illusly-backend/models"
	"illusly-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func extractJwtClaims(c *gin.Context) (jwt.MapClaims, bool) {
	authHeader := c.GetHeader("Authorization")

	if authHeader == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header missing"})
		c.Abort()
		return nil, false
	}

	authHeader = strings.Trim(authHeader, "\"' ")

	if !strings.HasPrefix(strings.ToLower(authHeader), "bearer ") {
		authHeader = "Bearer " + authHeader
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid authorization format, expected: Bearer <token>"})
		c.Abort()
		return nil, false
	}

	tokenString := strings.Trim(parts[1], "\"' ")

	claims, err := utils.DecodeJWT(tokenString)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token: " + err.Error()})
		c.Abort()
		return nil, false
	}

	return claims, true
}

// ResolveUser fait le pont d'identité : il retrouve l'utilisateur local par
// son identifiant fournisseur et le crée au premier passage. La création est
// tolérante aux courses : insert ON CONFLICT DO NOTHING sur la colonne
// unique, puis relecture, pour garantir une seule ligne par identité externe.
func ResolveUser(claims jwt.MapClaims) (*models.User, error) {
	sub, _ := claims["sub"].(string)
	if sub == "" {
		return nil, errors.New("missing subject claim")
	}

	var user models.User
	err := db.DB.First(&user, "provider_user_id = ?", sub).Error
	if err == nil {
		return &user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	email, _ := claims["email"].(string)
	name, _ := claims["name"].(string)
	verified, _ := claims["email_verified"].(bool)

	created := models.User{
		ProviderUserID: sub,
		Email:          email,
		UserName:       name,
		Role:           models.UserRole,
		IsVerified:     verified,
	}

	err = db.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "provider_user_id"}},
		DoNothing: true,
	}).Create(&created).Error
	if err != nil {
		return nil, err
	}

	if err := db.DB.First(&user, "provider_user_id = ?", sub).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func setCurrentUser(c *gin.Context, user *models.User) {
	c.Set("user_id", user.ID)
	c.Set("user_role", string(user.Role))
	c.Set("user_email", user.Email)
	c.Set("user_verified", user.IsVerified)
}

// JWTAuth valide le jeton du fournisseur d'identité et résout l'utilisateur
// local. Tout échec de persistance est renvoyé en 401, jamais en 500.
func JWTAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := extractJwtClaims(c)
		if !ok {
			return
		}

		user, err := ResolveUser(claims)
		if err != nil {
			utils.LogError(err, "Résolution de l'utilisateur impossible dans JWTAuth")
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			c.Abort()
			return
		}

		setCurrentUser(c, user)
		c.Next()
	}
}

// OptionalAuth résout l'utilisateur si un jeton valide est présent, et laisse
// passer la requête anonyme sinon.
func OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.Next()
			return
		}

		tokenString := strings.Trim(strings.TrimPrefix(strings.Trim(authHeader, "\"' "), "Bearer "), "\"' ")
		claims, err := utils.DecodeJWT(tokenString)
		if err != nil {
			c.Next()
			return
		}

		if user, err := ResolveUser(claims); err == nil {
			setCurrentUser(c, user)
		}
		c.Next()
	}
}

func AdminAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := c.Get("user_role")
		if !exists {
			claims, ok := extractJwtClaims(c)
			if !ok {
				return
			}
			user, err := ResolveUser(claims)
			if err != nil {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
				c.Abort()
				return
			}
			setCurrentUser(c, user)
			role = string(user.Role)
		}

		if role != string(models.AdminRole) {
			c.JSON(http.StatusForbidden, gin.H{"error": "Access denied: admin role required"})
			c.Abort()
			return
		}

		c.Next()
	}
}
