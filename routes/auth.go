package routes

import (
	"illusly-backend/handlers/auth"
	"illusly-backend/middleware"

	"github.com/gin-gonic/gin"
)

func AuthRoutes(r *gin.Engine) {
	authRoutes := r.Group("/auth")
	authRoutes.Use(middleware.JWTAuth())
	{
		authRoutes.GET("/role", auth.GetUserRole)
		authRoutes.POST("/role", auth.UpdateUserRole)
	}
}
