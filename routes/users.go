package routes

import (
	"illusly-backend/handlers/users"
	"illusly-backend/middleware"

	"github.com/gin-gonic/gin"
)

func UsersRoutes(r *gin.Engine) {
	usersRoutes := r.Group("/users")
	usersRoutes.Use(middleware.JWTAuth())
	{
		usersRoutes.GET("/profile", users.GetMyProfile)
		usersRoutes.PUT("/profile", users.UpdateMyProfile)
		usersRoutes.GET("", middleware.AdminAuth(), users.GetAllUsers)
	}
}
