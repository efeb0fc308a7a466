package routes

import (
	"illusly-backend/handlers/tags"
	"illusly-backend/middleware"

	"github.com/gin-gonic/gin"
)

func TagsRoutes(r *gin.Engine) {
	r.GET("/tags", tags.GetAllTags)

	tagsPrivateRoutes := r.Group("/tags")
	tagsPrivateRoutes.Use(middleware.JWTAuth())
	tagsPrivateRoutes.Use(middleware.AdminAuth())
	{
		tagsPrivateRoutes.POST("", tags.CreateTag)
		tagsPrivateRoutes.DELETE("/:id", tags.DeleteTag)
	}
}
