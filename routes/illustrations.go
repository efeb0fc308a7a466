package routes

import (
	"illusly-backend/handlers/illustrations"
	"illusly-backend/handlers/illustrations/downloads"
	"illusly-backend/handlers/illustrations/favorites"
	"illusly-backend/middleware"

	"github.com/gin-gonic/gin"
)

func IllustrationsRoutes(r *gin.Engine) {
	// Routes publiques, l'authentification optionnelle alimente isFavorited
	r.GET("/illustrations", illustrations.GetAllIllustrations)
	r.GET("/illustrations/:id", middleware.OptionalAuth(), illustrations.GetIllustrationByID)

	// Routes protégées
	illustrationsRoutes := r.Group("/illustrations")
	illustrationsRoutes.Use(middleware.JWTAuth())
	{
		illustrationsRoutes.POST("", illustrations.CreateIllustration)
		illustrationsRoutes.PUT("/:id", illustrations.UpdateIllustration)
		illustrationsRoutes.DELETE("/:id", illustrations.DeleteIllustration)

		// Interactions
		illustrationsRoutes.POST("/:id/favorite", favorites.AddFavorite)
		illustrationsRoutes.DELETE("/:id/favorite", favorites.RemoveFavorite)
		illustrationsRoutes.POST("/:id/download", downloads.DownloadIllustration)
	}

	// Espace personnel
	myRoutes := r.Group("/my")
	myRoutes.Use(middleware.JWTAuth())
	{
		myRoutes.GET("/illustrations", illustrations.GetMyIllustrations)
		myRoutes.GET("/illustrations/stats", illustrations.GetMyStats)
	}

	favoritesRoutes := r.Group("/favorites")
	favoritesRoutes.Use(middleware.JWTAuth())
	favoritesRoutes.GET("", favorites.GetMyFavorites)

	downloadsRoutes := r.Group("/downloads")
	downloadsRoutes.Use(middleware.JWTAuth())
	downloadsRoutes.GET("", downloads.GetMyDownloads)
}
