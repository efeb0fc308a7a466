package main

import (
	"log"

	"illusly-backend/db"
	_ "illusly-backend/docs"
	"illusly-backend/routes"
	"illusly-backend/utils"

	"github.com/gin-gonic/gin"
)

// @title API Illusly Backend
// @version 1.0
// @description API du marché d'illustrations Illusly
// @host localhost:8080
// @BasePath /
// @SecurityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Entrez le JWT avec le préfixe Bearer: Bearer <JWT>
func main() {

	gin.SetMode(gin.ReleaseMode)

	// Initialiser la base de données
	db.InitDB()

	// Initialiser Cloudinary
	if err := utils.InitCloudinary(); err != nil {
		log.Printf("Avertissement: Initialisation de Cloudinary a échoué: %v", err)
		log.Println("Les images utiliseront des URLs de substitution.")
	}

	r := routes.SetupRouter()

	if err := r.Run(":8080"); err != nil {
		log.Fatal("Erreur lors du démarrage du serveur:", err)
	}
}
