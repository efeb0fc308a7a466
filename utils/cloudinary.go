package utils

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"os"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/google/uuid"
)

var cld *cloudinary.Cloudinary

// ErrStorageNotConfigured signale que l'hébergement d'images n'est pas
// configuré ; l'appelant peut alors retomber sur des URL de substitution.
var ErrStorageNotConfigured = errors.New("cloudinary is not configured")

// InitCloudinary initialise la connexion à Cloudinary
func InitCloudinary() error {
	cloudName := os.Getenv("CLOUDINARY_CLOUD_NAME")
	apiKey := os.Getenv("CLOUDINARY_API_KEY")
	apiSecret := os.Getenv("CLOUDINARY_API_SECRET")

	if cloudName == "" || apiKey == "" || apiSecret == "" {
		return ErrStorageNotConfigured
	}

	var err error
	cld, err = cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return fmt.Errorf("erreur lors de l'initialisation de Cloudinary: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if _, err = cld.Admin.Ping(ctx); err != nil {
		return fmt.Errorf("erreur lors de la vérification de la connexion à Cloudinary: %v", err)
	}

	LogSuccess("Cloudinary initialisé, connexion vérifiée")
	return nil
}

func boolPointer(b bool) *bool {
	return &b
}

// UploadImage télécharge une image vers Cloudinary et renvoie son URL
func UploadImage(file *multipart.FileHeader, folder string, prefix string) (string, error) {
	if cld == nil {
		return "", ErrStorageNotConfigured
	}

	src, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("erreur lors de l'ouverture du fichier: %v", err)
	}
	defer src.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	publicID := fmt.Sprintf("%s_%s", prefix, uuid.NewString())

	uploadResult, err := cld.Upload.Upload(ctx, src, uploader.UploadParams{
		Folder:         folder,
		PublicID:       publicID,
		UseFilename:    boolPointer(true),
		UniqueFilename: boolPointer(true),
		Overwrite:      boolPointer(true),
		ResourceType:   "image",
	})
	if err != nil {
		return "", fmt.Errorf("erreur lors du téléchargement vers Cloudinary: %v", err)
	}

	if uploadResult.SecureURL == "" {
		// Réponse sans URL sécurisée : on reconstruit à partir du PublicID
		if uploadResult.PublicID != "" {
			cloudName := os.Getenv("CLOUDINARY_CLOUD_NAME")
			return fmt.Sprintf("https://res.cloudinary.com/%s/image/upload/%s",
				cloudName, uploadResult.PublicID), nil
		}
		return "", fmt.Errorf("URL sécurisée vide dans la réponse de Cloudinary")
	}

	return uploadResult.SecureURL, nil
}

// DeleteImage supprime une image hébergée ; sans configuration c'est un no-op
func DeleteImage(publicURL string) error {
	if cld == nil || publicURL == "" {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := cld.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: publicURL})
	return err
}
