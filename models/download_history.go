package models

import (
	"time"
)

// DownloadHistory est un journal en ajout seul : jamais modifié ni purgé par
// les flux normaux.
type DownloadHistory struct {
	ID             string       `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	UserID         string       `json:"userId" gorm:"type:uuid;not null;index"`
	IllustrationID string       `json:"illustrationId" gorm:"type:uuid;not null;index"`
	Illustration   Illustration `json:"illustration" gorm:"foreignKey:IllustrationID"`
	IPAddress      string       `json:"ipAddress"`
	UserAgent      string       `json:"userAgent"`
	DownloadedAt   time.Time    `json:"downloadedAt" gorm:"autoCreateTime"`
}

func (DownloadHistory) TableName() string {
	return "download_histories"
}
