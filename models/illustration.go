package models

import (
	"time"
)

type IllustrationStatus string

const (
	IllustrationDraft     IllustrationStatus = "draft"
	IllustrationPublished IllustrationStatus = "published"
	IllustrationPrivate   IllustrationStatus = "private"
)

func (s IllustrationStatus) IsValid() bool {
	switch s {
	case IllustrationDraft, IllustrationPublished, IllustrationPrivate:
		return true
	}
	return false
}

type Illustration struct {
	ID            string             `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	UserID        string             `json:"userId" gorm:"type:uuid;not null"`
	User          User               `json:"user" gorm:"foreignKey:UserID"`
	Title         string             `json:"title" binding:"required"`
	Description   string             `json:"description"`
	ImageURL      string             `json:"imageUrl" gorm:"column:image_url"`
	ThumbnailURL  string             `json:"thumbnailUrl" gorm:"column:thumbnail_url"`
	Width         *int               `json:"width"`
	Height        *int               `json:"height"`
	FileSize      int64              `json:"fileSize"`
	MimeType      string             `json:"mimeType"`
	IsFree        bool               `json:"isFree" gorm:"default:false"`
	Status        IllustrationStatus `json:"status" gorm:"type:varchar(20);default:'draft'"`
	ViewCount     int                `json:"viewCount" gorm:"default:0"`
	DownloadCount int                `json:"downloadCount" gorm:"default:0"`
	FavoriteCount int                `json:"favoriteCount" gorm:"default:0"`
	CategoryID    *string            `json:"categoryId" gorm:"type:uuid"`
	Category      *Category          `json:"category,omitempty"`
	Tags          []Tag              `json:"tags" gorm:"many2many:illustration_tags;"`
	CreatedAt     time.Time          `json:"createdAt"`
	UpdatedAt     time.Time          `json:"updatedAt"`
}

type IllustrationUpdate struct {
	Title       *string   `json:"title"`
	Description *string   `json:"description"`
	CategoryID  *string   `json:"categoryId"`
	IsFree      *bool     `json:"isFree"`
	Status      *string   `json:"status"`
	Tags        *[]string `json:"tags"`
}

func (Illustration) TableName() string {
	return "illustrations"
}
