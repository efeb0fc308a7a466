package models

import (
	"time"
)

// Favorite lie un utilisateur à une illustration, au plus une ligne par paire
type Favorite struct {
	ID             string       `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	UserID         string       `json:"userId" gorm:"type:uuid;not null;uniqueIndex:idx_favorites_user_illustration"`
	IllustrationID string       `json:"illustrationId" gorm:"type:uuid;not null;uniqueIndex:idx_favorites_user_illustration"`
	Illustration   Illustration `json:"illustration" gorm:"foreignKey:IllustrationID"`
	CreatedAt      time.Time    `json:"createdAt"`
}

func (Favorite) TableName() string {
	return "favorites"
}
