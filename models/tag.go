package models

import (
	"time"
)

type Tag struct {
	ID        string    `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	Name      string    `json:"name" binding:"required" gorm:"uniqueIndex"`
	Slug      string    `json:"slug" gorm:"uniqueIndex"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type TagCreate struct {
	Name string `json:"name" binding:"required"`
	Slug string `json:"slug"`
}

func (Tag) TableName() string {
	return "tags"
}
