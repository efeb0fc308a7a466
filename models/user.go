package models

import (
	"time"
)

// Role représente le niveau d'accès d'un utilisateur

type Role string

const (
	UserRole        Role = "USER"
	IllustratorRole Role = "ILLUSTRATOR"
	AdminRole       Role = "ADMIN"
)

// rank place les rôles sur une échelle totalement ordonnée
func (r Role) rank() int {
	switch r {
	case AdminRole:
		return 2
	case IllustratorRole:
		return 1
	case UserRole:
		return 0
	default:
		return -1
	}
}

// AtLeast indique si le rôle couvre le rôle requis (un admin hérite de tout)
func (r Role) AtLeast(required Role) bool {
	return r.rank() >= required.rank() && required.rank() >= 0
}

// IsValid indique si la valeur correspond à un rôle connu
func (r Role) IsValid() bool {
	return r.rank() >= 0
}

type User struct {
	ID             string    `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	ProviderUserID string    `json:"providerUserId" gorm:"column:provider_user_id;uniqueIndex;not null"`
	Email          string    `json:"email"`
	UserName       string    `json:"username"`
	Role           Role      `json:"role" gorm:"type:varchar(20);default:'USER'"`
	IsVerified     bool      `json:"isVerified"`
	Bio            string    `json:"bio"`
	ProfilePicture string    `json:"profilePicture"`
	Website        string    `json:"website"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

type UserProfileUpdate struct {
	UserName       *string `json:"username"`
	Bio            *string `json:"bio"`
	ProfilePicture *string `json:"profilePicture"`
	Website        *string `json:"website"`
}

func (User) TableName() string {
	return "users"
}
