package entity

import (
	"time"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type User struct {
	ID          string `json:"id" firestore:"id"`
	Email       string `json:"email" firestore:"email"`
	DisplayName string `json:"display_name" firestore:"displayName"`
	PhotoURL    string `json:"photo_url,omitempty" firestore:"photoURL,omitempty"`
	Provider    string `json:"provider,omitempty" firestore:"provider,omitempty"`
	Role        string `json:"role" firestore:"role"`

	CreatedAt   time.Time `json:"created_at" firestore:"createdAt"`
	LastLoginAt time.Time `json:"last_login_at" firestore:"lastLoginAt"`
	UpdatedAt   time.Time `json:"updated_at" firestore:"updatedAt"`
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

func ValidRole(r string) bool {
	return r == RoleUser || r == RoleAdmin
}
