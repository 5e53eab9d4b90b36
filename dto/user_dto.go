package dto

import "github.com/olenaliuby/social-media-api/models"

// UserDTO never carries the password hash.
type UserDTO struct {
	ID       uint   `json:"id"`
	Email    string `json:"email"`
	IsActive bool   `json:"is_active"`
}

func User(u *models.User) UserDTO {
	return UserDTO{ID: u.ID, Email: u.Email, IsActive: u.IsActive}
}
