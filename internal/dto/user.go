package dto

import "github.com/kimshinchol/nnponline-sub000/internal/models"

// UserDTO represents a user in API responses
type UserDTO struct {
	ID         uint64      `json:"id"`
	Username   string      `json:"username"`
	Email      string      `json:"email"`
	Team       models.Team `json:"team"`
	IsAdmin    bool        `json:"is_admin"`
	IsApproved bool        `json:"is_approved"`
}

// ToUserDTO converts a User model to UserDTO
func ToUserDTO(user models.User) UserDTO {
	return UserDTO{
		ID:         user.ID,
		Username:   user.Username,
		Email:      user.Email,
		Team:       user.Team,
		IsAdmin:    user.IsAdmin,
		IsApproved: user.IsApproved,
	}
}

// ToUserDTOs converts a slice of users
func ToUserDTOs(users []models.User) []UserDTO {
	dtos := make([]UserDTO, len(users))
	for i, u := range users {
		dtos[i] = ToUserDTO(u)
	}
	return dtos
}
