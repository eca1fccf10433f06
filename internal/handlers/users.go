package handlers

import (
	"context"

	"github.com/danielgtaylor/huma/v2"
	"github.com/the-aether-lab/aether-lab-api/internal/models"
	"gorm.io/gorm"
)

type UserHandler struct {
	db *gorm.DB
}

func NewUserHandler(db *gorm.DB) *UserHandler {
	return &UserHandler{db: db}
}

type ListUsersResponse struct {
	Body struct {
		Users []models.User `json:"users"`
	}
}

func (h *UserHandler) HandleList(ctx context.Context, input *struct{}) (*ListUsersResponse, error) {
	var users []models.User
	if err := h.db.Find(&users).Error; err != nil {
		return nil, huma.Error500InternalServerError("Failed to list users: " + err.Error())
	}

	res := &ListUsersResponse{}
	res.Body.Users = users
	return res, nil
}

type CreateUserRequest struct {
	Body struct {
		Username string `json:"username" required:"true"`
		Email    string `json:"email" required:"true"`
	}
}

type CreateUserResponse struct {
	Body models.User
}

func (h *UserHandler) HandleCreate(ctx context.Context, input *CreateUserRequest) (*CreateUserResponse, error) {
	if input.Body.Username == "" || input.Body.Email == "" {
		return nil, huma.Error400BadRequest("Username and email are required")
	}

	user := models.User{
		Username: input.Body.Username,
		Email:    input.Body.Email,
	}
	if err := h.db.Create(&user).Error; err != nil {
		return nil, huma.Error500InternalServerError("Failed to create user: " + err.Error())
	}

	return &CreateUserResponse{Body: user}, nil
}
