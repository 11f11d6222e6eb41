package api

import (
	"recipechat/app/model"
	"recipechat/app/service/store"
)

type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	Message string `json:"message"`
	Email   string `json:"email"`
}

type SignupResponse struct {
	Message string `json:"message"`
	UserID  string `json:"user_id"`
}

type ProfileResponse struct {
	Name      string   `json:"name"`
	Likes     []string `json:"likes"`
	Dislikes  []string `json:"dislikes"`
	Allergies []string `json:"allergies"`
}

type UpdateProfileRequest struct {
	Email       string   `json:"email" validate:"required"`
	Field       string   `json:"field" validate:"required,oneof=likes dislikes allergies"`
	UpdatedList []string `json:"updatedList"`
}

type AddFavoriteRequest struct {
	Email  string `json:"email" validate:"required"`
	Title  string `json:"title" validate:"required"`
	Recipe string `json:"recipe" validate:"required"`
}

type StatusResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

type FavoritesResponse struct {
	Favourites []model.Recipe `json:"favourites"`
}

type ChatLogsResponse struct {
	Chats []store.ChatLog `json:"chats"`
}

type TranscribeResponse struct {
	Text string `json:"text"`
}

type ErrorResponse struct {
	Detail string `json:"detail"`
}
