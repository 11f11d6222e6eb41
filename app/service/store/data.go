package store

import (
	"errors"
	"time"

	"recipechat/app/model"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrUserExists         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUnknownField       = errors.New("unknown profile field")
)

type FavoriteStatus string

const (
	FavoriteAdded  FavoriteStatus = "success"
	FavoriteExists FavoriteStatus = "exists"
)

type Field string

const (
	FieldLikes     Field = "likes"
	FieldDislikes  Field = "dislikes"
	FieldAllergies Field = "allergies"
)

type SignupRequest struct {
	Email      string   `json:"email" validate:"required,email"`
	Password   string   `json:"password" validate:"required"`
	Gender     string   `json:"gender" validate:"required"`
	Name       string   `json:"name"`
	Profession string   `json:"profession"`
	Likes      []string `json:"likes"`
	Dislikes   []string `json:"dislikes"`
	Allergies  []string `json:"allergies"`
}

// User is one line of users.jsonl.
type User struct {
	ID           string         `json:"id"`
	Email        string         `json:"email"`
	PasswordHash string         `json:"password"`
	Name         string         `json:"name"`
	Gender       string         `json:"gender"`
	Profession   string         `json:"profession"`
	Likes        []string       `json:"likes"`
	Dislikes     []string       `json:"dislikes"`
	Allergies    []string       `json:"allergies"`
	Favorites    []model.Recipe `json:"favorite_recipes"`
	CreatedAt    time.Time      `json:"created_at"`
}

func (u *User) Profile() model.UserProfile {
	return model.UserProfile{
		Name:       u.Name,
		Gender:     model.ParseGender(u.Gender),
		Profession: u.Profession,
		Likes:      u.Likes,
		Dislikes:   u.Dislikes,
		Allergies:  u.Allergies,
		Favorites:  u.Favorites,
	}
}

// ChatLog is one line of chat_logs.jsonl.
type ChatLog struct {
	ID        string       `json:"id"`
	Email     string       `json:"email"`
	Chat      []model.Turn `json:"chat"`
	Timestamp time.Time    `json:"timestamp"`
}
