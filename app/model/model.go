package model

import "strings"

type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

// ParseGender falls back to male for anything unrecognised, matching how
// profiles without a gender were always addressed.
func ParseGender(s string) Gender {
	if strings.EqualFold(strings.TrimSpace(s), string(GenderFemale)) {
		return GenderFemale
	}

	return GenderMale
}

type Mode string

const (
	ModeText  Mode = "text"
	ModeVoice Mode = "voice"
)

func ParseMode(s string) Mode {
	if strings.EqualFold(strings.TrimSpace(s), string(ModeVoice)) {
		return ModeVoice
	}

	return ModeText
}

// Recipe is a knowledge base entry. Body is passed through untouched.
type Recipe struct {
	Title string `json:"title"`
	Body  string `json:"recipe"`
}

// UserProfile is read-only for the lifetime of a dialogue session.
type UserProfile struct {
	Name       string
	Gender     Gender
	Profession string
	Likes      []string
	Dislikes   []string
	Allergies  []string
	Favorites  []Recipe
}

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "bot"
)

type Turn struct {
	Role Role   `json:"sender"`
	Text string `json:"text"`
}
