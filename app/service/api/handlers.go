package api

import (
	"errors"
	"strings"

	"recipechat/app/service/store"

	"github.com/gofiber/fiber/v2"
)

func (s *Server) parseBody(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body.")
	}

	if err := s.validate.Struct(out); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Missing or invalid fields: "+err.Error())
	}

	return nil
}

func emailQuery(c *fiber.Ctx) (string, error) {
	email := strings.TrimSpace(c.Query("email"))
	if email == "" {
		return "", fiber.NewError(fiber.StatusBadRequest, "Email is required.")
	}

	return email, nil
}

func (s *Server) healthz(c *fiber.Ctx) error {
	return c.JSON(StatusResponse{
		Status: "ok",
	})
}

func (s *Server) signup(c *fiber.Ctx) error {
	var req store.SignupRequest
	if err := s.parseBody(c, &req); err != nil {
		return err
	}

	userID, err := s.store.CreateUser(c.UserContext(), req)
	if err != nil {
		if errors.Is(err, store.ErrUserExists) {
			return fiber.NewError(fiber.StatusConflict, "Email already registered")
		}
		return err
	}

	return c.JSON(SignupResponse{
		Message: "User created successfully",
		UserID:  userID,
	})
}

func (s *Server) login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := s.parseBody(c, &req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Email and password are required.")
	}

	if err := s.store.Authenticate(c.UserContext(), req.Email, req.Password); err != nil {
		if errors.Is(err, store.ErrInvalidCredentials) {
			return fiber.NewError(fiber.StatusUnauthorized, "Invalid email or password.")
		}
		return err
	}

	return c.JSON(LoginResponse{
		Message: "Login successful",
		Email:   strings.ToLower(strings.TrimSpace(req.Email)),
	})
}

func (s *Server) getProfile(c *fiber.Ctx) error {
	email, err := emailQuery(c)
	if err != nil {
		return err
	}

	profile, err := s.store.LoadProfile(c.UserContext(), email)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "User not found.")
		}
		return err
	}

	return c.JSON(ProfileResponse{
		Name:      profile.Name,
		Likes:     profile.Likes,
		Dislikes:  profile.Dislikes,
		Allergies: profile.Allergies,
	})
}

func (s *Server) updateProfile(c *fiber.Ctx) error {
	var req UpdateProfileRequest
	if err := s.parseBody(c, &req); err != nil {
		return err
	}

	err := s.store.UpdateField(c.UserContext(), req.Email, store.Field(req.Field), req.UpdatedList)
	switch {
	case errors.Is(err, store.ErrUserNotFound):
		return fiber.NewError(fiber.StatusNotFound, "User not found.")
	case errors.Is(err, store.ErrUnknownField):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case err != nil:
		return err
	}

	return c.JSON(StatusResponse{
		Status: "success",
	})
}

func (s *Server) addFavorite(c *fiber.Ctx) error {
	var req AddFavoriteRequest
	if err := s.parseBody(c, &req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Missing data.")
	}

	status, err := s.store.AddFavorite(c.UserContext(), req.Email, req.Title, req.Recipe)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "User not found.")
		}
		return err
	}

	message := "Recipe added to favourites."
	if status == store.FavoriteExists {
		message = "Recipe already in favourites."
	}

	return c.JSON(StatusResponse{
		Status:  string(status),
		Message: message,
	})
}

func (s *Server) getFavorites(c *fiber.Ctx) error {
	email, err := emailQuery(c)
	if err != nil {
		return err
	}

	favorites, err := s.store.Favorites(c.UserContext(), email)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "User not found or no favorites.")
		}
		return err
	}

	return c.JSON(FavoritesResponse{
		Favourites: favorites,
	})
}

func (s *Server) getChatLogs(c *fiber.Ctx) error {
	email, err := emailQuery(c)
	if err != nil {
		return err
	}

	logs, err := s.store.ChatLogs(c.UserContext(), email)
	if err != nil {
		return err
	}

	return c.JSON(ChatLogsResponse{
		Chats: logs,
	})
}

func (s *Server) transcribeAudio(c *fiber.Ctx) error {
	if !s.transcriber.Enabled() {
		return fiber.NewError(fiber.StatusServiceUnavailable, "Transcription is not configured.")
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Audio file is required.")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Audio file is unreadable.")
	}
	defer file.Close()

	text, err := s.transcriber.Transcribe(c.UserContext(), fileHeader.Filename, file)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Transcription failed: "+err.Error())
	}

	return c.JSON(TranscribeResponse{
		Text: text,
	})
}
