package store

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"recipechat/app/config"
	"recipechat/app/model"
	"recipechat/app/util/mylog"

	"github.com/elliotchance/pie/v2"
	"github.com/google/uuid"
	"github.com/samber/do"
	"github.com/samber/oops"
	"golang.org/x/crypto/bcrypt"
)

const (
	usersFile    = "users.jsonl"
	chatLogsFile = "chat_logs.jsonl"

	maxChatLogs = 20
)

type Service struct {
	usersPath    string
	chatLogsPath string
	now          func() time.Time

	mu sync.RWMutex
}

func New(di *do.Injector) (*Service, error) {
	cfg := do.MustInvoke[*config.Config](di)

	return NewService(cfg.Storage.DataDir)
}

func NewService(dataDir string) (*Service, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, oops.In("store").With("dir", dataDir).Wrapf(err, "failed to create data dir")
	}

	s := &Service{
		usersPath:    filepath.Join(dataDir, usersFile),
		chatLogsPath: filepath.Join(dataDir, chatLogsFile),
		now:          time.Now,
	}

	for _, path := range []string{s.usersPath, s.chatLogsPath} {
		file, err := os.OpenFile(path, os.O_RDONLY|os.O_CREATE, 0644)
		if err != nil {
			return nil, oops.In("store").With("path", path).Wrapf(err, "failed to create data file")
		}
		_ = file.Close()
	}

	return s, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *Service) CreateUser(_ context.Context, req SignupRequest) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	email := normalizeEmail(req.Email)

	users, err := readLines[User](s.usersPath)
	if err != nil {
		return "", err
	}

	if pie.Any(users, func(u User) bool { return u.Email == email }) {
		return "", ErrUserExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return "", oops.In("store").Wrapf(err, "failed to hash password")
	}

	user := User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: string(hash),
		Name:         req.Name,
		Gender:       string(model.ParseGender(req.Gender)),
		Profession:   req.Profession,
		Likes:        nonNil(req.Likes),
		Dislikes:     nonNil(req.Dislikes),
		Allergies:    nonNil(req.Allergies),
		Favorites:    []model.Recipe{},
		CreatedAt:    s.now().UTC(),
	}

	if err = appendLine(s.usersPath, user); err != nil {
		return "", err
	}

	slog.Info("Created user", "email", email, "id", user.ID, mylog.TelegramKey, true)

	return user.ID, nil
}

func (s *Service) Authenticate(_ context.Context, email, password string) error {
	user, err := s.findUser(email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return ErrInvalidCredentials
		}
		return err
	}

	if err = bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return ErrInvalidCredentials
	}

	return nil
}

func (s *Service) LoadProfile(_ context.Context, email string) (model.UserProfile, error) {
	user, err := s.findUser(email)
	if err != nil {
		return model.UserProfile{}, err
	}

	return user.Profile(), nil
}

func (s *Service) UpdateField(_ context.Context, email string, field Field, values []string) error {
	return s.updateUser(email, func(user *User) error {
		switch field {
		case FieldLikes:
			user.Likes = nonNil(values)
		case FieldDislikes:
			user.Dislikes = nonNil(values)
		case FieldAllergies:
			user.Allergies = nonNil(values)
		default:
			return fmt.Errorf("%w: %q", ErrUnknownField, field)
		}

		return nil
	})
}

// AddFavorite stores a recipe unless one with the same title is already saved.
func (s *Service) AddFavorite(_ context.Context, email, title, body string) (FavoriteStatus, error) {
	status := FavoriteAdded

	err := s.updateUser(email, func(user *User) error {
		if pie.Any(user.Favorites, func(r model.Recipe) bool { return r.Title == title }) {
			status = FavoriteExists
			return nil
		}

		user.Favorites = append(user.Favorites, model.Recipe{
			Title: title,
			Body:  body,
		})

		return nil
	})
	if err != nil {
		return "", err
	}

	return status, nil
}

func (s *Service) Favorites(_ context.Context, email string) ([]model.Recipe, error) {
	user, err := s.findUser(email)
	if err != nil {
		return nil, err
	}

	return nonNil(user.Favorites), nil
}

func (s *Service) PersistTurns(_ context.Context, email string, turns []model.Turn) error {
	if len(turns) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entry := ChatLog{
		ID:        uuid.NewString(),
		Email:     normalizeEmail(email),
		Chat:      turns,
		Timestamp: s.now().UTC(),
	}

	if err := appendLine(s.chatLogsPath, entry); err != nil {
		return err
	}

	slog.Info("Saved chat log", "email", entry.Email, "turns", len(turns))

	return nil
}

// ChatLogs returns the most recent logs of a user, newest first.
func (s *Service) ChatLogs(_ context.Context, email string) ([]ChatLog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	email = normalizeEmail(email)

	logs, err := readLines[ChatLog](s.chatLogsPath)
	if err != nil {
		return nil, err
	}

	logs = pie.Filter(logs, func(l ChatLog) bool {
		return l.Email == email
	})

	sort.SliceStable(logs, func(i, j int) bool {
		return logs[i].Timestamp.After(logs[j].Timestamp)
	})

	if len(logs) > maxChatLogs {
		logs = logs[:maxChatLogs]
	}

	return nonNil(logs), nil
}

func (s *Service) findUser(email string) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	email = normalizeEmail(email)

	users, err := readLines[User](s.usersPath)
	if err != nil {
		return nil, err
	}

	index := pie.FindFirstUsing(users, func(u User) bool {
		return u.Email == email
	})
	if index < 0 {
		return nil, ErrUserNotFound
	}

	return &users[index], nil
}

func (s *Service) updateUser(email string, update func(user *User) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	email = normalizeEmail(email)

	users, err := readLines[User](s.usersPath)
	if err != nil {
		return err
	}

	index := pie.FindFirstUsing(users, func(u User) bool {
		return u.Email == email
	})
	if index < 0 {
		return ErrUserNotFound
	}

	if err = update(&users[index]); err != nil {
		return err
	}

	return writeLines(s.usersPath, users)
}

func readLines[T any](path string) ([]T, error) {
	file, err := os.OpenFile(path, os.O_RDONLY|os.O_CREATE, 0644)
	if err != nil {
		return nil, oops.In("store").With("path", path).Wrapf(err, "failed to open data file")
	}
	defer file.Close()

	var result []T

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var item T
		if err = json.Unmarshal([]byte(line), &item); err != nil {
			return nil, oops.In("store").With("path", path).Wrapf(err, "failed to parse JSON line")
		}

		result = append(result, item)
	}

	if err = scanner.Err(); err != nil {
		return nil, oops.In("store").With("path", path).Wrapf(err, "failed to read data file")
	}

	return result, nil
}

// writeLines replaces the file through a rename so readers never see a
// partially written file.
func writeLines[T any](path string, items []T) error {
	tmpPath := path + ".tmp"

	file, err := os.OpenFile(tmpPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return oops.In("store").With("path", tmpPath).Wrapf(err, "failed to create data file")
	}

	writer := bufio.NewWriter(file)

	for _, item := range items {
		data, err := json.Marshal(item)
		if err != nil {
			_ = file.Close()
			return oops.In("store").Wrapf(err, "failed to marshal item")
		}
		if _, err = writer.Write(append(data, '\n')); err != nil {
			_ = file.Close()
			return oops.In("store").Wrapf(err, "failed to write item")
		}
	}

	if err = writer.Flush(); err != nil {
		_ = file.Close()
		return oops.In("store").Wrapf(err, "failed to flush writer")
	}

	if err = file.Close(); err != nil {
		return oops.In("store").Wrapf(err, "failed to close data file")
	}

	if err = os.Rename(tmpPath, path); err != nil {
		return oops.In("store").With("path", path).Wrapf(err, "failed to replace data file")
	}

	return nil
}

func appendLine[T any](path string, item T) error {
	data, err := json.Marshal(item)
	if err != nil {
		return oops.In("store").Wrapf(err, "failed to marshal item")
	}

	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0644)
	if err != nil {
		return oops.In("store").With("path", path).Wrapf(err, "failed to open data file")
	}
	defer file.Close()

	if _, err = file.Write(append(data, '\n')); err != nil {
		return oops.In("store").With("path", path).Wrapf(err, "failed to append item")
	}

	return nil
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}

	return items
}
