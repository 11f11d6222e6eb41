package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"recipechat/app/model"
	"recipechat/app/service/dialogue"
	"recipechat/app/service/queue"
	"recipechat/app/service/store"
	"recipechat/app/util/mylog"

	"github.com/gofiber/contrib/websocket"
	"github.com/samber/do"
	"golang.org/x/sync/errgroup"
)

const (
	inboxSize = 16

	messageAuthRequest = "من فضلك ادخل البريد الإلكتروني لتسجيل الدخول."
	messageUnknownUser = "المستخدم غير موجود. من فضلك سجل أولاً."
	messageBadLogin    = "بيانات الدخول غير صالحة."
)

var errDisconnected = errors.New("client disconnected")

// Conn is the part of a websocket connection a conversation needs.
type Conn interface {
	ReadJSON(v any) error
	ReadMessage() (messageType int, p []byte, err error)
	WriteJSON(v any) error
	Close() error
}

type ProfileLoader interface {
	LoadProfile(ctx context.Context, email string) (model.UserProfile, error)
}

type SessionFactory interface {
	NewSession(identity string, profile model.UserProfile, mode model.Mode) *dialogue.Session
}

type Login struct {
	Email string `json:"email"`
	Mode  string `json:"mode"`
}

type Service struct {
	profiles ProfileLoader
	sessions SessionFactory
}

func New(di *do.Injector) (*Service, error) {
	return NewService(
		do.MustInvoke[*store.Service](di),
		do.MustInvoke[*dialogue.Service](di),
	), nil
}

func NewService(profiles ProfileLoader, sessions SessionFactory) *Service {
	return &Service{
		profiles: profiles,
		sessions: sessions,
	}
}

// Serve runs one conversation until the client disconnects or ctx is done.
func (s *Service) Serve(ctx context.Context, conn Conn) error {
	if err := conn.WriteJSON(&dialogue.Result{
		Type:    dialogue.ResultAuthRequest,
		Message: messageAuthRequest,
	}); err != nil {
		return fmt.Errorf("failed to send auth request: %w", err)
	}

	var login Login
	if err := conn.ReadJSON(&login); err != nil {
		_ = conn.WriteJSON(dialogue.ErrorResult(messageBadLogin))
		return fmt.Errorf("failed to read login: %w", err)
	}

	email := strings.TrimSpace(login.Email)

	profile, err := s.profiles.LoadProfile(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			slog.Info("Rejected chat for unknown user", "email", email)
			return conn.WriteJSON(dialogue.ErrorResult(messageUnknownUser))
		}

		_ = conn.WriteJSON(dialogue.ErrorResult(dialogue.MessageTurnFailed))
		return fmt.Errorf("failed to load profile: %w", err)
	}

	session := s.sessions.NewSession(email, profile, model.ParseMode(login.Mode))
	defer session.Close()

	slog.Info("Chat started",
		"session", session.ID(),
		"email", email,
		"mode", session.Mode(),
		mylog.TelegramKey, true,
	)

	err = s.converse(ctx, conn, session)
	if errors.Is(err, errDisconnected) || errors.Is(err, context.Canceled) {
		err = nil
	}

	slog.Info("Chat finished", "session", session.ID(), "email", email)

	return err
}

func (s *Service) converse(ctx context.Context, conn Conn, session *dialogue.Session) error {
	inbox := queue.New(inboxSize)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer inbox.Close()
		return s.readTurns(ctx, conn, inbox)
	})

	g.Go(func() error {
		err := s.processTurns(ctx, conn, session, inbox)
		if err != nil {
			// unblock the reader
			_ = conn.Close()
		}
		return err
	})

	return g.Wait()
}

func (s *Service) readTurns(ctx context.Context, conn Conn, inbox *queue.Queue) error {
	for seq := 1; ; seq++ {
		messageType, data, err := conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("%w: %w", errDisconnected, err)
		}

		if messageType != websocket.TextMessage {
			slog.Warn("Ignoring non-text frame", "type", messageType)
			continue
		}

		if err = inbox.Add(ctx, queue.Message{Seq: seq, Text: string(data)}); err != nil {
			return err
		}
	}
}

func (s *Service) processTurns(ctx context.Context, conn Conn, session *dialogue.Session, inbox *queue.Queue) error {
	for msg := range inbox.Channel() {
		if err := ctx.Err(); err != nil {
			return err
		}

		start := time.Now()

		result, err := session.Handle(ctx, msg.Text)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}

			slog.Error("Failed to process turn",
				"session", session.ID(),
				"seq", msg.Seq,
				"state", session.State().String(),
				"error", err,
			)

			result = dialogue.ErrorResult(dialogue.MessageTurnFailed)
		}

		if err = conn.WriteJSON(result); err != nil {
			return fmt.Errorf("failed to send result: %w", err)
		}

		slog.Info("Processed turn",
			"session", session.ID(),
			"seq", msg.Seq,
			"type", result.Type,
			"state", session.State().String(),
			"duration", time.Since(start),
		)
	}

	return nil
}
