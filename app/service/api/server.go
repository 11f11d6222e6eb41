package api

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"recipechat/app/config"
	"recipechat/app/service/engine"
	"recipechat/app/service/store"
	"recipechat/app/service/transcribe"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/samber/do"
)

const (
	shutdownTimeout = 10 * time.Second
	bodyLimit       = 32 << 20
)

type Transcriber interface {
	Enabled() bool
	Transcribe(ctx context.Context, filename string, audio io.Reader) (string, error)
}

type ChatServer interface {
	Serve(ctx context.Context, conn engine.Conn) error
}

type Server struct {
	appCtx      context.Context
	listen      string
	app         *fiber.App
	validate    *validator.Validate
	store       *store.Service
	transcriber Transcriber
	chat        ChatServer
}

func New(di *do.Injector) (*Server, error) {
	cfg := do.MustInvoke[*config.Config](di)

	return NewServer(
		do.MustInvoke[context.Context](di),
		cfg.Server,
		do.MustInvoke[*store.Service](di),
		do.MustInvoke[*transcribe.Service](di),
		do.MustInvoke[*engine.Service](di),
	), nil
}

func NewServer(
	appCtx context.Context,
	cfg config.Server,
	storeSvc *store.Service,
	transcriber Transcriber,
	chat ChatServer,
) *Server {
	s := &Server{
		appCtx:      appCtx,
		listen:      cfg.Listen,
		validate:    validator.New(validator.WithRequiredStructEnabled()),
		store:       storeSvc,
		transcriber: transcriber,
		chat:        chat,
	}

	s.app = fiber.New(fiber.Config{
		AppName:               "recipechat",
		BodyLimit:             bodyLimit,
		DisableStartupMessage: true,
		ErrorHandler:          errorHandler,
	})

	s.app.Use(recover.New())
	s.app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.AllowedOrigins,
		AllowHeaders: "Origin, Content-Type, Accept",
	}))

	s.routes()

	return s
}

func (s *Server) routes() {
	s.app.Get("/healthz", s.healthz)

	s.app.Post("/signup", s.signup)
	s.app.Post("/login", s.login)
	s.app.Get("/get-profile", s.getProfile)
	s.app.Post("/update-profile", s.updateProfile)
	s.app.Post("/add-favourite", s.addFavorite)
	s.app.Get("/get-favourites", s.getFavorites)
	s.app.Get("/get-chat-logs", s.getChatLogs)
	s.app.Post("/transcribe-audio", s.transcribeAudio)

	s.app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	s.app.Get("/ws/chat", websocket.New(s.chatHandler))
}

func (s *Server) chatHandler(conn *websocket.Conn) {
	if err := s.chat.Serve(s.appCtx, conn); err != nil {
		slog.Warn("Chat connection failed",
			"remote", conn.RemoteAddr().String(),
			"error", err,
		)
	}
}

// Run serves HTTP until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		slog.Info("HTTP server listening", "addr", s.listen)
		errCh <- s.app.Listen(s.listen)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := s.app.ShutdownWithContext(shutdownCtx); err != nil {
		return err
	}

	return nil
}

func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		code = fiberErr.Code
	}

	if code >= fiber.StatusInternalServerError {
		slog.Error("Request failed",
			"method", c.Method(),
			"path", c.Path(),
			"error", err,
		)
	}

	message := err.Error()
	if fiberErr == nil {
		message = "Server error"
	}

	return c.Status(code).JSON(ErrorResponse{
		Detail: message,
	})
}
