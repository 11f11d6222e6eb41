package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"recipechat/app/client/speechkit"
	"recipechat/app/client/whisper"
	"recipechat/app/config"
	"recipechat/app/service/api"
	"recipechat/app/service/dialogue"
	"recipechat/app/service/engine"
	"recipechat/app/service/mcpserver"
	"recipechat/app/service/store"
	"recipechat/app/service/transcribe"
	"recipechat/app/util/mylog"

	"github.com/gofiber/fiber/v2/log"
	"github.com/samber/do"
	"golang.org/x/sync/errgroup"
)

func main() {
	di := do.New()
	defer di.Shutdown()
	defer log.Info("Waiting for services to finish...")

	mylog.Preinit()

	appCtx, cancel := context.WithCancel(context.Background())
	defer cancel()
	do.ProvideValue(di, appCtx)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}
	do.ProvideValue(di, cfg)

	if err = mylog.Init(cfg); err != nil {
		log.Fatalf("logging init failed: %v", err)
	}

	do.Provide(di, speechkit.NewClient)
	do.Provide(di, whisper.New)
	do.Provide(di, store.New)
	do.Provide(di, transcribe.New)
	do.Provide(di, dialogue.New)
	do.Provide(di, engine.New)
	do.Provide(di, api.New)
	do.Provide(di, mcpserver.New)

	go func() {
		sigint := make(chan os.Signal, 1)
		signal.Notify(sigint, os.Interrupt, syscall.SIGTERM)
		<-sigint

		log.Info("Shutting down...")

		cancel()
	}()

	apiServer, err := do.Invoke[*api.Server](di)
	if err != nil {
		log.Fatalf("api init failed: %v", err)
	}

	mcpServer, err := do.Invoke[*mcpserver.Service](di)
	if err != nil {
		log.Fatalf("mcp init failed: %v", err)
	}

	slog.Info("Service started",
		"listen", cfg.Server.Listen,
		"speech", do.MustInvoke[*transcribe.Service](di).Enabled(),
	)

	g, ctx := errgroup.WithContext(appCtx)
	g.Go(func() error {
		return apiServer.Run(ctx)
	})
	g.Go(func() error {
		return mcpServer.Run(ctx)
	})

	if err = g.Wait(); err != nil {
		slog.Error("Server stopped", "error", err)
	}
}
