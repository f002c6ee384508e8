package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/davidjspooner/asn1kit/internal/service"
	"github.com/davidjspooner/asn1kit/pkg/logevent"
)

func main() {

	configPath := flag.String("config", "config.yaml", "path to config file")
	listen := flag.String("listen", "", "address to listen on, overrides the config file")
	flag.Parse()

	level := new(slog.LevelVar)
	logger := slog.New(logevent.NewHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	ctx := logevent.WithLogger(context.Background(), logger)

	server, err := service.NewServer(ctx, *configPath)
	if err != nil {
		log.Fatal(err)
	}
	settings := server.Manager().Settings()
	level.Set(settings.LogLevel)
	if *listen != "" {
		settings.Listen = *listen
	}

	httpServer := &http.Server{
		Addr:        settings.Listen,
		Handler:     server.Routes(),
		ReadTimeout: settings.ReadTimeout,
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		httpServer.Shutdown(shutdown)
	}()

	logger.Info("listening", logevent.EventAttrKey, "server.start", "address", settings.Listen)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal(err)
	}
}
