package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/spf13/pflag"

	"github.com/example/whatsrb-cloud-go/internal/config"
	"github.com/example/whatsrb-cloud-go/internal/kafka/producer"
	kafkapublisher "github.com/example/whatsrb-cloud-go/internal/kafka/publisher"
	"github.com/example/whatsrb-cloud-go/internal/logger"
	"github.com/example/whatsrb-cloud-go/internal/relay"
)

const shutdownTimeout = 10 * time.Second

func main() {
	flagSet := pflag.NewFlagSet("whatsrb-relay", pflag.ContinueOnError)
	listenAddr := flagSet.String("listen", "", "address to listen on (overrides RELAY_LISTEN_ADDR)")
	flagSet.BoolP("help", "h", false, "show help")

	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fail("flags", err)
	}
	if help, _ := flagSet.GetBool("help"); help {
		fmt.Fprintln(os.Stderr, "Usage: whatsrb-relay [--listen addr]")
		flagSet.PrintDefaults()
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadRelay()
	if err != nil {
		fail("config load", err)
	}
	if *listenAddr != "" {
		cfg.Relay.ListenAddr = *listenAddr
	}

	log, err := logger.New(cfg.App.Env, cfg.App.LogLevel, "whatsrb-relay")
	if err != nil {
		fail("logger init", err)
	}
	log.Info().Stringer("relay", cfg.Relay).Msg("relay configuration loaded")

	prod, err := producer.New(cfg.Kafka.Brokers, log.With().Str("component", "kafka").Logger(),
		producer.WithTopics(cfg.Kafka.WebhookTopic))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create kafka producer")
	}
	defer func() {
		if err := prod.Close(); err != nil {
			log.Error().Err(err).Msg("failed to close kafka producer")
		}
	}()

	eventPublisher := kafkapublisher.NewEventPublisher(prod, cfg.Kafka.WebhookTopic, log.With().Str("component", "event-publisher").Logger())
	if eventPublisher == nil {
		log.Fatal().Msg("failed to create event publisher")
	}

	handler, err := relay.NewHandler(
		cfg.Relay.WebhookSecret,
		cfg.Relay.Tolerance(),
		eventPublisher,
		log.With().Str("component", "relay-handler").Logger(),
		relay.WithReadiness(prod),
		relay.WithMaxBodyBytes(int64(cfg.Relay.MaxBodyBytes)),
	)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialise relay handler")
	}

	if !isDevelopment(cfg.App.Env) {
		gin.SetMode(gin.ReleaseMode)
	}
	server := &http.Server{
		Addr:              cfg.Relay.ListenAddr,
		Handler:           relay.NewRouter(handler, log.With().Str("component", "http").Logger()),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	log.Info().
		Str("addr", cfg.Relay.ListenAddr).
		Str("topic", cfg.Kafka.WebhookTopic).
		Str("path", relay.WebhookPath).
		Msg("whatsrb relay started")

	select {
	case <-ctx.Done():
		log.Info().Msg("shutdown signal received")
	case err := <-errCh:
		if err != nil {
			log.Error().Err(err).Msg("http server terminated with error")
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http server shutdown failed")
	}
}

func isDevelopment(env string) bool {
	return strings.EqualFold(env, "development") || strings.EqualFold(env, "dev")
}

func fail(stage string, err error) {
	logger := zerolog.New(os.Stderr).With().Timestamp().Logger()
	logger.Fatal().Err(err).Str("stage", stage).Msg("whatsrb relay init failed")
}
