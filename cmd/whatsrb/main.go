package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/example/whatsrb-cloud-go/internal/cli"
	"github.com/example/whatsrb-cloud-go/internal/config"
	"github.com/example/whatsrb-cloud-go/internal/kafka/consumer"
	"github.com/example/whatsrb-cloud-go/internal/logger"
	"github.com/example/whatsrb-cloud-go/pkg/whatsrb"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := &cli.App{
		Stdin:     os.Stdin,
		Stdout:    os.Stdout,
		Stderr:    os.Stderr,
		NewClient: newClient,

		NewEventSource: newEventSource,
	}

	err := app.Run(ctx, os.Args[1:])
	switch {
	case err == nil:
		return
	case errors.Is(err, cli.ErrUsage):
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(2)
	case errors.Is(err, cli.ErrInvalidSignature):
		os.Exit(1)
	default:
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newClient() (*whatsrb.Client, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	log, err := logger.New(cfg.App.Env, cfg.App.LogLevel, "whatsrb")
	if err != nil {
		return nil, err
	}
	return whatsrb.NewClient(cfg.API.Client(), whatsrb.WithLogger(log))
}

func newEventSource(fromBeginning bool) (cli.EventSource, error) {
	cfg, err := config.LoadEvents()
	if err != nil {
		return nil, err
	}
	log, err := logger.New(cfg.App.Env, cfg.App.LogLevel, "whatsrb")
	if err != nil {
		return nil, err
	}

	var opts []consumer.Option
	if fromBeginning {
		opts = append(opts, consumer.WithOldestOffset())
	}
	cons, err := consumer.New(cfg.Kafka.Brokers, cfg.Kafka.ConsumerGroup, cfg.Kafka.WebhookTopic,
		log.With().Str("component", "kafka").Logger(), opts...)
	if err != nil {
		return nil, err
	}
	return cons, nil
}
