package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/example/whatsrb-cloud-go/internal/kafka/consumer"
	"github.com/example/whatsrb-cloud-go/internal/models"
)

// EventSource streams the webhook events the relay published.
type EventSource interface {
	Consume(ctx context.Context, handler consumer.Handler) error
	Close() error
}

// EventSourceFactory opens an EventSource. fromBeginning asks a new consumer
// group to start at the oldest retained event.
type EventSourceFactory func(fromBeginning bool) (EventSource, error)

const eventsUsage = "events tail [--from-beginning] [--event name]... [--json]"

// runEvents prints relayed webhook events until interrupted.
func runEvents(ctx context.Context, a *App, args []string) error {
	if len(args) == 0 || args[0] != "tail" {
		return usageError("expected: %s", eventsUsage)
	}

	fs := a.flagSet("events tail")
	fromBeginning := fs.Bool("from-beginning", false, "start at the oldest retained event")
	only := fs.StringSlice("event", nil, "only print events with this name (repeatable)")
	asJSON := fs.Bool("json", false, "print one JSON object per line")
	if err := fs.Parse(args[1:]); err != nil {
		return usageError("%v", err)
	}
	if fs.NArg() != 0 {
		return usageError("expected: %s", eventsUsage)
	}

	if a.NewEventSource == nil {
		return errors.New("cli: no event source configured")
	}
	source, err := a.NewEventSource(*fromBeginning)
	if err != nil {
		return err
	}
	defer func() {
		if err := source.Close(); err != nil {
			a.Logger.Error().Err(err).Msg("failed to close event source")
		}
	}()

	enc := json.NewEncoder(a.Stdout)
	err = source.Consume(ctx, func(_ context.Context, event models.WebhookEvent) error {
		if len(*only) > 0 && !slices.Contains(*only, event.Event) {
			return nil
		}
		if *asJSON {
			return enc.Encode(event)
		}
		_, err := fmt.Fprintf(a.Stdout, "%s\t%s\t%s\t%s\n",
			event.ReceivedAt.Format(time.RFC3339), event.Event, event.ID, string(event.Data))
		return err
	})
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
