package cli

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/sync/semaphore"

	"github.com/example/whatsrb-cloud-go/pkg/whatsrb"
)

const defaultBroadcastConcurrency = 4

func runSend(ctx context.Context, a *App, args []string) error {
	if err := expectArgs(args, 3, "send <session-id> <to> <text>"); err != nil {
		return err
	}
	client, err := a.client()
	if err != nil {
		return err
	}
	msg, err := client.Messages(args[0]).Create(ctx, whatsrb.MessageParams{To: args[1], Text: args[2]})
	if err != nil {
		return err
	}
	return a.printJSON(msg)
}

type broadcastResult struct {
	to  string
	msg *whatsrb.Message
	err error
}

// runBroadcast sends the same text to many recipients through one session,
// at most --concurrency requests at a time. Output keeps argument order.
func runBroadcast(ctx context.Context, a *App, args []string) error {
	fs := a.flagSet("broadcast")
	concurrency := fs.IntP("concurrency", "c", defaultBroadcastConcurrency, "maximum concurrent sends")
	if err := fs.Parse(args); err != nil {
		return usageError("%v", err)
	}
	if *concurrency <= 0 {
		return usageError("--concurrency must be positive")
	}
	if fs.NArg() < 3 {
		return usageError("expected: broadcast [--concurrency n] <session-id> <text> <to>...")
	}
	sessionID, text, recipients := fs.Arg(0), fs.Arg(1), fs.Args()[2:]

	client, err := a.client()
	if err != nil {
		return err
	}
	messages := client.Messages(sessionID)

	sem := semaphore.NewWeighted(int64(*concurrency))
	results := make([]broadcastResult, len(recipients))
	var wg sync.WaitGroup
	for i, to := range recipients {
		results[i].to = to
		if err := sem.Acquire(ctx, 1); err != nil {
			results[i].err = err
			continue
		}
		wg.Add(1)
		go func(i int, to string) {
			defer wg.Done()
			defer sem.Release(1)
			results[i].msg, results[i].err = messages.Create(ctx, whatsrb.MessageParams{To: to, Text: text})
		}(i, to)
	}
	wg.Wait()

	var errs []error
	for _, r := range results {
		if r.err != nil {
			fmt.Fprintf(a.Stdout, "%s\tfailed\t%v\n", r.to, r.err)
			errs = append(errs, fmt.Errorf("%s: %w", r.to, r.err))
			continue
		}
		fmt.Fprintf(a.Stdout, "%s\t%s\t%s\n", r.to, r.msg.Status, r.msg.ID)
	}

	a.Logger.Info().
		Str("session_id", sessionID).
		Int("recipients", len(recipients)).
		Int("failed", len(errs)).
		Msg("broadcast finished")
	return errors.Join(errs...)
}
