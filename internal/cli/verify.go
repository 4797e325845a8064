package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/example/whatsrb-cloud-go/pkg/webhooksig"
)

// ErrInvalidSignature is returned by verify when the body does not match.
var ErrInvalidSignature = errors.New("invalid signature")

// runVerify checks a delivery body read from stdin. It never needs an API key.
func runVerify(_ context.Context, a *App, args []string) error {
	fs := a.flagSet("verify")
	timestamp := fs.String("timestamp", "", "value of the "+webhooksig.TimestampHeader+" header")
	tolerance := fs.Duration("tolerance", webhooksig.DefaultTolerance, "accepted clock skew for --timestamp")
	if err := fs.Parse(args); err != nil {
		return usageError("%v", err)
	}
	if err := expectArgs(fs.Args(), 2, "verify [--timestamp ts] <secret> <signature> < body"); err != nil {
		return err
	}
	if a.Stdin == nil {
		return errors.New("cli: no stdin to read the body from")
	}

	body, err := io.ReadAll(a.Stdin)
	if err != nil {
		return fmt.Errorf("cli: read body: %w", err)
	}

	opts := []webhooksig.Option{webhooksig.WithTolerance(*tolerance)}
	if *timestamp != "" {
		opts = append(opts, webhooksig.WithTimestamp(*timestamp))
	}
	if !webhooksig.Verify(body, fs.Arg(0), fs.Arg(1), opts...) {
		fmt.Fprintln(a.Stdout, "invalid")
		return ErrInvalidSignature
	}
	fmt.Fprintln(a.Stdout, "valid")
	return nil
}
