package cli

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/example/whatsrb-cloud-go/pkg/whatsrb"
)

const sessionsUsage = "sessions list | create <name> | get <id> | pair [--timeout d] [--interval d] <id> | delete <id>"

func runSessions(ctx context.Context, a *App, args []string) error {
	if len(args) == 0 {
		return usageError("expected: %s", sessionsUsage)
	}
	switch args[0] {
	case "list":
		return sessionsList(ctx, a, args[1:])
	case "create":
		return sessionsCreate(ctx, a, args[1:])
	case "get":
		return sessionsGet(ctx, a, args[1:])
	case "pair":
		return sessionsPair(ctx, a, args[1:])
	case "delete":
		return sessionsDelete(ctx, a, args[1:])
	default:
		return usageError("unknown sessions subcommand %q", args[0])
	}
}

func sessionsList(ctx context.Context, a *App, args []string) error {
	if err := expectArgs(args, 0, "sessions list"); err != nil {
		return err
	}
	client, err := a.client()
	if err != nil {
		return err
	}
	sessions, err := client.Sessions().List(ctx)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(a.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tSTATUS\tPHONE")
	for _, s := range sessions.Data {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", s.ID, s.Name, s.Status, s.PhoneNumber)
	}
	return tw.Flush()
}

func sessionsCreate(ctx context.Context, a *App, args []string) error {
	if err := expectArgs(args, 1, "sessions create <name>"); err != nil {
		return err
	}
	client, err := a.client()
	if err != nil {
		return err
	}
	session, err := client.Sessions().Create(ctx, whatsrb.SessionParams{Name: args[0]})
	if err != nil {
		return err
	}
	return a.printJSON(session)
}

func sessionsGet(ctx context.Context, a *App, args []string) error {
	if err := expectArgs(args, 1, "sessions get <id>"); err != nil {
		return err
	}
	client, err := a.client()
	if err != nil {
		return err
	}
	session, err := client.Sessions().Retrieve(ctx, args[0])
	if err != nil {
		return err
	}
	return a.printJSON(session)
}

// sessionsPair prints every QR code the session offers until it connects.
func sessionsPair(ctx context.Context, a *App, args []string) error {
	fs := a.flagSet("sessions pair")
	timeout := fs.Duration("timeout", 0, "overall wait (default 60s)")
	interval := fs.Duration("interval", 0, "pause between polls (default 2s)")
	if err := fs.Parse(args); err != nil {
		return usageError("%v", err)
	}
	if err := expectArgs(fs.Args(), 1, "sessions pair [--timeout d] [--interval d] <id>"); err != nil {
		return err
	}

	client, err := a.client()
	if err != nil {
		return err
	}
	session, err := client.Sessions().Retrieve(ctx, fs.Arg(0))
	if err != nil {
		return err
	}

	start := time.Now()
	session, err = session.WaitForQR(ctx, whatsrb.WaitOptions{Timeout: *timeout, Interval: *interval}, func(qr string) {
		fmt.Fprintf(a.Stdout, "Scan this QR code with WhatsApp:\n%s\n", qr)
	})
	if err != nil {
		return err
	}

	a.Logger.Debug().Str("session_id", session.ID).Dur("waited", time.Since(start)).Msg("session paired")
	fmt.Fprintf(a.Stdout, "Connected %s (%s)\n", session.ID, session.PhoneNumber)
	return nil
}

func sessionsDelete(ctx context.Context, a *App, args []string) error {
	if err := expectArgs(args, 1, "sessions delete <id>"); err != nil {
		return err
	}
	client, err := a.client()
	if err != nil {
		return err
	}
	if _, err := client.Sessions().Delete(ctx, args[0]); err != nil {
		return err
	}
	fmt.Fprintf(a.Stdout, "Deleted %s\n", args[0])
	return nil
}
