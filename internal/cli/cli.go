package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/pflag"

	"github.com/example/whatsrb-cloud-go/pkg/whatsrb"
)

// ErrUsage marks a malformed command line. Callers exit with status 2.
var ErrUsage = errors.New("usage error")

// ClientFactory builds the API client on demand, so commands that never call
// the API (verify, help) work without credentials.
type ClientFactory func() (*whatsrb.Client, error)

// App is the whatsrb command line.
type App struct {
	Stdin     io.Reader
	Stdout    io.Writer
	Stderr    io.Writer
	NewClient ClientFactory

	// NewEventSource backs `events tail`; it may be nil when Kafka is not
	// configured.
	NewEventSource EventSourceFactory
	Logger         zerolog.Logger
}

type command struct {
	usage string
	run   func(ctx context.Context, a *App, args []string) error
}

var commands = map[string]command{
	"sessions":  {usage: sessionsUsage, run: runSessions},
	"send":      {usage: "send <session-id> <to> <text>", run: runSend},
	"broadcast": {usage: "broadcast [--concurrency n] <session-id> <text> <to>...", run: runBroadcast},
	"accounts":  {usage: "accounts list", run: runAccounts},
	"webhooks":  {usage: "webhooks list", run: runWebhooks},
	"usage":     {usage: "usage", run: runUsage},
	"verify":    {usage: "verify [--timestamp ts] <secret> <signature> < body", run: runVerify},
	"events":    {usage: eventsUsage, run: runEvents},
}

var commandOrder = []string{"sessions", "send", "broadcast", "accounts", "webhooks", "usage", "verify", "events"}

// Run dispatches args (without the program name) to a subcommand.
func (a *App) Run(ctx context.Context, args []string) error {
	if reflect.ValueOf(a.Logger).IsZero() {
		a.Logger = zerolog.Nop()
	}
	if len(args) == 0 || args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		a.printUsage()
		if len(args) == 0 {
			return ErrUsage
		}
		return nil
	}

	cmd, ok := commands[args[0]]
	if !ok {
		a.printUsage()
		return fmt.Errorf("%w: unknown command %q", ErrUsage, args[0])
	}
	return cmd.run(ctx, a, args[1:])
}

func (a *App) printUsage() {
	fmt.Fprintln(a.Stderr, "Usage: whatsrb <command> [arguments]")
	fmt.Fprintln(a.Stderr)
	fmt.Fprintln(a.Stderr, "Commands:")
	for _, name := range commandOrder {
		fmt.Fprintf(a.Stderr, "  %s\n", commands[name].usage)
	}
}

func (a *App) client() (*whatsrb.Client, error) {
	if a.NewClient == nil {
		return nil, errors.New("cli: no client factory configured")
	}
	return a.NewClient()
}

func (a *App) flagSet(name string) *pflag.FlagSet {
	fs := pflag.NewFlagSet("whatsrb "+name, pflag.ContinueOnError)
	fs.SetOutput(a.Stderr)
	return fs
}

func (a *App) printJSON(v any) error {
	enc := json.NewEncoder(a.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func usageError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrUsage, fmt.Sprintf(format, args...))
}

func expectArgs(args []string, n int, usage string) error {
	if len(args) != n {
		return usageError("expected: %s", usage)
	}
	for i, arg := range args {
		if strings.TrimSpace(arg) == "" {
			return usageError("argument %d must not be empty", i+1)
		}
	}
	return nil
}
