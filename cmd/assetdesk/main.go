// assetdesk is a terminal console for the asset lending service.
//
// Without a subcommand it starts the interactive console. The one-shot
// subcommands share its configuration and saved session:
//
//	assetdesk login          sign in (password read without echo)
//	assetdesk logout         revoke and forget the saved session
//	assetdesk whoami         show the signed-in user and token expiry
//	assetdesk check-overdue  run the overdue sweep and list flagged loans
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/five82/assetdesk/internal/app"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	cancel()
	os.Exit(code)
}

// run parses args and dispatches to the console or a subcommand. It
// returns the process exit code.
func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	flags := pflag.NewFlagSet("assetdesk", pflag.ContinueOnError)
	flags.SetOutput(stderr)
	configPath := flags.String("config", "", "config file (default ~/.config/assetdesk/config.toml)")
	prefsPath := flags.String("prefs", "", "UI preferences file (default ~/.config/assetdesk/prefs.toml)")
	apiURL := flags.String("api", "", "API base URL, overrides api_url from the config")
	pollSeconds := flags.Int("poll", 0, "refresh interval in seconds (default from config)")
	help := flags.BoolP("help", "h", false, "show help")
	flags.Usage = func() { printUsage(stderr, flags) }

	if err := flags.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		return 2
	}
	if *help {
		printUsage(stdout, flags)
		return 0
	}
	if *pollSeconds < 0 {
		fmt.Fprintln(stderr, "assetdesk: --poll must not be negative")
		return 2
	}

	opts := app.Options{
		ConfigPath: *configPath,
		PrefsPath:  *prefsPath,
		APIURL:     *apiURL,
		PollEvery:  *pollSeconds,
	}

	rest := flags.Args()
	if len(rest) == 0 {
		if err := runConsole(ctx, opts); err != nil {
			fmt.Fprintf(stderr, "assetdesk: %v\n", err)
			return 1
		}
		return 0
	}

	cmd, ok := commands[rest[0]]
	if !ok {
		fmt.Fprintf(stderr, "assetdesk: unknown command %q\n", rest[0])
		printUsage(stderr, flags)
		return 2
	}
	if len(rest) > 1 {
		fmt.Fprintf(stderr, "assetdesk %s: unexpected arguments %v\n", rest[0], rest[1:])
		return 2
	}

	client, closeFn, err := openBackend(ctx, opts)
	if err != nil {
		fmt.Fprintf(stderr, "assetdesk: %v\n", err)
		return 1
	}
	defer closeFn()

	streams := cmdIO{in: bufio.NewReader(stdin), out: stdout}
	if err := cmd(ctx, client, streams); err != nil {
		fmt.Fprintf(stderr, "assetdesk %s: %v\n", rest[0], err)
		return 1
	}
	return 0
}

var runConsole = app.Run

// openBackend wires the API client the subcommands talk to.
var openBackend = func(ctx context.Context, opts app.Options) (backend, func() error, error) {
	env, err := app.Setup(ctx, opts)
	if err != nil {
		return nil, nil, err
	}
	return env.Client, env.Close, nil
}

func printUsage(w io.Writer, flags *pflag.FlagSet) {
	fmt.Fprintln(w, "Usage: assetdesk [flags] [command]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  (none)          start the interactive console")
	fmt.Fprintln(w, "  login           sign in and save the session")
	fmt.Fprintln(w, "  logout          sign out and forget the session")
	fmt.Fprintln(w, "  whoami          show the signed-in user")
	fmt.Fprintln(w, "  check-overdue   flag overdue loans")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprint(w, flags.FlagUsages())
}
