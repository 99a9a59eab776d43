// blogctl manages blog posts from the terminal. It logs in as the admin,
// keeps the token in the user's config directory, and sends authenticated
// requests for create, update and delete.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/pflag"

	"herstory/pkg/client"
)

const defaultServer = "http://localhost:8080/api"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		var ce *client.Error
		if errors.As(err, &ce) && ce.Kind == client.KindUnauthorized {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	var server, tokenFile string

	flagSet := pflag.NewFlagSet("blogctl", pflag.ContinueOnError)
	flagSet.SetOutput(io.Discard)
	flagSet.SetInterspersed(false)
	flagSet.StringVar(&server, "server", envOr("HERSTORY_API", defaultServer), "API base URL")
	flagSet.StringVar(&tokenFile, "token-file", "", "token location (default $XDG_CONFIG_HOME/herstory/token)")
	flagSet.BoolP("help", "h", false, "show help")

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			printUsage(stderr, flagSet)
			return nil
		}
		return fmt.Errorf("%w\n\nRun 'blogctl --help' for usage.", err)
	}
	if help, _ := flagSet.GetBool("help"); help || flagSet.NArg() == 0 {
		printUsage(stderr, flagSet)
		return nil
	}

	name, rest := flagSet.Arg(0), flagSet.Args()[1:]
	cmd := lookup(name)
	if cmd == nil {
		return fmt.Errorf("unknown command %q\n\nRun 'blogctl --help' for usage.", name)
	}

	if tokenFile == "" {
		path, err := client.DefaultTokenPath()
		if err != nil {
			return err
		}
		tokenFile = path
	}
	session, err := client.NewSession(client.NewFileTokenStore(tokenFile))
	if err != nil {
		return err
	}

	e := &env{
		client: client.New(server, session),
		in:     stdin,
		out:    stdout,
	}
	return cmd.run(ctx, e, rest)
}

func printUsage(w io.Writer, flagSet *pflag.FlagSet) {
	fmt.Fprintln(w, "Usage: blogctl [global flags] <command> [flags] [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	for _, c := range commands {
		fmt.Fprintf(w, "  %-10s %s\n", c.name, c.summary)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Global flags:")
	fmt.Fprint(w, flagSet.FlagUsages())
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
