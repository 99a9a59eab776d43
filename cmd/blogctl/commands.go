package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/pflag"

	"herstory/internal/model"
	"herstory/pkg/client"
)

type env struct {
	client *client.Client
	in     io.Reader
	out    io.Writer
}

type command struct {
	name    string
	summary string
	run     func(ctx context.Context, e *env, args []string) error
}

var commands []command

func init() {
	commands = []command{
		{"login", "log in as the admin and store the token", runLogin},
		{"logout", "forget the stored token", runLogout},
		{"whoami", "check the stored token with the server", runWhoami},
		{"list", "list posts, newest first", runList},
		{"get", "print one post as JSON", runGet},
		{"create", "create a post", runCreate},
		{"update", "replace a post", runUpdate},
		{"delete", "delete a post", runDelete},
		{"subscribe", "subscribe an email address to the newsletter", runSubscribe},
	}
}

func lookup(name string) *command {
	for i := range commands {
		if commands[i].name == name {
			return &commands[i]
		}
	}
	return nil
}

func newFlagSet(name string) *pflag.FlagSet {
	fs := pflag.NewFlagSet("blogctl "+name, pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

func parse(fs *pflag.FlagSet, args []string, wantArgs int) ([]string, error) {
	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("%w\n\nUsage of %s:\n%s", err, fs.Name(), fs.FlagUsages())
	}
	if fs.NArg() != wantArgs {
		return nil, fmt.Errorf("%s: expected %d argument(s), got %d", fs.Name(), wantArgs, fs.NArg())
	}
	return fs.Args(), nil
}

func runLogin(ctx context.Context, e *env, args []string) error {
	fs := newFlagSet("login")
	username := fs.StringP("username", "u", "admin", "admin username")
	password := fs.StringP("password", "p", os.Getenv("HERSTORY_PASSWORD"), "admin password (read from stdin when empty)")
	if _, err := parse(fs, args, 0); err != nil {
		return err
	}

	if *password == "" {
		line, err := bufio.NewReader(e.in).ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("read password: %w", err)
		}
		*password = strings.TrimRight(line, "\r\n")
	}

	user, err := e.client.Login(ctx, *username, *password)
	if err != nil {
		return err
	}
	fmt.Fprintf(e.out, "logged in as %s\n", user.Username)
	return nil
}

func runLogout(_ context.Context, e *env, args []string) error {
	if _, err := parse(newFlagSet("logout"), args, 0); err != nil {
		return err
	}
	if err := e.client.Logout(); err != nil {
		return err
	}
	fmt.Fprintln(e.out, "logged out")
	return nil
}

func runWhoami(ctx context.Context, e *env, args []string) error {
	if _, err := parse(newFlagSet("whoami"), args, 0); err != nil {
		return err
	}
	user, err := e.client.Verify(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(e.out, "%s (%s)\n", user.Username, user.ID)
	return nil
}

func runList(ctx context.Context, e *env, args []string) error {
	if _, err := parse(newFlagSet("list"), args, 0); err != nil {
		return err
	}
	posts, err := e.client.ListPosts(ctx)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(e.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tDATE\tTHEME\tTITLE")
	for _, p := range posts {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", p.ID, p.Date, p.Theme, p.Title)
	}
	return tw.Flush()
}

func runGet(ctx context.Context, e *env, args []string) error {
	rest, err := parse(newFlagSet("get"), args, 1)
	if err != nil {
		return err
	}
	post, err := e.client.GetPost(ctx, rest[0])
	if err != nil {
		return err
	}
	return printJSON(e.out, post)
}

// postFlags binds one flag per post field. contentFile, when set, supplies
// the content from a file ("-" for stdin).
type postFlags struct {
	form        client.PostForm
	contentFile string
}

func bindPostFlags(fs *pflag.FlagSet) *postFlags {
	pf := &postFlags{}
	fs.StringVar(&pf.form.Title, "title", "", "post title")
	fs.StringVar(&pf.form.Excerpt, "excerpt", "", "short summary")
	fs.StringVar(&pf.form.Content, "content", "", "post body")
	fs.StringVar(&pf.contentFile, "content-file", "", "read the body from a file, - for stdin")
	fs.StringVar(&pf.form.Date, "date", time.Now().Format(model.DateLayout), "publication date, YYYY-MM-DD")
	fs.StringVar(&pf.form.Theme, "theme", "", "theme")
	fs.StringVar(&pf.form.Author, "author", "", "author")
	return pf
}

func (pf *postFlags) loadContent(in io.Reader) error {
	if pf.contentFile == "" {
		return nil
	}
	var (
		b   []byte
		err error
	)
	if pf.contentFile == "-" {
		b, err = io.ReadAll(in)
	} else {
		b, err = os.ReadFile(pf.contentFile)
	}
	if err != nil {
		return fmt.Errorf("read content: %w", err)
	}
	pf.form.Content = string(b)
	return nil
}

func runCreate(ctx context.Context, e *env, args []string) error {
	fs := newFlagSet("create")
	pf := bindPostFlags(fs)
	if _, err := parse(fs, args, 0); err != nil {
		return err
	}
	if err := pf.loadContent(e.in); err != nil {
		return err
	}

	post, err := e.client.CreatePost(ctx, pf.form)
	if err != nil {
		return err
	}
	return printJSON(e.out, post)
}

// runUpdate starts from the stored post so only the given flags change.
// The server still receives the full record.
func runUpdate(ctx context.Context, e *env, args []string) error {
	fs := newFlagSet("update")
	pf := bindPostFlags(fs)
	rest, err := parse(fs, args, 1)
	if err != nil {
		return err
	}
	if err := pf.loadContent(e.in); err != nil {
		return err
	}

	current, err := e.client.GetPost(ctx, rest[0])
	if err != nil {
		return err
	}
	form := client.FormFromPost(current)
	for name, dst := range map[string]*string{
		"title":   &form.Title,
		"excerpt": &form.Excerpt,
		"date":    &form.Date,
		"theme":   &form.Theme,
		"author":  &form.Author,
	} {
		if fs.Changed(name) {
			v, _ := fs.GetString(name)
			*dst = v
		}
	}
	if fs.Changed("content") || fs.Changed("content-file") {
		form.Content = pf.form.Content
	}

	post, err := e.client.UpdatePost(ctx, rest[0], form)
	if err != nil {
		return err
	}
	return printJSON(e.out, post)
}

func runDelete(ctx context.Context, e *env, args []string) error {
	rest, err := parse(newFlagSet("delete"), args, 1)
	if err != nil {
		return err
	}
	if err := e.client.DeletePost(ctx, rest[0]); err != nil {
		return err
	}
	fmt.Fprintf(e.out, "deleted %s\n", rest[0])
	return nil
}

func runSubscribe(ctx context.Context, e *env, args []string) error {
	rest, err := parse(newFlagSet("subscribe"), args, 1)
	if err != nil {
		return err
	}
	res, err := e.client.Subscribe(ctx, rest[0])
	if err != nil {
		return err
	}
	fmt.Fprintln(e.out, res.Message)
	return nil
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
