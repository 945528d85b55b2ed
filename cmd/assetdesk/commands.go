package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"golang.org/x/term"

	"github.com/five82/assetdesk/internal/api"
	"github.com/five82/assetdesk/internal/session"
)

// backend is the part of the API client the subcommands use.
type backend interface {
	BaseURL() string
	Session(ctx context.Context) (session.Session, error)
	Login(ctx context.Context, email, password string) error
	Logout(ctx context.Context) error
	Me(ctx context.Context) (api.User, error)
	CheckOverdue(ctx context.Context) ([]api.Loan, error)
}

var _ backend = (*api.Client)(nil)

type cmdIO struct {
	in  *bufio.Reader
	out io.Writer
}

type command func(ctx context.Context, b backend, s cmdIO) error

var commands = map[string]command{
	"login":         loginCommand,
	"logout":        logoutCommand,
	"whoami":        whoamiCommand,
	"check-overdue": checkOverdueCommand,
}

// readPassword is a test seam for term.ReadPassword.
var readPassword = term.ReadPassword

func loginCommand(ctx context.Context, b backend, s cmdIO) error {
	fmt.Fprintf(s.out, "Signing in to %s\n", b.BaseURL())
	fmt.Fprint(s.out, "Email: ")
	email, err := s.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && email != "") {
		return fmt.Errorf("read email: %w", err)
	}
	email = strings.TrimSpace(email)
	if email == "" {
		return errors.New("email is required")
	}

	fmt.Fprint(s.out, "Password: ")
	pw, err := readPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(s.out)
	if err != nil {
		return fmt.Errorf("read password: %w", err)
	}
	defer clear(pw)
	if len(pw) == 0 {
		return errors.New("password is required")
	}

	if err := b.Login(ctx, email, string(pw)); err != nil {
		return errors.New(api.UserMessage(err, "Login failed"))
	}
	me, err := b.Me(ctx)
	if err != nil {
		fmt.Fprintln(s.out, "Signed in.")
		return nil
	}
	fmt.Fprintf(s.out, "Signed in as %s (%s).\n", me.Username, me.Email)
	return nil
}

func logoutCommand(ctx context.Context, b backend, s cmdIO) error {
	if err := b.Logout(ctx); err != nil {
		return errors.New(api.UserMessage(err, "Logout failed"))
	}
	fmt.Fprintln(s.out, "Signed out.")
	return nil
}

func whoamiCommand(ctx context.Context, b backend, s cmdIO) error {
	sess, err := b.Session(ctx)
	if err != nil {
		return err
	}
	if sess.Empty() {
		return errors.New("not signed in; run 'assetdesk login'")
	}
	me, err := b.Me(ctx)
	if err != nil {
		return errors.New(api.UserMessage(err, "Failed to fetch current user"))
	}

	status := "active"
	if !me.IsActive {
		status = "inactive"
	}
	tw := tabwriter.NewWriter(s.out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "User\t%s\n", me.Username)
	fmt.Fprintf(tw, "Email\t%s\n", me.Email)
	fmt.Fprintf(tw, "Status\t%s\n", status)
	fmt.Fprintf(tw, "Server\t%s\n", b.BaseURL())
	// The token may have been refreshed by Me.
	if sess, err = b.Session(ctx); err == nil {
		if claims, err := session.ParseClaims(sess.AccessToken); err == nil && !claims.ExpiresAt.IsZero() {
			fmt.Fprintf(tw, "Token expires\t%s (%s)\n",
				claims.ExpiresAt.Local().Format(time.DateTime), humanize.Time(claims.ExpiresAt))
		}
	}
	return tw.Flush()
}

func checkOverdueCommand(ctx context.Context, b backend, s cmdIO) error {
	loans, err := b.CheckOverdue(ctx)
	if err != nil {
		return errors.New(api.UserMessage(err, "Failed to check overdue loans"))
	}
	if len(loans) == 0 {
		fmt.Fprintln(s.out, "No overdue loans found.")
		return nil
	}
	fmt.Fprintf(s.out, "Found %s overdue %s.\n", humanize.Comma(int64(len(loans))), plural(len(loans), "loan", "loans"))
	tw := tabwriter.NewWriter(s.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "LOAN\tASSET\tBORROWER\tDUE")
	for _, l := range loans {
		due := "-"
		if l.DueDate != nil {
			due = *l.DueDate
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", l.ID, l.AssetID, l.UserID, due)
	}
	return tw.Flush()
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
