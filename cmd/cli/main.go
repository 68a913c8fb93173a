// Command cli is the operator tool: schema migrations, administrator
// seeding and the back-office actions that are handy outside the API.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/amirasaad/axeria/infra"
	infraeventbus "github.com/amirasaad/axeria/infra/eventbus"
	"github.com/amirasaad/axeria/infra/initializer"
	"github.com/amirasaad/axeria/infra/migrations"
	infrarepo "github.com/amirasaad/axeria/infra/repository"
	"github.com/amirasaad/axeria/pkg/app"
	"github.com/amirasaad/axeria/pkg/config"
	"github.com/fatih/color"
	"github.com/google/uuid"
	"golang.org/x/term"
	"gorm.io/gorm"
)

const usage = `Usage: cli <command> [arguments]

Commands:
  migrate up|down                 apply or roll back the schema
  create-admin <username> <email> create an administrator (password is prompted)
  pending-payments                list payments awaiting approval
  approve-payment <payment_id>    approve a pending payment
  reconcile <user_id>             compare stored balances with the ledger
  settle                          settle every expired live trade now`

var (
	success = color.New(color.FgGreen, color.Bold)
	notice  = color.New(color.FgYellow)
	failure = color.New(color.FgRed, color.Bold)

	stdin = bufio.NewReader(os.Stdin)
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println(usage)
		os.Exit(2)
	}
	if err := run(os.Args[1:]); err != nil {
		_, _ = failure.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	cfg, err := config.Load(".env")
	if err != nil {
		return fmt.Errorf("failed to load application configuration: %w", err)
	}
	logger := initializer.SetupLogger(cfg.Log, os.Stderr)
	db, err := infra.NewDBConnection(cfg.DB, cfg.Env)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close() //nolint:errcheck
	}

	if args[0] == "migrate" {
		return migrate(db, args[1:], os.Stdout)
	}
	// The CLI authenticates nobody, so the app falls back to basic auth.
	cfg.Auth = nil
	a := app.New(&app.Deps{
		Uow:      infrarepo.NewUoW(db),
		EventBus: infraeventbus.NewWithMemory(logger),
		Logger:   logger,
	}, cfg)
	c := &cli{app: a, out: os.Stdout, readPassword: promptPassword}
	return c.dispatch(context.Background(), args)
}

type cli struct {
	app          *app.App
	out          io.Writer
	readPassword func(prompt string) (string, error)
}

func (c *cli) dispatch(ctx context.Context, args []string) error {
	switch args[0] {
	case "create-admin":
		if len(args) != 3 {
			return errors.New("usage: create-admin <username> <email>")
		}
		return c.createAdmin(ctx, args[1], args[2])
	case "pending-payments":
		return c.pendingPayments(ctx)
	case "approve-payment":
		if len(args) != 2 {
			return errors.New("usage: approve-payment <payment_id>")
		}
		return c.approvePayment(ctx, args[1])
	case "reconcile":
		if len(args) != 2 {
			return errors.New("usage: reconcile <user_id>")
		}
		return c.reconcile(ctx, args[1])
	case "settle":
		return c.settle(ctx)
	}
	return fmt.Errorf("unknown command %q\n\n%s", args[0], usage)
}

func (c *cli) createAdmin(ctx context.Context, username, email string) error {
	password, err := c.readPassword("Password: ")
	if err != nil {
		return err
	}
	confirm, err := c.readPassword("Repeat password: ")
	if err != nil {
		return err
	}
	if password != confirm {
		return errors.New("passwords do not match")
	}
	u, err := c.app.UserService.CreateAdmin(ctx, username, email, password)
	if err != nil {
		return err
	}
	_, err = success.Fprintf(c.out, "Administrator %s created (ID=%s)\n", u.Username, u.ID)
	return err
}

func (c *cli) pendingPayments(ctx context.Context) error {
	payments, err := c.app.PaymentService.ListPending(ctx)
	if err != nil {
		return err
	}
	if len(payments) == 0 {
		_, err = notice.Fprintln(c.out, "No pending payments")
		return err
	}
	for _, p := range payments {
		fmt.Fprintf(c.out, "%s  %-14s  %-7s  %10s  %s\n",
			p.ID, p.TransactionNo, p.Purpose, p.Amount.StringFixed(2), p.CreatedAt.Format(time.DateTime))
	}
	return nil
}

func (c *cli) approvePayment(ctx context.Context, raw string) error {
	id, err := uuid.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid payment id %q", raw)
	}
	p, err := c.app.PaymentService.Approve(ctx, id)
	if err != nil {
		return err
	}
	_, err = success.Fprintf(c.out, "Payment %s approved: %s credited\n", p.TransactionNo, p.Amount.StringFixed(2))
	return err
}

func (c *cli) reconcile(ctx context.Context, raw string) error {
	id, err := uuid.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid user id %q", raw)
	}
	drift, err := c.app.LedgerService.Reconcile(ctx, id)
	if err != nil {
		return err
	}
	if len(drift) == 0 {
		_, err = success.Fprintln(c.out, "Balances match the ledger")
		return err
	}
	for _, d := range drift {
		_, _ = failure.Fprintf(c.out, "%-16s stored=%s ledger=%s\n",
			d.Field, d.Stored.StringFixed(2), d.Computed.StringFixed(2))
	}
	return fmt.Errorf("%d field(s) drifted", len(drift))
}

func (c *cli) settle(ctx context.Context) error {
	settled, err := c.app.LiveTradeService.Settle(ctx, uuid.Nil, time.Now().UTC())
	if err != nil {
		return err
	}
	_, err = success.Fprintf(c.out, "%d live trade(s) settled\n", len(settled))
	return err
}

func migrate(db *gorm.DB, args []string, out io.Writer) error {
	direction := "up"
	if len(args) > 0 {
		direction = args[0]
	}
	if db.Dialector.Name() != "postgres" {
		if direction != "up" {
			return fmt.Errorf("migrate %s is only supported on postgres", direction)
		}
		if err := infrarepo.AutoMigrate(db); err != nil {
			return err
		}
		_, err := success.Fprintln(out, "Schema up to date")
		return err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	switch direction {
	case "up":
		err = migrations.Up(sqlDB)
	case "down":
		err = migrations.Down(sqlDB)
	default:
		return fmt.Errorf("unknown migrate direction %q", direction)
	}
	if err != nil {
		return err
	}
	_, err = success.Fprintf(out, "Migrated %s\n", direction)
	return err
}

// promptPassword reads without echo on a terminal and a plain line
// otherwise, so passwords can be piped in scripts.
func promptPassword(prompt string) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		line, err := stdin.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return "", err
		}
		return strings.TrimRight(line, "\r\n"), nil
	}
	fmt.Fprint(os.Stderr, prompt)
	b, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
