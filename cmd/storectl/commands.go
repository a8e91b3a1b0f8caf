package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"sort"

	"github.com/google/uuid"
	identityapp "github.com/maillots/storefront/internal/application/identity"
	"github.com/maillots/storefront/internal/application/notification"
	"github.com/maillots/storefront/internal/application/reconciliation"
	"github.com/maillots/storefront/internal/domain/identity"
	"github.com/maillots/storefront/internal/infrastructure/logger"
	"github.com/maillots/storefront/internal/infrastructure/storage"
	"github.com/maillots/storefront/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// Reconciler runs the batch repairs
type Reconciler interface {
	RecalculateOrderTotals(ctx context.Context, opts reconciliation.RecalculationOptions) (*reconciliation.RecalculationResult, error)
	SyncOrdersPayments(ctx context.Context, opts reconciliation.SyncOptions) (*reconciliation.SyncResult, error)
	CleanEmptyOrders(ctx context.Context, dryRun bool) (int, error)
}

// EmailJobs runs the email maintenance commands
type EmailJobs interface {
	SendCartReminders(ctx context.Context, hours int, dryRun bool) (*notification.ReminderResult, error)
	SeedDefaultTemplates(ctx context.Context, overwrite bool) (*notification.SeedResult, error)
}

// Accounts creates login accounts
type Accounts interface {
	CreateUser(ctx context.Context, input identityapp.CreateUserInput) (*identity.User, error)
}

// errUsage marks a bad invocation; main prints the usage text for it
var errUsage = errors.New("invalid usage")

// errHelp stops a command after its flags were printed
var errHelp = errors.New("help requested")

type command struct {
	name    string
	summary string
	run     func(ctx context.Context, args []string) error
}

type cli struct {
	reconciler   Reconciler
	email        EmailJobs
	out          io.Writer
	logger       *zap.Logger
	accounts     Accounts
	reminderHrs  int
	openBucket   func(ctx context.Context, bucket string) (storage.ObjectStore, error)
	saveReport   func(ctx context.Context, target string, report *reconciliation.ConsistencyReport) (string, error)
	commandTable map[string]command
}

func newCLI(reconciler Reconciler, email EmailJobs, out io.Writer, reminderHours int, logger *zap.Logger) *cli {
	if logger == nil {
		logger = zap.NewNop()
	}
	if reminderHours <= 0 {
		reminderHours = 24
	}
	c := &cli{
		reconciler:  reconciler,
		email:       email,
		out:         out,
		logger:      logger,
		reminderHrs: reminderHours,
	}
	c.saveReport = c.exportReport
	c.commandTable = map[string]command{
		"recalculate-order-totals": {"recalculate-order-totals", "Recompute order subtotals and totals from their lines", c.recalculateOrderTotals},
		"sync-orders-payments":     {"sync-orders-payments", "Report or repair order/payment status and amount drift", c.syncOrdersPayments},
		"send-cart-reminders":      {"send-cart-reminders", "Email customers whose cart has been idle", c.sendCartReminders},
		"init-email-templates":     {"init-email-templates", "Store the default email templates", c.initEmailTemplates},
		"clean-empty-orders":       {"clean-empty-orders", "Delete orders that have no lines", c.cleanEmptyOrders},
		"create-user":              {"create-user", "Create a customer or staff login", c.createUser},
	}
	return c
}

// Run dispatches args[0] to its command
func (c *cli) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errUsage
	}
	cmd, ok := c.commandTable[args[0]]
	if !ok {
		return fmt.Errorf("%w: unknown command %q", errUsage, args[0])
	}
	ctx, cmdLogger := logger.WithCommand(ctx, c.logger, cmd.name)
	cmdLogger.Info("Running command")

	var err error
	telemetry.WithProfilingLabels(ctx, func(ctx context.Context) {
		err = cmd.run(ctx, args[1:])
	}, "command", cmd.name)
	return err
}

func (c *cli) usage(w io.Writer) {
	fmt.Fprintln(w, "Usage: storectl <command> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	names := make([]string, 0, len(c.commandTable))
	for name := range c.commandTable {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(w, "  %-26s %s\n", name, c.commandTable[name].summary)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'storectl <command> -h' for the flags of a command.")
}

func (c *cli) flagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(c.out)
	return fs
}

// parseFlags maps -h to errHelp and other parse failures to errUsage
func parseFlags(fs *flag.FlagSet, args []string) error {
	err := fs.Parse(args)
	if errors.Is(err, flag.ErrHelp) {
		return errHelp
	}
	if err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	return nil
}

func (c *cli) recalculateOrderTotals(ctx context.Context, args []string) error {
	fs := c.flagSet("recalculate-order-totals")
	dryRun := fs.Bool("dry-run", false, "report drift without saving")
	orderNumber := fs.String("order-number", "", "only analyze this order")
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	if *dryRun {
		fmt.Fprintln(c.out, "DRY RUN: no order will be modified")
	}
	result, err := c.reconciler.RecalculateOrderTotals(ctx, reconciliation.RecalculationOptions{
		DryRun:      *dryRun,
		OrderNumber: *orderNumber,
	})
	if err != nil {
		return err
	}

	for _, corr := range result.Corrections {
		fmt.Fprintf(c.out, "Order %s (%d items)\n", corr.OrderNumber, corr.ItemCount)
		fmt.Fprintf(c.out, "  subtotal: %s -> %s\n", corr.OldSubtotal, corr.NewSubtotal)
		fmt.Fprintf(c.out, "  total:    %s -> %s (shipping %s)\n", corr.OldTotal, corr.NewTotal, corr.ShippingCost)
	}
	fmt.Fprintf(c.out, "Orders analyzed: %d\n", result.Analyzed)
	fmt.Fprintf(c.out, "Inconsistent orders: %d\n", result.Inconsistent)
	if *dryRun {
		if result.Inconsistent > 0 {
			fmt.Fprintln(c.out, "Run without --dry-run to apply the corrections.")
		}
	} else {
		fmt.Fprintf(c.out, "Orders corrected: %d\n", result.Corrected)
	}
	return nil
}

func (c *cli) syncOrdersPayments(ctx context.Context, args []string) error {
	fs := c.flagSet("sync-orders-payments")
	dryRun := fs.Bool("dry-run", false, "report inconsistencies without fixing")
	fix := fs.Bool("fix", false, "re-sync every inconsistent order")
	orderID := fs.String("order-id", "", "only sync this order")
	exportPath := fs.String("export", "", "write the consistency report to this .xlsx file or s3://bucket/key")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if *dryRun && *fix {
		return fmt.Errorf("%w: --dry-run and --fix are mutually exclusive", errUsage)
	}

	opts := reconciliation.SyncOptions{DryRun: *dryRun, Fix: *fix}
	if *orderID != "" {
		id, err := uuid.Parse(*orderID)
		if err != nil {
			return fmt.Errorf("%w: invalid --order-id %q", errUsage, *orderID)
		}
		opts.OrderID = &id
	}

	result, err := c.reconciler.SyncOrdersPayments(ctx, opts)
	if err != nil {
		return err
	}

	if opts.OrderID != nil {
		switch {
		case result.DryRun:
			fmt.Fprintf(c.out, "DRY RUN: order %s would be re-synced\n", result.OrderNumber)
		case result.Synced:
			fmt.Fprintf(c.out, "Order %s synced with its payment\n", result.OrderNumber)
		default:
			fmt.Fprintf(c.out, "Order %s has no payment, nothing to sync\n", result.OrderNumber)
		}
		return nil
	}

	c.printReport(result.Report)
	if *exportPath != "" && result.Report != nil {
		location, err := c.saveReport(ctx, *exportPath, result.Report)
		if err != nil {
			return fmt.Errorf("export report: %w", err)
		}
		fmt.Fprintf(c.out, "Report written to %s\n", location)
	}

	switch {
	case result.FixApplied:
		fmt.Fprintf(c.out, "Fixed %d of %d orders\n", result.Fixed, result.Total)
	case result.Report != nil && !result.Report.IsEmpty() && !result.DryRun:
		fmt.Fprintln(c.out, "Run with --fix to repair these orders.")
	}
	return nil
}

func (c *cli) printReport(report *reconciliation.ConsistencyReport) {
	if report == nil {
		return
	}
	fmt.Fprintf(c.out, "Pairs checked: %d\n", report.PairsChecked)
	if report.IsEmpty() {
		fmt.Fprintln(c.out, "No inconsistency found.")
		return
	}
	if len(report.StatusMismatches) > 0 {
		fmt.Fprintf(c.out, "Status inconsistencies: %d\n", len(report.StatusMismatches))
		for _, m := range report.StatusMismatches {
			fmt.Fprintf(c.out, "  %s: order %s, payment %s (expected %s)\n",
				m.OrderNumber, m.OrderPaymentStatus, m.PaymentStatus, m.ExpectedPaymentStatus)
		}
	}
	if len(report.AmountMismatches) > 0 {
		fmt.Fprintf(c.out, "Amount inconsistencies: %d\n", len(report.AmountMismatches))
		for _, m := range report.AmountMismatches {
			fmt.Fprintf(c.out, "  %s: order %s, payment %s (difference %s)\n",
				m.OrderNumber, m.OrderTotal, m.PaymentAmount, m.Difference)
		}
	}
}

func (c *cli) sendCartReminders(ctx context.Context, args []string) error {
	fs := c.flagSet("send-cart-reminders")
	hours := fs.Int("hours", c.reminderHrs, "minimum cart idle time in hours")
	dryRun := fs.Bool("dry-run", false, "list recipients without sending")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if *hours <= 0 {
		return fmt.Errorf("%w: --hours must be positive", errUsage)
	}

	result, err := c.email.SendCartReminders(ctx, *hours, *dryRun)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "Carts idle since before %s: %d\n", result.Cutoff.Format("2006-01-02 15:04"), result.Candidates)
	if result.DryRun {
		fmt.Fprintf(c.out, "DRY RUN: %d reminders would be sent\n", result.WouldSend)
		return nil
	}
	fmt.Fprintf(c.out, "Reminders sent: %d, skipped: %d, failed: %d\n", result.Sent, result.Skipped, result.Failed)
	return nil
}

func (c *cli) initEmailTemplates(ctx context.Context, args []string) error {
	fs := c.flagSet("init-email-templates")
	overwrite := fs.Bool("overwrite", false, "replace templates that already exist")
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	result, err := c.email.SeedDefaultTemplates(ctx, *overwrite)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "Templates created: %d, updated: %d, skipped: %d\n", result.Created, result.Updated, result.Skipped)
	return nil
}

func (c *cli) cleanEmptyOrders(ctx context.Context, args []string) error {
	fs := c.flagSet("clean-empty-orders")
	dryRun := fs.Bool("dry-run", false, "count empty orders without deleting")
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	n, err := c.reconciler.CleanEmptyOrders(ctx, *dryRun)
	if err != nil {
		return err
	}
	if *dryRun {
		fmt.Fprintf(c.out, "DRY RUN: %d empty orders would be deleted\n", n)
		return nil
	}
	fmt.Fprintf(c.out, "Empty orders deleted: %d\n", n)
	return nil
}

func (c *cli) createUser(ctx context.Context, args []string) error {
	fs := c.flagSet("create-user")
	email := fs.String("email", "", "login email (required)")
	password := fs.String("password", "", "initial password, at least 8 characters (required)")
	firstName := fs.String("first-name", "", "first name")
	lastName := fs.String("last-name", "", "last name")
	staff := fs.Bool("staff", false, "grant access to the admin dashboard")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if *email == "" || *password == "" {
		return fmt.Errorf("%w: --email and --password are required", errUsage)
	}
	if c.accounts == nil {
		return errors.New("account management is not available")
	}

	user, err := c.accounts.CreateUser(ctx, identityapp.CreateUserInput{
		Email:     *email,
		Password:  *password,
		FirstName: *firstName,
		LastName:  *lastName,
		IsStaff:   *staff,
	})
	if err != nil {
		return err
	}
	role := "customer"
	if user.IsStaff {
		role = "staff"
	}
	fmt.Fprintf(c.out, "Created %s user %s (%s)\n", role, user.Email, user.ID)
	return nil
}
