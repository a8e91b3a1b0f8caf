package main

import (
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	_ "github.com/lib/pq"
	"github.com/maillots/storefront/internal/infrastructure/config"
	"github.com/maillots/storefront/internal/infrastructure/logger"
	"github.com/maillots/storefront/internal/infrastructure/migration"
	"go.uber.org/zap"
)

const defaultMigrationsPath = "migrations"

var errUsage = errors.New("usage")

func main() {
	os.Exit(run(os.Args[1:], os.Stdout))
}

// migrateCmd runs one subcommand. Filesystem commands get a nil migrator.
type migrateCmd struct {
	needsDB bool
	run     func(m *migration.Migrator, dir string, args []string) error
}

type app struct {
	log *zap.Logger
	out io.Writer
}

func run(args []string, out io.Writer) int {
	fs := flag.NewFlagSet("migrate", flag.ContinueOnError)
	fs.SetOutput(out)
	dir := fs.String("path", "", "Path to migrations directory (default: ./migrations)")
	level := fs.String("log-level", "info", "Log level (debug, info, warn, error)")
	fs.Usage = func() { printUsage(out) }
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if fs.NArg() == 0 {
		printUsage(out)
		return 2
	}

	log, err := logger.New(logger.CommandConfig(*level))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		return 1
	}
	defer func() {
		_ = log.Sync()
	}()

	a := &app{log: log, out: out}
	if err := a.dispatch(*dir, fs.Args()); err != nil {
		if errors.Is(err, errUsage) {
			fmt.Fprintln(out, err)
			printUsage(out)
			return 2
		}
		log.Error("Migration command failed", zap.String("command", fs.Arg(0)), zap.Error(err))
		return 1
	}
	return 0
}

func (a *app) commands() map[string]migrateCmd {
	return map[string]migrateCmd{
		"create":  {run: a.create},
		"list":    {run: a.list},
		"up":      {needsDB: true, run: func(m *migration.Migrator, _ string, _ []string) error { return m.Up() }},
		"down":    {needsDB: true, run: func(m *migration.Migrator, _ string, _ []string) error { return m.Down() }},
		"step":    {needsDB: true, run: a.step},
		"force":   {needsDB: true, run: a.force},
		"status":  {needsDB: true, run: a.status},
		"version": {needsDB: true, run: a.status},
	}
}

func (a *app) dispatch(dir string, args []string) error {
	cmd, ok := a.commands()[args[0]]
	if !ok {
		return fmt.Errorf("%w: unknown command %q", errUsage, args[0])
	}
	dir, err := resolveMigrationsPath(dir)
	if err != nil {
		return fmt.Errorf("resolve migrations path: %w", err)
	}
	a.log.Debug("Migration command", zap.String("command", args[0]), zap.String("migrations_path", dir))

	if !cmd.needsDB {
		return cmd.run(nil, dir, args[1:])
	}

	m, closeDB, err := a.open(dir)
	if err != nil {
		return err
	}
	defer closeDB()
	return cmd.run(m, dir, args[1:])
}

// open connects to the configured Postgres database
func (a *app) open(dir string) (*migration.Migrator, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load configuration: %w", err)
	}
	if cfg.Database.Driver == "sqlite" {
		return nil, nil, errors.New("SQL migrations target postgres; the server creates the sqlite schema itself")
	}

	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		return nil, nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("ping database: %w", err)
	}
	m, err := migration.New(db, dir, a.log)
	if err != nil {
		_ = db.Close()
		return nil, nil, err
	}
	return m, func() {
		if err := m.Close(); err != nil {
			a.log.Warn("Failed to close migrator", zap.Error(err))
		}
	}, nil
}

func (a *app) create(_ *migration.Migrator, dir string, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: create needs a migration name", errUsage)
	}
	description := ""
	if len(args) > 1 {
		description = args[1]
	}
	mf, err := migration.CreateMigration(dir, args[0], description)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, mf.UpPath)
	fmt.Fprintln(a.out, mf.DownPath)
	a.log.Info("Migration created", zap.Uint("version", mf.Version), zap.String("name", mf.Name))
	return nil
}

func (a *app) list(_ *migration.Migrator, dir string, _ []string) error {
	migrations, err := migration.ListMigrations(dir)
	if err != nil {
		return err
	}
	for _, name := range migrations {
		fmt.Fprintln(a.out, name)
	}
	return nil
}

func (a *app) step(m *migration.Migrator, _ string, args []string) error {
	n, err := intArg(args, "step count")
	if err != nil {
		return err
	}
	return m.Steps(n)
}

func (a *app) force(m *migration.Migrator, _ string, args []string) error {
	version, err := intArg(args, "version")
	if err != nil {
		return err
	}
	return m.Force(version)
}

func (a *app) status(m *migration.Migrator, dir string, _ []string) error {
	available, err := migration.ListMigrations(dir)
	if err != nil {
		return err
	}
	status, err := m.Status(available)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "version: %d\ndirty:   %t\npending: %d\n", status.Version, status.Dirty, status.Pending)
	return nil
}

func intArg(args []string, what string) (int, error) {
	if len(args) == 0 {
		return 0, fmt.Errorf("%w: %s required", errUsage, what)
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		return 0, fmt.Errorf("%w: invalid %s %q", errUsage, what, args[0])
	}
	return n, nil
}

// resolveMigrationsPath falls back to ./migrations, then to the repo root
// relative to the executable
func resolveMigrationsPath(path string) (string, error) {
	if path != "" {
		return filepath.Abs(path)
	}
	if _, err := os.Stat(defaultMigrationsPath); err != nil {
		if execPath, err := os.Executable(); err == nil {
			candidate := filepath.Join(filepath.Dir(execPath), "..", "..", defaultMigrationsPath)
			if _, err := os.Stat(candidate); err == nil {
				return filepath.Abs(candidate)
			}
		}
	}
	return filepath.Abs(defaultMigrationsPath)
}

func printUsage(w io.Writer) {
	fmt.Fprint(w, `Usage: migrate [flags] <command> [arguments]

Commands:
  up                    Apply all pending migrations
  down                  Roll back all migrations
  step <n>              Apply n migrations (positive=up, negative=down)
  status, version       Show current version and pending count
  force <version>       Record a version without running it (clears a dirty state)
  create <name> [desc]  Create a new migration file pair
  list                  List available migrations

Flags:
  -path string          Path to migrations directory (default: ./migrations)
  -log-level string     Log level: debug, info, warn, error (default: info)

Database settings come from config.toml, .env and STORE_DATABASE_* variables.
`)
}
