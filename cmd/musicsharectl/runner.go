package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"

	"musicshare/internal/app/admins"
	"musicshare/internal/auth"
	"musicshare/internal/config"
	"musicshare/internal/database"
	"musicshare/internal/store"
	"musicshare/migrations"
)

// Runner carries what every subcommand needs.
type Runner struct {
	logger *log.Logger
	cfg    *config.Config
}

func (r *Runner) before(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	if cmd.Bool("debug") {
		r.logger.SetLevel(log.DebugLevel)
	}
	cfg, err := config.Read(cmd.String("config"))
	if err != nil {
		return ctx, err
	}
	r.cfg = cfg
	return ctx, nil
}

func (r *Runner) open(ctx context.Context) (*sql.DB, error) {
	if r.cfg.Database.URL == "" {
		return nil, errors.New("DATABASE_URL is required (or DB_HOST, DB_USER, DB_NAME)")
	}
	r.logger.Debug("connecting to database")
	return database.Open(ctx, r.cfg.Database.URL, database.Pool{MaxOpenConns: 2})
}

// MigrateUp applies every pending migration.
func (r *Runner) MigrateUp(ctx context.Context, _ *cli.Command) error {
	db, err := r.open(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := migrations.Up(db); err != nil {
		return err
	}
	r.logger.Info("migrations applied")
	return nil
}

// MigrateDown reverts every applied migration.
func (r *Runner) MigrateDown(ctx context.Context, _ *cli.Command) error {
	db, err := r.open(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := migrations.Down(db); err != nil {
		return err
	}
	r.logger.Warn("all migrations reverted")
	return nil
}

// CreateAdmin bootstraps an admin account directly against the database.
func (r *Runner) CreateAdmin(ctx context.Context, cmd *cli.Command) error {
	db, err := r.open(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	svc := admins.New(store.New(db), auth.NewTokenManager(r.cfg.Security.JWTSecret, r.cfg.Security.TokenTTL))
	admin, err := svc.Create(ctx, cmd.String("email"), cmd.String("password"))
	if err != nil {
		return fmt.Errorf("create admin: %w", err)
	}
	r.logger.Info("admin created", "id", admin.ID, "email", admin.Email)
	return nil
}

func migrateCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "Apply or revert the database schema",
		Commands: []*cli.Command{
			{Name: "up", Usage: "Apply pending migrations", Action: r.MigrateUp},
			{Name: "down", Usage: "Revert all migrations", Action: r.MigrateDown},
		},
	}
}

func adminCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "admin",
		Usage: "Manage admin accounts",
		Commands: []*cli.Command{
			{
				Name:  "create",
				Usage: "Create an admin account",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "email", Usage: "Admin email address", Required: true},
					&cli.StringFlag{
						Name:     "password",
						Usage:    "Admin password",
						Required: true,
						Sources:  cli.EnvVars("MUSICSHARE_ADMIN_PASSWORD"),
					},
				},
				Action: r.CreateAdmin,
			},
		},
	}
}
