package main

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"musicshare/internal/config"
)

func clearDatabaseEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"DATABASE_URL", "DB_HOST", "DB_USER", "DB_NAME", "MUSICSHARE_CONFIG", "MUSICSHARE_ADMIN_PASSWORD"} {
		t.Setenv(key, "")
	}
}

func quietApp(runner *Runner) func(args ...string) error {
	app := newApp(runner)
	app.Writer = io.Discard
	app.ErrWriter = io.Discard
	return func(args ...string) error {
		return app.Run(context.Background(), append([]string{"musicsharectl"}, args...))
	}
}

func TestRunner(t *testing.T) {
	t.Run("open requires a database url", func(t *testing.T) {
		runner := &Runner{logger: log.New(io.Discard), cfg: config.Default()}

		if _, err := runner.open(context.Background()); err == nil || !strings.Contains(err.Error(), "DATABASE_URL") {
			t.Fatalf("expected DATABASE_URL error, got %v", err)
		}
	})

	t.Run("migrate up reads config before connecting", func(t *testing.T) {
		clearDatabaseEnv(t)
		path := filepath.Join(t.TempDir(), "musicshare.toml")
		if err := os.WriteFile(path, []byte("[server]\nport = 9191\n"), 0o600); err != nil {
			t.Fatalf("write config: %v", err)
		}
		runner := &Runner{logger: log.New(io.Discard)}

		err := quietApp(runner)("--config", path, "migrate", "up")
		if err == nil || !strings.Contains(err.Error(), "DATABASE_URL") {
			t.Fatalf("expected DATABASE_URL error, got %v", err)
		}
		if runner.cfg == nil || runner.cfg.Server.Port != 9191 {
			t.Fatalf("expected config from %s to be loaded, got %+v", path, runner.cfg)
		}
	})

	t.Run("debug flag raises log level", func(t *testing.T) {
		clearDatabaseEnv(t)
		runner := &Runner{logger: log.New(io.Discard)}

		_ = quietApp(runner)("--debug", "migrate", "down")
		if runner.logger.GetLevel() != log.DebugLevel {
			t.Fatalf("expected debug level, got %v", runner.logger.GetLevel())
		}
	})

	t.Run("admin create requires email", func(t *testing.T) {
		clearDatabaseEnv(t)
		runner := &Runner{logger: log.New(io.Discard)}

		err := quietApp(runner)("admin", "create", "--password", "Str0ng!pass")
		if err == nil || !strings.Contains(err.Error(), "email") {
			t.Fatalf("expected missing email error, got %v", err)
		}
	})
}
