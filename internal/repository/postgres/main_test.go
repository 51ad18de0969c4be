//go:build integration

package postgres

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jmoiron/sqlx"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

var (
	testDB *sqlx.DB
	logger *slog.Logger
)

// TestMain boots one throwaway database for the whole package and exits
// with the test run's code. Teardown happens on runWithPostgres's defer
// path, which is why os.Exit is not called from inside it.
func TestMain(m *testing.M) {
	logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	os.Exit(runWithPostgres(m))
}

func runWithPostgres(m *testing.M) int {
	ctx := context.Background()

	container, err := postgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:17"),
		postgres.WithDatabase("pulse_test"),
		postgres.WithUsername("pulse"),
		postgres.WithPassword("pulse"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(5*time.Second),
		),
	)
	if err != nil {
		log.Fatalf("could not start postgres container: %s", err)
	}
	defer func() {
		if err := container.Terminate(ctx); err != nil {
			log.Printf("could not stop postgres container: %s", err)
		}
	}()

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		log.Printf("failed to get connection string: %s", err)
		return 1
	}

	testDB, err = sqlx.Connect("postgres", connStr)
	if err != nil {
		log.Printf("failed to connect to test postgres: %s", err)
		return 1
	}
	defer testDB.Close()

	if err := applyMigrations(connStr); err != nil {
		log.Printf("failed to migrate test database: %s", err)
		return 1
	}

	return m.Run()
}

// applyMigrations runs the repository's SQL migrations against the
// container, resolving the migrations directory relative to this file.
func applyMigrations(connStr string) error {
	_, self, _, _ := runtime.Caller(0)
	dir := filepath.Join(filepath.Dir(self), "..", "..", "..", "migrations")

	migrator, err := migrate.New("file://"+filepath.ToSlash(dir), connStr)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}

	return migrator.Up()
}

func truncateTables(t *testing.T, db *sqlx.DB) {
	t.Helper()

	_, err := db.Exec("TRUNCATE TABLE user_links, cooldown_schedules, delivery_log RESTART IDENTITY CASCADE")
	if err != nil {
		t.Fatalf("failed to truncate tables: %v", err)
	}
}
