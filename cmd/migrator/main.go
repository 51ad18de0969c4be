package main

import (
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/ilyakaznacheev/cleanenv"

	"github.com/teampulse/pulse-service/internal/config"
)

const (
	defaultMigrationsPath  = "migrations"
	defaultMigrationsTable = "schema_migrations"
)

func main() {
	direction := "up"
	if len(os.Args) > 1 {
		direction = os.Args[1]
	}

	if err := run(direction); err != nil {
		log.Fatal(err)
	}
}

func run(direction string) error {
	dsn, err := databaseDSN()
	if err != nil {
		return fmt.Errorf("failed to resolve database dsn: %v", err)
	}

	m, err := migrate.New("file://"+migrationsPath(), dsn)
	if err != nil {
		return fmt.Errorf("failed to init migrator: %v", err)
	}

	switch direction {
	case "up":
		err = m.Up()
	case "down":
		err = m.Down()
	default:
		return fmt.Errorf("unknown direction '%s', want up or down", direction)
	}

	if errors.Is(err, migrate.ErrNoChange) {
		log.Println("database schema is already up to date")
		return nil
	}
	if err != nil {
		return fmt.Errorf("migration %s failed: %v", direction, err)
	}

	log.Printf("migration %s applied", direction)

	return nil
}

// databaseDSN builds the migrate connection string from the service
// config, so the tool always targets the same database the service uses.
func databaseDSN() (string, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		return "", errors.New("CONFIG_PATH is not set")
	}

	var cfg config.Config
	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		return "", fmt.Errorf("can't read config: %v", err)
	}

	table := os.Getenv("MIGRATIONS_TABLE")
	if table == "" {
		table = defaultMigrationsTable
	}

	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable&x-migrations-table=%s",
		cfg.Postgres.Username,
		cfg.Postgres.Password,
		cfg.Postgres.Host,
		cfg.Postgres.Port,
		cfg.Postgres.Database,
		table,
	), nil
}

func migrationsPath() string {
	if path := os.Getenv("MIGRATIONS_PATH"); path != "" {
		return path
	}

	return defaultMigrationsPath
}
