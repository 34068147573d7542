package test_utils

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/acadportal/eventportal/internal/config"
	"github.com/acadportal/eventportal/internal/database"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
)

const snapshotName = "eventportal-test-snapshot"

var (
	startOnce sync.Once
	container *postgres.PostgresContainer
	dbConfig  config.Database
	startErr  error
)

func startPostgres() {
	ctx := context.Background()

	projectRoot, err := findProjectRoot()
	if err != nil {
		startErr = err
		return
	}

	container, err = postgres.Run(
		ctx, "postgres:18.1-alpine",
		postgres.WithInitScripts(filepath.Join(projectRoot, "dev", "init.sql")),
		postgres.WithDatabase("eventportal"),
		postgres.WithUsername("test_eventportal"),
		postgres.WithPassword("test_eventportal"),
		postgres.BasicWaitStrategies(),
	)
	if err != nil {
		startErr = fmt.Errorf("failed to start postgres container: %w", err)
		return
	}

	host, _ := container.Host(ctx)
	port, _ := container.MappedPort(ctx, "5432/tcp")
	log.Infof("Postgres container started at %s:%d", host, port.Int())

	dbConfig = config.Database{
		Host:   host,
		Port:   port.Int(),
		User:   "test_eventportal",
		Pass:   "test_eventportal",
		Name:   "eventportal",
		Schema: "eventportal",
	}
	if err := database.Migrate(dbConfig); err != nil {
		startErr = fmt.Errorf("failed to apply migrations: %w", err)
		return
	}
	if err := container.Snapshot(ctx, postgres.WithSnapshotName(snapshotName)); err != nil {
		startErr = fmt.Errorf("failed to snapshot postgres container: %w", err)
	}
}

// TestWithDB returns a pool on a migrated database. The container is shared by the package's
// tests and restored to its migrated snapshot after every test. Tests are skipped without Docker.
func TestWithDB(t *testing.T) *pgxpool.Pool {
	t.Helper()
	testcontainers.SkipIfProviderIsNotHealthy(t)

	startOnce.Do(startPostgres)
	if startErr != nil {
		t.Fatal(startErr)
	}

	ctx := context.Background()
	pool, err := database.Open(ctx, dbConfig)
	if err != nil {
		t.Fatalf("failed to open database connection: %v", err)
	}
	t.Cleanup(func() {
		pool.Close()
		if err := container.Restore(ctx, postgres.WithSnapshotName(snapshotName)); err != nil {
			t.Errorf("failed to restore snapshot: %v", err)
		}
	})
	return pool
}

// TerminateDB stops the shared container; call it from TestMain after m.Run.
func TerminateDB() {
	if container == nil {
		return
	}
	if err := testcontainers.TerminateContainer(container); err != nil {
		log.Errorf("failed to terminate container: %v", err)
	}
}

func findProjectRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("could not find project root")
		}
		dir = parent
	}
}
