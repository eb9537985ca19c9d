package postgres

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/ronnydonkey/scatterbrain-ai/internal/store"
	"github.com/ronnydonkey/scatterbrain-ai/internal/store/storetest"
)

// postgresDSN returns SCATTERBRAIN_POSTGRES_DSN, or starts a throwaway container
// when SCATTERBRAIN_TESTCONTAINERS=1. Otherwise the test is skipped.
func postgresDSN(t *testing.T) string {
	t.Helper()
	if dsn := os.Getenv("SCATTERBRAIN_POSTGRES_DSN"); dsn != "" {
		return dsn
	}
	if os.Getenv("SCATTERBRAIN_TESTCONTAINERS") != "1" {
		t.Skip("SCATTERBRAIN_POSTGRES_DSN not set and SCATTERBRAIN_TESTCONTAINERS!=1; skipping postgres store integration test")
	}

	ctx := context.Background()
	req := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "scatterbrain",
			"POSTGRES_PASSWORD": "scatterbrain",
			"POSTGRES_DB":       "scatterbrain",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Fatalf("failed to start container: %v", err)
	}
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("failed to get container host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		t.Fatalf("failed to get container port: %v", err)
	}
	return fmt.Sprintf("postgres://scatterbrain:scatterbrain@%s:%s/scatterbrain?sslmode=disable", host, port.Port())
}

func TestPostgresStore_Compliance(t *testing.T) {
	dsn := postgresDSN(t)
	db, err := Open(dsn)
	if err != nil {
		t.Fatalf("postgres open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err := Bootstrap(context.Background(), db); err != nil {
		t.Fatalf("bootstrap: %v", err)
	}

	storetest.Run(t, func(t *testing.T) store.Store { return NewWithDB(db) })
}
