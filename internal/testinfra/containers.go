// Package testinfra starts throwaway databases for integration tests.
package testinfra

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	PostgresImage    = "postgres:17-alpine"
	PostgresUser     = "student"
	PostgresPassword = "student"
	PostgresDB       = "sparkifydb"

	// DSNEnv points integration tests at an existing database instead of a container.
	DSNEnv = "SPARKIFY_TEST_DSN"
)

type PostgresContainer struct {
	*postgres.PostgresContainer
	ConnString string
}

// StartSimplePostgres runs a plain Postgres container with the student
// credentials and returns once it accepts connections.
func StartSimplePostgres(ctx context.Context) (*PostgresContainer, error) {
	ctr, err := postgres.Run(ctx,
		PostgresImage,
		postgres.WithUsername(PostgresUser),
		postgres.WithPassword(PostgresPassword),
		postgres.WithDatabase(PostgresDB),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("start postgres: %w", err)
	}

	connStr, err := ctr.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		ctr.Terminate(ctx) //nolint:errcheck
		return nil, fmt.Errorf("get connection string: %w", err)
	}
	return &PostgresContainer{PostgresContainer: ctr, ConnString: connStr}, nil
}

var (
	containerOnce sync.Once
	containerConn string
	containerErr  error
)

func sharedContainer() (string, error) {
	containerOnce.Do(func() {
		c, err := StartSimplePostgres(context.Background())
		if err != nil {
			containerErr = err
			return
		}
		containerConn = c.ConnString
	})
	return containerConn, containerErr
}

// RequirePostgres returns a DSN for an integration database.
// Priority: SPARKIFY_TEST_DSN > shared testcontainer > skip.
func RequirePostgres(t *testing.T) string {
	t.Helper()

	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	if dsn := os.Getenv(DSNEnv); dsn != "" {
		return dsn
	}
	dsn, err := sharedContainer()
	if err != nil {
		t.Skipf("%s not set and Docker unavailable: %v", DSNEnv, err)
	}
	return dsn
}
