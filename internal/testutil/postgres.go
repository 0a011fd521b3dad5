// Package testutil provisions backing services for database-backed test suites.
package testutil

import (
	"context"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/mtlprog/taskdesk/internal/database"
)

const postgresImage = "postgres:16-alpine"

// Truncate lists every table the suites write to.
const Truncate = "TRUNCATE users, tasks, notifications CASCADE"

// Postgres returns a migrated pool. DATABASE_URL wins when set; otherwise a
// throwaway container is started and terminated when the test finishes.
func Postgres(t testing.TB) *pgxpool.Pool {
	t.Helper()
	ctx := context.Background()

	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		container, err := tcpostgres.Run(ctx, postgresImage,
			tcpostgres.WithDatabase("taskdesk"),
			tcpostgres.WithUsername("taskdesk"),
			tcpostgres.WithPassword("taskdesk"),
			tcpostgres.BasicWaitStrategies(),
		)
		if err != nil {
			t.Fatalf("start postgres container: %v", err)
		}
		t.Cleanup(func() {
			if err := testcontainers.TerminateContainer(container); err != nil {
				t.Logf("terminate postgres container: %v", err)
			}
		})

		databaseURL, err = container.ConnectionString(ctx, "sslmode=disable")
		if err != nil {
			t.Fatalf("postgres connection string: %v", err)
		}
	}

	db, err := database.New(ctx, databaseURL)
	if err != nil {
		t.Fatalf("connect to database: %v", err)
	}
	t.Cleanup(db.Close)

	if err := database.RunMigrations(ctx, db.Pool()); err != nil {
		t.Fatalf("run migrations: %v", err)
	}

	return db.Pool()
}
