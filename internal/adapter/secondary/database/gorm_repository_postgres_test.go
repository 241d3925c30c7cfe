package database

import (
	"os"
	"testing"

	"github.com/cashflow/geidea-payments/internal/constant/model/db"
)

// newPostgresDB connects to TEST_DATABASE_URL with the production pool, so
// concurrent transactions contend on real row locks
func newPostgresDB(t *testing.T) *db.DB {
	t.Helper()
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	database, err := db.NewDB(url)
	if err != nil {
		t.Fatalf("connect postgres: %v", err)
	}
	t.Cleanup(func() { _ = database.Close() })
	return database
}

func TestGormPaymentRepository_TransitionStatus_ConcurrentWebhooks_Postgres(t *testing.T) {
	repo := NewGormPaymentRepository(newPostgresDB(t).DB)
	for i := 0; i < 20; i++ {
		assertSingleTransition(t, repo)
	}
}
