//go:build unit || e2e

package dbtest

import (
	"context"
	"strings"
	"testing"
	"time"

	"table-booking/internal/infra/db"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
)

func CreateTestTable(t *testing.T, conn DBLike, number, capacity int, location string) uuid.UUID {
	t.Helper()

	tableID := uuid.New()
	ctx := context.Background()

	tag, err := conn.Exec(ctx,
		`INSERT INTO venue_tables (id, number, capacity, location, status, features, min_duration_minutes, max_duration_minutes, created_at)
		VALUES ($1, $2, $3, $4, 'available', '{}', 30, 120, now()) ON CONFLICT (number) DO NOTHING`,
		tableID, number, capacity, location)
	require.NoError(t, err)

	if tag.RowsAffected() == 0 {
		_ = conn.QueryRow(ctx, "SELECT id FROM venue_tables WHERE number = $1", number).Scan(&tableID)
	}

	return tableID
}

func CreateTestCustomer(t *testing.T, conn DBLike, name, phone string) uuid.UUID {
	t.Helper()

	customerID := uuid.New()
	ctx := context.Background()

	tag, err := conn.Exec(ctx,
		"INSERT INTO customers (id, name, phone, visit_count, notes, created_at) VALUES ($1, $2, $3, 0, '{}', now()) ON CONFLICT (phone) DO NOTHING",
		customerID, name, phone)
	require.NoError(t, err)

	if tag.RowsAffected() == 0 {
		_ = conn.QueryRow(ctx, "SELECT id FROM customers WHERE phone = $1", phone).Scan(&customerID)
	}

	return customerID
}

// CountRows is a quick assertion helper for tests that bypass the API.
func CountRows(t *testing.T, conn DBLike, tableName string) int {
	t.Helper()

	var n int
	err := conn.QueryRow(context.Background(), "SELECT COUNT(*) FROM "+tableName).Scan(&n)
	require.NoError(t, err)
	return n
}

// truncates all tables
func ResetDB(pool *pgxpool.Pool) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := pool.Exec(ctx, "TRUNCATE "+strings.Join(db.Tables, ", ")+" CASCADE")
	return err
}
