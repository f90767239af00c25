//go:build unit || e2e

package dbtest

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
)

func CreateTestAccount(t *testing.T, db DBLike, name string, balance int64) uuid.UUID {
	t.Helper()

	accountID := uuid.New()
	_, err := db.Exec(context.Background(),
		"INSERT INTO accounts (id, name, point_balance) VALUES ($1, $2, $3)",
		accountID, name, balance)
	require.NoError(t, err)
	return accountID
}

// CreateTestSchedule inserts a schedule of the seeded concert with seatCount seats
// and returns the schedule id and the seat ids in seat-number order.
func CreateTestSchedule(t *testing.T, db DBLike, seatCount int) (int64, []int64) {
	t.Helper()
	ctx := context.Background()

	var scheduleID int64
	err := db.QueryRow(ctx, `
		INSERT INTO concert_schedules (concert_id, starts_at)
		SELECT id, now() + interval '30 days' FROM concerts ORDER BY id LIMIT 1
		RETURNING id`).Scan(&scheduleID)
	require.NoError(t, err)

	seatIDs := make([]int64, 0, seatCount)
	for n := 1; n <= seatCount; n++ {
		var seatID int64
		err := db.QueryRow(ctx,
			"INSERT INTO seats (schedule_id, seat_number) VALUES ($1, $2) RETURNING id",
			scheduleID, n).Scan(&seatID)
		require.NoError(t, err)
		seatIDs = append(seatIDs, seatID)
	}
	return scheduleID, seatIDs
}

func PointBalance(t *testing.T, db DBLike, accountID uuid.UUID) int64 {
	t.Helper()
	var balance int64
	err := db.QueryRow(context.Background(),
		"SELECT point_balance FROM accounts WHERE id = $1", accountID).Scan(&balance)
	require.NoError(t, err)
	return balance
}

// LiveAllocations counts unreleased allocations per seat among seatIDs.
func LiveAllocations(t *testing.T, db DBLike, seatIDs []int64) map[int64]int {
	t.Helper()
	counts := make(map[int64]int, len(seatIDs))
	for _, id := range seatIDs {
		var n int
		err := db.QueryRow(context.Background(),
			"SELECT count(*) FROM seat_allocations WHERE seat_id = $1 AND released_at IS NULL", id).Scan(&n)
		require.NoError(t, err)
		counts[id] = n
	}
	return counts
}

// BackdateReservation moves created_at into the past so the unpaid window elapses.
func BackdateReservation(t *testing.T, db DBLike, reservationID int64, by time.Duration) {
	t.Helper()
	_, err := db.Exec(context.Background(),
		"UPDATE reservations SET created_at = created_at - $2::interval WHERE id = $1",
		reservationID, fmt.Sprintf("%d milliseconds", by.Milliseconds()))
	require.NoError(t, err)
}

// inserts basic reference data needed by tests
func SeedReferenceData(pool *pgxpool.Pool) error {
	ctx := context.Background()

	_, err := pool.Exec(ctx, `INSERT INTO concerts (title) VALUES ('Test Concert')`)
	return err
}

var (
	buildTruncateOnce sync.Once
	truncateSQL       atomic.Value // string
)

// truncates all tables and reseeds reference data
func ResetDB(pool *pgxpool.Pool) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	buildTruncateOnce.Do(func() {
		rows, err := pool.Query(ctx, `
		  SELECT 'public.' || quote_ident(tablename)
		  FROM pg_tables
		  WHERE schemaname = 'public'
		    AND tablename NOT IN ('atlas_schema_revisions')`)
		if err != nil {
			truncateSQL.Store("")
			return
		}
		defer rows.Close()
		var tables []string
		for rows.Next() {
			var t string
			if err := rows.Scan(&t); err != nil {
				truncateSQL.Store("")
				return
			}
			tables = append(tables, t)
		}
		if rows.Err() != nil {
			truncateSQL.Store("")
			return
		}
		if len(tables) == 0 {
			truncateSQL.Store("SELECT 1")
			return
		}
		truncateSQL.Store("TRUNCATE " + strings.Join(tables, ", ") + " RESTART IDENTITY CASCADE;")
	})
	sqlAny := truncateSQL.Load()
	if sqlAny == nil || sqlAny.(string) == "" {
		return fmt.Errorf("failed to build TRUNCATE SQL")
	}
	if _, err := pool.Exec(ctx, sqlAny.(string)); err != nil {
		return err
	}

	return SeedReferenceData(pool)
}
