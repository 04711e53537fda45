package schedule

import (
	"context"
	"testing"
	"time"

	pgxmock "github.com/pashagolub/pgxmock/v4"
)

func TestBusySlots(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create pgx mock: %v", err)
	}
	defer mock.Close()

	repo := newPostgresRepositoryWithQuerier(mock)

	rows := pgxmock.NewRows([]string{"date", "start", "end"}).
		AddRow("2026-09-01", "09:00", "10:00").
		AddRow("2026-09-01", "14:00", "15:00")
	mock.ExpectQuery(`FROM slots`).
		WithArgs(int64(3), "2026-08-30", "2026-09-06").
		WillReturnRows(rows)

	from := time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 7)
	busy, err := repo.BusySlots(context.Background(), 3, from, to)
	if err != nil {
		t.Fatalf("busy slots failed: %v", err)
	}
	if len(busy) != 2 || busy[1].Start != "14:00" {
		t.Fatalf("unexpected busy intervals: %#v", busy)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
