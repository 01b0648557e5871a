package blackouts

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"

	"github.com/brightsmile-dental/clinic-api/internal/schedule"
)

func TestInsertAndListOrdering(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()

	slot := schedule.TimeSlot{Hour: 14, Minute: 30}
	repo.Insert(ctx, NewBlackoutRequest{Date: "2025-06-10", Slot: &slot})
	repo.Insert(ctx, NewBlackoutRequest{Date: "2025-06-05", Reason: "conference"})

	list, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 blackouts, got %d", len(list))
	}
	if list[0].Date != "2025-06-05" {
		t.Errorf("expected earliest date first, got %s", list[0].Date)
	}
	if !list[0].FullDay() {
		t.Error("expected record without slot to be full-day")
	}
	if list[1].FullDay() {
		t.Error("expected record with slot not to be full-day")
	}
}

func TestListIsIdempotentWithoutWrites(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()
	repo.Insert(ctx, NewBlackoutRequest{Date: "2025-06-05"})

	first, _ := repo.List(ctx)
	second, _ := repo.List(ctx)
	if len(first) != len(second) || *first[0] != *second[0] {
		t.Error("expected identical results from consecutive reads")
	}
}

func TestDeleteUnknownID(t *testing.T) {
	repo := NewInMemoryRepository()

	err := repo.Delete(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestPostgresInsertFullDayStoresNull(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock pool: %v", err)
	}
	defer mock.Close()
	repo := NewPostgresRepositoryWithDB(mock)

	mock.ExpectQuery("INSERT INTO blackouts").
		WithArgs(pgxmock.AnyArg(), "2025-06-05", nil, "conference").
		WillReturnRows(pgxmock.NewRows([]string{"created_at"}).AddRow(time.Now()))

	b, err := repo.Insert(context.Background(), NewBlackoutRequest{Date: "2025-06-05", Reason: "conference"})
	if err != nil {
		t.Fatalf("Insert returned error: %v", err)
	}
	if !b.FullDay() {
		t.Error("expected full-day blackout")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestPostgresListParsesNullableColumns(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock pool: %v", err)
	}
	defer mock.Close()
	repo := NewPostgresRepositoryWithDB(mock)

	rows := pgxmock.NewRows([]string{"id", "blackout_date", "blackout_time", "reason", "created_at"}).
		AddRow("b1", "2025-06-05", nil, nil, time.Now()).
		AddRow("b2", "2025-06-06", "14:30", "staff meeting", time.Now())
	mock.ExpectQuery("SELECT (.+) FROM blackouts").WillReturnRows(rows)

	list, err := repo.List(context.Background())
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(list))
	}
	if !list[0].FullDay() || list[0].Reason != "" {
		t.Errorf("expected null columns to map to full-day/no reason, got %+v", list[0])
	}
	if list[1].FullDay() || *list[1].Slot != (schedule.TimeSlot{Hour: 14, Minute: 30}) {
		t.Errorf("expected parsed 14:30 slot, got %+v", list[1])
	}
}
