package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"

	"github.com/hourglass-dev/timetube/internal/domain/model"
	"github.com/hourglass-dev/timetube/internal/domain/repository"
)

var slotColumns = []string{
	"slot_time", "video_id", "video_url", "title", "view_count", "thumbnail_url", "created_at", "updated_at",
}

func slotRow(slotTime, videoID string, createdAt, updatedAt time.Time) []any {
	return []any{
		slotTime, videoID, "https://www.youtube.com/watch?v=" + videoID,
		"Live at " + slotTime, int64(0), nil, createdAt, updatedAt,
	}
}

func TestSlotRepository_Get(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name     string
		slotTime string
		mockFn   func(mock pgxmock.PgxPoolIface)
		want     *model.TimeSlot
		wantErr  error
	}{
		{
			name:     "successful retrieval",
			slotTime: "12:00",
			mockFn: func(mock pgxmock.PgxPoolIface) {
				rows := pgxmock.NewRows(slotColumns).
					AddRow(slotRow("12:00", "abc123", now, now)...)
				mock.ExpectQuery("SELECT .* FROM slots WHERE slot_time =").
					WithArgs("12:00").
					WillReturnRows(rows)
			},
			want: &model.TimeSlot{
				Time:    "12:00",
				VideoID: "abc123",
			},
		},
		{
			name:     "slot not found",
			slotTime: "03:14",
			mockFn: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery("SELECT .* FROM slots WHERE slot_time =").
					WithArgs("03:14").
					WillReturnError(pgx.ErrNoRows)
			},
			wantErr: repository.ErrSlotNotFound,
		},
		{
			name:     "nullable thumbnail scans to empty string",
			slotTime: "12:00",
			mockFn: func(mock pgxmock.PgxPoolIface) {
				thumb := "http://img/medium.jpg"
				rows := pgxmock.NewRows(slotColumns).
					AddRow("12:00", "abc123", "url", "title", int64(42), &thumb, now, now)
				mock.ExpectQuery("SELECT .* FROM slots WHERE slot_time =").
					WithArgs("12:00").
					WillReturnRows(rows)
			},
			want: &model.TimeSlot{
				Time:         "12:00",
				VideoID:      "abc123",
				ThumbnailURL: "http://img/medium.jpg",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, err := pgxmock.NewPool()
			if err != nil {
				t.Fatalf("failed to create mock: %v", err)
			}
			defer mock.Close()

			tt.mockFn(mock)

			repo := NewSlotRepository(mock)
			got, err := repo.Get(context.Background(), tt.slotTime)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("Get() error = %v, wantErr %v", err, tt.wantErr)
				}
				return
			}

			if err != nil {
				t.Fatalf("Get() unexpected error = %v", err)
			}
			if got.Time != tt.want.Time || got.VideoID != tt.want.VideoID || got.ThumbnailURL != tt.want.ThumbnailURL {
				t.Errorf("Get() = %+v, want %+v", got, tt.want)
			}

			if err := mock.ExpectationsWereMet(); err != nil {
				t.Errorf("unfulfilled expectations: %v", err)
			}
		})
	}
}

func TestSlotRepository_Upsert(t *testing.T) {
	slot := &model.TimeSlot{
		Time:      "19:34",
		VideoID:   "abc123",
		VideoURL:  "https://www.youtube.com/watch?v=abc123",
		Title:     "7:34 PM walk",
		ViewCount: 1200,
		CreatedAt: time.Now().Add(-time.Hour),
		UpdatedAt: time.Now().Add(-time.Hour),
	}

	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock: %v", err)
	}
	defer mock.Close()

	mock.ExpectQuery("INSERT INTO slots").
		WithArgs(
			slot.Time,
			slot.VideoID,
			slot.VideoURL,
			slot.Title,
			slot.ViewCount,
			pgxmock.AnyArg(), // thumbnail pointer
			slot.CreatedAt,
			pgxmock.AnyArg(), // refreshed updated_at
		).
		WillReturnRows(pgxmock.NewRows([]string{"created_at"}).AddRow(slot.CreatedAt))

	repo := NewSlotRepository(mock)
	before := time.Now()
	if err := repo.Upsert(context.Background(), slot); err != nil {
		t.Fatalf("Upsert() unexpected error: %v", err)
	}

	if slot.UpdatedAt.Before(before) {
		t.Error("Upsert() must refresh UpdatedAt")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestSlotRepository_Upsert_PreservesStoredCreatedAt(t *testing.T) {
	originalCreated := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	slot := &model.TimeSlot{
		Time:      "19:34",
		VideoID:   "def456",
		VideoURL:  "https://www.youtube.com/watch?v=def456",
		Title:     "Sunset at 7:34 PM",
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock: %v", err)
	}
	defer mock.Close()

	// The conflict path keeps the row's created_at; Upsert must hand that
	// value back so the in-memory slot matches the durable row.
	mock.ExpectQuery("INSERT INTO slots").
		WithArgs(
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
		).
		WillReturnRows(pgxmock.NewRows([]string{"created_at"}).AddRow(originalCreated))

	repo := NewSlotRepository(mock)
	if err := repo.Upsert(context.Background(), slot); err != nil {
		t.Fatalf("Upsert() unexpected error: %v", err)
	}
	if !slot.CreatedAt.Equal(originalCreated) {
		t.Errorf("CreatedAt = %v, want stored %v", slot.CreatedAt, originalCreated)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestSlotRepository_Upsert_DBError(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock: %v", err)
	}
	defer mock.Close()

	mock.ExpectQuery("INSERT INTO slots").
		WillReturnError(errors.New("connection refused"))

	repo := NewSlotRepository(mock)
	slot := &model.TimeSlot{Time: "19:34", VideoID: "abc123"}
	if err := repo.Upsert(context.Background(), slot); err == nil {
		t.Fatal("Upsert() expected error, got nil")
	}
}

func TestSlotRepository_Count(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock: %v", err)
	}
	defer mock.Close()

	mock.ExpectQuery("SELECT COUNT").
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(1440))

	repo := NewSlotRepository(mock)
	got, err := repo.Count(context.Background())
	if err != nil {
		t.Fatalf("Count() unexpected error: %v", err)
	}
	if got != 1440 {
		t.Errorf("Count() = %d, want 1440", got)
	}
}

func TestSlotRepository_EvictOldest(t *testing.T) {
	tests := []struct {
		name         string
		rowsAffected int64
	}{
		{"removes one slot", 1},
		{"no-op on empty store", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, err := pgxmock.NewPool()
			if err != nil {
				t.Fatalf("failed to create mock: %v", err)
			}
			defer mock.Close()

			mock.ExpectExec("DELETE FROM slots").
				WillReturnResult(pgxmock.NewResult("DELETE", tt.rowsAffected))

			repo := NewSlotRepository(mock)
			if err := repo.EvictOldest(context.Background()); err != nil {
				t.Errorf("EvictOldest() unexpected error: %v", err)
			}
			if err := mock.ExpectationsWereMet(); err != nil {
				t.Errorf("unfulfilled expectations: %v", err)
			}
		})
	}
}

func TestSlotRepository_Range(t *testing.T) {
	now := time.Now()

	t.Run("straight interval", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		if err != nil {
			t.Fatalf("failed to create mock: %v", err)
		}
		defer mock.Close()

		rows := pgxmock.NewRows(slotColumns).
			AddRow(slotRow("11:45", "a", now, now)...).
			AddRow(slotRow("12:00", "b", now, now)...)
		mock.ExpectQuery("SELECT .* FROM slots WHERE slot_time >= .* AND slot_time <=").
			WithArgs("11:30", "12:30", 120).
			WillReturnRows(rows)

		repo := NewSlotRepository(mock)
		got, err := repo.Range(context.Background(), "11:30", "12:30", 120)
		if err != nil {
			t.Fatalf("Range() unexpected error: %v", err)
		}
		if len(got) != 2 || got[0].Time != "11:45" || got[1].Time != "12:00" {
			t.Errorf("Range() returned wrong slots: %+v", got)
		}
	})

	t.Run("wrapping interval orders from start", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		if err != nil {
			t.Fatalf("failed to create mock: %v", err)
		}
		defer mock.Close()

		// The wrap query sorts the late-evening segment before the
		// early-morning one: 23:15, 23:45, 00:10.
		rows := pgxmock.NewRows(slotColumns).
			AddRow(slotRow("23:15", "a", now, now)...).
			AddRow(slotRow("23:45", "b", now, now)...).
			AddRow(slotRow("00:10", "c", now, now)...)
		mock.ExpectQuery("SELECT .* FROM slots WHERE slot_time >= .* OR slot_time <=").
			WithArgs("23:00", "00:30", 200).
			WillReturnRows(rows)

		repo := NewSlotRepository(mock)
		got, err := repo.Range(context.Background(), "23:00", "00:30", 200)
		if err != nil {
			t.Fatalf("Range() unexpected error: %v", err)
		}
		want := []string{"23:15", "23:45", "00:10"}
		if len(got) != len(want) {
			t.Fatalf("Range() returned %d slots, want %d", len(got), len(want))
		}
		for i, w := range want {
			if got[i].Time != w {
				t.Errorf("Range()[%d].Time = %q, want %q", i, got[i].Time, w)
			}
		}
	})
}

func TestSlotRepository_List(t *testing.T) {
	now := time.Now()

	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock: %v", err)
	}
	defer mock.Close()

	rows := pgxmock.NewRows(slotColumns).
		AddRow(slotRow("00:10", "a", now, now)...).
		AddRow(slotRow("00:40", "b", now, now)...)
	mock.ExpectQuery("SELECT .* FROM slots ORDER BY slot_time").
		WithArgs(2, 4).
		WillReturnRows(rows)

	repo := NewSlotRepository(mock)
	got, err := repo.List(context.Background(), 2, 4)
	if err != nil {
		t.Fatalf("List() unexpected error: %v", err)
	}
	if len(got) != 2 || got[0].Time != "00:10" || got[1].Time != "00:40" {
		t.Errorf("List() returned wrong slots: %+v", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}
