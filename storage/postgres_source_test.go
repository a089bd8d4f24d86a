package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"engagement-insights/models"
)

func newMockedSource(t *testing.T) (*PostgresSource, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS engagement").
		WillReturnResult(sqlmock.NewResult(0, 0))

	src, err := NewPostgresSourceFromDB(context.Background(), db)
	if err != nil {
		t.Fatalf("NewPostgresSourceFromDB: %v", err)
	}
	return src, mock
}

func TestPostgresSourceFetch(t *testing.T) {
	src, mock := newMockedSource(t)

	mock.ExpectQuery("FROM engagement WHERE post_type").
		WithArgs("reels").
		WillReturnRows(sqlmock.NewRows([]string{"post_type", "likes", "shares", "comments"}).
			AddRow("reels", 200, 60, 45).
			AddRow("reels", 180, 40, 35))

	records, found, err := src.Fetch(context.Background(), "reels")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if !found || len(records) != 2 {
		t.Fatalf("expected 2 records, got %d (found=%v)", len(records), found)
	}
	want := models.EngagementRecord{PostType: models.Reels, Likes: 200, Shares: 60, Comments: 45}
	if records[0] != want {
		t.Errorf("records[0]: got %+v, want %+v", records[0], want)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestPostgresSourceFetchNoRows(t *testing.T) {
	src, mock := newMockedSource(t)

	mock.ExpectQuery("FROM engagement WHERE post_type").
		WithArgs("story").
		WillReturnRows(sqlmock.NewRows([]string{"post_type", "likes", "shares", "comments"}))

	records, found, err := src.Fetch(context.Background(), "story")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if found || len(records) != 0 {
		t.Errorf("expected absence, got %+v", records)
	}
}

func TestPostgresSourceFetchError(t *testing.T) {
	src, mock := newMockedSource(t)

	boom := errors.New("connection reset")
	mock.ExpectQuery("FROM engagement WHERE post_type").
		WithArgs("static").
		WillReturnError(boom)

	_, _, err := src.Fetch(context.Background(), "static")
	if !errors.Is(err, boom) {
		t.Errorf("expected wrapped driver error, got %v", err)
	}
}

func TestPostgresSourceSeed(t *testing.T) {
	src, mock := newMockedSource(t)

	mock.ExpectExec("INSERT INTO engagement").
		WithArgs("carousel", 120, 30, 15, "static", 80, 10, 12).
		WillReturnResult(sqlmock.NewResult(0, 2))

	err := src.Seed(context.Background(), []models.EngagementRecord{
		{PostType: models.Carousel, Likes: 120, Shares: 30, Comments: 15},
		{PostType: models.Static, Likes: 80, Shares: 10, Comments: 12},
	})
	if err != nil {
		t.Fatalf("Seed: %v", err)
	}
	if err := src.Seed(context.Background(), nil); err != nil {
		t.Errorf("Seed(nil) should be a no-op, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestPostgresSourceMigrateError(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS engagement").WillReturnError(errors.New("denied"))

	if _, err := NewPostgresSourceFromDB(context.Background(), db); err == nil {
		t.Error("expected migrate error")
	}
}
