package pgvector

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/kirillkom/saarthi-qa-gateway/internal/core/domain"
)

func newStoreWithMock(t *testing.T, table string) (*Store, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	return NewStore(db, table), mock, func() { _ = db.Close() }
}

func TestSearchScansSnippets(t *testing.T) {
	store, mock, done := newStoreWithMock(t, "")
	defer done()

	rows := sqlmock.NewRows([]string{"dataset", "chunk", "details", "score"}).
		AddRow("soil_health", "Sandy soil drains fast.", "district: Pune", 0.88).
		AddRow("crop_calendar", "Sow millet in June.", nil, 0.31)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT dataset, chunk, details, 1 - (embedding <=> $1) AS score
FROM "knowledge_chunks"`)).
		WithArgs(sqlmock.AnyArg(), 5).
		WillReturnRows(rows)

	got, err := store.Search(context.Background(), []float32{0.1, 0.2}, 5)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 snippets, got %d", len(got))
	}
	if got[0].Details != "district: Pune" || got[0].Relevance != 0.88 {
		t.Fatalf("unexpected first snippet: %+v", got[0])
	}
	if got[1].Details != "" || got[1].Dataset != "crop_calendar" {
		t.Fatalf("unexpected second snippet: %+v", got[1])
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestSearchFailureIsTemporary(t *testing.T) {
	store, mock, done := newStoreWithMock(t, "kb.chunks")
	defer done()

	mock.ExpectQuery(regexp.QuoteMeta(`FROM "kb"."chunks"`)).
		WillReturnError(errors.New("connection refused"))

	_, err := store.Search(context.Background(), []float32{0.1}, 3)
	if !domain.IsKind(err, domain.ErrTemporary) {
		t.Fatalf("expected temporary error, got %v", err)
	}
}

func TestCountReturnsTotalRows(t *testing.T) {
	store, mock, done := newStoreWithMock(t, "knowledge_chunks")
	defer done()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "knowledge_chunks"`)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(412))

	total, err := store.Count(context.Background())
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if total != 412 {
		t.Fatalf("expected 412, got %d", total)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
