package pgvector

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	_ "github.com/jackc/pgx/v5/stdlib"
	pgv "github.com/pgvector/pgvector-go"

	"github.com/kirillkom/saarthi-qa-gateway/internal/core/domain"
)

const DefaultTable = "knowledge_chunks"

// Store searches a prebuilt table with columns
// dataset, chunk, details and embedding vector(n) by cosine distance.
type Store struct {
	db    *sql.DB
	table string
}

func NewStore(db *sql.DB, table string) *Store {
	table = strings.TrimSpace(table)
	if table == "" {
		table = DefaultTable
	}
	return &Store{
		db:    db,
		table: pgx.Identifier(strings.Split(table, ".")).Sanitize(),
	}
}

func OpenDB(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql open: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return db, nil
}

func (s *Store) Search(ctx context.Context, queryVector []float32, limit int) ([]domain.SourceSnippet, error) {
	if limit <= 0 {
		return []domain.SourceSnippet{}, nil
	}

	query := fmt.Sprintf(`
SELECT dataset, chunk, details, 1 - (embedding <=> $1) AS score
FROM %s
ORDER BY embedding <=> $1
LIMIT $2`, s.table)

	rows, err := s.db.QueryContext(ctx, query, pgv.NewVector(queryVector), limit)
	if err != nil {
		return nil, domain.WrapError(domain.ErrTemporary, "pgvector search", err)
	}
	defer rows.Close()

	out := make([]domain.SourceSnippet, 0, limit)
	for rows.Next() {
		var (
			snippet domain.SourceSnippet
			details sql.NullString
		)
		if err := rows.Scan(&snippet.Dataset, &snippet.Chunk, &details, &snippet.Relevance); err != nil {
			return nil, fmt.Errorf("scan search row: %w", err)
		}
		snippet.Details = details.String
		out = append(out, snippet)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate search rows: %w", err)
	}
	return out, nil
}

func (s *Store) Count(ctx context.Context) (int, error) {
	var total int
	if err := s.db.QueryRowContext(ctx, fmt.Sprintf(`SELECT count(*) FROM %s`, s.table)).Scan(&total); err != nil {
		return 0, domain.WrapError(domain.ErrTemporary, "pgvector count", err)
	}
	return total, nil
}
