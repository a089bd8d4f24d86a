package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/lib/pq"

	"engagement-insights/models"
)

// PostgresSource reads engagement records from PostgreSQL.
type PostgresSource struct {
	db *sql.DB
}

// NewPostgresSource opens a connection to PostgreSQL, runs schema migrations,
// and returns a ready-to-use PostgresSource.
func NewPostgresSource(ctx context.Context, dsn string) (*PostgresSource, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: ping: %w", err)
	}

	ps, err := NewPostgresSourceFromDB(ctx, db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return ps, nil
}

// NewPostgresSourceFromDB wraps an existing handle and migrates the schema.
func NewPostgresSourceFromDB(ctx context.Context, db *sql.DB) (*PostgresSource, error) {
	ps := &PostgresSource{db: db}
	if err := ps.migrate(ctx); err != nil {
		return nil, fmt.Errorf("postgres: migrate: %w", err)
	}
	return ps, nil
}

func (ps *PostgresSource) migrate(ctx context.Context) error {
	_, err := ps.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS engagement (
			id         SERIAL PRIMARY KEY,
			post_type  VARCHAR(32) NOT NULL,
			likes      INTEGER     NOT NULL DEFAULT 0 CHECK (likes >= 0),
			shares     INTEGER     NOT NULL DEFAULT 0 CHECK (shares >= 0),
			comments   INTEGER     NOT NULL DEFAULT 0 CHECK (comments >= 0),
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);

		CREATE INDEX IF NOT EXISTS idx_engagement_post_type ON engagement(post_type);
	`)
	return err
}

// Fetch retrieves all records stored for key.
func (ps *PostgresSource) Fetch(ctx context.Context, key string) ([]models.EngagementRecord, bool, error) {
	rows, err := ps.db.QueryContext(ctx, `
		SELECT post_type, likes, shares, comments
		FROM engagement
		WHERE post_type = $1
		ORDER BY id
	`, key)
	if err != nil {
		return nil, false, fmt.Errorf("postgres: fetch %q: %w", key, err)
	}
	defer rows.Close()

	var records []models.EngagementRecord
	for rows.Next() {
		var r models.EngagementRecord
		var pt string
		if err := rows.Scan(&pt, &r.Likes, &r.Shares, &r.Comments); err != nil {
			return nil, false, fmt.Errorf("postgres: scan row: %w", err)
		}
		r.PostType = models.PostType(pt)
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, false, fmt.Errorf("postgres: iterate rows: %w", err)
	}
	return records, len(records) > 0, nil
}

// Seed inserts records in a single statement. Used to load demo data.
func (ps *PostgresSource) Seed(ctx context.Context, records []models.EngagementRecord) error {
	if len(records) == 0 {
		return nil
	}

	valueStrings := make([]string, 0, len(records))
	valueArgs := make([]interface{}, 0, len(records)*4)
	for idx, r := range records {
		base := idx * 4
		valueStrings = append(valueStrings,
			fmt.Sprintf("($%d,$%d,$%d,$%d)", base+1, base+2, base+3, base+4))
		valueArgs = append(valueArgs, string(r.PostType), r.Likes, r.Shares, r.Comments)
	}

	query := fmt.Sprintf(`
		INSERT INTO engagement (post_type, likes, shares, comments)
		VALUES %s
	`, strings.Join(valueStrings, ","))

	if _, err := ps.db.ExecContext(ctx, query, valueArgs...); err != nil {
		return fmt.Errorf("postgres: seed: %w", err)
	}
	return nil
}

func (ps *PostgresSource) Close() error {
	return ps.db.Close()
}
