package dedup

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/lib/pq"
)

// PostgresStore persists processed posts in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore connects, pings, and ensures the schema exists.
func NewPostgresStore(connectionString string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	store := &PostgresStore{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

func (ps *PostgresStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS processed_posts (
		partition_key   VARCHAR(255) NOT NULL,
		row_key         VARCHAR(64) NOT NULL,
		title           TEXT NOT NULL,
		link            TEXT NOT NULL,
		source_name     VARCHAR(255),
		summary         TEXT,
		english_bullets TEXT,
		korean_bullets  TEXT,
		published_at    VARCHAR(40),
		processed_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		PRIMARY KEY (partition_key, row_key)
	);

	CREATE INDEX IF NOT EXISTS idx_processed_posts_processed_at ON processed_posts(processed_at);
	CREATE INDEX IF NOT EXISTS idx_processed_posts_link ON processed_posts(link);
	`

	if _, err := ps.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

func (ps *PostgresStore) Get(ctx context.Context, partition, row string) (bool, error) {
	var one int
	err := ps.db.QueryRowContext(ctx,
		`SELECT 1 FROM processed_posts WHERE partition_key = $1 AND row_key = $2`,
		partition, row).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("dedup lookup failed: %w", err)
	}
	return true, nil
}

func (ps *PostgresStore) Upsert(ctx context.Context, partition, row string, rec Record) error {
	en, err := json.Marshal(rec.EnglishBullets)
	if err != nil {
		return fmt.Errorf("failed to encode english bullets: %w", err)
	}
	ko, err := json.Marshal(rec.KoreanBullets)
	if err != nil {
		return fmt.Errorf("failed to encode korean bullets: %w", err)
	}

	query := `
		INSERT INTO processed_posts
			(partition_key, row_key, title, link, source_name, summary, english_bullets, korean_bullets, published_at, processed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (partition_key, row_key) DO UPDATE SET
			title           = EXCLUDED.title,
			link            = EXCLUDED.link,
			source_name     = EXCLUDED.source_name,
			summary         = EXCLUDED.summary,
			english_bullets = EXCLUDED.english_bullets,
			korean_bullets  = EXCLUDED.korean_bullets,
			published_at    = EXCLUDED.published_at,
			processed_at    = EXCLUDED.processed_at
	`

	_, err = ps.db.ExecContext(ctx, query,
		partition, row, rec.Title, rec.Link, rec.SourceName, rec.Summary,
		string(en), string(ko), rec.PublishedAt, rec.ProcessedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert processed post: %w", err)
	}
	return nil
}

func (ps *PostgresStore) Close() error {
	if ps.db != nil {
		return ps.db.Close()
	}
	return nil
}
