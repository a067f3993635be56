package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"

	"rooms-aggregator/models"
	"rooms-aggregator/utils"
)

const insertColumns = 10

// PostgresWriter upserts aggregated listings into PostgreSQL, tagging each row
// with the aggregation run that last saw it.
type PostgresWriter struct {
	db    *sql.DB
	runID string
}

// NewPostgresWriter opens a connection to PostgreSQL, runs schema migrations,
// and returns a ready-to-use PostgresWriter.
func NewPostgresWriter(ctx context.Context, dsn, runID string, logger *utils.Logger) (*PostgresWriter, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}

	ping := &utils.RetryConfig{MaxAttempts: 6, BaseDelay: 500 * time.Millisecond, Logger: logger}
	if err := ping.Do(ctx, "postgres-ping", func() error { return db.PingContext(ctx) }); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: ping: %w", err)
	}

	pw := &PostgresWriter{db: db, runID: runID}
	if err := pw.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: migrate: %w", err)
	}

	return pw, nil
}

func (pw *PostgresWriter) migrate(ctx context.Context) error {
	_, err := pw.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS room_listings (
			id          SERIAL PRIMARY KEY,
			run_id      UUID         NOT NULL,
			source      VARCHAR(32)  NOT NULL,
			title       TEXT         NOT NULL,
			price       INTEGER,
			currency    VARCHAR(8)   NOT NULL DEFAULT 'PLN',
			location    TEXT         NOT NULL DEFAULT '',
			url         TEXT         UNIQUE NOT NULL,
			room_type   VARCHAR(16)  NOT NULL DEFAULT '',
			area        NUMERIC(7,2),
			image_url   TEXT         NOT NULL DEFAULT '',
			seen_at     TIMESTAMPTZ  NOT NULL DEFAULT NOW()
		);

		CREATE INDEX IF NOT EXISTS idx_room_listings_price  ON room_listings(price);
		CREATE INDEX IF NOT EXISTS idx_room_listings_source ON room_listings(source);
		CREATE INDEX IF NOT EXISTS idx_room_listings_run    ON room_listings(run_id);
	`)
	return err
}

func (pw *PostgresWriter) Write(listings []models.Listing) error {
	return pw.WriteContext(context.Background(), listings)
}

// WriteContext batch-upserts listings; a URL seen before is refreshed in place.
func (pw *PostgresWriter) WriteContext(ctx context.Context, listings []models.Listing) error {
	const batchSize = 50
	for i := 0; i < len(listings); i += batchSize {
		end := min(i+batchSize, len(listings))
		query, args := buildUpsert(pw.runID, listings[i:end])
		if _, err := pw.db.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("postgres: upsert batch %d: %w", i/batchSize, err)
		}
	}
	return nil
}

func buildUpsert(runID string, batch []models.Listing) (string, []any) {
	valueStrings := make([]string, 0, len(batch))
	valueArgs := make([]any, 0, len(batch)*insertColumns)

	for idx, l := range batch {
		base := idx * insertColumns
		ph := make([]string, insertColumns)
		for c := range ph {
			ph[c] = fmt.Sprintf("$%d", base+c+1)
		}
		valueStrings = append(valueStrings, "("+strings.Join(ph, ",")+")")
		valueArgs = append(valueArgs,
			runID, string(l.Source), l.Title, l.Price, l.Currency,
			l.Location, l.URL, string(l.RoomType), l.Area, l.ImageURL)
	}

	query := fmt.Sprintf(`
		INSERT INTO room_listings (run_id, source, title, price, currency, location, url, room_type, area, image_url)
		VALUES %s
		ON CONFLICT (url) DO UPDATE SET
			run_id    = EXCLUDED.run_id,
			title     = EXCLUDED.title,
			price     = EXCLUDED.price,
			location  = EXCLUDED.location,
			room_type = EXCLUDED.room_type,
			area      = EXCLUDED.area,
			image_url = EXCLUDED.image_url,
			seen_at   = NOW()
	`, strings.Join(valueStrings, ","))

	return query, valueArgs
}

func (pw *PostgresWriter) Close() error {
	return pw.db.Close()
}

// FetchRun reads back the listings stored by this writer's run, cheapest first.
func (pw *PostgresWriter) FetchRun(ctx context.Context) ([]models.Listing, error) {
	rows, err := pw.db.QueryContext(ctx, `
		SELECT source, title, price, currency, location, url, room_type, area, image_url
		FROM room_listings
		WHERE run_id = $1
		ORDER BY price ASC NULLS LAST, id
	`, pw.runID)
	if err != nil {
		return nil, fmt.Errorf("postgres: fetch run: %w", err)
	}
	defer rows.Close()

	var listings []models.Listing
	for rows.Next() {
		var (
			l     models.Listing
			src   string
			rt    string
			price sql.NullInt64
			area  sql.NullFloat64
		)
		if err := rows.Scan(
			&src, &l.Title, &price, &l.Currency, &l.Location,
			&l.URL, &rt, &area, &l.ImageURL,
		); err != nil {
			return nil, fmt.Errorf("postgres: scan row: %w", err)
		}
		l.Source = models.Source(src)
		l.RoomType = models.RoomType(rt)
		if price.Valid {
			p := int(price.Int64)
			l.Price = &p
		}
		if area.Valid {
			a := area.Float64
			l.Area = &a
		}
		listings = append(listings, l)
	}
	return listings, rows.Err()
}
