package storage

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"

	"estate-browser/models"
)

const feedColumns = 14

// PostgresWriter persists exported feed snapshots to PostgreSQL.
type PostgresWriter struct {
	db *sql.DB
}

// NewPostgresWriter opens a connection to PostgreSQL, runs schema migrations,
// and returns a ready-to-use PostgresWriter.
func NewPostgresWriter(dsn string) (*PostgresWriter, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}

	for i := 0; i < 10; i++ {
		if err = db.Ping(); err == nil {
			break
		}
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: ping failed after retries: %w", err)
	}

	pw := &PostgresWriter{db: db}
	if err := pw.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: migrate: %w", err)
	}

	return pw, nil
}

func (pw *PostgresWriter) migrate() error {
	_, err := pw.db.Exec(`
		CREATE TABLE IF NOT EXISTS feed_snapshots (
			id          UUID         PRIMARY KEY,
			activation  BIGINT       NOT NULL,
			exported_at TIMESTAMPTZ  NOT NULL DEFAULT NOW()
		);

		CREATE TABLE IF NOT EXISTS feed_listings (
			snapshot_id    UUID          NOT NULL REFERENCES feed_snapshots(id) ON DELETE CASCADE,
			category       VARCHAR(16)   NOT NULL,
			position       INT           NOT NULL,
			listing_id     TEXT          NOT NULL,
			name           TEXT          NOT NULL DEFAULT '',
			address        TEXT          NOT NULL DEFAULT '',
			description    TEXT          NOT NULL DEFAULT '',
			type           VARCHAR(8)    NOT NULL,
			offer          BOOLEAN       NOT NULL DEFAULT FALSE,
			regular_price  NUMERIC(14,2) NOT NULL DEFAULT 0,
			discount_price NUMERIC(14,2),
			bedrooms       INT           NOT NULL DEFAULT 0,
			bathrooms      INT           NOT NULL DEFAULT 0,
			image_urls     TEXT[]        NOT NULL DEFAULT '{}',
			PRIMARY KEY (snapshot_id, category, position)
		);

		CREATE INDEX IF NOT EXISTS idx_feed_listings_listing  ON feed_listings(listing_id);
		CREATE INDEX IF NOT EXISTS idx_feed_listings_category ON feed_listings(category);
	`)
	return err
}

func (pw *PostgresWriter) Name() string { return "postgres" }

// WriteSnapshot stores the snapshot header and all its rows in one
// transaction, batch-inserting the rows.
func (pw *PostgresWriter) WriteSnapshot(snap *models.FeedSnapshot) error {
	tx, err := pw.db.Begin()
	if err != nil {
		return fmt.Errorf("postgres: begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(
		`INSERT INTO feed_snapshots (id, activation, exported_at) VALUES ($1, $2, $3)`,
		snap.ID, int64(snap.Activation), snap.ExportedAt,
	); err != nil {
		return fmt.Errorf("postgres: insert snapshot: %w", err)
	}

	const batchSize = 50
	for i := 0; i < len(snap.Rows); i += batchSize {
		end := i + batchSize
		if end > len(snap.Rows) {
			end = len(snap.Rows)
		}
		query, args := buildRowInsert(snap.ID, snap.Rows[i:end])
		if _, err := tx.Exec(query, args...); err != nil {
			return fmt.Errorf("postgres: insert rows: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("postgres: commit: %w", err)
	}
	return nil
}

// buildRowInsert returns a multi-row INSERT for batch and its arguments.
func buildRowInsert(snapshotID string, batch []models.FeedRow) (string, []interface{}) {
	valueStrings := make([]string, 0, len(batch))
	valueArgs := make([]interface{}, 0, len(batch)*feedColumns)

	for idx, r := range batch {
		base := idx * feedColumns
		ph := make([]string, feedColumns)
		for j := range ph {
			ph[j] = fmt.Sprintf("$%d", base+j+1)
		}
		valueStrings = append(valueStrings, "("+strings.Join(ph, ",")+")")

		l := r.Listing
		var discount interface{}
		if l.DiscountPrice != nil {
			discount = *l.DiscountPrice
		}
		imageURLs := l.ImageURLs
		if imageURLs == nil {
			imageURLs = []string{}
		}
		valueArgs = append(valueArgs,
			snapshotID, string(r.Category), r.Position, l.ID, l.Title, l.Address, l.Description,
			string(l.Type), l.Offer, l.RegularPrice, discount, l.Bedrooms, l.Bathrooms, pq.Array(imageURLs))
	}

	query := fmt.Sprintf(`
		INSERT INTO feed_listings (snapshot_id, category, position, listing_id, name, address,
			description, type, offer, regular_price, discount_price, bedrooms, bathrooms, image_urls)
		VALUES %s
	`, strings.Join(valueStrings, ","))
	return query, valueArgs
}

func (pw *PostgresWriter) Close() error {
	return pw.db.Close()
}

// FetchSnapshot loads a stored snapshot with its rows in display order.
func (pw *PostgresWriter) FetchSnapshot(id string) (*models.FeedSnapshot, error) {
	snap := &models.FeedSnapshot{ID: id}
	var activation int64
	err := pw.db.QueryRow(
		`SELECT activation, exported_at FROM feed_snapshots WHERE id = $1`, id,
	).Scan(&activation, &snap.ExportedAt)
	if err != nil {
		return nil, fmt.Errorf("postgres: fetch snapshot %s: %w", id, err)
	}
	snap.Activation = uint64(activation)

	rows, err := pw.db.Query(`
		SELECT category, position, listing_id, name, address, description, type, offer,
		       regular_price, discount_price, bedrooms, bathrooms, image_urls
		FROM feed_listings
		WHERE snapshot_id = $1
		ORDER BY CASE category WHEN 'offer' THEN 0 WHEN 'rent' THEN 1 ELSE 2 END, position
	`, id)
	if err != nil {
		return nil, fmt.Errorf("postgres: fetch rows: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			r        models.FeedRow
			category string
			typ      string
			discount sql.NullFloat64
		)
		if err := rows.Scan(
			&category, &r.Position, &r.Listing.ID, &r.Listing.Title, &r.Listing.Address,
			&r.Listing.Description, &typ, &r.Listing.Offer, &r.Listing.RegularPrice, &discount,
			&r.Listing.Bedrooms, &r.Listing.Bathrooms, pq.Array(&r.Listing.ImageURLs),
		); err != nil {
			return nil, fmt.Errorf("postgres: scan row: %w", err)
		}
		r.Category = models.Category(category)
		r.Listing.Type = models.ListingType(typ)
		if discount.Valid {
			d := discount.Float64
			r.Listing.DiscountPrice = &d
		}
		snap.Rows = append(snap.Rows, r)
	}
	return snap, rows.Err()
}
