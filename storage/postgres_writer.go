package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"

	"grocery-scraper/models"
)

// PostgresWriter persists processed products to PostgreSQL and tracks scrape
// runs in a companion table.
type PostgresWriter struct {
	db      *sql.DB
	replace bool
}

// NewPostgresWriter opens a connection to PostgreSQL, runs schema migrations,
// and returns a ready-to-use PostgresWriter. When replace is true, existing
// products with the same ID are overwritten instead of skipped.
func NewPostgresWriter(dsn string, replace bool) (*PostgresWriter, error) {
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
		return nil, fmt.Errorf("postgres: ping failed after retries: %w", err)
	}

	pw := &PostgresWriter{db: db, replace: replace}
	if err := pw.migrate(); err != nil {
		return nil, fmt.Errorf("postgres: migrate: %w", err)
	}

	return pw, nil
}

func (pw *PostgresWriter) migrate() error {
	_, err := pw.db.Exec(`
		CREATE TABLE IF NOT EXISTS products (
			product_id  TEXT         PRIMARY KEY,
			name        TEXT         NOT NULL,
			brand       TEXT         NOT NULL DEFAULT '',
			info        TEXT         NOT NULL DEFAULT '',
			price       NUMERIC(10,2) NOT NULL DEFAULT 0,
			price_text  TEXT         NOT NULL DEFAULT '',
			unit_price  TEXT         NOT NULL DEFAULT '',
			image_url   TEXT         NOT NULL DEFAULT '',
			category    TEXT         NOT NULL DEFAULT '',
			subcategory TEXT         NOT NULL DEFAULT '',
			url         TEXT         NOT NULL DEFAULT '',
			attributes  JSONB        NOT NULL DEFAULT '{}',
			scraped_at  TIMESTAMPTZ  NOT NULL DEFAULT NOW(),
			run_id      TEXT         NOT NULL DEFAULT ''
		);

		CREATE INDEX IF NOT EXISTS idx_products_subcategory ON products(subcategory);
		CREATE INDEX IF NOT EXISTS idx_products_brand       ON products(brand);
		CREATE INDEX IF NOT EXISTS idx_products_run_id      ON products(run_id);

		CREATE TABLE IF NOT EXISTS scrape_runs (
			run_id        TEXT        PRIMARY KEY,
			scraper_type  TEXT        NOT NULL,
			category_url  TEXT        NOT NULL,
			max_products  INTEGER,
			replace_existing BOOLEAN  NOT NULL DEFAULT FALSE,
			config        JSONB       NOT NULL DEFAULT '{}',
			status        TEXT        NOT NULL DEFAULT 'running',
			error_message TEXT        NOT NULL DEFAULT '',
			started_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			ended_at      TIMESTAMPTZ
		);
	`)
	return err
}

// Clear deletes all products and run records.
func (pw *PostgresWriter) Clear() error {
	if _, err := pw.db.Exec("DELETE FROM products"); err != nil {
		return fmt.Errorf("postgres: clear products: %w", err)
	}
	if _, err := pw.db.Exec("DELETE FROM scrape_runs"); err != nil {
		return fmt.Errorf("postgres: clear scrape_runs: %w", err)
	}
	return nil
}

// Write batch-inserts products, upserting or skipping conflicts depending on
// the replace setting.
func (pw *PostgresWriter) Write(products []*models.Product) error {
	if len(products) == 0 {
		return nil
	}

	const batchSize = 50
	for i := 0; i < len(products); i += batchSize {
		end := i + batchSize
		if end > len(products) {
			end = len(products)
		}
		if err := pw.insertBatch(products[i:end]); err != nil {
			return err
		}
	}
	return nil
}

func (pw *PostgresWriter) insertBatch(batch []*models.Product) error {
	const cols = 14
	valueStrings := make([]string, 0, len(batch))
	valueArgs := make([]interface{}, 0, len(batch)*cols)

	for idx, p := range batch {
		attrs, err := json.Marshal(p.Attributes)
		if err != nil {
			return fmt.Errorf("postgres: marshal attributes for %s: %w", p.ProductID, err)
		}

		base := idx * cols
		placeholders := make([]string, cols)
		for j := 0; j < cols; j++ {
			placeholders[j] = fmt.Sprintf("$%d", base+j+1)
		}
		valueStrings = append(valueStrings, "("+strings.Join(placeholders, ",")+")")
		valueArgs = append(valueArgs,
			p.ProductID, p.Name, p.Brand, p.Info, p.Price, p.PriceText, p.UnitPrice,
			p.ImageURL, p.Category, p.Subcategory, p.URL, attrs, p.ScrapedAt, p.RunID)
	}

	conflict := "ON CONFLICT (product_id) DO NOTHING"
	if pw.replace {
		conflict = `ON CONFLICT (product_id) DO UPDATE SET
			name = EXCLUDED.name, brand = EXCLUDED.brand, info = EXCLUDED.info,
			price = EXCLUDED.price, price_text = EXCLUDED.price_text,
			unit_price = EXCLUDED.unit_price, image_url = EXCLUDED.image_url,
			category = EXCLUDED.category, subcategory = EXCLUDED.subcategory,
			url = EXCLUDED.url, attributes = EXCLUDED.attributes,
			scraped_at = EXCLUDED.scraped_at, run_id = EXCLUDED.run_id`
	}

	query := fmt.Sprintf(`
		INSERT INTO products (product_id, name, brand, info, price, price_text,
			unit_price, image_url, category, subcategory, url, attributes, scraped_at, run_id)
		VALUES %s
		%s
	`, strings.Join(valueStrings, ","), conflict)

	_, err := pw.db.Exec(query, valueArgs...)
	return err
}

// StartRun records the beginning of a scrape run.
func (pw *PostgresWriter) StartRun(runID, scraperType, categoryURL string, maxProducts int, replace bool, configJSON []byte) error {
	if len(configJSON) == 0 {
		configJSON = []byte("{}")
	}
	_, err := pw.db.Exec(`
		INSERT INTO scrape_runs (run_id, scraper_type, category_url, max_products, replace_existing, config)
		VALUES ($1, $2, $3, NULLIF($4, 0), $5, $6)
		ON CONFLICT (run_id) DO UPDATE SET
			status = 'running', error_message = '', started_at = NOW(), ended_at = NULL
	`, runID, scraperType, categoryURL, maxProducts, replace, configJSON)
	if err != nil {
		return fmt.Errorf("postgres: start run %s: %w", runID, err)
	}
	return nil
}

// EndRun records a run's final status and optional error message.
func (pw *PostgresWriter) EndRun(runID, status, errorMessage string) error {
	_, err := pw.db.Exec(`
		UPDATE scrape_runs SET status = $2, error_message = $3, ended_at = NOW()
		WHERE run_id = $1
	`, runID, status, errorMessage)
	if err != nil {
		return fmt.Errorf("postgres: end run %s: %w", runID, err)
	}
	return nil
}

// FetchAll retrieves all stored products for insight reporting.
func (pw *PostgresWriter) FetchAll() ([]*models.Product, error) {
	rows, err := pw.db.Query(`
		SELECT product_id, name, brand, info, price, price_text, unit_price,
		       image_url, category, subcategory, url, attributes, scraped_at, run_id
		FROM products
		ORDER BY product_id
	`)
	if err != nil {
		return nil, fmt.Errorf("postgres: fetch all: %w", err)
	}
	defer rows.Close()

	var products []*models.Product
	for rows.Next() {
		p := &models.Product{}
		var attrs []byte
		if err := rows.Scan(
			&p.ProductID, &p.Name, &p.Brand, &p.Info, &p.Price, &p.PriceText,
			&p.UnitPrice, &p.ImageURL, &p.Category, &p.Subcategory, &p.URL,
			&attrs, &p.ScrapedAt, &p.RunID,
		); err != nil {
			return nil, fmt.Errorf("postgres: scan row: %w", err)
		}
		if err := json.Unmarshal(attrs, &p.Attributes); err != nil {
			return nil, fmt.Errorf("postgres: decode attributes for %s: %w", p.ProductID, err)
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func (pw *PostgresWriter) Close() error {
	return pw.db.Close()
}
