package inventory

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS products (
	product_id         TEXT PRIMARY KEY,
	name               TEXT NOT NULL,
	category           TEXT NOT NULL,
	quantity_available INTEGER NOT NULL,
	reorder_level      INTEGER NOT NULL
);`

// SQLiteStore persists products in a SQLite database.
type SQLiteStore struct {
	db *sqlx.DB
}

// NewSQLiteStore opens (creating if needed) the database at path and
// ensures the products table exists.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sqlx.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	// modernc's driver serializes access; a single connection avoids
	// SQLITE_BUSY under concurrent writers.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create products table: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Add(ctx context.Context, p Product) (Product, error) {
	if p.ID == "" {
		next, err := s.nextID(ctx)
		if err != nil {
			return Product{}, err
		}
		p.ID = next
	}
	p.DeriveStatus()
	_, err := s.db.NamedExecContext(ctx, `
		INSERT OR REPLACE INTO products (product_id, name, category, quantity_available, reorder_level)
		VALUES (:product_id, :name, :category, :quantity_available, :reorder_level)`, p)
	if err != nil {
		return Product{}, fmt.Errorf("insert product %s: %w", p.ID, err)
	}
	return p, nil
}

func (s *SQLiteStore) List(ctx context.Context) ([]Product, error) {
	var products []Product
	err := s.db.SelectContext(ctx, &products, `
		SELECT product_id, name, category, quantity_available, reorder_level
		FROM products ORDER BY product_id`)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	for i := range products {
		products[i].DeriveStatus()
	}
	return products, nil
}

func (s *SQLiteStore) Get(ctx context.Context, id string) (Product, error) {
	var p Product
	err := s.db.GetContext(ctx, &p, `
		SELECT product_id, name, category, quantity_available, reorder_level
		FROM products WHERE product_id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return Product{}, ErrNotFound
	}
	if err != nil {
		return Product{}, fmt.Errorf("get product %s: %w", id, err)
	}
	p.DeriveStatus()
	return p, nil
}

func (s *SQLiteStore) Replace(ctx context.Context, products []Product) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin replace: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM products`); err != nil {
		return fmt.Errorf("clear products: %w", err)
	}
	nextID := 1
	for _, p := range products {
		if p.ID == "" {
			p.ID = FormatID(nextID)
		}
		nextID++
		p.DeriveStatus()
		if _, err := tx.NamedExecContext(ctx, `
			INSERT OR REPLACE INTO products (product_id, name, category, quantity_available, reorder_level)
			VALUES (:product_id, :name, :category, :quantity_available, :reorder_level)`, p); err != nil {
			return fmt.Errorf("insert product %s: %w", p.ID, err)
		}
	}
	return tx.Commit()
}

func (s *SQLiteStore) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM products`); err != nil {
		return fmt.Errorf("clear products: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Close() error { return s.db.Close() }

// nextID picks the first free P%03d ID after the current maximum. IDs are
// text, so the maximum is taken over the numeric suffix rather than the
// lexicographic order ("P999" would sort above "P1000").
func (s *SQLiteStore) nextID(ctx context.Context) (string, error) {
	var max sql.NullInt64
	err := s.db.GetContext(ctx, &max,
		`SELECT MAX(CAST(substr(product_id, 2) AS INTEGER)) FROM products`)
	if err != nil {
		return "", fmt.Errorf("next product id: %w", err)
	}
	n := 0
	if max.Valid {
		n = int(max.Int64)
	}
	return FormatID(n + 1), nil
}
