package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/sellerdesk/listing-pipeline/internal/core/domain"
)

type ProductRepository struct {
	db *sql.DB
}

func NewProductRepository(db *sql.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

func OpenDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql open: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return db, nil
}

func (r *ProductRepository) EnsureSchema(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Serialize bootstrap DDL across api/worker startups.
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(2026083001)); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	const query = `
CREATE TABLE IF NOT EXISTS products (
	id TEXT PRIMARY KEY,
	title TEXT NOT NULL DEFAULT '',
	description TEXT NOT NULL DEFAULT '',
	bullet_points JSONB NOT NULL DEFAULT '[]'::jsonb,
	keywords JSONB NOT NULL DEFAULT '[]'::jsonb,
	images JSONB NOT NULL DEFAULT '[]'::jsonb,
	brand TEXT NOT NULL DEFAULT '',
	category TEXT NOT NULL DEFAULT '',
	price TEXT NOT NULL DEFAULT '',
	material TEXT NOT NULL DEFAULT '',
	condition TEXT NOT NULL DEFAULT '',
	attributes JSONB NOT NULL DEFAULT '{}'::jsonb,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS export_history (
	id TEXT PRIMARY KEY,
	marketplace TEXT NOT NULL,
	product_count INTEGER NOT NULL,
	file_path TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_products_category ON products(category);
CREATE INDEX IF NOT EXISTS idx_export_history_created_at ON export_history(created_at DESC);
`
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}

func (r *ProductRepository) Save(ctx context.Context, products []*domain.Product) ([]*domain.Product, error) {
	saved := make([]*domain.Product, 0, len(products))
	for _, product := range products {
		bullets, keywords, images, attributes, err := marshalProductColumns(product)
		if err != nil {
			return saved, err
		}
		_, err = r.db.ExecContext(ctx, `
INSERT INTO products (
	id, title, description, bullet_points, keywords, images, brand, category, price, material, condition, attributes, created_at, updated_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
`,
			product.ID, product.Title, product.Description, bullets, keywords, images,
			product.Brand, product.Category, product.Price, product.Material, product.Condition,
			attributes, product.CreatedAt, product.UpdatedAt,
		)
		if err != nil {
			return saved, fmt.Errorf("insert product %s: %w", product.ID, err)
		}
		saved = append(saved, product)
	}
	return saved, nil
}

func (r *ProductRepository) Update(ctx context.Context, products []*domain.Product) ([]*domain.Product, error) {
	updated := make([]*domain.Product, 0, len(products))
	for _, product := range products {
		bullets, keywords, images, attributes, err := marshalProductColumns(product)
		if err != nil {
			return updated, err
		}
		res, err := r.db.ExecContext(ctx, `
UPDATE products
SET title = $2, description = $3, bullet_points = $4, keywords = $5, images = $6,
	brand = $7, category = $8, price = $9, material = $10, condition = $11,
	attributes = $12, updated_at = $13
WHERE id = $1
`,
			product.ID, product.Title, product.Description, bullets, keywords, images,
			product.Brand, product.Category, product.Price, product.Material, product.Condition,
			attributes, time.Now().UTC(),
		)
		if err != nil {
			return updated, fmt.Errorf("update product %s: %w", product.ID, err)
		}
		if affected, err := res.RowsAffected(); err == nil && affected == 0 {
			return updated, domain.WrapError(domain.ErrProductNotFound, "update product", fmt.Errorf("id %s", product.ID))
		}
		updated = append(updated, product)
	}
	return updated, nil
}

func (r *ProductRepository) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, title, description, bullet_points, keywords, images, brand, category, price, material, condition, attributes, created_at, updated_at
FROM products
WHERE id = $1
`, id)

	var product domain.Product
	var bullets, keywords, images, attributes []byte

	err := row.Scan(
		&product.ID, &product.Title, &product.Description, &bullets, &keywords, &images,
		&product.Brand, &product.Category, &product.Price, &product.Material, &product.Condition,
		&attributes, &product.CreatedAt, &product.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrProductNotFound, "get product", fmt.Errorf("id %s", id))
		}
		return nil, fmt.Errorf("scan product: %w", err)
	}

	if err := json.Unmarshal(bullets, &product.BulletPoints); err != nil {
		return nil, fmt.Errorf("unmarshal bullet points: %w", err)
	}
	if err := json.Unmarshal(keywords, &product.Keywords); err != nil {
		return nil, fmt.Errorf("unmarshal keywords: %w", err)
	}
	if err := json.Unmarshal(images, &product.Images); err != nil {
		return nil, fmt.Errorf("unmarshal images: %w", err)
	}
	if err := json.Unmarshal(attributes, &product.Attributes); err != nil {
		return nil, fmt.Errorf("unmarshal attributes: %w", err)
	}
	return &product, nil
}

func marshalProductColumns(product *domain.Product) (bullets, keywords, images, attributes []byte, err error) {
	if bullets, err = json.Marshal(emptyIfNil(product.BulletPoints)); err != nil {
		return nil, nil, nil, nil, fmt.Errorf("marshal bullet points: %w", err)
	}
	if keywords, err = json.Marshal(emptyIfNil(product.Keywords)); err != nil {
		return nil, nil, nil, nil, fmt.Errorf("marshal keywords: %w", err)
	}
	imgs := product.Images
	if imgs == nil {
		imgs = []domain.ProductImage{}
	}
	if images, err = json.Marshal(imgs); err != nil {
		return nil, nil, nil, nil, fmt.Errorf("marshal images: %w", err)
	}
	attrs := product.Attributes
	if attrs == nil {
		attrs = map[string]string{}
	}
	if attributes, err = json.Marshal(attrs); err != nil {
		return nil, nil, nil, nil, fmt.Errorf("marshal attributes: %w", err)
	}
	return bullets, keywords, images, attributes, nil
}

func emptyIfNil(items []string) []string {
	if items == nil {
		return []string{}
	}
	return items
}
