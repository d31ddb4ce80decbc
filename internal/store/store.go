package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"bundle-service/internal/models"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

type Store struct {
	db *sqlx.DB
}

// NewStore creates a new database store
func NewStore(databaseURL string) (*Store, error) {
	db, err := sqlx.Connect("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// GetDB returns the underlying database connection
func (s *Store) GetDB() *sqlx.DB {
	return s.db
}

// GetProductByID retrieves a product by ID
func (s *Store) GetProductByID(ctx context.Context, id int64) (*models.Product, error) {
	var product models.Product
	err := s.db.GetContext(ctx, &product, "SELECT * FROM products WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// GetVariationByID retrieves a variation by ID
func (s *Store) GetVariationByID(ctx context.Context, id int64) (*models.Variation, error) {
	var variation models.Variation
	err := s.db.GetContext(ctx, &variation, "SELECT * FROM variations WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	attrs, err := s.getVariationAttributes(ctx, id)
	if err != nil {
		return nil, err
	}
	variation.Attributes = attrs

	return &variation, nil
}

// GetVariationsByProductID retrieves all variations of a variable product
func (s *Store) GetVariationsByProductID(ctx context.Context, productID int64) ([]models.Variation, error) {
	var variations []models.Variation
	err := s.db.SelectContext(ctx, &variations,
		"SELECT * FROM variations WHERE parent_product_id = $1 ORDER BY id", productID)
	if err != nil {
		return nil, err
	}

	for i := range variations {
		attrs, err := s.getVariationAttributes(ctx, variations[i].ID)
		if err != nil {
			return nil, err
		}
		variations[i].Attributes = attrs
	}

	return variations, nil
}

func (s *Store) getVariationAttributes(ctx context.Context, variationID int64) (map[string]string, error) {
	rows, err := s.db.QueryxContext(ctx,
		"SELECT name, value FROM variation_attributes WHERE variation_id = $1 ORDER BY name", variationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	attrs := make(map[string]string)
	for rows.Next() {
		var name, value string
		if err := rows.Scan(&name, &value); err != nil {
			return nil, err
		}
		attrs[name] = value
	}
	return attrs, rows.Err()
}

// GetBoxProducts retrieves all published products flagged as boxes
func (s *Store) GetBoxProducts(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	err := s.db.SelectContext(ctx, &products,
		"SELECT * FROM products WHERE is_box = TRUE ORDER BY id")
	return products, err
}

// GetCategoryBySlug retrieves a catalog category by slug or numeric reference
func (s *Store) GetCategoryBySlug(ctx context.Context, slug string) (*Category, error) {
	var category Category
	err := s.db.GetContext(ctx, &category,
		"SELECT * FROM categories WHERE slug = $1 OR id::text = $1", slug)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &category, nil
}

// GetProductsByCategory retrieves products within a category
func (s *Store) GetProductsByCategory(ctx context.Context, categoryID int64) ([]models.Product, error) {
	var products []models.Product
	err := s.db.SelectContext(ctx, &products, `
		SELECT p.* FROM products p
		JOIN product_categories pc ON pc.product_id = p.id
		WHERE pc.category_id = $1
		ORDER BY p.id`, categoryID)
	return products, err
}

// Category is a catalog grouping used for configured sections
type Category struct {
	ID          int64  `db:"id"`
	Slug        string `db:"slug"`
	Name        string `db:"name"`
	Description string `db:"description"`
	Permalink   string `db:"permalink"`
}
