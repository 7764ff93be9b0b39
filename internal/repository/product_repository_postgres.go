package repository

import (
	"context"
	"errors"

	"github.com/Lixing-Zhang/dilution-calc/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const productColumns = `id, name, quantity_to_add, quantity_to_add_unit, reference_water, reference_water_unit, notes, created_at, updated_at`

var (
	_ ProductRepository = (*PostgresProductRepository)(nil)
	_ ProductRepository = (*InMemoryProductRepository)(nil)
)

// uniqueViolation is the SQLSTATE for a unique constraint violation
const uniqueViolation = "23505"

// PostgresProductRepository implements ProductRepository on a pgx pool
type PostgresProductRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresProductRepository creates a repository backed by pool.
// The schema must already be migrated, see OpenPostgres.
func NewPostgresProductRepository(pool *pgxpool.Pool) *PostgresProductRepository {
	return &PostgresProductRepository{pool: pool}
}

// GetAll returns all products sorted by name
func (r *PostgresProductRepository) GetAll(ctx context.Context) ([]models.Product, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+productColumns+` FROM products ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	products := []models.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, *p)
	}
	return products, rows.Err()
}

// GetByName returns a product by its name
func (r *PostgresProductRepository) GetByName(ctx context.Context, name string) (*models.Product, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE name = $1`, name)
	p, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return p, nil
}

// Create stores a new product
func (r *PostgresProductRepository) Create(ctx context.Context, p *models.Product) error {
	p.ID = uuid.New().String()
	row := r.pool.QueryRow(ctx, `
		INSERT INTO products (id, name, quantity_to_add, quantity_to_add_unit, reference_water, reference_water_unit, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at
	`, p.ID, p.Name, p.QuantityToAdd, string(p.QuantityToAddUnit), p.ReferenceWater, string(p.ReferenceWaterUnit), p.Notes)

	if err := row.Scan(&p.CreatedAt, &p.UpdatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return ErrProductExists
		}
		return err
	}
	return nil
}

// Update replaces the ratio record of an existing product
func (r *PostgresProductRepository) Update(ctx context.Context, p *models.Product) error {
	row := r.pool.QueryRow(ctx, `
		UPDATE products
		SET quantity_to_add = $2, quantity_to_add_unit = $3,
		    reference_water = $4, reference_water_unit = $5,
		    notes = $6, updated_at = NOW()
		WHERE name = $1
		RETURNING id, created_at, updated_at
	`, p.Name, p.QuantityToAdd, string(p.QuantityToAddUnit), p.ReferenceWater, string(p.ReferenceWaterUnit), p.Notes)

	if err := row.Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrProductNotFound
		}
		return err
	}
	return nil
}

// Upsert creates or updates a product
func (r *PostgresProductRepository) Upsert(ctx context.Context, p *models.Product) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO products (id, name, quantity_to_add, quantity_to_add_unit, reference_water, reference_water_unit, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (name) DO UPDATE
		SET quantity_to_add = EXCLUDED.quantity_to_add,
		    quantity_to_add_unit = EXCLUDED.quantity_to_add_unit,
		    reference_water = EXCLUDED.reference_water,
		    reference_water_unit = EXCLUDED.reference_water_unit,
		    notes = EXCLUDED.notes,
		    updated_at = NOW()
		RETURNING id, created_at, updated_at
	`, uuid.New().String(), p.Name, p.QuantityToAdd, string(p.QuantityToAddUnit), p.ReferenceWater, string(p.ReferenceWaterUnit), p.Notes)

	return row.Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
}

// Delete removes a product by name
func (r *PostgresProductRepository) Delete(ctx context.Context, name string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM products WHERE name = $1`, name)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrProductNotFound
	}
	return nil
}

func scanProduct(row pgx.Row) (*models.Product, error) {
	var p models.Product
	if err := row.Scan(
		&p.ID,
		&p.Name,
		&p.QuantityToAdd,
		&p.QuantityToAddUnit,
		&p.ReferenceWater,
		&p.ReferenceWaterUnit,
		&p.Notes,
		&p.CreatedAt,
		&p.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &p, nil
}
