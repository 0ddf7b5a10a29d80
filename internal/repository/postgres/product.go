package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"rentalhub-backend/internal/domain"
	"rentalhub-backend/internal/repository"
)

const productColumns = `id, name, description, category, location, price_per_day, quantity_total, quantity_available, image_url, is_active, COALESCE(added_by::text, ''), created_at, updated_at`

type productRepository struct {
	db DBTX
}

func NewProductRepository(db DBTX) repository.ProductRepository {
	return &productRepository{db: db}
}

func scanProduct(row scanner) (*domain.Product, error) {
	p := &domain.Product{}
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Category, &p.Location, &p.PricePerDay,
		&p.QuantityTotal, &p.QuantityAvailable, &p.ImageURL, &p.IsActive, &p.AddedBy, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *productRepository) Create(ctx context.Context, p *domain.Product) error {
	if p.ID == "" {
		p.ID = repository.NewID()
	}
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now

	query := `INSERT INTO products (id, name, description, category, location, price_per_day, quantity_total, quantity_available, image_url, is_active, added_by, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	_, err := r.db.ExecContext(ctx, query, p.ID, p.Name, p.Description, p.Category, p.Location, p.PricePerDay,
		p.QuantityTotal, p.QuantityAvailable, p.ImageURL, p.IsActive, nullString(p.AddedBy), p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return wrapError("insert product", err)
	}
	return nil
}

func (r *productRepository) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	pid, ok := repository.NormalizeID(id)
	if !ok {
		return nil, domain.NewNotFoundError("product not found")
	}
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`
	p, err := scanProduct(r.db.QueryRowContext(ctx, query, pid))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NewNotFoundError("product not found")
	}
	if err != nil {
		return nil, wrapError("get product", err)
	}
	return p, nil
}

func (r *productRepository) List(ctx context.Context, filter domain.ProductFilter, skip, limit int) ([]domain.Product, int, error) {
	var where []string
	var args []any
	if filter.IsActive != nil {
		args = append(args, *filter.IsActive)
		where = append(where, fmt.Sprintf("is_active = $%d", len(args)))
	}
	if filter.Category != "" {
		args = append(args, filter.Category)
		where = append(where, fmt.Sprintf("category = $%d", len(args)))
	}
	if filter.Location != "" {
		args = append(args, filter.Location)
		where = append(where, fmt.Sprintf("location = $%d", len(args)))
	}
	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT count(*) FROM products`+clause, args...).Scan(&total); err != nil {
		return nil, 0, wrapError("count products", err)
	}

	query, args := pageArgs(`SELECT `+productColumns+` FROM products`+clause+` ORDER BY created_at DESC`, args, skip, limit)
	products, err := r.query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

func (r *productRepository) ListAll(ctx context.Context) ([]domain.Product, error) {
	return r.query(ctx, `SELECT `+productColumns+` FROM products ORDER BY created_at`)
}

func (r *productRepository) query(ctx context.Context, query string, args ...any) ([]domain.Product, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, wrapError("list products", err)
	}
	defer rows.Close()

	products := []domain.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, wrapError("scan product", err)
		}
		products = append(products, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapError("list products", err)
	}
	return products, nil
}

func (r *productRepository) Update(ctx context.Context, p *domain.Product) error {
	pid, ok := repository.NormalizeID(p.ID)
	if !ok {
		return domain.NewNotFoundError("product not found")
	}
	p.UpdatedAt = time.Now().UTC()
	query := `UPDATE products SET name=$1, description=$2, category=$3, location=$4, price_per_day=$5, image_url=$6, is_active=$7, updated_at=$8 WHERE id=$9`
	res, err := r.db.ExecContext(ctx, query, p.Name, p.Description, p.Category, p.Location, p.PricePerDay, p.ImageURL, p.IsActive, p.UpdatedAt, pid)
	if err != nil {
		return wrapError("update product", err)
	}
	return requireRow(res, "product not found")
}

func (r *productRepository) UpdateQuantityTotal(ctx context.Context, id string, total int) (*domain.Product, error) {
	pid, ok := repository.NormalizeID(id)
	if !ok {
		return nil, domain.NewNotFoundError("product not found")
	}
	query := `UPDATE products
	          SET quantity_total = $1, quantity_available = quantity_available + ($1 - quantity_total), updated_at = $2
	          WHERE id = $3 AND quantity_available + ($1 - quantity_total) >= 0
	          RETURNING ` + productColumns
	p, err := scanProduct(r.db.QueryRowContext(ctx, query, total, time.Now().UTC(), pid))
	if errors.Is(err, sql.ErrNoRows) {
		current, getErr := r.GetByID(ctx, pid)
		if getErr != nil {
			return nil, getErr
		}
		return nil, domain.NewConflictError("quantity_total cannot be below the %d units currently rented out",
			current.QuantityTotal-current.QuantityAvailable)
	}
	if err != nil {
		return nil, wrapError("update product quantity", err)
	}
	return p, nil
}

func (r *productRepository) SoftDelete(ctx context.Context, id string) error {
	pid, ok := repository.NormalizeID(id)
	if !ok {
		return domain.NewNotFoundError("product not found")
	}
	res, err := r.db.ExecContext(ctx, `UPDATE products SET is_active = FALSE, updated_at = $1 WHERE id = $2`, time.Now().UTC(), pid)
	if err != nil {
		return wrapError("delete product", err)
	}
	return requireRow(res, "product not found")
}

func (r *productRepository) Locations(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT DISTINCT location FROM products WHERE is_active AND location <> '' ORDER BY location`)
	if err != nil {
		return nil, wrapError("list locations", err)
	}
	defer rows.Close()

	locations := []string{}
	for rows.Next() {
		var loc string
		if err := rows.Scan(&loc); err != nil {
			return nil, wrapError("scan location", err)
		}
		locations = append(locations, loc)
	}
	return locations, rows.Err()
}

func requireRow(res sql.Result, notFound string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return domain.NewNotFoundError("%s", notFound)
	}
	return nil
}
