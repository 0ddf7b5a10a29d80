package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"rentalhub-backend/internal/domain"
	"rentalhub-backend/internal/logger"
	"rentalhub-backend/internal/repository"
)

const rentalColumns = `id, user_id, product_id, quantity, start_date, end_date, total_days, price_per_day, total_price, status, payment_status, notes, updated_by::text, created_at, updated_at`

type rentalRepository struct {
	db DBTX
}

func NewRentalRepository(db DBTX) repository.RentalRepository {
	return &rentalRepository{db: db}
}

func scanRental(row scanner) (*domain.Rental, error) {
	rt := &domain.Rental{}
	var updatedBy sql.NullString
	err := row.Scan(&rt.ID, &rt.UserID, &rt.ProductID, &rt.Quantity, &rt.StartDate, &rt.EndDate, &rt.TotalDays,
		&rt.PricePerDay, &rt.TotalPrice, &rt.Status, &rt.PaymentStatus, &rt.Notes, &updatedBy, &rt.CreatedAt, &rt.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if updatedBy.Valid {
		rt.UpdatedBy = &updatedBy.String
	}
	rt.StartDate = rt.StartDate.UTC()
	rt.EndDate = rt.EndDate.UTC()
	return rt, nil
}

func (r *rentalRepository) Create(ctx context.Context, rt *domain.Rental) error {
	logger.EnterMethod("rentalRepository.Create", "productID", rt.ProductID, "userID", rt.UserID)

	if rt.ID == "" {
		rt.ID = repository.NewID()
	}
	now := time.Now().UTC()
	rt.CreatedAt = now
	rt.UpdatedAt = now

	query := `INSERT INTO rentals (id, user_id, product_id, quantity, start_date, end_date, total_days, price_per_day, total_price, status, payment_status, notes, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`
	logger.DatabaseCall("INSERT", query, "rentalID", rt.ID)
	res, err := r.db.ExecContext(ctx, query, rt.ID, rt.UserID, rt.ProductID, rt.Quantity, rt.StartDate, rt.EndDate, rt.TotalDays,
		rt.PricePerDay, rt.TotalPrice, rt.Status, rt.PaymentStatus, rt.Notes, rt.CreatedAt, rt.UpdatedAt)
	if err != nil {
		logger.DatabaseResult("INSERT", 0, err)
		logger.ExitMethodWithError("rentalRepository.Create", err)
		return wrapError("insert rental", err)
	}
	n, _ := res.RowsAffected()
	logger.DatabaseResult("INSERT", n, nil)

	logger.ExitMethod("rentalRepository.Create", "rentalID", rt.ID)
	return nil
}

func (r *rentalRepository) GetByID(ctx context.Context, id string) (*domain.Rental, error) {
	rid, ok := repository.NormalizeID(id)
	if !ok {
		return nil, domain.NewNotFoundError("rental not found")
	}
	rt, err := scanRental(r.db.QueryRowContext(ctx, `SELECT `+rentalColumns+` FROM rentals WHERE id = $1`, rid))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NewNotFoundError("rental not found")
	}
	if err != nil {
		return nil, wrapError("get rental", err)
	}
	return rt, nil
}

func (r *rentalRepository) UpdateStatus(ctx context.Context, id string, from, to domain.RentalStatus, updatedBy string) (*domain.Rental, error) {
	logger.EnterMethod("rentalRepository.UpdateStatus", "rentalID", id, "from", from, "to", to)

	rid, ok := repository.NormalizeID(id)
	if !ok {
		return nil, domain.NewNotFoundError("rental not found")
	}

	query := `UPDATE rentals SET status = $1, updated_by = $2, updated_at = $3
	          WHERE id = $4 AND status = $5
	          RETURNING ` + rentalColumns
	logger.DatabaseCall("UPDATE", query, "rentalID", rid)
	rt, err := scanRental(r.db.QueryRowContext(ctx, query, to, nullString(updatedBy), time.Now().UTC(), rid, from))
	if errors.Is(err, sql.ErrNoRows) {
		current, getErr := r.GetByID(ctx, rid)
		if getErr != nil {
			logger.ExitMethodWithError("rentalRepository.UpdateStatus", getErr, "rentalID", rid)
			return nil, getErr
		}
		logger.ExitMethod("rentalRepository.UpdateStatus", "rentalID", rid, "conflict", current.Status)
		return nil, domain.NewConflictError("rental status changed concurrently: expected %s, found %s", from, current.Status)
	}
	if err != nil {
		logger.ExitMethodWithError("rentalRepository.UpdateStatus", err, "rentalID", rid)
		return nil, wrapError("update rental status", err)
	}

	logger.ExitMethod("rentalRepository.UpdateStatus", "rentalID", rid, "status", rt.Status)
	return rt, nil
}

func (r *rentalRepository) UpdatePayment(ctx context.Context, id string, status domain.PaymentStatus) (*domain.Rental, error) {
	rid, ok := repository.NormalizeID(id)
	if !ok {
		return nil, domain.NewNotFoundError("rental not found")
	}
	query := `UPDATE rentals SET payment_status = $1, updated_at = $2 WHERE id = $3 RETURNING ` + rentalColumns
	rt, err := scanRental(r.db.QueryRowContext(ctx, query, status, time.Now().UTC(), rid))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NewNotFoundError("rental not found")
	}
	if err != nil {
		return nil, wrapError("update rental payment", err)
	}
	return rt, nil
}

func (r *rentalRepository) List(ctx context.Context, filter domain.RentalFilter, skip, limit int) ([]domain.Rental, int, error) {
	var where []string
	var args []any
	if filter.Status != "" {
		args = append(args, filter.Status)
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.UserID != "" {
		uid, ok := repository.NormalizeID(filter.UserID)
		if !ok {
			return []domain.Rental{}, 0, nil
		}
		args = append(args, uid)
		where = append(where, fmt.Sprintf("user_id = $%d", len(args)))
	}
	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT count(*) FROM rentals`+clause, args...).Scan(&total); err != nil {
		return nil, 0, wrapError("count rentals", err)
	}

	query, args := pageArgs(`SELECT `+rentalColumns+` FROM rentals`+clause+` ORDER BY created_at DESC`, args, skip, limit)
	rentals, err := r.query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	return rentals, total, nil
}

func (r *rentalRepository) ListByUser(ctx context.Context, userID string, status domain.RentalStatus) ([]domain.Rental, error) {
	uid, ok := repository.NormalizeID(userID)
	if !ok {
		return []domain.Rental{}, nil
	}
	query := `SELECT ` + rentalColumns + ` FROM rentals WHERE user_id = $1`
	args := []any{uid}
	if status != "" {
		query += ` AND status = $2`
		args = append(args, status)
	}
	query += ` ORDER BY created_at DESC`
	return r.query(ctx, query, args...)
}

func (r *rentalRepository) query(ctx context.Context, query string, args ...any) ([]domain.Rental, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, wrapError("list rentals", err)
	}
	defer rows.Close()

	rentals := []domain.Rental{}
	for rows.Next() {
		rt, err := scanRental(rows)
		if err != nil {
			return nil, wrapError("scan rental", err)
		}
		rentals = append(rentals, *rt)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapError("list rentals", err)
	}
	return rentals, nil
}

func (r *rentalRepository) OutstandingByProduct(ctx context.Context) (map[string]int, error) {
	query := `SELECT product_id, COALESCE(SUM(quantity), 0) FROM rentals WHERE status IN ($1, $2, $3) GROUP BY product_id`
	rows, err := r.db.QueryContext(ctx, query, domain.RentalStatusPending, domain.RentalStatusApproved, domain.RentalStatusActive)
	if err != nil {
		return nil, wrapError("sum outstanding rentals", err)
	}
	defer rows.Close()

	outstanding := make(map[string]int)
	for rows.Next() {
		var productID string
		var qty int
		if err := rows.Scan(&productID, &qty); err != nil {
			return nil, wrapError("scan outstanding rentals", err)
		}
		outstanding[productID] = qty
	}
	return outstanding, rows.Err()
}
