package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"rentalhub-backend/internal/domain"
	"rentalhub-backend/internal/repository"
)

const userColumns = `id, first_name, last_name, email, phone, password_hash, role, is_active, last_login, created_at, updated_at`

type userRepository struct {
	db DBTX
}

func NewUserRepository(db DBTX) repository.UserRepository {
	return &userRepository{db: db}
}

func scanUser(row scanner) (*domain.User, error) {
	u := &domain.User{}
	var lastLogin sql.NullTime
	err := row.Scan(&u.ID, &u.FirstName, &u.LastName, &u.Email, &u.Phone, &u.PasswordHash, &u.Role, &u.IsActive, &lastLogin, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if lastLogin.Valid {
		t := lastLogin.Time.UTC()
		u.LastLogin = &t
	}
	return u, nil
}

func (r *userRepository) Create(ctx context.Context, u *domain.User) error {
	if u.ID == "" {
		u.ID = repository.NewID()
	}
	now := time.Now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now

	query := `INSERT INTO users (id, first_name, last_name, email, phone, password_hash, role, is_active, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.db.ExecContext(ctx, query, u.ID, u.FirstName, u.LastName, strings.ToLower(u.Email), u.Phone, u.PasswordHash, u.Role, u.IsActive, u.CreatedAt, u.UpdatedAt)
	if err != nil {
		if domain.IsConflict(wrapError("", err)) {
			return domain.NewConflictError("email already registered")
		}
		return wrapError("insert user", err)
	}
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	uid, ok := repository.NormalizeID(id)
	if !ok {
		return nil, domain.NewNotFoundError("user not found")
	}
	return r.get(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, uid)
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.get(ctx, `SELECT `+userColumns+` FROM users WHERE email = LOWER($1)`, strings.TrimSpace(email))
}

func (r *userRepository) get(ctx context.Context, query string, arg any) (*domain.User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx, query, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NewNotFoundError("user not found")
	}
	if err != nil {
		return nil, wrapError("get user", err)
	}
	return u, nil
}

func (r *userRepository) Update(ctx context.Context, u *domain.User) error {
	uid, ok := repository.NormalizeID(u.ID)
	if !ok {
		return domain.NewNotFoundError("user not found")
	}
	u.UpdatedAt = time.Now().UTC()
	query := `UPDATE users SET first_name=$1, last_name=$2, phone=$3, updated_at=$4 WHERE id=$5`
	res, err := r.db.ExecContext(ctx, query, u.FirstName, u.LastName, u.Phone, u.UpdatedAt, uid)
	if err != nil {
		return wrapError("update user", err)
	}
	return requireRow(res, "user not found")
}

func (r *userRepository) List(ctx context.Context, role domain.Role, skip, limit int) ([]domain.User, int, error) {
	clause := ""
	var args []any
	if role != "" {
		clause = ` WHERE role = $1`
		args = append(args, role)
	}

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT count(*) FROM users`+clause, args...).Scan(&total); err != nil {
		return nil, 0, wrapError("count users", err)
	}

	query, args := pageArgs(`SELECT `+userColumns+` FROM users`+clause+` ORDER BY created_at DESC`, args, skip, limit)
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, wrapError("list users", err)
	}
	defer rows.Close()

	users := []domain.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, wrapError("scan user", err)
		}
		users = append(users, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, wrapError("list users", err)
	}
	return users, total, nil
}

func (r *userRepository) SetActive(ctx context.Context, id string, active bool) error {
	uid, ok := repository.NormalizeID(id)
	if !ok {
		return domain.NewNotFoundError("user not found")
	}
	res, err := r.db.ExecContext(ctx, `UPDATE users SET is_active = $1, updated_at = $2 WHERE id = $3`, active, time.Now().UTC(), uid)
	if err != nil {
		return wrapError("set user active", err)
	}
	return requireRow(res, "user not found")
}

func (r *userRepository) TouchLastLogin(ctx context.Context, id string, at time.Time) error {
	uid, ok := repository.NormalizeID(id)
	if !ok {
		return domain.NewNotFoundError("user not found")
	}
	res, err := r.db.ExecContext(ctx, `UPDATE users SET last_login = $1 WHERE id = $2`, at.UTC(), uid)
	if err != nil {
		return wrapError("update last login", err)
	}
	return requireRow(res, "user not found")
}
