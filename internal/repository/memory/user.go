package memory

import (
	"context"
	"strings"
	"time"

	"rentalhub-backend/internal/domain"
	"rentalhub-backend/internal/repository"
)

type userRecord struct {
	user domain.User
	seq  uint64
}

type userRepository struct {
	s *Store
}

func (r *userRepository) Create(ctx context.Context, u *domain.User) error {
	defer r.s.lock()()
	st := r.s.data

	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	for _, rec := range st.users {
		if rec.user.Email == u.Email {
			return domain.NewConflictError("email already registered")
		}
	}
	if u.ID == "" {
		u.ID = repository.NewID()
	}
	id, ok := repository.NormalizeID(u.ID)
	if !ok {
		return domain.NewValidationError("invalid user id")
	}
	u.ID = id
	now := r.s.now()
	u.CreatedAt = now
	u.UpdatedAt = now
	st.users[id] = userRecord{user: *u, seq: st.next()}
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	defer r.s.lock()()
	uid, ok := repository.NormalizeID(id)
	if !ok {
		return nil, domain.NewNotFoundError("user not found")
	}
	rec, ok := r.s.data.users[uid]
	if !ok {
		return nil, domain.NewNotFoundError("user not found")
	}
	u := rec.user
	return &u, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	defer r.s.lock()()
	email = strings.ToLower(strings.TrimSpace(email))
	for _, rec := range r.s.data.users {
		if rec.user.Email == email {
			u := rec.user
			return &u, nil
		}
	}
	return nil, domain.NewNotFoundError("user not found")
}

func (r *userRepository) Update(ctx context.Context, u *domain.User) error {
	return r.mutate(u.ID, func(cur *domain.User) {
		cur.FirstName = u.FirstName
		cur.LastName = u.LastName
		cur.Phone = u.Phone
		cur.UpdatedAt = r.s.now()
		u.UpdatedAt = cur.UpdatedAt
	})
}

func (r *userRepository) List(ctx context.Context, role domain.Role, skip, limit int) ([]domain.User, int, error) {
	defer r.s.lock()()
	var recs []userRecord
	for _, rec := range r.s.data.users {
		if role == "" || rec.user.Role == role {
			recs = append(recs, rec)
		}
	}
	newestFirst(recs, func(r userRecord) time.Time { return r.user.CreatedAt }, func(r userRecord) uint64 { return r.seq })

	users := make([]domain.User, 0, len(recs))
	for _, rec := range paginate(recs, skip, limit) {
		users = append(users, rec.user)
	}
	return users, len(recs), nil
}

func (r *userRepository) SetActive(ctx context.Context, id string, active bool) error {
	return r.mutate(id, func(cur *domain.User) {
		cur.IsActive = active
		cur.UpdatedAt = r.s.now()
	})
}

func (r *userRepository) TouchLastLogin(ctx context.Context, id string, at time.Time) error {
	return r.mutate(id, func(cur *domain.User) {
		t := at.UTC()
		cur.LastLogin = &t
	})
}

func (r *userRepository) mutate(id string, fn func(*domain.User)) error {
	defer r.s.lock()()
	uid, ok := repository.NormalizeID(id)
	if !ok {
		return domain.NewNotFoundError("user not found")
	}
	rec, ok := r.s.data.users[uid]
	if !ok {
		return domain.NewNotFoundError("user not found")
	}
	fn(&rec.user)
	r.s.data.users[uid] = rec
	return nil
}
