package memory

import (
	"context"
	"time"

	"rentalhub-backend/internal/domain"
	"rentalhub-backend/internal/repository"
)

type rentalRecord struct {
	rental domain.Rental
	seq    uint64
}

type rentalRepository struct {
	s *Store
}

func (r *rentalRepository) Create(ctx context.Context, rt *domain.Rental) error {
	defer r.s.lock()()
	st := r.s.data

	userID, ok := repository.NormalizeID(rt.UserID)
	if _, exists := st.users[userID]; !ok || !exists {
		return domain.NewNotFoundError("referenced record not found")
	}
	productID, ok := repository.NormalizeID(rt.ProductID)
	if _, exists := st.products[productID]; !ok || !exists {
		return domain.NewNotFoundError("referenced record not found")
	}
	if rt.ID == "" {
		rt.ID = repository.NewID()
	}
	id, ok := repository.NormalizeID(rt.ID)
	if !ok {
		return domain.NewValidationError("invalid rental id")
	}
	rt.ID = id
	rt.UserID = userID
	rt.ProductID = productID
	now := r.s.now()
	rt.CreatedAt = now
	rt.UpdatedAt = now

	stored := *rt
	stored.Product = nil
	stored.User = nil
	st.rentals[rt.ID] = rentalRecord{rental: stored, seq: st.next()}
	return nil
}

func (r *rentalRepository) GetByID(ctx context.Context, id string) (*domain.Rental, error) {
	defer r.s.lock()()
	rec, err := r.s.data.rental(id)
	if err != nil {
		return nil, err
	}
	rt := rec.rental
	return &rt, nil
}

func (r *rentalRepository) UpdateStatus(ctx context.Context, id string, from, to domain.RentalStatus, updatedBy string) (*domain.Rental, error) {
	defer r.s.lock()()
	rec, err := r.s.data.rental(id)
	if err != nil {
		return nil, err
	}
	if rec.rental.Status != from {
		return nil, domain.NewConflictError("rental status changed concurrently: expected %s, found %s", from, rec.rental.Status)
	}
	rec.rental.Status = to
	if updatedBy != "" {
		by := updatedBy
		rec.rental.UpdatedBy = &by
	} else {
		rec.rental.UpdatedBy = nil
	}
	rec.rental.UpdatedAt = r.s.now()
	r.s.data.rentals[rec.rental.ID] = rec
	rt := rec.rental
	return &rt, nil
}

func (r *rentalRepository) UpdatePayment(ctx context.Context, id string, status domain.PaymentStatus) (*domain.Rental, error) {
	defer r.s.lock()()
	rec, err := r.s.data.rental(id)
	if err != nil {
		return nil, err
	}
	rec.rental.PaymentStatus = status
	rec.rental.UpdatedAt = r.s.now()
	r.s.data.rentals[rec.rental.ID] = rec
	rt := rec.rental
	return &rt, nil
}

func (r *rentalRepository) List(ctx context.Context, filter domain.RentalFilter, skip, limit int) ([]domain.Rental, int, error) {
	defer r.s.lock()()
	if filter.UserID != "" {
		uid, ok := repository.NormalizeID(filter.UserID)
		if !ok {
			return []domain.Rental{}, 0, nil
		}
		filter.UserID = uid
	}
	recs := r.s.data.filterRentals(filter)
	rentals := make([]domain.Rental, 0, len(recs))
	for _, rec := range paginate(recs, skip, limit) {
		rentals = append(rentals, rec.rental)
	}
	return rentals, len(recs), nil
}

func (r *rentalRepository) ListByUser(ctx context.Context, userID string, status domain.RentalStatus) ([]domain.Rental, error) {
	defer r.s.lock()()
	uid, ok := repository.NormalizeID(userID)
	if !ok {
		return []domain.Rental{}, nil
	}
	recs := r.s.data.filterRentals(domain.RentalFilter{Status: status, UserID: uid})
	rentals := make([]domain.Rental, 0, len(recs))
	for _, rec := range recs {
		rentals = append(rentals, rec.rental)
	}
	return rentals, nil
}

func (r *rentalRepository) OutstandingByProduct(ctx context.Context) (map[string]int, error) {
	defer r.s.lock()()
	outstanding := make(map[string]int)
	for _, rec := range r.s.data.rentals {
		if rec.rental.Status.IsOutstanding() {
			outstanding[rec.rental.ProductID] += rec.rental.Quantity
		}
	}
	return outstanding, nil
}

func (st *state) rental(id string) (rentalRecord, error) {
	rid, ok := repository.NormalizeID(id)
	if !ok {
		return rentalRecord{}, domain.NewNotFoundError("rental not found")
	}
	rec, ok := st.rentals[rid]
	if !ok {
		return rentalRecord{}, domain.NewNotFoundError("rental not found")
	}
	return rec, nil
}

func (st *state) filterRentals(filter domain.RentalFilter) []rentalRecord {
	var recs []rentalRecord
	for _, rec := range st.rentals {
		if filter.Status != "" && rec.rental.Status != filter.Status {
			continue
		}
		if filter.UserID != "" && rec.rental.UserID != filter.UserID {
			continue
		}
		recs = append(recs, rec)
	}
	newestFirst(recs, func(r rentalRecord) time.Time { return r.rental.CreatedAt }, func(r rentalRecord) uint64 { return r.seq })
	return recs
}
