package memory

import (
	"context"
	"sort"
	"time"

	"rentalhub-backend/internal/domain"
	"rentalhub-backend/internal/repository"
)

type productRecord struct {
	product domain.Product
	seq     uint64
}

type productRepository struct {
	s *Store
}

func (r *productRepository) Create(ctx context.Context, p *domain.Product) error {
	defer r.s.lock()()
	st := r.s.data

	if p.ID == "" {
		p.ID = repository.NewID()
	}
	id, ok := repository.NormalizeID(p.ID)
	if !ok {
		return domain.NewValidationError("invalid product id")
	}
	if _, exists := st.products[id]; exists {
		return domain.NewConflictError("product already exists")
	}
	p.ID = id
	now := r.s.now()
	p.CreatedAt = now
	p.UpdatedAt = now
	st.products[id] = productRecord{product: *p, seq: st.next()}
	return nil
}

func (r *productRepository) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	defer r.s.lock()()
	rec, err := r.s.data.product(id)
	if err != nil {
		return nil, err
	}
	p := rec.product
	return &p, nil
}

func (r *productRepository) List(ctx context.Context, filter domain.ProductFilter, skip, limit int) ([]domain.Product, int, error) {
	defer r.s.lock()()
	var recs []productRecord
	for _, rec := range r.s.data.products {
		p := rec.product
		if filter.IsActive != nil && p.IsActive != *filter.IsActive {
			continue
		}
		if filter.Category != "" && p.Category != filter.Category {
			continue
		}
		if filter.Location != "" && p.Location != filter.Location {
			continue
		}
		recs = append(recs, rec)
	}
	newestFirst(recs, func(r productRecord) time.Time { return r.product.CreatedAt }, func(r productRecord) uint64 { return r.seq })

	products := make([]domain.Product, 0, len(recs))
	for _, rec := range paginate(recs, skip, limit) {
		products = append(products, rec.product)
	}
	return products, len(recs), nil
}

func (r *productRepository) ListAll(ctx context.Context) ([]domain.Product, error) {
	defer r.s.lock()()
	recs := make([]productRecord, 0, len(r.s.data.products))
	for _, rec := range r.s.data.products {
		recs = append(recs, rec)
	}
	sort.Slice(recs, func(i, j int) bool { return recs[i].seq < recs[j].seq })

	products := make([]domain.Product, 0, len(recs))
	for _, rec := range recs {
		products = append(products, rec.product)
	}
	return products, nil
}

func (r *productRepository) Update(ctx context.Context, p *domain.Product) error {
	defer r.s.lock()()
	rec, err := r.s.data.product(p.ID)
	if err != nil {
		return err
	}
	cur := &rec.product
	cur.Name = p.Name
	cur.Description = p.Description
	cur.Category = p.Category
	cur.Location = p.Location
	cur.PricePerDay = p.PricePerDay
	cur.ImageURL = p.ImageURL
	cur.IsActive = p.IsActive
	cur.UpdatedAt = r.s.now()
	p.UpdatedAt = cur.UpdatedAt
	r.s.data.products[cur.ID] = rec
	return nil
}

func (r *productRepository) UpdateQuantityTotal(ctx context.Context, id string, total int) (*domain.Product, error) {
	defer r.s.lock()()
	rec, err := r.s.data.product(id)
	if err != nil {
		return nil, err
	}
	cur := &rec.product
	available := cur.QuantityAvailable + (total - cur.QuantityTotal)
	if available < 0 {
		return nil, domain.NewConflictError("quantity_total cannot be below the %d units currently rented out",
			cur.QuantityTotal-cur.QuantityAvailable)
	}
	cur.QuantityTotal = total
	cur.QuantityAvailable = available
	cur.UpdatedAt = r.s.now()
	r.s.data.products[cur.ID] = rec
	p := *cur
	return &p, nil
}

func (r *productRepository) SoftDelete(ctx context.Context, id string) error {
	defer r.s.lock()()
	rec, err := r.s.data.product(id)
	if err != nil {
		return err
	}
	rec.product.IsActive = false
	rec.product.UpdatedAt = r.s.now()
	r.s.data.products[rec.product.ID] = rec
	return nil
}

func (r *productRepository) Locations(ctx context.Context) ([]string, error) {
	defer r.s.lock()()
	seen := make(map[string]struct{})
	locations := []string{}
	for _, rec := range r.s.data.products {
		loc := rec.product.Location
		if !rec.product.IsActive || loc == "" {
			continue
		}
		if _, ok := seen[loc]; ok {
			continue
		}
		seen[loc] = struct{}{}
		locations = append(locations, loc)
	}
	sort.Strings(locations)
	return locations, nil
}

func (st *state) product(id string) (productRecord, error) {
	pid, ok := repository.NormalizeID(id)
	if !ok {
		return productRecord{}, domain.NewNotFoundError("product not found")
	}
	rec, ok := st.products[pid]
	if !ok {
		return productRecord{}, domain.NewNotFoundError("product not found")
	}
	return rec, nil
}
