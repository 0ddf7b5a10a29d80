package http

import (
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"rentalhub-backend/internal/domain"
	"rentalhub-backend/internal/service"
)

type productHandler struct {
	products service.ProductService
}

func (h *productHandler) List(w http.ResponseWriter, r *http.Request) {
	skip, limit, err := pageParams(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	active, err := queryBool(r, "is_active")
	if err != nil {
		writeError(w, r, err)
		return
	}
	q := r.URL.Query()
	filter := domain.ProductFilter{
		IsActive: active,
		Category: strings.TrimSpace(q.Get("category")),
		Location: strings.TrimSpace(q.Get("location")),
	}
	page, err := h.products.ListProducts(r.Context(), filter, skip, limit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{
		"message":  "Products retrieved successfully",
		"products": page.Products,
		"total":    page.Total,
		"skip":     page.Skip,
		"limit":    page.Limit,
	})
}

func (h *productHandler) Locations(w http.ResponseWriter, r *http.Request) {
	locations, err := h.products.Locations(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{"message": "Locations retrieved successfully", "locations": locations})
}

func (h *productHandler) Get(w http.ResponseWriter, r *http.Request) {
	product, err := h.products.GetProduct(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{"message": "Product retrieved successfully", "product": product})
}

func (h *productHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in domain.ProductInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	product, err := h.products.CreateProduct(r.Context(), principalFrom(r), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, envelope{"message": "Product added successfully", "product": product})
}

func (h *productHandler) Update(w http.ResponseWriter, r *http.Request) {
	var in domain.ProductInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	product, err := h.products.UpdateProduct(r.Context(), principalFrom(r), mux.Vars(r)["id"], in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{"message": "Product updated successfully", "product": product})
}

func (h *productHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.products.DeleteProduct(r.Context(), principalFrom(r), mux.Vars(r)["id"]); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{"message": "Product deleted successfully"})
}
