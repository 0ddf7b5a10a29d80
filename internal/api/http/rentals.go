package http

import (
	"net/http"

	"github.com/gorilla/mux"

	"rentalhub-backend/internal/domain"
	"rentalhub-backend/internal/service"
)

type rentalHandler struct {
	rentals service.RentalService
}

type statusRequest struct {
	Status string `json:"status"`
}

type paymentRequest struct {
	PaymentStatus string `json:"payment_status"`
}

func (h *rentalHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.BookingRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	rental, err := h.rentals.CreateBooking(r.Context(), principalFrom(r), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, envelope{"message": "Rental request created successfully", "rental": rental})
}

func (h *rentalHandler) List(w http.ResponseWriter, r *http.Request) {
	skip, limit, err := pageParams(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	page, err := h.rentals.ListRentals(r.Context(), principalFrom(r), service.RentalQuery{
		Status: r.URL.Query().Get("status"),
		Skip:   skip,
		Limit:  limit,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{
		"message": "Rentals retrieved successfully",
		"rentals": page.Rentals,
		"total":   page.Total,
		"skip":    page.Skip,
		"limit":   page.Limit,
	})
}

func (h *rentalHandler) Get(w http.ResponseWriter, r *http.Request) {
	rental, err := h.rentals.GetRental(r.Context(), principalFrom(r), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{"message": "Rental retrieved successfully", "rental": rental})
}

func (h *rentalHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	rental, err := h.rentals.UpdateStatus(r.Context(), principalFrom(r), mux.Vars(r)["id"], req.Status)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{"message": "Rental status updated successfully", "rental": rental})
}

func (h *rentalHandler) UpdatePayment(w http.ResponseWriter, r *http.Request) {
	var req paymentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	rental, err := h.rentals.UpdatePayment(r.Context(), principalFrom(r), mux.Vars(r)["id"], req.PaymentStatus)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{"message": "Payment status updated successfully", "rental": rental})
}
