package http

import (
	"net/http"

	"github.com/gorilla/mux"

	"rentalhub-backend/internal/domain"
	"rentalhub-backend/internal/service"
)

type authHandler struct {
	auth  service.AuthService
	users service.UserService
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type verifyTokenRequest struct {
	Token string `json:"token"`
}

func (h *authHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req domain.RegisterRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	user, err := h.auth.Register(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, envelope{"message": "User created successfully", "user": user})
}

func (h *authHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	token, user, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{"message": "Login successful", "token": token, "user": user})
}

// VerifyToken accepts the token in the body or as a bearer header.
func (h *authHandler) VerifyToken(w http.ResponseWriter, r *http.Request) {
	var req verifyTokenRequest
	if r.ContentLength != 0 {
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, r, err, envelope{"valid": false})
			return
		}
	}
	token := req.Token
	if token == "" {
		token = bearerToken(r)
	}
	user, err := h.auth.VerifyToken(r.Context(), token)
	if err != nil {
		writeError(w, r, err, envelope{"valid": false})
		return
	}
	writeJSON(w, http.StatusOK, envelope{"message": "Token is valid", "valid": true, "user": user})
}

func (h *authHandler) Logout(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, envelope{"message": "Logout successful"})
}

func (h *authHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	user, err := h.users.GetProfile(r.Context(), principalFrom(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{"message": "Profile retrieved successfully", "user": user})
}

func (h *authHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var update domain.ProfileUpdate
	if err := decodeJSON(r, &update); err != nil {
		writeError(w, r, err)
		return
	}
	user, err := h.users.UpdateProfile(r.Context(), principalFrom(r), update)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{"message": "Profile updated successfully", "user": user})
}

func (h *authHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	skip, limit, err := pageParams(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	page, err := h.users.ListUsers(r.Context(), principalFrom(r), r.URL.Query().Get("user_type"), skip, limit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{
		"message": "Users retrieved successfully",
		"users":   page.Users,
		"total":   page.Total,
		"skip":    page.Skip,
		"limit":   page.Limit,
	})
}

func (h *authHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.users.GetUser(r.Context(), principalFrom(r), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{"message": "User retrieved successfully", "user": user})
}

func (h *authHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	if err := h.users.DeleteUser(r.Context(), principalFrom(r), mux.Vars(r)["id"]); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{"message": "User deleted successfully"})
}
