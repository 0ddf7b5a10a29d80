package domain

import "time"

type Role string

const (
	RoleUser    Role = "user"
	RoleManager Role = "manager"
)

func (r Role) IsValid() bool {
	return r == RoleUser || r == RoleManager
}

type User struct {
	ID           string     `json:"_id"`
	FirstName    string     `json:"first_name"`
	LastName     string     `json:"last_name"`
	Email        string     `json:"email"`
	Phone        string     `json:"phone"`
	PasswordHash string     `json:"-"`
	Role         Role       `json:"user_type"`
	IsActive     bool       `json:"is_active"`
	LastLogin    *time.Time `json:"last_login"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// Principal is the authenticated actor of a request.
type Principal struct {
	ID       string
	Role     Role
	IsActive bool
}

func (p Principal) IsManager() bool {
	return p.Role == RoleManager
}

// Principal projects the user onto the fields the access layer needs.
func (u *User) Principal() Principal {
	return Principal{ID: u.ID, Role: u.Role, IsActive: u.IsActive}
}

type RegisterRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	UserType  string `json:"user_type"`
	Phone     string `json:"phone"`
}

type ProfileUpdate struct {
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Phone     *string `json:"phone"`
}

type UserPage struct {
	Users []User `json:"users"`
	Total int    `json:"total"`
	Skip  int    `json:"skip"`
	Limit int    `json:"limit"`
}
