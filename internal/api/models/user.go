package models

// User represents a user in the database.
type User struct {
	ID           int64  `db:"id"`
	Username     string `db:"username"`
	PasswordHash string `db:"password"`
}

// RegisterRequest is the registration form. Missing fields bind as empty strings.
type RegisterRequest struct {
	Username string `form:"username" json:"username" validate:"required,min=3,max=10,alphanum"`
	Password string `form:"password" json:"password" validate:"required,min=8,max=50,bcrypt"`
}

// LoginRequest is the login form.
type LoginRequest struct {
	Username string `form:"username" json:"username"`
	Password string `form:"password" json:"password"`
}
