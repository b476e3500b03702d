package models

// User is the authenticated account as reported by the backend.
type User struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	CreatedAt string `json:"created_at,omitempty"`
}

// SignupRequest is the /auth/signup body.
type SignupRequest struct {
	Username string `json:"username" validate:"required,min=3"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// Credentials is the /auth/login body.
type Credentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthResult is returned by signup and login.
type AuthResult struct {
	Message string `json:"message,omitempty"`
	User    *User  `json:"user"`
	Token   string `json:"token"`
}

// VerifyResult is the /auth/verify response.
type VerifyResult struct {
	Valid bool  `json:"valid"`
	User  *User `json:"user,omitempty"`
}
