package aurora

import "github.com/etnz/aurora/date"

// User is the authenticated user profile.
type User struct {
	ID        string          `json:"id"`
	Username  string          `json:"username"`
	Email     string          `json:"email"`
	CreatedAt date.Timestamp  `json:"created_at"`
	UpdatedAt *date.Timestamp `json:"updated_at,omitempty"`
}

// Credentials are the login form values.
type Credentials struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required,min=8"`
}

// UserCreate is the registration payload.
type UserCreate struct {
	Username string `json:"username" validate:"required,min=3"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}
