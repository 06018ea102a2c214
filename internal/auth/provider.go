package auth

import (
	"context"
	"time"
)

// Identity is the provider-neutral view of an authenticated account.
type Identity struct {
	ID        int64     `json:"id,string"`
	Email     string    `json:"email"`
	Username  string    `json:"username"`
	Realname  string    `json:"realname"`
	Level     string    `json:"level"`
	Locale    string    `json:"locale"`
	LastLogin time.Time `json:"last_login"`
}

type Credentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type SignUpInput struct {
	Email    string `json:"email" validate:"required,email"`
	Username string `json:"username" validate:"required,min=2,max=64"`
	Password string `json:"password" validate:"required,min=8"`
	Realname string `json:"realname"`
	Locale   string `json:"locale"`
}

// IdentityProvider is the external identity boundary. Implementations
// return coded *Error values for expected failures; anything else is
// treated as internal.
type IdentityProvider interface {
	SignIn(ctx context.Context, creds Credentials) (*Identity, string, error)
	SignUp(ctx context.Context, in SignUpInput) (*Identity, error)
	SignOut(ctx context.Context, token string) error
	GetCurrentUser(ctx context.Context, token string) (*Identity, error)
	ResetPassword(ctx context.Context, email string) (string, error)
	ConfirmPasswordReset(ctx context.Context, token, newPassword string) error
}
