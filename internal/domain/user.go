package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrUsernameAlreadyExists indicates that the user with the given username already exists.
	ErrUsernameAlreadyExists = errors.New("username already exists")
	// ErrEmailAlreadyExists indicates that the user with the given email already exists.
	ErrEmailAlreadyExists = errors.New("email already exists")
	// ErrUserNotFound indicates that the user is not found.
	ErrUserNotFound = errors.New("user not found")
	// ErrWrongPassword indicates the wrong password for the given user.
	ErrWrongPassword = errors.New("wrong password")
	// ErrUnknownRole indicates a role outside the supported set.
	ErrUnknownRole = errors.New("unknown role")
)

// Role classifies what a caller is allowed to do with accounts and money.
type Role string

// Supported roles.
const (
	RoleTeller        Role = "teller"
	RoleAccountHolder Role = "account_holder"
)

// ValidRole reports whether r is a supported role.
func ValidRole(r Role) bool {
	return r == RoleTeller || r == RoleAccountHolder
}

// Actor is the resolved caller identity passed explicitly into every
// service operation that needs authorization.
type Actor struct {
	UserID uuid.UUID
	Role   Role
}

// User holds user data.
type User struct {
	ID                uuid.UUID `json:"id"`
	Username          string    `json:"username"`
	HashedPassword    string    `json:"hashed_password"`
	FullName          string    `json:"full_name"`
	Email             string    `json:"email"`
	Role              Role      `json:"role"`
	PasswordChangedAt time.Time `json:"password_changed_at,omitempty"`
	CreatedAt         time.Time `json:"created_at,omitempty"`
}

// CreateUserParams is the input data to create a user.
type CreateUserParams struct {
	Username       string `json:"username"`
	HashedPassword string `json:"hashed_password"`
	FullName       string `json:"full_name"`
	Email          string `json:"email"`
	Role           Role   `json:"role"`
}

// UserWithoutPassword is User data excluding password data.
type UserWithoutPassword struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	FullName  string    `json:"full_name"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// RegisterResult is the outcome of user registration. Account is nil for
// tellers and for the partial-success state where provisioning failed.
type RegisterResult struct {
	User    UserWithoutPassword `json:"user"`
	Account *Account            `json:"account,omitempty"`
}
