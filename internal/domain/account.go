// Package domain provides defenitions of all entities.
package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrAccountNotFound indicates that the account is not found.
	ErrAccountNotFound = errors.New("account not found")
	// ErrDuplicateAccount indicates that the user already owns an account.
	ErrDuplicateAccount = errors.New("user already has an account")
	// ErrOwnerNotFound indicates that the owner for the account is not found.
	ErrOwnerNotFound = errors.New("owner not found")
	// ErrAccountNumberTaken indicates a generated account or card number collided
	// with an existing one.
	ErrAccountNumberTaken = errors.New("account number already taken")
	// ErrAccountOwnerMismatch indicates that the account does not belong to the caller.
	ErrAccountOwnerMismatch = errors.New("account does not belong to the user")
	// ErrAccountNotProvisioned indicates that the user was created but the
	// account provisioning step failed. The user record is kept; provisioning
	// must be retried separately.
	ErrAccountNotProvisioned = errors.New("user created but account not provisioned")
)

// Account holds the monetary balance and the ATM credential for a single owner.
// AccountNumber and ATMCardNumber are assigned once and never change.
type Account struct {
	ID            uuid.UUID  `json:"id"`
	AccountNumber int64      `json:"account_number"`
	Balance       string     `json:"balance"`
	ATMCardNumber int64      `json:"atm_card_number"`
	ATMCardPIN    string     `json:"-"`
	OwnerUserID   uuid.UUID  `json:"owner_user_id"`
	CreatedAt     time.Time  `json:"created_at"`
	CreatedBy     uuid.UUID  `json:"created_by"`
	ModifiedAt    *time.Time `json:"modified_at,omitempty"`
	ModifiedBy    *uuid.UUID `json:"modified_by,omitempty"`
}

// CreateAccountParams holds data needed for Account creation.
type CreateAccountParams struct {
	AccountNumber int64
	ATMCardNumber int64
	ATMCardPIN    string
	OwnerUserID   uuid.UUID
	Balance       string
	CreatedBy     uuid.UUID
}
