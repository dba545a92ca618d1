package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrInvalidAmount indicates an amount that does not parse as a decimal number.
	ErrInvalidAmount = errors.New("invalid amount")
	// ErrNonPositiveAmount indicates a zero or negative amount.
	ErrNonPositiveAmount = errors.New("amount must be positive")
	// ErrInsufficientBalance indicates that the account does not have sufficient balance.
	ErrInsufficientBalance = errors.New("insufficient balance")
	// ErrWrongPIN indicates that the supplied ATM card PIN does not match the account's.
	ErrWrongPIN = errors.New("wrong ATM card PIN")
	// ErrDepositRequiresTeller indicates a deposit attempted by a non-teller actor.
	ErrDepositRequiresTeller = errors.New("deposit requires teller role")
	// ErrBalanceConflict indicates that a concurrent writer updated the balance
	// between the read and the conditional write. Retried internally.
	ErrBalanceConflict = errors.New("balance changed concurrently")
	// ErrTooMuchContention indicates that the bounded retry budget for
	// concurrent balance updates is exhausted.
	ErrTooMuchContention = errors.New("too much contention on account")
	// ErrTransactionNotFound indicates that the transaction is not found.
	ErrTransactionNotFound = errors.New("transaction not found")
)

// TransactionType discriminates the direction of a balance mutation.
type TransactionType string

// Supported transaction types.
const (
	TransactionTypeDeposit  TransactionType = "deposit"
	TransactionTypeWithdraw TransactionType = "withdraw"
)

// Transaction is the immutable audit record of a single balance mutation.
// Amount is always positive; direction is carried by Type.
type Transaction struct {
	ID        uuid.UUID       `json:"id"`
	AccountID uuid.UUID       `json:"account_id"`
	Amount    string          `json:"amount"`
	Type      TransactionType `json:"type"`
	Time      time.Time       `json:"time"`
	Remarks   string          `json:"remarks,omitempty"`
}

// ApplyTransactionParams is the input for the atomic balance-update-plus-append
// unit. ExpectedBalance is the balance observed at read time; the write only
// succeeds if it is still current.
type ApplyTransactionParams struct {
	AccountID       uuid.UUID
	ExpectedBalance string
	NewBalance      string
	Amount          string
	Type            TransactionType
	Remarks         string
	ActorID         uuid.UUID
}

// TransactionResult is the outcome of a successful deposit or withdrawal.
type TransactionResult struct {
	Transaction Transaction `json:"transaction"`
	Account     Account     `json:"account"`
}
