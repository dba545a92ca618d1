// Package accountservice manages business logic layer of accounts.
package accountservice

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/go-petr/bank-backoffice/internal/domain"
	"github.com/go-petr/bank-backoffice/pkg/randompkg"
)

// pinLength is the number of digits in a freshly issued ATM card PIN.
const pinLength = 4

// maxNumberAttempts bounds regeneration when a generated account or card
// number collides with an existing one.
const maxNumberAttempts = 3

// Repo provides data access layer interface needed by account service layer.
//
//go:generate mockgen -source service.go -destination service_mock.go -package accountservice
type Repo interface {
	Create(ctx context.Context, arg domain.CreateAccountParams) (domain.Account, error)
	Get(ctx context.Context, id uuid.UUID) (domain.Account, error)
	GetByNumber(ctx context.Context, accountNumber int64) (domain.Account, error)
	GetByUser(ctx context.Context, userID uuid.UUID) (domain.Account, error)
	List(ctx context.Context, limit, offset int32) ([]domain.Account, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// NumberGenerator hands out account and ATM card numbers.
type NumberGenerator interface {
	AccountNumber() int64
	CardNumber() int64
}

// Service facilitates account service layer logic.
type Service struct {
	repo    Repo
	numbers NumberGenerator
}

// New returns account service struct to manage account business logic.
func New(ar Repo, ng NumberGenerator) *Service {
	return &Service{
		repo:    ar,
		numbers: ng,
	}
}

// Provision creates the single account owned by ownerUserID with a zero
// balance, a fresh account number, an ATM card number and a generated PIN.
// A user that already owns an account gets domain.ErrDuplicateAccount.
func (s *Service) Provision(ctx context.Context, ownerUserID, createdBy uuid.UUID) (domain.Account, error) {
	l := zerolog.Ctx(ctx)

	_, err := s.repo.GetByUser(ctx, ownerUserID)
	if err == nil {
		return domain.Account{}, domain.ErrDuplicateAccount
	}

	if err != domain.ErrAccountNotFound {
		return domain.Account{}, err
	}

	for attempt := 0; attempt < maxNumberAttempts; attempt++ {
		arg := domain.CreateAccountParams{
			AccountNumber: s.numbers.AccountNumber(),
			ATMCardNumber: s.numbers.CardNumber(),
			ATMCardPIN:    randompkg.PIN(pinLength),
			OwnerUserID:   ownerUserID,
			Balance:       "0",
			CreatedBy:     createdBy,
		}

		account, err := s.repo.Create(ctx, arg)
		if err == domain.ErrAccountNumberTaken {
			l.Info().
				Int64("account_number", arg.AccountNumber).
				Int("attempt", attempt+1).
				Msg("generated number collided, regenerating")

			continue
		}

		return account, err
	}

	return domain.Account{}, domain.ErrAccountNumberTaken
}

// Get returns the account with the given id.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (domain.Account, error) {
	return s.repo.Get(ctx, id)
}

// GetByNumber returns the account with the given account number.
func (s *Service) GetByNumber(ctx context.Context, accountNumber int64) (domain.Account, error) {
	return s.repo.GetByNumber(ctx, accountNumber)
}

// GetByUser returns the account owned by the given user.
func (s *Service) GetByUser(ctx context.Context, userID uuid.UUID) (domain.Account, error) {
	return s.repo.GetByUser(ctx, userID)
}

// List returns a page of accounts ordered by creation time.
func (s *Service) List(ctx context.Context, pageSize, pageID int32) ([]domain.Account, error) {
	limit := pageSize
	offset := (pageID - 1) * pageSize

	return s.repo.List(ctx, limit, offset)
}

// Delete removes the account with the given id.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}
