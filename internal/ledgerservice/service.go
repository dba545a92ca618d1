// Package ledgerservice manages business logic layer of balance mutations.
//
// Deposit and withdrawal share one validate-and-apply path: read the account,
// authorize, compute the new balance, and hand the conditional write plus the
// audit append to the repository as a single unit. On a concurrent-write
// conflict the whole step is re-run from a fresh read, a bounded number of
// times. Different accounts never contend with each other.
package ledgerservice

import (
	"context"
	"io"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/go-petr/bank-backoffice/internal/domain"
	"github.com/go-petr/bank-backoffice/pkg/statementpkg"
)

// maxBalanceAttempts bounds the optimistic retry loop before the caller gets
// domain.ErrTooMuchContention.
const maxBalanceAttempts = 3

// AccountReader provides the account lookups needed by the ledger service layer.
//
//go:generate mockgen -source service.go -destination service_mock.go -package ledgerservice
type AccountReader interface {
	GetByNumber(ctx context.Context, accountNumber int64) (domain.Account, error)
}

// Repo provides data access layer interface needed by the ledger service layer.
type Repo interface {
	Apply(ctx context.Context, arg domain.ApplyTransactionParams) (domain.TransactionResult, error)
	ListByAccount(ctx context.Context, accountID uuid.UUID) ([]domain.Transaction, error)
}

// Service facilitates ledger service layer logic.
type Service struct {
	repo     Repo
	accounts AccountReader
}

// New returns ledger service struct to manage deposit and withdrawal logic.
func New(tr Repo, ar AccountReader) *Service {
	return &Service{
		repo:     tr,
		accounts: ar,
	}
}

func parseAmount(amount string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return decimal.Zero, domain.ErrInvalidAmount
	}

	if d.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, domain.ErrNonPositiveAmount
	}

	return d, nil
}

// authorizeFunc authorizes one attempt against a freshly-read account and
// returns the actor id recorded in the audit fields.
type authorizeFunc func(account domain.Account, balance decimal.Decimal) (uuid.UUID, error)

// apply runs the optimistic validate-and-apply loop shared by Deposit and
// Withdraw. Authorization and overdraft policy are re-checked on every attempt
// because each attempt starts from a fresh read.
func (s *Service) apply(
	ctx context.Context,
	accountNumber int64,
	amount decimal.Decimal,
	typ domain.TransactionType,
	remarks string,
	authorize authorizeFunc,
) (domain.TransactionResult, error) {
	l := zerolog.Ctx(ctx)

	for attempt := 0; attempt < maxBalanceAttempts; attempt++ {
		account, err := s.accounts.GetByNumber(ctx, accountNumber)
		if err != nil {
			return domain.TransactionResult{}, err
		}

		balance, err := decimal.NewFromString(account.Balance)
		if err != nil {
			l.Error().Err(err).Int64("account_number", accountNumber).Send()
			return domain.TransactionResult{}, domain.ErrInvalidAmount
		}

		actorID, err := authorize(account, balance)
		if err != nil {
			return domain.TransactionResult{}, err
		}

		newBalance := balance.Add(amount)
		if typ == domain.TransactionTypeWithdraw {
			newBalance = balance.Sub(amount)
		}

		arg := domain.ApplyTransactionParams{
			AccountID:       account.ID,
			ExpectedBalance: account.Balance,
			NewBalance:      newBalance.String(),
			Amount:          amount.String(),
			Type:            typ,
			Remarks:         remarks,
			ActorID:         actorID,
		}

		result, err := s.repo.Apply(ctx, arg)
		if err == domain.ErrBalanceConflict {
			l.Info().
				Int64("account_number", accountNumber).
				Int("attempt", attempt+1).
				Msg("balance changed concurrently, retrying")

			continue
		}

		return result, err
	}

	return domain.TransactionResult{}, domain.ErrTooMuchContention
}

// Deposit credits amount to the account. Only tellers may deposit; the actor
// is the authenticated teller performing the operation at the counter.
func (s *Service) Deposit(ctx context.Context, accountNumber int64, amount string, actor domain.Actor, remarks string) (domain.TransactionResult, error) {
	amountDecimal, err := parseAmount(amount)
	if err != nil {
		return domain.TransactionResult{}, err
	}

	if actor.Role != domain.RoleTeller {
		return domain.TransactionResult{}, domain.ErrDepositRequiresTeller
	}

	return s.apply(ctx, accountNumber, amountDecimal, domain.TransactionTypeDeposit, remarks,
		func(account domain.Account, balance decimal.Decimal) (uuid.UUID, error) {
			return actor.UserID, nil
		})
}

// Withdraw debits amount from the account. The ATM card PIN authorizes every
// withdrawal; the account owner is recorded as the acting party. Overdrafts
// are rejected before any write happens.
func (s *Service) Withdraw(ctx context.Context, accountNumber int64, amount, pin, remarks string) (domain.TransactionResult, error) {
	amountDecimal, err := parseAmount(amount)
	if err != nil {
		return domain.TransactionResult{}, err
	}

	return s.apply(ctx, accountNumber, amountDecimal, domain.TransactionTypeWithdraw, remarks,
		func(account domain.Account, balance decimal.Decimal) (uuid.UUID, error) {
			if account.ATMCardPIN != pin {
				return uuid.Nil, domain.ErrWrongPIN
			}

			if balance.LessThan(amountDecimal) {
				return uuid.Nil, domain.ErrInsufficientBalance
			}

			return account.OwnerUserID, nil
		})
}

// ListTransactions returns the account's full transaction history ordered by
// transaction time ascending. An account without transactions yields an empty
// slice, not an error. Account holders may only read their own history.
func (s *Service) ListTransactions(ctx context.Context, accountNumber int64, actor domain.Actor) ([]domain.Transaction, error) {
	account, err := s.accounts.GetByNumber(ctx, accountNumber)
	if err != nil {
		return nil, err
	}

	if actor.Role != domain.RoleTeller && account.OwnerUserID != actor.UserID {
		return nil, domain.ErrAccountOwnerMismatch
	}

	return s.repo.ListByAccount(ctx, account.ID)
}

// Statement renders the account's transaction history to w as a PDF document.
// Account holders may only render their own statement.
func (s *Service) Statement(ctx context.Context, w io.Writer, accountNumber int64, actor domain.Actor) error {
	account, err := s.accounts.GetByNumber(ctx, accountNumber)
	if err != nil {
		return err
	}

	if actor.Role != domain.RoleTeller && account.OwnerUserID != actor.UserID {
		return domain.ErrAccountOwnerMismatch
	}

	transactions, err := s.repo.ListByAccount(ctx, account.ID)
	if err != nil {
		return err
	}

	return statementpkg.Write(w, account, transactions)
}
