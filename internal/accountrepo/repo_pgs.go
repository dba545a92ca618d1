// Package accountrepo manages repository layer of accounts.
package accountrepo

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/rs/zerolog"

	"github.com/go-petr/bank-backoffice/internal/domain"
	"github.com/go-petr/bank-backoffice/pkg/dbpkg"
	"github.com/go-petr/bank-backoffice/pkg/errorspkg"
)

// RepoPGS facilitates account repository layer logic.
type RepoPGS struct {
	db dbpkg.SQLInterface
}

// NewRepoPGS returns account RepoPGS.
func NewRepoPGS(db dbpkg.SQLInterface) *RepoPGS {
	return &RepoPGS{
		db: db,
	}
}

const allColumns = `
	id, account_number, balance, atm_card_number, atm_card_pin,
	owner_user_id, created_at, created_by, modified_at, modified_by
`

func scanAccount(row *sql.Row) (domain.Account, error) {
	var a domain.Account

	err := row.Scan(
		&a.ID,
		&a.AccountNumber,
		&a.Balance,
		&a.ATMCardNumber,
		&a.ATMCardPIN,
		&a.OwnerUserID,
		&a.CreatedAt,
		&a.CreatedBy,
		&a.ModifiedAt,
		&a.ModifiedBy,
	)

	return a, err
}

const createQuery = `
INSERT INTO
    accounts (account_number, balance, atm_card_number, atm_card_pin, owner_user_id, created_by)
VALUES
    ($1, $2, $3, $4, $5, $6)
RETURNING` + allColumns

// Create creates the account and then returns it.
func (r *RepoPGS) Create(ctx context.Context, arg domain.CreateAccountParams) (domain.Account, error) {
	l := zerolog.Ctx(ctx)

	row := r.db.QueryRowContext(ctx, createQuery,
		arg.AccountNumber,
		arg.Balance,
		arg.ATMCardNumber,
		arg.ATMCardPIN,
		arg.OwnerUserID,
		arg.CreatedBy,
	)

	a, err := scanAccount(row)
	if err != nil {
		l.Error().Err(err).Send()

		if pqErr, ok := err.(*pq.Error); ok {
			switch pqErr.Constraint {
			case "accounts_owner_user_id_fkey":
				return a, domain.ErrOwnerNotFound
			case "accounts_owner_user_id_key":
				return a, domain.ErrDuplicateAccount
			case "accounts_account_number_key", "accounts_atm_card_number_key":
				return a, domain.ErrAccountNumberTaken
			}
		}

		return a, errorspkg.ErrInternal
	}

	return a, nil
}

const getQuery = `
SELECT` + allColumns + `
FROM accounts
WHERE id = $1
`

// Get returns the account with the given id.
func (r *RepoPGS) Get(ctx context.Context, id uuid.UUID) (domain.Account, error) {
	l := zerolog.Ctx(ctx)

	a, err := scanAccount(r.db.QueryRowContext(ctx, getQuery, id))
	if err != nil {
		l.Error().Err(err).Send()

		if err == sql.ErrNoRows {
			return a, domain.ErrAccountNotFound
		}

		return a, errorspkg.ErrInternal
	}

	return a, nil
}

const getByNumberQuery = `
SELECT` + allColumns + `
FROM accounts
WHERE account_number = $1
`

// GetByNumber returns the account with the given account number.
func (r *RepoPGS) GetByNumber(ctx context.Context, accountNumber int64) (domain.Account, error) {
	l := zerolog.Ctx(ctx)

	a, err := scanAccount(r.db.QueryRowContext(ctx, getByNumberQuery, accountNumber))
	if err != nil {
		l.Error().Err(err).Send()

		if err == sql.ErrNoRows {
			return a, domain.ErrAccountNotFound
		}

		return a, errorspkg.ErrInternal
	}

	return a, nil
}

const getByUserQuery = `
SELECT` + allColumns + `
FROM accounts
WHERE owner_user_id = $1
`

// GetByUser returns the account owned by the given user.
func (r *RepoPGS) GetByUser(ctx context.Context, userID uuid.UUID) (domain.Account, error) {
	l := zerolog.Ctx(ctx)

	a, err := scanAccount(r.db.QueryRowContext(ctx, getByUserQuery, userID))
	if err != nil {
		if err == sql.ErrNoRows {
			return a, domain.ErrAccountNotFound
		}

		l.Error().Err(err).Send()

		return a, errorspkg.ErrInternal
	}

	return a, nil
}

const setBalanceQuery = `
UPDATE accounts
SET balance = $1, modified_at = now(), modified_by = $2
WHERE id = $3 AND balance = $4
RETURNING` + allColumns

// SetBalance writes newBalance only if the stored balance still equals
// expectedBalance. Zero rows means a concurrent writer got there first and
// the caller must re-read and retry.
func (r *RepoPGS) SetBalance(ctx context.Context, id uuid.UUID, newBalance, expectedBalance string, modifiedBy uuid.UUID) (domain.Account, error) {
	l := zerolog.Ctx(ctx)

	row := r.db.QueryRowContext(ctx, setBalanceQuery, newBalance, modifiedBy, id, expectedBalance)

	a, err := scanAccount(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return a, domain.ErrBalanceConflict
		}

		l.Error().Err(err).Send()

		if pqErr, ok := err.(*pq.Error); ok {
			if pqErr.Constraint == "accounts_balance_check" {
				return a, domain.ErrInsufficientBalance
			}
		}

		return a, errorspkg.ErrInternal
	}

	return a, nil
}

const listQuery = `
SELECT` + allColumns + `
FROM accounts
ORDER BY created_at
LIMIT $1 OFFSET $2
`

// List returns the specified page of accounts.
func (r *RepoPGS) List(ctx context.Context, limit, offset int32) ([]domain.Account, error) {
	l := zerolog.Ctx(ctx)

	rows, err := r.db.QueryContext(ctx, listQuery, limit, offset)
	if err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrInternal
	}
	defer rows.Close()

	items := []domain.Account{}

	for rows.Next() {
		var a domain.Account
		if err := rows.Scan(
			&a.ID,
			&a.AccountNumber,
			&a.Balance,
			&a.ATMCardNumber,
			&a.ATMCardPIN,
			&a.OwnerUserID,
			&a.CreatedAt,
			&a.CreatedBy,
			&a.ModifiedAt,
			&a.ModifiedBy,
		); err != nil {
			l.Error().Err(err).Send()
			return nil, errorspkg.ErrInternal
		}

		items = append(items, a)
	}

	if err := rows.Err(); err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrInternal
	}

	return items, nil
}

const deleteQuery = `
DELETE FROM accounts
WHERE id = $1
`

// Delete removes the account with the given id. Administrative path only;
// the ledger itself never deletes accounts.
func (r *RepoPGS) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.ExecContext(ctx, deleteQuery, id)
	return err
}
