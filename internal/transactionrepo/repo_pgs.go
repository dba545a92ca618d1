// Package transactionrepo manages repository layer of transactions.
//
// Transactions are the append-only audit trail of every balance mutation.
// There is deliberately no update or delete query in this package.
package transactionrepo

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/rs/zerolog"

	"github.com/go-petr/bank-backoffice/internal/accountrepo"
	"github.com/go-petr/bank-backoffice/internal/domain"
	"github.com/go-petr/bank-backoffice/pkg/dbpkg"
	"github.com/go-petr/bank-backoffice/pkg/errorspkg"
)

// RepoPGS facilitates transaction repository layer logic.
type RepoPGS struct {
	db   dbpkg.SQLInterface
	conn *sql.DB
}

// NewTxRepoPGS returns transaction RepoPGS bound to an existing transaction.
func NewTxRepoPGS(db dbpkg.SQLInterface) *RepoPGS {
	return &RepoPGS{
		db: db,
	}
}

// NewRepoPGS returns transaction RepoPGS with a connection to start transactions.
func NewRepoPGS(db *sql.DB) *RepoPGS {
	return &RepoPGS{
		db:   db,
		conn: db,
	}
}

const createQuery = `
INSERT INTO
    transactions (account_id, amount, transaction_type, remarks)
VALUES
    ($1, $2, $3, $4)
RETURNING id, account_id, amount, transaction_type, transaction_time, remarks
`

// Create appends the transaction record and then returns it.
func (r *RepoPGS) Create(ctx context.Context, accountID uuid.UUID, amount string, typ domain.TransactionType, remarks string) (domain.Transaction, error) {
	l := zerolog.Ctx(ctx)

	row := r.db.QueryRowContext(ctx, createQuery, accountID, amount, typ, remarks)

	var t domain.Transaction

	err := row.Scan(
		&t.ID,
		&t.AccountID,
		&t.Amount,
		&t.Type,
		&t.Time,
		&t.Remarks,
	)

	if err != nil {
		l.Error().Err(err).Send()

		if pqErr, ok := err.(*pq.Error); ok {
			switch pqErr.Constraint {
			case "transactions_account_id_fkey":
				return t, domain.ErrAccountNotFound
			case "transactions_amount_check":
				return t, domain.ErrNonPositiveAmount
			}
		}

		return t, errorspkg.ErrInternal
	}

	return t, nil
}

const getQuery = `
SELECT
	id, account_id, amount, transaction_type, transaction_time, remarks
FROM transactions
WHERE id = $1
`

// Get returns the transaction with the given id.
func (r *RepoPGS) Get(ctx context.Context, id uuid.UUID) (domain.Transaction, error) {
	l := zerolog.Ctx(ctx)

	row := r.db.QueryRowContext(ctx, getQuery, id)

	var t domain.Transaction

	err := row.Scan(
		&t.ID,
		&t.AccountID,
		&t.Amount,
		&t.Type,
		&t.Time,
		&t.Remarks,
	)

	if err != nil {
		l.Error().Err(err).Send()

		if err == sql.ErrNoRows {
			return t, domain.ErrTransactionNotFound
		}

		return t, errorspkg.ErrInternal
	}

	return t, nil
}

const listByAccountQuery = `
SELECT
	id, account_id, amount, transaction_type, transaction_time, remarks
FROM transactions
WHERE account_id = $1
ORDER BY transaction_time
`

// ListByAccount returns all transactions for the account ordered by
// transaction time ascending.
func (r *RepoPGS) ListByAccount(ctx context.Context, accountID uuid.UUID) ([]domain.Transaction, error) {
	l := zerolog.Ctx(ctx)

	rows, err := r.db.QueryContext(ctx, listByAccountQuery, accountID)
	if err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrInternal
	}
	defer rows.Close()

	items := []domain.Transaction{}

	for rows.Next() {
		var t domain.Transaction
		if err := rows.Scan(
			&t.ID,
			&t.AccountID,
			&t.Amount,
			&t.Type,
			&t.Time,
			&t.Remarks,
		); err != nil {
			l.Error().Err(err).Send()
			return nil, errorspkg.ErrInternal
		}

		items = append(items, t)
	}

	if err := rows.Err(); err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrInternal
	}

	return items, nil
}

// Apply performs the balance mutation and the audit append as one unit.
//
// It writes the new balance conditional on the balance the caller observed at
// read time and inserts the transaction record within a single database
// transaction: either both land or neither does. A domain.ErrBalanceConflict
// is passed through untouched so the service layer can re-read and retry.
func (r *RepoPGS) Apply(ctx context.Context, arg domain.ApplyTransactionParams) (domain.TransactionResult, error) {
	l := zerolog.Ctx(ctx)

	var result domain.TransactionResult

	tx, err := r.conn.BeginTx(ctx, nil)
	if err != nil {
		l.Error().Err(err).Send()
		return result, errorspkg.ErrInternal
	}

	defer func() {
		if err := tx.Rollback(); err != nil && err != sql.ErrTxDone {
			l.Error().Err(err).Send()
		}
	}()

	accountRepo := accountrepo.NewRepoPGS(tx)
	transactionRepo := NewTxRepoPGS(tx)

	result.Account, err = accountRepo.SetBalance(ctx, arg.AccountID, arg.NewBalance, arg.ExpectedBalance, arg.ActorID)
	if err != nil {
		return result, err
	}

	result.Transaction, err = transactionRepo.Create(ctx, arg.AccountID, arg.Amount, arg.Type, arg.Remarks)
	if err != nil {
		return result, err
	}

	if err := tx.Commit(); err != nil {
		l.Error().Err(err).Send()
		return domain.TransactionResult{}, errorspkg.ErrInternal
	}

	return result, nil
}
