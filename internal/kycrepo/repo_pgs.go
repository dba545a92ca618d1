// Package kycrepo manages repository layer of KYC documents.
package kycrepo

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

// RepoPGS facilitates KYC document repository layer logic.
type RepoPGS struct {
	db dbpkg.SQLInterface
}

// NewRepoPGS returns KYC document RepoPGS.
func NewRepoPGS(db dbpkg.SQLInterface) *RepoPGS {
	return &RepoPGS{
		db: db,
	}
}

const allColumns = `
	id, user_id, father_name, mother_name, grandfather_name,
	permanent_address, user_image_path, citizenship_image_path, is_approved, uploaded_at
`

func scanDocument(row *sql.Row) (domain.KycDocument, error) {
	var d domain.KycDocument

	err := row.Scan(
		&d.ID,
		&d.UserID,
		&d.FatherName,
		&d.MotherName,
		&d.GrandfatherName,
		&d.PermanentAddress,
		&d.UserImagePath,
		&d.CitizenshipImagePath,
		&d.IsApproved,
		&d.UploadedAt,
	)

	return d, err
}

const createQuery = `
INSERT INTO kyc_documents (
	user_id, father_name, mother_name, grandfather_name,
	permanent_address, user_image_path, citizenship_image_path
) VALUES (
	$1, $2, $3, $4, $5, $6, $7
) RETURNING` + allColumns

// Create stores the KYC document metadata and then returns it.
func (r *RepoPGS) Create(ctx context.Context, arg domain.CreateKycDocumentParams) (domain.KycDocument, error) {
	l := zerolog.Ctx(ctx)

	row := r.db.QueryRowContext(ctx, createQuery,
		arg.UserID,
		arg.FatherName,
		arg.MotherName,
		arg.GrandfatherName,
		arg.PermanentAddress,
		arg.UserImagePath,
		arg.CitizenshipImagePath,
	)

	d, err := scanDocument(row)
	if err != nil {
		l.Error().Err(err).Send()

		if pqErr, ok := err.(*pq.Error); ok {
			switch pqErr.Constraint {
			case "kyc_documents_user_id_key":
				return d, domain.ErrKycAlreadySubmitted
			case "kyc_documents_user_id_fkey":
				return d, domain.ErrUserNotFound
			}
		}

		return d, errorspkg.ErrInternal
	}

	return d, nil
}

const getQuery = `
SELECT` + allColumns + `
FROM kyc_documents
WHERE id = $1
`

// Get returns the KYC document with the given id.
func (r *RepoPGS) Get(ctx context.Context, id uuid.UUID) (domain.KycDocument, error) {
	l := zerolog.Ctx(ctx)

	d, err := scanDocument(r.db.QueryRowContext(ctx, getQuery, id))
	if err != nil {
		l.Error().Err(err).Send()

		if err == sql.ErrNoRows {
			return d, domain.ErrKycDocumentNotFound
		}

		return d, errorspkg.ErrInternal
	}

	return d, nil
}

const getByUserQuery = `
SELECT` + allColumns + `
FROM kyc_documents
WHERE user_id = $1
`

// GetByUser returns the KYC document submitted by the given user.
func (r *RepoPGS) GetByUser(ctx context.Context, userID uuid.UUID) (domain.KycDocument, error) {
	l := zerolog.Ctx(ctx)

	d, err := scanDocument(r.db.QueryRowContext(ctx, getByUserQuery, userID))
	if err != nil {
		if err == sql.ErrNoRows {
			return d, domain.ErrKycDocumentNotFound
		}

		l.Error().Err(err).Send()

		return d, errorspkg.ErrInternal
	}

	return d, nil
}

const setApprovalQuery = `
UPDATE kyc_documents
SET is_approved = $1
WHERE id = $2
RETURNING` + allColumns

// SetApproval marks the document approved or rejected and returns it.
func (r *RepoPGS) SetApproval(ctx context.Context, id uuid.UUID, approved bool) (domain.KycDocument, error) {
	l := zerolog.Ctx(ctx)

	d, err := scanDocument(r.db.QueryRowContext(ctx, setApprovalQuery, approved, id))
	if err != nil {
		l.Error().Err(err).Send()

		if err == sql.ErrNoRows {
			return d, domain.ErrKycDocumentNotFound
		}

		return d, errorspkg.ErrInternal
	}

	return d, nil
}
