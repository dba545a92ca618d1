// Package kycservice manages business logic layer of KYC documents.
package kycservice

import (
	"context"

	"github.com/google/uuid"

	"github.com/go-petr/bank-backoffice/internal/domain"
)

// Repo provides data access layer interface needed by KYC service layer.
//
//go:generate mockgen -source service.go -destination service_mock.go -package kycservice
type Repo interface {
	Create(ctx context.Context, arg domain.CreateKycDocumentParams) (domain.KycDocument, error)
	Get(ctx context.Context, id uuid.UUID) (domain.KycDocument, error)
	GetByUser(ctx context.Context, userID uuid.UUID) (domain.KycDocument, error)
	SetApproval(ctx context.Context, id uuid.UUID, approved bool) (domain.KycDocument, error)
}

// Service facilitates KYC service layer logic.
type Service struct {
	repo Repo
}

// New returns KYC service struct to manage KYC document business logic.
func New(kr Repo) *Service {
	return &Service{
		repo: kr,
	}
}

// Submit stores the document metadata for the acting user. A user may have
// at most one document on file.
func (s *Service) Submit(ctx context.Context, arg domain.CreateKycDocumentParams, actor domain.Actor) (domain.KycDocument, error) {
	arg.UserID = actor.UserID

	return s.repo.Create(ctx, arg)
}

// Get returns the document with the given id. Account holders may only read
// their own document; tellers may read any.
func (s *Service) Get(ctx context.Context, id uuid.UUID, actor domain.Actor) (domain.KycDocument, error) {
	d, err := s.repo.Get(ctx, id)
	if err != nil {
		return d, err
	}

	if actor.Role != domain.RoleTeller && d.UserID != actor.UserID {
		return domain.KycDocument{}, domain.ErrKycDocumentNotFound
	}

	return d, nil
}

// GetByUser returns the document submitted by the given user.
func (s *Service) GetByUser(ctx context.Context, userID uuid.UUID) (domain.KycDocument, error) {
	return s.repo.GetByUser(ctx, userID)
}

// SetApproval marks the document approved or rejected.
func (s *Service) SetApproval(ctx context.Context, id uuid.UUID, approved bool) (domain.KycDocument, error) {
	return s.repo.SetApproval(ctx, id, approved)
}
