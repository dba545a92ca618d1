// Package userservice manages business logic layer of users.
package userservice

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/go-petr/bank-backoffice/internal/domain"
	"github.com/go-petr/bank-backoffice/pkg/errorspkg"
	"github.com/go-petr/bank-backoffice/pkg/passpkg"
)

// Repo provides data access layer interface needed by user service layer.
//
//go:generate mockgen -source service.go -destination service_mock.go -package userservice
type Repo interface {
	Create(ctx context.Context, arg domain.CreateUserParams) (domain.User, error)
	Get(ctx context.Context, username string) (domain.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (domain.User, error)
}

// Provisioner opens the account an account holder gets at registration.
type Provisioner interface {
	Provision(ctx context.Context, ownerUserID, createdBy uuid.UUID) (domain.Account, error)
}

// Service facilitates user service layer logic.
type Service struct {
	repo     Repo
	accounts Provisioner
}

// New returns user service struct to manage user business logic.
func New(ur Repo, ap Provisioner) *Service {
	return &Service{
		repo:     ur,
		accounts: ap,
	}
}

// NewUserWithoutPassword returns user with removed sensitive data.
func NewUserWithoutPassword(u domain.User) domain.UserWithoutPassword {
	return domain.UserWithoutPassword{
		ID:        u.ID,
		Username:  u.Username,
		FullName:  u.FullName,
		Email:     u.Email,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
	}
}

// Register creates the user and, for account holders, provisions their
// account in the same call. If the user is created but provisioning fails,
// the user record is kept and domain.ErrAccountNotProvisioned is returned
// alongside the created user so the caller can retry provisioning alone.
func (s *Service) Register(ctx context.Context, username, password, fullname, email string, role domain.Role) (domain.RegisterResult, error) {
	l := zerolog.Ctx(ctx)

	var result domain.RegisterResult

	if !domain.ValidRole(role) {
		return result, domain.ErrUnknownRole
	}

	hashedPassword, err := passpkg.Hash(password)
	if err != nil {
		l.Error().Err(err).Send()
		return result, errorspkg.ErrInternal
	}

	arg := domain.CreateUserParams{
		Username:       username,
		HashedPassword: hashedPassword,
		FullName:       fullname,
		Email:          email,
		Role:           role,
	}

	gotUser, err := s.repo.Create(ctx, arg)
	if err != nil {
		return result, err
	}

	result.User = NewUserWithoutPassword(gotUser)

	if role != domain.RoleAccountHolder {
		return result, nil
	}

	account, err := s.accounts.Provision(ctx, gotUser.ID, gotUser.ID)
	if err != nil {
		l.Error().Err(err).Str("username", username).Msg("account provisioning failed after user creation")

		return result, domain.ErrAccountNotProvisioned
	}

	result.Account = &account

	return result, nil
}

// CheckPassword checks if the password is valid for the given username.
func (s *Service) CheckPassword(ctx context.Context, username, pass string) (domain.UserWithoutPassword, error) {
	l := zerolog.Ctx(ctx)

	var response domain.UserWithoutPassword

	gotUser, err := s.repo.Get(ctx, username)
	if err != nil {
		return response, err
	}

	err = passpkg.Check(pass, gotUser.HashedPassword)
	if err != nil {
		l.Warn().Err(err).Send()
		return response, domain.ErrWrongPassword
	}

	response = NewUserWithoutPassword(gotUser)

	return response, nil
}

// Get returns the user with the given id, without password data.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (domain.UserWithoutPassword, error) {
	gotUser, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return domain.UserWithoutPassword{}, err
	}

	return NewUserWithoutPassword(gotUser), nil
}
