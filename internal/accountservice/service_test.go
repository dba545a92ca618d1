package accountservice

import (
	"context"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/go-petr/bank-backoffice/internal/domain"
	"github.com/go-petr/bank-backoffice/pkg/errorspkg"
)

const (
	testAccountNumber = int64(1828537936556261376)
	testCardNumber    = int64(1828537936556261377)
)

func requireValidPIN(t *testing.T, pin string) {
	t.Helper()

	require.Len(t, pin, pinLength)

	for _, r := range pin {
		require.True(t, r >= '0' && r <= '9', "pin %q contains non-digit %q", pin, r)
	}
}

func TestProvision(t *testing.T) {
	owner := uuid.New()
	createdBy := uuid.New()

	created := domain.Account{
		ID:            uuid.New(),
		AccountNumber: testAccountNumber,
		Balance:       "0",
		ATMCardNumber: testCardNumber,
		OwnerUserID:   owner,
		CreatedAt:     time.Now().Truncate(time.Second).UTC(),
		CreatedBy:     createdBy,
	}

	testCases := []struct {
		name          string
		buildStubs    func(t *testing.T, repo *MockRepo, numbers *MockNumberGenerator)
		checkResponse func(res domain.Account, err error)
	}{
		{
			name: "User already has an account",
			buildStubs: func(t *testing.T, repo *MockRepo, numbers *MockNumberGenerator) {
				repo.EXPECT().GetByUser(gomock.Any(), gomock.Eq(owner)).
					Times(1).
					Return(created, nil)
				repo.EXPECT().Create(gomock.Any(), gomock.Any()).Times(0)
			},
			checkResponse: func(res domain.Account, err error) {
				require.Empty(t, res)
				require.EqualError(t, err, domain.ErrDuplicateAccount.Error())
			},
		},
		{
			name: "Duplicate check fails",
			buildStubs: func(t *testing.T, repo *MockRepo, numbers *MockNumberGenerator) {
				repo.EXPECT().GetByUser(gomock.Any(), gomock.Eq(owner)).
					Times(1).
					Return(domain.Account{}, errorspkg.ErrInternal)
				repo.EXPECT().Create(gomock.Any(), gomock.Any()).Times(0)
			},
			checkResponse: func(res domain.Account, err error) {
				require.Empty(t, res)
				require.EqualError(t, err, errorspkg.ErrInternal.Error())
			},
		},
		{
			name: "OK",
			buildStubs: func(t *testing.T, repo *MockRepo, numbers *MockNumberGenerator) {
				repo.EXPECT().GetByUser(gomock.Any(), gomock.Eq(owner)).
					Times(1).
					Return(domain.Account{}, domain.ErrAccountNotFound)
				numbers.EXPECT().AccountNumber().Times(1).Return(testAccountNumber)
				numbers.EXPECT().CardNumber().Times(1).Return(testCardNumber)
				repo.EXPECT().Create(gomock.Any(), gomock.Any()).
					Times(1).
					DoAndReturn(func(_ context.Context, arg domain.CreateAccountParams) (domain.Account, error) {
						require.Equal(t, testAccountNumber, arg.AccountNumber)
						require.Equal(t, testCardNumber, arg.ATMCardNumber)
						require.Equal(t, "0", arg.Balance)
						require.Equal(t, owner, arg.OwnerUserID)
						require.Equal(t, createdBy, arg.CreatedBy)
						requireValidPIN(t, arg.ATMCardPIN)

						return created, nil
					})
			},
			checkResponse: func(res domain.Account, err error) {
				require.NoError(t, err)
				require.Equal(t, created, res)
			},
		},
		{
			name: "Number collision triggers regeneration",
			buildStubs: func(t *testing.T, repo *MockRepo, numbers *MockNumberGenerator) {
				repo.EXPECT().GetByUser(gomock.Any(), gomock.Eq(owner)).
					Times(1).
					Return(domain.Account{}, domain.ErrAccountNotFound)
				numbers.EXPECT().AccountNumber().Times(2).Return(testAccountNumber)
				numbers.EXPECT().CardNumber().Times(2).Return(testCardNumber)
				first := repo.EXPECT().Create(gomock.Any(), gomock.Any()).
					Times(1).
					Return(domain.Account{}, domain.ErrAccountNumberTaken)
				repo.EXPECT().Create(gomock.Any(), gomock.Any()).
					Times(1).
					After(first).
					Return(created, nil)
			},
			checkResponse: func(res domain.Account, err error) {
				require.NoError(t, err)
				require.Equal(t, created, res)
			},
		},
		{
			name: "Collision budget exhausted",
			buildStubs: func(t *testing.T, repo *MockRepo, numbers *MockNumberGenerator) {
				repo.EXPECT().GetByUser(gomock.Any(), gomock.Eq(owner)).
					Times(1).
					Return(domain.Account{}, domain.ErrAccountNotFound)
				numbers.EXPECT().AccountNumber().Times(maxNumberAttempts).Return(testAccountNumber)
				numbers.EXPECT().CardNumber().Times(maxNumberAttempts).Return(testCardNumber)
				repo.EXPECT().Create(gomock.Any(), gomock.Any()).
					Times(maxNumberAttempts).
					Return(domain.Account{}, domain.ErrAccountNumberTaken)
			},
			checkResponse: func(res domain.Account, err error) {
				require.Empty(t, res)
				require.EqualError(t, err, domain.ErrAccountNumberTaken.Error())
			},
		},
		{
			name: "Owner vanished before insert",
			buildStubs: func(t *testing.T, repo *MockRepo, numbers *MockNumberGenerator) {
				repo.EXPECT().GetByUser(gomock.Any(), gomock.Eq(owner)).
					Times(1).
					Return(domain.Account{}, domain.ErrAccountNotFound)
				numbers.EXPECT().AccountNumber().Times(1).Return(testAccountNumber)
				numbers.EXPECT().CardNumber().Times(1).Return(testCardNumber)
				repo.EXPECT().Create(gomock.Any(), gomock.Any()).
					Times(1).
					Return(domain.Account{}, domain.ErrOwnerNotFound)
			},
			checkResponse: func(res domain.Account, err error) {
				require.Empty(t, res)
				require.EqualError(t, err, domain.ErrOwnerNotFound.Error())
			},
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := NewMockRepo(ctrl)
			numbers := NewMockNumberGenerator(ctrl)
			service := New(repo, numbers)

			tc.buildStubs(t, repo, numbers)

			tc.checkResponse(service.Provision(context.Background(), owner, createdBy))
		})
	}
}

func TestList(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := NewMockRepo(ctrl)
	numbers := NewMockNumberGenerator(ctrl)
	service := New(repo, numbers)

	accounts := []domain.Account{
		{ID: uuid.New(), AccountNumber: testAccountNumber},
		{ID: uuid.New(), AccountNumber: testAccountNumber + 1},
	}

	repo.EXPECT().List(gomock.Any(), gomock.Eq(int32(10)), gomock.Eq(int32(20))).
		Times(1).
		Return(accounts, nil)

	res, err := service.List(context.Background(), 10, 3)
	require.NoError(t, err)
	require.Equal(t, accounts, res)
}

func TestDelete(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := NewMockRepo(ctrl)
	numbers := NewMockNumberGenerator(ctrl)
	service := New(repo, numbers)

	id := uuid.New()

	repo.EXPECT().Delete(gomock.Any(), gomock.Eq(id)).Times(1).Return(nil)
	require.NoError(t, service.Delete(context.Background(), id))

	repo.EXPECT().Delete(gomock.Any(), gomock.Eq(id)).Times(1).Return(domain.ErrAccountNotFound)
	require.EqualError(t, service.Delete(context.Background(), id), domain.ErrAccountNotFound.Error())
}
