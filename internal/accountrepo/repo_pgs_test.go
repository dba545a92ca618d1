package accountrepo

import (
	"context"
	"database/sql"
	"log"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/go-petr/bank-backoffice/internal/domain"
	"github.com/go-petr/bank-backoffice/internal/userrepo"
	"github.com/go-petr/bank-backoffice/pkg/configpkg"
	"github.com/go-petr/bank-backoffice/pkg/passpkg"
	"github.com/go-petr/bank-backoffice/pkg/randompkg"
)

var (
	testRepo     *RepoPGS
	testUserRepo *userrepo.RepoPGS
)

func TestMain(m *testing.M) {
	config, err := configpkg.Load("../../configs")
	if err != nil {
		log.Fatal("cannot load config:", err)
	}

	testDB, err := sql.Open(config.DBDriver, config.DBSource)
	if err != nil {
		log.Fatal("cannot connect to db:", err)
	}

	testRepo = NewRepoPGS(testDB)
	testUserRepo = userrepo.NewRepoPGS(testDB)

	os.Exit(m.Run())
}

func createRandomUser(t *testing.T) domain.User {
	hashedPassword, err := passpkg.Hash(randompkg.String(10))
	require.NoError(t, err)

	arg := domain.CreateUserParams{
		Username:       randompkg.Owner(),
		HashedPassword: hashedPassword,
		FullName:       randompkg.Owner(),
		Email:          randompkg.Email(),
		Role:           domain.RoleAccountHolder,
	}

	user, err := testUserRepo.Create(context.Background(), arg)
	require.NoError(t, err)
	require.NotEmpty(t, user)

	return user
}

func createRandomAccount(t *testing.T, user domain.User) domain.Account {
	arg := domain.CreateAccountParams{
		AccountNumber: randompkg.Intn(1 << 48),
		ATMCardNumber: randompkg.Intn(1 << 48),
		ATMCardPIN:    randompkg.PIN(4),
		OwnerUserID:   user.ID,
		Balance:       randompkg.MoneyAmountBetween(1_000, 10_000),
		CreatedBy:     user.ID,
	}

	account, err := testRepo.Create(context.Background(), arg)
	require.NoError(t, err)
	require.NotEmpty(t, account)

	require.Equal(t, arg.AccountNumber, account.AccountNumber)
	require.Equal(t, arg.Balance, account.Balance)
	require.Equal(t, arg.ATMCardNumber, account.ATMCardNumber)
	require.Equal(t, arg.ATMCardPIN, account.ATMCardPIN)
	require.Equal(t, arg.OwnerUserID, account.OwnerUserID)

	require.NotEqual(t, uuid.Nil, account.ID)
	require.NotZero(t, account.CreatedAt)

	return account
}

func TestCreate(t *testing.T) {
	user := createRandomUser(t)
	createRandomAccount(t, user)
}

func TestCreateConstraintViolations(t *testing.T) {
	user := createRandomUser(t)
	account := createRandomAccount(t, user)

	testCases := []struct {
		name          string
		arg           domain.CreateAccountParams
		checkResponse func(response domain.Account, err error)
	}{
		{
			name: "ErrOwnerNotFound",
			arg: domain.CreateAccountParams{
				AccountNumber: randompkg.Intn(1 << 48),
				ATMCardNumber: randompkg.Intn(1 << 48),
				ATMCardPIN:    randompkg.PIN(4),
				OwnerUserID:   uuid.New(),
				Balance:       "0",
				CreatedBy:     user.ID,
			},
			checkResponse: func(response domain.Account, err error) {
				require.EqualError(t, err, domain.ErrOwnerNotFound.Error())
				require.Empty(t, response)
			},
		},
		{
			name: "ErrDuplicateAccount",
			arg: domain.CreateAccountParams{
				AccountNumber: randompkg.Intn(1 << 48),
				ATMCardNumber: randompkg.Intn(1 << 48),
				ATMCardPIN:    randompkg.PIN(4),
				OwnerUserID:   user.ID,
				Balance:       "0",
				CreatedBy:     user.ID,
			},
			checkResponse: func(response domain.Account, err error) {
				require.EqualError(t, err, domain.ErrDuplicateAccount.Error())
				require.Empty(t, response)
			},
		},
		{
			name: "ErrAccountNumberTaken",
			arg: domain.CreateAccountParams{
				AccountNumber: account.AccountNumber,
				ATMCardNumber: randompkg.Intn(1 << 48),
				ATMCardPIN:    randompkg.PIN(4),
				OwnerUserID:   createRandomUser(t).ID,
				Balance:       "0",
				CreatedBy:     user.ID,
			},
			checkResponse: func(response domain.Account, err error) {
				require.EqualError(t, err, domain.ErrAccountNumberTaken.Error())
				require.Empty(t, response)
			},
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			response, err := testRepo.Create(context.Background(), tc.arg)

			tc.checkResponse(response, err)
		})
	}
}

func TestGet(t *testing.T) {
	user := createRandomUser(t)
	account := createRandomAccount(t, user)

	account2, err := testRepo.Get(context.Background(), account.ID)
	require.NoError(t, err)
	require.NotEmpty(t, account2)

	require.Equal(t, account.ID, account2.ID)
	require.Equal(t, account.AccountNumber, account2.AccountNumber)
	require.Equal(t, account.Balance, account2.Balance)
	require.Equal(t, account.OwnerUserID, account2.OwnerUserID)
	require.WithinDuration(t, account.CreatedAt, account2.CreatedAt, time.Second)

	_, err = testRepo.Get(context.Background(), uuid.New())
	require.EqualError(t, err, domain.ErrAccountNotFound.Error())
}

func TestGetByNumber(t *testing.T) {
	user := createRandomUser(t)
	account := createRandomAccount(t, user)

	account2, err := testRepo.GetByNumber(context.Background(), account.AccountNumber)
	require.NoError(t, err)
	require.Equal(t, account.ID, account2.ID)

	_, err = testRepo.GetByNumber(context.Background(), randompkg.Intn(1<<48))
	require.EqualError(t, err, domain.ErrAccountNotFound.Error())
}

func TestGetByUser(t *testing.T) {
	user := createRandomUser(t)
	account := createRandomAccount(t, user)

	account2, err := testRepo.GetByUser(context.Background(), user.ID)
	require.NoError(t, err)
	require.Equal(t, account.ID, account2.ID)

	_, err = testRepo.GetByUser(context.Background(), uuid.New())
	require.EqualError(t, err, domain.ErrAccountNotFound.Error())
}

func TestSetBalance(t *testing.T) {
	user := createRandomUser(t)
	account := createRandomAccount(t, user)

	balance, err := decimal.NewFromString(account.Balance)
	require.NoError(t, err)

	newBalance := balance.Add(decimal.NewFromInt(100)).String()

	account2, err := testRepo.SetBalance(context.Background(), account.ID, newBalance, account.Balance, user.ID)
	require.NoError(t, err)
	require.Equal(t, newBalance, account2.Balance)
	require.NotNil(t, account2.ModifiedAt)
	require.NotNil(t, account2.ModifiedBy)
	require.Equal(t, user.ID, *account2.ModifiedBy)
}

func TestSetBalanceConflict(t *testing.T) {
	user := createRandomUser(t)
	account := createRandomAccount(t, user)

	staleBalance := "0.01"

	_, err := testRepo.SetBalance(context.Background(), account.ID, "100", staleBalance, user.ID)
	require.EqualError(t, err, domain.ErrBalanceConflict.Error())

	account2, err := testRepo.Get(context.Background(), account.ID)
	require.NoError(t, err)
	require.Equal(t, account.Balance, account2.Balance)
}

func TestSetBalanceNegative(t *testing.T) {
	user := createRandomUser(t)
	account := createRandomAccount(t, user)

	_, err := testRepo.SetBalance(context.Background(), account.ID, "-1", account.Balance, user.ID)
	require.EqualError(t, err, domain.ErrInsufficientBalance.Error())
}

func TestList(t *testing.T) {
	for i := 0; i < 10; i++ {
		user := createRandomUser(t)
		createRandomAccount(t, user)
	}

	accounts, err := testRepo.List(context.Background(), 5, 0)
	require.NoError(t, err)
	require.Len(t, accounts, 5)

	for _, account := range accounts {
		require.NotEmpty(t, account)
	}
}

func TestDelete(t *testing.T) {
	user := createRandomUser(t)
	account := createRandomAccount(t, user)

	err := testRepo.Delete(context.Background(), account.ID)
	require.NoError(t, err)

	accountDeleted, err := testRepo.Get(context.Background(), account.ID)
	require.EqualError(t, err, domain.ErrAccountNotFound.Error())
	require.Empty(t, accountDeleted)
}
