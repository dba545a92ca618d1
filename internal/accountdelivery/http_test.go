package accountdelivery

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/go-petr/bank-backoffice/internal/domain"
	"github.com/go-petr/bank-backoffice/internal/middleware"
	"github.com/go-petr/bank-backoffice/pkg/randompkg"
	"github.com/go-petr/bank-backoffice/pkg/tokenpkg"
)

var tokenMaker tokenpkg.Maker

func TestMain(m *testing.M) {
	gin.SetMode(gin.ReleaseMode)

	var err error

	tokenMaker, err = tokenpkg.NewPasetoMaker(randompkg.String(32))
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	os.Exit(m.Run())
}

func newServer(service Service) *gin.Engine {
	handler := NewHandler(service)

	router := gin.New()

	authorized := router.Group("/").Use(middleware.Auth(tokenMaker))
	authorized.POST("/accounts", handler.Provision)
	authorized.GET("/accounts/:account_number", handler.Get)

	tellerOnly := router.Group("/").Use(middleware.Auth(tokenMaker), middleware.RequireRole(domain.RoleTeller))
	tellerOnly.GET("/accounts", handler.List)
	tellerOnly.DELETE("/accounts/:id", handler.Delete)

	return router
}

func testAccount(owner uuid.UUID) domain.Account {
	return domain.Account{
		ID:            uuid.New(),
		AccountNumber: 1828537936556261376,
		Balance:       "0",
		ATMCardNumber: 1828537936556261377,
		OwnerUserID:   owner,
	}
}

func TestProvisionAPI(t *testing.T) {
	holder := domain.Actor{UserID: uuid.New(), Role: domain.RoleAccountHolder}
	teller := domain.Actor{UserID: uuid.New(), Role: domain.RoleTeller}

	account := testAccount(holder.UserID)

	testCases := []struct {
		name          string
		requestBody   gin.H
		actor         domain.Actor
		buildStubs    func(service *MockService)
		checkResponse func(recorder *httptest.ResponseRecorder)
	}{
		{
			name:        "HolderProvisionsOwnAccount",
			requestBody: gin.H{},
			actor:       holder,
			buildStubs: func(service *MockService) {
				service.EXPECT().
					Provision(gomock.Any(), gomock.Eq(holder.UserID), gomock.Eq(holder.UserID)).
					Times(1).
					Return(account, nil)
			},
			checkResponse: func(recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusOK, recorder.Code)

				var got response
				require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &got))
				require.Equal(t, account.AccountNumber, got.Data.Account.AccountNumber)
			},
		},
		{
			name:        "TellerProvisionsForOther",
			requestBody: gin.H{"owner_user_id": holder.UserID.String()},
			actor:       teller,
			buildStubs: func(service *MockService) {
				service.EXPECT().
					Provision(gomock.Any(), gomock.Eq(holder.UserID), gomock.Eq(teller.UserID)).
					Times(1).
					Return(account, nil)
			},
			checkResponse: func(recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusOK, recorder.Code)
			},
		},
		{
			name:        "HolderCannotProvisionForOther",
			requestBody: gin.H{"owner_user_id": uuid.NewString()},
			actor:       holder,
			buildStubs: func(service *MockService) {
				service.EXPECT().
					Provision(gomock.Any(), gomock.Any(), gomock.Any()).
					Times(0)
			},
			checkResponse: func(recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusForbidden, recorder.Code)
			},
		},
		{
			name:        "DuplicateAccount",
			requestBody: gin.H{},
			actor:       holder,
			buildStubs: func(service *MockService) {
				service.EXPECT().
					Provision(gomock.Any(), gomock.Any(), gomock.Any()).
					Times(1).
					Return(domain.Account{}, domain.ErrDuplicateAccount)
			},
			checkResponse: func(recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusConflict, recorder.Code)
			},
		},
		{
			name:        "OwnerNotFound",
			requestBody: gin.H{"owner_user_id": holder.UserID.String()},
			actor:       teller,
			buildStubs: func(service *MockService) {
				service.EXPECT().
					Provision(gomock.Any(), gomock.Any(), gomock.Any()).
					Times(1).
					Return(domain.Account{}, domain.ErrOwnerNotFound)
			},
			checkResponse: func(recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusBadRequest, recorder.Code)
			},
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			service := NewMockService(ctrl)
			server := newServer(service)

			tc.buildStubs(service)

			body, err := json.Marshal(tc.requestBody)
			require.NoError(t, err)

			recorder := httptest.NewRecorder()
			request, err := http.NewRequest(http.MethodPost, "/accounts", bytes.NewReader(body))
			require.NoError(t, err)

			middleware.AddAuthorization(t, request, tokenMaker,
				middleware.AuthorizationTypeBearer, tc.actor.UserID, randompkg.Owner(), tc.actor.Role, time.Minute)

			server.ServeHTTP(recorder, request)
			tc.checkResponse(recorder)
		})
	}
}

func TestGetAPI(t *testing.T) {
	holder := domain.Actor{UserID: uuid.New(), Role: domain.RoleAccountHolder}
	teller := domain.Actor{UserID: uuid.New(), Role: domain.RoleTeller}
	stranger := domain.Actor{UserID: uuid.New(), Role: domain.RoleAccountHolder}

	account := testAccount(holder.UserID)

	testCases := []struct {
		name          string
		accountNumber int64
		actor         domain.Actor
		buildStubs    func(service *MockService)
		wantCode      int
	}{
		{
			name:          "OwnerOK",
			accountNumber: account.AccountNumber,
			actor:         holder,
			buildStubs: func(service *MockService) {
				service.EXPECT().
					GetByNumber(gomock.Any(), gomock.Eq(account.AccountNumber)).
					Times(1).
					Return(account, nil)
			},
			wantCode: http.StatusOK,
		},
		{
			name:          "TellerOK",
			accountNumber: account.AccountNumber,
			actor:         teller,
			buildStubs: func(service *MockService) {
				service.EXPECT().
					GetByNumber(gomock.Any(), gomock.Eq(account.AccountNumber)).
					Times(1).
					Return(account, nil)
			},
			wantCode: http.StatusOK,
		},
		{
			name:          "StrangerUnauthorized",
			accountNumber: account.AccountNumber,
			actor:         stranger,
			buildStubs: func(service *MockService) {
				service.EXPECT().
					GetByNumber(gomock.Any(), gomock.Eq(account.AccountNumber)).
					Times(1).
					Return(account, nil)
			},
			wantCode: http.StatusUnauthorized,
		},
		{
			name:          "NotFound",
			accountNumber: 404,
			actor:         teller,
			buildStubs: func(service *MockService) {
				service.EXPECT().
					GetByNumber(gomock.Any(), gomock.Eq(int64(404))).
					Times(1).
					Return(domain.Account{}, domain.ErrAccountNotFound)
			},
			wantCode: http.StatusNotFound,
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			service := NewMockService(ctrl)
			server := newServer(service)

			tc.buildStubs(service)

			recorder := httptest.NewRecorder()
			url := fmt.Sprintf("/accounts/%d", tc.accountNumber)
			request, err := http.NewRequest(http.MethodGet, url, nil)
			require.NoError(t, err)

			middleware.AddAuthorization(t, request, tokenMaker,
				middleware.AuthorizationTypeBearer, tc.actor.UserID, randompkg.Owner(), tc.actor.Role, time.Minute)

			server.ServeHTTP(recorder, request)
			require.Equal(t, tc.wantCode, recorder.Code)
		})
	}
}

func TestListAPI(t *testing.T) {
	teller := domain.Actor{UserID: uuid.New(), Role: domain.RoleTeller}
	holder := domain.Actor{UserID: uuid.New(), Role: domain.RoleAccountHolder}

	accounts := []domain.Account{testAccount(uuid.New()), testAccount(uuid.New())}

	testCases := []struct {
		name       string
		url        string
		actor      domain.Actor
		buildStubs func(service *MockService)
		wantCode   int
	}{
		{
			name:  "TellerOK",
			url:   "/accounts?page_id=1&page_size=10",
			actor: teller,
			buildStubs: func(service *MockService) {
				service.EXPECT().
					List(gomock.Any(), gomock.Eq(int32(10)), gomock.Eq(int32(1))).
					Times(1).
					Return(accounts, nil)
			},
			wantCode: http.StatusOK,
		},
		{
			name:  "HolderForbidden",
			url:   "/accounts?page_id=1&page_size=10",
			actor: holder,
			buildStubs: func(service *MockService) {
				service.EXPECT().List(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
			},
			wantCode: http.StatusForbidden,
		},
		{
			name:  "MissingPageParams",
			url:   "/accounts",
			actor: teller,
			buildStubs: func(service *MockService) {
				service.EXPECT().List(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
			},
			wantCode: http.StatusBadRequest,
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			service := NewMockService(ctrl)
			server := newServer(service)

			tc.buildStubs(service)

			recorder := httptest.NewRecorder()
			request, err := http.NewRequest(http.MethodGet, tc.url, nil)
			require.NoError(t, err)

			middleware.AddAuthorization(t, request, tokenMaker,
				middleware.AuthorizationTypeBearer, tc.actor.UserID, randompkg.Owner(), tc.actor.Role, time.Minute)

			server.ServeHTTP(recorder, request)
			require.Equal(t, tc.wantCode, recorder.Code)
		})
	}
}

func TestDeleteAPI(t *testing.T) {
	teller := domain.Actor{UserID: uuid.New(), Role: domain.RoleTeller}
	id := uuid.New()

	testCases := []struct {
		name       string
		id         string
		buildStubs func(service *MockService)
		wantCode   int
	}{
		{
			name: "OK",
			id:   id.String(),
			buildStubs: func(service *MockService) {
				service.EXPECT().Delete(gomock.Any(), gomock.Eq(id)).Times(1).Return(nil)
			},
			wantCode: http.StatusOK,
		},
		{
			name: "NotFound",
			id:   id.String(),
			buildStubs: func(service *MockService) {
				service.EXPECT().Delete(gomock.Any(), gomock.Eq(id)).Times(1).Return(domain.ErrAccountNotFound)
			},
			wantCode: http.StatusNotFound,
		},
		{
			name: "InvalidID",
			id:   "not-a-uuid",
			buildStubs: func(service *MockService) {
				service.EXPECT().Delete(gomock.Any(), gomock.Any()).Times(0)
			},
			wantCode: http.StatusBadRequest,
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			service := NewMockService(ctrl)
			server := newServer(service)

			tc.buildStubs(service)

			recorder := httptest.NewRecorder()
			request, err := http.NewRequest(http.MethodDelete, "/accounts/"+tc.id, nil)
			require.NoError(t, err)

			middleware.AddAuthorization(t, request, tokenMaker,
				middleware.AuthorizationTypeBearer, teller.UserID, randompkg.Owner(), teller.Role, time.Minute)

			server.ServeHTTP(recorder, request)
			require.Equal(t, tc.wantCode, recorder.Code)
		})
	}
}
