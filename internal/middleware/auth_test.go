package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/go-petr/bank-backoffice/internal/domain"
	"github.com/go-petr/bank-backoffice/pkg/randompkg"
	"github.com/go-petr/bank-backoffice/pkg/tokenpkg"
)

func TestAuth(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tokenMaker, err := tokenpkg.NewPasetoMaker(randompkg.String(32))
	require.NoError(t, err)

	userID := uuid.New()
	username := randompkg.Owner()

	testCases := []struct {
		name          string
		setupAuth     func(t *testing.T, request *http.Request, tokenMaker tokenpkg.Maker)
		checkResponse func(t *testing.T, recorder *httptest.ResponseRecorder)
	}{
		{
			name: "OK",
			setupAuth: func(t *testing.T, request *http.Request, tokenMaker tokenpkg.Maker) {
				AddAuthorization(t, request, tokenMaker,
					AuthorizationTypeBearer, userID, username, domain.RoleAccountHolder, time.Minute)
			},
			checkResponse: func(t *testing.T, recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusOK, recorder.Code)
			},
		},
		{
			name:      "NoAuthorization",
			setupAuth: func(t *testing.T, request *http.Request, tokenMaker tokenpkg.Maker) {},
			checkResponse: func(t *testing.T, recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusUnauthorized, recorder.Code)
			},
		},
		{
			name: "UnsupportedAuthorization",
			setupAuth: func(t *testing.T, request *http.Request, tokenMaker tokenpkg.Maker) {
				AddAuthorization(t, request, tokenMaker,
					"unsupported", userID, username, domain.RoleAccountHolder, time.Minute)
			},
			checkResponse: func(t *testing.T, recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusUnauthorized, recorder.Code)
			},
		},
		{
			name: "InvalidAuthorizationFormat",
			setupAuth: func(t *testing.T, request *http.Request, tokenMaker tokenpkg.Maker) {
				AddAuthorization(t, request, tokenMaker,
					"", userID, username, domain.RoleAccountHolder, time.Minute)
			},
			checkResponse: func(t *testing.T, recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusUnauthorized, recorder.Code)
			},
		},
		{
			name: "ExpiredToken",
			setupAuth: func(t *testing.T, request *http.Request, tokenMaker tokenpkg.Maker) {
				AddAuthorization(t, request, tokenMaker,
					AuthorizationTypeBearer, userID, username, domain.RoleAccountHolder, -time.Minute)
			},
			checkResponse: func(t *testing.T, recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusUnauthorized, recorder.Code)
			},
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			router := gin.New()
			router.GET("/auth", Auth(tokenMaker), func(ctx *gin.Context) {
				actor := Actor(ctx)
				require.Equal(t, userID, actor.UserID)
				require.Equal(t, domain.RoleAccountHolder, actor.Role)
				ctx.JSON(http.StatusOK, gin.H{})
			})

			recorder := httptest.NewRecorder()
			request, err := http.NewRequest(http.MethodGet, "/auth", nil)
			require.NoError(t, err)

			tc.setupAuth(t, request, tokenMaker)
			router.ServeHTTP(recorder, request)
			tc.checkResponse(t, recorder)
		})
	}
}

func TestRequireRole(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tokenMaker, err := tokenpkg.NewPasetoMaker(randompkg.String(32))
	require.NoError(t, err)

	router := gin.New()
	router.GET("/teller-only",
		Auth(tokenMaker),
		RequireRole(domain.RoleTeller),
		func(ctx *gin.Context) { ctx.JSON(http.StatusOK, gin.H{}) },
	)

	testCases := []struct {
		name     string
		role     domain.Role
		wantCode int
	}{
		{name: "TellerAllowed", role: domain.RoleTeller, wantCode: http.StatusOK},
		{name: "AccountHolderForbidden", role: domain.RoleAccountHolder, wantCode: http.StatusForbidden},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			recorder := httptest.NewRecorder()
			request, err := http.NewRequest(http.MethodGet, "/teller-only", nil)
			require.NoError(t, err)

			AddAuthorization(t, request, tokenMaker,
				AuthorizationTypeBearer, uuid.New(), randompkg.Owner(), tc.role, time.Minute)

			router.ServeHTTP(recorder, request)
			require.Equal(t, tc.wantCode, recorder.Code)
		})
	}
}
