// Package middleware provides the gin middleware shared by all handlers.
package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/go-petr/bank-backoffice/internal/domain"
	"github.com/go-petr/bank-backoffice/pkg/tokenpkg"
	"github.com/go-petr/bank-backoffice/pkg/web"
)

const (
	// AuthorizationHeaderKey is the header carrying the access token.
	AuthorizationHeaderKey = "authorization"
	// AuthorizationTypeBearer is the only supported authorization scheme.
	AuthorizationTypeBearer = "bearer"
	// AuthorizationPayloadKey is the gin context key holding the verified payload.
	AuthorizationPayloadKey = "authorization_payload"
)

// ErrRoleNotAllowed indicates the caller's role does not permit the route.
var ErrRoleNotAllowed = errors.New("role is not allowed to perform this operation")

// AddAuthorization sets a freshly minted bearer token on the request.
func AddAuthorization(
	t *testing.T,
	request *http.Request,
	tokenMaker tokenpkg.Maker,
	authorizationType string,
	userID uuid.UUID,
	username string,
	role domain.Role,
	duration time.Duration,
) {
	token, _, err := tokenMaker.CreateToken(userID, username, string(role), duration)
	require.NoError(t, err)

	authorizationHeader := fmt.Sprintf("%s %s", authorizationType, token)
	request.Header.Set(AuthorizationHeaderKey, authorizationHeader)
}

// Auth verifies the bearer token and stores its payload in the gin context.
func Auth(tokenMaker tokenpkg.Maker) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		authorizationHeader := ctx.GetHeader(AuthorizationHeaderKey)
		if len(authorizationHeader) == 0 {
			err := errors.New("authorization header is not provided")
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, web.Error(err))

			return
		}

		fields := strings.Fields(authorizationHeader)
		if len(fields) < 2 {
			err := errors.New("invalid authorization header format")
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, web.Error(err))

			return
		}

		authorizationType := strings.ToLower(fields[0])
		if authorizationType != AuthorizationTypeBearer {
			err := fmt.Errorf("unsupported authorization type %s", authorizationType)
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, web.Error(err))

			return
		}

		accessToken := fields[1]

		payload, err := tokenMaker.VerifyToken(accessToken)
		if err != nil {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, web.Error(err))

			return
		}

		ctx.Set(AuthorizationPayloadKey, payload)
		ctx.Next()
	}
}

// RequireRole aborts with 403 unless the verified payload carries one of the
// given roles. Must be installed after Auth.
func RequireRole(roles ...domain.Role) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		payload := AuthPayload(ctx)

		for _, role := range roles {
			if payload.Role == string(role) {
				ctx.Next()
				return
			}
		}

		ctx.AbortWithStatusJSON(http.StatusForbidden, web.Error(ErrRoleNotAllowed))
	}
}

// AuthPayload returns the payload stored by Auth.
func AuthPayload(ctx *gin.Context) *tokenpkg.Payload {
	return ctx.MustGet(AuthorizationPayloadKey).(*tokenpkg.Payload)
}

// Actor returns the caller identity resolved from the verified payload.
func Actor(ctx *gin.Context) domain.Actor {
	payload := AuthPayload(ctx)

	return domain.Actor{
		UserID: payload.UserID,
		Role:   domain.Role(payload.Role),
	}
}
