// Package httpserver manages server creation and api routing.
package httpserver

import (
	"database/sql"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/go-petr/bank-backoffice/internal/accountdelivery"
	"github.com/go-petr/bank-backoffice/internal/accountrepo"
	"github.com/go-petr/bank-backoffice/internal/accountservice"
	"github.com/go-petr/bank-backoffice/internal/domain"
	"github.com/go-petr/bank-backoffice/internal/kycdelivery"
	"github.com/go-petr/bank-backoffice/internal/kycrepo"
	"github.com/go-petr/bank-backoffice/internal/kycservice"
	"github.com/go-petr/bank-backoffice/internal/ledgerservice"
	"github.com/go-petr/bank-backoffice/internal/middleware"
	"github.com/go-petr/bank-backoffice/internal/sessiondelivery"
	"github.com/go-petr/bank-backoffice/internal/sessionrepo"
	"github.com/go-petr/bank-backoffice/internal/sessionservice"
	"github.com/go-petr/bank-backoffice/internal/transactiondelivery"
	"github.com/go-petr/bank-backoffice/internal/transactionrepo"
	"github.com/go-petr/bank-backoffice/internal/userdelivery"
	"github.com/go-petr/bank-backoffice/internal/userrepo"
	"github.com/go-petr/bank-backoffice/internal/userservice"
	"github.com/go-petr/bank-backoffice/pkg/configpkg"
	"github.com/go-petr/bank-backoffice/pkg/idpkg"
	"github.com/go-petr/bank-backoffice/pkg/tokenpkg"
)

// idempotencyTTL bounds how long a finished mutating response is replayable.
const idempotencyTTL = 24 * time.Hour

// maxConcurrentRequests bounds in-flight requests across all routes.
const maxConcurrentRequests = 256

// Server holds db connection, handlers router and configuration.
type Server struct {
	DB     *sql.DB
	Engine *gin.Engine
	Config configpkg.Config
}

// ServeHTTP implements the http.Handler interface for the Server type.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Engine.ServeHTTP(w, r)
}

// New creates Server type with instantiated domains and routes.
func New(conn *sql.DB, logger zerolog.Logger, config configpkg.Config) (*Server, error) {
	userRepo := userrepo.NewRepoPGS(conn)
	accountRepo := accountrepo.NewRepoPGS(conn)
	transactionRepo := transactionrepo.NewRepoPGS(conn)
	sessionRepo := sessionrepo.NewRepoPGS(conn)
	kycRepo := kycrepo.NewRepoPGS(conn)

	tokenMaker, err := tokenpkg.NewPasetoMaker(config.TokenSymmetricKey)
	if err != nil {
		return nil, errors.New("cannot create token maker")
	}

	numbers, err := idpkg.NewGenerator(config.SnowflakeNode)
	if err != nil {
		return nil, errors.New("cannot create number generator")
	}

	accountService := accountservice.New(accountRepo, numbers)
	userService := userservice.New(userRepo, accountService)
	ledgerService := ledgerservice.New(transactionRepo, accountRepo)
	kycService := kycservice.New(kycRepo)

	sessionService, err := sessionservice.New(sessionRepo, config, tokenMaker)
	if err != nil {
		return nil, errors.New("cannot initialize session service")
	}

	userHandler := userdelivery.NewHandler(userService, sessionService)
	accountHandler := accountdelivery.NewHandler(accountService)
	transactionHandler := transactiondelivery.NewHandler(ledgerService)
	sessionHandler := sessiondelivery.NewHandler(sessionService)
	kycHandler := kycdelivery.NewHandler(kycService)

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	engine.Use(middleware.RequestLogger(logger))
	engine.Use(gin.Recovery())
	engine.Use(middleware.Throttle(maxConcurrentRequests))

	engine.POST("/users", userHandler.Register)
	engine.POST("/users/login", userHandler.Login)
	engine.POST("/sessions/renew", sessionHandler.RenewAccessToken)

	authRoutes := engine.Group("/").Use(middleware.Auth(tokenMaker))

	authRoutes.POST("/accounts", accountHandler.Provision)
	authRoutes.GET("/accounts/:account_number", accountHandler.Get)
	authRoutes.GET("/accounts/:account_number/transactions", transactionHandler.List)
	authRoutes.GET("/accounts/:account_number/statement", transactionHandler.Statement)

	authRoutes.POST("/kyc", kycHandler.Submit)
	authRoutes.GET("/kyc/:id", kycHandler.Get)

	mutating := engine.Group("/").Use(middleware.Auth(tokenMaker))
	if config.RedisAddress != "" {
		idempotencyStore := middleware.NewRedisStore(config.RedisAddress)
		mutating = engine.Group("/").Use(
			middleware.Auth(tokenMaker),
			middleware.Idempotency(idempotencyStore, idempotencyTTL),
		)
	}

	mutating.POST("/transactions/deposit", transactionHandler.Deposit)
	mutating.POST("/transactions/withdraw", transactionHandler.Withdraw)

	tellerRoutes := engine.Group("/").Use(
		middleware.Auth(tokenMaker),
		middleware.RequireRole(domain.RoleTeller),
	)

	tellerRoutes.GET("/accounts", accountHandler.List)
	tellerRoutes.DELETE("/accounts/:id", accountHandler.Delete)
	tellerRoutes.PATCH("/kyc/:id/approval", kycHandler.SetApproval)

	server := &Server{
		DB:     conn,
		Engine: engine,
		Config: config,
	}

	return server, nil
}
