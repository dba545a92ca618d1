// Package transactiondelivery manages delivery layer of deposits, withdrawals
// and transaction history.
package transactiondelivery

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/go-petr/bank-backoffice/internal/domain"
	"github.com/go-petr/bank-backoffice/internal/middleware"
	"github.com/go-petr/bank-backoffice/pkg/errorspkg"
	"github.com/go-petr/bank-backoffice/pkg/web"
)

// Service provides service layer interface needed by transaction delivery layer.
//
//go:generate mockgen -source http.go -destination http_mock.go -package transactiondelivery
type Service interface {
	Deposit(ctx context.Context, accountNumber int64, amount string, actor domain.Actor, remarks string) (domain.TransactionResult, error)
	Withdraw(ctx context.Context, accountNumber int64, amount, pin, remarks string) (domain.TransactionResult, error)
	ListTransactions(ctx context.Context, accountNumber int64, actor domain.Actor) ([]domain.Transaction, error)
	Statement(ctx context.Context, w io.Writer, accountNumber int64, actor domain.Actor) error
}

// Handler facilitates transaction delivery layer logic.
type Handler struct {
	service Service
}

// NewHandler returns transaction handler.
func NewHandler(ts Service) *Handler {
	return &Handler{service: ts}
}

type result struct {
	Transaction domain.Transaction `json:"transaction"`
	Account     domain.Account     `json:"account"`
}
type response struct {
	Data result `json:"data,omitempty"`
}

func bindingError(gctx *gin.Context, err error) {
	l := zerolog.Ctx(gctx.Request.Context())
	l.Info().Err(err).Send()

	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		gctx.JSON(http.StatusBadRequest, web.Response{Error: web.GetErrorMsg(ve)})

		return
	}

	gctx.JSON(http.StatusBadRequest, web.Error(err))
}

func writeTransactionError(gctx *gin.Context, err error) {
	switch err {
	case domain.ErrInvalidAmount, domain.ErrNonPositiveAmount, domain.ErrInsufficientBalance:
		gctx.JSON(http.StatusBadRequest, web.Error(err))
	case domain.ErrWrongPIN:
		gctx.JSON(http.StatusUnauthorized, web.Error(err))
	case domain.ErrDepositRequiresTeller:
		gctx.JSON(http.StatusForbidden, web.Error(err))
	case domain.ErrAccountNotFound:
		gctx.JSON(http.StatusNotFound, web.Error(err))
	case domain.ErrTooMuchContention:
		gctx.JSON(http.StatusConflict, web.Error(err))
	default:
		gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))
	}
}

type depositRequest struct {
	AccountNumber int64  `json:"account_number" binding:"required,min=1"`
	Amount        string `json:"amount" binding:"required"`
	Remarks       string `json:"remarks" binding:"omitempty,max=150"`
}

// Deposit handles http request to credit an account. The teller role is
// enforced in the service layer against the authenticated actor.
func (h *Handler) Deposit(gctx *gin.Context) {
	ctx := gctx.Request.Context()

	var req depositRequest
	if err := gctx.ShouldBindJSON(&req); err != nil {
		bindingError(gctx, err)
		return
	}

	res, err := h.service.Deposit(ctx, req.AccountNumber, req.Amount, middleware.Actor(gctx), req.Remarks)
	if err != nil {
		writeTransactionError(gctx, err)
		return
	}

	gctx.JSON(http.StatusOK, response{Data: result{res.Transaction, res.Account}})
}

type withdrawRequest struct {
	AccountNumber int64  `json:"account_number" binding:"required,min=1"`
	Amount        string `json:"amount" binding:"required"`
	PIN           string `json:"pin" binding:"required,len=4,numeric"`
	Remarks       string `json:"remarks" binding:"omitempty,max=150"`
}

// Withdraw handles http request to debit an account. The ATM card PIN is the
// withdrawal credential regardless of the caller's role.
func (h *Handler) Withdraw(gctx *gin.Context) {
	ctx := gctx.Request.Context()

	var req withdrawRequest
	if err := gctx.ShouldBindJSON(&req); err != nil {
		bindingError(gctx, err)
		return
	}

	res, err := h.service.Withdraw(ctx, req.AccountNumber, req.Amount, req.PIN, req.Remarks)
	if err != nil {
		writeTransactionError(gctx, err)
		return
	}

	gctx.JSON(http.StatusOK, response{Data: result{res.Transaction, res.Account}})
}

type historyRequest struct {
	AccountNumber int64 `uri:"account_number" binding:"required,min=1"`
}

type dataTransactions struct {
	Transactions []domain.Transaction `json:"transactions"`
}
type responseTransactions struct {
	Data dataTransactions `json:"data,omitempty"`
}

// List handles http request to read an account's transaction history.
func (h *Handler) List(gctx *gin.Context) {
	ctx := gctx.Request.Context()

	var req historyRequest
	if err := gctx.ShouldBindUri(&req); err != nil {
		bindingError(gctx, err)
		return
	}

	transactions, err := h.service.ListTransactions(ctx, req.AccountNumber, middleware.Actor(gctx))
	if err != nil {
		switch err {
		case domain.ErrAccountNotFound:
			gctx.JSON(http.StatusNotFound, web.Error(err))
		case domain.ErrAccountOwnerMismatch:
			gctx.JSON(http.StatusUnauthorized, web.Error(err))
		default:
			gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))
		}

		return
	}

	gctx.JSON(http.StatusOK, responseTransactions{Data: dataTransactions{transactions}})
}

// Statement handles http request to download an account statement as PDF.
func (h *Handler) Statement(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var req historyRequest
	if err := gctx.ShouldBindUri(&req); err != nil {
		bindingError(gctx, err)
		return
	}

	var buf bytes.Buffer

	err := h.service.Statement(ctx, &buf, req.AccountNumber, middleware.Actor(gctx))
	if err != nil {
		switch err {
		case domain.ErrAccountNotFound:
			gctx.JSON(http.StatusNotFound, web.Error(err))
		case domain.ErrAccountOwnerMismatch:
			gctx.JSON(http.StatusUnauthorized, web.Error(err))
		default:
			l.Error().Err(err).Send()
			gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))
		}

		return
	}

	filename := fmt.Sprintf("statement-%d.pdf", req.AccountNumber)

	gctx.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	gctx.Data(http.StatusOK, "application/pdf", buf.Bytes())
}
