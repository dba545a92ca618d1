// Package accountdelivery manages delivery layer of accounts.
package accountdelivery

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/go-petr/bank-backoffice/internal/domain"
	"github.com/go-petr/bank-backoffice/internal/middleware"
	"github.com/go-petr/bank-backoffice/pkg/errorspkg"
	"github.com/go-petr/bank-backoffice/pkg/web"
)

// Service provides service layer interface needed by account delivery layer.
//
//go:generate mockgen -source http.go -destination http_mock.go -package accountdelivery
type Service interface {
	Provision(ctx context.Context, ownerUserID, createdBy uuid.UUID) (domain.Account, error)
	GetByNumber(ctx context.Context, accountNumber int64) (domain.Account, error)
	List(ctx context.Context, pageSize, pageID int32) ([]domain.Account, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// Handler facilitates account delivery layer logic.
type Handler struct {
	service Service
}

// NewHandler returns account handler.
func NewHandler(as Service) *Handler {
	return &Handler{service: as}
}

type data struct {
	Account domain.Account `json:"account"`
}
type response struct {
	Data data `json:"data,omitempty"`
}

type provisionRequest struct {
	OwnerUserID string `json:"owner_user_id" binding:"omitempty,uuid"`
}

// Provision handles http request to open an account. Account holders open
// their own account, for example after a failed provisioning at registration;
// tellers may open an account for any user.
func (h *Handler) Provision(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var req provisionRequest
	if err := gctx.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		var (
			ve     validator.ValidationErrors
			errMsg string
		)

		if errors.As(err, &ve) {
			errMsg = web.GetErrorMsg(ve)
		}

		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.Response{Error: errMsg})

		return
	}

	actor := middleware.Actor(gctx)

	owner := actor.UserID

	if req.OwnerUserID != "" {
		requested, err := uuid.Parse(req.OwnerUserID)
		if err != nil {
			gctx.JSON(http.StatusBadRequest, web.Error(err))
			return
		}

		if requested != actor.UserID && actor.Role != domain.RoleTeller {
			gctx.JSON(http.StatusForbidden, web.Error(middleware.ErrRoleNotAllowed))
			return
		}

		owner = requested
	}

	account, err := h.service.Provision(ctx, owner, actor.UserID)
	if err != nil {
		switch err {
		case domain.ErrOwnerNotFound:
			gctx.JSON(http.StatusBadRequest, web.Error(err))
			return
		case domain.ErrDuplicateAccount:
			gctx.JSON(http.StatusConflict, web.Error(err))
			return
		case domain.ErrAccountNumberTaken:
			gctx.JSON(http.StatusConflict, web.Error(err))
			return
		}

		gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))

		return
	}

	res := response{
		Data: data{account},
	}

	gctx.JSON(http.StatusOK, res)
}

type getRequest struct {
	AccountNumber int64 `uri:"account_number" binding:"required,min=1"`
}

// Get handles http request to get an account by its account number.
func (h *Handler) Get(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var req getRequest
	if err := gctx.ShouldBindUri(&req); err != nil {
		var (
			ve     validator.ValidationErrors
			errMsg string
		)

		if errors.As(err, &ve) {
			errMsg = web.GetErrorMsg(ve)
		}

		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.Response{Error: errMsg})

		return
	}

	account, err := h.service.GetByNumber(ctx, req.AccountNumber)
	if err != nil {
		if err == domain.ErrAccountNotFound {
			gctx.JSON(http.StatusNotFound, web.Error(err))
			return
		}

		gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))

		return
	}

	actor := middleware.Actor(gctx)
	if actor.Role != domain.RoleTeller && account.OwnerUserID != actor.UserID {
		l.Warn().Int64("account_number", req.AccountNumber).Msg("account access denied")
		gctx.JSON(http.StatusUnauthorized, web.Error(domain.ErrAccountOwnerMismatch))

		return
	}

	res := response{
		Data: data{account},
	}

	gctx.JSON(http.StatusOK, res)
}

type listRequest struct {
	PageID   int32 `form:"page_id" binding:"required,min=1"`
	PageSize int32 `form:"page_size" binding:"required,min=1,max=100"`
}

type dataAccounts struct {
	Accounts []domain.Account `json:"accounts"`
}
type responseAccounts struct {
	Data dataAccounts `json:"data,omitempty"`
}

// List handles http request to list accounts.
func (h *Handler) List(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var req listRequest
	if err := gctx.ShouldBindQuery(&req); err != nil {
		var (
			ve     validator.ValidationErrors
			errMsg string
		)

		if errors.As(err, &ve) {
			errMsg = web.GetErrorMsg(ve)
		}

		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.Response{Error: errMsg})

		return
	}

	accounts, err := h.service.List(ctx, req.PageSize, req.PageID)
	if err != nil {
		gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))

		return
	}

	res := responseAccounts{
		Data: dataAccounts{accounts},
	}

	gctx.JSON(http.StatusOK, res)
}

type deleteRequest struct {
	ID string `uri:"id" binding:"required,uuid"`
}

// Delete handles http request to delete an account.
func (h *Handler) Delete(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var req deleteRequest
	if err := gctx.ShouldBindUri(&req); err != nil {
		var (
			ve     validator.ValidationErrors
			errMsg string
		)

		if errors.As(err, &ve) {
			errMsg = web.GetErrorMsg(ve)
		}

		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.Response{Error: errMsg})

		return
	}

	id, err := uuid.Parse(req.ID)
	if err != nil {
		gctx.JSON(http.StatusBadRequest, web.Error(err))
		return
	}

	if err := h.service.Delete(ctx, id); err != nil {
		if err == domain.ErrAccountNotFound {
			gctx.JSON(http.StatusNotFound, web.Error(err))
			return
		}

		gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))

		return
	}

	gctx.JSON(http.StatusOK, web.Response{})
}
