// Package kycdelivery manages delivery layer of KYC documents.
package kycdelivery

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

// Service provides service layer interface needed by KYC delivery layer.
//
//go:generate mockgen -source http.go -destination http_mock.go -package kycdelivery
type Service interface {
	Submit(ctx context.Context, arg domain.CreateKycDocumentParams, actor domain.Actor) (domain.KycDocument, error)
	Get(ctx context.Context, id uuid.UUID, actor domain.Actor) (domain.KycDocument, error)
	SetApproval(ctx context.Context, id uuid.UUID, approved bool) (domain.KycDocument, error)
}

// Handler facilitates KYC delivery layer logic.
type Handler struct {
	service Service
}

// NewHandler returns KYC handler.
func NewHandler(ks Service) *Handler {
	return &Handler{service: ks}
}

type data struct {
	Document domain.KycDocument `json:"document"`
}
type response struct {
	Data data `json:"data,omitempty"`
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

type submitRequest struct {
	FatherName           string `json:"father_name" binding:"required"`
	MotherName           string `json:"mother_name" binding:"required"`
	GrandfatherName      string `json:"grandfather_name" binding:"omitempty"`
	PermanentAddress     string `json:"permanent_address" binding:"required"`
	UserImagePath        string `json:"user_image_path" binding:"omitempty"`
	CitizenshipImagePath string `json:"citizenship_image_path" binding:"omitempty"`
}

// Submit handles http request to submit KYC metadata for the acting user.
func (h *Handler) Submit(gctx *gin.Context) {
	ctx := gctx.Request.Context()

	var req submitRequest
	if err := gctx.ShouldBindJSON(&req); err != nil {
		bindingError(gctx, err)
		return
	}

	arg := domain.CreateKycDocumentParams{
		FatherName:           req.FatherName,
		MotherName:           req.MotherName,
		GrandfatherName:      req.GrandfatherName,
		PermanentAddress:     req.PermanentAddress,
		UserImagePath:        req.UserImagePath,
		CitizenshipImagePath: req.CitizenshipImagePath,
	}

	document, err := h.service.Submit(ctx, arg, middleware.Actor(gctx))
	if err != nil {
		switch err {
		case domain.ErrKycAlreadySubmitted:
			gctx.JSON(http.StatusConflict, web.Error(err))
			return
		case domain.ErrUserNotFound:
			gctx.JSON(http.StatusBadRequest, web.Error(err))
			return
		}

		gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))

		return
	}

	gctx.JSON(http.StatusOK, response{Data: data{document}})
}

type uriRequest struct {
	ID string `uri:"id" binding:"required,uuid"`
}

// Get handles http request to read a KYC document.
func (h *Handler) Get(gctx *gin.Context) {
	ctx := gctx.Request.Context()

	var req uriRequest
	if err := gctx.ShouldBindUri(&req); err != nil {
		bindingError(gctx, err)
		return
	}

	id, err := uuid.Parse(req.ID)
	if err != nil {
		gctx.JSON(http.StatusBadRequest, web.Error(err))
		return
	}

	document, err := h.service.Get(ctx, id, middleware.Actor(gctx))
	if err != nil {
		if err == domain.ErrKycDocumentNotFound {
			gctx.JSON(http.StatusNotFound, web.Error(err))
			return
		}

		gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))

		return
	}

	gctx.JSON(http.StatusOK, response{Data: data{document}})
}

type approvalRequest struct {
	Approved *bool `json:"approved" binding:"required"`
}

// SetApproval handles http request to approve or reject a KYC document.
func (h *Handler) SetApproval(gctx *gin.Context) {
	ctx := gctx.Request.Context()

	var uri uriRequest
	if err := gctx.ShouldBindUri(&uri); err != nil {
		bindingError(gctx, err)
		return
	}

	id, err := uuid.Parse(uri.ID)
	if err != nil {
		gctx.JSON(http.StatusBadRequest, web.Error(err))
		return
	}

	var req approvalRequest
	if err := gctx.ShouldBindJSON(&req); err != nil {
		bindingError(gctx, err)
		return
	}

	document, err := h.service.SetApproval(ctx, id, *req.Approved)
	if err != nil {
		if err == domain.ErrKycDocumentNotFound {
			gctx.JSON(http.StatusNotFound, web.Error(err))
			return
		}

		gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))

		return
	}

	gctx.JSON(http.StatusOK, response{Data: data{document}})
}
