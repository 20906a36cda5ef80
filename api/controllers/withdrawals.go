package controllers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/rattapoomjame/Sort/api/responses"
	"github.com/rattapoomjame/Sort/api/validators"
	"github.com/rattapoomjame/Sort/internal/users"
	"github.com/rattapoomjame/Sort/internal/withdrawals"
	"github.com/rattapoomjame/Sort/pkg/db/models"
	"github.com/rattapoomjame/Sort/pkg/enums"
	pkgerrors "github.com/rattapoomjame/Sort/pkg/errors"
	"github.com/rattapoomjame/Sort/pkg/logger"
)

type createWithdrawalRequest struct {
	Phone           string `json:"phone" validate:"required,thai_phone"`
	PointsUsed      int    `json:"points_used" validate:"required,min=1"`
	PromptPayNumber string `json:"promptpay_number" validate:"required,min=10,max=13"`
}

// CreateWithdrawal files a points-to-cash request from the kiosk.
func CreateWithdrawal(svc withdrawals.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createWithdrawalRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		withdrawal, err := svc.Request(r.Context(), withdrawals.RequestInput{
			Phone:           req.Phone,
			PointsUsed:      req.PointsUsed,
			PromptPayNumber: req.PromptPayNumber,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, withdrawal)
	}
}

type myWithdrawalsResponse struct {
	Withdrawals []models.Withdrawal `json:"withdrawals"`
	Summary     withdrawals.Summary `json:"summary"`
}

// ListMyWithdrawals returns the requesting member's withdrawal history,
// keyed by user_id or phone, optionally narrowed by status, together with
// the queue summary the kiosk screen shows.
func ListMyWithdrawals(usersSvc users.Service, svc withdrawals.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := validators.ParseQueryInt(r, "limit", 50, 1, 200)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var user *models.User
		if raw := strings.TrimSpace(r.URL.Query().Get("user_id")); raw != "" {
			id, parseErr := uuid.Parse(raw)
			if parseErr != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, parseErr, "invalid user_id"))
				return
			}
			user, err = usersSvc.Get(r.Context(), id)
		} else if phone := strings.TrimSpace(r.URL.Query().Get("phone")); phone != "" {
			user, err = usersSvc.GetByPhone(r.Context(), phone)
		} else {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "user_id or phone query parameter required"))
			return
		}
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		params := withdrawals.ListParams{UserID: user.ID, Limit: limit}
		if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
			status := enums.WithdrawalStatus(raw)
			if !status.IsValid() {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid status filter"))
				return
			}
			params.Status = status
		}

		list, err := svc.List(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		summary, err := svc.Summary(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, myWithdrawalsResponse{Withdrawals: list, Summary: summary})
	}
}

// AdminListWithdrawals returns the review queue, optionally filtered by status.
func AdminListWithdrawals(svc withdrawals.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := validators.ParseQueryInt(r, "limit", 50, 1, 200)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		offset, err := validators.ParseQueryInt(r, "offset", 0, 0, 1_000_000)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		params := withdrawals.ListParams{Limit: limit, Offset: offset}
		if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
			params.Status = enums.WithdrawalStatus(raw)
		}

		list, err := svc.List(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

// AdminWithdrawalSummary returns the review-queue header numbers.
func AdminWithdrawalSummary(svc withdrawals.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		summary, err := svc.Summary(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, summary)
	}
}

type reviewWithdrawalRequest struct {
	Status string `json:"status" validate:"required,oneof=completed rejected"`
	Note   string `json:"note" validate:"omitempty,max=500"`
}

// AdminReviewWithdrawal completes or rejects a pending request.
func AdminReviewWithdrawal(svc withdrawals.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseUUIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var req reviewWithdrawalRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		withdrawal, err := svc.Review(r.Context(), withdrawals.ReviewInput{
			ID:     id,
			Status: enums.WithdrawalStatus(req.Status),
			Note:   req.Note,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, withdrawal)
	}
}
