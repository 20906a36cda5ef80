package controllers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/rattapoomjame/Sort/api/responses"
	"github.com/rattapoomjame/Sort/api/validators"
	"github.com/rattapoomjame/Sort/internal/points"
	pkgerrors "github.com/rattapoomjame/Sort/pkg/errors"
	"github.com/rattapoomjame/Sort/pkg/logger"
)

type addPointRequest struct {
	UserID    string `json:"user_id" validate:"omitempty,uuid"`
	Phone     string `json:"phone" validate:"omitempty,thai_phone"`
	Label     string `json:"label" validate:"required,min=1,max=100"`
	Points    int    `json:"points" validate:"omitempty,min=1"`
	MachineID string `json:"machine_id" validate:"omitempty,max=64"`
}

// memberRefFromQuery resolves the member key the caller supplied: the device
// protocol sends user_id, the kiosk keypad flow sends phone.
func memberRefFromQuery(r *http.Request) (points.MemberRef, error) {
	if raw := strings.TrimSpace(r.URL.Query().Get("user_id")); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return points.MemberRef{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid user_id")
		}
		return points.MemberRef{UserID: id}, nil
	}
	if phone := strings.TrimSpace(r.URL.Query().Get("phone")); phone != "" {
		return points.MemberRef{Phone: phone}, nil
	}
	return points.MemberRef{}, pkgerrors.New(pkgerrors.CodeValidation, "user_id or phone query parameter required")
}

// AddPoint is what the sorting machine calls after accepting an item. The
// device posts user_id and its detector label; points, when present,
// overrides the pricing lookup.
func AddPoint(svc points.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req addPointRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var userID uuid.UUID
		if req.UserID != "" {
			parsed, err := uuid.Parse(req.UserID)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid user_id"))
				return
			}
			userID = parsed
		}
		if userID == uuid.Nil && req.Phone == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "user_id or phone is required"))
			return
		}

		result, err := svc.AwardDeposit(r.Context(), points.AwardInput{
			UserID:    userID,
			Phone:     req.Phone,
			ItemLabel: req.Label,
			Points:    req.Points,
			MachineID: req.MachineID,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// GetPoint returns a member's balance by user_id or phone query parameter.
func GetPoint(svc points.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ref, err := memberRefFromQuery(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		balance, err := svc.Balance(r.Context(), ref)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, balance)
	}
}

// GetHistory returns a member's deposit history, newest first.
func GetHistory(svc points.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ref, err := memberRefFromQuery(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
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

		history, err := svc.History(r.Context(), ref, limit, offset)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, history)
	}
}

// Leaderboard lists the top balances with masked phone numbers.
func Leaderboard(svc points.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := validators.ParseQueryInt(r, "limit", 10, 1, 100)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		entries, err := svc.Leaderboard(r.Context(), limit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, entries)
	}
}

// PublicStats backs the kiosk stats screen with balance aggregates.
func PublicStats(svc points.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats, err := svc.Stats(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, stats)
	}
}

type adjustPointsRequest struct {
	UserID uuid.UUID `json:"user_id" validate:"required"`
	Delta  int       `json:"delta" validate:"required"`
	Reason string    `json:"reason" validate:"required,min=1,max=500"`
}

// AdminAdjustPoints applies a signed balance correction.
func AdminAdjustPoints(svc points.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req adjustPointsRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		balance, err := svc.Adjust(r.Context(), points.AdjustInput{
			UserID: req.UserID,
			Delta:  req.Delta,
			Reason: req.Reason,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, balance)
	}
}

type setPointsRequest struct {
	Points *int `json:"points" validate:"required,min=0"`
}

// AdminSetPoints overwrites a member's balance with an absolute value.
func AdminSetPoints(svc points.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseUUIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var req setPointsRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		balance, err := svc.Set(r.Context(), id, *req.Points)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, balance)
	}
}
