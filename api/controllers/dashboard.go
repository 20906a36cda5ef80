package controllers

import (
	"net/http"
	"strings"

	"github.com/rattapoomjame/Sort/api/responses"
	"github.com/rattapoomjame/Sort/api/validators"
	"github.com/rattapoomjame/Sort/internal/activity"
	"github.com/rattapoomjame/Sort/internal/dashboard"
	"github.com/rattapoomjame/Sort/pkg/enums"
	"github.com/rattapoomjame/Sort/pkg/logger"
)

// AdminStats returns the dashboard header card.
func AdminStats(svc dashboard.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats, err := svc.Stats(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, stats)
	}
}

// AdminActivity lists the recent audit trail, optionally filtered by type.
func AdminActivity(svc activity.Service, logg *logger.Logger) http.HandlerFunc {
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

		params := activity.ListParams{Limit: limit, Offset: offset}
		if raw := strings.TrimSpace(r.URL.Query().Get("type")); raw != "" {
			params.Type = enums.ActivityType(raw)
		}

		list, err := svc.List(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

// AdminResetPoints zeroes every member balance. Meant for the danger zone
// behind a confirmation dialog, not day-to-day operation.
func AdminResetPoints(svc dashboard.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		result, err := svc.ResetAllPoints(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// AdminClearWithdrawals deletes completed withdrawal rows.
func AdminClearWithdrawals(svc dashboard.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		result, err := svc.ClearCompletedWithdrawals(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}
