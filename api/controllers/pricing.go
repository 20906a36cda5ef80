package controllers

import (
	"net/http"

	"github.com/rattapoomjame/Sort/api/responses"
	"github.com/rattapoomjame/Sort/api/validators"
	"github.com/rattapoomjame/Sort/internal/settings"
	dbtypes "github.com/rattapoomjame/Sort/pkg/db/types"
	"github.com/rattapoomjame/Sort/pkg/logger"
)

type pricingResponse struct {
	Pricing             dbtypes.Pricing `json:"pricing"`
	PointsPerBaht       int             `json:"points_per_baht"`
	MinWithdrawalPoints int             `json:"min_withdrawal_points"`
}

// GetPricing returns the current item pricing and conversion rate. The kiosk
// shows this on its info screen, so the route is public.
func GetPricing(svc settings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		setting, err := svc.Get(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, pricingResponse{
			Pricing:             setting.Pricing,
			PointsPerBaht:       setting.PointsPerBaht,
			MinWithdrawalPoints: setting.MinWithdrawalPoints,
		})
	}
}

type updatePricingRequest struct {
	Glass               int `json:"glass" validate:"required,min=1"`
	Plastic             int `json:"plastic" validate:"required,min=1"`
	Can                 int `json:"can" validate:"required,min=1"`
	PointsPerBaht       int `json:"points_per_baht" validate:"required,min=1"`
	MinWithdrawalPoints int `json:"min_withdrawal_points" validate:"required,min=1"`
}

// AdminUpdatePricing replaces the settings row wholesale.
func AdminUpdatePricing(svc settings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req updatePricingRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		setting, err := svc.Update(r.Context(), settings.UpdateInput{
			Pricing:             dbtypes.Pricing{Glass: req.Glass, Plastic: req.Plastic, Can: req.Can},
			PointsPerBaht:       req.PointsPerBaht,
			MinWithdrawalPoints: req.MinWithdrawalPoints,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, setting)
	}
}
