package controllers

import (
	"net/http"
	"time"

	"github.com/rattapoomjame/Sort/api/responses"
	"github.com/rattapoomjame/Sort/api/validators"
	pkgauth "github.com/rattapoomjame/Sort/pkg/auth"
	"github.com/rattapoomjame/Sort/pkg/config"
	pkgerrors "github.com/rattapoomjame/Sort/pkg/errors"
	"github.com/rattapoomjame/Sort/pkg/logger"
	"github.com/rattapoomjame/Sort/pkg/security"
)

type adminLoginRequest struct {
	Username string `json:"username" validate:"required,min=1,max=64"`
	Password string `json:"password" validate:"required,min=1,max=256"`
}

type adminLoginResponse struct {
	Token     string `json:"token"`
	ExpiresIn int    `json:"expires_in"`
}

// AdminLogin checks the operator credentials and mints a short-lived token.
// There is a single admin account, configured through the environment.
func AdminLogin(cfg *config.Config, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req adminLoginRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if req.Username != cfg.Admin.Username {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials"))
			return
		}

		ok, err := security.VerifyPassword(req.Password, cfg.Admin.PasswordHash)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verifying credentials"))
			return
		}
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials"))
			return
		}

		token, err := pkgauth.MintAdminToken(cfg.JWT, time.Now(), pkgauth.AdminTokenPayload{Username: req.Username})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "minting token"))
			return
		}

		responses.WriteSuccess(w, adminLoginResponse{
			Token:     token,
			ExpiresIn: int(cfg.JWT.Expiration().Seconds()),
		})
	}
}
