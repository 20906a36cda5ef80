package controllers

import (
	"net/http"
	"strings"

	"github.com/rattapoomjame/Sort/api/responses"
	"github.com/rattapoomjame/Sort/api/validators"
	"github.com/rattapoomjame/Sort/internal/machine"
	"github.com/rattapoomjame/Sort/pkg/enums"
	pkgerrors "github.com/rattapoomjame/Sort/pkg/errors"
	"github.com/rattapoomjame/Sort/pkg/logger"
)

func machineIDFromQuery(r *http.Request, fallback string) string {
	if id := strings.TrimSpace(r.URL.Query().Get("machine_id")); id != "" {
		return id
	}
	return fallback
}

type heartbeatRequest struct {
	MachineID   string   `json:"machine_id" validate:"omitempty,max=64"`
	Firmware    *string  `json:"firmware,omitempty" validate:"omitempty,max=64"`
	CPUTemp     *float64 `json:"cpu_temp,omitempty" validate:"omitempty,gte=-40,lte=150"`
	StorageUsed *float64 `json:"storage_used,omitempty" validate:"omitempty,gte=0,lte=1"`
}

// MachineHeartbeat records a device ping. A machine under maintenance stays
// in maintenance even while it pings.
func MachineHeartbeat(svc machine.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req heartbeatRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		status, err := svc.Heartbeat(r.Context(), machine.HeartbeatInput{
			MachineID:   req.MachineID,
			Firmware:    req.Firmware,
			CPUTemp:     req.CPUTemp,
			StorageUsed: req.StorageUsed,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, status)
	}
}

// MachineStatus reports the device state, firmware and last-seen time.
func MachineStatus(svc machine.Service, defaultMachineID string, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status, err := svc.Status(r.Context(), machineIDFromQuery(r, defaultMachineID))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, status)
	}
}

// BottleCounts returns the per-material counters for the kiosk screen.
func BottleCounts(svc machine.Service, defaultMachineID string, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		counts, err := svc.BottleCounts(r.Context(), machineIDFromQuery(r, defaultMachineID))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, counts)
	}
}

type overrideCountsRequest struct {
	MachineID string `json:"machine_id" validate:"omitempty,max=64"`
	Glass     int    `json:"glass" validate:"min=0"`
	Plastic   int    `json:"plastic" validate:"min=0"`
	Can       int    `json:"can" validate:"min=0"`
}

// AdminOverrideCounts sets the machine counters, typically to zero after the
// bins are emptied.
func AdminOverrideCounts(svc machine.Service, defaultMachineID string, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req overrideCountsRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if strings.TrimSpace(req.MachineID) == "" {
			req.MachineID = defaultMachineID
		}

		status, err := svc.OverrideCounts(r.Context(), machine.OverrideCountsInput{
			MachineID: req.MachineID,
			Glass:     req.Glass,
			Plastic:   req.Plastic,
			Can:       req.Can,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, status)
	}
}

type updateMachineRequest struct {
	MachineID  string  `json:"machine_id" validate:"omitempty,max=64"`
	State      *string `json:"state,omitempty" validate:"omitempty,oneof=online offline"`
	MaxBottles *int    `json:"max_bottles,omitempty" validate:"omitempty,min=1"`
	Firmware   *string `json:"firmware,omitempty" validate:"omitempty,max=64"`
}

// AdminUpdateMachine edits the machine row: state, capacity, firmware label.
func AdminUpdateMachine(svc machine.Service, defaultMachineID string, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req updateMachineRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if strings.TrimSpace(req.MachineID) == "" {
			req.MachineID = defaultMachineID
		}

		input := machine.UpdateStatusInput{
			MachineID:  req.MachineID,
			MaxBottles: req.MaxBottles,
			Firmware:   req.Firmware,
		}
		if req.State != nil {
			state, err := enums.ParseMachineState(*req.State)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid state"))
				return
			}
			input.State = &state
		}

		status, err := svc.UpdateStatus(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, status)
	}
}

type maintenanceRequest struct {
	MachineID string `json:"machine_id" validate:"omitempty,max=64"`
	Enabled   bool   `json:"enabled"`
	Note      string `json:"note" validate:"omitempty,max=500"`
}

// AdminToggleMaintenance opens or closes a maintenance window.
func AdminToggleMaintenance(svc machine.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req maintenanceRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		status, err := svc.ToggleMaintenance(r.Context(), machine.ToggleMaintenanceInput{
			MachineID: req.MachineID,
			Enabled:   req.Enabled,
			Note:      req.Note,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, status)
	}
}

// AdminMaintenanceLogs lists recent maintenance windows.
func AdminMaintenanceLogs(svc machine.Service, defaultMachineID string, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := validators.ParseQueryInt(r, "limit", 20, 1, 100)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		logs, err := svc.MaintenanceLogs(r.Context(), machineIDFromQuery(r, defaultMachineID), limit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, logs)
	}
}
