package enums

import "fmt"

// WithdrawalStatus describes the allowed values for the `status` column in withdrawals.
type WithdrawalStatus string

const (
	WithdrawalStatusPending   WithdrawalStatus = "pending"
	WithdrawalStatusCompleted WithdrawalStatus = "completed"
	WithdrawalStatusRejected  WithdrawalStatus = "rejected"
)

var validWithdrawalStatuses = []WithdrawalStatus{
	WithdrawalStatusPending,
	WithdrawalStatusCompleted,
	WithdrawalStatusRejected,
}

// IsValid reports whether the value matches the canonical withdrawal status enum.
func (w WithdrawalStatus) IsValid() bool {
	for _, candidate := range validWithdrawalStatuses {
		if candidate == w {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the status ends the review workflow.
func (w WithdrawalStatus) IsTerminal() bool {
	return w == WithdrawalStatusCompleted || w == WithdrawalStatusRejected
}

// ParseWithdrawalStatus converts the raw string to WithdrawalStatus.
func ParseWithdrawalStatus(value string) (WithdrawalStatus, error) {
	for _, candidate := range validWithdrawalStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid withdrawal status %q", value)
}
