package enums

import "fmt"

// MachineState describes the allowed values for the `state` column in machine_status.
type MachineState string

const (
	MachineStateOnline      MachineState = "online"
	MachineStateOffline     MachineState = "offline"
	MachineStateMaintenance MachineState = "maintenance"
)

var validMachineStates = []MachineState{
	MachineStateOnline,
	MachineStateOffline,
	MachineStateMaintenance,
}

// IsValid reports whether the value matches the canonical machine state enum.
func (m MachineState) IsValid() bool {
	for _, candidate := range validMachineStates {
		if candidate == m {
			return true
		}
	}
	return false
}

// ParseMachineState converts the raw string to MachineState.
func ParseMachineState(value string) (MachineState, error) {
	for _, candidate := range validMachineStates {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid machine state %q", value)
}
