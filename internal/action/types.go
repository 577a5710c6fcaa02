// Package action implements the fixed-capacity action registry and the
// multi-criteria ranker that orders action types under energy scarcity.
package action

import "fmt"

// Type identifies a kind of action the node can perform. The set is
// extensible; new types are appended, never renumbered.
type Type int

const (
	TypeNull Type = iota
	TypeReport
	TypeTimeAndReport
	TypeHumidity
	TypePressure
	TypeTemperature
	TypeLight
	TypeOrientation
	TypePosition
	TypeMagnetic
	TypeBLE

	numTypes
)

func (t Type) String() string {
	switch t {
	case TypeNull:
		return "null"
	case TypeReport:
		return "report"
	case TypeTimeAndReport:
		return "time-and-report"
	case TypeHumidity:
		return "humidity"
	case TypePressure:
		return "pressure"
	case TypeTemperature:
		return "temperature"
	case TypeLight:
		return "light"
	case TypeOrientation:
		return "orientation"
	case TypePosition:
		return "position"
	case TypeMagnetic:
		return "magnetic"
	case TypeBLE:
		return "ble"
	default:
		return fmt.Sprintf("type(%d)", int(t))
	}
}

// AllTypes returns every known action type except TypeNull.
func AllTypes() []Type {
	types := make([]Type, 0, int(numTypes)-1)
	for t := TypeNull + 1; t < numTypes; t++ {
		types = append(types, t)
	}
	return types
}

func validType(t Type) bool {
	return t > TypeNull && t < numTypes
}

// State is a slot's lifecycle state.
type State int

const (
	StateNull State = iota
	StateRequested
	StateInProgress
	StateCompleted
	StateAborted
)

func (s State) String() string {
	switch s {
	case StateNull:
		return "null"
	case StateRequested:
		return "requested"
	case StateInProgress:
		return "in-progress"
	case StateCompleted:
		return "completed"
	case StateAborted:
		return "aborted"
	default:
		return "unknown"
	}
}

// Handle identifies a slot in the registry.
type Handle int

// NoHandle is returned by Add when the registry is full.
const NoHandle Handle = -1

// DataRef is a weak back-reference to a data record. The registry does
// not clear it by itself: ClearDataRef clears it when the caller is
// handed the record's data.ActionRef (cmd/sensornode does so for
// acknowledged records). Records the encoder frees without an
// acknowledgement leave the DataRef set to an id the queue no longer
// holds.
type DataRef struct {
	Valid bool
	ID    uint64
}

// Action is one slot in the registry.
type Action struct {
	Type             Type
	State            State
	TimeCompletedUTC int64
	EnergyCostNWH    uint64
	DataRef          DataRef
}
