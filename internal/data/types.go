// Package data implements the typed data queue, its bounded arena
// allocator, and the per-variant difference function used by the ranker.
package data

import "fmt"

// Tag discriminates the variant carried by a Record's Contents.
type Tag int

const (
	TagCellular Tag = iota
	TagHumidity
	TagPressure
	TagTemperature
	TagLight
	TagAcceleration
	TagPosition
	TagMagnetic
	TagBLE
	TagWakeReason
	TagEnergySource
	TagStatistics
	TagLog

	numTags
)

func (t Tag) String() string {
	switch t {
	case TagCellular:
		return "cel"
	case TagHumidity:
		return "hum"
	case TagPressure:
		return "pre"
	case TagTemperature:
		return "tmp"
	case TagLight:
		return "lgt"
	case TagAcceleration:
		return "acc"
	case TagPosition:
		return "pos"
	case TagMagnetic:
		return "mag"
	case TagBLE:
		return "ble"
	case TagWakeReason:
		return "wkp"
	case TagEnergySource:
		return "nrg"
	case TagStatistics:
		return "stt"
	case TagLog:
		return "log"
	default:
		return fmt.Sprintf("tag(%d)", int(t))
	}
}

// Flags bitset. Bit 0 (FlagCanBeFreed) is excluded from sort ordering via the
// spec's "flags >> 1" shift.
type Flags uint8

const (
	FlagCanBeFreed  Flags = 1 << 0
	FlagRequiresAck Flags = 1 << 1
	FlagSendNow     Flags = 1 << 2
)

// sortKey returns the flags>>1 value used for queue ordering.
func (f Flags) sortKey() Flags { return f >> 1 }

// Cellular is the "cel" variant payload.
type Cellular struct {
	RSRPdBm int
	RSSIdBm int
	RSRQdB  int
	SNRdB   int
	ECL     uint
	CID     uint
	TPWdBm  int
	CH      uint
}

// Humidity is the "hum" variant payload.
type Humidity struct {
	Percent uint
}

// Pressure is the "pre" variant payload.
type Pressure struct {
	PascalX100 uint
}

// Temperature is the "tmp" variant payload.
type Temperature struct {
	CX100 int
}

// Light is the "lgt" variant payload.
type Light struct {
	Lux      uint
	UVIX1000 uint
}

// Acceleration is the "acc" variant payload.
type Acceleration struct {
	XGX1000 int
	YGX1000 int
	ZGX1000 int
}

// Position is the "pos" variant payload.
type Position struct {
	LatX10e7 int
	LngX10e7 int
	RadM     int
	AltM     int
	SpeedMPS uint
}

// Magnetic is the "mag" variant payload.
type Magnetic struct {
	TeslaX1000 uint
}

// BLE is the "ble" variant payload.
type BLE struct {
	Dev            string
	BatteryPercent uint
}

// WakeReason enumerates the seven causes of exit from deep sleep.
type WakeReason string

const (
	WakeReasonPower     WakeReason = "PWR"
	WakeReasonPin       WakeReason = "PIN"
	WakeReasonWatchdog  WakeReason = "WDG"
	WakeReasonSoftware  WakeReason = "SOF"
	WakeReasonRTC       WakeReason = "RTC"
	WakeReasonAccel     WakeReason = "ACC"
	WakeReasonMagnetic  WakeReason = "MAG"
)

// WakeReasonRecord is the "wkp" variant payload.
type WakeReasonRecord struct {
	Reason WakeReason
}

// EnergySource is the "nrg" variant payload.
type EnergySource struct {
	Source uint
}

// NumActionsPerDay is the fixed width of the "apd" statistics array.
const NumActionsPerDay = 8

// Statistics is the "stt" variant payload.
type Statistics struct {
	SleepTimePerDaySeconds uint
	WakeTimePerDaySeconds  uint
	WakeupsPerDay          uint
	ActionsPerDay          [NumActionsPerDay]uint
	EnergyPerDayNWH        uint64
	ConnectionAttempts     uint
	ConnectionSuccess      uint
	BytesTransmitted       uint
	BytesReceived          uint
	PositionAttempts       uint
	PositionSuccess        uint
	LastSVs                uint
}

// LogRecord is the "log" variant payload: a firmware version plus a
// table of [event, param1, param2] triples.
type LogRecord struct {
	VersionMajor uint
	VersionMinor uint
	Index        uint
	Entries      [][3]uint
}

// Record is one queued, typed data item.
type Record struct {
	ID            uint64
	TimestampUTC  int64
	Tag           Tag
	Flags         Flags
	ActionHandle  int
	HasAction     bool
	EnergyCostNWH uint64
	Contents      interface{}
}
