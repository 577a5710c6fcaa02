// Package codec implements the bounded, resumable report encoder and
// its matching acknowledgement decoder (spec.md §4.3).
package codec

// EncodeFlags are the bits returned alongside an Encode call's byte count.
type EncodeFlags uint8

const (
	FlagNeedsAck EncodeFlags = 1 << iota
	FlagNotEnoughRoomForHeader
	FlagNotEnoughRoomForEvenOneData
)

func (f EncodeFlags) NeedsAck() bool                    { return f&FlagNeedsAck != 0 }
func (f EncodeFlags) NotEnoughRoomForHeader() bool       { return f&FlagNotEnoughRoomForHeader != 0 }
func (f EncodeFlags) NotEnoughRoomForEvenOneData() bool  { return f&FlagNotEnoughRoomForEvenOneData != 0 }
