package data

import "math"

func absInt(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

func maxInt(vals ...int) int {
	m := math.MinInt
	for _, v := range vals {
		if v > m {
			m = v
		}
	}
	return m
}

// Difference returns the per-variant signed distance used by the
// ranker's variability pass (spec.md §4.2, §glossary): scalar variants
// use their primary field, composite variants use the largest
// absolute-component distance, housekeeping variants always return 1.
func Difference(a, b Record) int {
	switch a.Tag {
	case TagCellular:
		ac, aok := a.Contents.(Cellular)
		bc, bok := b.Contents.(Cellular)
		if aok && bok {
			return ac.RSRPdBm - bc.RSRPdBm
		}
	case TagHumidity:
		ac, aok := a.Contents.(Humidity)
		bc, bok := b.Contents.(Humidity)
		if aok && bok {
			return int(ac.Percent) - int(bc.Percent)
		}
	case TagPressure:
		ac, aok := a.Contents.(Pressure)
		bc, bok := b.Contents.(Pressure)
		if aok && bok {
			return int(ac.PascalX100) - int(bc.PascalX100)
		}
	case TagTemperature:
		ac, aok := a.Contents.(Temperature)
		bc, bok := b.Contents.(Temperature)
		if aok && bok {
			return ac.CX100 - bc.CX100
		}
	case TagMagnetic:
		ac, aok := a.Contents.(Magnetic)
		bc, bok := b.Contents.(Magnetic)
		if aok && bok {
			return int(ac.TeslaX1000) - int(bc.TeslaX1000)
		}
	case TagBLE:
		ac, aok := a.Contents.(BLE)
		bc, bok := b.Contents.(BLE)
		if aok && bok {
			return int(ac.BatteryPercent) - int(bc.BatteryPercent)
		}
	case TagLight:
		ac, aok := a.Contents.(Light)
		bc, bok := b.Contents.(Light)
		if aok && bok {
			return maxInt(absInt(int(ac.Lux)-int(bc.Lux)), absInt(int(ac.UVIX1000)-int(bc.UVIX1000)))
		}
	case TagAcceleration:
		ac, aok := a.Contents.(Acceleration)
		bc, bok := b.Contents.(Acceleration)
		if aok && bok {
			return maxInt(
				absInt(ac.XGX1000-bc.XGX1000),
				absInt(ac.YGX1000-bc.YGX1000),
				absInt(ac.ZGX1000-bc.ZGX1000),
			)
		}
	case TagPosition:
		ac, aok := a.Contents.(Position)
		bc, bok := b.Contents.(Position)
		if aok && bok {
			return maxInt(
				absInt(ac.LatX10e7-bc.LatX10e7),
				absInt(ac.LngX10e7-bc.LngX10e7),
				absInt(ac.AltM-bc.AltM),
			)
		}
	case TagWakeReason, TagEnergySource, TagStatistics, TagLog:
		return 1
	}
	return 1
}

// AbsDifference is Difference with the sign discarded, the form the
// variability pass actually consumes (spec.md §4.1 step 2: magnitude of
// change between two readings of the same type, never its direction).
func AbsDifference(a, b Record) uint64 {
	return uint64(absInt(Difference(a, b)))
}
