package codec

import (
	"fmt"

	"github.com/u-blox/infinite-iot-sub000/internal/data"
)

// formatPayload renders a record's "d" field value, byte-exact per the
// grammar table in spec.md §4.3. Field order and spacing are load-bearing:
// property 5 (idempotent re-encode) and S3 depend on it.
func formatPayload(rec data.Record) (string, error) {
	switch rec.Tag {
	case data.TagCellular:
		c, ok := rec.Contents.(data.Cellular)
		if !ok {
			return "", fmt.Errorf("codec: cel record missing Cellular contents")
		}
		return fmt.Sprintf(`{"rsrpdbm":%d,"rssidbm":%d,"rsrqdb":%d,"snrdb":%d,"ecl":%d,"cid":%d,"tpwdbm":%d,"ch":%d}`,
			c.RSRPdBm, c.RSSIdBm, c.RSRQdB, c.SNRdB, c.ECL, c.CID, c.TPWdBm, c.CH), nil

	case data.TagHumidity:
		c, ok := rec.Contents.(data.Humidity)
		if !ok {
			return "", fmt.Errorf("codec: hum record missing Humidity contents")
		}
		return fmt.Sprintf(`{"%%":%d}`, c.Percent), nil

	case data.TagPressure:
		c, ok := rec.Contents.(data.Pressure)
		if !ok {
			return "", fmt.Errorf("codec: pre record missing Pressure contents")
		}
		return fmt.Sprintf(`{"pasx100":%d}`, c.PascalX100), nil

	case data.TagTemperature:
		c, ok := rec.Contents.(data.Temperature)
		if !ok {
			return "", fmt.Errorf("codec: tmp record missing Temperature contents")
		}
		return fmt.Sprintf(`{"cx100":%d}`, c.CX100), nil

	case data.TagLight:
		c, ok := rec.Contents.(data.Light)
		if !ok {
			return "", fmt.Errorf("codec: lgt record missing Light contents")
		}
		return fmt.Sprintf(`{"lux":%d,"uvix1000":%d}`, c.Lux, c.UVIX1000), nil

	case data.TagAcceleration:
		c, ok := rec.Contents.(data.Acceleration)
		if !ok {
			return "", fmt.Errorf("codec: acc record missing Acceleration contents")
		}
		return fmt.Sprintf(`{"xgx1000":%d,"ygx1000":%d,"zgx1000":%d}`, c.XGX1000, c.YGX1000, c.ZGX1000), nil

	case data.TagPosition:
		c, ok := rec.Contents.(data.Position)
		if !ok {
			return "", fmt.Errorf("codec: pos record missing Position contents")
		}
		return fmt.Sprintf(`{"latx10e7":%d,"lngx10e7":%d,"radm":%d,"altm":%d,"spdmps":%d}`,
			c.LatX10e7, c.LngX10e7, c.RadM, c.AltM, c.SpeedMPS), nil

	case data.TagMagnetic:
		c, ok := rec.Contents.(data.Magnetic)
		if !ok {
			return "", fmt.Errorf("codec: mag record missing Magnetic contents")
		}
		return fmt.Sprintf(`{"tslx1000":%d}`, c.TeslaX1000), nil

	case data.TagBLE:
		c, ok := rec.Contents.(data.BLE)
		if !ok {
			return "", fmt.Errorf("codec: ble record missing BLE contents")
		}
		return fmt.Sprintf(`{"dev":"%s","bat%%":%d}`, c.Dev, c.BatteryPercent), nil

	case data.TagWakeReason:
		c, ok := rec.Contents.(data.WakeReasonRecord)
		if !ok {
			return "", fmt.Errorf("codec: wkp record missing WakeReasonRecord contents")
		}
		return fmt.Sprintf(`{"rsn":"%s"}`, c.Reason), nil

	case data.TagEnergySource:
		c, ok := rec.Contents.(data.EnergySource)
		if !ok {
			return "", fmt.Errorf("codec: nrg record missing EnergySource contents")
		}
		return fmt.Sprintf(`{"src":%d}`, c.Source), nil

	case data.TagStatistics:
		c, ok := rec.Contents.(data.Statistics)
		if !ok {
			return "", fmt.Errorf("codec: stt record missing Statistics contents")
		}
		apd := "["
		for i, v := range c.ActionsPerDay {
			if i > 0 {
				apd += ","
			}
			apd += fmt.Sprintf("%d", v)
		}
		apd += "]"
		return fmt.Sprintf(`{"stpd":%d,"wtpd":%d,"wpd":%d,"apd":%s,"epd":%d,"ca":%d,"cs":%d,"cbt":%d,"cbr":%d,"poa":%d,"pos":%d,"svs":%d}`,
			c.SleepTimePerDaySeconds, c.WakeTimePerDaySeconds, c.WakeupsPerDay, apd, c.EnergyPerDayNWH,
			c.ConnectionAttempts, c.ConnectionSuccess, c.BytesTransmitted, c.BytesReceived,
			c.PositionAttempts, c.PositionSuccess, c.LastSVs), nil

	case data.TagLog:
		c, ok := rec.Contents.(data.LogRecord)
		if !ok {
			return "", fmt.Errorf("codec: log record missing LogRecord contents")
		}
		rec := "["
		for i, e := range c.Entries {
			if i > 0 {
				rec += ","
			}
			rec += fmt.Sprintf("[%d,%d,%d]", e[0], e[1], e[2])
		}
		rec += "]"
		return fmt.Sprintf(`{"v":"%d.%d","i":%d,"rec":%s}`, c.VersionMajor, c.VersionMinor, c.Index, rec), nil
	}

	return "", fmt.Errorf("codec: unknown tag %v", rec.Tag)
}

func formatRecord(rec data.Record) (string, error) {
	payload, err := formatPayload(rec)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf(`{"%s":{"t":%d,"nWh":%d,"d":%s}}`, rec.Tag, rec.TimestampUTC, rec.EnergyCostNWH, payload), nil
}
