package export

import (
	"fmt"
	"time"

	"aoa-engine-go/geom"
)

// FormatPosition renders one corrected estimate as a text line:
//
//	pos,<tag id hex>,<timestamp>,<azimuth deg>,<elevation deg>,<distance m>,<fom>\r\n
//
// Angles are degrees with two decimals, distance metres, fom the weakest of
// the reading's three confidence values. Consumers split on commas, so the
// timestamp format carries no comma.
func FormatPosition(id uint32, ts int64, reading geom.Annotated) []byte {
	t := time.UnixMilli(ts)
	fom := reading.AzimuthFOM
	if reading.ElevationFOM < fom {
		fom = reading.ElevationFOM
	}
	if reading.DistanceFOM < fom {
		fom = reading.DistanceFOM
	}
	return []byte(fmt.Sprintf("pos,%X,%s,%.2f,%.2f,%.2f,%.3f\r\n",
		id, t.Format("20060102150405.000"),
		geom.Degrees(reading.Azimuth), geom.Degrees(reading.Elevation),
		reading.Distance, fom))
}

// FormatWarning renders a warning line for downstream alarms.
func FormatWarning(id uint32, ts int64, text string) []byte {
	t := time.UnixMilli(ts)
	return []byte(fmt.Sprintf("warn,%X,%s,%s\r\n", id, t.Format("20060102150405.000"), text))
}
