// Package aqi implements the US EPA AQI scale: severity banding and the
// piecewise-linear conversions between AQI and particulate concentrations.
package aqi

import "github.com/siamtrail/airtrip-cli/internal/model"

// breakpoint is one segment of an EPA conversion table. Values at and below
// the AQI ceiling map linearly onto [lo, hi] µg/m³.
type breakpoint struct {
	aqiLo, aqiHi float64
	lo, hi       float64
}

// EPA PM2.5 breakpoints (µg/m³) by AQI band.
var pm25Breakpoints = []breakpoint{
	{0, 50, 0, 12},
	{50, 100, 12, 35.4},
	{100, 150, 35.4, 55.4},
	{150, 200, 55.4, 150.4},
	{200, 300, 150.4, 250.4},
	{300, 400, 250.4, 350.4},
}

// EPA PM10 breakpoints (µg/m³) by AQI band.
var pm10Breakpoints = []breakpoint{
	{0, 50, 0, 54},
	{50, 100, 55, 154},
	{100, 150, 155, 254},
	{150, 200, 255, 354},
	{200, 300, 355, 424},
	{300, 400, 425, 500},
}

func estimate(table []breakpoint, aqiValue int) int {
	a := float64(aqiValue)
	for _, b := range table {
		if a <= b.aqiHi {
			return int(b.lo + (a-b.aqiLo)*(b.hi-b.lo)/(b.aqiHi-b.aqiLo))
		}
	}
	last := table[len(table)-1]
	return int(last.hi + (a-last.aqiHi)*(last.hi-last.lo)/(last.aqiHi-last.aqiLo))
}

// EstimatePM25 estimates a PM2.5 concentration from an AQI value. The second
// return is false for non-positive AQI, where no estimate is meaningful.
// Estimation only ever runs in this direction; reported PM values are never
// overwritten.
func EstimatePM25(aqiValue int) (int, bool) {
	if aqiValue <= 0 {
		return 0, false
	}
	return estimate(pm25Breakpoints, aqiValue), true
}

// EstimatePM10 estimates a PM10 concentration from an AQI value.
func EstimatePM10(aqiValue int) (int, bool) {
	if aqiValue <= 0 {
		return 0, false
	}
	return estimate(pm10Breakpoints, aqiValue), true
}

// FromPM25 computes the US EPA AQI for a PM2.5 concentration.
func FromPM25(pm25 float64) int {
	switch {
	case pm25 < 0:
		return 0
	case pm25 <= 12.0:
		return int(50 / 12.0 * pm25)
	case pm25 <= 35.4:
		return int((100-51)/(35.4-12.1)*(pm25-12.1) + 51)
	case pm25 <= 55.4:
		return int((150-101)/(55.4-35.5)*(pm25-35.5) + 101)
	case pm25 <= 150.4:
		return int((200-151)/(150.4-55.5)*(pm25-55.5) + 151)
	case pm25 <= 250.4:
		return int((300-201)/(250.4-150.5)*(pm25-150.5) + 201)
	default:
		return int((500-301)/(500.4-250.5)*(pm25-250.5) + 301)
	}
}

// LevelFor returns the severity level and advisory text for an AQI value.
func LevelFor(aqiValue int) (model.Level, string) {
	switch {
	case aqiValue <= 50:
		return model.LevelVeryGood, "อากาศสะอาด ปลอดภัยสำหรับกิจกรรมกลางแจ้ง"
	case aqiValue <= 100:
		return model.LevelGood, "อากาศพอใช้ได้ คนไวต่อมลพิษควรระวัง"
	case aqiValue <= 150:
		return model.LevelModerate, "คนไวต่อมลพิษควรหลีกเลี่ยงกิจกรรมกลางแจ้ง"
	case aqiValue <= 200:
		return model.LevelUnhealthy, "ทุกคนควรจำกัดกิจกรรมกลางแจ้ง"
	case aqiValue <= 300:
		return model.LevelVeryUnhealthy, "ทุกคนควรหลีกเลี่ยงกิจกรรมกลางแจ้ง"
	default:
		return model.LevelHazardous, "ทุกคนควรอยู่ในอาคาร"
	}
}
