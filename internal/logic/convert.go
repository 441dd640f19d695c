package logic

// AnalogMax is the full-scale value of the 10-bit analog inputs.
const AnalogMax = 1023

// Soil moisture probe calibration: dry reads high, saturated reads low.
const (
	SoilRawDry = 1023
	SoilRawWet = 400
)

// mapRange rescales x linearly in integer arithmetic, truncating toward zero.
func mapRange(x, inMin, inMax, outMin, outMax int) int {
	return (x-inMin)*(outMax-outMin)/(inMax-inMin) + outMin
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// SoilMoisturePercent maps a raw probe value onto 0..100 percent.
func SoilMoisturePercent(raw int) int {
	return clamp(mapRange(raw, SoilRawDry, SoilRawWet, 0, 100), 0, 100)
}

// PHFromRaw maps a raw probe value onto the 0..14 pH scale.
func PHFromRaw(raw int) float64 {
	return float64(raw) * 14.0 / AnalogMax
}

// GasPPM maps a raw gas sensor value onto the proportional [0,1000] range.
func GasPPM(raw int) float64 {
	return float64(mapRange(clamp(raw, 0, AnalogMax), 0, AnalogMax, 0, 1000))
}
