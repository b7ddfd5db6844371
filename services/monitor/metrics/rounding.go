package metrics

import "math"

// Decimal places used by the different producers. Sample generation keeps 3 decimals
// for the movement magnitude, the dashboard displays only 2
const (
	GeneratedMovementDecimals = 3
	DisplayMovementDecimals   = 2
	SleepScoreDecimals        = 2
	DeltaDecimals             = 2
)

// Round rounds half away from zero at the given number of decimals
func Round(value float64, decimals int) float64 {
	pow := math.Pow(10, float64(decimals))
	return math.Round(value*pow) / pow
}
