package chart

import (
	"github.com/telerehab/rehab-monitoring/services/monitor/metrics"
)

// rangePadding is applied on both ends of the joint value range
const rangePadding = 0.1

// minPaddedRange prevents a degenerate zero-range vertical scale
const minPaddedRange = 1.0

// seriesColors assigns a fixed display color to every metric
var seriesColors = map[metrics.Metric]string{
	metrics.MetricPulse:         "#e74c3c",
	metrics.MetricMovement:      "#3498db",
	metrics.MetricSleep:         "#9b59b6",
	metrics.MetricLeftShoulder:  "#1abc9c",
	metrics.MetricRightShoulder: "#16a085",
	metrics.MetricLeftElbow:     "#f39c12",
	metrics.MetricRightElbow:    "#d35400",
	metrics.MetricLeftHip:       "#2ecc71",
	metrics.MetricRightHip:      "#27ae60",
	metrics.MetricLeftKnee:      "#34495e",
	metrics.MetricRightKnee:     "#7f8c8d",
}

// Toggles selects which metric series are plotted. When All is set it overrides
// and suppresses the per-metric toggles
type Toggles struct {
	All     bool
	Metrics map[metrics.Metric]bool
}

// Series is one plottable metric history
type Series struct {
	Metric metrics.Metric `json:"metric"`
	Color  string         `json:"color"`
	Values []float64      `json:"values"`
}

// Point is a canvas coordinate. Y grows upwards from the bottom of the canvas
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// PlacedSeries is a series mapped into canvas coordinates
type PlacedSeries struct {
	Metric metrics.Metric `json:"metric"`
	Color  string         `json:"color"`
	Points []Point        `json:"points"`
}

// BuildSeries returns the enabled metric histories, each tagged with its fixed color,
// in display order
func BuildSeries(histories map[metrics.Metric][]float64, toggles Toggles) []Series {
	out := make([]Series, 0, len(histories))
	for _, metric := range metrics.AllMetrics {
		enabled := toggles.All || toggles.Metrics[metric]
		if !enabled {
			continue
		}

		out = append(out, Series{
			Metric: metric,
			Color:  seriesColors[metric],
			Values: histories[metric],
		})
	}

	return out
}

// Layout normalizes all series onto one shared vertical scale and maps them into
// canvas coordinates. The joint min/max is taken across all plotted series, padded
// by 10% of the value range on both ends, never narrower than 1.0. Degenerate
// inputs produce a valid empty-or-minimal result
func Layout(series []Series, width float64, height float64) []PlacedSeries {
	if width <= 0 || height <= 0 || len(series) == 0 {
		return []PlacedSeries{}
	}

	minValue, maxValue, found := jointRange(series)
	if !found {
		return []PlacedSeries{}
	}

	padding := (maxValue - minValue) * rangePadding
	minValue -= padding
	maxValue += padding
	if maxValue-minValue < minPaddedRange {
		mid := (maxValue + minValue) / 2
		minValue = mid - minPaddedRange/2
		maxValue = mid + minPaddedRange/2
	}
	valueRange := maxValue - minValue

	out := make([]PlacedSeries, 0, len(series))
	for _, s := range series {
		placed := PlacedSeries{
			Metric: s.Metric,
			Color:  s.Color,
			Points: make([]Point, 0, len(s.Values)),
		}

		n := len(s.Values)
		for i, value := range s.Values {
			x := width / 2 // single point is centered
			if n > 1 {
				x = float64(i) * (width / float64(n-1))
			}
			y := (value - minValue) / valueRange * height

			placed.Points = append(placed.Points, Point{X: x, Y: y})
		}

		out = append(out, placed)
	}

	return out
}

func jointRange(series []Series) (float64, float64, bool) {
	var minValue, maxValue float64
	found := false

	for _, s := range series {
		for _, value := range s.Values {
			if !found {
				minValue, maxValue = value, value
				found = true
				continue
			}
			if value < minValue {
				minValue = value
			}
			if value > maxValue {
				maxValue = value
			}
		}
	}

	return minValue, maxValue, found
}
