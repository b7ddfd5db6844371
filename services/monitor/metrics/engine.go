package metrics

import (
	"sync"

	logger "github.com/multiversx/mx-chain-logger-go"
	"github.com/telerehab/rehab-monitoring/services/monitor/common"
)

var log = logger.GetOrCreate("metrics")

// HistoryCap is the maximum number of values retained per metric history
const HistoryCap = 24

// minDisplayableDelta is the threshold under which a delta is shown as "no change"
const minDisplayableDelta = 0.01

// Metric identifies one tracked vital-sign series
type Metric string

// The tracked metrics
const (
	MetricPulse         Metric = "pulse"
	MetricMovement      Metric = "movement"
	MetricSleep         Metric = "sleep"
	MetricLeftShoulder  Metric = "leftShoulder"
	MetricRightShoulder Metric = "rightShoulder"
	MetricLeftElbow     Metric = "leftElbow"
	MetricRightElbow    Metric = "rightElbow"
	MetricLeftHip       Metric = "leftHip"
	MetricRightHip      Metric = "rightHip"
	MetricLeftKnee      Metric = "leftKnee"
	MetricRightKnee     Metric = "rightKnee"
)

// AllMetrics lists every tracked metric in display order
var AllMetrics = []Metric{
	MetricPulse,
	MetricMovement,
	MetricSleep,
	MetricLeftShoulder,
	MetricRightShoulder,
	MetricLeftElbow,
	MetricRightElbow,
	MetricLeftHip,
	MetricRightHip,
	MetricLeftKnee,
	MetricRightKnee,
}

// Analysis holds the backend-computed fields attached to the latest submitted sample
type Analysis struct {
	PulseMA        float64
	MovementMA     float64
	IsPulseAnomaly bool
}

// dashboardEngine transforms raw samples into display-ready numbers and
// bounded per-metric histories used by the chart
type dashboardEngine struct {
	mut       sync.RWMutex
	current   *common.MetricSample
	previous  *common.MetricSample
	histories map[Metric][]float64
	analysis  Analysis
}

// NewDashboardEngine creates an empty dashboard engine
func NewDashboardEngine() *dashboardEngine {
	return &dashboardEngine{
		histories: make(map[Metric][]float64),
	}
}

// RecordSample appends the display-rounded values of the sample to every metric history
// and makes the sample the new current one. The prior current sample becomes the
// previous one, used for delta computation
func (e *dashboardEngine) RecordSample(sample common.MetricSample) {
	e.mut.Lock()
	defer e.mut.Unlock()

	e.recordNoLock(sample)
}

func (e *dashboardEngine) recordNoLock(sample common.MetricSample) {
	for _, metric := range AllMetrics {
		value := displayValue(sample, metric)
		history := append(e.histories[metric], value)
		if len(history) > HistoryCap {
			history = history[len(history)-HistoryCap:]
		}
		e.histories[metric] = history
	}

	e.previous = e.current
	e.current = &sample
}

// Seed replaces the engine state with the provided samples, oldest first
func (e *dashboardEngine) Seed(samples []common.MetricSample) {
	e.mut.Lock()
	defer e.mut.Unlock()

	e.current = nil
	e.previous = nil
	e.histories = make(map[Metric][]float64)

	for _, sample := range samples {
		e.recordNoLock(sample)
	}

	log.Debug("seeded dashboard engine", "num samples", len(samples))
}

// Delta returns the percent change between the current and previous value of the metric,
// rounded to 2 decimals. The boolean is false when there is nothing meaningful to
// display: missing samples, a previous value of zero or below, or a change under 0.01
func (e *dashboardEngine) Delta(metric Metric) (float64, bool) {
	e.mut.RLock()
	defer e.mut.RUnlock()

	if e.current == nil || e.previous == nil {
		return 0, false
	}

	currentValue := displayValue(*e.current, metric)
	previousValue := displayValue(*e.previous, metric)
	if previousValue <= 0 {
		// product decision: a zero or negative baseline reads as "no change",
		// not as an undefined or infinite delta
		return 0, false
	}

	delta := Round((currentValue-previousValue)/previousValue*100, DeltaDecimals)
	if delta < minDisplayableDelta && delta > -minDisplayableDelta {
		return 0, false
	}

	return delta, true
}

// History returns a copy of the bounded history for the given metric, oldest first
func (e *dashboardEngine) History(metric Metric) []float64 {
	e.mut.RLock()
	defer e.mut.RUnlock()

	history := e.histories[metric]
	out := make([]float64, len(history))
	copy(out, history)

	return out
}

// Histories returns a copy of all metric histories
func (e *dashboardEngine) Histories() map[Metric][]float64 {
	e.mut.RLock()
	defer e.mut.RUnlock()

	out := make(map[Metric][]float64, len(e.histories))
	for metric, history := range e.histories {
		values := make([]float64, len(history))
		copy(values, history)
		out[metric] = values
	}

	return out
}

// Current returns the current sample, if any
func (e *dashboardEngine) Current() (common.MetricSample, bool) {
	e.mut.RLock()
	defer e.mut.RUnlock()

	if e.current == nil {
		return common.MetricSample{}, false
	}

	return *e.current, true
}

// RecordAnalysis stores the backend-computed moving averages and anomaly flag
func (e *dashboardEngine) RecordAnalysis(analysis Analysis) {
	e.mut.Lock()
	defer e.mut.Unlock()

	e.analysis = analysis
}

// Analysis returns the latest backend-computed analysis
func (e *dashboardEngine) Analysis() Analysis {
	e.mut.RLock()
	defer e.mut.RUnlock()

	return e.analysis
}

// displayValue extracts the display-rounded value of one metric from a sample
func displayValue(sample common.MetricSample, metric Metric) float64 {
	switch metric {
	case MetricPulse:
		return float64(sample.Pulse)
	case MetricMovement:
		return Round(sample.MovementMagnitude, DisplayMovementDecimals)
	case MetricSleep:
		return Round(sample.SleepQualityScore, SleepScoreDecimals)
	case MetricLeftShoulder:
		return float64(sample.JointAngles.LeftShoulder)
	case MetricRightShoulder:
		return float64(sample.JointAngles.RightShoulder)
	case MetricLeftElbow:
		return float64(sample.JointAngles.LeftElbow)
	case MetricRightElbow:
		return float64(sample.JointAngles.RightElbow)
	case MetricLeftHip:
		return float64(sample.JointAngles.LeftHip)
	case MetricRightHip:
		return float64(sample.JointAngles.RightHip)
	case MetricLeftKnee:
		return float64(sample.JointAngles.LeftKnee)
	case MetricRightKnee:
		return float64(sample.JointAngles.RightKnee)
	}

	return 0
}

// IsInterfaceNil returns true if the value under the interface is nil
func (e *dashboardEngine) IsInterfaceNil() bool {
	return e == nil
}
