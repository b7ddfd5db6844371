package device

import (
	"math/rand/v2"
	"time"

	"github.com/telerehab/rehab-monitoring/services/monitor/common"
	"github.com/telerehab/rehab-monitoring/services/monitor/metrics"
)

// Physiologically plausible ranges for synthesized vitals
const (
	pulseMin = 60
	pulseMax = 100

	movementMin = 0.1
	movementMax = 2.0

	sleepScoreMin = 50.0
	sleepScoreMax = 100.0

	jointAngleMax = 180
)

// FallbackSeedCount is the number of synthesized history points used when no
// backend or cached history is available
const FallbackSeedCount = 5

// generator synthesizes measurement samples in place of a real wearable device
type generator struct {
	patientID string
}

// NewGenerator creates a new sample generator for the given patient
func NewGenerator(patientID string) *generator {
	return &generator{
		patientID: patientID,
	}
}

// Generate produces one random sample stamped at the provided moment
func (g *generator) Generate(now time.Time) common.MetricSample {
	return common.MetricSample{
		Timestamp:         now.UTC().Format(time.RFC3339),
		PatientID:         g.patientID,
		Pulse:             pulseMin + rand.IntN(pulseMax-pulseMin+1),
		MovementMagnitude: metrics.Round(movementMin+rand.Float64()*(movementMax-movementMin), metrics.GeneratedMovementDecimals),
		SleepQualityScore: metrics.Round(sleepScoreMin+rand.Float64()*(sleepScoreMax-sleepScoreMin), metrics.SleepScoreDecimals),
		JointAngles: common.JointAngles{
			LeftShoulder:  rand.IntN(jointAngleMax + 1),
			RightShoulder: rand.IntN(jointAngleMax + 1),
			LeftElbow:     rand.IntN(jointAngleMax + 1),
			RightElbow:    rand.IntN(jointAngleMax + 1),
			LeftHip:       rand.IntN(jointAngleMax + 1),
			RightHip:      rand.IntN(jointAngleMax + 1),
			LeftKnee:      rand.IntN(jointAngleMax + 1),
			RightKnee:     rand.IntN(jointAngleMax + 1),
		},
	}
}

// SeedSamples produces count samples spaced one minute apart, oldest first, ending
// at the provided moment
func (g *generator) SeedSamples(count int, now time.Time) []common.MetricSample {
	out := make([]common.MetricSample, 0, count)
	for i := count - 1; i >= 0; i-- {
		out = append(out, g.Generate(now.Add(-time.Duration(i)*time.Minute)))
	}

	return out
}

// IsInterfaceNil returns true if the value under the interface is nil
func (g *generator) IsInterfaceNil() bool {
	return g == nil
}
