package device

import (
	"context"
	"time"

	"github.com/telerehab/rehab-monitoring/services/monitor/common"
	"github.com/telerehab/rehab-monitoring/services/monitor/metrics"
)

// Sampler defines the sample synthesis operations
type Sampler interface {
	// Generate produces one random sample stamped at the provided moment
	Generate(now time.Time) common.MetricSample

	// SeedSamples produces count samples spaced one minute apart, oldest first
	SeedSamples(count int, now time.Time) []common.MetricSample

	IsInterfaceNil() bool
}

// Engine defines the dashboard operations the simulator feeds
type Engine interface {
	RecordSample(sample common.MetricSample)
	RecordAnalysis(analysis metrics.Analysis)
	IsInterfaceNil() bool
}

// Submitter defines the backend submission operation
type Submitter interface {
	// SubmitSample pushes one sample to the backend
	SubmitSample(ctx context.Context, sample common.MetricSample) (*common.SubmitResponse, error)

	IsInterfaceNil() bool
}

// Store defines the local sample cache operation
type Store interface {
	SaveSample(ctx context.Context, sample common.MetricSample) error
	IsInterfaceNil() bool
}
