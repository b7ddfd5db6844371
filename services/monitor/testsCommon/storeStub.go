package testsCommon

import (
	"context"

	"github.com/telerehab/rehab-monitoring/services/monitor/common"
)

// StoreStub -
type StoreStub struct {
	SetPreferenceHandler    func(ctx context.Context, key string, value string) error
	GetPreferenceHandler    func(ctx context.Context, key string) (string, error)
	SaveSampleHandler       func(ctx context.Context, sample common.MetricSample) error
	GetRecentSamplesHandler func(ctx context.Context, patientID string, limit int) ([]common.MetricSample, error)
	CloseHandler            func() error
}

// SetPreference -
func (stub *StoreStub) SetPreference(ctx context.Context, key string, value string) error {
	if stub.SetPreferenceHandler != nil {
		return stub.SetPreferenceHandler(ctx, key, value)
	}

	return nil
}

// GetPreference -
func (stub *StoreStub) GetPreference(ctx context.Context, key string) (string, error) {
	if stub.GetPreferenceHandler != nil {
		return stub.GetPreferenceHandler(ctx, key)
	}

	return "", nil
}

// SaveSample -
func (stub *StoreStub) SaveSample(ctx context.Context, sample common.MetricSample) error {
	if stub.SaveSampleHandler != nil {
		return stub.SaveSampleHandler(ctx, sample)
	}

	return nil
}

// GetRecentSamples -
func (stub *StoreStub) GetRecentSamples(ctx context.Context, patientID string, limit int) ([]common.MetricSample, error) {
	if stub.GetRecentSamplesHandler != nil {
		return stub.GetRecentSamplesHandler(ctx, patientID, limit)
	}

	return nil, nil
}

// Close -
func (stub *StoreStub) Close() error {
	if stub.CloseHandler != nil {
		return stub.CloseHandler()
	}

	return nil
}

// IsInterfaceNil -
func (stub *StoreStub) IsInterfaceNil() bool {
	return stub == nil
}
