package storage

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/telerehab/rehab-monitoring/services/monitor/common"
)

func TestSQLiteStorage_Preferences(t *testing.T) {
	s, err := NewSQLiteStorage(":memory:", 3600)
	require.NoError(t, err)
	require.False(t, s.IsInterfaceNil())
	defer func() {
		_ = s.Close()
	}()

	ctx := context.Background()

	// missing key reads as empty
	value, err := s.GetPreference(ctx, PrefKeyPatientID)
	require.NoError(t, err)
	require.Empty(t, value)

	err = s.SetPreference(ctx, PrefKeyPatientID, "P-1001")
	require.NoError(t, err)

	// upsert replaces
	err = s.SetPreference(ctx, PrefKeyPatientID, "P-2002")
	require.NoError(t, err)

	value, err = s.GetPreference(ctx, PrefKeyPatientID)
	require.NoError(t, err)
	require.Equal(t, "P-2002", value)
}

func TestSQLiteStorage_Samples(t *testing.T) {
	s, err := NewSQLiteStorage(":memory:", 3600)
	require.NoError(t, err)
	defer func() {
		_ = s.Close()
	}()

	ctx := context.Background()

	for i := 0; i < 3; i++ {
		err = s.SaveSample(ctx, common.MetricSample{
			Timestamp:         fmt.Sprintf("2026-01-15T10:0%d:00Z", i),
			PatientID:         "P-1001",
			Pulse:             60 + i,
			MovementMagnitude: 1.234,
			SleepQualityScore: 80.25,
			JointAngles:       common.JointAngles{LeftShoulder: 90 + i},
		})
		require.NoError(t, err)
	}

	// unrelated patient
	err = s.SaveSample(ctx, common.MetricSample{
		Timestamp: "2026-01-15T10:00:00Z",
		PatientID: "P-9999",
		Pulse:     100,
	})
	require.NoError(t, err)

	samples, err := s.GetRecentSamples(ctx, "P-1001", 2)
	require.NoError(t, err)
	require.Len(t, samples, 2)

	// ascending timestamp order, limited to the most recent ones
	require.Equal(t, 61, samples[0].Pulse)
	require.Equal(t, 62, samples[1].Pulse)
	require.Equal(t, 91, samples[0].JointAngles.LeftShoulder)
	require.Equal(t, "P-1001", samples[0].PatientID)

	samples, err = s.GetRecentSamples(ctx, "P-0000", 10)
	require.NoError(t, err)
	require.Empty(t, samples)
}

func TestSQLiteStorage_Retention(t *testing.T) {
	s, err := NewSQLiteStorage(":memory:", 60)
	require.NoError(t, err)
	defer func() {
		_ = s.Close()
	}()

	ctx := context.Background()

	// an old sample past the retention window
	err = s.SaveSample(ctx, common.MetricSample{
		Timestamp: "2020-01-01T00:00:00Z",
		PatientID: "P-1001",
		Pulse:     70,
	})
	require.NoError(t, err)

	err = s.cleanRetainedSamples(ctx)
	require.NoError(t, err)

	samples, err := s.GetRecentSamples(ctx, "P-1001", 10)
	require.NoError(t, err)
	require.Empty(t, samples)
}
