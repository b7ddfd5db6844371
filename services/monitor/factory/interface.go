package factory

import (
	"context"

	"github.com/telerehab/rehab-monitoring/services/monitor/common"
	"github.com/telerehab/rehab-monitoring/services/monitor/metrics"
)

// Server defines the operation of an entity able to serve requests
type Server interface {
	Start()
	Address() string
	Close() error
}

// Simulator defines the operations of the sample-producing device
type Simulator interface {
	Start()
	Close()
	IsInterfaceNil() bool
}

// Storage defines the local persistence operations used by the components
type Storage interface {
	SetPreference(ctx context.Context, key string, value string) error
	GetPreference(ctx context.Context, key string) (string, error)
	SaveSample(ctx context.Context, sample common.MetricSample) error
	GetRecentSamples(ctx context.Context, patientID string, limit int) ([]common.MetricSample, error)
	Close() error
	IsInterfaceNil() bool
}

// DashboardEngine defines the dashboard operations used while wiring and seeding
type DashboardEngine interface {
	Seed(samples []common.MetricSample)
	RecordSample(sample common.MetricSample)
	RecordAnalysis(analysis metrics.Analysis)
	Current() (common.MetricSample, bool)
	Delta(metric metrics.Metric) (float64, bool)
	Histories() map[metrics.Metric][]float64
	Analysis() metrics.Analysis
	IsInterfaceNil() bool
}

// BackendClient defines the remote backend operations used by the components
type BackendClient interface {
	GetPatientData(ctx context.Context, patientID string) (*common.PatientDataResponse, error)
	SubmitSample(ctx context.Context, sample common.MetricSample) (*common.SubmitResponse, error)
	GetDoctorName(ctx context.Context, doctorID string) (*common.DoctorNameResponse, error)
	GetChatMessages(ctx context.Context, senderID string, receiverID string, limit int, since string) (*common.ChatMessagesResponse, error)
	SendChatMessage(ctx context.Context, msg common.ChatMessage) (*common.SendMessageResponse, error)
	GetConversations(ctx context.Context, doctorID string) (*common.ConversationsResponse, error)
	IsInterfaceNil() bool
}
