package api

import (
	"context"

	"github.com/telerehab/rehab-monitoring/services/monitor/chat"
	"github.com/telerehab/rehab-monitoring/services/monitor/common"
	"github.com/telerehab/rehab-monitoring/services/monitor/metrics"
)

// Engine defines the dashboard operations exposed over the local API
type Engine interface {
	Current() (common.MetricSample, bool)
	Delta(metric metrics.Metric) (float64, bool)
	Histories() map[metrics.Metric][]float64
	Analysis() metrics.Analysis
	IsInterfaceNil() bool
}

// ChatSession defines the chat operations exposed over the local API
type ChatSession interface {
	Connect(ctx context.Context, otherID string, otherRole string) error
	Send(ctx context.Context, text string) (*common.SendMessageResponse, error)
	Messages() []chat.DisplayMessage
	State() chat.State
	OtherName() string
	Close()
	IsInterfaceNil() bool
}

// ConversationsClient defines the conversation listing operation
type ConversationsClient interface {
	GetConversations(ctx context.Context, doctorID string) (*common.ConversationsResponse, error)
	IsInterfaceNil() bool
}

// Store defines the preference persistence operation
type Store interface {
	SetPreference(ctx context.Context, key string, value string) error
	IsInterfaceNil() bool
}
