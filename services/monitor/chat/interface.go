package chat

import (
	"context"

	"github.com/telerehab/rehab-monitoring/services/monitor/common"
)

// APIClient defines the backend operations the chat session relies on
type APIClient interface {
	// GetDoctorName resolves the display name of a doctor id
	GetDoctorName(ctx context.Context, doctorID string) (*common.DoctorNameResponse, error)

	// GetChatMessages fetches the messages exchanged between two participants,
	// optionally restricted to messages newer than the since cursor
	GetChatMessages(ctx context.Context, senderID string, receiverID string, limit int, since string) (*common.ChatMessagesResponse, error)

	// SendChatMessage delivers one chat message
	SendChatMessage(ctx context.Context, msg common.ChatMessage) (*common.SendMessageResponse, error)

	IsInterfaceNil() bool
}
