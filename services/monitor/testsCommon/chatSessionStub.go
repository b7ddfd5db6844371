package testsCommon

import (
	"context"

	"github.com/telerehab/rehab-monitoring/services/monitor/chat"
	"github.com/telerehab/rehab-monitoring/services/monitor/common"
)

// ChatSessionStub -
type ChatSessionStub struct {
	ConnectHandler   func(ctx context.Context, otherID string, otherRole string) error
	SendHandler      func(ctx context.Context, text string) (*common.SendMessageResponse, error)
	MessagesHandler  func() []chat.DisplayMessage
	StateHandler     func() chat.State
	OtherNameHandler func() string
	CloseHandler     func()
}

// Connect -
func (stub *ChatSessionStub) Connect(ctx context.Context, otherID string, otherRole string) error {
	if stub.ConnectHandler != nil {
		return stub.ConnectHandler(ctx, otherID, otherRole)
	}

	return nil
}

// Send -
func (stub *ChatSessionStub) Send(ctx context.Context, text string) (*common.SendMessageResponse, error) {
	if stub.SendHandler != nil {
		return stub.SendHandler(ctx, text)
	}

	return &common.SendMessageResponse{Status: common.StatusSuccess}, nil
}

// Messages -
func (stub *ChatSessionStub) Messages() []chat.DisplayMessage {
	if stub.MessagesHandler != nil {
		return stub.MessagesHandler()
	}

	return make([]chat.DisplayMessage, 0)
}

// State -
func (stub *ChatSessionStub) State() chat.State {
	if stub.StateHandler != nil {
		return stub.StateHandler()
	}

	return chat.StateDisconnected
}

// OtherName -
func (stub *ChatSessionStub) OtherName() string {
	if stub.OtherNameHandler != nil {
		return stub.OtherNameHandler()
	}

	return ""
}

// Close -
func (stub *ChatSessionStub) Close() {
	if stub.CloseHandler != nil {
		stub.CloseHandler()
	}
}

// IsInterfaceNil -
func (stub *ChatSessionStub) IsInterfaceNil() bool {
	return stub == nil
}
