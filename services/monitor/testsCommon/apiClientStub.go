package testsCommon

import (
	"context"

	"github.com/telerehab/rehab-monitoring/services/monitor/common"
)

// APIClientStub -
type APIClientStub struct {
	GetPatientDataHandler  func(ctx context.Context, patientID string) (*common.PatientDataResponse, error)
	SubmitSampleHandler    func(ctx context.Context, sample common.MetricSample) (*common.SubmitResponse, error)
	GetDoctorNameHandler   func(ctx context.Context, doctorID string) (*common.DoctorNameResponse, error)
	GetChatMessagesHandler func(ctx context.Context, senderID string, receiverID string, limit int, since string) (*common.ChatMessagesResponse, error)
	SendChatMessageHandler func(ctx context.Context, msg common.ChatMessage) (*common.SendMessageResponse, error)
	GetConversationsHandler func(ctx context.Context, doctorID string) (*common.ConversationsResponse, error)
}

// GetPatientData -
func (stub *APIClientStub) GetPatientData(ctx context.Context, patientID string) (*common.PatientDataResponse, error) {
	if stub.GetPatientDataHandler != nil {
		return stub.GetPatientDataHandler(ctx, patientID)
	}

	return &common.PatientDataResponse{Status: common.StatusSuccess}, nil
}

// SubmitSample -
func (stub *APIClientStub) SubmitSample(ctx context.Context, sample common.MetricSample) (*common.SubmitResponse, error) {
	if stub.SubmitSampleHandler != nil {
		return stub.SubmitSampleHandler(ctx, sample)
	}

	return &common.SubmitResponse{Status: common.StatusSuccess}, nil
}

// GetDoctorName -
func (stub *APIClientStub) GetDoctorName(ctx context.Context, doctorID string) (*common.DoctorNameResponse, error) {
	if stub.GetDoctorNameHandler != nil {
		return stub.GetDoctorNameHandler(ctx, doctorID)
	}

	return &common.DoctorNameResponse{Status: common.StatusSuccess}, nil
}

// GetChatMessages -
func (stub *APIClientStub) GetChatMessages(ctx context.Context, senderID string, receiverID string, limit int, since string) (*common.ChatMessagesResponse, error) {
	if stub.GetChatMessagesHandler != nil {
		return stub.GetChatMessagesHandler(ctx, senderID, receiverID, limit, since)
	}

	return &common.ChatMessagesResponse{Status: common.StatusSuccess}, nil
}

// SendChatMessage -
func (stub *APIClientStub) SendChatMessage(ctx context.Context, msg common.ChatMessage) (*common.SendMessageResponse, error) {
	if stub.SendChatMessageHandler != nil {
		return stub.SendChatMessageHandler(ctx, msg)
	}

	return &common.SendMessageResponse{Status: common.StatusSuccess}, nil
}

// GetConversations -
func (stub *APIClientStub) GetConversations(ctx context.Context, doctorID string) (*common.ConversationsResponse, error) {
	if stub.GetConversationsHandler != nil {
		return stub.GetConversationsHandler(ctx, doctorID)
	}

	return &common.ConversationsResponse{Status: common.StatusSuccess}, nil
}

// IsInterfaceNil -
func (stub *APIClientStub) IsInterfaceNil() bool {
	return stub == nil
}
