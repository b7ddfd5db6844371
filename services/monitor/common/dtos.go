package common

// Role values used by the chat backend
const (
	RolePatient = "patient"
	RoleDoctor  = "doctor"
)

// Backend status values
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// JointAngles holds the measured flexion angles, in whole degrees, for the tracked joints
type JointAngles struct {
	LeftShoulder  int `json:"leftShoulder"`
	RightShoulder int `json:"rightShoulder"`
	LeftElbow     int `json:"leftElbow"`
	RightElbow    int `json:"rightElbow"`
	LeftHip       int `json:"leftHip"`
	RightHip      int `json:"rightHip"`
	LeftKnee      int `json:"leftKnee"`
	RightKnee     int `json:"rightKnee"`
}

// MetricSample is one timestamped observation for a patient. Instances are never mutated,
// a newer sample supersedes the previous one
type MetricSample struct {
	Timestamp         string      `json:"timestamp"`
	PatientID         string      `json:"patientId"`
	Pulse             int         `json:"pulse"`
	MovementMagnitude float64     `json:"movementMagnitude"`
	SleepQualityScore float64     `json:"sleepQualityScore"`
	JointAngles       JointAngles `json:"jointAngle"`
}

// PatientRecord is a sample as stored server-side, enriched with the backend's computed fields
type PatientRecord struct {
	MetricSample
	PulseMA        float64 `json:"pulseMA"`
	MovementMA     float64 `json:"movementMA"`
	IsPulseAnomaly bool    `json:"isPulseAnomaly"`
}

// PatientDataResponse maps the getPatientData reply
type PatientDataResponse struct {
	Status        string          `json:"status"`
	Message       string          `json:"message"`
	LatestRecord  *PatientRecord  `json:"latestRecord"`
	LastSevenDays []PatientRecord `json:"lastSevenDays"`
}

// SubmitResponse maps the submit action reply. Unparsed is set when the backend answered
// with a non-JSON body and the submit is assumed to have landed server-side
type SubmitResponse struct {
	Status         string  `json:"status"`
	Message        string  `json:"message"`
	PulseMA        float64 `json:"pulseMA"`
	MovementMA     float64 `json:"movementMA"`
	IsPulseAnomaly bool    `json:"isPulseAnomaly"`
	Unparsed       bool    `json:"-"`
}

// DoctorNameResponse maps the getDoctorName reply
type DoctorNameResponse struct {
	Status     string `json:"status"`
	Message    string `json:"message"`
	DoctorName string `json:"doctorName"`
	DoctorID   string `json:"doctorId"`
}

// ChatMessage is one exchanged message. Immutable, ordered by timestamp ascending for display
type ChatMessage struct {
	Timestamp    string `json:"timestamp"`
	MessageID    string `json:"messageId"`
	SenderID     string `json:"senderId"`
	SenderType   string `json:"senderType"`
	ReceiverID   string `json:"receiverId"`
	ReceiverType string `json:"receiverType"`
	Message      string `json:"message"`
	IsRead       bool   `json:"isRead"`
}

// ChatMessagesResponse maps the getChatMessages reply
type ChatMessagesResponse struct {
	Status   string        `json:"status"`
	Message  string        `json:"message"`
	Messages []ChatMessage `json:"messages"`
}

// SendMessageResponse maps the sendChatMessage reply
type SendMessageResponse struct {
	Status    string `json:"status"`
	Message   string `json:"message"`
	MessageID string `json:"messageId"`
	Timestamp string `json:"timestamp"`
	Unparsed  bool   `json:"-"`
}

// ConversationSummary describes one conversation as listed by the backend
type ConversationSummary struct {
	OtherID         string `json:"otherId"`
	OtherType       string `json:"otherType"`
	OtherName       string `json:"otherName"`
	LastMessage     string `json:"lastMessage"`
	LastMessageTime string `json:"lastMessageTime"`
	UnreadCount     int    `json:"unreadCount"`
	HasMessages     bool   `json:"hasMessages"`
}

// ConversationsResponse maps the getConversations reply
type ConversationsResponse struct {
	Status        string                `json:"status"`
	Message       string                `json:"message"`
	Conversations []ConversationSummary `json:"conversations"`
}
