package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	logger "github.com/multiversx/mx-chain-logger-go"
	"github.com/telerehab/rehab-monitoring/services/monitor/common"
	"github.com/tidwall/gjson"
)

var log = logger.GetOrCreate("backend")

// DefaultSubmitAction is used when no submit action name is configured. The deployed
// backend accepted both "submitData" and "addPatient" across versions
const DefaultSubmitAction = "submitData"

const bodySnippetLen = 40

const unparsedResponseMessage = "success with unparsed response"

// apiClient talks to the remote rehabilitation backend, a loosely-specified
// HTTP JSON API addressed through a single base URL and an "action" parameter
type apiClient struct {
	baseURL      string
	submitAction string
	client       *http.Client
}

// NewAPIClient creates a new backend API client
func NewAPIClient(baseURL string, submitAction string, timeout time.Duration) (*apiClient, error) {
	if len(baseURL) == 0 {
		return nil, errors.New("empty backend base URL")
	}
	if len(submitAction) == 0 {
		submitAction = DefaultSubmitAction
	}

	return &apiClient{
		baseURL:      baseURL,
		submitAction: submitAction,
		client: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

// GetPatientData fetches the latest record and the recent history for a patient
func (c *apiClient) GetPatientData(ctx context.Context, patientID string) (*common.PatientDataResponse, error) {
	params := url.Values{}
	params.Set("action", "getPatientData")
	params.Set("patientId", patientID)

	body, err := c.get(ctx, params)
	if err != nil {
		return nil, err
	}

	resp := &common.PatientDataResponse{}
	err = decodeRead(body, resp)
	if err != nil {
		return nil, err
	}

	return resp, nil
}

// SubmitSample pushes one sample to the backend. The primary transport is a JSON POST,
// falling back to a GET encoding the same fields as query parameters when the POST
// transport fails or its reply is not JSON-shaped. A successful submit whose reply is
// still unreadable is reported as a soft success with the Unparsed flag set
func (c *apiClient) SubmitSample(ctx context.Context, sample common.MetricSample) (*common.SubmitResponse, error) {
	payload := struct {
		Action string `json:"action"`
		common.MetricSample
	}{
		Action:       c.submitAction,
		MetricSample: sample,
	}

	jointAngles, err := json.Marshal(sample.JointAngles)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal joint angles: %w", err)
	}

	params := url.Values{}
	params.Set("action", c.submitAction)
	params.Set("timestamp", sample.Timestamp)
	params.Set("patientId", sample.PatientID)
	params.Set("pulse", strconv.Itoa(sample.Pulse))
	params.Set("movementMagnitude", strconv.FormatFloat(sample.MovementMagnitude, 'f', -1, 64))
	params.Set("sleepQualityScore", strconv.FormatFloat(sample.SleepQualityScore, 'f', -1, 64))
	params.Set("jointAngle", string(jointAngles))

	body, err := c.submitWithFallback(ctx, payload, params)
	if err != nil {
		return nil, err
	}

	if !isJSONShaped(body) {
		// the write likely landed server-side despite the unreadable reply
		return &common.SubmitResponse{
			Status:   common.StatusSuccess,
			Message:  unparsedResponseMessage,
			Unparsed: true,
		}, nil
	}

	resp := &common.SubmitResponse{}
	err = json.Unmarshal(body, resp)
	if err != nil {
		return nil, fmt.Errorf("failed to decode submit response: %w", err)
	}

	logBackendError("submit", body)

	return resp, nil
}

// GetDoctorName resolves the display name of a doctor id
func (c *apiClient) GetDoctorName(ctx context.Context, doctorID string) (*common.DoctorNameResponse, error) {
	params := url.Values{}
	params.Set("action", "getDoctorName")
	params.Set("doctorId", doctorID)

	body, err := c.get(ctx, params)
	if err != nil {
		return nil, err
	}

	resp := &common.DoctorNameResponse{}
	err = decodeRead(body, resp)
	if err != nil {
		return nil, err
	}

	return resp, nil
}

// GetChatMessages fetches the messages exchanged between two participants, limited
// in count and optionally restricted to messages newer than the since cursor
func (c *apiClient) GetChatMessages(
	ctx context.Context,
	senderID string,
	receiverID string,
	limit int,
	since string,
) (*common.ChatMessagesResponse, error) {
	params := url.Values{}
	params.Set("action", "getChatMessages")
	params.Set("senderId", senderID)
	params.Set("receiverId", receiverID)
	params.Set("limit", strconv.Itoa(limit))
	if len(since) > 0 {
		params.Set("since", since)
	}

	body, err := c.get(ctx, params)
	if err != nil {
		return nil, err
	}

	resp := &common.ChatMessagesResponse{}
	err = decodeRead(body, resp)
	if err != nil {
		return nil, err
	}

	return resp, nil
}

// SendChatMessage delivers one chat message, with the same POST-then-GET
// fallback strategy used for sample submission
func (c *apiClient) SendChatMessage(ctx context.Context, msg common.ChatMessage) (*common.SendMessageResponse, error) {
	payload := struct {
		Action       string `json:"action"`
		Sender       string `json:"sender"`
		SenderType   string `json:"senderType"`
		Receiver     string `json:"receiver"`
		ReceiverType string `json:"receiverType"`
		Message      string `json:"message"`
	}{
		Action:       "sendChatMessage",
		Sender:       msg.SenderID,
		SenderType:   msg.SenderType,
		Receiver:     msg.ReceiverID,
		ReceiverType: msg.ReceiverType,
		Message:      msg.Message,
	}

	params := url.Values{}
	params.Set("action", "sendChatMessage")
	params.Set("sender", msg.SenderID)
	params.Set("senderType", msg.SenderType)
	params.Set("receiver", msg.ReceiverID)
	params.Set("receiverType", msg.ReceiverType)
	params.Set("message", msg.Message)

	body, err := c.submitWithFallback(ctx, payload, params)
	if err != nil {
		return nil, err
	}

	if !isJSONShaped(body) {
		return &common.SendMessageResponse{
			Status:   common.StatusSuccess,
			Message:  unparsedResponseMessage,
			Unparsed: true,
		}, nil
	}

	resp := &common.SendMessageResponse{}
	err = json.Unmarshal(body, resp)
	if err != nil {
		return nil, fmt.Errorf("failed to decode send message response: %w", err)
	}

	logBackendError("send message", body)

	return resp, nil
}

// GetConversations lists the conversations a doctor participates in
func (c *apiClient) GetConversations(ctx context.Context, doctorID string) (*common.ConversationsResponse, error) {
	params := url.Values{}
	params.Set("action", "getConversations")
	params.Set("doctorId", doctorID)

	body, err := c.get(ctx, params)
	if err != nil {
		return nil, err
	}

	resp := &common.ConversationsResponse{}
	err = decodeRead(body, resp)
	if err != nil {
		return nil, err
	}

	return resp, nil
}

func (c *apiClient) get(ctx context.Context, params url.Values) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}

	return c.do(req)
}

// submitWithFallback tries the primary JSON POST and inspects its outcome: a transport
// failure, a non-2xx status or a non-JSON-shaped reply all cause one GET-based
// re-submission of the same logical payload. Exactly one transport result is returned
func (c *apiClient) submitWithFallback(ctx context.Context, payload any, params url.Values) ([]byte, error) {
	body, err := c.post(ctx, payload)
	if err == nil && isJSONShaped(body) {
		return body, nil
	}
	if err != nil {
		log.Debug("POST submit failed, falling back to GET", "error", err)
	} else {
		log.Debug("POST submit returned a non-JSON reply, falling back to GET", "body", snippet(body))
	}

	return c.get(ctx, params)
}

func (c *apiClient) post(ctx context.Context, payload any) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewBuffer(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req)
}

func (c *apiClient) do(req *http.Request) ([]byte, error) {
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, errStatusNotOK(resp.StatusCode)
	}

	return io.ReadAll(resp.Body)
}

// isJSONShaped applies the shape heuristic that rejects HTML error pages: the first
// non-whitespace character must open a JSON object or array
func isJSONShaped(body []byte) bool {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return false
	}

	return trimmed[0] == '{' || trimmed[0] == '['
}

// decodeRead validates and decodes a read-path reply. Non-JSON bodies are an
// explicit error here, unlike on the submit paths
func decodeRead(body []byte, target any) error {
	if !isJSONShaped(body) {
		return errNotJSONShaped(snippet(body))
	}

	err := json.Unmarshal(body, target)
	if err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}

// logBackendError surfaces backend-declared errors without re-decoding the body
func logBackendError(operation string, body []byte) {
	if gjson.GetBytes(body, "status").String() != common.StatusError {
		return
	}

	log.Warn("backend reported an error", "operation", operation,
		"message", gjson.GetBytes(body, "message").String())
}

func snippet(body []byte) string {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > bodySnippetLen {
		trimmed = trimmed[:bodySnippetLen]
	}

	return string(trimmed)
}

// IsInterfaceNil returns true if the value under the interface is nil
func (c *apiClient) IsInterfaceNil() bool {
	return c == nil
}
