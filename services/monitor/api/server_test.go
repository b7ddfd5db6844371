package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/telerehab/rehab-monitoring/services/monitor/chat"
	"github.com/telerehab/rehab-monitoring/services/monitor/common"
	"github.com/telerehab/rehab-monitoring/services/monitor/metrics"
	"github.com/telerehab/rehab-monitoring/services/monitor/testsCommon"
)

func testServerArgs() ArgsWebServer {
	engine := metrics.NewDashboardEngine()
	engine.RecordSample(common.MetricSample{Timestamp: "2026-01-15T10:00:00Z", PatientID: "P-1001", Pulse: 60})
	engine.RecordSample(common.MetricSample{Timestamp: "2026-01-15T10:01:00Z", PatientID: "P-1001", Pulse: 72})

	return ArgsWebServer{
		ListenAddress: "127.0.0.1:0",
		PatientID:     "P-1001",
		Engine:        engine,
		Chat:          &testsCommon.ChatSessionStub{},
		Conversations: &testsCommon.APIClientStub{},
		Store:         &testsCommon.StoreStub{},
	}
}

func doRequest(t *testing.T, s *server, method string, target string, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if len(body) > 0 {
		req.Header.Set("Content-Type", "application/json")
	}

	recorder := httptest.NewRecorder()
	s.router.ServeHTTP(recorder, req)

	return recorder
}

func TestNewServer(t *testing.T) {
	t.Parallel()

	t.Run("nil engine should error", func(t *testing.T) {
		args := testServerArgs()
		args.Engine = nil

		s, err := NewServer(args)
		assert.Nil(t, s)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "nil engine")
	})
	t.Run("nil chat session should error", func(t *testing.T) {
		args := testServerArgs()
		args.Chat = nil

		s, err := NewServer(args)
		assert.Nil(t, s)
		assert.Error(t, err)
	})
	t.Run("nil conversations client should error", func(t *testing.T) {
		args := testServerArgs()
		args.Conversations = nil

		s, err := NewServer(args)
		assert.Nil(t, s)
		assert.Error(t, err)
	})
	t.Run("nil store should error", func(t *testing.T) {
		args := testServerArgs()
		args.Store = nil

		s, err := NewServer(args)
		assert.Nil(t, s)
		assert.Error(t, err)
	})
	t.Run("should work", func(t *testing.T) {
		s, err := NewServer(testServerArgs())

		require.NoError(t, err)
		assert.False(t, s.IsInterfaceNil())
	})
}

func TestServer_Dashboard(t *testing.T) {
	t.Parallel()

	s, _ := NewServer(testServerArgs())

	recorder := doRequest(t, s, http.MethodGet, "/api/dashboard", "")
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.NotEmpty(t, recorder.Header().Get(requestIDHeader))

	var resp struct {
		PatientID string                 `json:"patientId"`
		Sample    *common.MetricSample   `json:"sample"`
		Deltas    map[string]struct {
			Value   float64 `json:"value"`
			Changed bool    `json:"changed"`
		} `json:"deltas"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &resp))

	assert.Equal(t, "P-1001", resp.PatientID)
	require.NotNil(t, resp.Sample)
	assert.Equal(t, 72, resp.Sample.Pulse)
	assert.Equal(t, 20.0, resp.Deltas["pulse"].Value)
	assert.True(t, resp.Deltas["pulse"].Changed)
}

func TestServer_Chart(t *testing.T) {
	t.Parallel()

	s, _ := NewServer(testServerArgs())

	t.Run("invalid canvas size should error", func(t *testing.T) {
		recorder := doRequest(t, s, http.MethodGet, "/api/chart?width=abc", "")
		assert.Equal(t, http.StatusBadRequest, recorder.Code)
	})
	t.Run("selected metrics are laid out", func(t *testing.T) {
		recorder := doRequest(t, s, http.MethodGet, "/api/chart?metrics=pulse&width=100&height=100", "")
		require.Equal(t, http.StatusOK, recorder.Code)

		var resp struct {
			Series []struct {
				Metric string `json:"metric"`
				Points []struct {
					X float64 `json:"x"`
					Y float64 `json:"y"`
				} `json:"points"`
			} `json:"series"`
		}
		require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &resp))

		require.Len(t, resp.Series, 1)
		assert.Equal(t, "pulse", resp.Series[0].Metric)
		assert.Len(t, resp.Series[0].Points, 2)
	})
	t.Run("all toggle plots every metric", func(t *testing.T) {
		recorder := doRequest(t, s, http.MethodGet, "/api/chart?all=true", "")
		require.Equal(t, http.StatusOK, recorder.Code)

		var resp struct {
			Series []json.RawMessage `json:"series"`
		}
		require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &resp))
		assert.Len(t, resp.Series, len(metrics.AllMetrics))
	})
}

func TestServer_SetPatient(t *testing.T) {
	t.Parallel()

	t.Run("persists the id", func(t *testing.T) {
		var savedKey, savedValue string
		args := testServerArgs()
		args.Store = &testsCommon.StoreStub{
			SetPreferenceHandler: func(ctx context.Context, key string, value string) error {
				savedKey, savedValue = key, value
				return nil
			},
		}

		s, _ := NewServer(args)
		recorder := doRequest(t, s, http.MethodPost, "/api/patient", `{"patientId":"P-2002"}`)

		require.Equal(t, http.StatusOK, recorder.Code)
		assert.Equal(t, "patientId", savedKey)
		assert.Equal(t, "P-2002", savedValue)
	})
	t.Run("empty id should error", func(t *testing.T) {
		s, _ := NewServer(testServerArgs())
		recorder := doRequest(t, s, http.MethodPost, "/api/patient", `{"patientId":"  "}`)

		assert.Equal(t, http.StatusBadRequest, recorder.Code)
	})
}

func TestServer_Chat(t *testing.T) {
	t.Parallel()

	t.Run("connect reports the resolved name", func(t *testing.T) {
		args := testServerArgs()
		args.Chat = &testsCommon.ChatSessionStub{
			StateHandler:     func() chat.State { return chat.StateConnected },
			OtherNameHandler: func() string { return "Dr. Ionescu" },
		}

		s, _ := NewServer(args)
		recorder := doRequest(t, s, http.MethodPost, "/api/chat/connect", `{"doctorId":"D-7"}`)

		require.Equal(t, http.StatusOK, recorder.Code)
		assert.Contains(t, recorder.Body.String(), "Dr. Ionescu")
		assert.Contains(t, recorder.Body.String(), string(chat.StateConnected))
	})
	t.Run("send maps validation failures to 400", func(t *testing.T) {
		args := testServerArgs()
		args.Chat = &testsCommon.ChatSessionStub{
			SendHandler: func(ctx context.Context, text string) (*common.SendMessageResponse, error) {
				return nil, chat.ErrEmptyMessage
			},
		}

		s, _ := NewServer(args)
		recorder := doRequest(t, s, http.MethodPost, "/api/chat/send", `{"message":""}`)

		assert.Equal(t, http.StatusBadRequest, recorder.Code)
	})
	t.Run("send maps transport failures to 502", func(t *testing.T) {
		args := testServerArgs()
		args.Chat = &testsCommon.ChatSessionStub{
			SendHandler: func(ctx context.Context, text string) (*common.SendMessageResponse, error) {
				return nil, errors.New("backend unreachable")
			},
		}

		s, _ := NewServer(args)
		recorder := doRequest(t, s, http.MethodPost, "/api/chat/send", `{"message":"hello"}`)

		assert.Equal(t, http.StatusBadGateway, recorder.Code)
	})
	t.Run("messages returns the display log", func(t *testing.T) {
		args := testServerArgs()
		args.Chat = &testsCommon.ChatSessionStub{
			MessagesHandler: func() []chat.DisplayMessage {
				return []chat.DisplayMessage{
					{ChatMessage: common.ChatMessage{MessageID: "m1", Message: "hi"}, Outgoing: true, DisplayName: "You"},
				}
			},
		}

		s, _ := NewServer(args)
		recorder := doRequest(t, s, http.MethodGet, "/api/chat/messages", "")

		require.Equal(t, http.StatusOK, recorder.Code)
		assert.Contains(t, recorder.Body.String(), `"m1"`)
		assert.Contains(t, recorder.Body.String(), `"You"`)
	})
	t.Run("close stops the session", func(t *testing.T) {
		closed := false
		args := testServerArgs()
		args.Chat = &testsCommon.ChatSessionStub{
			CloseHandler: func() { closed = true },
		}

		s, _ := NewServer(args)
		recorder := doRequest(t, s, http.MethodPost, "/api/chat/close", "")

		require.Equal(t, http.StatusOK, recorder.Code)
		assert.True(t, closed)
	})
}

func TestServer_Conversations(t *testing.T) {
	t.Parallel()

	t.Run("missing doctorId should error", func(t *testing.T) {
		s, _ := NewServer(testServerArgs())
		recorder := doRequest(t, s, http.MethodGet, "/api/conversations", "")

		assert.Equal(t, http.StatusBadRequest, recorder.Code)
	})
	t.Run("forwards the backend listing", func(t *testing.T) {
		args := testServerArgs()
		args.Conversations = &testsCommon.APIClientStub{
			GetConversationsHandler: func(ctx context.Context, doctorID string) (*common.ConversationsResponse, error) {
				return &common.ConversationsResponse{
					Status: common.StatusSuccess,
					Conversations: []common.ConversationSummary{
						{OtherID: "P-1001", OtherName: "Maria", UnreadCount: 2},
					},
				}, nil
			},
		}

		s, _ := NewServer(args)
		recorder := doRequest(t, s, http.MethodGet, "/api/conversations?doctorId=D-7", "")

		require.Equal(t, http.StatusOK, recorder.Code)
		assert.Contains(t, recorder.Body.String(), "Maria")
	})
}
