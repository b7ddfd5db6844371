package e2e_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	logger "github.com/multiversx/mx-chain-logger-go"
	"github.com/stretchr/testify/require"
	"github.com/telerehab/rehab-monitoring/services/monitor/config"
	"github.com/telerehab/rehab-monitoring/services/monitor/factory"
	"github.com/tidwall/gjson"
)

var log = logger.GetOrCreate("e2e-test")

func TestE2EFlow(t *testing.T) {
	var numSubmits atomic.Uint32
	var numSentMessages atomic.Uint32

	log.Info("======== 1. Start a mock rehabilitation backend")
	mockBackend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		action := r.URL.Query().Get("action")
		if r.Method == http.MethodPost {
			body, _ := io.ReadAll(r.Body)
			action = gjson.GetBytes(body, "action").String()
		}

		switch action {
		case "getPatientData":
			// newest first, the way the deployed backend listed the history
			_, _ = w.Write([]byte(`{"status":"success",
				"latestRecord":{"timestamp":"2026-01-15T10:01:00Z","patientId":"P-1001","pulse":72,"pulseMA":66.0},
				"lastSevenDays":[
					{"timestamp":"2026-01-15T10:01:00Z","patientId":"P-1001","pulse":72},
					{"timestamp":"2026-01-15T10:00:00Z","patientId":"P-1001","pulse":60}
				]}`))
		case "submitData":
			numSubmits.Add(1)
			_, _ = w.Write([]byte(`{"status":"success","pulseMA":70.5,"movementMA":1.1,"isPulseAnomaly":false}`))
		case "getDoctorName":
			_, _ = w.Write([]byte(`{"status":"success","doctorName":"Dr. Elena","doctorId":"D-7"}`))
		case "getChatMessages":
			_, _ = w.Write([]byte(`{"status":"success","messages":[
				{"timestamp":"2026-01-15T10:02:00Z","messageId":"m-1","senderId":"D-7","senderType":"doctor",
				 "receiverId":"P-1001","receiverType":"patient","message":"Hello, how are you feeling?"}
			]}`))
		case "sendChatMessage":
			numSentMessages.Add(1)
			_, _ = w.Write([]byte(`{"status":"success","messageId":"m-99","timestamp":"2026-01-15T10:03:00Z"}`))
		case "getConversations":
			_, _ = w.Write([]byte(`{"status":"success","conversations":[
				{"otherId":"P-1001","otherName":"Maria","unreadCount":1}
			]}`))
		default:
			_, _ = w.Write([]byte(`{"status":"error","message":"unknown action"}`))
		}
	}))
	defer mockBackend.Close()

	log.Info("======== 2. Prepare the SQLite path")
	tempDir := t.TempDir()
	dbPath := filepath.Join(tempDir, "e2e_monitor.db")

	log.Info("======== 3. Start the monitor via componentsHandler")
	cfg := config.Config{
		PatientID:     "P-1001",
		ListenAddress: "127.0.0.1:0",
		Backend: config.BackendConfig{
			BaseURL:                 mockBackend.URL,
			RequestTimeoutInSeconds: 5,
		},
		Device: config.DeviceConfig{
			SampleIntervalInSeconds: 1,
		},
		Chat: config.ChatConfig{
			PollIntervalInSeconds: 1,
			FetchLimit:            50,
		},
		Storage: config.StorageConfig{
			DBPath:           dbPath,
			RetentionSeconds: 3600,
		},
	}

	handler, err := factory.NewComponentsHandler(cfg)
	require.NoError(t, err)

	handler.Start()

	_, port, err := net.SplitHostPort(handler.GetServer().Address())
	require.NoError(t, err)
	monitorURL := fmt.Sprintf("http://127.0.0.1:%s", port)

	log.Info("======== 3.1. Wait a moment for the server to start")
	time.Sleep(100 * time.Millisecond)

	log.Info("======== 4. Wait for the device to sample and submit")
	// one sample per second, 2.5s guarantees at least 2 submits
	time.Sleep(2500 * time.Millisecond)
	require.GreaterOrEqual(t, numSubmits.Load(), uint32(2))

	log.Info("======== 5. Read the dashboard")
	dashboard := getJSON(t, monitorURL+"/api/dashboard")
	require.Equal(t, "P-1001", dashboard.Get("patientId").String())
	require.True(t, dashboard.Get("sample").Exists())
	require.True(t, dashboard.Get("deltas.pulse").Exists())
	// the analysis comes back with the submit replies
	require.Equal(t, 70.5, dashboard.Get("pulseMA").Float())

	log.Info("======== 6. Read the chart layout")
	chart := getJSON(t, monitorURL+"/api/chart?all=true&width=800&height=400")
	require.Equal(t, int64(11), chart.Get("series.#").Int())

	log.Info("======== 7. Connect the chat and wait for the first poll")
	connectResp := postJSON(t, monitorURL+"/api/chat/connect", map[string]string{"doctorId": "D-7"})
	require.Equal(t, "connected", connectResp.Get("state").String())
	require.Equal(t, "Dr. Elena", connectResp.Get("doctorName").String())

	time.Sleep(1500 * time.Millisecond)

	messages := getJSON(t, monitorURL+"/api/chat/messages")
	require.Equal(t, int64(1), messages.Get("messages.#").Int())
	require.Equal(t, "Hello, how are you feeling?", messages.Get("messages.0.message").String())
	require.Equal(t, "Dr. Elena", messages.Get("messages.0.displayName").String())

	log.Info("======== 8. Send a chat message")
	sendResp := postJSON(t, monitorURL+"/api/chat/send", map[string]string{"message": "I feel better today"})
	require.Equal(t, "success", sendResp.Get("status").String())
	require.GreaterOrEqual(t, numSentMessages.Load(), uint32(1))

	log.Info("======== 9. List the conversations")
	conversations := getJSON(t, monitorURL+"/api/conversations?doctorId=D-7")
	require.Equal(t, "Maria", conversations.Get("conversations.0.otherName").String())

	log.Info("======== 10. Close the chat")
	closeResp := postJSON(t, monitorURL+"/api/chat/close", map[string]string{})
	require.Equal(t, "disconnected", closeResp.Get("state").String())

	log.Info("======== 11. Closing all components")
	handler.Close()
}

func getJSON(t *testing.T, url string) gjson.Result {
	t.Helper()

	resp, err := http.Get(url)
	require.NoError(t, err)
	defer func() {
		_ = resp.Body.Close()
	}()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	return gjson.ParseBytes(body)
}

func postJSON(t *testing.T, url string, payload map[string]string) gjson.Result {
	t.Helper()

	body, err := json.Marshal(payload)
	require.NoError(t, err)

	resp, err := http.Post(url, "application/json", bytes.NewBuffer(body))
	require.NoError(t, err)
	defer func() {
		_ = resp.Body.Close()
	}()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	respBody, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	return gjson.ParseBytes(respBody)
}
