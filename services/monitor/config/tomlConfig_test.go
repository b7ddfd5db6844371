package config

import (
	"testing"

	"github.com/pelletier/go-toml"
	"github.com/stretchr/testify/assert"
)

func TestConfig(t *testing.T) {
	t.Parallel()

	testString := `
PatientID = "P-1001"
ListenAddress = "127.0.0.1:8080"

[Backend]
    BaseURL = "https://script.google.com/macros/s/AKf/exec"
    SubmitAction = "submitData"
    RequestTimeoutInSeconds = 10

[Device]
    SampleIntervalInSeconds = 5
    ConnectDelayInSeconds = 2

[Chat]
    PollIntervalInSeconds = 3
    FetchLimit = 50

[Storage]
    DBPath = "./db/monitor.db"
    RetentionSeconds = 604800
`

	expectedCfg := Config{
		PatientID:     "P-1001",
		ListenAddress: "127.0.0.1:8080",
		Backend: BackendConfig{
			BaseURL:                 "https://script.google.com/macros/s/AKf/exec",
			SubmitAction:            "submitData",
			RequestTimeoutInSeconds: 10,
		},
		Device: DeviceConfig{
			SampleIntervalInSeconds: 5,
			ConnectDelayInSeconds:   2,
		},
		Chat: ChatConfig{
			PollIntervalInSeconds: 3,
			FetchLimit:            50,
		},
		Storage: StorageConfig{
			DBPath:           "./db/monitor.db",
			RetentionSeconds: 604800,
		},
	}

	cfg := Config{}

	err := toml.Unmarshal([]byte(testString), &cfg)
	assert.Nil(t, err)
	assert.Equal(t, expectedCfg, cfg)
}
