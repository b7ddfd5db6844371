package config

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// BackendConfig defines how the remote rehabilitation backend is reached
type BackendConfig struct {
	BaseURL                 string `toml:"BaseURL"`
	SubmitAction            string `toml:"SubmitAction"`
	RequestTimeoutInSeconds uint32 `toml:"RequestTimeoutInSeconds"`
}

// DeviceConfig defines the simulated measurement device behavior
type DeviceConfig struct {
	SampleIntervalInSeconds uint32 `toml:"SampleIntervalInSeconds"`
	ConnectDelayInSeconds   uint32 `toml:"ConnectDelayInSeconds"`
}

// ChatConfig defines the chat session behavior
type ChatConfig struct {
	PollIntervalInSeconds uint32 `toml:"PollIntervalInSeconds"`
	FetchLimit            int    `toml:"FetchLimit"`
}

// StorageConfig defines the local sqlite storage behavior
type StorageConfig struct {
	DBPath           string `toml:"DBPath"`
	RetentionSeconds int    `toml:"RetentionSeconds"`
}

// Config maps to the config.toml file for the monitor service
type Config struct {
	PatientID     string        `toml:"PatientID"`
	ListenAddress string        `toml:"ListenAddress"`
	Backend       BackendConfig `toml:"Backend"`
	Device        DeviceConfig  `toml:"Device"`
	Chat          ChatConfig    `toml:"Chat"`
	Storage       StorageConfig `toml:"Storage"`
}

// LoadConfig parses a TOML file into the Config struct
func LoadConfig(filepath string) (*Config, error) {
	data, err := os.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", filepath, err)
	}

	var cfg Config
	err = toml.Unmarshal(data, &cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to decode config file: %w", err)
	}

	return &cfg, nil
}
