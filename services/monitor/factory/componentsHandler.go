package factory

import (
	"context"
	"errors"
	"strings"
	"time"

	logger "github.com/multiversx/mx-chain-logger-go"
	"github.com/telerehab/rehab-monitoring/services/monitor/api"
	"github.com/telerehab/rehab-monitoring/services/monitor/backend"
	"github.com/telerehab/rehab-monitoring/services/monitor/chat"
	"github.com/telerehab/rehab-monitoring/services/monitor/common"
	"github.com/telerehab/rehab-monitoring/services/monitor/config"
	"github.com/telerehab/rehab-monitoring/services/monitor/device"
	"github.com/telerehab/rehab-monitoring/services/monitor/metrics"
	"github.com/telerehab/rehab-monitoring/services/monitor/storage"
)

var log = logger.GetOrCreate("factory")

const seedTimeout = 10 * time.Second

type componentsHandler struct {
	store     Storage
	client    BackendClient
	engine    DashboardEngine
	chat      api.ChatSession
	simulator Simulator
	server    Server
	patientID string
}

// NewComponentsHandler creates all inner components and seeds the dashboard
func NewComponentsHandler(cfg config.Config) (*componentsHandler, error) {
	store, err := storage.NewSQLiteStorage(cfg.Storage.DBPath, cfg.Storage.RetentionSeconds)
	if err != nil {
		return nil, err
	}

	patientID, err := resolvePatientID(store, cfg.PatientID)
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	client, err := backend.NewAPIClient(
		cfg.Backend.BaseURL,
		cfg.Backend.SubmitAction,
		time.Duration(cfg.Backend.RequestTimeoutInSeconds)*time.Second,
	)
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	engine := metrics.NewDashboardEngine()
	gen := device.NewGenerator(patientID)

	seedDashboard(engine, client, store, gen, patientID)

	sim, err := device.NewSimulator(device.ArgsSimulator{
		Sampler:      gen,
		Engine:       engine,
		Submitter:    client,
		Store:        store,
		Interval:     time.Duration(cfg.Device.SampleIntervalInSeconds) * time.Second,
		ConnectDelay: time.Duration(cfg.Device.ConnectDelayInSeconds) * time.Second,
	})
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	session, err := chat.NewChatSession(chat.ArgsChatSession{
		Client:       client,
		SelfID:       patientID,
		SelfRole:     common.RolePatient,
		PollInterval: time.Duration(cfg.Chat.PollIntervalInSeconds) * time.Second,
		FetchLimit:   cfg.Chat.FetchLimit,
	})
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	server, err := api.NewServer(api.ArgsWebServer{
		ListenAddress: cfg.ListenAddress,
		PatientID:     patientID,
		Engine:        engine,
		Chat:          session,
		Conversations: client,
		Store:         store,
	})
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	return &componentsHandler{
		store:     store,
		client:    client,
		engine:    engine,
		chat:      session,
		simulator: sim,
		server:    server,
		patientID: patientID,
	}, nil
}

// resolvePatientID prefers the configured id and falls back to the stored one. The
// winning id is persisted so the next start works without configuration
func resolvePatientID(store Storage, configured string) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), seedTimeout)
	defer cancel()

	patientID := strings.TrimSpace(configured)
	if len(patientID) == 0 {
		stored, err := store.GetPreference(ctx, storage.PrefKeyPatientID)
		if err != nil {
			return "", err
		}
		patientID = stored
	}
	if len(patientID) == 0 {
		return "", errors.New("no patient id configured or stored")
	}

	err := store.SetPreference(ctx, storage.PrefKeyPatientID, patientID)
	if err != nil {
		return "", err
	}

	return patientID, nil
}

// seedDashboard fills the histories before the first live sample arrives. Backend data
// wins, the local cache is second and a synthesized run of samples is the last resort.
// The backend lists lastSevenDays newest first, the engine expects oldest first
func seedDashboard(engine DashboardEngine, client BackendClient, store Storage, gen device.Sampler, patientID string) {
	ctx, cancel := context.WithTimeout(context.Background(), seedTimeout)
	defer cancel()

	resp, err := client.GetPatientData(ctx, patientID)
	if err == nil && resp.Status == common.StatusSuccess && len(resp.LastSevenDays) > 0 {
		samples := make([]common.MetricSample, 0, len(resp.LastSevenDays))
		for i := len(resp.LastSevenDays) - 1; i >= 0; i-- {
			samples = append(samples, resp.LastSevenDays[i].MetricSample)
		}
		engine.Seed(samples)

		if resp.LatestRecord != nil {
			engine.RecordAnalysis(metrics.Analysis{
				PulseMA:        resp.LatestRecord.PulseMA,
				MovementMA:     resp.LatestRecord.MovementMA,
				IsPulseAnomaly: resp.LatestRecord.IsPulseAnomaly,
			})
		}
		log.Debug("seeded dashboard from backend", "samples", len(samples))
		return
	}
	if err != nil {
		log.Warn("could not fetch patient data, trying the local cache", "error", err)
	}

	cached, err := store.GetRecentSamples(ctx, patientID, metrics.HistoryCap)
	if err == nil && len(cached) > 0 {
		engine.Seed(cached)
		log.Debug("seeded dashboard from the local cache", "samples", len(cached))
		return
	}

	engine.Seed(gen.SeedSamples(device.FallbackSeedCount, time.Now()))
	log.Debug("seeded dashboard with synthesized samples", "samples", device.FallbackSeedCount)
}

// GetStore returns the storage component
func (ch *componentsHandler) GetStore() Storage {
	return ch.store
}

// GetClient returns the backend client component
func (ch *componentsHandler) GetClient() BackendClient {
	return ch.client
}

// GetEngine returns the dashboard engine component
func (ch *componentsHandler) GetEngine() DashboardEngine {
	return ch.engine
}

// GetChatSession returns the chat session component
func (ch *componentsHandler) GetChatSession() api.ChatSession {
	return ch.chat
}

// GetSimulator returns the device simulator component
func (ch *componentsHandler) GetSimulator() Simulator {
	return ch.simulator
}

// GetServer returns the server component
func (ch *componentsHandler) GetServer() Server {
	return ch.server
}

// PatientID returns the resolved patient id
func (ch *componentsHandler) PatientID() string {
	return ch.patientID
}

// Start starts the inner components
func (ch *componentsHandler) Start() {
	ch.simulator.Start()
	ch.server.Start()
}

// Close closes the inner components
func (ch *componentsHandler) Close() {
	_ = ch.server.Close()
	ch.simulator.Close()
	ch.chat.Close()
	_ = ch.store.Close()
}
