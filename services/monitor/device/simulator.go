package device

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/multiversx/mx-chain-core-go/core/check"
	logger "github.com/multiversx/mx-chain-logger-go"
	rootCommon "github.com/telerehab/rehab-monitoring/common"
	"github.com/telerehab/rehab-monitoring/services/monitor/common"
	"github.com/telerehab/rehab-monitoring/services/monitor/metrics"
)

var log = logger.GetOrCreate("device")

const submitTimeout = 10 * time.Second

// ArgsSimulator holds the dependencies of the device simulator
type ArgsSimulator struct {
	Sampler      Sampler
	Engine       Engine
	Submitter    Submitter
	Store        Store
	Interval     time.Duration
	ConnectDelay time.Duration
}

// simulator stands in for a wearable measurement device: once "connected" it emits
// one sample per interval, feeds the dashboard engine, caches the sample locally and
// pushes it to the backend
type simulator struct {
	sampler      Sampler
	engine       Engine
	submitter    Submitter
	store        Store
	interval     time.Duration
	connectDelay time.Duration
	mutCancel    sync.Mutex
	cancel       func()
}

// NewSimulator creates a new device simulator
func NewSimulator(args ArgsSimulator) (*simulator, error) {
	if check.IfNil(args.Sampler) {
		return nil, errors.New("nil sampler")
	}
	if check.IfNil(args.Engine) {
		return nil, errors.New("nil engine")
	}
	if check.IfNil(args.Submitter) {
		return nil, errors.New("nil submitter")
	}
	if check.IfNil(args.Store) {
		return nil, errors.New("nil store")
	}
	if args.Interval <= 0 {
		return nil, errors.New("invalid sample interval")
	}

	return &simulator{
		sampler:      args.Sampler,
		engine:       args.Engine,
		submitter:    args.Submitter,
		store:        args.Store,
		interval:     args.Interval,
		connectDelay: args.ConnectDelay,
	}, nil
}

// Start begins emitting samples after the configured connection delay. Idempotent
func (s *simulator) Start() {
	s.mutCancel.Lock()
	defer s.mutCancel.Unlock()

	if s.cancel != nil {
		return
	}

	var ctx context.Context
	ctx, s.cancel = context.WithCancel(context.Background())

	go func() {
		if s.connectDelay > 0 {
			select {
			case <-time.After(s.connectDelay):
			case <-ctx.Done():
				return
			}
		}

		log.Debug("device connected, starting sample emission", "interval", s.interval)
		rootCommon.CronJobStarter(ctx, s.process, s.interval)
	}()
}

// process emits one sample: dashboard first so the display never waits on the
// network, then the local cache, then the backend
func (s *simulator) process(ctx context.Context) {
	sample := s.sampler.Generate(time.Now())
	s.engine.RecordSample(sample)

	err := s.store.SaveSample(ctx, sample)
	if err != nil {
		log.Warn("failed to cache sample locally", "error", err)
	}

	submitCtx, cancelSubmit := context.WithTimeout(ctx, submitTimeout)
	defer cancelSubmit()

	resp, err := s.submitter.SubmitSample(submitCtx, sample)
	if err != nil {
		log.Warn("failed to submit sample, will retry with the next one", "error", err)
		return
	}
	if resp.Status != common.StatusSuccess || resp.Unparsed {
		return
	}

	s.engine.RecordAnalysis(metrics.Analysis{
		PulseMA:        resp.PulseMA,
		MovementMA:     resp.MovementMA,
		IsPulseAnomaly: resp.IsPulseAnomaly,
	})
}

// Close stops the sample emission
func (s *simulator) Close() {
	s.mutCancel.Lock()
	defer s.mutCancel.Unlock()

	if s.cancel == nil {
		return
	}

	s.cancel()
	s.cancel = nil
}

// IsInterfaceNil returns true if the value under the interface is nil
func (s *simulator) IsInterfaceNil() bool {
	return s == nil
}
