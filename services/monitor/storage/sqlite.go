package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	logger "github.com/multiversx/mx-chain-logger-go"
	"github.com/telerehab/rehab-monitoring/services/monitor/common"
)

var log = logger.GetOrCreate("storage")

// PrefKeyPatientID is the preference slot holding the saved patient identifier,
// read at startup to skip re-entry
const PrefKeyPatientID = "patientId"

// sqliteStorage is the sqlite implementation for the local preference store and
// the offline sample cache
type sqliteStorage struct {
	db               *sql.DB
	retentionSeconds int
	cancelFunc       context.CancelFunc
	wg               sync.WaitGroup
}

// NewSQLiteStorage creates the database, schema, and starts the retention cleaner
func NewSQLiteStorage(dbPath string, retentionSeconds int) (*sqliteStorage, error) {
	err := prepareDirectories(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create initial empty DB file: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// a single connection keeps writes serialized and makes in-memory databases usable
	db.SetMaxOpenConns(1)

	err = createSchema(db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &sqliteStorage{
		db:               db,
		retentionSeconds: retentionSeconds,
		cancelFunc:       cancel,
	}

	s.startRetentionCleaner(ctx)

	return s, nil
}

func prepareDirectories(dbPath string) error {
	return os.MkdirAll(filepath.Dir(dbPath), os.ModePerm)
}

func createSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS preferences (
		key   TEXT NOT NULL PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS samples (
		patient_id   TEXT    NOT NULL,
		recorded_at  INTEGER NOT NULL,
		timestamp    TEXT    NOT NULL,
		pulse        INTEGER NOT NULL,
		movement     REAL    NOT NULL,
		sleep_score  REAL    NOT NULL,
		joint_angles TEXT    NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_samples_patient ON samples(patient_id);
	CREATE INDEX IF NOT EXISTS idx_samples_recorded_at ON samples(recorded_at);
	`

	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

// SetPreference upserts one key-value preference pair
func (s *sqliteStorage) SetPreference(ctx context.Context, key string, value string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO preferences (key, value)
		VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value=excluded.value
	`, key, value)

	return err
}

// GetPreference returns the stored value for the key, or empty when not set
func (s *sqliteStorage) GetPreference(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx, "SELECT value FROM preferences WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", err
	}

	return value, nil
}

// SaveSample caches one sample locally. The recorded_at column mirrors the sample
// timestamp, defaulting to the wall clock when the timestamp does not parse
func (s *sqliteStorage) SaveSample(ctx context.Context, sample common.MetricSample) error {
	recordedAt := time.Now().Unix()
	parsed, err := time.Parse(time.RFC3339, sample.Timestamp)
	if err == nil {
		recordedAt = parsed.Unix()
	}

	jointAngles, err := json.Marshal(sample.JointAngles)
	if err != nil {
		return fmt.Errorf("failed to marshal joint angles: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO samples (patient_id, recorded_at, timestamp, pulse, movement, sleep_score, joint_angles)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, sample.PatientID, recordedAt, sample.Timestamp, sample.Pulse, sample.MovementMagnitude,
		sample.SleepQualityScore, string(jointAngles))
	if err != nil {
		return fmt.Errorf("failed to insert sample: %w", err)
	}

	return nil
}

// GetRecentSamples returns up to limit cached samples for the patient, oldest first
func (s *sqliteStorage) GetRecentSamples(ctx context.Context, patientID string, limit int) ([]common.MetricSample, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT timestamp, pulse, movement, sleep_score, joint_angles
		FROM samples
		WHERE patient_id = ?
		ORDER BY recorded_at DESC
		LIMIT ?
	`, patientID, limit)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var newestFirst []common.MetricSample
	for rows.Next() {
		sample := common.MetricSample{PatientID: patientID}
		var jointAngles string

		err = rows.Scan(&sample.Timestamp, &sample.Pulse, &sample.MovementMagnitude,
			&sample.SleepQualityScore, &jointAngles)
		if err != nil {
			return nil, err
		}

		err = json.Unmarshal([]byte(jointAngles), &sample.JointAngles)
		if err != nil {
			return nil, fmt.Errorf("failed to decode joint angles: %w", err)
		}

		newestFirst = append(newestFirst, sample)
	}
	err = rows.Err()
	if err != nil {
		return nil, err
	}

	out := make([]common.MetricSample, 0, len(newestFirst))
	for i := len(newestFirst) - 1; i >= 0; i-- {
		out = append(out, newestFirst[i])
	}

	return out, nil
}

func (s *sqliteStorage) cleanRetainedSamples(ctx context.Context) error {
	nowSec := time.Now().Unix()
	cutoff := nowSec - int64(s.retentionSeconds)
	_, err := s.db.ExecContext(ctx, "DELETE FROM samples WHERE recorded_at < ?", cutoff)
	return err
}

func (s *sqliteStorage) startRetentionCleaner(ctx context.Context) {
	s.wg.Add(1)

	// max(RetentionSeconds/10, 60)
	intervalSec := s.retentionSeconds / 10
	if intervalSec < 60 {
		intervalSec = 60
	}

	ticker := time.NewTicker(time.Duration(intervalSec) * time.Second)

	go func() {
		defer s.wg.Done()
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				log.Debug("running retention cleanup")

				err := s.cleanRetainedSamples(ctx)
				if err != nil {
					log.Warn("failed to cleanup retained samples", "error", err)
				}
			}
		}
	}()
}

// Close closes the database and stops background routines
func (s *sqliteStorage) Close() error {
	s.cancelFunc()
	s.wg.Wait()
	return s.db.Close()
}

// IsInterfaceNil returns true if the value under the interface is nil
func (s *sqliteStorage) IsInterfaceNil() bool {
	return s == nil
}
