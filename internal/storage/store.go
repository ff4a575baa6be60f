package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/san-kum/bikesim/internal/bicycle"
	"github.com/san-kum/bikesim/internal/config"
	"github.com/san-kum/bikesim/internal/sim"
)

const (
	metadataFile   = "metadata.json"
	statesFile     = "states.csv"
	trajectoryFile = "trajectory.csv"
)

// Store keeps one directory per run under baseDir.
type Store struct {
	baseDir string
	log     zerolog.Logger
}

func New(baseDir string, log zerolog.Logger) *Store {
	return &Store{baseDir: baseDir, log: log}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

func (s *Store) Dir(runID string) string {
	return filepath.Join(s.baseDir, runID)
}

type RunMetadata struct {
	ID         string             `json:"id"`
	Model      string             `json:"model"`
	Timestamp  time.Time          `json:"timestamp"`
	Seed       uint64             `json:"seed"`
	Randomize  bool               `json:"randomize"`
	Dt         float64            `json:"dt"`
	Duration   float64            `json:"duration"`
	Steps      int                `json:"steps"`
	Controller string             `json:"controller"`
	Goal       *bicycle.Point     `json:"goal,omitempty"`
	Constants  bicycle.Constants  `json:"constants"`
	Metrics    map[string]float64 `json:"metrics"`
	Errors     []string           `json:"errors,omitempty"`
}

// NewMetadata describes result as produced under cfg. ID and Timestamp are
// filled in by Save.
func NewMetadata(cfg *config.Config, result *sim.Result) RunMetadata {
	meta := RunMetadata{
		Model:      cfg.Model,
		Seed:       cfg.Seed,
		Randomize:  cfg.Randomize,
		Dt:         cfg.Constants.TimeStep,
		Duration:   float64(result.StepsTaken) * cfg.Constants.TimeStep,
		Steps:      result.StepsTaken,
		Controller: cfg.Controller,
		Goal:       cfg.Goal,
		Constants:  cfg.Constants,
		Metrics:    make(map[string]float64, len(result.Metrics)),
	}
	// JSON has no Inf or NaN.
	for name, v := range result.Metrics {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			meta.Metrics[name] = v
		}
	}
	for _, err := range result.Errors {
		meta.Errors = append(meta.Errors, err.Error())
	}
	return meta
}

// Save writes metadata.json, states.csv and, when anything was recorded,
// trajectory.csv into a fresh run directory and returns its id.
func (s *Store) Save(cfg *config.Config, result *sim.Result) (string, error) {
	meta := NewMetadata(cfg, result)
	meta.ID = fmt.Sprintf("%s_%s", cfg.Model, uuid.NewString()[:8])
	meta.Timestamp = time.Now().UTC()

	runDir := s.Dir(meta.ID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	if err := writeFile(filepath.Join(runDir, metadataFile), func(f *os.File) error {
		enc := json.NewEncoder(f)
		enc.SetIndent("", "  ")
		return enc.Encode(meta)
	}); err != nil {
		return "", err
	}

	if err := writeFile(filepath.Join(runDir, statesFile), func(f *os.File) error {
		return WriteStatesCSV(f, result)
	}); err != nil {
		return "", err
	}

	if len(result.Trajectory.Rear) > 0 {
		if err := writeFile(filepath.Join(runDir, trajectoryFile), func(f *os.File) error {
			return WriteTrajectoryCSV(f, result.Trajectory)
		}); err != nil {
			return "", err
		}
	}

	s.log.Info().Str("run", meta.ID).Str("dir", runDir).Int("steps", meta.Steps).Msg("run saved")
	return meta.ID, nil
}

func writeFile(path string, fill func(f *os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := fill(f); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	return f.Close()
}

// List returns every readable run, oldest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		meta, err := s.Load(entry.Name())
		if err != nil {
			s.log.Debug().Err(err).Str("dir", entry.Name()).Msg("skipping unreadable run")
			continue
		}

		runs = append(runs, *meta)
	}

	sort.SliceStable(runs, func(i, j int) bool { return runs[i].Timestamp.Before(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.Dir(runID), metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}

	return &meta, nil
}

// LoadStates returns the sensor vectors and their times.
func (s *Store) LoadStates(runID string) ([][]float64, []float64, error) {
	f, err := os.Open(filepath.Join(s.Dir(runID), statesFile))
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	res, err := ReadStatesCSV(f)
	if err != nil {
		return nil, nil, err
	}
	states := make([][]float64, len(res.States))
	for i, x := range res.States {
		states[i] = x
	}
	return states, res.Times, nil
}

// LoadTrajectory returns the recorded wheel contacts. A run saved without
// recording has an empty track.
func (s *Store) LoadTrajectory(runID string) (sim.Track, error) {
	f, err := os.Open(filepath.Join(s.Dir(runID), trajectoryFile))
	if errors.Is(err, os.ErrNotExist) {
		return sim.Track{}, nil
	}
	if err != nil {
		return sim.Track{}, err
	}
	defer f.Close()
	return ReadTrajectoryCSV(f)
}

// LoadResult rebuilds a result from the run directory.
func (s *Store) LoadResult(runID string) (*RunMetadata, *sim.Result, error) {
	meta, err := s.Load(runID)
	if err != nil {
		return nil, nil, err
	}

	f, err := os.Open(filepath.Join(s.Dir(runID), statesFile))
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	res, err := ReadStatesCSV(f)
	if err != nil {
		return nil, nil, err
	}
	res.Metrics = meta.Metrics
	res.StepsTaken = meta.Steps

	if res.Trajectory, err = s.LoadTrajectory(runID); err != nil {
		return nil, nil, err
	}
	return meta, res, nil
}
