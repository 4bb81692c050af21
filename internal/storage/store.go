package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/san-kum/springsim/internal/config"
	"github.com/san-kum/springsim/internal/dynamo"
	"github.com/san-kum/springsim/internal/physics"
	"github.com/san-kum/springsim/internal/sim"
)

const (
	metadataFile = "metadata.json"
	framesFile   = "frames.csv"
	configFile   = "config.yaml"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

func (s *Store) RunDir(runID string) string {
	return filepath.Join(s.baseDir, runID)
}

type RunMetadata struct {
	ID          string             `json:"id"`
	World       string             `json:"world"`
	Preset      string             `json:"preset,omitempty"`
	Timestamp   time.Time          `json:"timestamp"`
	Integrator  string             `json:"integrator"`
	Dt          float64            `json:"dt"`
	Substeps    int                `json:"substeps"`
	Frames      int                `json:"frames"`
	Balls       int                `json:"balls"`
	Springs     int                `json:"springs"`
	StepsTaken  int                `json:"steps_taken"`
	EnergyDrift float64            `json:"energy_drift"`
	Errors      []string           `json:"errors,omitempty"`
	Metrics     map[string]float64 `json:"metrics"`
}

// Save writes a new run directory holding meta and the recorded frames and
// returns its ID. Fields of meta derived from result are overwritten.
// Non-finite metrics are left out and noted in meta.Errors. On failure the
// run directory is removed.
func (s *Store) Save(meta RunMetadata, result *sim.Result) (runID string, err error) {
	if err := s.Init(); err != nil {
		return "", err
	}
	now := time.Now()
	runID, err = s.reserve(meta.World, now)
	if err != nil {
		return "", err
	}
	runDir := s.RunDir(runID)
	defer func() {
		if err != nil {
			_ = os.RemoveAll(runDir)
		}
	}()

	meta.ID = runID
	meta.Timestamp = now
	meta.Frames = len(result.Frames)
	meta.StepsTaken = result.StepsTaken
	meta.EnergyDrift = result.EnergyDrift
	meta.Errors = nil
	for _, e := range result.Errors {
		meta.Errors = append(meta.Errors, e.Error())
	}
	meta.Metrics = make(map[string]float64, len(result.Metrics))
	names := make([]string, 0, len(result.Metrics))
	for name := range result.Metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		v := result.Metrics[name]
		if math.IsNaN(v) || math.IsInf(v, 0) {
			meta.Errors = append(meta.Errors, fmt.Sprintf("metric %s: not finite (%v)", name, v))
			continue
		}
		meta.Metrics[name] = v
	}

	if err := writeMetadata(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", err
	}
	if err := writeFramesFile(filepath.Join(runDir, framesFile), result.Frames); err != nil {
		return "", err
	}
	return runID, nil
}

func writeMetadata(path string, meta RunMetadata) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

func writeFramesFile(path string, frames []sim.FrameRecord) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	w := csv.NewWriter(f)
	if err := writeFrames(w, frames); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}

// reserve creates a fresh run directory named after world and the current
// time, adding a suffix when two runs land in the same millisecond.
func (s *Store) reserve(world string, now time.Time) (string, error) {
	if world == "" {
		world = "run"
	}
	base := fmt.Sprintf("%s_%d", world, now.UnixMilli())
	runID := base
	for i := 1; ; i++ {
		err := os.Mkdir(s.RunDir(runID), 0755)
		if err == nil {
			return runID, nil
		}
		if !errors.Is(err, fs.ErrExist) {
			return "", err
		}
		runID = fmt.Sprintf("%s_%d", base, i)
	}
}

func writeFrames(w *csv.Writer, frames []sim.FrameRecord) error {
	if len(frames) == 0 {
		return nil
	}

	header := []string{"time", "kinetic", "potential"}
	for i := range frames[0].Positions {
		header = append(header, fmt.Sprintf("x%d", i), fmt.Sprintf("y%d", i))
	}
	if err := w.Write(header); err != nil {
		return err
	}

	for _, f := range frames {
		row := []string{
			formatFloat(f.Time),
			formatFloat(f.Energy.Kinetic),
			formatFloat(f.Energy.Potential),
		}
		for _, p := range f.Positions {
			row = append(row, formatFloat(p.X), formatFloat(p.Y))
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// SaveConfig stores the configuration a run was made with next to its frames.
func (s *Store) SaveConfig(runID string, cfg *config.Config) error {
	return config.Save(filepath.Join(s.RunDir(runID), configFile), cfg)
}

func (s *Store) LoadConfig(runID string) (*config.Config, error) {
	return config.Load(filepath.Join(s.RunDir(runID), configFile))
}

// List returns every readable run, newest first.
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
			continue
		}
		runs = append(runs, *meta)
	}

	sort.SliceStable(runs, func(i, j int) bool {
		return runs[i].Timestamp.After(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.RunDir(runID), metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}

	return &meta, nil
}

func (s *Store) LoadFrames(runID string) ([]sim.FrameRecord, error) {
	file, err := os.Open(filepath.Join(s.RunDir(runID), framesFile))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return []sim.FrameRecord{}, nil
	}

	cols := len(records[0])
	if cols < 3 || (cols-3)%2 != 0 {
		return nil, fmt.Errorf("%s: unexpected header with %d columns", framesFile, cols)
	}
	balls := (cols - 3) / 2

	frames := make([]sim.FrameRecord, 0, len(records)-1)
	for i, record := range records[1:] {
		vals := make([]float64, len(record))
		for j, field := range record {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("%s line %d: %w", framesFile, i+2, err)
			}
			vals[j] = v
		}

		rec := sim.FrameRecord{
			Frame:     i,
			Time:      vals[0],
			Energy:    physics.Energy{Kinetic: vals[1], Potential: vals[2]},
			Positions: make([]dynamo.Vec2, balls),
		}
		for b := 0; b < balls; b++ {
			rec.Positions[b] = dynamo.V(vals[3+2*b], vals[4+2*b])
		}
		frames = append(frames, rec)
	}

	return frames, nil
}
