package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/san-kum/grabsim/internal/config"
	"github.com/san-kum/grabsim/internal/grab"
	"github.com/san-kum/grabsim/internal/sim"
)

const (
	metadataFile = "metadata.json"
	samplesFile  = "samples.csv"
	eventsFile   = "events.csv"
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

type RunMetadata struct {
	ID           string             `json:"id"`
	Name         string             `json:"name,omitempty"`
	Scenario     string             `json:"scenario"`
	Timestamp    time.Time          `json:"timestamp"`
	Seed         int64              `json:"seed"`
	Dt           float64            `json:"dt"`
	PhysicsDt    float64            `json:"physics_dt"`
	Duration     float64            `json:"duration"`
	Frames       int                `json:"frames"`
	PhysicsSteps int                `json:"physics_steps"`
	Events       int                `json:"events"`
	Errors       []string           `json:"errors,omitempty"`
	Metrics      map[string]float64 `json:"metrics"`
}

func newMetadata(name string, cfg *config.Config, result *sim.Result) RunMetadata {
	meta := RunMetadata{
		ID:           uuid.NewString(),
		Name:         name,
		Scenario:     cfg.Scenario,
		Timestamp:    time.Now(),
		Seed:         cfg.Seed,
		Dt:           cfg.Dt,
		PhysicsDt:    cfg.PhysicsDt,
		Duration:     cfg.Duration,
		Frames:       result.Frames,
		PhysicsSteps: result.PhysicsSteps,
		Events:       len(result.Events),
		Metrics:      result.Metrics,
	}
	for _, err := range result.Errors {
		meta.Errors = append(meta.Errors, err.Error())
	}
	return meta
}

// Save writes a run under a fresh id and returns the id. name is an
// optional label.
func (s *Store) Save(name string, cfg *config.Config, result *sim.Result) (string, error) {
	meta := newMetadata(name, cfg, result)
	runDir := filepath.Join(s.baseDir, meta.ID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", err
	}
	if err := writeCSV(filepath.Join(runDir, samplesFile), sampleRows(result.Samples)); err != nil {
		return "", err
	}
	if err := writeCSV(filepath.Join(runDir, eventsFile), eventRows(result.Events)); err != nil {
		return "", err
	}

	return meta.ID, nil
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeCSV(path string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return writeRows(f, rows)
}

func writeRows(w io.Writer, rows [][]string) error {
	cw := csv.NewWriter(w)
	if err := cw.WriteAll(rows); err != nil {
		return err
	}
	return cw.Error()
}

// WriteSamplesCSV writes samples in the samples.csv layout.
func WriteSamplesCSV(w io.Writer, samples []sim.Sample) error {
	return writeRows(w, sampleRows(samples))
}

func WriteEventsCSV(w io.Writer, events []sim.EventRecord) error {
	return writeRows(w, eventRows(events))
}

func ff(v float64) string { return strconv.FormatFloat(v, 'f', 6, 64) }

var sampleHeader = []string{"time", "frame", "entity", "id", "state", "held", "x", "y", "z", "speed", "flag", "constraints"}

// sampleRows flattens samples: one frame row, then one row per hand and
// per target.
func sampleRows(samples []sim.Sample) [][]string {
	rows := [][]string{sampleHeader}
	for _, s := range samples {
		t, fr := ff(s.Time), strconv.Itoa(s.Frame)
		rows = append(rows, []string{t, fr, "frame", "", "", "", "", "", "", "", "", strconv.Itoa(s.Constraints)})
		for _, h := range s.Hands {
			rows = append(rows, []string{
				t, fr, "hand", h.Side.String(), h.State.String(), h.Held,
				ff(h.Position.X()), ff(h.Position.Y()), ff(h.Position.Z()), ff(h.Speed),
				strconv.FormatBool(h.Pulling), strconv.FormatBool(h.Constraint),
			})
		}
		for _, tg := range s.Targets {
			rows = append(rows, []string{
				t, fr, "target", tg.ID, "", "",
				ff(tg.Position.X()), ff(tg.Position.Y()), ff(tg.Position.Z()), ff(tg.Speed),
				strconv.FormatBool(tg.Kinematic), "",
			})
		}
	}
	return rows
}

var eventHeader = []string{"time", "kind", "side", "target", "speed", "error"}

func eventRows(events []sim.EventRecord) [][]string {
	rows := [][]string{eventHeader}
	for _, e := range events {
		rows = append(rows, []string{ff(e.Time), e.Kind, e.Side, e.Target, ff(e.Speed), e.Err})
	}
	return rows
}

// List returns stored runs, newest first.
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

	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.After(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}

	return &meta, nil
}

func readCSV(path string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1
	return r.ReadAll()
}

func parseVec(rec []string) (x, y, z, speed float64, err error) {
	vals := make([]float64, 4)
	for i := range vals {
		if vals[i], err = strconv.ParseFloat(rec[6+i], 64); err != nil {
			return
		}
	}
	return vals[0], vals[1], vals[2], vals[3], nil
}

// LoadSamples rebuilds the per-frame samples of a stored run.
func (s *Store) LoadSamples(runID string) ([]sim.Sample, error) {
	records, err := readCSV(filepath.Join(s.baseDir, runID, samplesFile))
	if err != nil {
		return nil, err
	}

	samples := make([]sim.Sample, 0)
	for i := 1; i < len(records); i++ {
		rec := records[i]
		if len(rec) != len(sampleHeader) {
			return nil, fmt.Errorf("%s line %d: expected %d fields, got %d", samplesFile, i+1, len(sampleHeader), len(rec))
		}

		if rec[2] == "frame" {
			t, err := strconv.ParseFloat(rec[0], 64)
			if err != nil {
				return nil, fmt.Errorf("%s line %d: %w", samplesFile, i+1, err)
			}
			fr, _ := strconv.Atoi(rec[1])
			c, _ := strconv.Atoi(rec[11])
			samples = append(samples, sim.Sample{Time: t, Frame: fr, Constraints: c})
			continue
		}
		if len(samples) == 0 {
			return nil, fmt.Errorf("%s line %d: %s row before any frame", samplesFile, i+1, rec[2])
		}
		cur := &samples[len(samples)-1]

		x, y, z, speed, err := parseVec(rec)
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %w", samplesFile, i+1, err)
		}
		flag, _ := strconv.ParseBool(rec[10])

		switch rec[2] {
		case "hand":
			h := sim.HandSample{Held: rec[5], Speed: speed, Pulling: flag}
			h.Position[0], h.Position[1], h.Position[2] = x, y, z
			if err := h.Side.UnmarshalText([]byte(rec[3])); err != nil {
				return nil, err
			}
			if err := h.State.UnmarshalText([]byte(rec[4])); err != nil {
				return nil, err
			}
			h.Constraint, _ = strconv.ParseBool(rec[11])
			cur.Hands = append(cur.Hands, h)
		case "target":
			tg := sim.TargetSample{ID: rec[3], Speed: speed, Kinematic: flag}
			tg.Position[0], tg.Position[1], tg.Position[2] = x, y, z
			cur.Targets = append(cur.Targets, tg)
		default:
			return nil, fmt.Errorf("%s line %d: unknown entity %q", samplesFile, i+1, rec[2])
		}
	}

	return samples, nil
}

func (s *Store) LoadEvents(runID string) ([]sim.EventRecord, error) {
	records, err := readCSV(filepath.Join(s.baseDir, runID, eventsFile))
	if err != nil {
		return nil, err
	}

	events := make([]sim.EventRecord, 0, len(records))
	for i := 1; i < len(records); i++ {
		rec := records[i]
		if len(rec) != len(eventHeader) {
			continue
		}
		t, err := strconv.ParseFloat(rec[0], 64)
		if err != nil {
			continue
		}
		speed, _ := strconv.ParseFloat(rec[4], 64)
		events = append(events, sim.EventRecord{Time: t, Kind: rec[1], Side: rec[2], Target: rec[3], Speed: speed, Err: rec[5]})
	}

	return events, nil
}

// HandSpeeds returns the time series of one hand's speed.
func HandSpeeds(samples []sim.Sample, side grab.Side) (times, speeds []float64) {
	for _, s := range samples {
		if h, ok := s.Hand(side); ok {
			times = append(times, s.Time)
			speeds = append(speeds, h.Speed)
		}
	}
	return
}

// TargetSpeeds returns the time series of one target's speed.
func TargetSpeeds(samples []sim.Sample, id string) (times, speeds []float64) {
	for _, s := range samples {
		if t, ok := s.Target(id); ok {
			times = append(times, s.Time)
			speeds = append(speeds, t.Speed)
		}
	}
	return
}
