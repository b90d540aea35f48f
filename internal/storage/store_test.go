package storage

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/san-kum/grabsim/internal/config"
	"github.com/san-kum/grabsim/internal/grab"
	"github.com/san-kum/grabsim/internal/sim"
)

func testResult() *sim.Result {
	return &sim.Result{
		Samples: []sim.Sample{
			{
				Time:    0.1,
				Frame:   0,
				Hands:   []sim.HandSample{{Side: grab.Right, State: grab.Idle, Position: mgl64.Vec3{0, 1, 0}}},
				Targets: []sim.TargetSample{{ID: "ball", Position: mgl64.Vec3{0, 0.5, 0}}},
			},
			{
				Time:        0.2,
				Frame:       1,
				Constraints: 1,
				Hands:       []sim.HandSample{{Side: grab.Right, State: grab.Held, Held: "ball", Position: mgl64.Vec3{0, 1, 0.1}, Speed: 1.5, Constraint: true}},
				Targets:     []sim.TargetSample{{ID: "ball", Position: mgl64.Vec3{0, 1, 0.1}, Speed: 1.5}},
			},
		},
		Events: []sim.EventRecord{
			{Time: 0.2, Kind: "grabbed", Side: "right", Target: "ball"},
			{Time: 0.3, Kind: "thrown", Side: "right", Target: "ball", Speed: 2.25},
		},
		Metrics:      map[string]float64{"peak_throw_speed": 2.25},
		Errors:       []error{errors.New("boom")},
		Frames:       2,
		PhysicsSteps: 4,
	}
}

func TestStoreSaveLoad(t *testing.T) {
	tmpDir := t.TempDir()
	st := New(tmpDir)

	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	cfg := config.DefaultConfig()
	cfg.Seed = 42
	runID, err := st.Save("first", cfg, testResult())
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	if _, err := uuid.Parse(runID); err != nil {
		t.Errorf("expected uuid run id, got %s", runID)
	}

	meta, err := st.Load(runID)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if meta.Scenario != "pickup" {
		t.Errorf("expected scenario 'pickup', got '%s'", meta.Scenario)
	}
	if meta.Name != "first" {
		t.Errorf("expected name 'first', got '%s'", meta.Name)
	}
	if meta.Seed != 42 {
		t.Errorf("expected seed 42, got %d", meta.Seed)
	}
	if meta.Frames != 2 || meta.PhysicsSteps != 4 || meta.Events != 2 {
		t.Errorf("expected 2 frames, 4 steps and 2 events, got %+v", meta)
	}
	if len(meta.Errors) != 1 || meta.Errors[0] != "boom" {
		t.Errorf("expected error 'boom', got %v", meta.Errors)
	}
	if meta.Metrics["peak_throw_speed"] != 2.25 {
		t.Errorf("expected peak speed 2.25, got %f", meta.Metrics["peak_throw_speed"])
	}
}

func TestStoreLoadSamples(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatal(err)
	}
	runID, err := st.Save("", config.DefaultConfig(), testResult())
	if err != nil {
		t.Fatal(err)
	}

	samples, err := st.LoadSamples(runID)
	if err != nil {
		t.Fatalf("load samples failed: %v", err)
	}
	if len(samples) != 2 {
		t.Fatalf("expected 2 samples, got %d", len(samples))
	}

	s := samples[1]
	if s.Frame != 1 || s.Constraints != 1 {
		t.Errorf("expected frame 1 with 1 constraint, got %d and %d", s.Frame, s.Constraints)
	}
	h, ok := s.Hand(grab.Right)
	if !ok {
		t.Fatal("expected right hand sample")
	}
	if h.State != grab.Held || h.Held != "ball" || !h.Constraint {
		t.Errorf("unexpected hand sample %+v", h)
	}
	if h.Position != (mgl64.Vec3{0, 1, 0.1}) || h.Speed != 1.5 {
		t.Errorf("expected position {0 1 0.1} at speed 1.5, got %v at %f", h.Position, h.Speed)
	}
	if tg, ok := s.Target("ball"); !ok || tg.Speed != 1.5 {
		t.Errorf("expected ball sample at speed 1.5, got %+v", tg)
	}

	events, err := st.LoadEvents(runID)
	if err != nil {
		t.Fatalf("load events failed: %v", err)
	}
	if diff := cmp.Diff(testResult().Events, events); diff != "" {
		t.Errorf("events mismatch (-want +got):\n%s", diff)
	}
}

func TestStoreList(t *testing.T) {
	tmpDir := t.TempDir()
	st := New(tmpDir)

	runs, err := st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("expected 0 runs, got %d", len(runs))
	}

	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}
	for i := 0; i < 2; i++ {
		if _, err := st.Save("", config.DefaultConfig(), &sim.Result{}); err != nil {
			t.Fatalf("save failed: %v", err)
		}
	}
	if err := os.Mkdir(filepath.Join(tmpDir, "junk"), 0755); err != nil {
		t.Fatal(err)
	}

	runs, err = st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 2 {
		t.Errorf("expected 2 runs, got %d", len(runs))
	}
	if len(runs) == 2 && runs[0].Timestamp.Before(runs[1].Timestamp) {
		t.Error("expected newest run first")
	}
}

func TestStoreFileStructure(t *testing.T) {
	tmpDir := t.TempDir()
	st := New(tmpDir)

	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	runID, err := st.Save("", config.DefaultConfig(), &sim.Result{})
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	for _, name := range []string{metadataFile, samplesFile, eventsFile} {
		if _, err := os.Stat(filepath.Join(tmpDir, runID, name)); os.IsNotExist(err) {
			t.Errorf("%s not created", name)
		}
	}

	samples, err := st.LoadSamples(runID)
	if err != nil {
		t.Fatalf("load samples failed: %v", err)
	}
	if len(samples) != 0 {
		t.Errorf("expected no samples, got %d", len(samples))
	}
}

func TestLoadSamplesRejectsOrphanRows(t *testing.T) {
	tmpDir := t.TempDir()
	runDir := filepath.Join(tmpDir, "bad")
	if err := os.MkdirAll(runDir, 0755); err != nil {
		t.Fatal(err)
	}
	body := "time,frame,entity,id,state,held,x,y,z,speed,flag,constraints\n" +
		"0.1,0,hand,right,idle,,0,0,0,0,false,false\n"
	if err := os.WriteFile(filepath.Join(runDir, samplesFile), []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := New(tmpDir).LoadSamples("bad"); err == nil {
		t.Error("expected error for hand row before a frame row")
	}
}

func TestSpeedSeries(t *testing.T) {
	samples := testResult().Samples
	times, speeds := HandSpeeds(samples, grab.Right)
	if len(times) != 2 || speeds[1] != 1.5 {
		t.Errorf("expected 2 hand speeds ending at 1.5, got %v", speeds)
	}
	if times, _ := HandSpeeds(samples, grab.Left); len(times) != 0 {
		t.Errorf("expected no left hand samples, got %d", len(times))
	}
	if _, speeds := TargetSpeeds(samples, "ball"); len(speeds) != 2 {
		t.Errorf("expected 2 ball speeds, got %d", len(speeds))
	}
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSON(&buf, config.DefaultConfig(), testResult()); err != nil {
		t.Fatal(err)
	}

	var data ExportData
	if err := json.Unmarshal(buf.Bytes(), &data); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if data.Frames != 2 || len(data.Times) != 2 {
		t.Errorf("expected 2 frames, got %d and %d times", data.Frames, len(data.Times))
	}
	if len(data.Hands) != 1 || data.Hands[0].Side != "right" {
		t.Fatalf("expected one right hand track, got %+v", data.Hands)
	}
	if data.Hands[0].States[1] != "held" || data.Hands[0].Held[1] != "ball" {
		t.Errorf("unexpected hand track %+v", data.Hands[0])
	}

	path := filepath.Join(t.TempDir(), "run.json")
	if err := ExportJSON(path, config.DefaultConfig(), testResult()); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("expected export file: %v", err)
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteEventsCSV(&buf, testResult().Events); err != nil {
		t.Fatal(err)
	}
	want := "time,kind,side,target,speed,error\n" +
		"0.200000,grabbed,right,ball,0.000000,\n" +
		"0.300000,thrown,right,ball,2.250000,\n"
	if buf.String() != want {
		t.Errorf("expected\n%s\ngot\n%s", want, buf.String())
	}

	buf.Reset()
	if err := WriteSamplesCSV(&buf, testResult().Samples); err != nil {
		t.Fatal(err)
	}
	// header, then frame + hand + target per sample
	if lines := bytes.Count(buf.Bytes(), []byte("\n")); lines != 7 {
		t.Errorf("expected 7 lines, got %d", lines)
	}
}
