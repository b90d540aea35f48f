package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/grabsim/internal/grab"
	"github.com/san-kum/grabsim/internal/physics"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Scenario != "pickup" {
		t.Errorf("expected scenario pickup, got %s", cfg.Scenario)
	}
	if cfg.Dt <= 0 || cfg.PhysicsDt <= 0 {
		t.Error("dt should be positive")
	}
	if cfg.Duration <= 0 {
		t.Error("duration should be positive")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("expected default config to validate, got %v", err)
	}
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "grabsim.yaml")
	cfg := DefaultConfig()
	cfg.Scenario = "throw"
	cfg.Hand.Trigger = grab.TriggerToggle
	cfg.Hand.Throw.TakePeak = true
	cfg.Settings.LineGrabTriggerLoose = true

	if err := Save(path, cfg); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if loaded.Scenario != "throw" {
		t.Errorf("expected scenario throw, got %s", loaded.Scenario)
	}
	if loaded.Hand.Trigger != grab.TriggerToggle {
		t.Errorf("expected toggle trigger, got %s", loaded.Hand.Trigger)
	}
	if !loaded.Hand.Throw.TakePeak || !loaded.Settings.LineGrabTriggerLoose {
		t.Error("expected flags to survive a round trip")
	}
	if loaded.Hand.Pulling == nil || loaded.Hand.Pulling.XMotion != physics.MotionFree {
		t.Errorf("expected soft pulling profile, got %+v", loaded.Hand.Pulling)
	}
}

func TestLoadNamedEnums(t *testing.T) {
	path := filepath.Join(t.TempDir(), "grabsim.yaml")
	data := []byte(`
scenario: line-slide
duration: 2
hand:
  trigger: manual_release
settings:
  line_joint:
    x_motion: limited
    linear_limit: 0.2
`)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Hand.Trigger != grab.TriggerManualRelease {
		t.Errorf("expected manual_release, got %s", cfg.Hand.Trigger)
	}
	if cfg.Settings.LineJoint.XMotion != physics.MotionLimited || cfg.Settings.LineJoint.LinearLimit != 0.2 {
		t.Errorf("expected limited line joint, got %+v", cfg.Settings.LineJoint)
	}
	if cfg.Dt != DefaultDt {
		t.Errorf("expected default dt to be kept, got %f", cfg.Dt)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"negative duration", "duration: -1\n"},
		{"zero physics dt", "physics_dt: 0\n"},
		{"zero grab speed", "hand:\n  hand_grab_speed: 0\n"},
		{"negative angle weight", "hand:\n  angle_weight: -2\n"},
	}
	for _, tt := range tests {
		path := filepath.Join(t.TempDir(), "bad.yaml")
		if err := os.WriteFile(path, []byte(tt.yaml), 0644); err != nil {
			t.Fatal(err)
		}
		if _, err := Load(path); !errors.Is(err, grab.ErrInvalidConfig) {
			t.Errorf("%s: expected ErrInvalidConfig, got %v", tt.name, err)
		}
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestApply(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Hand.AllowSwap = true
	cfg.Hand.VelocityCount = 0
	j := Joints["stiff"]
	cfg.Settings.DefaultJoint = &j

	hc := grab.DefaultHandConfig(grab.Left, "hand/left")
	cfg.Hand.Apply(&hc)
	if !hc.AllowSwap {
		t.Error("expected swap to be applied")
	}
	if hc.VelocityCount == 0 {
		t.Error("expected zero velocity count to keep the hand default")
	}
	if hc.PullingSettings == cfg.Hand.Pulling {
		t.Error("expected pulling profile to be copied")
	}

	s := grab.DefaultSettings()
	cfg.Settings.Apply(s)
	if s.DefaultJoint.XDrive.Spring != j.XDrive.Spring {
		t.Errorf("expected stiff default joint, got %+v", s.DefaultJoint.XDrive)
	}
}

func TestGetPreset(t *testing.T) {
	cfg := GetPreset("throw", "peak")
	if cfg == nil {
		t.Fatal("expected preset, got nil")
	}
	if !cfg.Hand.Throw.TakePeak || cfg.Scenario != "throw" {
		t.Errorf("expected peak throw preset, got %+v", cfg.Hand.Throw)
	}
	if other := GetPreset("throw", "default"); other.Hand.Throw.TakePeak {
		t.Error("expected presets not to share state")
	}
	if cfg := GetPreset("physics", "zero-g"); cfg.Gravity != 0 || cfg.Scenario != "pickup" {
		t.Errorf("expected zero gravity on the default scenario, got %f %s", cfg.Gravity, cfg.Scenario)
	}
}

func TestGetPreset_NotFound(t *testing.T) {
	if cfg := GetPreset("throw", "nonexistent"); cfg != nil {
		t.Error("expected nil for nonexistent preset")
	}
	if cfg := GetPreset("nonexistent", "default"); cfg != nil {
		t.Error("expected nil for nonexistent scenario")
	}
}

func TestListPresets(t *testing.T) {
	presets := ListPresets("pickup")
	if len(presets) == 0 {
		t.Error("expected presets for pickup")
	}
	for i := 1; i < len(presets); i++ {
		if presets[i-1] > presets[i] {
			t.Errorf("expected sorted names, got %v", presets)
		}
	}
	if ListPresets("nonexistent") != nil {
		t.Error("expected nil for nonexistent scenario")
	}
	for scenario := range Presets {
		for _, name := range ListPresets(scenario) {
			if err := GetPreset(scenario, name).Validate(); err != nil {
				t.Errorf("%s/%s: %v", scenario, name, err)
			}
		}
	}
	if len(ListJoints()) != len(Joints) {
		t.Error("expected every joint profile listed")
	}
}

func TestSetParam(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.SetParam("hand_grab_speed", 4); err != nil {
		t.Fatal(err)
	}
	if cfg.Hand.HandGrabSpeed != 4 {
		t.Errorf("expected hand grab speed 4, got %f", cfg.Hand.HandGrabSpeed)
	}
	if err := cfg.SetParam("throw_lookback", 2.6); err != nil {
		t.Fatal(err)
	}
	if cfg.Hand.Throw.Lookback != 3 {
		t.Errorf("expected lookback 3, got %d", cfg.Hand.Throw.Lookback)
	}
	if err := cfg.SetParam("warp", 1); err == nil {
		t.Error("expected error for unknown parameter")
	}
	if len(ListParams()) != len(params) {
		t.Error("expected every parameter to be listed")
	}
}
