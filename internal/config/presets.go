package config

import (
	"sort"

	"github.com/san-kum/grabsim/internal/grab"
	"github.com/san-kum/grabsim/internal/physics"
)

var Joints = map[string]physics.JointSettings{
	"rigid": physics.Rigid(),
	"soft": physics.Soft(
		physics.Drive{Spring: 800, Damper: 60, MaxForce: 400},
		physics.Drive{Spring: 600, Damper: 40, MaxForce: 200},
	),
	"loose": physics.Soft(
		physics.Drive{Spring: 200, Damper: 30, MaxForce: 100},
		physics.Drive{Spring: 150, Damper: 20, MaxForce: 50},
	),
	"stiff": physics.Soft(
		physics.Drive{Spring: 4000, Damper: 200, MaxForce: 2000},
		physics.Drive{Spring: 3000, Damper: 150, MaxForce: 1000},
	),
}

// Presets tweak the default configuration per scenario.
var Presets = map[string]map[string]func(*Config){
	"pickup": {
		"default": func(c *Config) {},
		"hand-grabs": func(c *Config) {
			c.Hand.HandGrabs = true
		},
		"loose-pull": func(c *Config) {
			j := Joints["loose"]
			c.Hand.Pulling = &j
			c.Duration = 4
		},
		"stiff-pull": func(c *Config) {
			j := Joints["stiff"]
			c.Hand.Pulling = &j
		},
	},
	"throw": {
		"default": func(c *Config) {},
		"peak": func(c *Config) {
			c.Hand.Throw.TakePeak = true
		},
		"short-window": func(c *Config) {
			c.Hand.Throw.Lookback = 2
		},
		"boosted": func(c *Config) {
			c.Hand.Throw.VelocityFactor = 0.5
			c.Hand.Throw.AngularConversionFactor = 2
		},
	},
	"toggle": {
		"default": func(c *Config) {
			c.Hand.Trigger = grab.TriggerToggle
		},
	},
	"line-slide": {
		"default": func(c *Config) {},
		"trigger-loose": func(c *Config) {
			c.Settings.LineGrabTriggerLoose = true
		},
		"soft-line": func(c *Config) {
			j := Joints["soft"]
			c.Settings.LineJoint = &j
		},
	},
	"two-hand": {
		"default": func(c *Config) {},
		"swap": func(c *Config) {
			c.Hand.AllowSwap = true
		},
	},
	"physics": {
		"fine": func(c *Config) {
			c.PhysicsDt = 1.0 / 180
		},
		"coarse": func(c *Config) {
			c.Dt = 1.0 / 60
			c.PhysicsDt = 1.0 / 50
		},
		"zero-g": func(c *Config) {
			c.Gravity = 0
		},
	},
}

// GetPreset returns a fresh default configuration with the preset applied,
// or nil when the preset does not exist.
func GetPreset(scenario, preset string) *Config {
	scenarioPresets, ok := Presets[scenario]
	if !ok {
		return nil
	}
	apply, ok := scenarioPresets[preset]
	if !ok {
		return nil
	}
	cfg := DefaultConfig()
	if scenario != "physics" {
		cfg.Scenario = scenario
	}
	apply(cfg)
	return cfg
}

func ListPresets(scenario string) []string {
	scenarioPresets, ok := Presets[scenario]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(scenarioPresets))
	for name := range scenarioPresets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func ListJoints() []string {
	names := make([]string, 0, len(Joints))
	for name := range Joints {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
