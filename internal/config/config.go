package config

import (
	"fmt"
	"math"
	"os"
	"sort"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/grabsim/internal/grab"
	"github.com/san-kum/grabsim/internal/physics"
	"github.com/san-kum/grabsim/internal/sim"
	"github.com/san-kum/grabsim/internal/velocity"
	"gopkg.in/yaml.v3"
)

const (
	DefaultDt        = 1.0 / 90
	DefaultPhysicsDt = 1.0 / 90
	DefaultDuration  = 3.0
	DefaultGravity   = -9.81
)

type Config struct {
	Scenario  string         `yaml:"scenario"`
	Dt        float64        `yaml:"dt"`
	PhysicsDt float64        `yaml:"physics_dt"`
	Duration  float64        `yaml:"duration"`
	Seed      int64          `yaml:"seed"`
	Gravity   float64        `yaml:"gravity"`
	Hand      HandConfig     `yaml:"hand"`
	Settings  SettingsConfig `yaml:"settings"`
}

// HandConfig is the tunable part of grab.HandConfig. Geometry comes from
// the scenario.
type HandConfig struct {
	Trigger              grab.GrabTrigger       `yaml:"trigger"`
	HandGrabSpeed        float64                `yaml:"hand_grab_speed"`
	PullCompleteDistance float64                `yaml:"pull_complete_distance"`
	ParentingMaxAngle    float64                `yaml:"parenting_max_angle"`
	ParentingMaxDistance float64                `yaml:"parenting_max_distance"`
	HandGrabs            bool                   `yaml:"hand_grabs"`
	DynamicPalmAdjust    bool                   `yaml:"dynamic_palm_adjust"`
	AllowSwap            bool                   `yaml:"allow_swap"`
	AngleWeight          float64                `yaml:"angle_weight"`
	VelocityCount        int                    `yaml:"velocity_count"`
	Throw                velocity.HandThrow     `yaml:"throw"`
	Pulling              *physics.JointSettings `yaml:"pulling,omitempty"`
}

type SettingsConfig struct {
	LineGrabTriggerLoose bool                   `yaml:"line_grab_trigger_loose"`
	DefaultJoint         *physics.JointSettings `yaml:"default_joint,omitempty"`
	LineJoint            *physics.JointSettings `yaml:"line_joint,omitempty"`
}

func DefaultHand() HandConfig {
	d := grab.DefaultHandConfig(grab.Right, "hand")
	pull := *d.PullingSettings
	return HandConfig{
		Trigger:              d.Trigger,
		HandGrabSpeed:        d.HandGrabSpeed,
		PullCompleteDistance: d.PullCompleteDistance,
		ParentingMaxAngle:    d.ParentingMaxAngle,
		ParentingMaxDistance: d.ParentingMaxDistance,
		DynamicPalmAdjust:    d.DynamicPalmAdjust,
		AngleWeight:          d.AngleWeight,
		VelocityCount:        d.VelocityCount,
		Throw:                d.Throw,
		Pulling:              &pull,
	}
}

func DefaultConfig() *Config {
	rigid := physics.Rigid()
	line := physics.Rigid()
	return &Config{
		Scenario:  "pickup",
		Dt:        DefaultDt,
		PhysicsDt: DefaultPhysicsDt,
		Duration:  DefaultDuration,
		Gravity:   DefaultGravity,
		Hand:      DefaultHand(),
		Settings:  SettingsConfig{DefaultJoint: &rigid, LineJoint: &line},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, cfg.Validate()
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Validate() error {
	if c.Dt <= 0 || c.PhysicsDt <= 0 {
		return fmt.Errorf("%w: dt and physics_dt must be positive", grab.ErrInvalidConfig)
	}
	if c.Duration <= 0 {
		return fmt.Errorf("%w: duration must be positive, got %f", grab.ErrInvalidConfig, c.Duration)
	}
	hc := grab.DefaultHandConfig(grab.Right, "hand")
	c.Hand.Apply(&hc)
	return hc.Validate()
}

func (c *Config) SimConfig() sim.Config {
	return sim.Config{
		Dt:            c.Dt,
		PhysicsDt:     c.PhysicsDt,
		Duration:      c.Duration,
		Seed:          c.Seed,
		ValidateState: true,
	}
}

func (c *Config) GravityVec() mgl64.Vec3 { return mgl64.Vec3{0, c.Gravity, 0} }

// Apply copies the tunables onto a hand configuration.
func (h HandConfig) Apply(dst *grab.HandConfig) {
	dst.Trigger = h.Trigger
	dst.HandGrabSpeed = h.HandGrabSpeed
	dst.PullCompleteDistance = h.PullCompleteDistance
	dst.ParentingMaxAngle = h.ParentingMaxAngle
	dst.ParentingMaxDistance = h.ParentingMaxDistance
	dst.HandGrabs = h.HandGrabs
	dst.DynamicPalmAdjust = h.DynamicPalmAdjust
	dst.AllowSwap = h.AllowSwap
	dst.AngleWeight = h.AngleWeight
	dst.Throw = h.Throw
	if h.VelocityCount > 0 {
		dst.VelocityCount = h.VelocityCount
	}
	if h.Pulling != nil {
		p := *h.Pulling
		dst.PullingSettings = &p
	}
}

func (s SettingsConfig) Apply(dst *grab.Settings) {
	dst.LineGrabTriggerLoose = s.LineGrabTriggerLoose
	if s.DefaultJoint != nil {
		j := *s.DefaultJoint
		dst.DefaultJoint = &j
	}
	if s.LineJoint != nil {
		j := *s.LineJoint
		dst.LineJoint = &j
	}
}

var params = map[string]func(*Config, float64){
	"gravity":                func(c *Config, v float64) { c.Gravity = v },
	"hand_grab_speed":        func(c *Config, v float64) { c.Hand.HandGrabSpeed = v },
	"pull_complete_distance": func(c *Config, v float64) { c.Hand.PullCompleteDistance = v },
	"parenting_max_angle":    func(c *Config, v float64) { c.Hand.ParentingMaxAngle = v },
	"parenting_max_distance": func(c *Config, v float64) { c.Hand.ParentingMaxDistance = v },
	"angle_weight":           func(c *Config, v float64) { c.Hand.AngleWeight = v },
	"velocity_factor":        func(c *Config, v float64) { c.Hand.Throw.VelocityFactor = v },
	"throw_lookback":         func(c *Config, v float64) { c.Hand.Throw.Lookback = int(math.Round(v)) },
}

// SetParam sets one numeric tunable by its yaml name.
func (c *Config) SetParam(name string, v float64) error {
	set, ok := params[name]
	if !ok {
		return fmt.Errorf("unknown parameter: %s", name)
	}
	set(c, v)
	return nil
}

func ListParams() []string {
	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
