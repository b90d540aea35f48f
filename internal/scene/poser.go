package scene

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/grabsim/internal/grab"
	"github.com/san-kum/grabsim/internal/physics"
	"github.com/san-kum/grabsim/internal/pose"
	"github.com/san-kum/grabsim/internal/spatial"
)

// Finger is a probe ray local to the palm.
type Finger struct {
	Origin    mgl64.Vec3
	Direction mgl64.Vec3
	Reach     float64
}

// DefaultFingers spreads five probes across a palm facing +Z.
func DefaultFingers() [pose.FingerCount]Finger {
	dir := spatial.Forward
	return [pose.FingerCount]Finger{
		{Origin: mgl64.Vec3{-0.04, 0, 0.01}, Direction: dir, Reach: 0.08},
		{Origin: mgl64.Vec3{-0.02, 0.03, 0}, Direction: dir, Reach: 0.1},
		{Origin: mgl64.Vec3{0, 0.035, 0}, Direction: dir, Reach: 0.1},
		{Origin: mgl64.Vec3{0.02, 0.03, 0}, Direction: dir, Reach: 0.1},
		{Origin: mgl64.Vec3{0.035, 0.02, 0}, Direction: dir, Reach: 0.08},
	}
}

type handPose struct {
	name    string
	payload pose.Payload
}

// Poser is a PoseProvider that keeps named finger poses and closes fingers
// with raycasts against the physics world.
type Poser struct {
	phys    physics.Queries
	Palm    spatial.Transform
	Fingers [pose.FingerCount]Finger
	poses   map[string][pose.FingerCount]float32
	current [2]handPose
}

// NewPoser returns a poser with the relaxed, fist and fallback poses.
func NewPoser(phys physics.Queries, palm spatial.Transform) *Poser {
	p := &Poser{
		phys:    phys,
		Palm:    palm,
		Fingers: DefaultFingers(),
		poses: map[string][pose.FingerCount]float32{
			"relaxed":  {0.2, 0.2, 0.2, 0.2, 0.2},
			"open":     {},
			"fist":     {1, 1, 1, 1, 1},
			"fallback": {0.6, 0.7, 0.7, 0.7, 0.7},
		},
	}
	for i := range p.current {
		p.ResetPose(grab.Side(i))
	}
	return p
}

// Define adds or replaces a named pose.
func (p *Poser) Define(name string, curls [pose.FingerCount]float32) { p.poses[name] = curls }

func (p *Poser) ApplyPose(side grab.Side, name string) {
	curls, ok := p.poses[name]
	if !ok {
		curls = p.poses["fallback"]
	}
	p.current[side] = handPose{name: name, payload: pose.Payload{Rotation: [4]float32{0, 0, 0, 1}, Curls: curls}}
}

func (p *Poser) ApplyPayload(side grab.Side, pl pose.Payload) {
	p.current[side] = handPose{name: "payload", payload: pl}
}

func (p *Poser) Capture(side grab.Side) pose.Payload { return p.current[side].payload }

// PoseName is the name of the last applied pose.
func (p *Poser) PoseName(side grab.Side) string { return p.current[side].name }

func (p *Poser) ResetPose(side grab.Side) { p.ApplyPose(side, "relaxed") }

func (p *Poser) OpenFingers(side grab.Side) { p.ApplyPose(side, "open") }

func (p *Poser) SimulateClose(side grab.Side, hand spatial.Transform, mask physics.LayerMask) [pose.FingerCount]float32 {
	palm := hand.Mul(p.Palm)
	var curls [pose.FingerCount]float32
	for i, f := range p.Fingers {
		curls[i] = 1
		origin := palm.Point(f.Origin)
		dir := spatial.Normalize(palm.Direction(f.Direction))
		if hit, ok := p.phys.Raycast(origin, dir, f.Reach, mask); ok && f.Reach > 0 {
			curls[i] = float32(hit.Distance / f.Reach)
		}
	}
	return curls
}
