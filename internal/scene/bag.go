package scene

import (
	"fmt"
	"sort"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/grabsim/internal/grab"
	"github.com/san-kum/grabsim/internal/physics"
)

const (
	DefaultGrabRadius    = 0.1
	DefaultTriggerRadius = 0.3
)

// ProximityBag is a CandidateSource over palm distance. Distance is
// measured to the nearest enabled collider surface of each target.
type ProximityBag struct {
	phys          physics.Provider
	targets       []*grab.Target
	Radius        float64
	TriggerRadius float64
}

func NewProximityBag(phys physics.Provider) *ProximityBag {
	return &ProximityBag{phys: phys, Radius: DefaultGrabRadius, TriggerRadius: DefaultTriggerRadius}
}

func (b *ProximityBag) Add(t *grab.Target) error {
	if b.Get(t.ID) != nil {
		return fmt.Errorf("%w: %s", grab.ErrDuplicateTarget, t.ID)
	}
	b.targets = append(b.targets, t)
	return nil
}

func (b *ProximityBag) Get(id string) *grab.Target {
	for _, t := range b.targets {
		if t.ID == id {
			return t
		}
	}
	return nil
}

func (b *ProximityBag) Remove(id string) error {
	for i, t := range b.targets {
		if t.ID == id {
			b.targets = append(b.targets[:i], b.targets[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: %s", grab.ErrUnknownTarget, id)
}

func (b *ProximityBag) Targets() []*grab.Target { return b.targets }

// Distance is how far palm is from the surface of t; negative when t has
// no usable collider.
func (b *ProximityBag) Distance(t *grab.Target, palm mgl64.Vec3) float64 {
	best := -1.0
	for _, id := range t.Colliders {
		info, ok := b.phys.Collider(id)
		if !ok || !info.Enabled {
			continue
		}
		d := b.phys.ClosestPoint(id, palm).Sub(palm).Len()
		if best < 0 || d < best {
			best = d
		}
	}
	return best
}

func (b *ProximityBag) Candidates(side grab.Side, palm mgl64.Vec3, trigger bool) []*grab.Target {
	radius := b.Radius
	if trigger {
		radius = b.TriggerRadius
	}
	type near struct {
		t *grab.Target
		d float64
	}
	var found []near
	for _, t := range b.targets {
		if t.Destroyed() {
			continue
		}
		if d := b.Distance(t, palm); d >= 0 && d <= radius {
			found = append(found, near{t, d})
		}
	}
	sort.SliceStable(found, func(i, j int) bool { return found[i].d < found[j].d })
	out := make([]*grab.Target, len(found))
	for i, n := range found {
		out[i] = n.t
	}
	return out
}
