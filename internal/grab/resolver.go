package grab

import (
	"math"

	"github.com/san-kum/grabsim/internal/spatial"
)

// Resolver picks the authored grab point that best matches a hand. Points
// are scored by the distance between the hand model and the posed model
// plus AngleWeight times the rotation between them in degrees.
type Resolver struct {
	AngleWeight float64
}

// Resolve returns nil when no authored point may be used by side. A socket
// filter prefers socket-only points and falls back to normal ones.
func (r Resolver) Resolve(t *Target, side Side, target, hand spatial.Transform, filter PointFilter) *GrabPoint {
	if t == nil || t.GrabType == GrabOffset {
		return nil
	}
	if filter == FilterSocket {
		if p := r.best(t, side, target, hand, true); p != nil {
			return p
		}
	}
	return r.best(t, side, target, hand, false)
}

func (r Resolver) best(t *Target, side Side, target, hand spatial.Transform, socketOnly bool) *GrabPoint {
	var (
		best  *GrabPoint
		score = math.Inf(1)
	)
	for _, p := range t.Points {
		if p == nil || p.SocketOnly != socketOnly || !p.Allows(side) {
			continue
		}
		if s := r.score(p, side, target, hand); s < score {
			best, score = p, s
		}
	}
	return best
}

func (r Resolver) score(p *GrabPoint, side Side, target, hand spatial.Transform) float64 {
	posed := p.PoseWorld(side, target)
	if p.IsLine() {
		// slide the posed model along the line to where the hand is
		local := target.InversePoint(hand.Position)
		shift := p.Line.Clamp(local).Sub(p.Local.Position)
		posed.Position = posed.Position.Add(target.Direction(shift))
	}
	d := posed.Position.Sub(hand.Position).Len()
	return d + r.AngleWeight*spatial.AngleDegrees(posed.Rotation, hand.Rotation)
}
