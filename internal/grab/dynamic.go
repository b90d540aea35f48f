package grab

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/grabsim/internal/physics"
	"github.com/san-kum/grabsim/internal/pose"
	"github.com/san-kum/grabsim/internal/spatial"
	"go.uber.org/zap"
)

// dynamicGrab synthesizes a hand pose against the target surface instead
// of using an authored grab point.
func (h *Hand) dynamicGrab(tw spatial.Transform) {
	t, s := h.target, h.sess
	layer := h.settings.DynamicPoseLayer

	prev := make([]physics.Layer, len(t.Colliders))
	for i, id := range t.Colliders {
		prev[i] = h.phys.SetLayer(id, layer)
	}
	defer func() {
		for i, id := range t.Colliders {
			h.phys.SetLayer(id, prev[i])
		}
	}()

	poser := h.bodyWorld().Mul(h.cfg.Model)
	palm := func() spatial.Transform { return poser.Mul(h.cfg.Palm) }

	point, inside := h.findClosestPoint(t, palm())
	for i := 0; inside && i < palmNudgeAttempts; i++ {
		poser.Position = poser.Position.Sub(palm().Forward().Mul(palmNudgeDistance))
		point, inside = h.findClosestPoint(t, palm())
	}

	if (!inside && h.cfg.DynamicPalmAdjust) || s.forceAuto {
		p := palm()
		if delta := point.Sub(p.Position); delta.Len() > insideEpsilon {
			poser.Rotation = spatial.FromToRotation(p.Forward(), spatial.Normalize(delta)).Mul(poser.Rotation).Normalize()
		}
	}

	h.poser.OpenFingers(h.cfg.Side)
	poser.Position = point.Add(poser.Position.Sub(palm().Position))
	curls := h.poser.SimulateClose(h.cfg.Side, poser, physics.LayerMask(1)<<uint(layer))

	rel := tw.Relative(poser)
	payload := pose.FromTransform(rel.Position, rel.Rotation, curls)
	s.kind = AnchorDynamic
	s.point = nil
	s.physPos = rel.Position
	s.poseLocal = rel.Rotation
	s.physPose = &payload
	h.log.Debug("Hand: dynamic pose", zap.String("target", t.ID), zap.Bool("inside", inside))
}

// findClosestPoint returns the target surface point nearest to the palm,
// and whether the palm is inside the target.
func (h *Hand) findClosestPoint(t *Target, palm spatial.Transform) (mgl64.Vec3, bool) {
	best := palm.Position
	bestDist := -1.0
	for _, id := range t.Colliders {
		info, ok := h.phys.Collider(id)
		if !ok || !info.Enabled || info.Trigger {
			continue
		}
		var p mgl64.Vec3
		if info.Concave && t.HasConcaveColliders {
			hit, ok := h.phys.RaycastCollider(id, palm.Position, palm.Forward(), concaveRayDistance)
			if !ok {
				continue
			}
			p = hit.Point
		} else {
			p = h.phys.ClosestPoint(id, palm.Position)
		}
		d := p.Sub(palm.Position).Len()
		if bestDist < 0 || d < bestDist {
			best, bestDist = p, d
		}
	}
	return best, bestDist >= 0 && bestDist < insideEpsilon
}
