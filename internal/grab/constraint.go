package grab

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/grabsim/internal/physics"
	"go.uber.org/zap"
)

// ConstraintController owns the single constraint binding a hand to its
// target. Apply always destroys the previous constraint before creating the
// next one.
type ConstraintController struct {
	phys   physics.Constraints
	log    *zap.Logger
	id     physics.ConstraintID
	spec   physics.ConstraintSpec
	active bool
	final  bool
}

func NewConstraintController(phys physics.Constraints, log *zap.Logger) *ConstraintController {
	if log == nil {
		log = zap.NewNop()
	}
	return &ConstraintController{phys: phys, log: log}
}

func (c *ConstraintController) Apply(spec physics.ConstraintSpec, final bool) error {
	c.Release()
	id, err := c.phys.CreateConstraint(spec)
	if err != nil {
		return fmt.Errorf("create constraint: %w", err)
	}
	c.id, c.spec, c.active, c.final = id, spec, true, final
	return nil
}

// Update reconfigures the live constraint in place.
func (c *ConstraintController) Update(mutate func(*physics.ConstraintSpec)) error {
	if !c.active {
		return physics.ErrUnknownConstraint
	}
	spec := c.spec
	mutate(&spec)
	if err := c.phys.UpdateConstraint(c.id, spec); err != nil {
		return err
	}
	c.spec = spec
	return nil
}

// Release destroys the constraint; calling it without one is a no-op.
func (c *ConstraintController) Release() {
	if !c.active {
		return
	}
	c.phys.DestroyConstraint(c.id)
	c.active, c.final = false, false
	c.spec = physics.ConstraintSpec{}
}

func (c *ConstraintController) Active() bool { return c.active }

func (c *ConstraintController) Final() bool { return c.final }

func (c *ConstraintController) ID() physics.ConstraintID { return c.id }

func (c *ConstraintController) Spec() physics.ConstraintSpec { return c.spec }

// jointProfile picks the joint settings for a grab. The pulling profile of
// the target, then of the hand, is used before the final constraint; the
// final profile is the target override, the line profile for line grabs,
// or the default.
func jointProfile(t *Target, hand *HandConfig, s *Settings, line, final bool) (physics.JointSettings, bool, error) {
	if !final {
		if t.PullingSettings != nil {
			return *t.PullingSettings, true, nil
		}
		if hand.PullingSettings != nil {
			return *hand.PullingSettings, true, nil
		}
	}

	var js *physics.JointSettings
	switch {
	case t.JointOverride != nil:
		js = t.JointOverride
	case line && s != nil && s.LineJoint != nil:
		js = s.LineJoint
	case s != nil && s.DefaultJoint != nil:
		js = s.DefaultJoint
	default:
		return physics.JointSettings{}, false, ErrConfigurationMissing
	}
	settings := *js
	if t.Tracking == TrackFixed {
		settings = settings.LockAll()
	}
	return settings, false, nil
}

// looseLine relaxes a line constraint: free travel along the line up to
// half its length and free spin about it, both only damped. mid is the
// object-local line middle, used as the anchor when the object owns the
// constraint.
func looseLine(spec *physics.ConstraintSpec, line *LineGrab, mid mgl64.Vec3, objectOwned bool) {
	if line.CanReposition {
		spec.Joint.XMotion = physics.MotionLimited
		spec.Joint.LinearLimit = line.Length() / 2
		if objectOwned {
			spec.Anchor = mid
		}
		spec.Joint.XDrive = physics.Drive{Damper: line.LooseDamper, MaxForce: looseLineMaxForce}
	}
	if line.CanRotate || line.FreeRotation {
		spec.Joint.AngularXMotion = physics.MotionFree
		spec.Joint.AngularXDrive = physics.Drive{Damper: line.LooseAngularDamper, MaxForce: looseLineMaxForce}
	}
}
