package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/grabsim/internal/spatial"
)

// jointFrame is the world-space state of one constraint for a single solve.
type jointFrame struct {
	owner, connected *body
	// mover is the body the solver is allowed to push; invert is set when
	// that is the connected body rather than the owner.
	mover      *body
	invert     bool
	anchor     mgl64.Vec3
	target     mgl64.Vec3
	axes       [3]mgl64.Vec3
	connRot    mgl64.Quat
	connVel    mgl64.Vec3
	connAngVel mgl64.Vec3
}

func (w *World) frame(c *constraint) (jointFrame, bool) {
	f := jointFrame{owner: w.bodies[c.spec.Owner]}
	if f.owner == nil {
		return f, false
	}
	f.connRot = mgl64.QuatIdent()
	f.target = c.spec.ConnectedAnchor
	if c.spec.Connected != "" {
		f.connected = w.bodies[c.spec.Connected]
		if f.connected == nil {
			return f, false
		}
		f.connRot = f.connected.tf.Rotation
		f.target = f.connected.tf.Point(c.spec.ConnectedAnchor)
		f.connVel = f.connected.vel
		f.connAngVel = f.connected.angVel
	}

	switch {
	case f.owner.movable():
		f.mover = f.owner
	case f.connected != nil && f.connected.movable():
		f.mover = f.connected
		f.invert = true
	default:
		return f, false
	}

	f.anchor = f.owner.tf.Point(c.spec.Anchor)
	x := f.owner.tf.Direction(c.spec.Axis)
	y := f.owner.tf.Direction(c.spec.SecondaryAxis)
	f.axes = [3]mgl64.Vec3{x, y, x.Cross(y)}
	return f, true
}

// drive applies spring/damper accelerations on every non-locked axis, in
// the manner of a PD controller acting on the anchor error.
func (w *World) drive(c *constraint, dt float64) {
	f, ok := w.frame(c)
	if !ok || f.invert {
		return
	}
	s := c.spec.Joint
	b := f.mover
	m := b.mass()

	err := f.target.Sub(f.anchor)
	relVel := f.connVel.Sub(b.vel)
	motions := [3]Motion{s.XMotion, s.YMotion, s.ZMotion}
	drives := [3]Drive{s.XDrive, s.YDrive, s.ZDrive}
	for i, axis := range f.axes {
		if motions[i] == MotionLocked || drives[i].IsZero() {
			continue
		}
		accel := drives[i].Spring*err.Dot(axis) + drives[i].Damper*relVel.Dot(axis)
		accel = drives[i].clamp(accel, m)
		if drives[i].Spring == 0 {
			// pure damping never reverses the relative velocity
			limit := math.Abs(relVel.Dot(axis)) / dt
			accel = mgl64.Clamp(accel, -limit, limit)
		}
		b.vel = b.vel.Add(axis.Mul(accel * dt))
	}

	if s.angularLocked() {
		return
	}
	desired := f.connRot.Mul(c.spec.TargetRotation)
	qerr := desired.Mul(b.tf.Rotation.Inverse())
	swing, twist := spatial.SwingTwist(qerr, f.axes[0])
	relAng := f.connAngVel.Sub(b.angVel)
	twistAxis := f.axes[0]

	if s.AngularXMotion != MotionLocked {
		angle, axis := spatial.ToAngleAxis(twist)
		d := s.AngularXDrive
		accel := d.Spring*angle*axis.Dot(twistAxis) + d.Damper*relAng.Dot(twistAxis)
		accel = d.clamp(accel, m)
		if d.Spring == 0 {
			limit := math.Abs(relAng.Dot(twistAxis)) / dt
			accel = mgl64.Clamp(accel, -limit, limit)
		}
		b.angVel = b.angVel.Add(twistAxis.Mul(accel * dt))
	}
	if s.AngularYMotion != MotionLocked || s.AngularZMotion != MotionLocked {
		angle, axis := spatial.ToAngleAxis(swing)
		d := s.AngularYZDrive
		swingRel := relAng.Sub(twistAxis.Mul(relAng.Dot(twistAxis)))
		accel := axis.Mul(d.Spring * angle).Add(swingRel.Mul(d.Damper))
		if l := accel.Len(); l > 0 {
			accel = accel.Mul(math.Abs(d.clamp(l, m)) / l)
		}
		b.angVel = b.angVel.Add(accel.Mul(dt))
	}
}

// project enforces locked and limited axes by moving the mover directly.
func (w *World) project(c *constraint) {
	f, ok := w.frame(c)
	if !ok {
		return
	}
	s := c.spec.Joint
	b := f.mover

	if f.invert {
		// owner is immovable: pull the connected body onto the owner anchor
		if s.angularLocked() {
			b.tf.Rotation = f.owner.tf.Rotation.Mul(c.spec.TargetRotation.Inverse()).Normalize()
			b.angVel = mgl64.Vec3{}
		}
		if s.linearLocked() {
			current := b.tf.Point(c.spec.ConnectedAnchor)
			b.tf.Position = b.tf.Position.Add(f.anchor.Sub(current))
			b.vel = f.owner.vel
		}
		return
	}

	desired := f.connRot.Mul(c.spec.TargetRotation)
	switch {
	case s.angularLocked():
		b.tf.Rotation = desired.Normalize()
		b.angVel = f.connAngVel
	case s.AngularXMotion != MotionLocked && s.AngularYMotion == MotionLocked && s.AngularZMotion == MotionLocked:
		qerr := desired.Mul(b.tf.Rotation.Inverse())
		swing, _ := spatial.SwingTwist(qerr, f.axes[0])
		b.tf.Rotation = swing.Mul(b.tf.Rotation).Normalize()
		free := b.angVel.Sub(f.connAngVel).Dot(f.axes[0])
		b.angVel = f.connAngVel.Add(f.axes[0].Mul(free))
	}

	// anchor and axes move with the rotation projection above
	f.anchor = b.tf.Point(c.spec.Anchor)
	x := b.tf.Direction(c.spec.Axis)
	y := b.tf.Direction(c.spec.SecondaryAxis)
	f.axes = [3]mgl64.Vec3{x, y, x.Cross(y)}

	err := f.target.Sub(f.anchor)
	motions := [3]Motion{s.XMotion, s.YMotion, s.ZMotion}
	var correction mgl64.Vec3
	for i, axis := range f.axes {
		comp := err.Dot(axis)
		switch motions[i] {
		case MotionLocked:
			correction = correction.Add(axis.Mul(comp))
			rel := f.connVel.Sub(b.vel).Dot(axis)
			b.vel = b.vel.Add(axis.Mul(rel))
		case MotionLimited:
			if excess := math.Abs(comp) - s.LinearLimit; excess > 0 {
				correction = correction.Add(axis.Mul(math.Copysign(excess, comp)))
			}
		}
	}
	b.tf.Position = b.tf.Position.Add(correction)
}
