package physics

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/grabsim/internal/spatial"
)

type (
	BodyID       string
	ColliderID   string
	ConstraintID uint64
	Layer        int
	LayerMask    uint32
)

const AllLayers LayerMask = 0xffffffff

func (m LayerMask) Has(l Layer) bool { return m&(1<<uint(l)) != 0 }

// BodyState is a read-only snapshot of a body.
type BodyState struct {
	Velocity        mgl64.Vec3
	AngularVelocity mgl64.Vec3
	Kinematic       bool
	Mass            float64
	// CenterOfMass is local to the body.
	CenterOfMass      mgl64.Vec3
	WorldCenterOfMass mgl64.Vec3
}

type ColliderInfo struct {
	Body    BodyID
	Enabled bool
	Trigger bool
	Concave bool
	Layer   Layer
}

type Hit struct {
	Collider ColliderID
	Point    mgl64.Vec3
	Normal   mgl64.Vec3
	Distance float64
}

// ConstraintSpec describes a 6-DOF joint. Anchor and Axis are local to the
// owner; ConnectedAnchor is local to Connected, or a world point when
// Connected is empty. TargetRotation is the owner rotation relative to the
// connected body (or world).
type ConstraintSpec struct {
	Owner           BodyID
	Connected       BodyID
	Anchor          mgl64.Vec3
	ConnectedAnchor mgl64.Vec3
	Axis            mgl64.Vec3
	SecondaryAxis   mgl64.Vec3
	TargetRotation  mgl64.Quat
	Joint           JointSettings
}

type Bodies interface {
	Transform(id BodyID) (spatial.Transform, bool)
	SetTransform(id BodyID, t spatial.Transform)
	State(id BodyID) (BodyState, bool)
	SetVelocity(id BodyID, linear, angular mgl64.Vec3)
	SetKinematic(id BodyID, kinematic bool)
	SetCenterOfMass(id BodyID, local mgl64.Vec3)
	SetDetectCollisions(id BodyID, enabled bool)
	// SetTrackingTarget is the pose a tracked body is driven toward.
	SetTrackingTarget(id BodyID, t spatial.Transform)
}

type Constraints interface {
	CreateConstraint(spec ConstraintSpec) (ConstraintID, error)
	UpdateConstraint(id ConstraintID, spec ConstraintSpec) error
	DestroyConstraint(id ConstraintID)
}

type Queries interface {
	Collider(id ColliderID) (ColliderInfo, bool)
	ClosestPoint(id ColliderID, point mgl64.Vec3) mgl64.Vec3
	RaycastCollider(id ColliderID, origin, dir mgl64.Vec3, maxDistance float64) (Hit, bool)
	Raycast(origin, dir mgl64.Vec3, maxDistance float64, mask LayerMask) (Hit, bool)
	// OverlapSphere writes overlapping non-trigger colliders into results
	// and returns how many were written.
	OverlapSphere(center mgl64.Vec3, radius float64, results []ColliderID) int
	IgnoreCollision(a, b []ColliderID, ignore bool)
	SetLayer(id ColliderID, layer Layer) Layer
}

// Provider is everything the grab engine needs from a physics backend.
type Provider interface {
	Bodies
	Constraints
	Queries
}
