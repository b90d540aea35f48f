// Package physics defines the physics collaborator consumed by the grab
// engine and provides [World], a small deterministic implementation of it.
//
// The grab engine only sees the [Provider] interface:
//
//   - [Bodies]: transforms, velocities and kinematic flags
//   - [Constraints]: joints between a hand body and a held body
//   - [Queries]: closest point, raycast and sphere overlap
//
// World integrates with semi-implicit Euler, resolves bodies against a flat
// ground plane and solves joints with a spring-damper drive followed by a
// position projection for locked axes.
//
// # Stepping
//
// The simulator calls Step once per fixed physics step:
//
//	w := physics.NewWorld(mgl64.Vec3{0, -9.81, 0}, log)
//	w.SetGround(0)
//	for t := 0.0; t < duration; t += dt {
//	    w.Step(dt)
//	}
package physics
