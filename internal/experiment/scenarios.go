package experiment

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/grabsim/internal/grab"
	"github.com/san-kum/grabsim/internal/physics"
	"github.com/san-kum/grabsim/internal/scene"
	"github.com/san-kum/grabsim/internal/spatial"
)

// Objects rest on the ground; hands start just above them, inside hover
// range of the palm.
const (
	ballRadius = 0.05
	handHeight = 0.13
)

var (
	handStart = mgl64.Vec3{0, handHeight, 0}
	ballStart = mgl64.Vec3{0, ballRadius, 0}
	liftedTo  = mgl64.Vec3{0, 0.5, 0}
)

func builtins() []Scenario {
	return []Scenario{
		{Name: "pickup", Description: "pull a ball into the hand, lift it and drop it", Duration: 2.5, Build: buildPickup},
		{Name: "throw", Description: "swing a held ball and release it mid-swing", Duration: 2.5, Build: buildThrow},
		{Name: "toggle", Description: "toggle grab: a second press lets go", Duration: 2.5, Build: buildToggle},
		{Name: "line-slide", Description: "slide the hand along a rod held by the trigger", Duration: 2.5, Build: buildLineSlide},
		{Name: "stationary", Description: "travel the hand to a static lever", Duration: 2, Build: buildStationary},
		{Name: "dynamic", Description: "grab with a synthesized palm pose", Duration: 2.5, Build: buildDynamic},
		{Name: "two-hand", Description: "lift a crate with both hands", Duration: 2.5, Build: buildTwoHand},
		{Name: "socket", Description: "take a ball out of a holster and put it back", Duration: 2.5, Build: buildSocket},
		{Name: "swap-point", Description: "rotate a held ball onto another grab point", Duration: 2.5, Build: buildSwapPoint},
	}
}

func liftAndDrop(env *Env, side grab.Side, from mgl64.Vec3) {
	env.Grip(0.1, side, true)
	env.Sweep(side, from, from.Add(liftedTo.Sub(handStart)), 0.6, 1.0)
	env.Grip(1.6, side, false)
}

func buildPickup(env *Env) error {
	if _, err := env.AddHand(grab.Right, handStart, nil); err != nil {
		return err
	}
	if _, err := env.AddBall("ball", env.Jitter(ballStart), ballRadius); err != nil {
		return err
	}
	liftAndDrop(env, grab.Right, handStart)
	return nil
}

func buildThrow(env *Env) error {
	if _, err := env.AddHand(grab.Right, handStart, nil); err != nil {
		return err
	}
	if _, err := env.AddBall("ball", env.Jitter(ballStart), ballRadius); err != nil {
		return err
	}
	env.Grip(0.1, grab.Right, true)
	env.Sweep(grab.Right, handStart, mgl64.Vec3{0.9, 0.43, 0}, 0.7, 1.0)
	env.Grip(1.0, grab.Right, false)
	return nil
}

func buildToggle(env *Env) error {
	toggle := func(c *grab.HandConfig) { c.Trigger = grab.TriggerToggle }
	if _, err := env.AddHand(grab.Right, handStart, toggle); err != nil {
		return err
	}
	if _, err := env.AddBall("ball", env.Jitter(ballStart), ballRadius); err != nil {
		return err
	}
	env.Grip(0.1, grab.Right, true)
	env.Grip(0.3, grab.Right, false)
	env.Sweep(grab.Right, handStart, liftedTo, 0.6, 1.0)
	env.Grip(1.5, grab.Right, true)
	env.Grip(1.6, grab.Right, false)
	return nil
}

func buildLineSlide(env *Env) error {
	start := mgl64.Vec3{0, 0.1, 0}
	if _, err := env.AddHand(grab.Right, start, nil); err != nil {
		return err
	}
	rod, err := env.Scene.AddTarget(scene.TargetDef{
		ID: "rod", Kind: physics.Dynamic, Transform: spatial.At(env.Jitter(mgl64.Vec3{0, 0.02, 0.35})),
		Mass: 1, Damping: 0.5, Shape: physics.Box, HalfExtents: mgl64.Vec3{0.02, 0.02, 0.3},
	})
	if err != nil {
		return err
	}
	shaft := centerPoint("shaft")
	shaft.Line = &grab.LineGrab{
		Start: mgl64.Vec3{0, 0, -0.25}, End: mgl64.Vec3{0, 0, 0.25},
		CanReposition: true, CanRotate: true, InitialCanReposition: true,
	}
	rod.Points = []*grab.GrabPoint{shaft}

	env.Grip(0.1, grab.Right, true)
	env.Trigger(0.7, grab.Right, true)
	env.Grip(0.8, grab.Right, false)
	env.Sweep(grab.Right, start, start.Add(mgl64.Vec3{0, 0, 0.4}), 0.9, 1.5)
	env.Trigger(2.0, grab.Right, false)
	return nil
}

func buildStationary(env *Env) error {
	start := mgl64.Vec3{0, 0.5, 0}
	if _, err := env.AddHand(grab.Right, start, nil); err != nil {
		return err
	}
	lever, err := env.Scene.AddTarget(scene.TargetDef{
		ID: "lever", Kind: physics.Static, Transform: spatial.At(env.Jitter(mgl64.Vec3{0.25, 0.5, 0})),
		Shape: physics.Sphere, Radius: ballRadius,
	})
	if err != nil {
		return err
	}
	lever.Stationary = true
	lever.Points = []*grab.GrabPoint{centerPoint("handle")}

	env.At(0.1, "force grab lever", func(sc *scene.Scene) error {
		return sc.Hand(grab.Right).ForceGrab(lever, grab.TriggerActive, nil)
	})
	env.Grip(0.1, grab.Right, true)
	env.Grip(1.2, grab.Right, false)
	return nil
}

func buildDynamic(env *Env) error {
	if _, err := env.AddHand(grab.Right, handStart, nil); err != nil {
		return err
	}
	ball, err := env.AddBall("ball", env.Jitter(ballStart), ballRadius)
	if err != nil {
		return err
	}
	ball.GrabType = grab.GrabDynamic
	liftAndDrop(env, grab.Right, handStart)
	return nil
}

func buildTwoHand(env *Env) error {
	const reach = 0.12
	leftAt := handStart.Add(mgl64.Vec3{-reach, 0, 0})
	rightAt := handStart.Add(mgl64.Vec3{reach, 0, 0})
	if _, err := env.AddHand(grab.Left, leftAt, nil); err != nil {
		return err
	}
	if _, err := env.AddHand(grab.Right, rightAt, nil); err != nil {
		return err
	}
	crate, err := env.Scene.AddTarget(scene.TargetDef{
		ID: "crate", Kind: physics.Dynamic, Transform: spatial.At(env.Jitter(mgl64.Vec3{0, 0.05, 0})),
		Mass: 2, Damping: 0.1, Shape: physics.Box, HalfExtents: mgl64.Vec3{0.15, 0.05, 0.05},
	})
	if err != nil {
		return err
	}
	off := spatial.Identity()
	crate.HoldType = grab.TwoHanded
	crate.Points = []*grab.GrabPoint{
		{Name: "left", Local: spatial.At(mgl64.Vec3{-reach, 0, 0}), Left: &off},
		{Name: "right", Local: spatial.At(mgl64.Vec3{reach, 0, 0}), Right: &off},
	}

	env.Grip(0.1, grab.Left, true)
	env.Grip(0.2, grab.Right, true)
	lift := liftedTo.Sub(handStart)
	env.Sweep(grab.Left, leftAt, leftAt.Add(lift), 0.6, 1.0)
	env.Sweep(grab.Right, rightAt, rightAt.Add(lift), 0.6, 1.0)
	env.Grip(1.6, grab.Right, false)
	env.Grip(1.7, grab.Left, false)
	return nil
}

func buildSocket(env *Env) error {
	holsterAt := mgl64.Vec3{0, 0.3, 0}
	start := holsterAt.Add(mgl64.Vec3{0, 0.08, 0})
	if _, err := env.AddHand(grab.Right, start, nil); err != nil {
		return err
	}
	ball, err := env.AddBall("ball", holsterAt, ballRadius)
	if err != nil {
		return err
	}
	holster := &scene.Socket{Name: "holster", Pose: spatial.At(holsterAt), Radius: 0.15}
	if err := env.Scene.Rack.Add(holster); err != nil {
		return err
	}
	if err := env.Scene.Rack.Place(holster, ball); err != nil {
		return err
	}

	away := start.Add(mgl64.Vec3{0.4, 0, 0})
	env.Grip(0.1, grab.Right, true)
	env.Sweep(grab.Right, start, away, 0.5, 0.9)
	env.Sweep(grab.Right, away, start, 1.0, 1.4)
	env.Grip(1.6, grab.Right, false)
	return nil
}

func buildSwapPoint(env *Env) error {
	if _, err := env.AddHand(grab.Right, handStart, nil); err != nil {
		return err
	}
	ball, err := env.AddBall("ball", env.Jitter(ballStart), ballRadius)
	if err != nil {
		return err
	}
	side := centerPoint("side")
	side.Local = spatial.New(mgl64.Vec3{}, mgl64.QuatRotate(mgl64.DegToRad(90), spatial.Up))
	ball.Points = append(ball.Points, side)

	env.Grip(0.1, grab.Right, true)
	env.At(0.8, "swap grab point", func(sc *scene.Scene) error {
		h := sc.Hand(grab.Right)
		if err := h.ChangeGrabPoint(side, 0.2, spatial.Up); err != nil {
			return fmt.Errorf("swap to %s: %w", side.Name, err)
		}
		return nil
	})
	env.Grip(1.6, grab.Right, false)
	return nil
}
