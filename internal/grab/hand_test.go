package grab_test

import (
	"errors"

	"github.com/go-gl/mathgl/mgl64"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/san-kum/grabsim/internal/grab"
	"github.com/san-kum/grabsim/internal/physics"
	"github.com/san-kum/grabsim/internal/pose"
	"github.com/san-kum/grabsim/internal/scene"
	"github.com/san-kum/grabsim/internal/spatial"
)

var _ = Describe("Hand", func() {
	var (
		r    *rig
		hand *grab.Hand
		ball *grab.Target
	)

	BeforeEach(func() {
		r = newRig()
		hand = r.addHand(grab.Right, rightAt, nil)
		ball = r.addBall("ball", ballAt)
		r.tick(1)
	})

	held := func() bool { return hand.State() == grab.Held }

	Describe("picking up", func() {
		It("hovers the nearest target before any input", func() {
			Expect(hand.Hovered()).To(Equal(ball))
			Expect(hand.HoverPoint()).To(Equal(ball.Points[0]))
			Expect(r.rec.Count(grab.EventHoverEnter)).To(Equal(1))
		})

		It("pulls the target in and then holds it with a final constraint", func() {
			r.grip(grab.Right, true)
			r.tick(1)
			Expect(hand.State()).To(Equal(grab.Pulling))
			Expect(hand.Pulling()).To(BeTrue())
			Expect(hand.Constraint().Final()).To(BeFalse())

			Expect(r.tickUntil(held, 60)).To(BeTrue())
			Expect(hand.Target()).To(Equal(ball))
			Expect(hand.AnchorKind()).To(Equal(grab.AnchorNamed))
			Expect(hand.Constraint().Final()).To(BeTrue())
			Expect(r.sc.World.ConstraintCount()).To(Equal(1))

			r.tick(2)
			Expect(r.position("ball").Sub(r.position("hand/right")).Len()).To(BeNumerically("<", 1e-6))
		})

		It("completes the pull on arrival without the quick timeout", func() {
			ball.FinalJointQuick = false
			r.grip(grab.Right, true)
			r.tick(1)
			Expect(hand.State()).To(Equal(grab.Pulling))

			Expect(r.tickUntil(held, 60)).To(BeTrue())
			Expect(hand.Constraint().Final()).To(BeTrue())
			Expect(r.sc.World.ConstraintCount()).To(Equal(1))
		})

		It("keeps pulling while the grab pose is rotated past the final joint angle", func() {
			r = newRig()
			hand = r.addHand(grab.Right, rightAt, nil)
			ball = r.addBall("ball", ballAt)
			side := centerPoint("side")
			side.Local = spatial.New(mgl64.Vec3{}, mgl64.QuatRotate(mgl64.DegToRad(90), spatial.Up))
			ball.Points = []*grab.GrabPoint{side}
			ball.FinalJointQuick = false
			linearOnly := physics.Soft(physics.Drive{Spring: 800, Damper: 60, MaxForce: 400}, physics.Drive{})
			ball.PullingSettings = &linearOnly
			r.tick(1)

			r.grip(grab.Right, true)
			r.tick(1)
			Expect(hand.State()).To(Equal(grab.Pulling))

			r.tick(int(2 * ball.FinalJointTimeout / dt))
			Expect(hand.State()).To(Equal(grab.Pulling))
			Expect(hand.Pulling()).To(BeTrue())
			Expect(hand.Constraint().Final()).To(BeFalse())
			Expect(r.position("ball").Sub(r.position("hand/right")).Len()).To(BeNumerically("<", hand.Config().PullCompleteDistance))
		})

		It("holds at an offset when a snap target has no grab points", func() {
			r = newRig()
			hand = r.addHand(grab.Right, rightAt, nil)
			ball = r.addBall("ball", ballAt)
			ball.Points = nil
			r.tick(1)

			r.grip(grab.Right, true)
			Expect(r.tickUntil(held, 60)).To(BeTrue())
			Expect(hand.Target()).To(Equal(ball))
			Expect(hand.AnchorKind()).To(Equal(grab.AnchorOffset))
			Expect(hand.GrabPoint()).To(BeNil())
		})

		It("emits grab notifications in order", func() {
			r.grip(grab.Right, true)
			Expect(r.tickUntil(held, 60)).To(BeTrue())

			grabbed := r.indexOf(grab.EventGrabbed)
			pull := r.indexOf(grab.EventPullStarted)
			attached := r.indexOf(grab.EventAttached)
			Expect(grabbed).To(BeNumerically(">=", 0))
			Expect(pull).To(BeNumerically(">", grabbed))
			Expect(attached).To(BeNumerically(">", pull))
			Expect(r.rec.Count(grab.EventGrabbed)).To(Equal(1))
		})

		It("vibrates the controller on grab", func() {
			r.grip(grab.Right, true)
			r.tick(1)
			Expect(r.sc.Input.Haptics()).To(ContainElement(scene.HapticRecord{
				Side: grab.Right, Haptic: grab.DefaultHapticProfile().HandGrab,
			}))
		})

		It("fails the grab when no joint profile is configured", func() {
			r.sc.Settings.DefaultJoint = nil
			r.grip(grab.Right, true)
			r.tick(1)

			Expect(hand.State()).To(Equal(grab.Idle))
			Expect(hand.Target()).To(BeNil())
			e, ok := r.rec.Last(grab.EventGrabFailed)
			Expect(ok).To(BeTrue())
			Expect(errors.Is(e.Err, grab.ErrConfigurationMissing)).To(BeTrue())
			Expect(r.sc.World.ConstraintCount()).To(BeZero())
		})
	})

	Describe("releasing", func() {
		BeforeEach(func() {
			r.grip(grab.Right, true)
			Expect(r.tickUntil(held, 60)).To(BeTrue())
		})

		It("lets go when the grip opens", func() {
			r.grip(grab.Right, false)
			r.tick(1)

			Expect(hand.State()).To(Equal(grab.Idle))
			Expect(ball.IsHeld()).To(BeFalse())
			Expect(r.sc.World.ConstraintCount()).To(BeZero())
			Expect(r.rec.Count(grab.EventReleased)).To(Equal(1))
			Expect(r.sc.World.Ignored("hand/right/palm", "ball/c")).To(BeFalse())
		})

		It("treats repeated force releases as one", func() {
			hand.ForceRelease()
			hand.ForceRelease()
			Expect(hand.State()).To(Equal(grab.Releasing))
			r.tick(1)
			hand.ForceRelease()
			r.tick(1)
			Expect(r.rec.Count(grab.EventReleased)).To(Equal(1))
		})

		It("throws with the object velocity", func() {
			pos := rightAt
			for i := 0; i < 20; i++ {
				pos = pos.Add(mgl64.Vec3{3 * dt, 0, 0})
				r.sc.MoveController(grab.Right, spatial.At(pos))
				r.tick(1)
			}
			r.grip(grab.Right, false)
			r.tick(1)

			e, ok := r.rec.Last(grab.EventThrown)
			Expect(ok).To(BeTrue())
			Expect(e.Linear.X()).To(BeNumerically("~", 3, 0.3))
			Expect(hand.OverlapPending()).To(Equal(1))
		})

		It("keeps collision off until the hand clears the object", func() {
			ball.RequireOverlapClearance = true
			r.grip(grab.Right, false)
			r.tick(5)
			Expect(hand.OverlapPending()).To(Equal(1))
			Expect(r.sc.World.Ignored("hand/right/palm", "ball/c")).To(BeTrue())

			r.sc.MoveController(grab.Right, spatial.At(mgl64.Vec3{0, 1, -0.5}))
			r.tick(3)
			Expect(hand.OverlapPending()).To(BeZero())
			Expect(r.rec.Count(grab.EventOverlapCleared)).To(Equal(1))
			Expect(r.sc.World.Ignored("hand/right/palm", "ball/c")).To(BeFalse())
		})

		It("restores collision when the overlap wait times out", func() {
			ball.OverlapTimeout = 0.05
			r.grip(grab.Right, false)
			r.tick(1)
			Expect(hand.OverlapPending()).To(Equal(1))
			Expect(r.sc.World.Ignored("hand/right/palm", "ball/c")).To(BeTrue())

			r.tick(10)
			Expect(hand.OverlapPending()).To(BeZero())
			Expect(r.rec.Count(grab.EventOverlapTimeout)).To(Equal(1))
			Expect(r.rec.Count(grab.EventOverlapCleared)).To(BeZero())
			e, _ := r.rec.Last(grab.EventOverlapTimeout)
			Expect(errors.Is(e.Err, grab.ErrOverlapTimeout)).To(BeTrue())
			Expect(r.sc.World.Ignored("hand/right/palm", "ball/c")).To(BeFalse())
		})

		It("breaks the hold past the break distance", func() {
			ball.BreakDistance = 0.05
			r.sc.World.SetTransform("ball", spatial.At(mgl64.Vec3{0, 1, 1}))
			r.tick(1)

			Expect(r.rec.Count(grab.EventBreakDistance)).To(Equal(1))
			Expect(hand.State()).To(Equal(grab.Idle))
		})

		It("interrupts when the target is destroyed", func() {
			Expect(r.sc.DestroyTarget("ball")).To(Succeed())
			r.tick(1)

			e, ok := r.rec.Last(grab.EventInterrupted)
			Expect(ok).To(BeTrue())
			Expect(errors.Is(e.Err, grab.ErrTransitionInterrupted)).To(BeTrue())
			Expect(hand.State()).To(Equal(grab.Idle))
			Expect(hand.Target()).To(BeNil())
			Expect(r.sc.World.ConstraintCount()).To(BeZero())
		})
	})

	Describe("toggle trigger", func() {
		BeforeEach(func() {
			toggle := grab.TriggerToggle
			ball.Trigger = &toggle
		})

		It("keeps holding after the grip opens and lets go on the next press", func() {
			r.grip(grab.Right, true)
			r.tick(2)
			Expect(hand.ToggleActive()).To(BeTrue())

			r.grip(grab.Right, false)
			r.tick(3)
			Expect(hand.Target()).To(Equal(ball))

			r.grip(grab.Right, true)
			r.tick(1)
			Expect(hand.Target()).To(BeNil())
			Expect(hand.ToggleActive()).To(BeFalse())

			r.tick(3)
			Expect(hand.Target()).To(BeNil())
			Expect(r.rec.Count(grab.EventGrabbed)).To(Equal(1))
		})

		It("ignores the trigger while a grip-only toggle is latched", func() {
			ball.Control = grab.GripOnly
			r.grip(grab.Right, true)
			r.tick(2)
			Expect(hand.ToggleActive()).To(BeTrue())
			Expect(hand.Control()).To(Equal(grab.GripOnly))

			r.grip(grab.Right, false)
			r.tick(2)
			r.sc.Input.SetTrigger(grab.Right, true)
			r.tick(2)
			Expect(hand.Target()).To(Equal(ball))
			Expect(hand.ToggleActive()).To(BeTrue())

			r.sc.Input.SetTrigger(grab.Right, false)
			r.grip(grab.Right, true)
			r.tick(1)
			Expect(hand.Target()).To(BeNil())
		})

		It("ignores the grip while a trigger-only toggle is latched", func() {
			ball.Control = grab.TriggerOnly
			r.sc.Input.SetTrigger(grab.Right, true)
			r.tick(2)
			Expect(hand.Target()).To(Equal(ball))
			Expect(hand.ToggleActive()).To(BeTrue())
			Expect(hand.Control()).To(Equal(grab.TriggerOnly))

			r.sc.Input.SetTrigger(grab.Right, false)
			r.tick(2)
			r.grip(grab.Right, true)
			r.tick(2)
			Expect(hand.Target()).To(Equal(ball))
			Expect(hand.ToggleActive()).To(BeTrue())

			r.grip(grab.Right, false)
			r.sc.Input.SetTrigger(grab.Right, true)
			r.tick(1)
			Expect(hand.Target()).To(BeNil())
		})
	})

	Describe("hold types", func() {
		It("refuses a second hand on a one-handed target", func() {
			left := r.addHand(grab.Left, leftAt, nil)
			r.tick(1)
			r.grip(grab.Right, true)
			r.tick(1)

			ok, why := left.CanGrab(ball)
			Expect(ok).To(BeFalse())
			Expect(why).To(Equal(grab.IneligibleHoldType))

			r.grip(grab.Left, true)
			r.tick(2)
			Expect(left.Target()).To(BeNil())
			Expect(ball.Primary()).To(Equal(hand))
		})

		It("hands the target over when the holder allows swapping", func() {
			r2 := newRig()
			right := r2.addHand(grab.Right, rightAt, func(c *grab.HandConfig) { c.AllowSwap = true })
			left := r2.addHand(grab.Left, leftAt, nil)
			b := r2.addBall("ball", ballAt)
			r2.tick(1)

			r2.grip(grab.Right, true)
			r2.tick(2)
			Expect(b.Primary()).To(Equal(right))

			r2.grip(grab.Left, true)
			Expect(r2.tickUntil(func() bool { return left.State() == grab.Held }, 60)).To(BeTrue())
			Expect(right.State()).To(Equal(grab.Idle))
			Expect(b.HolderCount()).To(Equal(1))
			Expect(b.Primary()).To(Equal(left))
		})

		It("lets a second hand join a two-handed target", func() {
			ball.HoldType = grab.TwoHanded
			left := r.addHand(grab.Left, leftAt, nil)
			r.tick(1)

			r.grip(grab.Left, true)
			r.tick(1)
			r.grip(grab.Right, true)
			r.tick(1)

			Expect(ball.HolderCount()).To(Equal(2))
			Expect(ball.Primary()).To(Equal(left))
			Expect(hand.Target()).To(Equal(ball))
		})

		It("centers the mass between both hands of a two-handed hold", func() {
			ball.HoldType = grab.TwoHanded
			ball.PalmCenterOfMass = true
			left := r.addHand(grab.Left, leftAt, nil)
			r.tick(1)

			r.grip(grab.Left, true)
			r.grip(grab.Right, true)
			both := func() bool { return held() && left.State() == grab.Held }
			Expect(r.tickUntil(both, 60)).To(BeTrue())
			Expect(r.sc.World.ConstraintCount()).To(Equal(2))

			mid := r.position("hand/right").Add(r.position("hand/left")).Mul(0.5)
			st, ok := r.sc.World.State("ball")
			Expect(ok).To(BeTrue())
			Expect(st.WorldCenterOfMass.ApproxEqualThreshold(mid, 1e-3)).To(BeTrue())
		})
	})

	Describe("line grabs", func() {
		var rod *grab.Target

		BeforeEach(func() {
			r = newRig()
			hand = r.addHand(grab.Right, rightAt, nil)
			var err error
			rod, err = r.sc.AddTarget(scene.TargetDef{
				ID: "rod", Kind: physics.Dynamic, Transform: spatial.At(mgl64.Vec3{0, 1, 0.35}),
				Mass: 1, Shape: physics.Box, HalfExtents: mgl64.Vec3{0.02, 0.02, 0.3},
			})
			Expect(err).NotTo(HaveOccurred())
			p := centerPoint("shaft")
			p.Line = &grab.LineGrab{
				Start: mgl64.Vec3{0, 0, -0.25}, End: mgl64.Vec3{0, 0, 0.25},
				CanReposition: true, CanRotate: true, InitialCanReposition: true,
			}
			rod.Points = []*grab.GrabPoint{p}
			r.tick(1)
		})

		It("clamps the anchor to the line", func() {
			r.grip(grab.Right, true)
			r.tick(1)

			Expect(hand.IsLineGrab()).To(BeTrue())
			anchor, ok := hand.LineAnchor()
			Expect(ok).To(BeTrue())
			Expect(anchor.ApproxEqualThreshold(mgl64.Vec3{0, 0, -0.25}, 1e-9)).To(BeTrue())
		})

		It("loosens while only the trigger holds it", func() {
			r.grip(grab.Right, true)
			Expect(r.tickUntil(func() bool { return hand.State() == grab.Held }, 60)).To(BeTrue())
			Expect(hand.TightlyHeld()).To(BeTrue())

			r.sc.Input.SetTrigger(grab.Right, true)
			r.tick(1)
			r.grip(grab.Right, false)
			r.tick(1)

			Expect(hand.State()).To(Equal(grab.Held))
			Expect(hand.TightlyHeld()).To(BeFalse())
			joint := hand.Constraint().Spec().Joint
			Expect(joint.XMotion).To(Equal(physics.MotionLimited))
			Expect(joint.LinearLimit).To(BeNumerically("~", 0.25, 1e-9))
			Expect(joint.AngularXMotion).To(Equal(physics.MotionFree))
		})
	})

	Describe("grab variants", func() {
		It("travels the hand to a stationary target", func() {
			lever, err := r.sc.AddTarget(scene.TargetDef{
				ID: "lever", Kind: physics.Static, Transform: spatial.At(mgl64.Vec3{0.2, 1, 0}),
				Shape: physics.Sphere, Radius: 0.05,
			})
			Expect(err).NotTo(HaveOccurred())
			lever.Stationary = true
			lever.Points = []*grab.GrabPoint{centerPoint("handle")}
			Expect(lever.HasBody()).To(BeFalse())

			Expect(hand.ForceGrab(lever, grab.TriggerActive, nil)).To(Succeed())
			r.grip(grab.Right, true)
			r.tick(1)
			Expect(hand.Traveling()).To(BeTrue())

			Expect(r.tickUntil(held, 60)).To(BeTrue())
			spec := hand.Constraint().Spec()
			Expect(spec.Owner).To(Equal(physics.BodyID("hand/right")))
			Expect(spec.Connected).To(BeEmpty())
		})

		It("holds an offset target where the hand is", func() {
			ball.GrabType = grab.GrabOffset
			r.grip(grab.Right, true)
			Expect(r.tickUntil(held, 10)).To(BeTrue())
			Expect(hand.AnchorKind()).To(Equal(grab.AnchorOffset))
			Expect(hand.GrabPoint()).To(BeNil())
		})

		It("synthesizes a palm pose for dynamic targets", func() {
			ball.GrabType = grab.GrabDynamic
			r.grip(grab.Right, true)
			r.tick(1)

			Expect(hand.AnchorKind()).To(Equal(grab.AnchorDynamic))
			p, ok := hand.PhysicsPose()
			Expect(ok).To(BeTrue())
			b, ok := hand.PhysicsPoseBytes()
			Expect(ok).To(BeTrue())
			decoded, err := pose.Decode(b)
			Expect(err).NotTo(HaveOccurred())
			Expect(decoded.Curls).To(Equal(p.Curls))

			info, _ := r.sc.World.Collider("ball/c")
			Expect(info.Layer).To(Equal(physics.Layer(0)))
		})

		It("force grabs out of reach and holds until force released", func() {
			far := r.addBall("far", mgl64.Vec3{1, 1, 0})
			Expect(hand.ForceGrab(far, grab.TriggerManualRelease, nil)).To(Succeed())
			Expect(r.rec.Count(grab.EventGrabbed)).To(Equal(1))

			r.tick(1)
			Expect(hand.State()).To(Equal(grab.Held))
			Expect(r.position("far").Sub(rightAt).Len()).To(BeNumerically("<", 1e-6))

			r.tick(5)
			Expect(hand.Target()).To(Equal(far))

			err := hand.ForceGrab(ball, grab.TriggerActive, nil)
			Expect(errors.Is(err, grab.ErrHandBusy)).To(BeTrue())

			hand.ForceRelease()
			r.tick(1)
			Expect(hand.State()).To(Equal(grab.Idle))
		})

		It("auto grabs only while the hold input is down", func() {
			r.sc.Input.Latch()
			Expect(hand.TryAutoGrab(ball, nil)).To(BeFalse())

			r.grip(grab.Right, true)
			r.sc.Input.Latch()
			Expect(hand.TryAutoGrab(ball, nil)).To(BeTrue())
			Expect(hand.Target()).To(Equal(ball))
		})

		It("blocks grabs without line of sight", func() {
			far := r.addBall("far", mgl64.Vec3{0.5, 1, 0})
			far.RequireLineOfSight = true
			ok, _ := hand.CanGrab(far)
			Expect(ok).To(BeTrue())

			_, err := r.sc.AddTarget(scene.TargetDef{
				ID: "wall", Kind: physics.Static, Transform: spatial.At(mgl64.Vec3{0.25, 1, 0}),
				Shape: physics.Box, HalfExtents: mgl64.Vec3{0.01, 0.5, 0.5},
			})
			Expect(err).NotTo(HaveOccurred())
			ok, why := hand.CanGrab(far)
			Expect(ok).To(BeFalse())
			Expect(why).To(Equal(grab.LineOfSightBlocked))
		})

		It("poses from a remote payload", func() {
			p := pose.FromTransform(mgl64.Vec3{}, mgl64.QuatIdent(), [pose.FingerCount]float32{1, 1, 1, 1, 1})
			b, err := p.MarshalBinary()
			Expect(err).NotTo(HaveOccurred())
			Expect(hand.ApplyRemotePose(b)).To(Succeed())
			Expect(r.sc.Poser.PoseName(grab.Right)).To(Equal("payload"))

			Expect(hand.ApplyRemotePose([]byte{1, 2})).NotTo(Succeed())
		})
	})

	Describe("grab point swap", func() {
		var other *grab.GrabPoint

		BeforeEach(func() {
			other = centerPoint("side")
			other.Local = spatial.New(mgl64.Vec3{}, mgl64.QuatRotate(mgl64.DegToRad(90), spatial.Up))
			ball.Points = append(ball.Points, other)
		})

		It("rejects swaps without a held target or with a foreign point", func() {
			err := hand.ChangeGrabPoint(other, 0.1, spatial.Up)
			Expect(errors.Is(err, grab.ErrUnknownTarget)).To(BeTrue())

			r.grip(grab.Right, true)
			r.tick(1)
			err = hand.ChangeGrabPoint(centerPoint("stray"), 0.1, spatial.Up)
			Expect(errors.Is(err, grab.ErrGrabPointUnavailable)).To(BeTrue())
		})

		It("rotates the target onto the new point", func() {
			r.grip(grab.Right, true)
			Expect(r.tickUntil(held, 60)).To(BeTrue())
			Expect(hand.GrabPoint()).To(Equal(ball.Points[0]))

			Expect(hand.ChangeGrabPoint(other, 0.1, spatial.Up)).To(Succeed())
			r.tick(1)
			Expect(hand.Swapping()).To(BeTrue())
			Expect(hand.State()).To(Equal(grab.Grabbing))

			Expect(r.tickUntil(func() bool { return !hand.Swapping() }, 30)).To(BeTrue())
			Expect(hand.State()).To(Equal(grab.Held))
			Expect(hand.GrabPoint()).To(Equal(other))
			Expect(r.rec.Count(grab.EventGrabPointSwapped)).To(Equal(1))
			Expect(r.sc.World.ConstraintCount()).To(Equal(1))
		})
	})

	Describe("sockets", func() {
		var holster *scene.Socket

		BeforeEach(func() {
			holster = &scene.Socket{Name: "holster", Pose: spatial.At(ballAt), Radius: 0.2, Detect: grab.DetectSocket}
			Expect(r.sc.Rack.Add(holster)).To(Succeed())
			Expect(r.sc.Rack.Place(holster, ball)).To(Succeed())
			r.tick(1)
		})

		It("hovers the socket instead of the socketed target", func() {
			Expect(hand.HoveredSocket()).To(Equal(holster))
			Expect(holster.HandInside(grab.Right)).To(BeTrue())
			ok, why := hand.CanGrab(ball)
			Expect(ok).To(BeFalse())
			Expect(why).To(Equal(grab.Socketed))
		})

		It("moves the hand to the target's control once the socket's input is let go", func() {
			ball.Control = grab.GripOnly
			r.sc.Input.SetTrigger(grab.Right, true)
			r.tick(1)
			Expect(hand.Target()).To(Equal(ball))
			Expect(hand.Control()).To(Equal(grab.GripOrTrigger))

			r.grip(grab.Right, true)
			r.tick(1)
			Expect(hand.Control()).To(Equal(grab.GripOrTrigger))

			r.sc.Input.SetTrigger(grab.Right, false)
			r.tick(1)
			Expect(hand.Control()).To(Equal(grab.GripOnly))
			Expect(hand.Target()).To(Equal(ball))
		})

		It("moves to trigger only when a trigger-only target is taken with the grip", func() {
			ball.Control = grab.TriggerOnly
			r.grip(grab.Right, true)
			r.tick(1)
			Expect(hand.Control()).To(Equal(grab.GripOrTrigger))

			r.sc.Input.SetTrigger(grab.Right, true)
			r.tick(1)
			r.grip(grab.Right, false)
			r.tick(1)
			Expect(hand.Control()).To(Equal(grab.TriggerOnly))
			Expect(hand.Target()).To(Equal(ball))
		})

		It("unsockets on grab and resockets a release inside the socket", func() {
			r.grip(grab.Right, true)
			r.tick(1)
			Expect(hand.Target()).To(Equal(ball))
			Expect(ball.IsSocketed()).To(BeFalse())
			Expect(holster.Held()).To(BeNil())

			r.tick(3)
			r.grip(grab.Right, false)
			r.tick(1)
			Expect(ball.IsSocketed()).To(BeTrue())
			Expect(holster.Held()).To(Equal(ball))
			st, _ := r.sc.World.State("ball")
			Expect(st.Kinematic).To(BeTrue())
		})
	})
})
