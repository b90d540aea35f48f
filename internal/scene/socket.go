package scene

import (
	"fmt"
	"sort"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/grabsim/internal/grab"
	"github.com/san-kum/grabsim/internal/physics"
	"github.com/san-kum/grabsim/internal/spatial"
	"go.uber.org/zap"
)

// Socket is a placement slot holding at most one target.
type Socket struct {
	Name   string
	Pose   spatial.Transform
	Radius float64
	Mode   grab.Control
	Detect grab.Detection
	Locked bool
	held   *grab.Target
	hands  [2]bool
}

func (s *Socket) ID() string                    { return s.Name }
func (s *Socket) Held() *grab.Target            { return s.held }
func (s *Socket) Control() grab.Control         { return s.Mode }
func (s *Socket) Detection() grab.Detection     { return s.Detect }
func (s *Socket) CanRemove(side grab.Side) bool { return !s.Locked }
func (s *Socket) HandEntered(side grab.Side)    { s.hands[side] = true }
func (s *Socket) HandExited(side grab.Side)     { s.hands[side] = false }

// HandInside reports whether a hand is hovering this socket.
func (s *Socket) HandInside(side grab.Side) bool { return s.hands[side] }

// SocketRack owns the sockets of a scene. It is a SocketProvider and, as a
// Listener, unsockets targets when they are grabbed and sockets released
// targets that land inside a free socket.
type SocketRack struct {
	phys    physics.Bodies
	log     *zap.Logger
	sockets []*Socket
}

func NewSocketRack(phys physics.Bodies, log *zap.Logger) *SocketRack {
	if log == nil {
		log = zap.NewNop()
	}
	return &SocketRack{phys: phys, log: log}
}

func (r *SocketRack) Add(s *Socket) error {
	for _, x := range r.sockets {
		if x.Name == s.Name {
			return fmt.Errorf("socket %s already exists", s.Name)
		}
	}
	r.sockets = append(r.sockets, s)
	return nil
}

func (r *SocketRack) Get(name string) *Socket {
	for _, s := range r.sockets {
		if s.Name == name {
			return s
		}
	}
	return nil
}

func (r *SocketRack) Sockets() []*Socket { return r.sockets }

// Place snaps t into s and freezes it there.
func (r *SocketRack) Place(s *Socket, t *grab.Target) error {
	if s.held != nil {
		return fmt.Errorf("socket %s is occupied by %s", s.Name, s.held.ID)
	}
	s.held = t
	t.Socket = s
	r.phys.SetTransform(t.Root, s.Pose)
	if t.HasBody() {
		r.phys.SetVelocity(t.Body, mgl64.Vec3{}, mgl64.Vec3{})
		r.phys.SetKinematic(t.Body, true)
	}
	r.log.Debug("SocketRack: placed", zap.String("socket", s.Name), zap.String("target", t.ID))
	return nil
}

func (r *SocketRack) remove(t *grab.Target) {
	s, ok := t.Socket.(*Socket)
	if !ok || s.held != t {
		return
	}
	s.held = nil
	t.Socket = nil
	r.log.Debug("SocketRack: removed", zap.String("socket", s.Name), zap.String("target", t.ID))
}

func (r *SocketRack) ValidSockets(side grab.Side, palm mgl64.Vec3) []grab.Socket {
	type near struct {
		s *Socket
		d float64
	}
	var found []near
	for _, s := range r.sockets {
		if d := s.Pose.Position.Sub(palm).Len(); d <= s.Radius {
			found = append(found, near{s, d})
		}
	}
	sort.SliceStable(found, func(i, j int) bool { return found[i].d < found[j].d })
	out := make([]grab.Socket, len(found))
	for i, n := range found {
		out[i] = n.s
	}
	return out
}

func (r *SocketRack) OnEvent(e grab.Event) {
	t := e.Target
	if t == nil {
		return
	}
	switch e.Kind {
	case grab.EventGrabbed:
		if t.IsSocketed() {
			r.remove(t)
		}
	case grab.EventReleased:
		if t.IsHeld() || t.IsSocketed() || t.Destroyed() {
			return
		}
		tf, ok := r.phys.Transform(t.Root)
		if !ok {
			return
		}
		for _, s := range r.sockets {
			if s.held == nil && s.Pose.Position.Sub(tf.Position).Len() <= s.Radius {
				if err := r.Place(s, t); err != nil {
					r.log.Warn("SocketRack: place failed", zap.Error(err))
				}
				return
			}
		}
	}
}
