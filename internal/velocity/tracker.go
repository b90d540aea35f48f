// Package velocity keeps short histories of linear and angular velocity
// samples and turns them into release ("throw") velocities.
package velocity

import "github.com/go-gl/mathgl/mgl64"

// DefaultCount is the number of samples kept per tracked entity.
const DefaultCount = 10

// Tracker is a fixed-size ring buffer of paired linear and angular
// samples. Index 0 is the most recent sample. The buffer starts full of
// zero samples so lookbacks are always defined.
type Tracker struct {
	linear  []mgl64.Vec3
	angular []mgl64.Vec3
	head    int
}

func NewTracker(n int) *Tracker {
	if n <= 0 {
		n = DefaultCount
	}
	return &Tracker{
		linear:  make([]mgl64.Vec3, n),
		angular: make([]mgl64.Vec3, n),
	}
}

func (t *Tracker) Len() int { return len(t.linear) }

// Push records a new sample, evicting the oldest.
func (t *Tracker) Push(linear, angular mgl64.Vec3) {
	t.head = (t.head - 1 + len(t.linear)) % len(t.linear)
	t.linear[t.head] = linear
	t.angular[t.head] = angular
}

// Linear returns the sample i steps back (0 = newest).
func (t *Tracker) Linear(i int) mgl64.Vec3 {
	return t.linear[(t.head+i)%len(t.linear)]
}

func (t *Tracker) Angular(i int) mgl64.Vec3 {
	return t.angular[(t.head+i)%len(t.angular)]
}

// Reset refills the buffer with zero samples.
func (t *Tracker) Reset() {
	for i := range t.linear {
		t.linear[i] = mgl64.Vec3{}
		t.angular[i] = mgl64.Vec3{}
	}
	t.head = 0
}

// Window describes which samples an average looks at.
type Window struct {
	Frames    int
	Start     int
	TakePeak  bool
	PeakCount int
}

// clamp keeps start+frames inside a buffer of n samples.
func (w Window) clamp(n int) Window {
	if w.Start < 0 {
		w.Start = 0
	}
	if w.Start > n {
		w.Start = n
	}
	if w.Start+w.Frames > n {
		w.Frames = n - w.Start
	}
	if w.Frames < 0 {
		w.Frames = 0
	}
	return w
}

func (t *Tracker) LinearAverage(w Window) mgl64.Vec3 {
	w = w.clamp(t.Len())
	return AverageVelocity(t.window(t.Linear, w), w.TakePeak, w.PeakCount)
}

// AngularAverage never uses peak mode.
func (t *Tracker) AngularAverage(w Window) mgl64.Vec3 {
	w = w.clamp(t.Len())
	return AverageVelocity(t.window(t.Angular, w), false, 0)
}

func (t *Tracker) window(at func(int) mgl64.Vec3, w Window) []mgl64.Vec3 {
	out := make([]mgl64.Vec3, w.Frames)
	for i := range out {
		out[i] = at(w.Start + i)
	}
	return out
}
