package velocity

import "github.com/go-gl/mathgl/mgl64"

const (
	DefaultLookback         = 5
	DefaultPeakCount        = 3
	DefaultAngularThreshold = 1.0
)

// HandThrow holds the hand-side release settings.
type HandThrow struct {
	Lookback      int  `yaml:"lookback" json:"lookback"`
	LookbackStart int  `yaml:"lookback_start" json:"lookback_start"`
	TakePeak      bool `yaml:"take_peak" json:"take_peak"`
	PeakCount     int  `yaml:"peak_count" json:"peak_count"`
	// VelocityFactor scales the hand's own averaged linear velocity.
	VelocityFactor float64 `yaml:"velocity_factor" json:"velocity_factor"`
	// AngularThreshold is the hand angular speed (rad/s) above which wrist
	// rotation adds linear velocity.
	AngularThreshold        float64 `yaml:"angular_threshold" json:"angular_threshold"`
	AngularConversionFactor float64 `yaml:"angular_conversion_factor" json:"angular_conversion_factor"`
}

func DefaultHandThrow() HandThrow {
	return HandThrow{
		Lookback:                DefaultLookback,
		PeakCount:               DefaultPeakCount,
		AngularThreshold:        DefaultAngularThreshold,
		AngularConversionFactor: 1,
	}
}

// ObjectThrow holds the object-side release factors.
type ObjectThrow struct {
	VelocityFactor          float64 `yaml:"velocity_factor" json:"velocity_factor"`
	AngularFactor           float64 `yaml:"angular_factor" json:"angular_factor"`
	AngularConversionFactor float64 `yaml:"angular_conversion_factor" json:"angular_conversion_factor"`
}

func DefaultObjectThrow() ObjectThrow {
	return ObjectThrow{VelocityFactor: 1, AngularFactor: 1, AngularConversionFactor: 1}
}

// Release is everything needed to compose a throw.
type Release struct {
	Hand   *Tracker
	Object *Tracker
	// Anchor is the active grab anchor in world space, or the object's
	// world center of mass when there is none.
	Anchor mgl64.Vec3
	// Pivot is the throwing center-of-mass reference, or the hand body's
	// world center of mass.
	Pivot  mgl64.Vec3
	Factor ObjectThrow
}

// Compose combines hand and object velocity histories into the release
// linear and angular velocity of the object.
func (h HandThrow) Compose(r Release) (linear, angular mgl64.Vec3) {
	peak := Window{Frames: h.Lookback, Start: h.LookbackStart, TakePeak: h.TakePeak, PeakCount: h.PeakCount}
	plain := Window{Frames: h.Lookback, Start: h.LookbackStart}

	objVel := r.Object.LinearAverage(peak)
	objAng := r.Object.AngularAverage(plain)
	handVel := r.Hand.LinearAverage(peak)
	handAng := r.Hand.AngularAverage(plain)

	linear = handVel.Mul(h.VelocityFactor).Add(objVel.Mul(r.Factor.VelocityFactor))
	linear = linear.Add(h.WristContribution(handAng, r.Anchor, r.Pivot, r.Factor))
	angular = objAng.Mul(r.Factor.AngularFactor)
	return linear, angular
}

// WristContribution is the linear velocity added by hand rotation about
// the pivot; zero at or below the angular threshold.
func (h HandThrow) WristContribution(handAngular, anchor, pivot mgl64.Vec3, f ObjectThrow) mgl64.Vec3 {
	if handAngular.Len() <= h.AngularThreshold {
		return mgl64.Vec3{}
	}
	return handAngular.Cross(anchor.Sub(pivot)).Mul(f.AngularConversionFactor * h.AngularConversionFactor)
}
