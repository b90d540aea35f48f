package physics

import "fmt"

type Motion int

const (
	MotionLocked Motion = iota
	MotionLimited
	MotionFree
)

var motionNames = [...]string{"locked", "limited", "free"}

func (m Motion) String() string {
	if int(m) < len(motionNames) {
		return motionNames[m]
	}
	return fmt.Sprintf("motion(%d)", int(m))
}

func (m Motion) MarshalText() ([]byte, error) { return []byte(m.String()), nil }

func (m *Motion) UnmarshalText(b []byte) error {
	for i, n := range motionNames {
		if n == string(b) {
			*m = Motion(i)
			return nil
		}
	}
	return fmt.Errorf("unknown motion %q", string(b))
}

// Drive is a mass-normalized spring/damper. MaxForce <= 0 means unbounded.
type Drive struct {
	Spring   float64 `yaml:"spring" json:"spring"`
	Damper   float64 `yaml:"damper" json:"damper"`
	MaxForce float64 `yaml:"max_force" json:"max_force"`
}

func (d Drive) IsZero() bool { return d.Spring == 0 && d.Damper == 0 }

// clamp limits an acceleration to the drive's force budget for mass m.
func (d Drive) clamp(accel, mass float64) float64 {
	if d.MaxForce <= 0 || mass <= 0 {
		return accel
	}
	limit := d.MaxForce / mass
	if accel > limit {
		return limit
	}
	if accel < -limit {
		return -limit
	}
	return accel
}

// JointSettings is a named profile applied to a 6-DOF constraint.
type JointSettings struct {
	XMotion        Motion  `yaml:"x_motion" json:"x_motion"`
	YMotion        Motion  `yaml:"y_motion" json:"y_motion"`
	ZMotion        Motion  `yaml:"z_motion" json:"z_motion"`
	AngularXMotion Motion  `yaml:"angular_x_motion" json:"angular_x_motion"`
	AngularYMotion Motion  `yaml:"angular_y_motion" json:"angular_y_motion"`
	AngularZMotion Motion  `yaml:"angular_z_motion" json:"angular_z_motion"`
	LinearLimit    float64 `yaml:"linear_limit" json:"linear_limit"`
	XDrive         Drive   `yaml:"x_drive" json:"x_drive"`
	YDrive         Drive   `yaml:"y_drive" json:"y_drive"`
	ZDrive         Drive   `yaml:"z_drive" json:"z_drive"`
	AngularXDrive  Drive   `yaml:"angular_x_drive" json:"angular_x_drive"`
	AngularYZDrive Drive   `yaml:"angular_yz_drive" json:"angular_yz_drive"`
}

// LockAll returns a copy with every axis locked.
func (s JointSettings) LockAll() JointSettings {
	s.XMotion, s.YMotion, s.ZMotion = MotionLocked, MotionLocked, MotionLocked
	s.AngularXMotion, s.AngularYMotion, s.AngularZMotion = MotionLocked, MotionLocked, MotionLocked
	return s
}

// Rigid is a fully locked profile.
func Rigid() JointSettings { return JointSettings{} }

// Soft returns a profile with every axis free and driven by the given
// linear and angular drives.
func Soft(linear, angular Drive) JointSettings {
	return JointSettings{
		XMotion:        MotionFree,
		YMotion:        MotionFree,
		ZMotion:        MotionFree,
		AngularXMotion: MotionFree,
		AngularYMotion: MotionFree,
		AngularZMotion: MotionFree,
		XDrive:         linear,
		YDrive:         linear,
		ZDrive:         linear,
		AngularXDrive:  angular,
		AngularYZDrive: angular,
	}
}

func (s JointSettings) linearLocked() bool {
	return s.XMotion == MotionLocked && s.YMotion == MotionLocked && s.ZMotion == MotionLocked
}

func (s JointSettings) angularLocked() bool {
	return s.AngularXMotion == MotionLocked && s.AngularYMotion == MotionLocked && s.AngularZMotion == MotionLocked
}
