// Package pose holds the serializable hand pose captured by a palm grab.
//
// The wire layout is fixed: position (3 x float32), rotation (4 x float32,
// x y z w) and FingerCount finger curls (float32), little endian.
package pose

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

const (
	FingerCount = 5
	floatCount  = 3 + 4 + FingerCount
	// Size is the encoded payload length in bytes.
	Size = floatCount * 4
)

var (
	ErrShortPayload = errors.New("pose: payload too short")
	ErrPayloadSize  = errors.New("pose: payload size mismatch")
)

// Payload is a captured hand pose relative to the grabbed object.
type Payload struct {
	Position [3]float32
	Rotation [4]float32
	Curls    [FingerCount]float32
}

// FromTransform builds a payload from a local position and rotation.
func FromTransform(position mgl64.Vec3, rotation mgl64.Quat, curls [FingerCount]float32) Payload {
	return Payload{
		Position: [3]float32{float32(position.X()), float32(position.Y()), float32(position.Z())},
		Rotation: [4]float32{float32(rotation.X()), float32(rotation.Y()), float32(rotation.Z()), float32(rotation.W)},
		Curls:    curls,
	}
}

func (p Payload) Vec() mgl64.Vec3 {
	return mgl64.Vec3{float64(p.Position[0]), float64(p.Position[1]), float64(p.Position[2])}
}

func (p Payload) Quat() mgl64.Quat {
	q := mgl64.Quat{
		W: float64(p.Rotation[3]),
		V: mgl64.Vec3{float64(p.Rotation[0]), float64(p.Rotation[1]), float64(p.Rotation[2])},
	}
	if q.Len() == 0 {
		return mgl64.QuatIdent()
	}
	return q
}

func (p Payload) floats() [floatCount]float32 {
	var f [floatCount]float32
	copy(f[0:3], p.Position[:])
	copy(f[3:7], p.Rotation[:])
	copy(f[7:], p.Curls[:])
	return f
}

func (p Payload) MarshalBinary() ([]byte, error) {
	return p.Append(make([]byte, 0, Size)), nil
}

// Append encodes p onto buf.
func (p Payload) Append(buf []byte) []byte {
	for _, f := range p.floats() {
		buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(f))
	}
	return buf
}

func (p *Payload) UnmarshalBinary(data []byte) error {
	if len(data) < Size {
		return fmt.Errorf("%w: %d < %d", ErrShortPayload, len(data), Size)
	}
	if len(data) != Size {
		return fmt.Errorf("%w: %d != %d", ErrPayloadSize, len(data), Size)
	}
	var f [floatCount]float32
	for i := range f {
		f[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	copy(p.Position[:], f[0:3])
	copy(p.Rotation[:], f[3:7])
	copy(p.Curls[:], f[7:])
	return nil
}

// Decode is a convenience wrapper around UnmarshalBinary.
func Decode(data []byte) (Payload, error) {
	var p Payload
	err := p.UnmarshalBinary(data)
	return p, err
}
