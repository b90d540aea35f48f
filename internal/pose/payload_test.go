package pose

import (
	"errors"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func TestPayloadRoundTripBitExact(t *testing.T) {
	in := Payload{
		Position: [3]float32{0.123456789, -4.5, float32(math.SmallestNonzeroFloat32)},
		Rotation: [4]float32{0.1, -0.2, 0.3, 0.927},
		Curls:    [FingerCount]float32{0, 0.25, 0.5, 0.999999, 1},
	}

	data, err := in.MarshalBinary()
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if len(data) != Size {
		t.Fatalf("expected %d bytes, got %d", Size, len(data))
	}

	out, err := Decode(data)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}

	for i := range in.Position {
		if math.Float32bits(in.Position[i]) != math.Float32bits(out.Position[i]) {
			t.Errorf("position[%d]: expected %v, got %v", i, in.Position[i], out.Position[i])
		}
	}
	for i := range in.Rotation {
		if math.Float32bits(in.Rotation[i]) != math.Float32bits(out.Rotation[i]) {
			t.Errorf("rotation[%d]: expected %v, got %v", i, in.Rotation[i], out.Rotation[i])
		}
	}
	for i := range in.Curls {
		if math.Float32bits(in.Curls[i]) != math.Float32bits(out.Curls[i]) {
			t.Errorf("curl[%d]: expected %v, got %v", i, in.Curls[i], out.Curls[i])
		}
	}
}

func TestPayloadFieldOrder(t *testing.T) {
	p := Payload{Position: [3]float32{1, 0, 0}}
	data, _ := p.MarshalBinary()
	if math.Float32frombits(uint32(data[0])|uint32(data[1])<<8|uint32(data[2])<<16|uint32(data[3])<<24) != 1 {
		t.Error("expected position x in the first four bytes")
	}
}

func TestDecodeRejectsBadLength(t *testing.T) {
	if _, err := Decode(make([]byte, Size-1)); !errors.Is(err, ErrShortPayload) {
		t.Errorf("expected ErrShortPayload, got %v", err)
	}
	if _, err := Decode(make([]byte, Size+4)); !errors.Is(err, ErrPayloadSize) {
		t.Errorf("expected ErrPayloadSize, got %v", err)
	}
}

func TestFromTransform(t *testing.T) {
	q := mgl64.QuatRotate(0.5, mgl64.Vec3{0, 1, 0})
	p := FromTransform(mgl64.Vec3{1, 2, 3}, q, [FingerCount]float32{1, 1, 1, 1, 1})

	if !p.Vec().ApproxEqualThreshold(mgl64.Vec3{1, 2, 3}, 1e-6) {
		t.Errorf("expected position (1,2,3), got %v", p.Vec())
	}
	if !p.Quat().ApproxEqualThreshold(q, 1e-6) {
		t.Errorf("expected rotation %v, got %v", q, p.Quat())
	}
	if (Payload{}).Quat() != mgl64.QuatIdent() {
		t.Error("expected identity for empty rotation")
	}
}
