package velocity

import (
	"sort"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/grabsim/internal/spatial"
)

// directionThreshold drops samples pointing away from the mean direction.
const directionThreshold = 0.2

// AverageVelocity averages samples after discarding those whose direction
// disagrees with the raw mean (normalized dot below 0.2).
//
// Without peak mode the kept samples are summed and divided by the full
// sample count. With peak mode the peakCount largest kept samples by
// magnitude are summed and divided by peakCount.
func AverageVelocity(samples []mgl64.Vec3, takePeak bool, peakCount int) mgl64.Vec3 {
	frames := len(samples)
	if frames == 0 {
		return mgl64.Vec3{}
	}

	var sum mgl64.Vec3
	for _, v := range samples {
		sum = sum.Add(v)
	}
	dir := spatial.Normalize(sum.Mul(1 / float64(frames)))

	kept := make([]mgl64.Vec3, 0, frames)
	sum = mgl64.Vec3{}
	for _, v := range samples {
		if dir.Dot(spatial.Normalize(v)) < directionThreshold {
			continue
		}
		if takePeak {
			kept = append(kept, v)
		} else {
			sum = sum.Add(v)
		}
	}

	if !takePeak {
		return sum.Mul(1 / float64(frames))
	}
	if peakCount <= 0 {
		return mgl64.Vec3{}
	}

	sort.SliceStable(kept, func(i, j int) bool { return kept[i].LenSqr() < kept[j].LenSqr() })
	sum = mgl64.Vec3{}
	for i, j := len(kept)-1, 0; j < peakCount && i >= 0; i, j = i-1, j+1 {
		sum = sum.Add(kept[i])
	}
	return sum.Mul(1 / float64(peakCount))
}
