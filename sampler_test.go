package nimbus

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestProceduralSampler_Passthrough(t *testing.T) {
	s := &ProceduralSampler{Func: func(x, y, z, tt float32) float32 { return x + 2*y + 3*z + 4*tt }}
	got := s.Sample(mgl32.Vec3{1, 1, 1}, 2)
	if got != 14 {
		t.Errorf("expected 14, got %v", got)
	}
}

func rampAtlas(t *testing.T) *FieldAtlas {
	t.Helper()
	a, err := PackAtlas([3]int{2, 1, 1}, mgl32.Vec3{}, mgl32.Vec3{1, 1, 1}, 2)
	if err != nil {
		t.Fatal(err)
	}
	// Block t holds voxel values t*10 and t*10+1 along X
	sampler := func(ix, iy, iz int, center mgl32.Vec3, ti int) float32 {
		return float32(ti*10 + ix)
	}
	if _, _, err := a.Resample(sampler, 0, 0); err != nil {
		t.Fatal(err)
	}
	return a
}

func TestAtlasSampler_Trilinear(t *testing.T) {
	s := &AtlasSampler{Atlas: rampAtlas(t)}

	// Midpoint between the two voxel centers (0.5 and 1.5 in X)
	if got := s.Sample(mgl32.Vec3{1.0, 0.5, 0.5}, 0); math.Abs(float64(got)-0.5) > 1e-4 {
		t.Errorf("expected 0.5 at midpoint, got %v", got)
	}
	// At a voxel center the value is exact
	if got := s.Sample(mgl32.Vec3{0.5, 0.5, 0.5}, 0); got != 0 {
		t.Errorf("expected 0 at first voxel center, got %v", got)
	}
	// Outside the block the lookup clamps to the edge voxel
	if got := s.Sample(mgl32.Vec3{-5, 0.5, 0.5}, 0); got != 0 {
		t.Errorf("expected clamped edge value 0, got %v", got)
	}
	if got := s.Sample(mgl32.Vec3{5, 0.5, 0.5}, 0); got != 1 {
		t.Errorf("expected clamped edge value 1, got %v", got)
	}
}

func TestAtlasSampler_TimeBlend(t *testing.T) {
	s := &AtlasSampler{Atlas: rampAtlas(t)}
	p := mgl32.Vec3{1.0, 0.5, 0.5} // spatial midpoint: 0.5 at t=0, 10.5 at t=1

	if got := s.Sample(p, 0); math.Abs(float64(got)-0.5) > 1e-3 {
		t.Errorf("t=0: expected 0.5, got %v", got)
	}
	if got := s.Sample(p, 0.5); math.Abs(float64(got)-5.5) > 1e-3 {
		t.Errorf("t=0.5: expected 5.5, got %v", got)
	}
	if got := s.Sample(p, 1); math.Abs(float64(got)-10.5) > 1e-3 {
		t.Errorf("t=1: expected 10.5, got %v", got)
	}
}

func TestAtlasSampler_TimeWrap(t *testing.T) {
	s := &AtlasSampler{Atlas: rampAtlas(t)}
	p := mgl32.Vec3{1.0, 0.5, 0.5}

	// time=2 wraps to block 0
	if got := s.Sample(p, 2); math.Abs(float64(got)-0.5) > 1e-3 {
		t.Errorf("t=2: expected wrap to 0.5, got %v", got)
	}
	// time=1.5 blends block 1 with wrapped block 0
	if got := s.Sample(p, 1.5); math.Abs(float64(got)-5.5) > 1e-3 {
		t.Errorf("t=1.5: expected 5.5, got %v", got)
	}
}
