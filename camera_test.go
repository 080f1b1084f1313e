package nimbus

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func testCamera() *FrameCamera {
	return &FrameCamera{
		Position: mgl64.Vec3{0, 0, 3},
		FarCorners: [4]mgl64.Vec3{
			{-2, -2, -5},
			{2, -2, -5},
			{-2, 2, -5},
			{2, 2, -5},
		},
		Near: 0.1,
		Far:  100,
	}
}

func TestRayThrough_Corners(t *testing.T) {
	cam := testCamera()
	cases := []struct {
		u, v   float64
		target mgl64.Vec3
	}{
		{0, 0, mgl64.Vec3{-2, -2, -5}},
		{1, 0, mgl64.Vec3{2, -2, -5}},
		{0, 1, mgl64.Vec3{-2, 2, -5}},
		{1, 1, mgl64.Vec3{2, 2, -5}},
		{0.5, 0.5, mgl64.Vec3{0, 0, -5}},
	}
	for _, c := range cases {
		origin, dir := cam.rayThrough(c.u, c.v)
		want := c.target.Sub(cam.Position).Normalize()
		for i := 0; i < 3; i++ {
			if math.Abs(float64(dir[i])-want[i]) > 1e-6 {
				t.Errorf("u=%v v=%v: expected dir %v, got %v", c.u, c.v, want, dir)
				break
			}
		}
		if origin.X() != 0 || origin.Y() != 0 || origin.Z() != 3 {
			t.Errorf("expected origin at camera position, got %v", origin)
		}
	}
}

func TestFarPlaneCorners_Identity(t *testing.T) {
	corners := FarPlaneCorners(mgl64.Ident4())
	want := [4]mgl64.Vec3{{-1, -1, 1}, {1, -1, 1}, {-1, 1, 1}, {1, 1, 1}}
	for i := range corners {
		if corners[i] != want[i] {
			t.Errorf("corner %d: expected %v, got %v", i, want[i], corners[i])
		}
	}
}

func TestLinearizeDepth_Endpoints(t *testing.T) {
	cam := testCamera()
	if got := cam.linearizeDepth(0); math.Abs(float64(got)-0.1) > 1e-5 {
		t.Errorf("z=0: expected near plane 0.1, got %v", got)
	}
	if got := cam.linearizeDepth(1); math.Abs(float64(got)-100) > 1e-2 {
		t.Errorf("z=1: expected far plane 100, got %v", got)
	}
	mid := cam.linearizeDepth(0.5)
	if mid <= 0.1 || mid >= 100 {
		t.Errorf("z=0.5: expected distance between near and far, got %v", mid)
	}
}
