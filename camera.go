package nimbus

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"
)

// FrameCamera is the per-frame camera feed. The host supplies the eye
// position and the four far-plane corners in world space, precomputed in
// double precision so ray directions do not pick up far-plane error. Near
// and Far are only consulted when the volumetric depth test is enabled.
type FrameCamera struct {
	Position mgl64.Vec3

	// Far-plane world corners: lower-left, lower-right, upper-left,
	// upper-right, matching NDC (-1,-1), (1,-1), (-1,1), (1,1).
	FarCorners [4]mgl64.Vec3

	Near float32
	Far  float32
}

// FarPlaneCorners unprojects the four NDC far-plane corners through the
// inverse view-projection matrix. Hosts that track matrices instead of
// corners use this once per frame.
func FarPlaneCorners(invViewProj mgl64.Mat4) [4]mgl64.Vec3 {
	ndc := [4]mgl64.Vec4{
		{-1, -1, 1, 1},
		{1, -1, 1, 1},
		{-1, 1, 1, 1},
		{1, 1, 1, 1},
	}
	var out [4]mgl64.Vec3
	for i, c := range ndc {
		w := invViewProj.Mul4x1(c)
		out[i] = mgl64.Vec3{w.X() / w.W(), w.Y() / w.W(), w.Z() / w.W()}
	}
	return out
}

// rayThrough reconstructs the world-space ray for viewport coordinates
// (u,v) in [0,1] by bilinear interpolation of the far-plane corners.
func (c *FrameCamera) rayThrough(u, v float64) (origin, dir mgl32.Vec3) {
	bottom := c.FarCorners[0].Add(c.FarCorners[1].Sub(c.FarCorners[0]).Mul(u))
	top := c.FarCorners[2].Add(c.FarCorners[3].Sub(c.FarCorners[2]).Mul(u))
	far := bottom.Add(top.Sub(bottom).Mul(v))

	d := far.Sub(c.Position)
	if l := d.Len(); l > 0 {
		d = d.Mul(1 / l)
	}

	origin = mgl32.Vec3{float32(c.Position.X()), float32(c.Position.Y()), float32(c.Position.Z())}
	dir = mgl32.Vec3{float32(d.X()), float32(d.Y()), float32(d.Z())}
	return origin, dir
}

// linearizeDepth converts a [0,1] depth-buffer value into a world-space
// distance from the camera.
func (c *FrameCamera) linearizeDepth(z float32) float32 {
	near, far := c.Near, c.Far
	denom := (far-near)*z - far
	if denom > -1e-8 {
		denom = -1e-8
	}
	return -(near * far) / denom
}
