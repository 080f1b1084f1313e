package nimbus

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// FieldSampler is the scalar-field lookup the ray integrator marches through.
// Implementations must be safe for concurrent reads; the renderer calls
// Sample from every pixel worker during a frame.
type FieldSampler interface {
	Sample(p mgl32.Vec3, time float32) float32
}

// FieldFunc is a procedural scalar formula over local-space position and time.
type FieldFunc func(x, y, z, t float32) float32

// ProceduralSampler evaluates an injected formula directly, no voxel storage.
type ProceduralSampler struct {
	Func FieldFunc
}

func (s *ProceduralSampler) Sample(p mgl32.Vec3, time float32) float32 {
	return s.Func(p.X(), p.Y(), p.Z(), time)
}

// AtlasSampler interpolates a packed FieldAtlas: trilinear within the two
// time blocks bracketing the requested time, then a linear blend between
// them. Time wraps modulo the block count, so any float time is valid.
type AtlasSampler struct {
	Atlas *FieldAtlas
}

func (s *AtlasSampler) Sample(p mgl32.Vec3, time float32) float32 {
	a := s.Atlas

	ft := math.Floor(float64(time))
	blend := float32(float64(time) - ft)
	t0 := int(ft)
	t1 := t0 + 1

	v0 := s.trilinear(p, t0)
	if blend <= 0 || a.TimeCount == 1 {
		return v0
	}
	v1 := s.trilinear(p, t1)
	return v0 + (v1-v0)*blend
}

func (s *AtlasSampler) trilinear(p mgl32.Vec3, t int) float32 {
	a := s.Atlas

	// Continuous voxel coordinates, sample points at voxel centers.
	ux := float64((p.X()-a.Origin.X())/a.VoxelSize.X() - 0.5)
	uy := float64((p.Y()-a.Origin.Y())/a.VoxelSize.Y() - 0.5)
	uz := float64((p.Z()-a.Origin.Z())/a.VoxelSize.Z() - 0.5)

	x0, y0, z0 := int(math.Floor(ux)), int(math.Floor(uy)), int(math.Floor(uz))
	fx := float32(ux - math.Floor(ux))
	fy := float32(uy - math.Floor(uy))
	fz := float32(uz - math.Floor(uz))

	c000 := a.valueAt(x0, y0, z0, t)
	c100 := a.valueAt(x0+1, y0, z0, t)
	c010 := a.valueAt(x0, y0+1, z0, t)
	c110 := a.valueAt(x0+1, y0+1, z0, t)
	c001 := a.valueAt(x0, y0, z0+1, t)
	c101 := a.valueAt(x0+1, y0, z0+1, t)
	c011 := a.valueAt(x0, y0+1, z0+1, t)
	c111 := a.valueAt(x0+1, y0+1, z0+1, t)

	c00 := c000 + (c100-c000)*fx
	c10 := c010 + (c110-c010)*fx
	c01 := c001 + (c101-c001)*fx
	c11 := c011 + (c111-c011)*fx

	c0 := c00 + (c10-c00)*fy
	c1 := c01 + (c11-c01)*fy

	return c0 + (c1-c0)*fz
}
