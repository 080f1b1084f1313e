package nimbus

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
)

// VoxelSampler produces one scalar per voxel during a bulk resample. It
// receives the voxel indices within one time block, the voxel center in the
// volume's local space, and the logical time index being filled.
type VoxelSampler func(ix, iy, iz int, center mgl32.Vec3, timeIndex int) float32

// FieldAtlas packs timeCount logical volumes of PerVolumeRes voxels each into
// one flat grid of GridRes blocks. The renderer owns the buffer exclusively;
// it is only mutated through Resample and replaced wholesale on resize.
type FieldAtlas struct {
	ID uuid.UUID

	PerVolumeRes [3]int
	GridRes      [3]int // blocks along X/Y/Z, GridRes[0]*GridRes[1]*GridRes[2] >= TimeCount
	Dims         [3]int // PerVolumeRes * GridRes
	Origin       mgl32.Vec3
	VoxelSize    mgl32.Vec3
	TimeCount    int

	data []uint16 // half floats, row-major X fastest
}

// PackAtlas lays out storage for timeCount volumes. Blocks are arranged on a
// near-cubical grid: nx = ny = ceil(timeCount^(1/3)), nz = ceil(timeCount/(nx*ny)).
func PackAtlas(perVolumeRes [3]int, origin, voxelSize mgl32.Vec3, timeCount int) (*FieldAtlas, error) {
	if timeCount < 1 {
		return nil, fmt.Errorf("atlas pack: timeCount must be >= 1, got %d", timeCount)
	}
	for i := 0; i < 3; i++ {
		if perVolumeRes[i] < 1 {
			return nil, fmt.Errorf("atlas pack: per-volume resolution must be >= 1, got %v", perVolumeRes)
		}
		if voxelSize[i] <= 0 {
			return nil, fmt.Errorf("atlas pack: voxel size must be positive, got %v", voxelSize)
		}
	}

	n := int(math.Ceil(math.Cbrt(float64(timeCount))))
	nz := (timeCount + n*n - 1) / (n * n)
	grid := [3]int{n, n, nz}

	dims := [3]int{
		perVolumeRes[0] * grid[0],
		perVolumeRes[1] * grid[1],
		perVolumeRes[2] * grid[2],
	}
	total := dims[0] * dims[1] * dims[2]

	a := &FieldAtlas{
		ID:           uuid.New(),
		PerVolumeRes: perVolumeRes,
		GridRes:      grid,
		Dims:         dims,
		Origin:       origin,
		VoxelSize:    voxelSize,
		TimeCount:    timeCount,
		data:         make([]uint16, total),
	}
	return a, nil
}

// Capacity returns the number of time blocks the grid can hold.
func (a *FieldAtlas) Capacity() int {
	return a.GridRes[0] * a.GridRes[1] * a.GridRes[2]
}

// Size returns the local-space extent of one volume.
func (a *FieldAtlas) Size() mgl32.Vec3 {
	return mgl32.Vec3{
		float32(a.PerVolumeRes[0]) * a.VoxelSize.X(),
		float32(a.PerVolumeRes[1]) * a.VoxelSize.Y(),
		float32(a.PerVolumeRes[2]) * a.VoxelSize.Z(),
	}
}

// blockOrigin returns the voxel offset of time block t within the grid.
func (a *FieldAtlas) blockOrigin(t int) [3]int {
	nx, ny := a.GridRes[0], a.GridRes[1]
	bx := t % nx
	by := (t / nx) % ny
	bz := t / (nx * ny)
	return [3]int{
		bx * a.PerVolumeRes[0],
		by * a.PerVolumeRes[1],
		bz * a.PerVolumeRes[2],
	}
}

func (a *FieldAtlas) index(x, y, z int) int {
	return (z*a.Dims[1]+y)*a.Dims[0] + x
}

// valueAt reads voxel (ix,iy,iz) of time block t, clamping the voxel indices
// to the block. The time index wraps via modulo so out-of-range block access
// never occurs.
func (a *FieldAtlas) valueAt(ix, iy, iz, t int) float32 {
	t = ((t % a.TimeCount) + a.TimeCount) % a.TimeCount
	ix = clampInt(ix, 0, a.PerVolumeRes[0]-1)
	iy = clampInt(iy, 0, a.PerVolumeRes[1]-1)
	iz = clampInt(iz, 0, a.PerVolumeRes[2]-1)
	b := a.blockOrigin(t)
	return halfToFloat32(a.data[a.index(b[0]+ix, b[1]+iy, b[2]+iz)])
}

// Resample fills count time blocks starting at offset from the sampler and
// returns the observed value range. The write is all-or-nothing: samples are
// staged and only committed once every voxel in the range produced a finite
// value, so a failed resample leaves the atlas exactly as it was.
func (a *FieldAtlas) Resample(sampler VoxelSampler, offset, count int) (minV, maxV float32, err error) {
	if sampler == nil {
		return 0, 0, fmt.Errorf("atlas resample: nil sampler")
	}
	if count <= 0 {
		count = a.TimeCount - offset
	}
	if count < 1 {
		return 0, 0, fmt.Errorf("atlas resample: empty time range at offset %d", offset)
	}
	if offset < 0 || offset+count > a.TimeCount {
		return 0, 0, fmt.Errorf("atlas resample: time range [%d,%d) outside 0..%d",
			offset, offset+count, a.TimeCount)
	}

	rx, ry, rz := a.PerVolumeRes[0], a.PerVolumeRes[1], a.PerVolumeRes[2]
	staged := make([]uint16, rx*ry*rz*count)

	minV = float32(math.Inf(1))
	maxV = float32(math.Inf(-1))

	i := 0
	for t := offset; t < offset+count; t++ {
		for iz := 0; iz < rz; iz++ {
			for iy := 0; iy < ry; iy++ {
				for ix := 0; ix < rx; ix++ {
					center := a.Origin.Add(mgl32.Vec3{
						(float32(ix) + 0.5) * a.VoxelSize.X(),
						(float32(iy) + 0.5) * a.VoxelSize.Y(),
						(float32(iz) + 0.5) * a.VoxelSize.Z(),
					})
					v := sampler(ix, iy, iz, center, t)
					if math.IsNaN(float64(v)) || math.IsInf(float64(v), 0) {
						return 0, 0, fmt.Errorf("atlas resample: non-finite sample %v at voxel (%d,%d,%d) t=%d",
							v, ix, iy, iz, t)
					}
					if v < minV {
						minV = v
					}
					if v > maxV {
						maxV = v
					}
					staged[i] = halfFromFloat32(v)
					i++
				}
			}
		}
	}

	// Commit
	i = 0
	for t := offset; t < offset+count; t++ {
		b := a.blockOrigin(t)
		for iz := 0; iz < rz; iz++ {
			for iy := 0; iy < ry; iy++ {
				row := a.index(b[0], b[1]+iy, b[2]+iz)
				copy(a.data[row:row+rx], staged[i:i+rx])
				i += rx
			}
		}
	}

	return minV, maxV, nil
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
