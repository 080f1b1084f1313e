package nimbus

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func constantSampler(k float32) VoxelSampler {
	return func(ix, iy, iz int, center mgl32.Vec3, t int) float32 { return k }
}

func TestPackAtlas_GridLayout(t *testing.T) {
	cases := []struct {
		timeCount int
		want      [3]int
	}{
		{1, [3]int{1, 1, 1}},
		{2, [3]int{2, 2, 1}},
		{8, [3]int{2, 2, 2}},
		{9, [3]int{3, 3, 1}},
		{100, [3]int{5, 5, 4}},
	}
	for _, c := range cases {
		a, err := PackAtlas([3]int{1, 1, 1}, mgl32.Vec3{}, mgl32.Vec3{1, 1, 1}, c.timeCount)
		if err != nil {
			t.Fatalf("pack timeCount=%d: %v", c.timeCount, err)
		}
		if a.GridRes != c.want {
			t.Errorf("timeCount=%d: expected grid %v, got %v", c.timeCount, c.want, a.GridRes)
		}
		if a.Capacity() < c.timeCount {
			t.Errorf("timeCount=%d: capacity %d below time count", c.timeCount, a.Capacity())
		}
	}
}

func TestPackAtlas_Validation(t *testing.T) {
	if _, err := PackAtlas([3]int{4, 4, 4}, mgl32.Vec3{}, mgl32.Vec3{1, 1, 1}, 0); err == nil {
		t.Errorf("expected error for timeCount=0")
	}
	if _, err := PackAtlas([3]int{0, 4, 4}, mgl32.Vec3{}, mgl32.Vec3{1, 1, 1}, 1); err == nil {
		t.Errorf("expected error for zero resolution")
	}
	if _, err := PackAtlas([3]int{4, 4, 4}, mgl32.Vec3{}, mgl32.Vec3{0, 1, 1}, 1); err == nil {
		t.Errorf("expected error for zero voxel size")
	}
}

func TestResample_ConstantField(t *testing.T) {
	a, err := PackAtlas([3]int{4, 4, 4}, mgl32.Vec3{-1, -1, -1}, mgl32.Vec3{0.5, 0.5, 0.5}, 1)
	if err != nil {
		t.Fatal(err)
	}
	minV, maxV, err := a.Resample(constantSampler(0.7), 0, 0)
	if err != nil {
		t.Fatal(err)
	}
	if minV != 0.7 || maxV != 0.7 {
		t.Errorf("expected observed range {0.7, 0.7}, got {%v, %v}", minV, maxV)
	}
	got := a.valueAt(2, 2, 2, 0)
	if math.Abs(float64(got)-0.7) > 1e-3 {
		t.Errorf("expected stored value near 0.7 within half rounding, got %v", got)
	}
}

func TestResample_BlockAddressing(t *testing.T) {
	// 9 time blocks on a 3x3x1 grid of 2^3 blocks
	a, err := PackAtlas([3]int{2, 2, 2}, mgl32.Vec3{}, mgl32.Vec3{1, 1, 1}, 9)
	if err != nil {
		t.Fatal(err)
	}
	if a.Dims != [3]int{6, 6, 2} {
		t.Fatalf("expected dims 6,6,2, got %v", a.Dims)
	}
	sampler := func(ix, iy, iz int, center mgl32.Vec3, t int) float32 { return float32(t) }
	if _, _, err := a.Resample(sampler, 0, 0); err != nil {
		t.Fatal(err)
	}
	for ti := 0; ti < 9; ti++ {
		if got := a.valueAt(0, 0, 0, ti); got != float32(ti) {
			t.Errorf("block %d: expected %d, got %v", ti, ti, got)
		}
	}
	// Time index wraps via modulo at read time
	if got := a.valueAt(0, 0, 0, 9); got != 0 {
		t.Errorf("expected wrapped read of block 9 to hit block 0, got %v", got)
	}
	if got := a.valueAt(0, 0, 0, -1); got != 8 {
		t.Errorf("expected wrapped read of block -1 to hit block 8, got %v", got)
	}
}

func TestResample_Idempotent(t *testing.T) {
	sampler := func(ix, iy, iz int, center mgl32.Vec3, t int) float32 {
		return center.X()*1.3 + center.Y()*0.7 + center.Z()*0.1 + float32(t)
	}
	a, err := PackAtlas([3]int{3, 3, 3}, mgl32.Vec3{-1, -1, -1}, mgl32.Vec3{0.5, 0.5, 0.5}, 4)
	if err != nil {
		t.Fatal(err)
	}
	if _, _, err := a.Resample(sampler, 0, 0); err != nil {
		t.Fatal(err)
	}
	first := make([]uint16, len(a.data))
	copy(first, a.data)

	if _, _, err := a.Resample(sampler, 0, 0); err != nil {
		t.Fatal(err)
	}
	for i := range first {
		if a.data[i] != first[i] {
			t.Fatalf("resample not idempotent at voxel %d: %v != %v", i, a.data[i], first[i])
		}
	}
}

func TestResample_PartialRange(t *testing.T) {
	a, err := PackAtlas([3]int{2, 2, 2}, mgl32.Vec3{}, mgl32.Vec3{1, 1, 1}, 4)
	if err != nil {
		t.Fatal(err)
	}
	if _, _, err := a.Resample(constantSampler(1), 2, 2); err != nil {
		t.Fatal(err)
	}
	if got := a.valueAt(0, 0, 0, 0); got != 0 {
		t.Errorf("block 0 outside requested range was written: %v", got)
	}
	if got := a.valueAt(0, 0, 0, 2); got != 1 {
		t.Errorf("block 2 inside requested range not written: %v", got)
	}
	if _, _, err := a.Resample(constantSampler(1), 3, 2); err == nil {
		t.Errorf("expected error for range past timeCount")
	}
	// offset at the end with a defaulted count is an empty range, not a no-op
	if _, _, err := a.Resample(constantSampler(1), 4, 0); err == nil {
		t.Errorf("expected error for empty range at offset == timeCount")
	}
}

func TestResample_NonFiniteLeavesAtlasUntouched(t *testing.T) {
	a, err := PackAtlas([3]int{2, 2, 2}, mgl32.Vec3{}, mgl32.Vec3{1, 1, 1}, 2)
	if err != nil {
		t.Fatal(err)
	}
	if _, _, err := a.Resample(constantSampler(0.25), 0, 0); err != nil {
		t.Fatal(err)
	}
	before := make([]uint16, len(a.data))
	copy(before, a.data)

	bad := func(ix, iy, iz int, center mgl32.Vec3, t int) float32 {
		if t == 1 && ix == 1 && iy == 1 && iz == 1 {
			return float32(math.NaN())
		}
		return 9
	}
	if _, _, err := a.Resample(bad, 0, 0); err == nil {
		t.Fatal("expected non-finite sampler output to fail")
	}
	for i := range before {
		if a.data[i] != before[i] {
			t.Fatalf("failed resample mutated atlas at voxel %d", i)
		}
	}
}
