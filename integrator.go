package nimbus

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

const (
	weightEpsilon  = 1e-6
	segmentEpsilon = 1e-7
)

// marchInput is the per-ray state handed to the integrator. The ray is in
// the volume's local space; the depth test compares in world units via
// distScale, the world distance covered per local unit along the ray.
type marchInput struct {
	sampler FieldSampler
	opts    RenderOptions
	state   *FrameState
	palette *Palette

	origin mgl32.Vec3
	dir    mgl32.Vec3 // normalized

	jitter     float32 // start offset as a fraction of one step
	sceneDepth float32 // linearized scene depth, +Inf when depth testing is off
	distScale  float32 // world units per local unit along the ray
}

// clipRayToBox solves the slab intersection of a ray against an axis-aligned
// box. Degenerate direction components are floored away from zero the way
// the brick marcher guards its inverse directions.
func clipRayToBox(o, d, boxMin, boxMax mgl32.Vec3) (tNear, tFar float32, ok bool) {
	tNear = float32(math.Inf(-1))
	tFar = float32(math.Inf(1))
	for i := 0; i < 3; i++ {
		di := d[i]
		if di > -1e-7 && di < 1e-7 {
			if di >= 0 {
				di = 1e-7
			} else {
				di = -1e-7
			}
		}
		t0 := (boxMin[i] - o[i]) / di
		t1 := (boxMax[i] - o[i]) / di
		if t0 > t1 {
			t0, t1 = t1, t0
		}
		if t0 > tNear {
			tNear = t0
		}
		if t1 < tFar {
			tFar = t1
		}
	}
	if tNear > tFar || tFar < 0 {
		return 0, 0, false
	}
	return tNear, tFar, true
}

// integrateRay runs the fixed-step march for one pixel and returns a
// premultiplied RGBA sample. Rays that miss the clipped box, degenerate
// segments, and fully masked walks all come back fully transparent.
func integrateRay(in *marchInput) mgl32.Vec4 {
	st := in.state
	opts := in.opts

	boxMin := mgl32.Vec3{
		max32(st.VolumeOrigin.X(), st.ClipMin.X()),
		max32(st.VolumeOrigin.Y(), st.ClipMin.Y()),
		max32(st.VolumeOrigin.Z(), st.ClipMin.Z()),
	}
	boxMax := mgl32.Vec3{
		min32(st.VolumeOrigin.X()+st.VolumeSize.X(), st.ClipMax.X()),
		min32(st.VolumeOrigin.Y()+st.VolumeSize.Y(), st.ClipMax.Y()),
		min32(st.VolumeOrigin.Z()+st.VolumeSize.Z(), st.ClipMax.Z()),
	}
	for i := 0; i < 3; i++ {
		if boxMin[i] > boxMax[i] {
			return mgl32.Vec4{}
		}
	}

	tNear, tFar, ok := clipRayToBox(in.origin, in.dir, boxMin, boxMax)
	if !ok {
		return mgl32.Vec4{}
	}

	tStart := tNear
	if tStart < 0 {
		tStart = 0 // ray starts inside the box
	}
	segLen := tFar - tStart
	steps := opts.RaySteps
	stepLen := segLen / float32(steps)
	if stepLen < segmentEpsilon {
		// tNear == tFar: treat the whole segment as masked.
		return mgl32.Vec4{}
	}

	entry := in.origin.Add(in.dir.Mul(tStart))

	var colorAcc mgl32.Vec3
	var alphaAcc float32
	var meanSum, meanWeight float32

	paletteSpan := st.MaxPaletteValue - st.MinPaletteValue
	if paletteSpan < weightEpsilon && paletteSpan > -weightEpsilon {
		paletteSpan = weightEpsilon
	}

	for i := 0; i < steps; i++ {
		traveled := (float32(i) + in.jitter) * stepLen
		if traveled > segLen {
			// Past the exit point: remaining steps contribute nothing but
			// the loop length stays constant for predictable cost.
			continue
		}
		pos := entry.Add(in.dir.Mul(traveled))

		raw := in.sampler.Sample(pos, st.Time)
		scaled := raw*st.ValueMultiplier + st.ValueAdded

		if scaled < st.MinCutoffValue || scaled > st.MaxCutoffValue {
			continue
		}
		if (tStart+traveled)*in.distScale > in.sceneDepth {
			continue // occluded by the scene depth buffer
		}

		if opts.RenderNormals {
			// Debug mode: stop at the first in-range sample. This is the one
			// mode that breaks the walk early on purpose.
			n := estimateNormal(in.sampler, pos, st.Time, st.NormalEpsilon)
			if opts.InvertNormals {
				n = n.Mul(-1)
			}
			return mgl32.Vec4{
				n.X()*0.5 + 0.5,
				n.Y()*0.5 + 0.5,
				n.Z()*0.5 + 0.5,
				1,
			}
		}

		if opts.RenderMeanValue {
			meanSum += scaled * stepLen
			meanWeight += stepLen
			continue
		}

		// Alpha blend, front to back.
		fade := float32(1)
		if st.CutoffFadeRange > 0 {
			fade = smoothstep(st.MinCutoffValue, st.MinCutoffValue+st.CutoffFadeRange, scaled) *
				(1 - smoothstep(st.MaxCutoffValue-st.CutoffFadeRange, st.MaxCutoffValue, scaled))
		}

		var alpha float32
		switch {
		case opts.UseValueAsExtinctionCoefficient:
			k := scaled * st.ExtinctionMultiplier
			alpha = 1 - float32(math.Exp(float64(-k*stepLen)))
		case opts.UseExtinctionCoefficient:
			k := st.ExtinctionCoefficient * st.ExtinctionMultiplier
			alpha = 1 - float32(math.Exp(float64(-k*stepLen)))
		default:
			alpha = 1 / float32(steps)
		}
		alpha = clamp01(alpha) * fade

		u := clamp01((scaled - st.MinPaletteValue) / paletteSpan)
		color := in.palette.Sample(u)

		if opts.lightingEnabled() {
			n := estimateNormal(in.sampler, pos, st.Time, st.NormalEpsilon)
			if opts.InvertNormals {
				n = n.Mul(-1)
			}
			nWorld := transformNormal(st.VolumeInverseMatrix, n)
			posWorld := transformPoint(st.VolumeMatrix, pos)
			light := shade(nWorld, posWorld, opts, st)
			color = mgl32.Vec3{
				color.X() * light.X(),
				color.Y() * light.Y(),
				color.Z() * light.Z(),
			}
		}

		colorAcc = colorAcc.Add(color.Mul(alpha * (1 - alphaAcc)))
		alphaAcc += (1 - alphaAcc) * alpha
		alphaAcc = clamp01(alphaAcc)
	}

	mult := clamp01(st.AlphaMultiplier)

	if opts.RenderNormals {
		return mgl32.Vec4{} // no in-range sample found
	}

	if opts.RenderMeanValue {
		if meanWeight < weightEpsilon {
			return mgl32.Vec4{}
		}
		mean := meanSum / meanWeight
		u := clamp01((mean - st.MinPaletteValue) / paletteSpan)
		color := in.palette.Sample(u).Mul(mult)
		return mgl32.Vec4{color.X(), color.Y(), color.Z(), mult}
	}

	return mgl32.Vec4{
		colorAcc.X() * mult,
		colorAcc.Y() * mult,
		colorAcc.Z() * mult,
		alphaAcc * mult,
	}
}

// hashRay derives the per-pixel jitter fraction from the frame's random seed
// and the ray direction, so banding dither varies every frame.
func hashRay(dir mgl32.Vec3, seed float32) float32 {
	s := float64(dir.X())*12.9898 + float64(dir.Y())*78.233 + float64(dir.Z())*45.164
	v := math.Sin(s)*43758.5453 + float64(seed)*919.513
	f := v - math.Floor(v)
	return float32(f)
}

func min32(a, b float32) float32 {
	if a < b {
		return a
	}
	return b
}

func max32(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}
