package nimbus

import (
	"github.com/go-gl/mathgl/mgl32"
)

// estimateNormal computes a local-space surface normal as the negated,
// normalized central-difference gradient of the field. The epsilon comes
// from the frame state so hosts can trade precision against cost.
func estimateNormal(s FieldSampler, p mgl32.Vec3, time, epsilon float32) mgl32.Vec3 {
	e := epsilon
	if e <= 0 {
		e = 1e-3
	}
	gx := s.Sample(mgl32.Vec3{p.X() + e, p.Y(), p.Z()}, time) - s.Sample(mgl32.Vec3{p.X() - e, p.Y(), p.Z()}, time)
	gy := s.Sample(mgl32.Vec3{p.X(), p.Y() + e, p.Z()}, time) - s.Sample(mgl32.Vec3{p.X(), p.Y() - e, p.Z()}, time)
	gz := s.Sample(mgl32.Vec3{p.X(), p.Y(), p.Z() + e}, time) - s.Sample(mgl32.Vec3{p.X(), p.Y(), p.Z() - e}, time)

	g := mgl32.Vec3{gx, gy, gz}
	l := g.Len()
	if l < 1e-12 {
		return mgl32.Vec3{}
	}
	// Density increases toward the medium; the outward normal is -gradient.
	return g.Mul(-1 / l)
}

// shade evaluates the enabled lights against a world-space normal and
// position, returning a multiplier for the palette color. With no light
// paths enabled the multiplier is 1.
func shade(normal, pos mgl32.Vec3, opts RenderOptions, state *FrameState) mgl32.Vec3 {
	if !opts.lightingEnabled() {
		return mgl32.Vec3{1, 1, 1}
	}

	var acc mgl32.Vec3
	if opts.UsePointLights {
		for i := range state.PointLights {
			l := &state.PointLights[i]
			toLight := l.Position.Sub(pos)
			d := toLight.Len()
			if d < 1e-6 {
				d = 1e-6
			}
			diffuse := normal.Dot(toLight.Mul(1 / d))
			if diffuse <= 0 {
				continue
			}
			atten := l.Intensity / (d * d)
			if l.MaxDistance > 0 {
				atten *= 1 - smoothstep(0.8*l.MaxDistance, l.MaxDistance, d)
			}
			acc = acc.Add(l.Color.Mul(diffuse * atten))
		}
	}
	if opts.UseDirectionalLights {
		for i := range state.DirectionalLights {
			l := &state.DirectionalLights[i]
			dir := l.Direction
			if dl := dir.Len(); dl > 1e-8 {
				dir = dir.Mul(1 / dl)
			}
			// Direction points from the light toward the scene.
			diffuse := normal.Dot(dir.Mul(-1))
			if diffuse <= 0 {
				continue
			}
			acc = acc.Add(l.Color.Mul(diffuse * l.Intensity))
		}
	}
	return acc
}

func smoothstep(edge0, edge1, x float32) float32 {
	if edge1 <= edge0 {
		if x < edge0 {
			return 0
		}
		return 1
	}
	t := (x - edge0) / (edge1 - edge0)
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	return t * t * (3 - 2*t)
}

func clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
