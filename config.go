package nimbus

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// RenderOptions are the per-build feature flags. Changing any of them
// requires rebuilding the permutation (Renderer.SetOptions); the numeric
// per-frame values live in FrameState and never force a rebuild.
type RenderOptions struct {
	// CustomFunction selects the procedural sampler strategy. Mutually
	// exclusive with an atlas: exactly one field source must be attached.
	CustomFunction FieldFunc

	UseVolumetricDepthTest          bool
	UseExtinctionCoefficient        bool
	UseValueAsExtinctionCoefficient bool
	UsePointLights                  bool
	UseDirectionalLights            bool
	UseRandomStart                  bool
	RenderMeanValue                 bool
	InvertNormals                   bool
	RenderNormals                   bool
	RaySteps                        int
}

// DefaultRenderOptions mirrors the recognized-option defaults.
func DefaultRenderOptions() RenderOptions {
	return RenderOptions{
		UseExtinctionCoefficient: true,
		UseRandomStart:           true,
		RaySteps:                 64,
	}
}

// lightingEnabled reports whether any light path is active. Lighting is a
// blend-mode feature; mean and normal output ignore lights entirely.
func (o RenderOptions) lightingEnabled() bool {
	if o.RenderMeanValue || o.RenderNormals {
		return false
	}
	return o.UsePointLights || o.UseDirectionalLights
}

// PointLight attenuates with inverse-square distance and fades out smoothly
// over the last fifth of MaxDistance.
type PointLight struct {
	Position    mgl32.Vec3
	Color       mgl32.Vec3
	Intensity   float32
	MaxDistance float32
}

// DirectionalLight shines along a constant direction.
type DirectionalLight struct {
	Direction mgl32.Vec3
	Color     mgl32.Vec3
	Intensity float32
}

// FrameState is the per-frame numeric state. The host (typically a GUI or
// scene layer) mutates fields directly between frames; the renderer only
// reads it during RenderFrame.
type FrameState struct {
	// Value remap: scaled = raw*ValueMultiplier + ValueAdded.
	ValueMultiplier float32
	ValueAdded      float32

	// Scalar band treated as inside the medium, with a smoothstep fade of
	// CutoffFadeRange width at both ends.
	MinCutoffValue  float32
	MaxCutoffValue  float32
	CutoffFadeRange float32

	// Palette normalization range.
	MinPaletteValue float32
	MaxPaletteValue float32

	// AlphaMultiplier scales the resolved pixel opacity.
	AlphaMultiplier float32

	ExtinctionCoefficient float32
	ExtinctionMultiplier  float32

	// Finite-difference epsilon for gradient normals, in local units.
	NormalEpsilon float32

	// Field time in block units and the frame's random seed for jittering.
	Time   float32
	Random float32

	// Additional clip box intersected with the volume extent, local space.
	ClipMin mgl32.Vec3
	ClipMax mgl32.Vec3

	// Volume placement: local cuboid [Origin, Origin+Size] and the model
	// matrix pair recomputed each frame from the host entity's pose.
	VolumeOrigin        mgl32.Vec3
	VolumeSize          mgl32.Vec3
	VolumeMatrix        mgl32.Mat4
	VolumeInverseMatrix mgl32.Mat4

	PointLights       []PointLight
	DirectionalLights []DirectionalLight
}

// DefaultFrameState returns a neutral state: identity remap, full cutoff and
// palette bands, unit cube at the origin, unclipped, identity transform.
func DefaultFrameState() FrameState {
	inf := float32(math.Inf(1))
	return FrameState{
		ValueMultiplier:       1,
		MinCutoffValue:        0,
		MaxCutoffValue:        1,
		MinPaletteValue:       0,
		MaxPaletteValue:       1,
		AlphaMultiplier:       1,
		ExtinctionCoefficient: 1,
		ExtinctionMultiplier:  1,
		NormalEpsilon:         0.01,
		ClipMin:               mgl32.Vec3{-inf, -inf, -inf},
		ClipMax:               mgl32.Vec3{inf, inf, inf},
		VolumeOrigin:          mgl32.Vec3{-0.5, -0.5, -0.5},
		VolumeSize:            mgl32.Vec3{1, 1, 1},
		VolumeMatrix:          mgl32.Ident4(),
		VolumeInverseMatrix:   mgl32.Ident4(),
	}
}
