package nimbus

import (
	"github.com/go-gl/mathgl/mgl32"
)

// VolumeTransform places the field's local cuboid in world space. Hosts
// recompute it every frame from whatever entity carries the volume; the
// renderer only consumes the resulting matrix pair via FrameState.
type VolumeTransform struct {
	Position mgl32.Vec3
	Rotation mgl32.Quat
	Scale    mgl32.Vec3
}

func NewVolumeTransform() *VolumeTransform {
	return &VolumeTransform{
		Rotation: mgl32.QuatIdent(),
		Scale:    mgl32.Vec3{1, 1, 1},
	}
}

func (t *VolumeTransform) LocalToWorld() mgl32.Mat4 {
	// M = T * R * S
	translate := mgl32.Translate3D(t.Position.X(), t.Position.Y(), t.Position.Z())
	rotate := t.Rotation.Mat4()
	scale := mgl32.Scale3D(t.Scale.X(), t.Scale.Y(), t.Scale.Z())

	return translate.Mul4(rotate).Mul4(scale)
}

func (t *VolumeTransform) WorldToLocal() mgl32.Mat4 {
	// inv(M) = inv(S) * inv(R) * inv(T), each inverted componentwise.
	invScale := mgl32.Scale3D(1.0/t.Scale.X(), 1.0/t.Scale.Y(), 1.0/t.Scale.Z())
	invRotate := t.Rotation.Conjugate().Mat4()
	invTranslate := mgl32.Translate3D(-t.Position.X(), -t.Position.Y(), -t.Position.Z())

	return invScale.Mul4(invRotate).Mul4(invTranslate)
}

// Apply writes the matrix pair into the frame state.
func (t *VolumeTransform) Apply(state *FrameState) {
	state.VolumeMatrix = t.LocalToWorld()
	state.VolumeInverseMatrix = t.WorldToLocal()
}

func transformPoint(m mgl32.Mat4, p mgl32.Vec3) mgl32.Vec3 {
	v := m.Mul4x1(p.Vec4(1))
	return mgl32.Vec3{v.X(), v.Y(), v.Z()}
}

func transformVector(m mgl32.Mat4, d mgl32.Vec3) mgl32.Vec3 {
	v := m.Mul4x1(d.Vec4(0))
	return mgl32.Vec3{v.X(), v.Y(), v.Z()}
}

// transformNormal maps a local-space normal to world space using the
// inverse-transpose of the model matrix, then renormalizes.
func transformNormal(invModel mgl32.Mat4, n mgl32.Vec3) mgl32.Vec3 {
	v := invModel.Transpose().Mul4x1(n.Vec4(0))
	out := mgl32.Vec3{v.X(), v.Y(), v.Z()}
	if l := out.Len(); l > 1e-8 {
		return out.Mul(1 / l)
	}
	return out
}
