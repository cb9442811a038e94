package shape

import "github.com/gekko3d/gekko-physics/geom"

// Box is an oriented box collider, defined by a local half-extent.
type Box struct {
	halfExtent geom.Vector3
}

// NewBox constructs a box with the given local half-extent.
func NewBox(halfExtent geom.Vector3) *Box {
	return &Box{halfExtent: halfExtent}
}

func (b *Box) HalfExtent() geom.Vector3       { return b.halfExtent }
func (b *Box) SetHalfExtent(he geom.Vector3) { b.halfExtent = he }

// Support transforms dir into local space via the inverse rotation, picks
// +-half_extent per axis by the sign of the local direction, and transforms
// the result back through the full modeling matrix.
func (b *Box) Support(dir geom.Vector3, xf geom.Transform) geom.Vector3 {
	invRot := xf.Rotation.Conjugate()
	localDir := invRot.Rotate(dir)

	local := geom.Vector3{
		signedExtent(localDir.X(), b.halfExtent.X()),
		signedExtent(localDir.Y(), b.halfExtent.Y()),
		signedExtent(localDir.Z(), b.halfExtent.Z()),
	}

	m := xf.ModelMatrix()
	world := m.Mul4x1(local.Vec4(1))
	return world.Vec3()
}

func signedExtent(d, he float32) float32 {
	if d >= 0 {
		return he
	}
	return -he
}

// InertiaTensorLocal returns the diagonal box inertia tensor
// m/12 * (hy^2+hz^2, hx^2+hz^2, hx^2+hy^2).
func (b *Box) InertiaTensorLocal(mass float32) geom.Vector3 {
	hx, hy, hz := b.halfExtent.X(), b.halfExtent.Y(), b.halfExtent.Z()
	scale := mass / 12.0
	return geom.Vector3{
		scale * (hy*hy + hz*hz),
		scale * (hx*hx + hz*hz),
		scale * (hx*hx + hy*hy),
	}
}

// WorldAABB returns the tight world-space enclosure of the rotated box:
// the world position plus or minus the sum of the absolute, rotated
// half-extent axes (geom.FromLocalHalfExtent).
func (b *Box) WorldAABB(xf geom.Transform) geom.AABB {
	return geom.FromLocalHalfExtent(b.halfExtent, xf)
}
