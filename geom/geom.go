// Package geom provides the vector, quaternion and transform primitives
// shared by the arena, shape, bvh, solver and collision packages.
package geom

import "github.com/go-gl/mathgl/mgl32"

// Vector3 is a 3-component single-precision vector.
type Vector3 = mgl32.Vec3

// Quaternion is a unit quaternion rotation.
type Quaternion = mgl32.Quat

// KindaSmall is the epsilon used for AABB containment/overlap tolerance and
// for degenerate-effective-mass detection in the solver.
const KindaSmall float32 = 1e-4

// Transform is a position/rotation/scale triple. The modeling matrix is
// built scale-then-rotate-then-translate.
type Transform struct {
	Position Vector3
	Rotation Quaternion
	Scale    Vector3
}

// Identity returns a transform with no translation/rotation and unit scale.
func Identity() Transform {
	return Transform{
		Position: Vector3{0, 0, 0},
		Rotation: mgl32.QuatIdent(),
		Scale:    Vector3{1, 1, 1},
	}
}

// ModelMatrix returns the scale-then-rotate-then-translate modeling matrix.
func (t Transform) ModelMatrix() mgl32.Mat4 {
	s := mgl32.Scale3D(t.Scale.X(), t.Scale.Y(), t.Scale.Z())
	r := t.Rotation.Mat4()
	tr := mgl32.Translate3D(t.Position.X(), t.Position.Y(), t.Position.Z())
	return tr.Mul4(r).Mul4(s)
}

// RotationMat3 returns the 3x3 rotation matrix of the transform's rotation,
// ignoring scale and translation.
func (t Transform) RotationMat3() mgl32.Mat3 {
	return QuatToMat3(t.Rotation)
}

// QuatToMat3 extracts the 3x3 rotation block from a quaternion.
func QuatToMat3(q Quaternion) mgl32.Mat3 {
	m4 := q.Mat4()
	return mgl32.Mat3{
		m4[0], m4[1], m4[2],
		m4[4], m4[5], m4[6],
		m4[8], m4[9], m4[10],
	}
}

func minv(a, b Vector3) Vector3 {
	return Vector3{
		minf(a.X(), b.X()),
		minf(a.Y(), b.Y()),
		minf(a.Z(), b.Z()),
	}
}

func maxv(a, b Vector3) Vector3 {
	return Vector3{
		maxf(a.X(), b.X()),
		maxf(a.Y(), b.Y()),
		maxf(a.Z(), b.Z()),
	}
}

func minf(a, b float32) float32 {
	if a < b {
		return a
	}
	return b
}

func maxf(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}

func absf(a float32) float32 {
	if a < 0 {
		return -a
	}
	return a
}
