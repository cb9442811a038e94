// Package shape implements the collision-shape capability set the solver
// and broad phase depend on: a support function, a local inertia tensor,
// and a world-space AABB. Box and Sphere are the two supported variants.
package shape

import (
	"github.com/gekko3d/gekko-physics/geom"
)

// Shape is the capability set every collider variant implements. All
// methods are total, pure functions of (shape parameters, world transform);
// callers must not pass a near-zero direction to Support.
type Shape interface {
	// Support returns the farthest world-space point of the shape along dir.
	Support(dir geom.Vector3, xf geom.Transform) geom.Vector3

	// InertiaTensorLocal returns the diagonal of the shape's local inertia
	// tensor for the given mass.
	InertiaTensorLocal(mass float32) geom.Vector3

	// WorldAABB returns the tight world-space AABB of the shape under xf.
	WorldAABB(xf geom.Transform) geom.AABB

	// HalfExtent returns the shape's local half-extent. For a sphere all
	// three components equal the radius.
	HalfExtent() geom.Vector3

	// SetHalfExtent updates the shape's local half-extent.
	SetHalfExtent(geom.Vector3)
}
