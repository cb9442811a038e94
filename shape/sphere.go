package shape

import "github.com/gekko3d/gekko-physics/geom"

// Sphere is a solid sphere collider defined by a radius.
type Sphere struct {
	radius float32
}

// NewSphere constructs a sphere with the given radius.
func NewSphere(radius float32) *Sphere {
	return &Sphere{radius: radius}
}

// HalfExtent returns (r, r, r).
func (s *Sphere) HalfExtent() geom.Vector3 { return geom.Vector3{s.radius, s.radius, s.radius} }

func (s *Sphere) SetHalfExtent(he geom.Vector3) { s.radius = he.X() }

// Radius returns the sphere's radius.
func (s *Sphere) Radius() float32 { return s.radius }

// Support returns position + radius * normalize(dir).
func (s *Sphere) Support(dir geom.Vector3, xf geom.Transform) geom.Vector3 {
	return xf.Position.Add(dir.Normalize().Mul(s.radius))
}

// InertiaTensorLocal returns (2/5)*m*r^2 on all three axes (solid sphere).
func (s *Sphere) InertiaTensorLocal(mass float32) geom.Vector3 {
	i := (2.0 / 5.0) * mass * s.radius * s.radius
	return geom.Vector3{i, i, i}
}

// WorldAABB returns center +- (r, r, r).
func (s *Sphere) WorldAABB(xf geom.Transform) geom.AABB {
	r := geom.Vector3{s.radius, s.radius, s.radius}
	return geom.AABB{Min: xf.Position.Sub(r), Max: xf.Position.Add(r)}
}
