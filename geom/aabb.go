package geom

// AABB is an axis-aligned bounding box. The invariant Min <= Max holds
// component-wise for every AABB produced by this package.
type AABB struct {
	Min Vector3
	Max Vector3
}

// Contains reports whether other fits entirely inside a, tolerant of
// KindaSmall on each side.
func (a AABB) Contains(other AABB) bool {
	return a.Min.X()-KindaSmall <= other.Min.X() &&
		a.Min.Y()-KindaSmall <= other.Min.Y() &&
		a.Min.Z()-KindaSmall <= other.Min.Z() &&
		a.Max.X()+KindaSmall >= other.Max.X() &&
		a.Max.Y()+KindaSmall >= other.Max.Y() &&
		a.Max.Z()+KindaSmall >= other.Max.Z()
}

// Overlaps reports whether a and other share any volume, tolerant of
// KindaSmall.
func (a AABB) Overlaps(other AABB) bool {
	return a.Min.X()-KindaSmall <= other.Max.X() &&
		a.Max.X()+KindaSmall >= other.Min.X() &&
		a.Min.Y()-KindaSmall <= other.Max.Y() &&
		a.Max.Y()+KindaSmall >= other.Min.Y() &&
		a.Min.Z()-KindaSmall <= other.Max.Z() &&
		a.Max.Z()+KindaSmall >= other.Min.Z()
}

// Extend grows the box by margin on every side, in every axis.
func (a AABB) Extend(margin float32) AABB {
	m := Vector3{margin, margin, margin}
	return AABB{Min: a.Min.Sub(m), Max: a.Max.Add(m)}
}

// ExtendVec grows the box by a separate margin per axis, used for fat-bounds
// computation where the margin is proportional to a (possibly non-uniform)
// half-extent.
func (a AABB) ExtendVec(margin Vector3) AABB {
	return AABB{Min: a.Min.Sub(margin), Max: a.Max.Add(margin)}
}

// Union returns the tight AABB enclosing both a and b.
func (a AABB) Union(b AABB) AABB {
	return AABB{Min: minv(a.Min, b.Min), Max: maxv(a.Max, b.Max)}
}

// Center returns the midpoint of the box.
func (a AABB) Center() Vector3 {
	return a.Min.Add(a.Max).Mul(0.5)
}

// HalfExtents returns half the box's dimension vector.
func (a AABB) HalfExtents() Vector3 {
	return a.Max.Sub(a.Min).Mul(0.5)
}

// SurfaceArea returns 2*(xy+yz+zx) of the box's dimension vector, the cost
// metric used by the tree's SAH descent.
func (a AABB) SurfaceArea() float32 {
	d := a.Max.Sub(a.Min)
	return 2 * (d.X()*d.Y() + d.Y()*d.Z() + d.Z()*d.X())
}

// FromLocalHalfExtent computes the tight world-space AABB of a local
// half-extent (an oriented box) under a world transform: center plus the
// sum of the absolute, rotation-transformed half-extent axes.
func FromLocalHalfExtent(halfExtent Vector3, xf Transform) AABB {
	r := xf.RotationMat3()
	scaled := Vector3{
		halfExtent.X() * xf.Scale.X(),
		halfExtent.Y() * xf.Scale.Y(),
		halfExtent.Z() * xf.Scale.Z(),
	}

	xAxis := r.Mul3x1(Vector3{scaled.X(), 0, 0})
	yAxis := r.Mul3x1(Vector3{0, scaled.Y(), 0})
	zAxis := r.Mul3x1(Vector3{0, 0, scaled.Z()})

	radius := Vector3{
		absf(xAxis.X()) + absf(yAxis.X()) + absf(zAxis.X()),
		absf(xAxis.Y()) + absf(yAxis.Y()) + absf(zAxis.Y()),
		absf(xAxis.Z()) + absf(yAxis.Z()) + absf(zAxis.Z()),
	}

	center := xf.Position
	return AABB{Min: center.Sub(radius), Max: center.Add(radius)}
}
