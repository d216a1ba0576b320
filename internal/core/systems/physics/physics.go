package physics

import "math"

type Vec3 struct{ Xv, Yv, Zv float64 }

func (v Vec3) X() float64 { return v.Xv }
func (v Vec3) Y() float64 { return v.Yv }
func (v Vec3) Z() float64 { return v.Zv }

// Transform3D is the simplest Transform: a fixed point.
type Transform3D struct{ Pos Vec3 }

func (t Transform3D) Position3() (x, y, z float64) { return t.Pos.Xv, t.Pos.Yv, t.Pos.Zv }

// TransformFunc adapts a closure, e.g. a live engine accessor.
type TransformFunc func() (x, y, z float64)

func (f TransformFunc) Position3() (x, y, z float64) { return f() }

// DistanceXZ computes the planar distance between two points, ignoring height.
func DistanceXZ(x1, z1, x2, z2 float64) float64 { return math.Hypot(x2-x1, z2-z1) }
